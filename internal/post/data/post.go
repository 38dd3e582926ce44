package data

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/codeskytz/date-api/internal/data/model"
	"github.com/codeskytz/date-api/internal/pkg/database"
	"github.com/codeskytz/date-api/internal/post/biz"
)

type postRepo struct {
	db *database.DB
}

func NewPostRepo(db *database.DB) biz.PostRepo {
	return &postRepo{db: db}
}

func (r *postRepo) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepo) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepo) Feed(ctx context.Context, viewerID int64, limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("flagged = ?", false).
		Where("user_id = ? OR user_id IN (?)",
			viewerID,
			r.db.WithContext(ctx).Model(&model.Follow{}).
				Select("following_id").
				Where("follower_id = ?", viewerID),
		).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepo) ByUser(ctx context.Context, userID int64, includeFlagged bool, limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	q := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID)
	if !includeFlagged {
		q = q.Where("flagged = ?", false)
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&posts).Error
	return posts, err
}

func (r *postRepo) Search(ctx context.Context, query string, limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("flagged = ?", false).
		Where("content ILIKE ?", "%"+query+"%").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepo) Purge(ctx context.Context, postID int64) error {
	return r.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&model.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&model.PostComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&model.PostSave{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.Post{}, postID).Error
	})
}

// Like inserts the like and bumps the counter; reports false when the
// like already existed.
func (r *postRepo) Like(ctx context.Context, postID, userID int64) (bool, error) {
	created := false
	err := r.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).
			FirstOrCreate(&model.PostLike{PostID: postID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		return tx.Model(&model.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	return created, err
}

func (r *postRepo) Unlike(ctx context.Context, postID, userID int64) error {
	return r.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&model.Post{}).Where("id = ? AND like_count > 0", postID).
			UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
	})
}

func (r *postRepo) AddComment(ctx context.Context, comment *model.PostComment) error {
	return r.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&model.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
}

func (r *postRepo) Comments(ctx context.Context, postID int64, limit, offset int) ([]*model.PostComment, error) {
	var comments []*model.PostComment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&comments).Error
	return comments, err
}

// Save inserts a bookmark; reports false when it already existed.
func (r *postRepo) Save(ctx context.Context, postID, userID int64) (bool, error) {
	var existing model.PostSave
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return true, r.db.WithContext(ctx).Create(&model.PostSave{PostID: postID, UserID: userID}).Error
}

func (r *postRepo) Unsave(ctx context.Context, postID, userID int64) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&model.PostSave{}).Error
}

func (r *postRepo) SavedByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN post_saves ON post_saves.post_id = posts.id").
		Where("post_saves.user_id = ?", userID).
		Where("posts.flagged = ?", false).
		Order("post_saves.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepo) SetFlag(ctx context.Context, postID int64, flagged bool, reason string, at *time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", postID).
		Updates(map[string]any{"flagged": flagged, "flag_reason": reason, "flagged_at": at}).Error
}
