package data

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/codeskytz/date-api/internal/data/model"
	"github.com/codeskytz/date-api/internal/pkg/database"
	"github.com/codeskytz/date-api/internal/story/biz"
)

type storyRepo struct {
	db *database.DB
}

func NewStoryRepo(db *database.DB) biz.StoryRepo {
	return &storyRepo{db: db}
}

func (r *storyRepo) Create(ctx context.Context, story *model.Story) error {
	return r.db.WithContext(ctx).Create(story).Error
}

func (r *storyRepo) FindByID(ctx context.Context, id int64) (*model.Story, error) {
	var story model.Story
	if err := r.db.WithContext(ctx).Preload("User").First(&story, id).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *storyRepo) FeedForViewer(ctx context.Context, viewerID int64, since time.Time, limit, offset int) ([]*model.Story, error) {
	var stories []*model.Story
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("created_at > ?", since).
		Where("user_id = ? OR user_id IN (?)",
			viewerID,
			r.db.WithContext(ctx).Model(&model.Follow{}).
				Select("following_id").
				Where("follower_id = ?", viewerID),
		).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&stories).Error
	return stories, err
}

func (r *storyRepo) ByUser(ctx context.Context, userID int64, since time.Time, limit, offset int) ([]*model.Story, error) {
	var stories []*model.Story
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Where("created_at > ?", since).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&stories).Error
	return stories, err
}

func (r *storyRepo) Purge(ctx context.Context, storyID int64) error {
	return r.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := tx.Where("story_id = ?", storyID).Delete(&model.StoryView{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Story{}, storyID).Error
	})
}

func (r *storyRepo) AddView(ctx context.Context, storyID, viewerID int64) (bool, error) {
	created := false
	err := r.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		res := tx.Where("story_id = ? AND user_id = ?", storyID, viewerID).
			FirstOrCreate(&model.StoryView{StoryID: storyID, UserID: viewerID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		return tx.Model(&model.Story{}).Where("id = ?", storyID).
			UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	})
	return created, err
}
