package data

import (
	"context"

	"gorm.io/gorm"

	"github.com/codeskytz/date-api/internal/data/model"
	"github.com/codeskytz/date-api/internal/pkg/database"
	"github.com/codeskytz/date-api/internal/user/biz"
)

type userRepo struct {
	db *database.DB
}

func NewUserRepo(db *database.DB) biz.UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *userRepo) Search(ctx context.Context, query string, limit, offset int) ([]*model.User, error) {
	var users []*model.User
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("banned = ?", false).
		Where("username ILIKE ? OR name ILIKE ?", pattern, pattern).
		Order("username ASC").
		Limit(limit).Offset(offset).
		Find(&users).Error
	return users, err
}

// PurgeContent removes everything a user owns in one transaction. Post
// reactions owned by other users on the deleted user's posts go too.
func (r *userRepo) PurgeContent(ctx context.Context, userID int64) error {
	return r.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var postIDs []int64
		if err := tx.Model(&model.Post{}).Where("user_id = ?", userID).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&model.PostLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&model.PostComment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&model.PostSave{}).Error; err != nil {
				return err
			}
		}
		// Reactions the user left on other people's posts.
		for _, m := range []any{&model.PostLike{}, &model.PostComment{}, &model.PostSave{}} {
			if err := tx.Where("user_id = ?", userID).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&model.Post{}).Error; err != nil {
			return err
		}

		var storyIDs []int64
		if err := tx.Model(&model.Story{}).Where("user_id = ?", userID).Pluck("id", &storyIDs).Error; err != nil {
			return err
		}
		if len(storyIDs) > 0 {
			if err := tx.Where("story_id IN ?", storyIDs).Delete(&model.StoryView{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.StoryView{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.Story{}).Error; err != nil {
			return err
		}

		if err := tx.Where("follower_id = ? OR following_id = ?", userID, userID).Delete(&model.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR actor_id = ?", userID, userID).Delete(&model.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.AuthToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.Verification{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.User{}, userID).Error
	})
}
