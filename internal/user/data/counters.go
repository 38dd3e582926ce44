package data

import (
	"context"

	"github.com/codeskytz/date-api/internal/data/model"
	"github.com/codeskytz/date-api/internal/pkg/database"
	"github.com/codeskytz/date-api/internal/user/biz"
)

type countersRepo struct {
	follows biz.FollowRepo
	db      *database.DB
}

func NewCounters(db *database.DB, follows biz.FollowRepo) biz.Counters {
	return &countersRepo{follows: follows, db: db}
}

func (r *countersRepo) CountFollowers(ctx context.Context, userID int64) (int64, error) {
	return r.follows.CountFollowers(ctx, userID)
}

func (r *countersRepo) CountFollowing(ctx context.Context, userID int64) (int64, error) {
	return r.follows.CountFollowing(ctx, userID)
}

func (r *countersRepo) CountPosts(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
