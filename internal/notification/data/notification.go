package data

import (
	"context"
	"time"

	"github.com/codeskytz/date-api/internal/data/model"
	"github.com/codeskytz/date-api/internal/notification/biz"
	"github.com/codeskytz/date-api/internal/pkg/database"
)

type notificationRepo struct {
	db *database.DB
}

func NewNotificationRepo(db *database.DB) biz.NotificationRepo {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.Notification, error) {
	var items []*model.Notification
	err := r.db.WithContext(ctx).
		Preload("Actor").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&items).Error
	return items, err
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, userID, id int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read_at", at)
	return res.RowsAffected > 0, res.Error
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", at).Error
}
