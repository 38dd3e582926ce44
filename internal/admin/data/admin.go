package data

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/codeskytz/date-api/internal/admin/biz"
	"github.com/codeskytz/date-api/internal/data/model"
	"github.com/codeskytz/date-api/internal/pkg/database"
)

type adminRepo struct {
	db *database.DB
}

func NewAdminRepo(db *database.DB) biz.AdminRepo {
	return &adminRepo{db: db}
}

func (r *adminRepo) Stats(ctx context.Context) (*biz.Stats, error) {
	stats := &biz.Stats{}
	db := r.db.WithContext(ctx)

	counts := []struct {
		dest  *int64
		query func() error
	}{
		{&stats.Users, func() error {
			return db.Model(&model.User{}).Count(&stats.Users).Error
		}},
		{&stats.Posts, func() error {
			return db.Model(&model.Post{}).Count(&stats.Posts).Error
		}},
		{&stats.Stories, func() error {
			return db.Model(&model.Story{}).Count(&stats.Stories).Error
		}},
		{&stats.FlaggedPosts, func() error {
			return db.Model(&model.Post{}).Where("flagged = ?", true).Count(&stats.FlaggedPosts).Error
		}},
		{&stats.PendingVerifications, func() error {
			return db.Model(&model.Verification{}).
				Where("status = ?", model.VerificationPending).
				Count(&stats.PendingVerifications).Error
		}},
		{&stats.BannedUsers, func() error {
			return db.Model(&model.User{}).Where("banned = ?", true).Count(&stats.BannedUsers).Error
		}},
	}
	for _, c := range counts {
		if err := c.query(); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func (r *adminRepo) ListUsers(ctx context.Context, search string, limit, offset int) ([]*model.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})
	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where("username ILIKE ? OR email ILIKE ? OR name ILIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*model.User
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

func (r *adminRepo) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *adminRepo) SetBanned(ctx context.Context, userID int64, banned bool) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("banned", banned).Error
}

func (r *adminRepo) ListPosts(ctx context.Context, limit, offset int) ([]*model.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Post{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*model.Post
	err := q.Preload("User").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, total, err
}

func (r *adminRepo) ListSettings(ctx context.Context) ([]*model.Setting, error) {
	var settings []*model.Setting
	err := r.db.WithContext(ctx).Order("key").Find(&settings).Error
	return settings, err
}

func (r *adminRepo) PutSetting(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&model.Setting{Key: key, Value: value}).Error
}

func (r *adminRepo) ListFlaggedPosts(ctx context.Context, limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("flagged = ?", true).
		Order("updated_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *adminRepo) LogActivity(ctx context.Context, entry *model.AdminActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *adminRepo) ListActivity(ctx context.Context, limit, offset int) ([]*model.AdminActivityLog, error) {
	var entries []*model.AdminActivityLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, err
}
