package data

import (
	"context"

	"github.com/codeskytz/date-api/internal/data/model"
	"github.com/codeskytz/date-api/internal/pkg/database"
	"github.com/codeskytz/date-api/internal/verification/biz"
)

type verificationRepo struct {
	db *database.DB
}

func NewVerificationRepo(db *database.DB) biz.VerificationRepo {
	return &verificationRepo{db: db}
}

func (r *verificationRepo) Create(ctx context.Context, v *model.Verification) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *verificationRepo) FindByID(ctx context.Context, id int64) (*model.Verification, error) {
	var v model.Verification
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *verificationRepo) FindPendingByUser(ctx context.Context, userID int64) (*model.Verification, error) {
	var v model.Verification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.VerificationPending).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *verificationRepo) FindLatestByUser(ctx context.Context, userID int64) (*model.Verification, error) {
	var v model.Verification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *verificationRepo) Update(ctx context.Context, v *model.Verification) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *verificationRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*model.Verification, error) {
	q := r.db.WithContext(ctx).Model(&model.Verification{})
	if status != "" && status != "all" {
		q = q.Where("status = ?", status)
	}

	var items []*model.Verification
	err := q.Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&items).Error
	return items, err
}
