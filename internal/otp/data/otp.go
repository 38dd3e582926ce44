package data

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/codeskytz/date-api/internal/data/model"
	"github.com/codeskytz/date-api/internal/otp/biz"
	"github.com/codeskytz/date-api/internal/pkg/database"
	"github.com/codeskytz/date-api/internal/pkg/redis"
)

type otpRepo struct {
	db *database.DB
}

func NewOtpRepo(db *database.DB) biz.OtpRepo {
	return &otpRepo{db: db}
}

// Upsert replaces any previous code for the address with the new one.
func (r *otpRepo) Upsert(ctx context.Context, otp *model.OtpCode) error {
	return r.db.Transaction(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := tx.Where("email = ?", otp.Email).Delete(&model.OtpCode{}).Error; err != nil {
			return err
		}
		return tx.Create(otp).Error
	})
}

func (r *otpRepo) FindLatestByEmail(ctx context.Context, email string) (*model.OtpCode, error) {
	var otp model.OtpCode
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC").
		First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *otpRepo) Update(ctx context.Context, otp *model.OtpCode) error {
	return r.db.WithContext(ctx).Save(otp).Error
}

// redisCooldown implements biz.Cooldowner on redis SetNX.
type redisCooldown struct {
	rdb *redis.Client
}

func NewCooldown(rdb *redis.Client) biz.Cooldowner {
	return &redisCooldown{rdb: rdb}
}

func (c *redisCooldown) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, key, "1", ttl)
}

func (c *redisCooldown) Remaining(ctx context.Context, key string) (time.Duration, error) {
	return c.rdb.TTL(ctx, key)
}
