package data

import (
	"context"

	"go.uber.org/zap"

	"github.com/codeskytz/date-api/internal/conf"
	"github.com/codeskytz/date-api/internal/data/model"
	"github.com/codeskytz/date-api/internal/pkg/database"
	"github.com/codeskytz/date-api/internal/pkg/logger"
	"github.com/codeskytz/date-api/internal/pkg/minio"
	"github.com/codeskytz/date-api/internal/pkg/redis"
)

// Data bundles every external resource the repositories depend on.
type Data struct {
	DB     *database.DB
	Redis  *redis.Client
	MinIO  *minio.Client
	logger *logger.Logger
}

// NewData connects to postgres, redis and the object store, runs
// migrations, and ensures the media bucket exists. The returned cleanup
// closes everything in reverse order.
func NewData(cfg *conf.Config, l *logger.Logger) (*Data, func(), error) {
	db, err := database.New(&cfg.Database, l.Logger)
	if err != nil {
		return nil, nil, err
	}

	if err := db.AutoMigrate(model.All()...); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	rdb, err := redis.NewClient(&cfg.Redis, l.Logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	mc, err := minio.NewClient(&minio.Config{
		Endpoint:        cfg.Storage.Endpoint,
		AccessKeyID:     cfg.Storage.AccessKey,
		SecretAccessKey: cfg.Storage.SecretKey,
		Region:          cfg.Storage.Region,
		UseSSL:          cfg.Storage.UseSSL,
	}, l.Logger)
	if err != nil {
		_ = rdb.Close()
		_ = db.Close()
		return nil, nil, err
	}

	ctx := context.Background()
	exists, err := mc.BucketExists(ctx, cfg.Storage.Bucket)
	if err == nil && !exists {
		err = mc.MakeBucket(ctx, cfg.Storage.Bucket, cfg.Storage.Region)
	}
	if err != nil {
		_ = mc.Close()
		_ = rdb.Close()
		_ = db.Close()
		return nil, nil, err
	}

	d := &Data{DB: db, Redis: rdb, MinIO: mc, logger: l}

	cleanup := func() {
		if err := mc.Close(); err != nil {
			l.Warn("failed to close object store client", zap.Error(err))
		}
		if err := rdb.Close(); err != nil {
			l.Warn("failed to close redis client", zap.Error(err))
		}
		if err := db.Close(); err != nil {
			l.Warn("failed to close database", zap.Error(err))
		}
	}
	return d, cleanup, nil
}
