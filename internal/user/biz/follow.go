package biz

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codeskytz/date-api/internal/data/model"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/logger"
)

// FollowRepo stores the follow graph.
type FollowRepo interface {
	Create(ctx context.Context, followerID, followingID int64) error
	Delete(ctx context.Context, followerID, followingID int64) error
	Exists(ctx context.Context, followerID, followingID int64) (bool, error)
	Followers(ctx context.Context, userID int64, limit, offset int) ([]*model.User, error)
	Following(ctx context.Context, userID int64, limit, offset int) ([]*model.User, error)
	CountFollowers(ctx context.Context, userID int64) (int64, error)
	CountFollowing(ctx context.Context, userID int64) (int64, error)
}

// Notifier fans out activity notifications. Implementations swallow
// their own failures; the triggering write must not depend on them.
type Notifier interface {
	Notify(ctx context.Context, userID, actorID int64, event string, postID *int64)
}

// FollowUsecase implements the follow graph operations.
type FollowUsecase struct {
	repo     FollowRepo
	users    UserRepo
	notifier Notifier
	logger   *logger.Logger
}

func NewFollowUsecase(repo FollowRepo, users UserRepo, notifier Notifier, l *logger.Logger) *FollowUsecase {
	return &FollowUsecase{repo: repo, users: users, notifier: notifier, logger: l}
}

// Follow creates a follow edge. Following yourself is rejected;
// following someone twice is a no-op.
func (uc *FollowUsecase) Follow(ctx context.Context, followerID, followingID int64) error {
	if followerID == followingID {
		return apperrors.New(apperrors.ErrSelfFollow)
	}
	if _, err := uc.users.FindByID(ctx, followingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.New(apperrors.ErrUserNotFound)
		}
		return err
	}

	exists, err := uc.repo.Exists(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := uc.repo.Create(ctx, followerID, followingID); err != nil {
		return err
	}
	uc.notifier.Notify(ctx, followingID, followerID, model.NotificationFollow, nil)
	uc.logger.Info("follow created",
		zap.Int64("follower_id", followerID),
		zap.Int64("following_id", followingID))
	return nil
}

// Unfollow removes the edge; removing a missing edge is a no-op.
func (uc *FollowUsecase) Unfollow(ctx context.Context, followerID, followingID int64) error {
	return uc.repo.Delete(ctx, followerID, followingID)
}

// IsFollowing reports whether the edge exists.
func (uc *FollowUsecase) IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error) {
	return uc.repo.Exists(ctx, followerID, followingID)
}

// Followers lists who follows the user.
func (uc *FollowUsecase) Followers(ctx context.Context, userID int64, limit, offset int) ([]*model.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return uc.repo.Followers(ctx, userID, limit, offset)
}

// Following lists who the user follows.
func (uc *FollowUsecase) Following(ctx context.Context, userID int64, limit, offset int) ([]*model.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return uc.repo.Following(ctx, userID, limit, offset)
}
