package biz

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codeskytz/date-api/internal/data/model"
	mediabiz "github.com/codeskytz/date-api/internal/media/biz"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/logger"
	"github.com/codeskytz/date-api/internal/pkg/workerpool"
)

// UserRepo is the profile storage surface.
type UserRepo interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	Search(ctx context.Context, query string, limit, offset int) ([]*model.User, error)

	// PurgeContent removes every row the user owns in one transaction:
	// posts with their likes, comments and saves, stories with their
	// views, follow edges, tokens, codes and verification requests,
	// then the user row itself.
	PurgeContent(ctx context.Context, userID int64) error
}

// Counters supplies the aggregate numbers a profile view shows.
type Counters interface {
	CountFollowers(ctx context.Context, userID int64) (int64, error)
	CountFollowing(ctx context.Context, userID int64) (int64, error)
	CountPosts(ctx context.Context, userID int64) (int64, error)
}

// Profile is a user plus the counts shown next to it.
type Profile struct {
	*model.User
	Followers int64 `json:"followers_count"`
	Following int64 `json:"following_count"`
	Posts     int64 `json:"posts_count"`
}

type UpdateProfileInput struct {
	Name *string
	Bio  *string
}

// userContentKinds are the media directories swept when an account is
// deleted.
var userContentKinds = []mediabiz.Kind{
	mediabiz.KindPostImage,
	mediabiz.KindPostVideo,
	mediabiz.KindStoryImage,
	mediabiz.KindStoryVideo,
	mediabiz.KindAvatar,
	mediabiz.KindCover,
	mediabiz.KindThumbnail,
	mediabiz.KindVerification,
}

// UserUsecase implements profile reads, updates and account deletion.
type UserUsecase struct {
	repo     UserRepo
	counters Counters
	media    *mediabiz.MediaUsecase
	pool     *workerpool.Pool
	logger   *logger.Logger
}

func NewUserUsecase(repo UserRepo, counters Counters, media *mediabiz.MediaUsecase, pool *workerpool.Pool, l *logger.Logger) *UserUsecase {
	return &UserUsecase{
		repo:     repo,
		counters: counters,
		media:    media,
		pool:     pool,
		logger:   l,
	}
}

// GetProfile loads a user with follower, following and post counts.
func (uc *UserUsecase) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := uc.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrUserNotFound)
		}
		return nil, err
	}
	return uc.buildProfile(ctx, user)
}

// GetProfileByUsername is the public profile lookup.
func (uc *UserUsecase) GetProfileByUsername(ctx context.Context, username string) (*Profile, error) {
	user, err := uc.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrUserNotFound)
		}
		return nil, err
	}
	if user.Banned {
		return nil, apperrors.New(apperrors.ErrUserNotFound)
	}
	return uc.buildProfile(ctx, user)
}

func (uc *UserUsecase) buildProfile(ctx context.Context, user *model.User) (*Profile, error) {
	p := &Profile{User: user}
	var err error
	if p.Followers, err = uc.counters.CountFollowers(ctx, user.ID); err != nil {
		return nil, err
	}
	if p.Following, err = uc.counters.CountFollowing(ctx, user.ID); err != nil {
		return nil, err
	}
	if p.Posts, err = uc.counters.CountPosts(ctx, user.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProfile applies partial profile edits.
func (uc *UserUsecase) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (*model.User, error) {
	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	if len(fields) > 0 {
		if err := uc.repo.UpdateFields(ctx, userID, fields); err != nil {
			return nil, err
		}
	}
	return uc.repo.FindByID(ctx, userID)
}

// Privacy returns the account's audience setting.
func (uc *UserUsecase) Privacy(ctx context.Context, userID int64) (string, error) {
	user, err := uc.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.New(apperrors.ErrUserNotFound)
		}
		return "", err
	}
	if user.Privacy == "" {
		return model.PrivacyPublic, nil
	}
	return user.Privacy, nil
}

// SetPrivacy switches the account between public and private.
func (uc *UserUsecase) SetPrivacy(ctx context.Context, userID int64, privacy string) error {
	if privacy != model.PrivacyPublic && privacy != model.PrivacyPrivate {
		return apperrors.NewField(apperrors.ErrInvalidParams, "privacy",
			"The privacy must be public or private.")
	}
	return uc.repo.UpdateFields(ctx, userID, map[string]any{"privacy": privacy})
}

// SetAvatar persists a freshly uploaded avatar URL.
func (uc *UserUsecase) SetAvatar(ctx context.Context, userID int64, url string) error {
	return uc.repo.UpdateFields(ctx, userID, map[string]any{"avatar": url})
}

// SetCover persists a freshly uploaded cover URL.
func (uc *UserUsecase) SetCover(ctx context.Context, userID int64, url string) error {
	return uc.repo.UpdateFields(ctx, userID, map[string]any{"cover": url})
}

// SetVerified flips the verified badge; driven by verification review.
func (uc *UserUsecase) SetVerified(ctx context.Context, userID int64, verified bool) error {
	return uc.repo.UpdateFields(ctx, userID, map[string]any{"verified": verified})
}

// Search finds users by username or display name.
func (uc *UserUsecase) Search(ctx context.Context, query string, limit, offset int) ([]*model.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return uc.repo.Search(ctx, query, limit, offset)
}

// DeleteAccount removes a user and everything they own. Database rows
// go first in one transaction; object storage sweeps run on the worker
// pool afterwards. A failed sweep is logged and retried never; it must
// not resurrect the account.
func (uc *UserUsecase) DeleteAccount(ctx context.Context, userID int64) error {
	if _, err := uc.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.New(apperrors.ErrUserNotFound)
		}
		return err
	}

	if err := uc.repo.PurgeContent(ctx, userID); err != nil {
		return err
	}

	for _, kind := range userContentKinds {
		kind := kind
		err := uc.pool.Submit(func() {
			// The request context is gone by the time this runs.
			if _, err := uc.media.DeleteOwnerDir(context.Background(), kind, userID); err != nil {
				uc.logger.Warn("cascade media sweep failed",
					zap.String("kind", kind.String()),
					zap.Int64("user_id", userID),
					zap.Error(err))
			}
		})
		if err != nil {
			uc.logger.Warn("failed to schedule media sweep",
				zap.String("kind", kind.String()),
				zap.Int64("user_id", userID),
				zap.Error(err))
		}
	}

	uc.logger.Info("account deleted", zap.Int64("user_id", userID))
	return nil
}
