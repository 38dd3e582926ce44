package biz

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codeskytz/date-api/internal/data/model"
	mediabiz "github.com/codeskytz/date-api/internal/media/biz"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/logger"
)

// Image story durations are seconds; video story durations are minutes.
const (
	minImageDurationSec = 3600
	maxImageDurationSec = 86400
	defImageDurationSec = 86400

	minVideoDurationMin = 5
	maxVideoDurationMin = 43200
	defVideoDurationMin = 1440
)

// StoryRepo is the story storage surface.
type StoryRepo interface {
	Create(ctx context.Context, story *model.Story) error
	FindByID(ctx context.Context, id int64) (*model.Story, error)

	// FeedForViewer returns stories by the viewer and who they follow,
	// newest first. Expiry is the caller's concern.
	FeedForViewer(ctx context.Context, viewerID int64, since time.Time, limit, offset int) ([]*model.Story, error)
	ByUser(ctx context.Context, userID int64, since time.Time, limit, offset int) ([]*model.Story, error)

	// Purge removes the story and its views in one transaction.
	Purge(ctx context.Context, storyID int64) error

	// AddView records a unique view and bumps the counter; reports
	// whether the view was new.
	AddView(ctx context.Context, storyID, viewerID int64) (bool, error)
}

type CreateStoryInput struct {
	MediaURL     string
	MediaType    string
	ThumbnailURL string
	Caption      string

	// Duration is seconds for images, minutes for videos. Zero picks
	// the default.
	Duration int64
}

// StoryView is a story with its computed expiry state attached.
type StoryView struct {
	*model.Story
	ExpiresAt        time.Time `json:"expires_at"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

// StoryUsecase implements ephemeral story lifecycle. Nothing reaps
// expired rows on a timer; expiry is computed whenever a story is read.
type StoryUsecase struct {
	repo       StoryRepo
	media      *mediabiz.MediaUsecase
	publicBase string
	logger     *logger.Logger
}

func NewStoryUsecase(repo StoryRepo, media *mediabiz.MediaUsecase, publicBaseURL string, l *logger.Logger) *StoryUsecase {
	return &StoryUsecase{
		repo:       repo,
		media:      media,
		publicBase: publicBaseURL,
		logger:     l,
	}
}

// Lifetime converts a story's duration into a wall-clock lifetime.
func Lifetime(story *model.Story) time.Duration {
	if story.MediaType == "video" {
		return time.Duration(story.Duration) * time.Minute
	}
	return time.Duration(story.Duration) * time.Second
}

// ExpiresAt is the moment the story stops being visible.
func ExpiresAt(story *model.Story) time.Time {
	return story.CreatedAt.Add(Lifetime(story))
}

// IsExpired reports whether the story has passed its expiry.
func IsExpired(story *model.Story, now time.Time) bool {
	return now.After(ExpiresAt(story))
}

// clampDuration normalizes a requested duration into the allowed range
// for the media type.
func clampDuration(mediaType string, requested int64) int64 {
	if mediaType == "video" {
		if requested == 0 {
			return defVideoDurationMin
		}
		if requested < minVideoDurationMin {
			return minVideoDurationMin
		}
		if requested > maxVideoDurationMin {
			return maxVideoDurationMin
		}
		return requested
	}
	if requested == 0 {
		return defImageDurationSec
	}
	if requested < minImageDurationSec {
		return minImageDurationSec
	}
	if requested > maxImageDurationSec {
		return maxImageDurationSec
	}
	return requested
}

// Create validates media ownership and stores the story.
func (uc *StoryUsecase) Create(ctx context.Context, userID int64, in CreateStoryInput) (*model.Story, error) {
	if in.MediaURL == "" {
		return nil, apperrors.NewField(apperrors.ErrInvalidParams, "media_url",
			"The media_url field is required.")
	}
	if in.MediaType != "image" && in.MediaType != "video" {
		return nil, apperrors.NewField(apperrors.ErrInvalidParams, "media_type",
			"The media_type must be image or video.")
	}

	for _, rawURL := range []string{in.MediaURL, in.ThumbnailURL} {
		if rawURL == "" {
			continue
		}
		key := mediabiz.KeyFromURL(rawURL, uc.publicBase)
		if key == "" {
			return nil, apperrors.New(apperrors.ErrMediaInvalidURL)
		}
		if err := uc.media.CheckOwnership(key, userID); err != nil {
			return nil, err
		}
	}

	story := &model.Story{
		UserID:       userID,
		MediaURL:     in.MediaURL,
		MediaType:    in.MediaType,
		ThumbnailURL: in.ThumbnailURL,
		Caption:      in.Caption,
		Duration:     clampDuration(in.MediaType, in.Duration),
	}
	if err := uc.repo.Create(ctx, story); err != nil {
		return nil, err
	}

	uc.logger.Info("story created",
		zap.Int64("story_id", story.ID),
		zap.Int64("user_id", userID),
		zap.String("media_type", story.MediaType))
	return story, nil
}

// Get loads a story; expired stories read as gone.
func (uc *StoryUsecase) Get(ctx context.Context, id int64) (*StoryView, error) {
	story, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrStoryNotFound)
		}
		return nil, err
	}
	now := time.Now()
	if IsExpired(story, now) {
		return nil, apperrors.New(apperrors.ErrStoryExpired)
	}
	return uc.view(story, now), nil
}

// Feed returns unexpired stories from the viewer's graph.
func (uc *StoryUsecase) Feed(ctx context.Context, viewerID int64, limit, offset int) ([]*StoryView, error) {
	now := time.Now()
	// The widest possible lifetime bounds the scan window.
	since := now.Add(-time.Duration(maxVideoDurationMin) * time.Minute)

	stories, err := uc.repo.FeedForViewer(ctx, viewerID, since, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	return uc.filterLive(stories, now), nil
}

// ByUser returns a user's unexpired stories.
func (uc *StoryUsecase) ByUser(ctx context.Context, userID int64, limit, offset int) ([]*StoryView, error) {
	now := time.Now()
	since := now.Add(-time.Duration(maxVideoDurationMin) * time.Minute)

	stories, err := uc.repo.ByUser(ctx, userID, since, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	return uc.filterLive(stories, now), nil
}

// View records that a user saw a story. Viewing an expired story fails
// the same way reading it does.
func (uc *StoryUsecase) View(ctx context.Context, viewerID, storyID int64) error {
	if _, err := uc.Get(ctx, storyID); err != nil {
		return err
	}
	_, err := uc.repo.AddView(ctx, storyID, viewerID)
	return err
}

// Delete removes a story the caller owns: media objects first, then
// the row. Storage failures are logged and never block the row delete.
func (uc *StoryUsecase) Delete(ctx context.Context, userID, storyID int64) error {
	story, err := uc.repo.FindByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.New(apperrors.ErrStoryNotFound)
		}
		return err
	}
	if story.UserID != userID {
		return apperrors.New(apperrors.ErrForbidden)
	}

	for _, rawURL := range []string{story.MediaURL, story.ThumbnailURL} {
		if rawURL == "" {
			continue
		}
		if _, err := uc.media.DeleteByURL(ctx, rawURL, uc.publicBase); err != nil {
			uc.logger.Warn("failed to delete story media",
				zap.Int64("story_id", storyID),
				zap.String("url", rawURL),
				zap.Error(err))
		}
	}

	if err := uc.repo.Purge(ctx, storyID); err != nil {
		return err
	}

	uc.logger.Info("story deleted", zap.Int64("story_id", storyID))
	return nil
}

func (uc *StoryUsecase) filterLive(stories []*model.Story, now time.Time) []*StoryView {
	live := make([]*StoryView, 0, len(stories))
	for _, story := range stories {
		if IsExpired(story, now) {
			continue
		}
		live = append(live, uc.view(story, now))
	}
	return live
}

func (uc *StoryUsecase) view(story *model.Story, now time.Time) *StoryView {
	expires := ExpiresAt(story)
	return &StoryView{
		Story:            story,
		ExpiresAt:        expires,
		RemainingSeconds: int64(expires.Sub(now).Seconds()),
	}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 50 {
		return 20
	}
	return limit
}
