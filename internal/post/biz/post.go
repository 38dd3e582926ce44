package biz

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codeskytz/date-api/internal/data/model"
	mediabiz "github.com/codeskytz/date-api/internal/media/biz"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/logger"
)

// PostRepo is the post storage surface.
type PostRepo interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id int64) (*model.Post, error)

	// Feed returns posts from the viewer and the users they follow,
	// newest first, excluding flagged posts.
	Feed(ctx context.Context, viewerID int64, limit, offset int) ([]*model.Post, error)
	ByUser(ctx context.Context, userID int64, includeFlagged bool, limit, offset int) ([]*model.Post, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*model.Post, error)

	// Purge removes the post and its likes, comments and saves in one
	// transaction.
	Purge(ctx context.Context, postID int64) error

	Like(ctx context.Context, postID, userID int64) (bool, error)
	Unlike(ctx context.Context, postID, userID int64) error
	AddComment(ctx context.Context, comment *model.PostComment) error
	Comments(ctx context.Context, postID int64, limit, offset int) ([]*model.PostComment, error)
	Save(ctx context.Context, postID, userID int64) (bool, error)
	Unsave(ctx context.Context, postID, userID int64) error
	SavedByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.Post, error)

	SetFlag(ctx context.Context, postID int64, flagged bool, reason string, at *time.Time) error
}

// Notifier fans out activity notifications. Implementations swallow
// their own failures; the triggering write must not depend on them.
type Notifier interface {
	Notify(ctx context.Context, userID, actorID int64, event string, postID *int64)
}

type CreatePostInput struct {
	Content      string
	MediaURL     string
	MediaType    string
	ThumbnailURL string
	IsReel       bool
}

// PostUsecase implements post creation, feeds, reactions and deletion.
type PostUsecase struct {
	repo       PostRepo
	media      *mediabiz.MediaUsecase
	notifier   Notifier
	publicBase string
	logger     *logger.Logger
}

func NewPostUsecase(repo PostRepo, media *mediabiz.MediaUsecase, notifier Notifier, publicBaseURL string, l *logger.Logger) *PostUsecase {
	return &PostUsecase{
		repo:       repo,
		media:      media,
		notifier:   notifier,
		publicBase: publicBaseURL,
		logger:     l,
	}
}

// Create validates that any attached media belongs to the author and
// stores the post. A post needs content or media, not necessarily both.
func (uc *PostUsecase) Create(ctx context.Context, userID int64, in CreatePostInput) (*model.Post, error) {
	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" && in.MediaURL == "" {
		return nil, apperrors.NewField(apperrors.ErrPostInvalidInput, "content",
			"The post must have content or media.")
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

	if in.MediaURL != "" && in.MediaType != "image" && in.MediaType != "video" {
		return nil, apperrors.NewField(apperrors.ErrPostInvalidInput, "media_type",
			"The media_type must be image or video.")
	}

	if in.IsReel && in.MediaType != "video" {
		return nil, apperrors.NewField(apperrors.ErrPostInvalidInput, "is_reel",
			"Only video posts can be reels.")
	}

	post := &model.Post{
		UserID:       userID,
		Content:      in.Content,
		MediaURL:     in.MediaURL,
		MediaType:    in.MediaType,
		ThumbnailURL: in.ThumbnailURL,
		IsReel:       in.IsReel,
	}
	if err := uc.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	uc.logger.Info("post created",
		zap.Int64("post_id", post.ID),
		zap.Int64("user_id", userID))
	return post, nil
}

// Get loads a single post.
func (uc *PostUsecase) Get(ctx context.Context, id int64) (*model.Post, error) {
	post, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrPostNotFound)
		}
		return nil, err
	}
	return post, nil
}

// Feed returns the viewer's timeline.
func (uc *PostUsecase) Feed(ctx context.Context, viewerID int64, limit, offset int) ([]*model.Post, error) {
	return uc.repo.Feed(ctx, viewerID, clampLimit(limit), offset)
}

// ByUser lists a user's posts. Flagged posts are hidden from everyone
// but moderation.
func (uc *PostUsecase) ByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.Post, error) {
	return uc.repo.ByUser(ctx, userID, false, clampLimit(limit), offset)
}

// Search finds posts by content.
func (uc *PostUsecase) Search(ctx context.Context, query string, limit, offset int) ([]*model.Post, error) {
	return uc.repo.Search(ctx, query, clampLimit(limit), offset)
}

// Delete removes a post the caller owns: its media and thumbnail
// objects first, then the row. Storage failures are logged and never
// block the row delete.
func (uc *PostUsecase) Delete(ctx context.Context, userID, postID int64) error {
	return uc.delete(ctx, postID, &userID)
}

// ForceDelete removes any post, regardless of owner. Moderation only.
func (uc *PostUsecase) ForceDelete(ctx context.Context, postID int64) error {
	return uc.delete(ctx, postID, nil)
}

func (uc *PostUsecase) delete(ctx context.Context, postID int64, requireOwner *int64) error {
	post, err := uc.repo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.New(apperrors.ErrPostNotFound)
		}
		return err
	}
	if requireOwner != nil && post.UserID != *requireOwner {
		return apperrors.New(apperrors.ErrForbidden)
	}

	// Media goes first: while the row exists its URLs still point at
	// anything a failed delete leaves behind.
	for _, rawURL := range []string{post.MediaURL, post.ThumbnailURL} {
		if rawURL == "" {
			continue
		}
		if _, err := uc.media.DeleteByURL(ctx, rawURL, uc.publicBase); err != nil {
			uc.logger.Warn("failed to delete post media",
				zap.Int64("post_id", postID),
				zap.String("url", rawURL),
				zap.Error(err))
		}
	}

	if err := uc.repo.Purge(ctx, postID); err != nil {
		return err
	}

	uc.logger.Info("post deleted", zap.Int64("post_id", postID))
	return nil
}

// Like records a like and reports whether it was new. The post owner
// is notified on the first like from a given user.
func (uc *PostUsecase) Like(ctx context.Context, userID, postID int64) (bool, error) {
	post, err := uc.Get(ctx, postID)
	if err != nil {
		return false, err
	}
	created, err := uc.repo.Like(ctx, postID, userID)
	if err != nil {
		return false, err
	}
	if created {
		uc.notifier.Notify(ctx, post.UserID, userID, model.NotificationLike, &postID)
	}
	return created, nil
}

// Unlike removes a like; removing a missing like is a no-op.
func (uc *PostUsecase) Unlike(ctx context.Context, userID, postID int64) error {
	return uc.repo.Unlike(ctx, postID, userID)
}

// Comment adds a comment to a post.
func (uc *PostUsecase) Comment(ctx context.Context, userID, postID int64, content string) (*model.PostComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewField(apperrors.ErrPostInvalidInput, "content",
			"The content field is required.")
	}
	post, err := uc.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &model.PostComment{PostID: postID, UserID: userID, Content: content}
	if err := uc.repo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	uc.notifier.Notify(ctx, post.UserID, userID, model.NotificationComment, &postID)
	return comment, nil
}

// Comments lists a post's comments.
func (uc *PostUsecase) Comments(ctx context.Context, postID int64, limit, offset int) ([]*model.PostComment, error) {
	if _, err := uc.Get(ctx, postID); err != nil {
		return nil, err
	}
	return uc.repo.Comments(ctx, postID, clampLimit(limit), offset)
}

// ToggleSave bookmarks or un-bookmarks a post and reports the new
// state.
func (uc *PostUsecase) ToggleSave(ctx context.Context, userID, postID int64) (bool, error) {
	if _, err := uc.Get(ctx, postID); err != nil {
		return false, err
	}
	created, err := uc.repo.Save(ctx, postID, userID)
	if err != nil {
		return false, err
	}
	if created {
		return true, nil
	}
	return false, uc.repo.Unsave(ctx, postID, userID)
}

// Saved lists the caller's bookmarked posts.
func (uc *PostUsecase) Saved(ctx context.Context, userID int64, limit, offset int) ([]*model.Post, error) {
	return uc.repo.SavedByUser(ctx, userID, clampLimit(limit), offset)
}

// Flag hides a post from feeds pending review.
func (uc *PostUsecase) Flag(ctx context.Context, postID int64, reason string) error {
	if _, err := uc.Get(ctx, postID); err != nil {
		return err
	}
	now := time.Now()
	return uc.repo.SetFlag(ctx, postID, true, reason, &now)
}

// Unflag restores a flagged post.
func (uc *PostUsecase) Unflag(ctx context.Context, postID int64) error {
	if _, err := uc.Get(ctx, postID); err != nil {
		return err
	}
	return uc.repo.SetFlag(ctx, postID, false, "", nil)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 50 {
		return 20
	}
	return limit
}
