package biz

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/logger"
)

// ObjectStore is the storage surface the media lifecycle depends on.
// The production implementation sits on MinIO; tests use an in-memory
// fake.
type ObjectStore interface {
	// Put stores an object and returns nothing; the key is chosen by the
	// caller
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Exists reports whether the object is present
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes a single object; deleting a missing object is not
	// an error
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every object under the prefix and returns how
	// many were removed
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// PublicURL returns the permanent public URL for a key
	PublicURL(key string) string

	// PresignedURL returns a time-limited URL for a private key
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Uploaded describes a stored object: its key and the URL clients use
// to reach it.
type Uploaded struct {
	Key string
	URL string
}

// MediaUsecase implements the upload and lifecycle rules for every
// media kind.
type MediaUsecase struct {
	store  ObjectStore
	thumbs ThumbnailGenerator
	logger *logger.Logger
}

func NewMediaUsecase(store ObjectStore, thumbs ThumbnailGenerator, l *logger.Logger) *MediaUsecase {
	return &MediaUsecase{
		store:  store,
		thumbs: thumbs,
		logger: l,
	}
}

// Upload validates and stores an incoming file for the given kind and
// owner. For singleton kinds (avatar, cover) the owner's directory is
// cleared first so at most one object survives; that sweep is best
// effort and never fails the upload.
func (uc *MediaUsecase) Upload(ctx context.Context, in Incoming, reader io.Reader, kind Kind, ownerID int64, field string) (*Uploaded, error) {
	ext, err := Validate(in, kind, field)
	if err != nil {
		return nil, err
	}

	if kind.IsSingleton() {
		prefix := Dir(kind, ownerID) + "/"
		if removed, err := uc.store.DeletePrefix(ctx, prefix); err != nil {
			uc.logger.Warn("failed to clear previous objects before upload",
				zap.String("prefix", prefix),
				zap.Int64("owner_id", ownerID),
				zap.Error(err))
		} else if removed > 0 {
			uc.logger.Info("replaced previous objects",
				zap.String("prefix", prefix),
				zap.Int("removed", removed))
		}
	}

	key, err := NewKey(kind, ownerID, ext)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrMediaStorageFailed)
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := uc.store.Put(ctx, key, reader, in.Size, contentType); err != nil {
		uc.logger.Error("failed to store object",
			zap.String("key", key),
			zap.Int64("owner_id", ownerID),
			zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.ErrMediaStorageFailed)
	}

	uc.logger.Info("object stored",
		zap.String("key", key),
		zap.String("kind", kind.String()),
		zap.Int64("owner_id", ownerID),
		zap.Int64("size", in.Size))

	return &Uploaded{Key: key, URL: uc.store.PublicURL(key)}, nil
}

// UploadWithThumbnail stores a video and generates a placeholder
// thumbnail for it. Thumbnail failure does not fail the upload.
func (uc *MediaUsecase) UploadWithThumbnail(ctx context.Context, in Incoming, reader io.Reader, kind Kind, ownerID int64, field string) (*Uploaded, string, error) {
	up, err := uc.Upload(ctx, in, reader, kind, ownerID, field)
	if err != nil {
		return nil, "", err
	}
	thumbURL, err := uc.thumbs.Generate(ctx, ownerID)
	if err != nil {
		uc.logger.Warn("failed to generate thumbnail",
			zap.String("key", up.Key),
			zap.Error(err))
		return up, "", nil
	}
	return up, thumbURL, nil
}

// DeleteByURL resolves a public URL to its key and removes the object.
// Returns whether the object existed. Unknown URLs and already-deleted
// objects report found=false without error.
func (uc *MediaUsecase) DeleteByURL(ctx context.Context, rawURL, publicBase string) (bool, error) {
	key := KeyFromURL(rawURL, publicBase)
	if key == "" {
		return false, nil
	}
	return uc.DeleteByKey(ctx, key)
}

// DeleteByKey removes a single object if present and reports whether it
// existed.
func (uc *MediaUsecase) DeleteByKey(ctx context.Context, key string) (bool, error) {
	exists, err := uc.store.Exists(ctx, key)
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrMediaStorageFailed)
	}
	if !exists {
		return false, nil
	}
	if err := uc.store.Delete(ctx, key); err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrMediaStorageFailed)
	}
	uc.logger.Info("object deleted", zap.String("key", key))
	return true, nil
}

// DeleteOwnerDir removes every object an owner holds under a kind.
// Used by cascade deletion; errors are returned to the caller, which
// logs and continues.
func (uc *MediaUsecase) DeleteOwnerDir(ctx context.Context, kind Kind, ownerID int64) (int, error) {
	prefix := Dir(kind, ownerID) + "/"
	removed, err := uc.store.DeletePrefix(ctx, prefix)
	if err != nil {
		return removed, apperrors.Wrap(err, apperrors.ErrMediaStorageFailed)
	}
	if removed > 0 {
		uc.logger.Info("owner directory cleared",
			zap.String("prefix", prefix),
			zap.Int("removed", removed))
	}
	return removed, nil
}

// CheckOwnership verifies a key belongs to the owner before it may be
// attached to content. Empty keys pass; they mean "no media".
func (uc *MediaUsecase) CheckOwnership(key string, ownerID int64) error {
	if key == "" {
		return nil
	}
	if !OwnsKey(key, ownerID) {
		return apperrors.New(apperrors.ErrMediaNotOwned)
	}
	return nil
}

// PresignedURL exposes a time-limited URL for verification documents
// and other private objects.
func (uc *MediaUsecase) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := uc.store.PresignedURL(ctx, key, expiry)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrMediaStorageFailed)
	}
	return u, nil
}
