package biz

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codeskytz/date-api/internal/data/model"
	mediabiz "github.com/codeskytz/date-api/internal/media/biz"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/logger"
)

type fakeStore struct {
	objects map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]bool)}
}

func (f *fakeStore) Put(_ context.Context, key string, _ io.Reader, _ int64, _ string) error {
	f.objects[key] = true
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	return f.objects[key], nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	removed := 0
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			delete(f.objects, key)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "https://s3.example.com/date-api/" + key
}

func (f *fakeStore) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://s3.example.com/date-api/" + key + "?sig", nil
}

type fakeVerificationRepo struct {
	items  map[int64]*model.Verification
	nextID int64
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{items: make(map[int64]*model.Verification), nextID: 1}
}

func (f *fakeVerificationRepo) Create(_ context.Context, v *model.Verification) error {
	v.ID = f.nextID
	f.nextID++
	v.CreatedAt = time.Now()
	cp := *v
	f.items[v.ID] = &cp
	return nil
}

func (f *fakeVerificationRepo) FindByID(_ context.Context, id int64) (*model.Verification, error) {
	if v, ok := f.items[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVerificationRepo) FindPendingByUser(_ context.Context, userID int64) (*model.Verification, error) {
	for _, v := range f.items {
		if v.UserID == userID && v.Status == model.VerificationPending {
			cp := *v
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVerificationRepo) FindLatestByUser(_ context.Context, userID int64) (*model.Verification, error) {
	var latest *model.Verification
	for _, v := range f.items {
		if v.UserID != userID {
			continue
		}
		if latest == nil || v.CreatedAt.After(latest.CreatedAt) {
			latest = v
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeVerificationRepo) Update(_ context.Context, v *model.Verification) error {
	cp := *v
	f.items[v.ID] = &cp
	return nil
}

func (f *fakeVerificationRepo) ListByStatus(_ context.Context, status string, _, _ int) ([]*model.Verification, error) {
	var out []*model.Verification
	for _, v := range f.items {
		if v.Status == status {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeVerifier struct {
	verified map[int64]bool
}

func (f *fakeVerifier) SetVerified(_ context.Context, userID int64, verified bool) error {
	if f.verified == nil {
		f.verified = make(map[int64]bool)
	}
	f.verified[userID] = verified
	return nil
}

func doc(field string) Document {
	payload := []byte("doc bytes")
	return Document{
		Field:  field,
		Meta:   mediabiz.Incoming{Filename: field + ".jpg", Size: int64(len(payload))},
		Reader: bytes.NewReader(payload),
	}
}

func newTestVerification(repo VerificationRepo, store *fakeStore, users *fakeVerifier) *VerificationUsecase {
	media := mediabiz.NewMediaUsecase(store, mediabiz.NewPlaceholderThumbnailer(store, 0), logger.NewNop())
	return NewVerificationUsecase(repo, media, users, logger.NewNop())
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("stores request with documents under the user directory", func(t *testing.T) {
		store := newFakeStore()
		uc := newTestVerification(newFakeVerificationRepo(), store, &fakeVerifier{})

		v, err := uc.Submit(ctx, 42, model.VerificationTypeIdentity,
			doc("document_front"), doc("document_back"), doc("selfie"))
		require.NoError(t, err)

		assert.Equal(t, model.VerificationPending, v.Status)
		for _, key := range []string{v.DocumentFront, v.DocumentBack, v.Selfie} {
			assert.True(t, strings.HasPrefix(key, "verification/42/"))
			assert.True(t, store.objects[key])
		}
	})

	t.Run("rejects a second pending request", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		uc := newTestVerification(repo, newFakeStore(), &fakeVerifier{})

		_, err := uc.Submit(ctx, 42, model.VerificationTypeIdentity,
			doc("document_front"), doc("document_back"), doc("selfie"))
		require.NoError(t, err)

		_, err = uc.Submit(ctx, 42, model.VerificationTypeCreator,
			doc("document_front"), doc("document_back"), doc("selfie"))
		assert.Equal(t, apperrors.ErrVerificationPendingExists, apperrors.ExtractCode(err))
	})

	t.Run("rejects an unknown type", func(t *testing.T) {
		uc := newTestVerification(newFakeVerificationRepo(), newFakeStore(), &fakeVerifier{})
		_, err := uc.Submit(ctx, 42, "celebrity",
			doc("document_front"), doc("document_back"), doc("selfie"))
		assert.Equal(t, apperrors.ErrInvalidParams, apperrors.ExtractCode(err))
	})

	t.Run("invalid document rolls back earlier uploads", func(t *testing.T) {
		store := newFakeStore()
		uc := newTestVerification(newFakeVerificationRepo(), store, &fakeVerifier{})

		bad := Document{
			Field:  "selfie",
			Meta:   mediabiz.Incoming{Filename: "selfie.exe", Size: 10},
			Reader: strings.NewReader("x"),
		}
		_, err := uc.Submit(ctx, 42, model.VerificationTypeIdentity,
			doc("document_front"), doc("document_back"), bad)
		require.Error(t, err)
		assert.Empty(t, store.objects)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("marks request cancelled and removes documents", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		store := newFakeStore()
		uc := newTestVerification(repo, store, &fakeVerifier{})

		v, err := uc.Submit(ctx, 42, model.VerificationTypeIdentity,
			doc("document_front"), doc("document_back"), doc("selfie"))
		require.NoError(t, err)

		require.NoError(t, uc.Cancel(ctx, 42))
		assert.Empty(t, store.objects)

		cancelled := repo.items[v.ID]
		require.NotNil(t, cancelled)
		assert.Equal(t, model.VerificationCancelled, cancelled.Status)
		assert.Empty(t, cancelled.DocumentFront)
		assert.Empty(t, cancelled.Selfie)
	})

	t.Run("cannot cancel a reviewed request", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		uc := newTestVerification(repo, newFakeStore(), &fakeVerifier{})

		v, err := uc.Submit(ctx, 42, model.VerificationTypeIdentity,
			doc("document_front"), doc("document_back"), doc("selfie"))
		require.NoError(t, err)

		_, err = uc.Review(ctx, v.ID, false, "blurry documents", "admin@example.com")
		require.NoError(t, err)

		err = uc.Cancel(ctx, 42)
		assert.Equal(t, apperrors.ErrVerificationNotPending, apperrors.ExtractCode(err))
	})

	t.Run("nothing to cancel", func(t *testing.T) {
		uc := newTestVerification(newFakeVerificationRepo(), newFakeStore(), &fakeVerifier{})
		err := uc.Cancel(ctx, 42)
		assert.Equal(t, apperrors.ErrVerificationNotFound, apperrors.ExtractCode(err))
	})
}

func TestReview(t *testing.T) {
	ctx := context.Background()

	t.Run("approval sets the badge", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		users := &fakeVerifier{}
		uc := newTestVerification(repo, newFakeStore(), users)

		v, err := uc.Submit(ctx, 42, model.VerificationTypeIdentity,
			doc("document_front"), doc("document_back"), doc("selfie"))
		require.NoError(t, err)

		reviewed, err := uc.Review(ctx, v.ID, true, "", "admin@example.com")
		require.NoError(t, err)
		assert.Equal(t, model.VerificationApproved, reviewed.Status)
		assert.Equal(t, "admin@example.com", reviewed.ReviewedBy)
		assert.NotNil(t, reviewed.ReviewedAt)
		assert.True(t, users.verified[42])
	})

	t.Run("rejection keeps the badge off", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		users := &fakeVerifier{}
		uc := newTestVerification(repo, newFakeStore(), users)

		v, err := uc.Submit(ctx, 42, model.VerificationTypeBusiness,
			doc("document_front"), doc("document_back"), doc("selfie"))
		require.NoError(t, err)

		reviewed, err := uc.Review(ctx, v.ID, false, "mismatched name", "admin@example.com")
		require.NoError(t, err)
		assert.Equal(t, model.VerificationRejected, reviewed.Status)
		assert.Equal(t, "mismatched name", reviewed.Note)
		assert.False(t, users.verified[42])
	})

	t.Run("double review is rejected", func(t *testing.T) {
		repo := newFakeVerificationRepo()
		uc := newTestVerification(repo, newFakeStore(), &fakeVerifier{})

		v, err := uc.Submit(ctx, 42, model.VerificationTypeIdentity,
			doc("document_front"), doc("document_back"), doc("selfie"))
		require.NoError(t, err)

		_, err = uc.Review(ctx, v.ID, true, "", "admin@example.com")
		require.NoError(t, err)
		_, err = uc.Review(ctx, v.ID, false, "", "admin@example.com")
		assert.Equal(t, apperrors.ErrVerificationNotPending, apperrors.ExtractCode(err))
	})
}
