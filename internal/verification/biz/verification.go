package biz

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codeskytz/date-api/internal/data/model"
	mediabiz "github.com/codeskytz/date-api/internal/media/biz"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/logger"
)

// documentPresignTTL bounds how long a reviewer's document link works.
const documentPresignTTL = time.Hour

// VerificationRepo stores verification requests.
type VerificationRepo interface {
	Create(ctx context.Context, v *model.Verification) error
	FindByID(ctx context.Context, id int64) (*model.Verification, error)
	FindPendingByUser(ctx context.Context, userID int64) (*model.Verification, error)
	FindLatestByUser(ctx context.Context, userID int64) (*model.Verification, error)
	Update(ctx context.Context, v *model.Verification) error
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*model.Verification, error)
}

// UserVerifier flips the verified badge on an account.
type UserVerifier interface {
	SetVerified(ctx context.Context, userID int64, verified bool) error
}

// Document is one uploaded verification file.
type Document struct {
	Field  string
	Meta   mediabiz.Incoming
	Reader io.Reader
}

// WithDocuments is a verification request with presigned links to its
// documents, for reviewers.
type WithDocuments struct {
	*model.Verification
	DocumentFrontURL string `json:"document_front_url,omitempty"`
	DocumentBackURL  string `json:"document_back_url,omitempty"`
	SelfieURL        string `json:"selfie_url,omitempty"`
}

// VerificationUsecase implements identity verification requests.
type VerificationUsecase struct {
	repo   VerificationRepo
	media  *mediabiz.MediaUsecase
	users  UserVerifier
	logger *logger.Logger
}

func NewVerificationUsecase(repo VerificationRepo, media *mediabiz.MediaUsecase, users UserVerifier, l *logger.Logger) *VerificationUsecase {
	return &VerificationUsecase{repo: repo, media: media, users: users, logger: l}
}

func validType(t string) bool {
	return t == model.VerificationTypeIdentity ||
		t == model.VerificationTypeBusiness ||
		t == model.VerificationTypeCreator
}

// Submit files a request with its three documents. A user may have at
// most one pending request at a time.
func (uc *VerificationUsecase) Submit(ctx context.Context, userID int64, vtype string, front, back, selfie Document) (*model.Verification, error) {
	if !validType(vtype) {
		return nil, apperrors.NewField(apperrors.ErrInvalidParams, "type",
			"The type must be identity, business or creator.")
	}

	if _, err := uc.repo.FindPendingByUser(ctx, userID); err == nil {
		return nil, apperrors.New(apperrors.ErrVerificationPendingExists)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	keys := make(map[string]string, 3)
	for _, doc := range []Document{front, back, selfie} {
		up, err := uc.media.Upload(ctx, doc.Meta, doc.Reader, mediabiz.KindVerification, userID, doc.Field)
		if err != nil {
			// Roll back earlier documents so nothing orphans.
			for _, key := range keys {
				if _, derr := uc.media.DeleteByKey(ctx, key); derr != nil {
					uc.logger.Warn("failed to clean up verification document",
						zap.String("key", key), zap.Error(derr))
				}
			}
			return nil, err
		}
		keys[doc.Field] = up.Key
	}

	v := &model.Verification{
		UserID:        userID,
		Type:          vtype,
		Status:        model.VerificationPending,
		DocumentFront: keys[front.Field],
		DocumentBack:  keys[back.Field],
		Selfie:        keys[selfie.Field],
	}
	if err := uc.repo.Create(ctx, v); err != nil {
		return nil, err
	}

	uc.logger.Info("verification submitted",
		zap.Int64("verification_id", v.ID),
		zap.Int64("user_id", userID),
		zap.String("type", vtype))
	return v, nil
}

// Status returns the user's latest request.
func (uc *VerificationUsecase) Status(ctx context.Context, userID int64) (*model.Verification, error) {
	v, err := uc.repo.FindLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrVerificationNotFound)
		}
		return nil, err
	}
	return v, nil
}

// Cancel withdraws a pending request and deletes its documents. Only
// pending requests can be cancelled.
func (uc *VerificationUsecase) Cancel(ctx context.Context, userID int64) error {
	v, err := uc.repo.FindLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.New(apperrors.ErrVerificationNotFound)
		}
		return err
	}
	if v.Status != model.VerificationPending {
		return apperrors.New(apperrors.ErrVerificationNotPending)
	}

	docs := *v
	v.Status = model.VerificationCancelled
	v.DocumentFront = ""
	v.DocumentBack = ""
	v.Selfie = ""
	if err := uc.repo.Update(ctx, v); err != nil {
		return err
	}
	uc.deleteDocuments(ctx, &docs)

	uc.logger.Info("verification cancelled",
		zap.Int64("verification_id", v.ID),
		zap.Int64("user_id", userID))
	return nil
}

// Review decides a pending request. Approving sets the user's verified
// badge.
func (uc *VerificationUsecase) Review(ctx context.Context, id int64, approve bool, note, reviewedBy string) (*model.Verification, error) {
	v, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrVerificationNotFound)
		}
		return nil, err
	}
	if v.Status != model.VerificationPending {
		return nil, apperrors.New(apperrors.ErrVerificationNotPending)
	}

	now := time.Now()
	if approve {
		v.Status = model.VerificationApproved
	} else {
		v.Status = model.VerificationRejected
	}
	v.Note = note
	v.ReviewedBy = reviewedBy
	v.ReviewedAt = &now
	if err := uc.repo.Update(ctx, v); err != nil {
		return nil, err
	}

	if approve {
		if err := uc.users.SetVerified(ctx, v.UserID, true); err != nil {
			return nil, err
		}
	}

	uc.logger.Info("verification reviewed",
		zap.Int64("verification_id", v.ID),
		zap.Bool("approved", approve))
	return v, nil
}

// Get loads a single request with presigned document links, for
// reviewers.
func (uc *VerificationUsecase) Get(ctx context.Context, id int64) (*WithDocuments, error) {
	v, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrVerificationNotFound)
		}
		return nil, err
	}
	return uc.withDocuments(ctx, v), nil
}

// Queue lists requests by status for reviewers, each with presigned
// document links.
func (uc *VerificationUsecase) Queue(ctx context.Context, status string, limit, offset int) ([]*WithDocuments, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	items, err := uc.repo.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]*WithDocuments, 0, len(items))
	for _, v := range items {
		out = append(out, uc.withDocuments(ctx, v))
	}
	return out, nil
}

func (uc *VerificationUsecase) withDocuments(ctx context.Context, v *model.Verification) *WithDocuments {
	wd := &WithDocuments{Verification: v}
	presign := func(key string) string {
		if key == "" {
			return ""
		}
		u, err := uc.media.PresignedURL(ctx, key, documentPresignTTL)
		if err != nil {
			uc.logger.Warn("failed to presign verification document",
				zap.String("key", key), zap.Error(err))
			return ""
		}
		return u
	}
	wd.DocumentFrontURL = presign(v.DocumentFront)
	wd.DocumentBackURL = presign(v.DocumentBack)
	wd.SelfieURL = presign(v.Selfie)
	return wd
}

func (uc *VerificationUsecase) deleteDocuments(ctx context.Context, v *model.Verification) {
	for _, key := range []string{v.DocumentFront, v.DocumentBack, v.Selfie} {
		if key == "" {
			continue
		}
		if _, err := uc.media.DeleteByKey(ctx, key); err != nil {
			uc.logger.Warn("failed to delete verification document",
				zap.String("key", key), zap.Error(err))
		}
	}
}
