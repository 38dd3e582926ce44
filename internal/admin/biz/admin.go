package biz

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codeskytz/date-api/internal/data/model"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/logger"
)

// AdminRepo is the moderation storage surface.
type AdminRepo interface {
	Stats(ctx context.Context) (*Stats, error)
	ListUsers(ctx context.Context, search string, limit, offset int) ([]*model.User, int64, error)
	GetUser(ctx context.Context, userID int64) (*model.User, error)
	SetBanned(ctx context.Context, userID int64, banned bool) error
	ListPosts(ctx context.Context, limit, offset int) ([]*model.Post, int64, error)
	ListFlaggedPosts(ctx context.Context, limit, offset int) ([]*model.Post, error)
	ListSettings(ctx context.Context) ([]*model.Setting, error)
	PutSetting(ctx context.Context, key, value string) error
	LogActivity(ctx context.Context, entry *model.AdminActivityLog) error
	ListActivity(ctx context.Context, limit, offset int) ([]*model.AdminActivityLog, error)
}

// TokenRevoker drops a user's API tokens when they are banned.
type TokenRevoker interface {
	RevokeAll(ctx context.Context, userID int64) error
}

// Stats is the dashboard summary.
type Stats struct {
	Users                int64 `json:"users"`
	Posts                int64 `json:"posts"`
	Stories              int64 `json:"stories"`
	FlaggedPosts         int64 `json:"flagged_posts"`
	PendingVerifications int64 `json:"pending_verifications"`
	BannedUsers          int64 `json:"banned_users"`
}

type adminClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AdminUsecase implements the moderation console: a single configured
// operator account with short-lived JWT sessions.
type AdminUsecase struct {
	repo     AdminRepo
	tokens   TokenRevoker
	email    string
	password string
	secret   []byte
	tokenTTL time.Duration
	logger   *logger.Logger
}

func NewAdminUsecase(repo AdminRepo, tokens TokenRevoker, email, password, jwtSecret string, tokenTTL time.Duration, l *logger.Logger) *AdminUsecase {
	return &AdminUsecase{
		repo:     repo,
		tokens:   tokens,
		email:    email,
		password: password,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
		logger:   l,
	}
}

// Login checks the operator credentials and issues a signed session
// token.
func (uc *AdminUsecase) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(uc.email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(uc.password)) == 1
	if !emailOK || !passOK {
		return "", time.Time{}, apperrors.New(apperrors.ErrAdminInvalidCredentials)
	}

	expiresAt := time.Now().Add(uc.tokenTTL)
	claims := adminClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	uc.logger.Info("admin logged in", zap.String("email", email))
	return token, expiresAt, nil
}

// VerifyToken validates an admin session token and returns the
// operator email it was issued to.
func (uc *AdminUsecase) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &adminClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return uc.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperrors.New(apperrors.ErrAuthInvalidToken)
	}
	claims, ok := token.Claims.(*adminClaims)
	if !ok {
		return "", apperrors.New(apperrors.ErrAuthInvalidToken)
	}
	return claims.Email, nil
}

// Dashboard returns the summary counts.
func (uc *AdminUsecase) Dashboard(ctx context.Context) (*Stats, error) {
	return uc.repo.Stats(ctx)
}

// ListUsers pages through accounts, optionally filtered by a search
// term.
func (uc *AdminUsecase) ListUsers(ctx context.Context, search string, limit, offset int) ([]*model.User, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.repo.ListUsers(ctx, search, limit, offset)
}

// GetUser loads one account, banned or not.
func (uc *AdminUsecase) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := uc.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrUserNotFound)
		}
		return nil, err
	}
	return user, nil
}

// ListPosts pages through all posts, newest first.
func (uc *AdminUsecase) ListPosts(ctx context.Context, limit, offset int) ([]*model.Post, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.repo.ListPosts(ctx, limit, offset)
}

// Settings returns all operator settings.
func (uc *AdminUsecase) Settings(ctx context.Context) ([]*model.Setting, error) {
	return uc.repo.ListSettings(ctx)
}

// UpdateSetting upserts one setting and records the change.
func (uc *AdminUsecase) UpdateSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return apperrors.NewField(apperrors.ErrInvalidParams, "key", "The key field is required.")
	}
	if err := uc.repo.PutSetting(ctx, key, value); err != nil {
		return err
	}
	uc.log(ctx, "setting.update", 0, key)
	return nil
}

// BanUser bans an account and revokes its tokens.
func (uc *AdminUsecase) BanUser(ctx context.Context, userID int64, reason string) error {
	if err := uc.repo.SetBanned(ctx, userID, true); err != nil {
		return err
	}
	if err := uc.tokens.RevokeAll(ctx, userID); err != nil {
		uc.logger.Warn("failed to revoke tokens of banned user",
			zap.Int64("user_id", userID), zap.Error(err))
	}
	uc.log(ctx, "user.ban", userID, reason)
	return nil
}

// UnbanUser restores an account.
func (uc *AdminUsecase) UnbanUser(ctx context.Context, userID int64) error {
	if err := uc.repo.SetBanned(ctx, userID, false); err != nil {
		return err
	}
	uc.log(ctx, "user.unban", userID, "")
	return nil
}

// FlaggedPosts lists posts awaiting review.
func (uc *AdminUsecase) FlaggedPosts(ctx context.Context, limit, offset int) ([]*model.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.repo.ListFlaggedPosts(ctx, limit, offset)
}

// Activity pages through the moderation log.
func (uc *AdminUsecase) Activity(ctx context.Context, limit, offset int) ([]*model.AdminActivityLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return uc.repo.ListActivity(ctx, limit, offset)
}

// Record writes an entry to the moderation log. Exposed so admin routes
// that call other usecases still leave a trail.
func (uc *AdminUsecase) Record(ctx context.Context, action string, targetID int64, detail string) {
	uc.log(ctx, action, targetID, detail)
}

func (uc *AdminUsecase) log(ctx context.Context, action string, targetID int64, detail string) {
	entry := &model.AdminActivityLog{Action: action, TargetID: targetID, Detail: detail}
	if err := uc.repo.LogActivity(ctx, entry); err != nil {
		uc.logger.Warn("failed to write activity log",
			zap.String("action", action), zap.Error(err))
	}
}
