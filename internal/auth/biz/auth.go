package biz

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/codeskytz/date-api/internal/data/model"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/logger"
)

const minPasswordLength = 8

// UserRepo is the account storage surface the auth flows need.
type UserRepo interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// TokenRepo stores issued API tokens by hash.
type TokenRepo interface {
	Create(ctx context.Context, token *model.AuthToken) error
	FindByHash(ctx context.Context, hash string) (*model.AuthToken, error)
	DeleteByHash(ctx context.Context, hash string) error
	DeleteByUser(ctx context.Context, userID int64) error
	TouchLastUsed(ctx context.Context, id int64) error
}

// EmailVerifier reports whether an email address completed OTP
// verification.
type EmailVerifier interface {
	IsVerified(ctx context.Context, email string) (bool, error)
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Name     string
}

// AuthUsecase implements registration, login and token authentication.
type AuthUsecase struct {
	users      UserRepo
	tokens     TokenRepo
	verifier   EmailVerifier
	bcryptCost int
	logger     *logger.Logger
}

func NewAuthUsecase(users UserRepo, tokens TokenRepo, verifier EmailVerifier, bcryptCost int, l *logger.Logger) *AuthUsecase {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthUsecase{
		users:      users,
		tokens:     tokens,
		verifier:   verifier,
		bcryptCost: bcryptCost,
		logger:     l,
	}
}

// Register creates an account. The email must have completed OTP
// verification first.
func (uc *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)

	if len(in.Password) < minPasswordLength {
		return nil, "", apperrors.NewField(apperrors.ErrAuthWeakPassword, "password",
			"The password must be at least 8 characters.")
	}

	verified, err := uc.verifier.IsVerified(ctx, in.Email)
	if err != nil {
		return nil, "", err
	}
	if !verified {
		return nil, "", apperrors.NewField(apperrors.ErrUnauthorized, "email",
			"The email address has not been verified.")
	}

	if _, err := uc.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, "", apperrors.NewField(apperrors.ErrAuthEmailExists, "email",
			"The email has already been taken.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}
	if _, err := uc.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, "", apperrors.NewField(apperrors.ErrAuthUsernameExists, "username",
			"The username has already been taken.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.bcryptCost)
	if err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	user := &model.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
		Name:     in.Name,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := uc.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	uc.logger.Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))
	return user, token, nil
}

// Login verifies credentials and issues a fresh token.
func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.New(apperrors.ErrAuthInvalidCredentials)
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperrors.New(apperrors.ErrAuthInvalidCredentials)
	}
	if user.Banned {
		return nil, "", apperrors.New(apperrors.ErrUserBanned)
	}

	token, err := uc.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	uc.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return user, token, nil
}

// Logout revokes the presented token. Revoking an unknown token is not
// an error.
func (uc *AuthUsecase) Logout(ctx context.Context, plainToken string) error {
	return uc.tokens.DeleteByHash(ctx, HashToken(plainToken))
}

// Authenticate resolves a bearer token to its user. Expired and unknown
// tokens fail with the same error.
func (uc *AuthUsecase) Authenticate(ctx context.Context, plainToken string) (*model.User, error) {
	token, err := uc.tokens.FindByHash(ctx, HashToken(plainToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrAuthInvalidToken)
		}
		return nil, err
	}
	if token.ExpiresAt != nil && time.Now().After(*token.ExpiresAt) {
		return nil, apperrors.New(apperrors.ErrAuthInvalidToken)
	}

	user, err := uc.users.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.ErrAuthInvalidToken)
		}
		return nil, err
	}
	if user.Banned {
		return nil, apperrors.New(apperrors.ErrUserBanned)
	}

	// Best effort; a stale last_used_at is not worth failing a request.
	if err := uc.tokens.TouchLastUsed(ctx, token.ID); err != nil {
		uc.logger.Warn("failed to update token last_used_at",
			zap.Int64("token_id", token.ID), zap.Error(err))
	}
	return user, nil
}

// RevokeAll drops every token a user holds; used on ban and account
// deletion.
func (uc *AuthUsecase) RevokeAll(ctx context.Context, userID int64) error {
	return uc.tokens.DeleteByUser(ctx, userID)
}

func (uc *AuthUsecase) issueToken(ctx context.Context, userID int64) (string, error) {
	plain, hash, err := GenerateToken()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	if err := uc.tokens.Create(ctx, &model.AuthToken{
		UserID:    userID,
		TokenHash: hash,
		Name:      "api",
	}); err != nil {
		return "", err
	}
	return plain, nil
}
