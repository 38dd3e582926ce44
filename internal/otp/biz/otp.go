package biz

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codeskytz/date-api/internal/data/model"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/logger"
)

const (
	codeTTL        = 10 * time.Minute
	maxAttempts    = 5
	resendCooldown = 60 * time.Second
)

// OtpRepo stores pending verification codes. At most one live code per
// email; issuing a new one replaces the old.
type OtpRepo interface {
	Upsert(ctx context.Context, otp *model.OtpCode) error
	FindLatestByEmail(ctx context.Context, email string) (*model.OtpCode, error)
	Update(ctx context.Context, otp *model.OtpCode) error
}

// Mailer delivers a code to an address.
type Mailer interface {
	SendCode(ctx context.Context, email, code string) error
}

// Cooldowner throttles resends. Acquire returns false while a previous
// send is still cooling down.
type Cooldowner interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Remaining(ctx context.Context, key string) (time.Duration, error)
}

// Status describes the current state of an email's verification code.
type Status struct {
	Exists            bool  `json:"exists"`
	Verified          bool  `json:"verified"`
	Expired           bool  `json:"expired"`
	AttemptsRemaining int   `json:"attempts_remaining"`
	ExpiresInSeconds  int64 `json:"expires_in_seconds"`
}

// OtpUsecase implements email code issuance and verification.
type OtpUsecase struct {
	repo     OtpRepo
	mailer   Mailer
	cooldown Cooldowner
	logger   *logger.Logger
}

func NewOtpUsecase(repo OtpRepo, mailer Mailer, cooldown Cooldowner, l *logger.Logger) *OtpUsecase {
	return &OtpUsecase{repo: repo, mailer: mailer, cooldown: cooldown, logger: l}
}

// Send issues a fresh 6-digit code and emails it. A previous unexpired
// code is replaced. Resends are throttled per address.
func (uc *OtpUsecase) Send(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	ok, err := uc.cooldown.Acquire(ctx, cooldownKey(email), resendCooldown)
	if err != nil {
		// Throttling is advisory; a redis hiccup must not block signup.
		uc.logger.Warn("otp cooldown check failed", zap.Error(err))
	} else if !ok {
		remaining, _ := uc.cooldown.Remaining(ctx, cooldownKey(email))
		return apperrors.New(apperrors.ErrOtpCooldown,
			fmt.Sprintf("Please wait %d seconds before requesting a new code.", int(remaining.Seconds())))
	}

	code, err := generateCode()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	otp := &model.OtpCode{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(codeTTL),
	}
	if err := uc.repo.Upsert(ctx, otp); err != nil {
		return err
	}

	if err := uc.mailer.SendCode(ctx, email, code); err != nil {
		uc.logger.Error("failed to deliver otp email",
			zap.String("email", email), zap.Error(err))
		return apperrors.Wrap(err, apperrors.ErrOtpDeliveryFailed)
	}

	uc.logger.Info("otp sent", zap.String("email", email))
	return nil
}

// Resend issues a replacement code, but only once the previous one has
// lapsed: while an unexpired, unverified code is outstanding the
// request is refused outright.
func (uc *OtpUsecase) Resend(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	otp, err := uc.repo.FindLatestByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil && !otp.Verified && time.Now().Before(otp.ExpiresAt) {
		wait := int(time.Until(otp.ExpiresAt).Seconds())
		return apperrors.New(apperrors.ErrOtpStillValid,
			fmt.Sprintf("The current code is valid for another %d seconds.", wait))
	}

	return uc.Send(ctx, email)
}

// Verify checks a submitted code. On mismatch the attempt counter is
// consumed and the remaining count is returned alongside the error.
func (uc *OtpUsecase) Verify(ctx context.Context, email, code string) (int, error) {
	email = normalizeEmail(email)

	otp, err := uc.repo.FindLatestByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.New(apperrors.ErrOtpNotFound)
		}
		return 0, err
	}

	if otp.Verified {
		return 0, apperrors.New(apperrors.ErrOtpAlreadyVerified)
	}
	if time.Now().After(otp.ExpiresAt) {
		return 0, apperrors.New(apperrors.ErrOtpExpired)
	}
	if otp.Attempts >= maxAttempts {
		return 0, apperrors.New(apperrors.ErrOtpTooManyAttempts)
	}

	if otp.Code != code {
		otp.Attempts++
		if err := uc.repo.Update(ctx, otp); err != nil {
			return 0, err
		}
		remaining := maxAttempts - otp.Attempts
		if remaining <= 0 {
			return 0, apperrors.New(apperrors.ErrOtpTooManyAttempts)
		}
		return remaining, apperrors.New(apperrors.ErrOtpInvalid)
	}

	otp.Verified = true
	if err := uc.repo.Update(ctx, otp); err != nil {
		return 0, err
	}

	uc.logger.Info("otp verified", zap.String("email", email))
	return maxAttempts - otp.Attempts, nil
}

// GetStatus reports the state of the latest code for an address.
func (uc *OtpUsecase) GetStatus(ctx context.Context, email string) (*Status, error) {
	email = normalizeEmail(email)

	otp, err := uc.repo.FindLatestByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Status{}, nil
		}
		return nil, err
	}

	st := &Status{
		Exists:            true,
		Verified:          otp.Verified,
		Expired:           time.Now().After(otp.ExpiresAt),
		AttemptsRemaining: maxAttempts - otp.Attempts,
	}
	if st.AttemptsRemaining < 0 {
		st.AttemptsRemaining = 0
	}
	if !st.Expired {
		st.ExpiresInSeconds = int64(time.Until(otp.ExpiresAt).Seconds())
	}
	return st, nil
}

// IsVerified reports whether the address holds a verified, unexpired
// code. Registration consults this.
func (uc *OtpUsecase) IsVerified(ctx context.Context, email string) (bool, error) {
	otp, err := uc.repo.FindLatestByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return otp.Verified, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cooldownKey(email string) string {
	return "otp:cooldown:" + email
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
