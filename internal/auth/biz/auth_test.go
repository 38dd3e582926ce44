package biz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/codeskytz/date-api/internal/data/model"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/logger"
)

type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User), nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = f.nextID
	f.nextID++
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeTokenRepo struct {
	byHash map[string]*model.AuthToken
	nextID int64
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{byHash: make(map[string]*model.AuthToken), nextID: 1}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *model.AuthToken) error {
	token.ID = f.nextID
	f.nextID++
	cp := *token
	f.byHash[token.TokenHash] = &cp
	return nil
}

func (f *fakeTokenRepo) FindByHash(_ context.Context, hash string) (*model.AuthToken, error) {
	if t, ok := f.byHash[hash]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTokenRepo) DeleteByHash(_ context.Context, hash string) error {
	delete(f.byHash, hash)
	return nil
}

func (f *fakeTokenRepo) DeleteByUser(_ context.Context, userID int64) error {
	for hash, t := range f.byHash {
		if t.UserID == userID {
			delete(f.byHash, hash)
		}
	}
	return nil
}

func (f *fakeTokenRepo) TouchLastUsed(_ context.Context, id int64) error {
	for _, t := range f.byHash {
		if t.ID == id {
			now := time.Now()
			t.LastUsedAt = &now
		}
	}
	return nil
}

type staticVerifier bool

func (v staticVerifier) IsVerified(_ context.Context, _ string) (bool, error) {
	return bool(v), nil
}

func newTestAuth(users UserRepo, tokens TokenRepo, verified bool) *AuthUsecase {
	return NewAuthUsecase(users, tokens, staticVerifier(verified), bcrypt.MinCost, logger.NewNop())
}

func validInput() RegisterInput {
	return RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "correct-horse",
		Name:     "Alice",
	}
}

func TestGenerateToken(t *testing.T) {
	plain, hash, err := GenerateToken()
	require.NoError(t, err)
	assert.Len(t, plain, 60)
	assert.Len(t, hash, 64)
	assert.Equal(t, HashToken(plain), hash)

	other, _, err := GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, plain, other)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account and issues a token", func(t *testing.T) {
		users := newFakeUserRepo()
		tokens := newFakeTokenRepo()
		uc := newTestAuth(users, tokens, true)

		user, token, err := uc.Register(ctx, validInput())
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email, "email is normalized")
		assert.Len(t, token, 60)

		// Only the hash is stored.
		_, plainStored := tokens.byHash[token]
		assert.False(t, plainStored)
		_, hashStored := tokens.byHash[HashToken(token)]
		assert.True(t, hashStored)

		// Password is hashed.
		assert.NotEqual(t, "correct-horse", users.users[user.ID].Password)
	})

	t.Run("requires a verified email", func(t *testing.T) {
		uc := newTestAuth(newFakeUserRepo(), newFakeTokenRepo(), false)
		_, _, err := uc.Register(ctx, validInput())
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrUnauthorized, apperrors.ExtractCode(err))
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		uc := newTestAuth(newFakeUserRepo(), newFakeTokenRepo(), true)
		in := validInput()
		in.Password = "short"
		_, _, err := uc.Register(ctx, in)
		assert.Equal(t, apperrors.ErrAuthWeakPassword, apperrors.ExtractCode(err))
	})

	t.Run("rejects duplicate email and username", func(t *testing.T) {
		uc := newTestAuth(newFakeUserRepo(), newFakeTokenRepo(), true)
		_, _, err := uc.Register(ctx, validInput())
		require.NoError(t, err)

		_, _, err = uc.Register(ctx, validInput())
		assert.Equal(t, apperrors.ErrAuthEmailExists, apperrors.ExtractCode(err))

		in := validInput()
		in.Email = "other@example.com"
		_, _, err = uc.Register(ctx, in)
		assert.Equal(t, apperrors.ErrAuthUsernameExists, apperrors.ExtractCode(err))
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	setup := func() (*AuthUsecase, *fakeUserRepo) {
		users := newFakeUserRepo()
		uc := newTestAuth(users, newFakeTokenRepo(), true)
		_, _, err := uc.Register(ctx, validInput())
		require.NoError(t, err)
		return uc, users
	}

	t.Run("valid credentials", func(t *testing.T) {
		uc, _ := setup()
		user, token, err := uc.Login(ctx, "alice@example.com", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Len(t, token, 60)
	})

	t.Run("wrong password", func(t *testing.T) {
		uc, _ := setup()
		_, _, err := uc.Login(ctx, "alice@example.com", "wrong")
		assert.Equal(t, apperrors.ErrAuthInvalidCredentials, apperrors.ExtractCode(err))
	})

	t.Run("unknown email reports the same error", func(t *testing.T) {
		uc, _ := setup()
		_, _, err := uc.Login(ctx, "ghost@example.com", "correct-horse")
		assert.Equal(t, apperrors.ErrAuthInvalidCredentials, apperrors.ExtractCode(err))
	})

	t.Run("banned account cannot log in", func(t *testing.T) {
		uc, users := setup()
		for _, u := range users.users {
			u.Banned = true
		}
		_, _, err := uc.Login(ctx, "alice@example.com", "correct-horse")
		assert.Equal(t, apperrors.ErrUserBanned, apperrors.ExtractCode(err))
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	uc := newTestAuth(newFakeUserRepo(), newFakeTokenRepo(), true)

	_, token, err := uc.Register(ctx, validInput())
	require.NoError(t, err)

	t.Run("valid token resolves the user", func(t *testing.T) {
		user, err := uc.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := uc.Authenticate(ctx, "no-such-token")
		assert.Equal(t, apperrors.ErrAuthInvalidToken, apperrors.ExtractCode(err))
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		require.NoError(t, uc.Logout(ctx, token))
		_, err := uc.Authenticate(ctx, token)
		assert.Equal(t, apperrors.ErrAuthInvalidToken, apperrors.ExtractCode(err))
	})
}
