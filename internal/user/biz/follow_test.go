package biz

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/codeskytz/date-api/internal/data/model"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/logger"
)

type fakeUserRepo struct {
	users map[int64]*model.User
}

func newFakeUserRepo(ids ...int64) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int64]*model.User)}
	for _, id := range ids {
		r.users[id] = &model.User{ID: id, Username: fmt.Sprintf("user%d", id)}
	}
	return r
}

func (f *fakeUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateFields(_ context.Context, id int64, fields map[string]any) error {
	u, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["avatar"]; ok {
		u.Avatar = v.(string)
	}
	if v, ok := fields["cover"]; ok {
		u.Cover = v.(string)
	}
	if v, ok := fields["name"]; ok {
		u.Name = v.(string)
	}
	if v, ok := fields["bio"]; ok {
		u.Bio = v.(string)
	}
	if v, ok := fields["privacy"]; ok {
		u.Privacy = v.(string)
	}
	return nil
}

func (f *fakeUserRepo) Search(_ context.Context, _ string, _, _ int) ([]*model.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) PurgeContent(_ context.Context, userID int64) error {
	delete(f.users, userID)
	return nil
}

type fakeFollowRepo struct {
	edges map[[2]int64]bool
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{edges: make(map[[2]int64]bool)}
}

func (f *fakeFollowRepo) Create(_ context.Context, followerID, followingID int64) error {
	f.edges[[2]int64{followerID, followingID}] = true
	return nil
}

func (f *fakeFollowRepo) Delete(_ context.Context, followerID, followingID int64) error {
	delete(f.edges, [2]int64{followerID, followingID})
	return nil
}

func (f *fakeFollowRepo) Exists(_ context.Context, followerID, followingID int64) (bool, error) {
	return f.edges[[2]int64{followerID, followingID}], nil
}

func (f *fakeFollowRepo) Followers(_ context.Context, _ int64, _, _ int) ([]*model.User, error) {
	return nil, nil
}

func (f *fakeFollowRepo) Following(_ context.Context, _ int64, _, _ int) ([]*model.User, error) {
	return nil, nil
}

func (f *fakeFollowRepo) CountFollowers(_ context.Context, userID int64) (int64, error) {
	var n int64
	for edge := range f.edges {
		if edge[1] == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeFollowRepo) CountFollowing(_ context.Context, userID int64) (int64, error) {
	var n int64
	for edge := range f.edges {
		if edge[0] == userID {
			n++
		}
	}
	return n, nil
}

type notified struct {
	userID  int64
	actorID int64
	event   string
}

type fakeNotifier struct {
	events []notified
}

func (f *fakeNotifier) Notify(_ context.Context, userID, actorID int64, event string, _ *int64) {
	f.events = append(f.events, notified{userID: userID, actorID: actorID, event: event})
}

func TestFollow(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an edge", func(t *testing.T) {
		repo := newFakeFollowRepo()
		uc := NewFollowUsecase(repo, newFakeUserRepo(1, 2), &fakeNotifier{}, logger.NewNop())

		require.NoError(t, uc.Follow(ctx, 1, 2))
		following, err := uc.IsFollowing(ctx, 1, 2)
		require.NoError(t, err)
		assert.True(t, following)

		// One direction only.
		reverse, _ := uc.IsFollowing(ctx, 2, 1)
		assert.False(t, reverse)
	})

	t.Run("new edge notifies the target once", func(t *testing.T) {
		repo := newFakeFollowRepo()
		notifier := &fakeNotifier{}
		uc := NewFollowUsecase(repo, newFakeUserRepo(1, 2), notifier, logger.NewNop())

		require.NoError(t, uc.Follow(ctx, 1, 2))
		require.NoError(t, uc.Follow(ctx, 1, 2))

		require.Len(t, notifier.events, 1)
		assert.Equal(t, int64(2), notifier.events[0].userID)
		assert.Equal(t, int64(1), notifier.events[0].actorID)
		assert.Equal(t, model.NotificationFollow, notifier.events[0].event)
	})

	t.Run("rejects self follow", func(t *testing.T) {
		uc := NewFollowUsecase(newFakeFollowRepo(), newFakeUserRepo(1), &fakeNotifier{}, logger.NewNop())

		err := uc.Follow(ctx, 1, 1)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrSelfFollow, apperrors.ExtractCode(err))
	})

	t.Run("unknown target", func(t *testing.T) {
		uc := NewFollowUsecase(newFakeFollowRepo(), newFakeUserRepo(1), &fakeNotifier{}, logger.NewNop())

		err := uc.Follow(ctx, 1, 99)
		assert.Equal(t, apperrors.ErrUserNotFound, apperrors.ExtractCode(err))
	})

	t.Run("double follow is a no-op", func(t *testing.T) {
		repo := newFakeFollowRepo()
		uc := NewFollowUsecase(repo, newFakeUserRepo(1, 2), &fakeNotifier{}, logger.NewNop())

		require.NoError(t, uc.Follow(ctx, 1, 2))
		require.NoError(t, uc.Follow(ctx, 1, 2))
		assert.Len(t, repo.edges, 1)
	})

	t.Run("unfollow removes the edge and tolerates absence", func(t *testing.T) {
		repo := newFakeFollowRepo()
		uc := NewFollowUsecase(repo, newFakeUserRepo(1, 2), &fakeNotifier{}, logger.NewNop())

		require.NoError(t, uc.Follow(ctx, 1, 2))
		require.NoError(t, uc.Unfollow(ctx, 1, 2))
		require.NoError(t, uc.Unfollow(ctx, 1, 2))
		assert.Empty(t, repo.edges)
	})
}
