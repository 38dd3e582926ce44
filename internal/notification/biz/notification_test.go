package biz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeskytz/date-api/internal/data/model"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/logger"
)

type fakeNotificationRepo struct {
	items  map[int64]*model.Notification
	nextID int64
	err    error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{items: make(map[int64]*model.Notification), nextID: 1}
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if f.err != nil {
		return f.err
	}
	n.ID = f.nextID
	f.nextID++
	n.CreatedAt = time.Now()
	cp := *n
	f.items[n.ID] = &cp
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID int64, _, _ int) ([]*model.Notification, error) {
	var out []*model.Notification
	for _, n := range f.items {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, userID int64) (int64, error) {
	var count int64
	for _, n := range f.items {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, userID, id int64, at time.Time) (bool, error) {
	n, ok := f.items[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.ReadAt = &at
	return true, nil
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID int64, at time.Time) error {
	for _, n := range f.items {
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &at
		}
	}
	return nil
}

func newTestNotifications(repo NotificationRepo) *NotificationUsecase {
	return NewNotificationUsecase(repo, logger.NewNop())
}

func TestNotify(t *testing.T) {
	ctx := context.Background()

	t.Run("records the event", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		uc := newTestNotifications(repo)

		postID := int64(5)
		uc.Notify(ctx, 42, 7, model.NotificationLike, &postID)

		require.Len(t, repo.items, 1)
		n := repo.items[1]
		assert.Equal(t, int64(42), n.UserID)
		assert.Equal(t, int64(7), n.ActorID)
		assert.Equal(t, model.NotificationLike, n.Type)
		require.NotNil(t, n.PostID)
		assert.Equal(t, int64(5), *n.PostID)
		assert.Nil(t, n.ReadAt)
	})

	t.Run("acting on your own content is silent", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		uc := newTestNotifications(repo)

		uc.Notify(ctx, 42, 42, model.NotificationLike, nil)
		assert.Empty(t, repo.items)
	})

	t.Run("storage failure is swallowed", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		repo.err = assert.AnError
		uc := newTestNotifications(repo)

		uc.Notify(ctx, 42, 7, model.NotificationFollow, nil)
		assert.Empty(t, repo.items)
	})
}

func TestInbox(t *testing.T) {
	ctx := context.Background()
	repo := newFakeNotificationRepo()
	uc := newTestNotifications(repo)

	uc.Notify(ctx, 42, 7, model.NotificationFollow, nil)
	uc.Notify(ctx, 42, 8, model.NotificationFollow, nil)
	uc.Notify(ctx, 99, 7, model.NotificationFollow, nil)

	inbox, err := uc.List(ctx, 42, 20, 0)
	require.NoError(t, err)
	assert.Len(t, inbox.Notifications, 2)
	assert.Equal(t, int64(2), inbox.UnreadCount)
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps a single notification", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		uc := newTestNotifications(repo)

		uc.Notify(ctx, 42, 7, model.NotificationFollow, nil)
		require.NoError(t, uc.MarkRead(ctx, 42, 1))
		assert.NotNil(t, repo.items[1].ReadAt)
	})

	t.Run("cannot read someone else's notification", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		uc := newTestNotifications(repo)

		uc.Notify(ctx, 42, 7, model.NotificationFollow, nil)
		err := uc.MarkRead(ctx, 99, 1)
		assert.Equal(t, apperrors.ErrNotFound, apperrors.ExtractCode(err))
	})

	t.Run("mark all clears the unread count", func(t *testing.T) {
		repo := newFakeNotificationRepo()
		uc := newTestNotifications(repo)

		uc.Notify(ctx, 42, 7, model.NotificationFollow, nil)
		uc.Notify(ctx, 42, 8, model.NotificationFollow, nil)
		require.NoError(t, uc.MarkAllRead(ctx, 42))

		inbox, err := uc.List(ctx, 42, 20, 0)
		require.NoError(t, err)
		assert.Zero(t, inbox.UnreadCount)
	})
}
