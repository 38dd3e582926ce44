package biz

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/codeskytz/date-api/internal/data/model"
	apperrors "github.com/codeskytz/date-api/internal/pkg/errors"
	"github.com/codeskytz/date-api/internal/pkg/logger"
)

// NotificationRepo stores per-recipient notification rows.
type NotificationRepo interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)

	// MarkRead stamps one of the user's notifications and reports
	// whether the row existed.
	MarkRead(ctx context.Context, userID, id int64, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, userID int64, at time.Time) error
}

// Inbox is a page of notifications plus the recipient's unread total.
type Inbox struct {
	Notifications []*model.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}

// NotificationUsecase implements the activity inbox.
type NotificationUsecase struct {
	repo   NotificationRepo
	logger *logger.Logger
}

func NewNotificationUsecase(repo NotificationRepo, l *logger.Logger) *NotificationUsecase {
	return &NotificationUsecase{repo: repo, logger: l}
}

// Notify records that actor did something to userID's content. Acting
// on your own content is silent. Failures are logged and swallowed: a
// missed notification must never fail the write that caused it.
func (uc *NotificationUsecase) Notify(ctx context.Context, userID, actorID int64, event string, postID *int64) {
	if userID == actorID {
		return
	}
	n := &model.Notification{
		UserID:  userID,
		ActorID: actorID,
		Type:    event,
		PostID:  postID,
	}
	if err := uc.repo.Create(ctx, n); err != nil {
		uc.logger.Warn("failed to record notification",
			zap.Int64("user_id", userID),
			zap.Int64("actor_id", actorID),
			zap.String("type", event),
			zap.Error(err))
	}
}

// List returns the user's notifications, newest first, with the
// unread total.
func (uc *NotificationUsecase) List(ctx context.Context, userID int64, limit, offset int) (*Inbox, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	items, err := uc.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	unread, err := uc.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Inbox{Notifications: items, UnreadCount: unread}, nil
}

// MarkRead stamps a single notification the user owns.
func (uc *NotificationUsecase) MarkRead(ctx context.Context, userID, id int64) error {
	ok, err := uc.repo.MarkRead(ctx, userID, id, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.New(apperrors.ErrNotFound)
	}
	return nil
}

// MarkAllRead stamps every unread notification the user owns.
func (uc *NotificationUsecase) MarkAllRead(ctx context.Context, userID int64) error {
	return uc.repo.MarkAllRead(ctx, userID, time.Now())
}
