package service

import (
	"context"

	"github.com/05Ashutosh/food-recipe/internal/apperror"
	"github.com/05Ashutosh/food-recipe/internal/logging"
	"github.com/05Ashutosh/food-recipe/internal/metrics"
	"github.com/05Ashutosh/food-recipe/internal/model"
	"github.com/05Ashutosh/food-recipe/internal/realtime"
)

// NotificationListLimit caps GET /notification/message.
const NotificationListLimit = 50

// NotificationStore persists notifications.
type NotificationStore interface {
	Create(ctx context.Context, recipientID, senderID uint64, message string) (uint64, error)
	GetWithSender(ctx context.Context, id uint64) (model.Notification, error)
	ListForRecipient(ctx context.Context, recipientID uint64, limit int) ([]model.Notification, error)
}

// Pusher is the best-effort live delivery side channel. It is separate from
// the store so persistence can be asserted without a live connection.
type Pusher interface {
	Publish(userID uint64, event string, payload any) int
}

// Notifier persists notifications and pushes them to connected recipients.
type Notifier struct {
	store  NotificationStore
	pusher Pusher
}

func NewNotifier(store NotificationStore, pusher Pusher) *Notifier {
	return &Notifier{store: store, pusher: pusher}
}

// Emit stores a notification and pushes it, joined with the sender's public
// profile, to the recipient's room. Failures are logged and swallowed: the
// operation that triggered the notification has already succeeded.
func (n *Notifier) Emit(ctx context.Context, recipientID, senderID uint64, message string) {
	log := logging.Ctx(ctx).With().Uint64("recipient_id", recipientID).Uint64("sender_id", senderID).Logger()

	id, err := n.store.Create(ctx, recipientID, senderID, message)
	if err != nil {
		metrics.NotificationsEmitted.WithLabelValues("failed").Inc()
		log.Error().Err(err).Msg("persist notification")
		return
	}
	metrics.NotificationsEmitted.WithLabelValues("persisted").Inc()

	full, err := n.store.GetWithSender(ctx, id)
	if err != nil {
		log.Error().Err(err).Uint64("notification_id", id).Msg("load notification for push")
		return
	}
	if n.pusher == nil {
		return
	}
	if delivered := n.pusher.Publish(recipientID, realtime.EventNotification, full); delivered > 0 {
		metrics.NotificationsEmitted.WithLabelValues("pushed").Inc()
	}
}

// List returns the newest notifications of recipientID.
func (n *Notifier) List(ctx context.Context, recipientID uint64) ([]model.Notification, error) {
	list, err := n.store.ListForRecipient(ctx, recipientID, NotificationListLimit)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch notifications", err)
	}
	return list, nil
}
