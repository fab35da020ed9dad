package repository

import (
	"context"
	"database/sql"

	"github.com/05Ashutosh/food-recipe/internal/model"
)

// NotificationRepo persists notifications.
type NotificationRepo struct{ db *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

const notificationSelect = `SELECT n.id, n.message, n.recipient_id, n.sender_id, n.is_read, n.created_at,
	u.id, u.username, u.full_name, u.avatar
	FROM notifications n JOIN users u ON u.id = n.sender_id`

// Create inserts a notification and returns its id.
func (r *NotificationRepo) Create(ctx context.Context, recipientID, senderID uint64, message string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (message, recipient_id, sender_id) VALUES (?, ?, ?)`,
		message, recipientID, senderID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetWithSender loads one notification joined with its sender's public fields.
func (r *NotificationRepo) GetWithSender(ctx context.Context, id uint64) (model.Notification, error) {
	row := r.db.QueryRowContext(ctx, notificationSelect+` WHERE n.id = ?`, id)
	n, err := scanNotification(row)
	return n, notFound(err)
}

// ListForRecipient returns the newest notifications of recipientID, at most
// limit, newest first.
func (r *NotificationRepo) ListForRecipient(ctx context.Context, recipientID uint64, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		notificationSelect+` WHERE n.recipient_id = ? ORDER BY n.created_at DESC, n.id DESC LIMIT ?`,
		recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNotification(row interface{ Scan(...any) error }) (model.Notification, error) {
	var (
		n model.Notification
		s model.UserSummary
	)
	if err := row.Scan(&n.ID, &n.Message, &n.RecipientID, &n.SenderID, &n.Read, &n.CreatedAt,
		&s.ID, &s.Username, &s.FullName, &s.Avatar); err != nil {
		return n, err
	}
	n.Sender = &s
	return n, nil
}
