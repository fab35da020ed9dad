package model

import "time"

// Notification is a persisted message for one recipient. Sender is filled
// only by reads that join the users table.
type Notification struct {
	ID          uint64       `json:"_id"`
	Message     string       `json:"message"`
	RecipientID uint64       `json:"recipient"`
	SenderID    uint64       `json:"-"`
	Sender      *UserSummary `json:"sender,omitempty"`
	Read        bool         `json:"read"`
	CreatedAt   time.Time    `json:"date"`
}
