package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type UserRepository interface {
	GetByTelegramID(ctx context.Context, telegramUserID int64) (*User, error)
	Create(ctx context.Context, user *User) error
	// Update persists the user's service set, expiry, and activity flags.
	Update(ctx context.Context, user *User) error
	SetActive(ctx context.Context, userID uint, active bool) error
	ListActive(ctx context.Context) ([]User, error)
}

type EventRepository interface {
	// Create persists the event, or loads the already-persisted row when
	// another ingest won the (chat_id, message_id) race. Either way the
	// event carries its storage ID on return.
	Create(ctx context.Context, event *Event) error
}

// NotificationRepository is the deduplication ledger.
type NotificationRepository interface {
	// TryClaim atomically records (userID, eventID) and reports whether
	// this call claimed it. A false return means a send for the pair was
	// already attempted.
	TryClaim(ctx context.Context, userID, eventID uint) (bool, error)
}
