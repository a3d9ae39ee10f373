package domain

import "time"

// Event is one classified inbound message, immutable once persisted.
// Identity is (ChatID, MessageID); ID is the storage surrogate key.
type Event struct {
	ID          uint
	ChatID      int64
	MessageID   int
	ChatName    string
	Text        string
	MessageLink string
	AuthorLink  string
	Services    []ServiceTag
	CreatedAt   time.Time
}

// NotificationRecord marks that a send to UserID for EventID was attempted.
// Write-once; existence alone carries the at-most-once guarantee.
type NotificationRecord struct {
	UserID    uint
	EventID   uint
	CreatedAt time.Time
}
