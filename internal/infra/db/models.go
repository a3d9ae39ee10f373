package db

import (
	"sort"
	"strings"
	"time"

	"github.com/GioMach/rentwatch/internal/domain"
)

type userModel struct {
	ID             uint   `gorm:"primaryKey"`
	TelegramUserID int64  `gorm:"uniqueIndex;not null"`
	Username       string `gorm:""`
	FirstName      string `gorm:""`
	LastName       string `gorm:""`
	Services       string `gorm:""`
	ExpiresAt      *time.Time
	Active         bool `gorm:"index"`
	Permanent      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (userModel) TableName() string { return "users" }

type eventModel struct {
	ID          uint   `gorm:"primaryKey"`
	ChatID      int64  `gorm:"uniqueIndex:idx_events_chat_message,priority:1;not null"`
	MessageID   int    `gorm:"uniqueIndex:idx_events_chat_message,priority:2;not null"`
	ChatName    string `gorm:"not null"`
	Text        string `gorm:"not null"`
	MessageLink string `gorm:"not null"`
	AuthorLink  string `gorm:""`
	Services    string `gorm:"not null"`
	CreatedAt   time.Time
}

func (eventModel) TableName() string { return "events" }

type notificationModel struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	EventID   uint `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}

func (notificationModel) TableName() string { return "notifications" }

// joinServices flattens a tag set into the stored text column. Tags are
// sorted so the column is canonical regardless of toggle order.
func joinServices(tags []domain.ServiceTag) string {
	if len(tags) == 0 {
		return ""
	}
	values := make([]string, 0, len(tags))
	for _, tag := range tags {
		values = append(values, string(tag))
	}
	sort.Strings(values)
	return strings.Join(values, ",")
}

func splitServices(column string) []domain.ServiceTag {
	if column == "" {
		return nil
	}
	parts := strings.Split(column, ",")
	tags := make([]domain.ServiceTag, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		tags = append(tags, domain.ServiceTag(part))
	}
	return tags
}
