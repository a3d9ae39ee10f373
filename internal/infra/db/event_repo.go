package db

import (
	"context"

	"github.com/GioMach/rentwatch/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create persists the event. Events are immutable and identified by
// (chat_id, message_id); when a concurrent ingest already inserted the same
// identity the existing row is loaded instead, so callers always end up
// with the canonical storage ID.
func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	model := mapEventToModel(*event)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}, {Name: "message_id"}},
			DoNothing: true,
		}).
		Create(&model)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		if err := r.db.WithContext(ctx).
			Where("chat_id = ? AND message_id = ?", event.ChatID, event.MessageID).
			First(&model).Error; err != nil {
			return err
		}
	}

	event.ID = model.ID
	event.CreatedAt = model.CreatedAt
	return nil
}

func mapEventToModel(event domain.Event) eventModel {
	return eventModel{
		ID:          event.ID,
		ChatID:      event.ChatID,
		MessageID:   event.MessageID,
		ChatName:    event.ChatName,
		Text:        event.Text,
		MessageLink: event.MessageLink,
		AuthorLink:  event.AuthorLink,
		Services:    joinServices(event.Services),
	}
}
