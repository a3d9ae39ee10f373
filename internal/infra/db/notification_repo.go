package db

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// TryClaim inserts the (user, event) ledger row if absent. The insert and
// the existence check are a single statement, so concurrent fanouts for the
// same event cannot both claim the pair.
func (r *NotificationRepository) TryClaim(ctx context.Context, userID, eventID uint) (bool, error) {
	model := notificationModel{UserID: userID, EventID: eventID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
