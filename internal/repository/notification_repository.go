package repository

import (
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

// CreateOnce relies on the partial unique index over (user_id, ref_key).
// It reports whether a row was inserted.
func (r *GormNotificationRepository) CreateOnce(n *models.Notification) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(n)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormNotificationRepository) ListForUser(userID uint64, unreadOnly bool) ([]models.Notification, error) {
	notifications := []models.Notification{}
	query := r.db.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}
	if err := query.Order("timestamp DESC, id DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead marks the notification read only when it belongs to userID.
func (r *GormNotificationRepository) MarkRead(id, userID uint64) (bool, error) {
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormNotificationRepository) MarkAllRead(userID uint64) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}
