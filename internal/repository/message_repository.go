package repository

import (
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"gorm.io/gorm"
)

// GormMessageRepository is a GORM implementation of MessageRepository
type GormMessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *GormMessageRepository) FindByID(id uint64) (*models.Message, error) {
	var message models.Message
	if err := r.db.First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *GormMessageRepository) ListForUser(userID uint64) ([]models.Message, error) {
	messages := []models.Message{}
	err := r.db.
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *GormMessageRepository) Thread(a, b uint64) ([]models.Message, error) {
	messages := []models.Message{}
	err := r.db.
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", a, b, b, a).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flips the read flag. Marking an already-read message still counts as found.
func (r *GormMessageRepository) MarkRead(id uint64) (bool, error) {
	result := r.db.Model(&models.Message{}).Where("id = ?", id).Update("read", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormMessageRepository) MarkThreadRead(userID, peer uint64) (int64, error) {
	result := r.db.Model(&models.Message{}).
		Where("from_user_id = ? AND to_user_id = ? AND read = ?", peer, userID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}
