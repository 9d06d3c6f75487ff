package repository

import (
	"aichat_web/internal/models"
	"aichat_web/internal/storage"
)

type MessageRepository interface {
	Create(message *models.Message) error
	FindByRoomID(roomID uint) ([]models.Message, error)
}

type messageRepository struct {
	db *storage.PostgresDB
}

func NewMessageRepository(db *storage.PostgresDB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// FindByRoomID 依建立時間排序取出房間的完整對話紀錄
func (r *messageRepository) FindByRoomID(roomID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Preload("Identity").
		Where("room_id = ?", roomID).
		Order("created_at ASC").Find(&messages).Error
	return messages, err
}
