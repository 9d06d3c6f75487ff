package repository

import (
	"gorm.io/gorm"

	"aichat_web/internal/models"
	"aichat_web/internal/storage"
)

type RoomRepository interface {
	Create(room *models.Room) error
	FindByID(id uint) (*models.Room, error)
	// FindByIDFull 連同參與者（依加入時間排序）與訊息（依建立時間排序）一起載入
	FindByIDFull(id uint) (*models.Room, error)
	FindAll() ([]models.Room, error)
	Delete(id uint) error
	AddParticipant(participant *models.RoomParticipant) error
}

type roomRepository struct {
	db *storage.PostgresDB
}

func NewRoomRepository(db *storage.PostgresDB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(room *models.Room) error {
	return r.db.Create(room).Error
}

func (r *roomRepository) FindByID(id uint) (*models.Room, error) {
	var room models.Room
	err := r.db.First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) FindByIDFull(id uint) (*models.Room, error) {
	var room models.Room
	err := r.db.
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC")
		}).
		Preload("Participants.Identity").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Messages.Identity").
		First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindAll 查詢所有房間，最近更新的在前，並帶出參與者
func (r *roomRepository) FindAll() ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC")
		}).
		Preload("Participants.Identity").
		Order("updated_at DESC").Find(&rooms).Error
	return rooms, err
}

// Delete 刪除房間並連帶刪除參與者與訊息
func (r *roomRepository) Delete(id uint) error {
	return r.db.Select("Participants", "Messages").
		Delete(&models.Room{Model: gorm.Model{ID: id}}).Error
}

func (r *roomRepository) AddParticipant(participant *models.RoomParticipant) error {
	return r.db.Create(participant).Error
}
