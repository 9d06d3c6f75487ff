package repository

import (
	"aichat_web/internal/models"
	"aichat_web/internal/storage"
)

type IdentityRepository interface {
	Create(identity *models.Identity) error
	FindByID(id uint) (*models.Identity, error)
	FindAll() ([]models.Identity, error)
	Delete(id uint) error
	CountMessages(identityID uint) (int64, error)
}

type identityRepository struct {
	db *storage.PostgresDB
}

func NewIdentityRepository(db *storage.PostgresDB) IdentityRepository {
	return &identityRepository{db: db}
}

func (r *identityRepository) Create(identity *models.Identity) error {
	return r.db.Create(identity).Error
}

func (r *identityRepository) FindByID(id uint) (*models.Identity, error) {
	var identity models.Identity
	err := r.db.First(&identity, id).Error
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// FindAll 查詢所有角色，最新建立的在前
func (r *identityRepository) FindAll() ([]models.Identity, error) {
	var identities []models.Identity
	err := r.db.Order("created_at DESC").Find(&identities).Error
	return identities, err
}

func (r *identityRepository) Delete(id uint) error {
	return r.db.Delete(&models.Identity{}, id).Error
}

// CountMessages 計算某個角色留下的訊息數量，用於刪除前的檢查
func (r *identityRepository) CountMessages(identityID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).Where("identity_id = ?", identityID).Count(&count).Error
	return count, err
}
