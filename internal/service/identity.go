package service

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"aichat_web/internal/models"
	"aichat_web/internal/repository"
)

// IdentityService 處理角色的建立與查詢
type IdentityService struct {
	identityRepo    repository.IdentityRepository
	defaultProvider string
}

func NewIdentityService(identityRepo repository.IdentityRepository, defaultProvider string) *IdentityService {
	return &IdentityService{
		identityRepo:    identityRepo,
		defaultProvider: defaultProvider,
	}
}

func (s *IdentityService) CreateIdentity(name, bio, avatar, modelProvider string) (*models.Identity, error) {
	if modelProvider == "" {
		modelProvider = s.defaultProvider
	}

	identity := &models.Identity{
		Name:          name,
		Bio:           bio,
		Avatar:        avatar,
		ModelProvider: modelProvider,
	}
	if err := s.identityRepo.Create(identity); err != nil {
		return nil, err
	}
	return identity, nil
}

func (s *IdentityService) GetIdentity(id uint) (*models.Identity, error) {
	identity, err := s.identityRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return identity, nil
}

func (s *IdentityService) ListIdentities() ([]models.Identity, error) {
	return s.identityRepo.FindAll()
}

// DeleteIdentity 刪除角色
// 已經留下訊息的角色不能刪，避免破壞對話紀錄的參照
func (s *IdentityService) DeleteIdentity(id uint) error {
	if _, err := s.GetIdentity(id); err != nil {
		return err
	}

	count, err := s.identityRepo.CountMessages(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrIdentityInUse
	}

	return s.identityRepo.Delete(id)
}
