package service

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"aichat_web/internal/models"
	"aichat_web/internal/repository"
)

// RoomService 處理房間與參與者的管理，以及使用者發言
type RoomService struct {
	roomRepo     repository.RoomRepository
	identityRepo repository.IdentityRepository
	messageRepo  repository.MessageRepository
	wsManager    *WebSocketManager
	logger       zerolog.Logger
}

func NewRoomService(
	roomRepo repository.RoomRepository,
	identityRepo repository.IdentityRepository,
	messageRepo repository.MessageRepository,
	wsManager *WebSocketManager,
	logger zerolog.Logger,
) *RoomService {
	return &RoomService{
		roomRepo:     roomRepo,
		identityRepo: identityRepo,
		messageRepo:  messageRepo,
		wsManager:    wsManager,
		logger:       logger,
	}
}

func (s *RoomService) CreateRoom(name, scenario string, isPublic bool) (*models.Room, error) {
	room := &models.Room{
		Name:     name,
		Scenario: scenario,
		IsPublic: isPublic,
	}
	if err := s.roomRepo.Create(room); err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoom 取得房間，連同依加入順序排列的參與者與依時間排列的訊息
func (s *RoomService) GetRoom(roomID uint) (*models.Room, error) {
	room, err := s.roomRepo.FindByIDFull(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

func (s *RoomService) ListRooms() ([]models.Room, error) {
	return s.roomRepo.FindAll()
}

// DeleteRoom 刪除房間，連帶清掉參與者與訊息
func (s *RoomService) DeleteRoom(roomID uint) error {
	if _, err := s.roomRepo.FindByID(roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	return s.roomRepo.Delete(roomID)
}

// AddParticipant 把角色加入房間
// 加入時間決定發言順序與 {{charN}} 的分配順序
func (s *RoomService) AddParticipant(roomID, identityID uint) (*models.RoomParticipant, error) {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return nil, err
	}

	identity, err := s.identityRepo.FindByID(identityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	for _, p := range room.Participants {
		if p.IdentityID == identityID {
			return nil, ErrAlreadyParticipant
		}
	}

	participant := &models.RoomParticipant{
		RoomID:     roomID,
		IdentityID: identityID,
		JoinedAt:   time.Now(),
	}
	if err := s.roomRepo.AddParticipant(participant); err != nil {
		return nil, err
	}
	participant.Identity = *identity

	s.wsManager.BroadcastSystemMessage(roomID, identity.Name+" joined the room")
	return participant, nil
}

func (s *RoomService) GetMessages(roomID uint) ([]models.Message, error) {
	if _, err := s.roomRepo.FindByID(roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return s.messageRepo.FindByRoomID(roomID)
}

// PostUserMessage 寫入一則使用者（人類）的發言並推播到房間
// 發言者必須是房間的參與者，訊息建立時就檢查，不回溯檢查
func (s *RoomService) PostUserMessage(roomID, identityID uint, content string) (*models.Message, error) {
	room, err := s.GetRoom(roomID)
	if err != nil {
		return nil, err
	}

	var identity *models.Identity
	for i := range room.Participants {
		if room.Participants[i].IdentityID == identityID {
			identity = &room.Participants[i].Identity
			break
		}
	}
	if identity == nil {
		return nil, ErrNotParticipant
	}

	message := &models.Message{
		RoomID:     roomID,
		IdentityID: identityID,
		Content:    content,
		IsUser:     true,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	s.wsManager.BroadcastJSON(roomID, map[string]interface{}{
		"type":      "message",
		"character": identity.Name,
		"content":   content,
		"is_user":   true,
	})
	return message, nil
}
