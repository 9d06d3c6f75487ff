package service

import "github.com/pkg/errors"

// 服務層的錯誤分類，由 handler 對應到 HTTP 狀態碼
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrSpeakerNotFound    = errors.New("speaker not found in room")
	ErrNotParticipant     = errors.New("identity is not a participant of this room")
	ErrAlreadyParticipant = errors.New("identity is already a participant of this room")
	ErrIdentityInUse      = errors.New("identity has messages and cannot be deleted")
	ErrNoParticipants     = errors.New("room has no participants")
)
