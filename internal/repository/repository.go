package repository

import "aichat_web/internal/storage"

type Repositories struct {
	Identity IdentityRepository
	Room     RoomRepository
	Message  MessageRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		Identity: NewIdentityRepository(db),
		Room:     NewRoomRepository(db),
		Message:  NewMessageRepository(db),
	}
}
