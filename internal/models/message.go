package models

import (
	"gorm.io/gorm"
)

// Message 代表房間中的一則訊息，只增不改
// CreatedAt 決定對話紀錄的嚴格順序
type Message struct {
	gorm.Model
	RoomID     uint     `json:"room_id" gorm:"index;not null"`
	IdentityID uint     `json:"identity_id" gorm:"not null"`
	Content    string   `json:"content" gorm:"type:text;not null"`
	IsUser     bool     `json:"is_user"`
	Identity   Identity `json:"identity,omitempty" gorm:"foreignKey:IdentityID"`
}
