package models

import (
	"time"

	"gorm.io/gorm"
)

// Room 代表一個對話房間
// Scenario 是角色分配的模板，內含 {{char1}}、{{char2}}... 佔位符
// 佔位符索引從 1 開始且必須連續
type Room struct {
	gorm.Model
	Name         string            `json:"name" gorm:"type:varchar(100);not null"`
	Scenario     string            `json:"scenario" gorm:"type:text;not null"`
	IsPublic     bool              `json:"is_public"`
	Participants []RoomParticipant `json:"participants,omitempty" gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
	Messages     []Message         `json:"messages,omitempty" gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
}

// RoomParticipant 代表房間與角色的關聯
// JoinedAt 決定穩定的發言順序，也就是 {{char1}}、{{char2}}... 的分配順序
type RoomParticipant struct {
	gorm.Model
	RoomID     uint      `json:"room_id" gorm:"uniqueIndex:idx_room_identity;not null"`
	IdentityID uint      `json:"identity_id" gorm:"uniqueIndex:idx_room_identity;not null"`
	JoinedAt   time.Time `json:"joined_at" gorm:"not null"`
	Identity   Identity  `json:"identity" gorm:"foreignKey:IdentityID"`
}
