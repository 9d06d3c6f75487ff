package models

import (
	"gorm.io/gorm"
)

// Identity 代表一個可重複使用的 AI 角色設定
// 多個房間可以共用同一個 Identity（共用而非複製）
type Identity struct {
	gorm.Model
	Name          string `json:"name" gorm:"type:varchar(100);not null"`
	Bio           string `json:"bio" gorm:"type:text;not null"`
	Avatar        string `json:"avatar,omitempty"`
	ModelProvider string `json:"model_provider" gorm:"type:varchar(50)"`
}
