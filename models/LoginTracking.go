package models

import (
	"time"

	"gorm.io/gorm"
)

// LoginTracking is one sign-in attempt, kept for the account's login history.
type LoginTracking struct {
	gorm.Model
	UserID    uint      `json:"user_id" gorm:"index"`
	IPAddress string    `json:"ip_address" gorm:"type:varchar(64)"`
	Device    string    `json:"device"`
	Succeeded bool      `json:"succeeded" gorm:"default:false"`
	Timestamp time.Time `json:"timestamp"`
	IsDeleted bool      `json:"-" gorm:"default:false"`
}
