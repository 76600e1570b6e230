package models

import (
	"gorm.io/gorm"
)

// Permission names granted to admins.
const (
	PermReviewPayments = "review-payments"
	PermManageContent  = "manage-content"
	PermRunSweep       = "run-sweep"
)

// AdminPermissions is what a newly created admin receives.
var AdminPermissions = []string{PermReviewPayments, PermManageContent, PermRunSweep}

type Permission struct {
	gorm.Model
	UserID     uint   `json:"user_id" gorm:"not null;index"`
	User       *User  `json:"-" gorm:"foreignKey:UserID"`
	Role       string `json:"role"`
	Permission string `json:"permission" gorm:"type:varchar(255)"` // e.g. "review-payments"
	IsDeleted  bool   `json:"-" gorm:"default:false"`
}

// GrantPermissions records one permission row per name for the user.
func GrantPermissions(db *gorm.DB, userID uint, role string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	records := make([]Permission, 0, len(names))
	for _, p := range names {
		records = append(records, Permission{UserID: userID, Role: role, Permission: p})
	}
	return db.Create(&records).Error
}
