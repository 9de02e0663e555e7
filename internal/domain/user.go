package domain

import (
	"time"

	"gorm.io/gorm"
)

const RoleAdmin = "admin"

type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Name         string         `gorm:"size:64;not null" json:"name"`
	PasswordHash string         `gorm:"size:100;not null" json:"-"`
	Role         string         `gorm:"size:16;not null" json:"role"`
	TOTPSecret   string         `gorm:"size:64" json:"-"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
