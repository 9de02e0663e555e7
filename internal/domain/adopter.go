package domain

import "time"

// SentinelAdopterName 直接把动物改成 adopted 时挂靠的占位领养人
const SentinelAdopterName = "adopter not specified"

const DefaultAdopterNotes = "no notes added."

type Adopter struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Name         string     `gorm:"size:128;not null" json:"name"`
	Phone        string     `gorm:"size:32;uniqueIndex" json:"phone"`
	Email        string     `gorm:"size:191" json:"email"`
	Address      string     `gorm:"size:191" json:"address"`
	AddressNum   string     `gorm:"size:16" json:"addressNum"`
	ZipCode      string     `gorm:"size:16" json:"zipCode"`
	Neighborhood string     `gorm:"size:128" json:"neighborhood"`
	City         string     `gorm:"size:128" json:"city"`
	State        string     `gorm:"size:64" json:"state"`
	BirthDate    *time.Time `json:"birthDate"`
	ImageURL     string     `gorm:"size:512" json:"imageUrl"`
	Notes        string     `gorm:"type:text" json:"notes"`
	Placeholder  bool       `gorm:"index" json:"placeholder"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
