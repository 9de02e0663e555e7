package domain

import "time"

type VeterinaryRecord struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	AnimalID  string    `gorm:"size:36;not null;index" json:"animalId"`
	Animal    *Animal   `gorm:"foreignKey:AnimalID" json:"animal,omitempty"`
	Doctor    string    `gorm:"size:128" json:"doctor"`
	Date      time.Time `gorm:"index" json:"date"`
	Cost      float64   `json:"cost"`
	Illness   string    `gorm:"size:191" json:"illness"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
