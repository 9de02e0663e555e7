package domain

import "time"

type Volunteer struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Name            string    `gorm:"size:128;not null" json:"name"`
	Age             *int      `json:"age"`
	WorkArea        string    `gorm:"size:128" json:"workArea"`
	Schedule        string    `gorm:"size:128" json:"schedule"`
	EntryDate       time.Time `gorm:"index" json:"entryDate"`
	IsActive        bool      `gorm:"index" json:"isActive"`
	WorkedHours     float64   `json:"workedHours"`
	AbsenteeismRate float64   `json:"absenteeismRate"` // 0-100
	ImageURL        string    `gorm:"size:512" json:"imageUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
