package domain

import "time"

type AnimalStatus string

const (
	AnimalAvailable   AnimalStatus = "available"
	AnimalAdopted     AnimalStatus = "adopted"
	AnimalInTreatment AnimalStatus = "in-treatment"
)

func (s AnimalStatus) Valid() bool {
	switch s {
	case AnimalAvailable, AnimalAdopted, AnimalInTreatment:
		return true
	}
	return false
}

type Animal struct {
	ID            string       `gorm:"primaryKey;size:36" json:"id"`
	Name          string       `gorm:"size:128;not null" json:"name"`
	Species       string       `gorm:"size:64;not null;index" json:"species"`
	Breed         string       `gorm:"size:128" json:"breed"`
	Age           *int         `json:"age"`
	Gender        string       `gorm:"size:16" json:"gender"`
	Status        AnimalStatus `gorm:"size:16;not null;index" json:"status"`
	ImageURL      string       `gorm:"size:512" json:"imageUrl"`
	Description   string       `gorm:"type:text" json:"description"`
	AdmissionDate time.Time    `gorm:"index" json:"admissionDate"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}
