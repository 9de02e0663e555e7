package domain

import "time"

type AdoptionStatus string

const (
	AdoptionRequested AdoptionStatus = "requested"
	AdoptionAdapting  AdoptionStatus = "adapting"
	AdoptionFinalized AdoptionStatus = "finalized"
	AdoptionReturned  AdoptionStatus = "returned"
)

// AdoptionTransitions documents the expected lifecycle. It is not enforced:
// any status may be written, only returned/deletion and creation have side
// effects on the animal.
var AdoptionTransitions = map[AdoptionStatus][]AdoptionStatus{
	AdoptionRequested: {AdoptionAdapting, AdoptionFinalized, AdoptionReturned},
	AdoptionAdapting:  {AdoptionFinalized, AdoptionReturned},
	AdoptionFinalized: {AdoptionReturned},
	AdoptionReturned:  {},
}

func (s AdoptionStatus) Valid() bool {
	_, ok := AdoptionTransitions[s]
	return ok
}

// Active 除 returned 外都算占用动物
func (s AdoptionStatus) Active() bool { return s != AdoptionReturned }

type Adoption struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	AnimalID     string         `gorm:"size:36;not null;index" json:"animalId"`
	Animal       *Animal        `gorm:"foreignKey:AnimalID" json:"animal,omitempty"`
	AdopterID    string         `gorm:"size:36;not null;index" json:"adopterId"`
	Adopter      *Adopter       `gorm:"foreignKey:AdopterID" json:"adopter,omitempty"`
	AdoptionDate time.Time      `gorm:"index" json:"adoptionDate"`
	Status       AdoptionStatus `gorm:"size:16;not null;index" json:"status"`
	Notes        string         `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}
