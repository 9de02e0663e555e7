package repo

import (
	"context"

	"gorm.io/gorm"
)

// Store 聚合所有仓储；Transaction 内的 tx Store 共享同一事务
type Store struct {
	db *gorm.DB

	Users      *UserRepo
	Animals    *AnimalRepo
	Adopters   *AdopterRepo
	Adoptions  *AdoptionRepo
	VetRecords *VetRecordRepo
	Volunteers *VolunteerRepo
	Donations  *DonationRepo
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Users:      NewUserRepo(db),
		Animals:    NewAnimalRepo(db),
		Adopters:   NewAdopterRepo(db),
		Adoptions:  NewAdoptionRepo(db),
		VetRecords: NewVetRecordRepo(db),
		Volunteers: NewVolunteerRepo(db),
		Donations:  NewDonationRepo(db),
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
