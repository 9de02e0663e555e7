package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"animal-shelter/internal/domain"
)

type DonationRepo struct{ base[domain.Donation] }

func NewDonationRepo(db *gorm.DB) *DonationRepo {
	return &DonationRepo{base[domain.Donation]{
		db:     db,
		order:  "donation_date DESC",
		search: []string{"donor_name", "product"},
	}}
}

func (r *DonationRepo) Since(ctx context.Context, since time.Time) ([]domain.Donation, error) {
	out := make([]domain.Donation, 0)
	err := r.db.WithContext(ctx).Where("donation_date >= ?", since).Find(&out).Error
	return out, err
}

func (r *DonationRepo) TotalAmount(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&domain.Donation{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
