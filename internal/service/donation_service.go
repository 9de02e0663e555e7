package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"animal-shelter/internal/core/errs"
	"animal-shelter/internal/domain"
	"animal-shelter/internal/repo"
	"animal-shelter/pkg/utils"
)

// CreateDonationInput 捐赠日期必填，不默认为今天
type CreateDonationInput struct {
	DonorName    string  `json:"donorName" binding:"required,max=128"`
	Product      string  `json:"product" binding:"required,max=128"`
	Quantity     int     `json:"quantity" binding:"required,gt=0"`
	Amount       float64 `json:"amount" binding:"min=0"`
	DonationDate string  `json:"donationDate" binding:"required"`
	Notes        string  `json:"notes"`
}

type UpdateDonationInput struct {
	DonorName    *string  `json:"donorName" binding:"omitempty,max=128"`
	Product      *string  `json:"product" binding:"omitempty,max=128"`
	Quantity     *int     `json:"quantity" binding:"omitempty,gt=0"`
	Amount       *float64 `json:"amount" binding:"omitempty,min=0"`
	DonationDate *string  `json:"donationDate"`
	Notes        *string  `json:"notes"`
}

type DonationService struct {
	store *repo.Store
	log   *zap.Logger
}

func NewDonationService(store *repo.Store, log *zap.Logger) *DonationService {
	return &DonationService{store: store, log: log}
}

func (s *DonationService) Create(ctx context.Context, in CreateDonationInput) (*domain.Donation, error) {
	f := fields{}
	f.required("donorName", in.DonorName)
	f.required("product", in.Product)
	f.required("donationDate", in.DonationDate)
	if in.Quantity <= 0 {
		f["quantity"] = "must be > 0"
	}
	if in.Amount < 0 {
		f["amount"] = "must be >= 0"
	}
	date := f.date("donationDate", in.DonationDate)
	if err := f.err(); err != nil {
		return nil, err
	}

	d := &domain.Donation{
		ID:           utils.NewID(),
		DonorName:    strings.TrimSpace(in.DonorName),
		Product:      strings.TrimSpace(in.Product),
		Quantity:     in.Quantity,
		Amount:       in.Amount,
		DonationDate: date,
		Notes:        strings.TrimSpace(in.Notes),
	}
	if err := s.store.Donations.Create(ctx, d); err != nil {
		return nil, errs.Persistence("create donation failed", err)
	}
	s.log.Info("donation created", zap.String("donation_id", d.ID), zap.String("product", d.Product))
	return d, nil
}

func (s *DonationService) Get(ctx context.Context, id string) (*domain.Donation, error) {
	d, err := s.store.Donations.FindByID(ctx, id)
	if err != nil {
		return nil, errs.Persistence("load donation failed", err)
	}
	if d == nil {
		return nil, errs.NotFound("donation not found")
	}
	return d, nil
}

func (s *DonationService) List(ctx context.Context, p domain.ListParams) ([]domain.Donation, int64, error) {
	items, total, err := s.store.Donations.List(ctx, p)
	if err != nil {
		return nil, 0, errs.Persistence("list donations failed", err)
	}
	return items, total, nil
}

func (s *DonationService) Update(ctx context.Context, id string, in UpdateDonationInput) (*domain.Donation, error) {
	f := fields{}
	f.requiredPtr("donorName", in.DonorName)
	f.requiredPtr("product", in.Product)
	f.requiredPtr("donationDate", in.DonationDate)
	if in.Quantity != nil && *in.Quantity <= 0 {
		f["quantity"] = "must be > 0"
	}
	if in.Amount != nil && *in.Amount < 0 {
		f["amount"] = "must be >= 0"
	}
	date := f.datePtr("donationDate", in.DonationDate)
	if err := f.err(); err != nil {
		return nil, err
	}

	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	setStr(&d.DonorName, in.DonorName)
	setStr(&d.Product, in.Product)
	setStr(&d.Notes, in.Notes)
	if in.Quantity != nil {
		d.Quantity = *in.Quantity
	}
	if in.Amount != nil {
		d.Amount = *in.Amount
	}
	if date != nil && !date.IsZero() {
		d.DonationDate = *date
	}
	if err := s.store.Donations.Update(ctx, d); err != nil {
		return nil, errs.Persistence("update donation failed", err)
	}
	return d, nil
}

func (s *DonationService) Delete(ctx context.Context, id string) error {
	n, err := s.store.Donations.Delete(ctx, id)
	if err != nil {
		return errs.Persistence("delete donation failed", err)
	}
	if n == 0 {
		return errs.NotFound("donation not found")
	}
	return nil
}
