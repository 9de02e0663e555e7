package domain

import "time"

// Donation is grouped on the dashboard by Product (item category). Amount is
// optional and only set for monetary donations.
type Donation struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	DonorName    string    `gorm:"size:128;not null" json:"donorName"`
	Product      string    `gorm:"size:128;not null;index" json:"product"`
	Quantity     int       `json:"quantity"`
	Amount       float64   `json:"amount"`
	DonationDate time.Time `gorm:"index" json:"donationDate"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
