package models

import "time"

// Donation is an append-only contribution record. UserID is nil for
// anonymous donations.
type Donation struct {
	ID        int64
	UserID    *int64
	DonorName string
	Amount    float64
	Message   string
	CreatedAt time.Time
}

// DisplayName returns the donor name to show on listings
func (d *Donation) DisplayName() string {
	if d.DonorName != "" {
		return d.DonorName
	}
	return "Anonymous"
}
