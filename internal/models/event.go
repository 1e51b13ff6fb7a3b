package models

import "time"

// Event represents a community event
type Event struct {
	ID                   int64
	Title                string
	Slug                 string
	Description          string
	StartsAt             time.Time
	EndsAt               time.Time
	RegistrationDeadline time.Time
	MaxCapacity          int
	Price                float64
	Sponsorable          bool
	CreatedBy            *int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// RegistrationOpen reports whether the registration deadline has not passed
func (e *Event) RegistrationOpen(now time.Time) bool {
	return !now.After(e.RegistrationDeadline)
}

// EventTicket is a priced ticket tier for an event
type EventTicket struct {
	ID       int64
	EventID  int64
	Name     string
	Price    float64
	Quantity int
}

// Coupon is a flat-amount discount code for an event
type Coupon struct {
	ID             int64
	EventID        int64
	Code           string
	DiscountAmount float64
	UsageLimit     int // 0 means unlimited
	OnePerUser     bool
	Active         bool
	StartsAt       time.Time
	ExpiresAt      time.Time
	UsedCount      int
	CreatedAt      time.Time
}

// IsRedeemable reports whether the coupon can be applied at the given time,
// ignoring per-user limits which need the registration history.
func (c *Coupon) IsRedeemable(now time.Time) bool {
	if !c.Active {
		return false
	}
	if !c.StartsAt.IsZero() && now.Before(c.StartsAt) {
		return false
	}
	if !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt) {
		return false
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return false
	}
	return true
}

// EventRegistration links a user to an event, optionally with a ticket
// tier and a coupon. At most one registration exists per (user, event).
type EventRegistration struct {
	ID             int64
	EventID        int64
	UserID         int64
	TicketID       *int64
	CouponID       *int64
	TotalAmount    float64
	DiscountAmount float64
	FinalAmount    float64
	CheckedIn      bool
	CheckinTime    *time.Time
	CheckedInBy    *int64
	CreatedAt      time.Time
}
