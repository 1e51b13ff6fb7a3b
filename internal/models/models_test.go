package models

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiry",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "past expiry",
			expiresAt: time.Now().Add(-1 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{ExpiresAt: tt.expiresAt}
			if got := s.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		role string
		want bool
	}{
		{name: "admin role", role: RoleAdmin, want: true},
		{name: "moderator role", role: RoleModerator, want: true},
		{name: "member role", role: RoleMember, want: false},
		{name: "empty role", role: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{RoleName: tt.role}
			if got := u.IsAdmin(); got != tt.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventRegistrationOpen(t *testing.T) {
	deadline := time.Date(2026, time.June, 1, 18, 0, 0, 0, time.UTC)
	event := &Event{RegistrationDeadline: deadline}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{
			name: "before deadline",
			now:  deadline.Add(-time.Hour),
			want: true,
		},
		{
			name: "exactly at deadline",
			now:  deadline,
			want: true,
		},
		{
			name: "after deadline",
			now:  deadline.Add(time.Minute),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := event.RegistrationOpen(tt.now); got != tt.want {
				t.Errorf("RegistrationOpen(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestCouponIsRedeemable(t *testing.T) {
	now := time.Date(2026, time.May, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		coupon Coupon
		want   bool
	}{
		{
			name: "active inside window",
			coupon: Coupon{
				Active:    true,
				StartsAt:  now.Add(-24 * time.Hour),
				ExpiresAt: now.Add(24 * time.Hour),
			},
			want: true,
		},
		{
			name: "inactive",
			coupon: Coupon{
				Active:    false,
				StartsAt:  now.Add(-24 * time.Hour),
				ExpiresAt: now.Add(24 * time.Hour),
			},
			want: false,
		},
		{
			name: "not yet valid",
			coupon: Coupon{
				Active:    true,
				StartsAt:  now.Add(time.Hour),
				ExpiresAt: now.Add(24 * time.Hour),
			},
			want: false,
		},
		{
			name: "expired",
			coupon: Coupon{
				Active:    true,
				StartsAt:  now.Add(-48 * time.Hour),
				ExpiresAt: now.Add(-time.Hour),
			},
			want: false,
		},
		{
			name: "usage limit reached",
			coupon: Coupon{
				Active:     true,
				StartsAt:   now.Add(-24 * time.Hour),
				ExpiresAt:  now.Add(24 * time.Hour),
				UsageLimit: 5,
				UsedCount:  5,
			},
			want: false,
		},
		{
			name: "unlimited usage",
			coupon: Coupon{
				Active:    true,
				StartsAt:  now.Add(-24 * time.Hour),
				ExpiresAt: now.Add(24 * time.Hour),
				UsedCount: 1000,
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coupon.IsRedeemable(now); got != tt.want {
				t.Errorf("IsRedeemable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFamilyMemberFullName(t *testing.T) {
	tests := []struct {
		name   string
		member FamilyMember
		want   string
	}{
		{
			name:   "first and last",
			member: FamilyMember{FirstName: "Mere", LastName: "Vuki"},
			want:   "Mere Vuki",
		},
		{
			name:   "first only",
			member: FamilyMember{FirstName: "Mere"},
			want:   "Mere",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.member.FullName(); got != tt.want {
				t.Errorf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFamilyMemberIsSelf(t *testing.T) {
	self := FamilyMember{Relationship: RelationshipSelf}
	if !self.IsSelf() {
		t.Error("expected self relationship to report IsSelf")
	}

	child := FamilyMember{Relationship: "child"}
	if child.IsSelf() {
		t.Error("expected child relationship to not report IsSelf")
	}
}

func TestDonationDisplayName(t *testing.T) {
	named := Donation{DonorName: "Sera"}
	if got := named.DisplayName(); got != "Sera" {
		t.Errorf("DisplayName() = %q, want %q", got, "Sera")
	}

	anonymous := Donation{}
	if got := anonymous.DisplayName(); got != "Anonymous" {
		t.Errorf("DisplayName() = %q, want %q", got, "Anonymous")
	}
}
