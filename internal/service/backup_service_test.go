package service

import (
	"bytes"
	"testing"
	"time"

	"communityhub/internal/models"
)

func TestBackupRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)
	user := env.registerUser(t, "jordan@example.com")
	event := env.createEvent(t, openEvent(25, 0))

	if _, err := env.eventRepo.CreateTicket(&models.EventTicket{
		EventID: event.ID,
		Name:    "General",
		Price:   25,
	}); err != nil {
		t.Fatalf("Failed to create ticket: %v", err)
	}
	if _, err := env.eventRepo.CreateCoupon(&models.Coupon{
		EventID:        event.ID,
		Code:           "SAVE5",
		DiscountAmount: 5,
		Active:         true,
		StartsAt:       testNow.Add(-time.Hour),
		ExpiresAt:      testNow.Add(time.Hour),
	}); err != nil {
		t.Fatalf("Failed to create coupon: %v", err)
	}

	svc := newEventService(env)
	if _, err := svc.RegisterForEvent(user.ID, event.ID, RegistrationRequest{CouponCode: "SAVE5"}); err != nil {
		t.Fatalf("RegisterForEvent failed: %v", err)
	}
	if _, err := NewDonationService(env.donationRepo).Donate(&user.ID, user.Name, 50, "keep it up"); err != nil {
		t.Fatalf("Donate failed: %v", err)
	}

	backupService := NewBackupService(env.db, env.userRepo, env.familyRepo, env.eventRepo, env.donationRepo)

	var buf bytes.Buffer
	if err := backupService.Export(&buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if err := backupService.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	var remaining int
	if err := env.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&remaining); err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("Expected empty users table after clear, got %d rows", remaining)
	}

	if err := backupService.Import(&buf); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	restored, err := env.userRepo.GetUserByEmail("jordan@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if restored == nil || restored.ID != user.ID {
		t.Fatalf("Expected user restored with original ID %d, got %+v", user.ID, restored)
	}
	if restored.RoleName != models.RoleMember {
		t.Errorf("Expected member role restored, got %q", restored.RoleName)
	}

	self, err := env.familyRepo.GetSelfMember(user.ID)
	if err != nil {
		t.Fatalf("GetSelfMember failed: %v", err)
	}
	if self == nil {
		t.Error("Expected self directory row restored")
	}

	reg, err := env.eventRepo.GetRegistration(event.ID, user.ID)
	if err != nil {
		t.Fatalf("GetRegistration failed: %v", err)
	}
	if reg == nil || reg.FinalAmount != 20 {
		t.Errorf("Expected registration restored with final amount 20, got %+v", reg)
	}

	coupon, err := env.eventRepo.GetCouponByCode(event.ID, "SAVE5")
	if err != nil {
		t.Fatalf("GetCouponByCode failed: %v", err)
	}
	if coupon == nil || coupon.UsedCount != 1 {
		t.Errorf("Expected coupon restored with used_count 1, got %+v", coupon)
	}

	donations, err := env.donationRepo.GetUserDonations(user.ID)
	if err != nil {
		t.Fatalf("GetUserDonations failed: %v", err)
	}
	if len(donations) != 1 || donations[0].Amount != 50 {
		t.Errorf("Expected one donation of 50 restored, got %+v", donations)
	}
}
