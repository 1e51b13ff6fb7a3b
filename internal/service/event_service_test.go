package service

import (
	"errors"
	"testing"
	"time"

	"communityhub/internal/models"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

// newEventService pins the service clock so deadline and coupon window
// checks are deterministic.
func newEventService(e *testEnv) *EventService {
	svc := NewEventService(e.eventRepo, nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

func openEvent(price float64, capacity int) *models.Event {
	return &models.Event{
		Title:                "Summer Picnic",
		Description:          "Annual community picnic",
		StartsAt:             testNow.Add(48 * time.Hour),
		EndsAt:               testNow.Add(52 * time.Hour),
		RegistrationDeadline: testNow.Add(24 * time.Hour),
		MaxCapacity:          capacity,
		Price:                price,
	}
}

func TestRegisterForEvent(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	user := env.registerUser(t, uniqueEmail(1))
	event := env.createEvent(t, openEvent(25, 0))

	reg, err := svc.RegisterForEvent(user.ID, event.ID, RegistrationRequest{})
	if err != nil {
		t.Fatalf("RegisterForEvent failed: %v", err)
	}
	if reg.TotalAmount != 25 || reg.DiscountAmount != 0 || reg.FinalAmount != 25 {
		t.Errorf("Expected amounts 25/0/25, got %v/%v/%v",
			reg.TotalAmount, reg.DiscountAmount, reg.FinalAmount)
	}

	stored, err := svc.GetRegistration(event.ID, user.ID)
	if err != nil {
		t.Fatalf("GetRegistration failed: %v", err)
	}
	if stored == nil || stored.ID != reg.ID {
		t.Errorf("Stored registration does not match: %+v", stored)
	}
}

func TestRegisterForEventDuplicate(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	user := env.registerUser(t, uniqueEmail(1))
	event := env.createEvent(t, openEvent(0, 0))

	if _, err := svc.RegisterForEvent(user.ID, event.ID, RegistrationRequest{}); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}
	_, err := svc.RegisterForEvent(user.ID, event.ID, RegistrationRequest{})
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("Expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestRegisterForEventDeadlinePassed(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	user := env.registerUser(t, uniqueEmail(1))

	event := openEvent(0, 0)
	event.RegistrationDeadline = testNow.Add(-time.Minute)
	created := env.createEvent(t, event)

	_, err := svc.RegisterForEvent(user.ID, created.ID, RegistrationRequest{})
	if !errors.Is(err, ErrDeadlinePassed) {
		t.Errorf("Expected ErrDeadlinePassed, got %v", err)
	}
}

func TestRegisterForEventAtCapacity(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	first := env.registerUser(t, uniqueEmail(1))
	second := env.registerUser(t, uniqueEmail(2))
	event := env.createEvent(t, openEvent(0, 1))

	if _, err := svc.RegisterForEvent(first.ID, event.ID, RegistrationRequest{}); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}
	_, err := svc.RegisterForEvent(second.ID, event.ID, RegistrationRequest{})
	if !errors.Is(err, ErrEventFull) {
		t.Errorf("Expected ErrEventFull, got %v", err)
	}
}

func TestRegisterForEventUnknownEvent(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	user := env.registerUser(t, uniqueEmail(1))

	_, err := svc.RegisterForEvent(user.ID, 9999, RegistrationRequest{})
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("Expected ErrEventNotFound, got %v", err)
	}
}

func TestRegisterForEventWithTicket(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	user := env.registerUser(t, uniqueEmail(1))
	event := env.createEvent(t, openEvent(25, 0))

	ticket, err := env.eventRepo.CreateTicket(&models.EventTicket{
		EventID: event.ID,
		Name:    "VIP",
		Price:   40,
	})
	if err != nil {
		t.Fatalf("Failed to create ticket: %v", err)
	}

	reg, err := svc.RegisterForEvent(user.ID, event.ID, RegistrationRequest{TicketID: &ticket.ID})
	if err != nil {
		t.Fatalf("RegisterForEvent failed: %v", err)
	}
	if reg.TotalAmount != 40 || reg.FinalAmount != 40 {
		t.Errorf("Expected ticket price 40, got total %v final %v", reg.TotalAmount, reg.FinalAmount)
	}
}

func TestRegisterForEventTicketFromOtherEvent(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	user := env.registerUser(t, uniqueEmail(1))
	event := env.createEvent(t, openEvent(25, 0))

	other := openEvent(10, 0)
	other.Title = "Winter Gala"
	otherEvent := env.createEvent(t, other)
	ticket, err := env.eventRepo.CreateTicket(&models.EventTicket{
		EventID: otherEvent.ID,
		Name:    "General",
		Price:   10,
	})
	if err != nil {
		t.Fatalf("Failed to create ticket: %v", err)
	}

	_, err = svc.RegisterForEvent(user.ID, event.ID, RegistrationRequest{TicketID: &ticket.ID})
	if !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("Expected ErrTicketNotFound, got %v", err)
	}
}

func TestRegisterForEventCouponDiscount(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	user := env.registerUser(t, uniqueEmail(1))
	event := env.createEvent(t, openEvent(25, 0))

	_, err := env.eventRepo.CreateCoupon(&models.Coupon{
		EventID:        event.ID,
		Code:           "SAVE10",
		DiscountAmount: 10,
		Active:         true,
		StartsAt:       testNow.Add(-time.Hour),
		ExpiresAt:      testNow.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Failed to create coupon: %v", err)
	}

	reg, err := svc.RegisterForEvent(user.ID, event.ID, RegistrationRequest{CouponCode: "SAVE10"})
	if err != nil {
		t.Fatalf("RegisterForEvent failed: %v", err)
	}
	if reg.TotalAmount != 25 || reg.DiscountAmount != 10 || reg.FinalAmount != 15 {
		t.Errorf("Expected amounts 25/10/15, got %v/%v/%v",
			reg.TotalAmount, reg.DiscountAmount, reg.FinalAmount)
	}
}

func TestRegisterForEventCouponClampedToTotal(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	user := env.registerUser(t, uniqueEmail(1))
	event := env.createEvent(t, openEvent(25, 0))

	_, err := env.eventRepo.CreateCoupon(&models.Coupon{
		EventID:        event.ID,
		Code:           "BIGSAVE",
		DiscountAmount: 100,
		Active:         true,
		StartsAt:       testNow.Add(-time.Hour),
		ExpiresAt:      testNow.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Failed to create coupon: %v", err)
	}

	reg, err := svc.RegisterForEvent(user.ID, event.ID, RegistrationRequest{CouponCode: "BIGSAVE"})
	if err != nil {
		t.Fatalf("RegisterForEvent failed: %v", err)
	}
	if reg.DiscountAmount != 25 || reg.FinalAmount != 0 {
		t.Errorf("Expected discount clamped to 25 and final 0, got %v/%v",
			reg.DiscountAmount, reg.FinalAmount)
	}
}

func TestRegisterForEventCouponInvalid(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	user := env.registerUser(t, uniqueEmail(1))
	event := env.createEvent(t, openEvent(25, 0))

	if _, err := env.eventRepo.CreateCoupon(&models.Coupon{
		EventID:        event.ID,
		Code:           "EXPIRED",
		DiscountAmount: 5,
		Active:         true,
		StartsAt:       testNow.Add(-2 * time.Hour),
		ExpiresAt:      testNow.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("Failed to create coupon: %v", err)
	}
	if _, err := env.eventRepo.CreateCoupon(&models.Coupon{
		EventID:        event.ID,
		Code:           "DISABLED",
		DiscountAmount: 5,
		Active:         false,
		StartsAt:       testNow.Add(-time.Hour),
		ExpiresAt:      testNow.Add(time.Hour),
	}); err != nil {
		t.Fatalf("Failed to create coupon: %v", err)
	}

	for _, code := range []string{"NOSUCHCODE", "EXPIRED", "DISABLED"} {
		t.Run(code, func(t *testing.T) {
			_, err := svc.RegisterForEvent(user.ID, event.ID, RegistrationRequest{CouponCode: code})
			if !errors.Is(err, ErrCouponInvalid) {
				t.Errorf("Expected ErrCouponInvalid, got %v", err)
			}
		})
	}
}

func TestRegisterForEventCouponUsageLimit(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	first := env.registerUser(t, uniqueEmail(1))
	second := env.registerUser(t, uniqueEmail(2))
	event := env.createEvent(t, openEvent(25, 0))

	if _, err := env.eventRepo.CreateCoupon(&models.Coupon{
		EventID:        event.ID,
		Code:           "LIMITED",
		DiscountAmount: 5,
		UsageLimit:     1,
		Active:         true,
		StartsAt:       testNow.Add(-time.Hour),
		ExpiresAt:      testNow.Add(time.Hour),
	}); err != nil {
		t.Fatalf("Failed to create coupon: %v", err)
	}

	if _, err := svc.RegisterForEvent(first.ID, event.ID, RegistrationRequest{CouponCode: "LIMITED"}); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}
	_, err := svc.RegisterForEvent(second.ID, event.ID, RegistrationRequest{CouponCode: "LIMITED"})
	if !errors.Is(err, ErrCouponInvalid) {
		t.Errorf("Expected ErrCouponInvalid once the usage limit is reached, got %v", err)
	}
}

func TestRegisterForEventCouponOnePerUser(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	user := env.registerUser(t, uniqueEmail(1))
	event := env.createEvent(t, openEvent(25, 0))

	if _, err := env.eventRepo.CreateCoupon(&models.Coupon{
		EventID:        event.ID,
		Code:           "ONCE",
		DiscountAmount: 5,
		OnePerUser:     true,
		Active:         true,
		StartsAt:       testNow.Add(-time.Hour),
		ExpiresAt:      testNow.Add(time.Hour),
	}); err != nil {
		t.Fatalf("Failed to create coupon: %v", err)
	}

	if _, err := svc.RegisterForEvent(user.ID, event.ID, RegistrationRequest{CouponCode: "ONCE"}); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}

	// The per-user check runs before the duplicate check, so reusing the
	// code surfaces as a coupon error rather than a duplicate one.
	_, err := svc.RegisterForEvent(user.ID, event.ID, RegistrationRequest{CouponCode: "ONCE"})
	if !errors.Is(err, ErrCouponAlreadyUsed) {
		t.Errorf("Expected ErrCouponAlreadyUsed, got %v", err)
	}
}

func TestCheckInAttendee(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	user := env.registerUser(t, uniqueEmail(1))
	staff := env.registerUser(t, uniqueEmail(2))
	event := env.createEvent(t, openEvent(0, 0))

	reg, err := svc.RegisterForEvent(user.ID, event.ID, RegistrationRequest{})
	if err != nil {
		t.Fatalf("RegisterForEvent failed: %v", err)
	}

	checked, err := svc.CheckInAttendee(reg.ID, staff.ID)
	if err != nil {
		t.Fatalf("CheckInAttendee failed: %v", err)
	}
	if !checked {
		t.Error("Expected first check-in to report true")
	}

	checked, err = svc.CheckInAttendee(reg.ID, staff.ID)
	if err != nil {
		t.Fatalf("Repeated check-in failed: %v", err)
	}
	if checked {
		t.Error("Expected repeated check-in to report false")
	}

	stored, err := env.eventRepo.GetRegistrationByID(reg.ID)
	if err != nil {
		t.Fatalf("GetRegistrationByID failed: %v", err)
	}
	if !stored.CheckedIn || stored.CheckedInBy == nil || *stored.CheckedInBy != staff.ID {
		t.Errorf("Check-in not recorded: %+v", stored)
	}
}

func TestCheckInAttendeeUnknownRegistration(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)

	_, err := svc.CheckInAttendee(12345, 1)
	if !errors.Is(err, ErrRegistrationNotFound) {
		t.Errorf("Expected ErrRegistrationNotFound, got %v", err)
	}
}

// recordingProvisioner captures the slugs passed to folder provisioning
type recordingProvisioner struct {
	slugs []string
}

func (p *recordingProvisioner) ProvisionEventFolders(slug string) error {
	p.slugs = append(p.slugs, slug)
	return nil
}

func TestCreateEventGeneratesUniqueSlugs(t *testing.T) {
	env := newTestEnv(t)
	provisioner := &recordingProvisioner{}
	svc := NewEventService(env.eventRepo, provisioner)
	svc.now = func() time.Time { return testNow }

	first, err := svc.CreateEvent(openEvent(0, 0))
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	second, err := svc.CreateEvent(openEvent(0, 0))
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	if first.Slug != "summer-picnic" {
		t.Errorf("Expected slug summer-picnic, got %q", first.Slug)
	}
	if second.Slug != "summer-picnic-2" {
		t.Errorf("Expected slug summer-picnic-2, got %q", second.Slug)
	}
	if len(provisioner.slugs) != 2 ||
		provisioner.slugs[0] != first.Slug || provisioner.slugs[1] != second.Slug {
		t.Errorf("Expected folders provisioned for both slugs, got %v", provisioner.slugs)
	}
}

func TestUpdateEventKeepsSlug(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)
	event := env.createEvent(t, openEvent(25, 0))

	changed := openEvent(30, 50)
	changed.Title = "Autumn Picnic"
	if err := svc.UpdateEvent(event.ID, changed); err != nil {
		t.Fatalf("UpdateEvent failed: %v", err)
	}

	updated, err := svc.GetEvent(event.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if updated.Title != "Autumn Picnic" || updated.Price != 30 || updated.MaxCapacity != 50 {
		t.Errorf("Update not persisted: %+v", updated)
	}
	if updated.Slug != event.Slug {
		t.Errorf("Expected slug to stay %q, got %q", event.Slug, updated.Slug)
	}

	if err := svc.UpdateEvent(9999, changed); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("Expected ErrEventNotFound, got %v", err)
	}
}

func TestCreateEventRequiresTitle(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)

	if _, err := svc.CreateEvent(&models.Event{Title: "   "}); err == nil {
		t.Error("Expected error for blank title")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Summer Picnic", "summer-picnic"},
		{"  Annual Gala 2026!  ", "annual-gala-2026"},
		{"Kids' Day (Ages 5-10)", "kids-day-ages-5-10"},
		{"---", ""},
		{"Déjà Vu", "d-j-vu"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestGetEventNotFound(t *testing.T) {
	env := newTestEnv(t)
	svc := newEventService(env)

	if _, err := svc.GetEvent(404); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("Expected ErrEventNotFound, got %v", err)
	}
	if _, err := svc.GetEventBySlug("no-such-event"); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("Expected ErrEventNotFound, got %v", err)
	}
}
