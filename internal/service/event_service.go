package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"communityhub/internal/models"
	"communityhub/internal/repository"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrAlreadyRegistered    = errors.New("already registered for this event")
	ErrDeadlinePassed       = errors.New("registration deadline has passed")
	ErrEventFull            = errors.New("event is at full capacity")
	ErrCouponInvalid        = errors.New("coupon is not valid for this event")
	ErrCouponAlreadyUsed    = errors.New("coupon has already been used by this member")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrTicketNotFound       = errors.New("ticket not found for this event")
)

// FolderProvisioner creates the upload folder tree for a new event.
// Provisioning is an explicit step invoked after the row insert so the
// data-layer operation stays pure.
type FolderProvisioner interface {
	ProvisionEventFolders(slug string) error
}

// RegistrationRequest carries the caller's choices for RegisterForEvent
type RegistrationRequest struct {
	TicketID   *int64
	CouponCode string
}

// EventService holds the event business rules: registration with
// capacity, deadline and coupon checks, and attendee check-in.
type EventService struct {
	eventRepo   *repository.EventRepository
	provisioner FolderProvisioner
	now         func() time.Time
}

// NewEventService creates a new event service
func NewEventService(eventRepo *repository.EventRepository, provisioner FolderProvisioner) *EventService {
	return &EventService{
		eventRepo:   eventRepo,
		provisioner: provisioner,
		now:         time.Now,
	}
}

// CreateEvent inserts an event with a unique slug derived from the title
// and then provisions its upload folder tree.
func (s *EventService) CreateEvent(e *models.Event) (*models.Event, error) {
	if strings.TrimSpace(e.Title) == "" {
		return nil, errors.New("event title is required")
	}

	slug, err := s.ensureUniqueSlug(Slugify(e.Title))
	if err != nil {
		return nil, err
	}
	e.Slug = slug

	created, err := s.eventRepo.CreateEvent(e)
	if err != nil {
		return nil, err
	}

	if s.provisioner != nil {
		if err := s.provisioner.ProvisionEventFolders(created.Slug); err != nil {
			return nil, fmt.Errorf("failed to provision event folders: %w", err)
		}
	}

	return created, nil
}

// UpdateEvent updates an event's editable fields. The slug stays stable
// so existing links and the provisioned folder tree remain valid.
func (s *EventService) UpdateEvent(eventID int64, e *models.Event) error {
	if strings.TrimSpace(e.Title) == "" {
		return errors.New("event title is required")
	}

	existing, err := s.GetEvent(eventID)
	if err != nil {
		return err
	}

	e.ID = existing.ID
	e.Slug = existing.Slug
	return s.eventRepo.UpdateEvent(e)
}

// RegisterForEvent moves a (user, event) pair from unregistered to
// registered. Rejects when the user is already registered, the deadline
// has passed, or the event is at capacity. The coupon discount is a flat
// amount clamped to [0, total].
func (s *EventService) RegisterForEvent(userID, eventID int64, req RegistrationRequest) (*models.EventRegistration, error) {
	event, err := s.eventRepo.GetEventByID(eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	now := s.now()
	if !event.RegistrationOpen(now) {
		return nil, ErrDeadlinePassed
	}

	total := event.Price
	if req.TicketID != nil {
		ticket, err := s.eventRepo.GetTicketByID(*req.TicketID)
		if err != nil {
			return nil, err
		}
		if ticket == nil || ticket.EventID != eventID {
			return nil, ErrTicketNotFound
		}
		total = ticket.Price
	}

	var couponID *int64
	discount := 0.0
	if req.CouponCode != "" {
		coupon, err := s.eventRepo.GetCouponByCode(eventID, strings.TrimSpace(req.CouponCode))
		if err != nil {
			return nil, err
		}
		if coupon == nil || !coupon.IsRedeemable(now) {
			return nil, ErrCouponInvalid
		}
		if coupon.OnePerUser {
			used, err := s.eventRepo.HasUserUsedCoupon(coupon.ID, userID)
			if err != nil {
				return nil, err
			}
			if used {
				return nil, ErrCouponAlreadyUsed
			}
		}
		discount = coupon.DiscountAmount
		if discount > total {
			discount = total
		}
		if discount < 0 {
			discount = 0
		}
		couponID = &coupon.ID
	}

	reg := &models.EventRegistration{
		EventID:        eventID,
		UserID:         userID,
		TicketID:       req.TicketID,
		CouponID:       couponID,
		TotalAmount:    total,
		DiscountAmount: discount,
		FinalAmount:    total - discount,
	}

	created, err := s.eventRepo.CreateRegistration(reg, event.MaxCapacity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRegistration):
			return nil, ErrAlreadyRegistered
		case errors.Is(err, repository.ErrCapacityReached):
			return nil, ErrEventFull
		case errors.Is(err, repository.ErrCouponExhausted):
			return nil, ErrCouponInvalid
		}
		return nil, err
	}

	return created, nil
}

// CheckInAttendee transitions a registration to checked-in. Returns true
// on the first call; a repeated call is an idempotent no-op returning
// false, not an error.
func (s *EventService) CheckInAttendee(registrationID, staffUserID int64) (bool, error) {
	checked, err := s.eventRepo.CheckInRegistration(registrationID, staffUserID, s.now())
	if err != nil {
		return false, err
	}
	if checked {
		return true, nil
	}

	reg, err := s.eventRepo.GetRegistrationByID(registrationID)
	if err != nil {
		return false, err
	}
	if reg == nil {
		return false, ErrRegistrationNotFound
	}

	// Already checked in
	return false, nil
}

// GetEvent retrieves an event by ID
func (s *EventService) GetEvent(eventID int64) (*models.Event, error) {
	event, err := s.eventRepo.GetEventByID(eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// GetEventBySlug retrieves an event by its slug
func (s *EventService) GetEventBySlug(slug string) (*models.Event, error) {
	event, err := s.eventRepo.GetEventBySlug(slug)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// ListUpcomingEvents retrieves events whose end time has not passed
func (s *EventService) ListUpcomingEvents() ([]models.Event, error) {
	return s.eventRepo.GetUpcomingEvents(s.now())
}

// ListAllEvents retrieves every event
func (s *EventService) ListAllEvents() ([]models.Event, error) {
	return s.eventRepo.GetAllEvents()
}

// GetEventTickets retrieves the ticket tiers for an event
func (s *EventService) GetEventTickets(eventID int64) ([]models.EventTicket, error) {
	return s.eventRepo.GetEventTickets(eventID)
}

// GetRegistration retrieves a user's registration for an event, nil if none
func (s *EventService) GetRegistration(eventID, userID int64) (*models.EventRegistration, error) {
	return s.eventRepo.GetRegistration(eventID, userID)
}

// CountRegistrations returns the registration count for an event
func (s *EventService) CountRegistrations(eventID int64) (int, error) {
	return s.eventRepo.CountRegistrations(eventID)
}

// GetAttendees retrieves registrations with user details for the admin list
func (s *EventService) GetAttendees(eventID int64) ([]repository.AttendeeRow, error) {
	return s.eventRepo.GetEventAttendees(eventID)
}

// ensureUniqueSlug appends -2, -3, ... until the slug is free
func (s *EventService) ensureUniqueSlug(base string) (string, error) {
	if base == "" {
		base = "event"
	}

	slug := base
	for i := 2; ; i++ {
		exists, err := s.eventRepo.SlugExists(slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

var slugStripRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a title into a URL-safe slug
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStripRegexp.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
