package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"communityhub/internal/database"
	"communityhub/internal/models"
)

// Errors returned by the transactional registration insert. The checks
// run inside the same transaction as the insert so concurrent requests
// cannot race past the capacity or duplicate checks.
var (
	ErrDuplicateRegistration = errors.New("registration already exists")
	ErrCapacityReached       = errors.New("event capacity reached")
	ErrCouponExhausted       = errors.New("coupon usage limit reached")
)

// EventRepository handles database operations for events, tickets,
// coupons and registrations
type EventRepository struct {
	db *database.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `
	id, title, slug, COALESCE(description, ''), starts_at, ends_at,
	registration_deadline, max_capacity, price, sponsorable, created_by,
	created_at, updated_at
`

func scanEvent(row interface{ Scan(...interface{}) error }) (*models.Event, error) {
	event := &models.Event{}
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Slug,
		&event.Description,
		&event.StartsAt,
		&event.EndsAt,
		&event.RegistrationDeadline,
		&event.MaxCapacity,
		&event.Price,
		&event.Sponsorable,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// CreateEvent inserts a new event row. Slug uniqueness is the caller's
// responsibility (see EventService.ensureUniqueSlug).
func (r *EventRepository) CreateEvent(e *models.Event) (*models.Event, error) {
	id, err := r.db.ExecReturningID(`
		INSERT INTO events
			(title, slug, description, starts_at, ends_at, registration_deadline,
			 max_capacity, price, sponsorable, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Title, e.Slug, e.Description, e.StartsAt, e.EndsAt, e.RegistrationDeadline,
		e.MaxCapacity, e.Price, e.Sponsorable, e.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	e.ID = id
	return e, nil
}

// SlugExists reports whether an event already uses the given slug
func (r *EventRepository) SlugExists(slug string) (bool, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM events WHERE slug = ?", slug).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return count > 0, nil
}

// GetEventByID retrieves an event by ID
func (r *EventRepository) GetEventByID(id int64) (*models.Event, error) {
	event, err := scanEvent(r.db.QueryRow(`
		SELECT `+eventColumns+` FROM events WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// GetEventBySlug retrieves an event by its slug
func (r *EventRepository) GetEventBySlug(slug string) (*models.Event, error) {
	event, err := scanEvent(r.db.QueryRow(`
		SELECT `+eventColumns+` FROM events WHERE slug = ?
	`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// GetAllEvents retrieves all events, soonest first
func (r *EventRepository) GetAllEvents() ([]models.Event, error) {
	return r.queryEvents(`SELECT ` + eventColumns + ` FROM events ORDER BY starts_at`)
}

// GetUpcomingEvents retrieves events that have not ended yet
func (r *EventRepository) GetUpcomingEvents(now time.Time) ([]models.Event, error) {
	return r.queryEvents(`
		SELECT `+eventColumns+`
		FROM events
		WHERE ends_at >= ?
		ORDER BY starts_at
	`, now)
}

func (r *EventRepository) queryEvents(query string, args ...interface{}) ([]models.Event, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

// UpdateEvent updates an event's editable fields
func (r *EventRepository) UpdateEvent(e *models.Event) error {
	_, err := r.db.Exec(`
		UPDATE events
		SET title = ?, description = ?, starts_at = ?, ends_at = ?,
			registration_deadline = ?, max_capacity = ?, price = ?,
			sponsorable = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, e.Title, e.Description, e.StartsAt, e.EndsAt,
		e.RegistrationDeadline, e.MaxCapacity, e.Price, e.Sponsorable, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event and cascades to tickets, coupons and registrations
func (r *EventRepository) DeleteEvent(id int64) error {
	if _, err := r.db.Exec("DELETE FROM events WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// CountEvents returns the total number of events
func (r *EventRepository) CountEvents() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// CreateTicket inserts a ticket tier for an event
func (r *EventRepository) CreateTicket(t *models.EventTicket) (*models.EventTicket, error) {
	id, err := r.db.ExecReturningID(`
		INSERT INTO event_tickets (event_id, name, price, quantity)
		VALUES (?, ?, ?, ?)
	`, t.EventID, t.Name, t.Price, t.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	t.ID = id
	return t, nil
}

// GetTicketByID retrieves a ticket tier
func (r *EventRepository) GetTicketByID(id int64) (*models.EventTicket, error) {
	ticket := &models.EventTicket{}
	err := r.db.QueryRow(`
		SELECT id, event_id, name, price, quantity
		FROM event_tickets
		WHERE id = ?
	`, id).Scan(&ticket.ID, &ticket.EventID, &ticket.Name, &ticket.Price, &ticket.Quantity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

// GetEventTickets retrieves all ticket tiers for an event
func (r *EventRepository) GetEventTickets(eventID int64) ([]models.EventTicket, error) {
	rows, err := r.db.Query(`
		SELECT id, event_id, name, price, quantity
		FROM event_tickets
		WHERE event_id = ?
		ORDER BY price
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []models.EventTicket
	for rows.Next() {
		var t models.EventTicket
		if err := rows.Scan(&t.ID, &t.EventID, &t.Name, &t.Price, &t.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// DeleteTicket removes a ticket tier
func (r *EventRepository) DeleteTicket(id int64) error {
	if _, err := r.db.Exec("DELETE FROM event_tickets WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	return nil
}

const couponColumns = `
	id, event_id, code, discount_amount, usage_limit, one_per_user,
	active, starts_at, expires_at, used_count, created_at
`

// CreateCoupon inserts a coupon for an event
func (r *EventRepository) CreateCoupon(c *models.Coupon) (*models.Coupon, error) {
	id, err := r.db.ExecReturningID(`
		INSERT INTO coupons
			(event_id, code, discount_amount, usage_limit, one_per_user,
			 active, starts_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.EventID, c.Code, c.DiscountAmount, c.UsageLimit, c.OnePerUser,
		c.Active, c.StartsAt, c.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	c.ID = id
	return c, nil
}

// GetCouponByCode retrieves an event's coupon by its code
func (r *EventRepository) GetCouponByCode(eventID int64, code string) (*models.Coupon, error) {
	coupon := &models.Coupon{}
	err := r.db.QueryRow(`
		SELECT `+couponColumns+`
		FROM coupons
		WHERE event_id = ? AND code = ?
	`, eventID, code).Scan(
		&coupon.ID,
		&coupon.EventID,
		&coupon.Code,
		&coupon.DiscountAmount,
		&coupon.UsageLimit,
		&coupon.OnePerUser,
		&coupon.Active,
		&coupon.StartsAt,
		&coupon.ExpiresAt,
		&coupon.UsedCount,
		&coupon.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return coupon, nil
}

// HasUserUsedCoupon reports whether a user already redeemed a coupon
func (r *EventRepository) HasUserUsedCoupon(couponID, userID int64) (bool, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM event_registrations
		WHERE coupon_id = ? AND user_id = ?
	`, couponID, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check coupon usage: %w", err)
	}
	return count > 0, nil
}

// GetRegistration retrieves a user's registration for an event
func (r *EventRepository) GetRegistration(eventID, userID int64) (*models.EventRegistration, error) {
	reg, err := scanRegistration(r.db.QueryRow(`
		SELECT `+registrationColumns+`
		FROM event_registrations
		WHERE event_id = ? AND user_id = ?
	`, eventID, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return reg, nil
}

// GetRegistrationByID retrieves a registration by its ID
func (r *EventRepository) GetRegistrationByID(id int64) (*models.EventRegistration, error) {
	reg, err := scanRegistration(r.db.QueryRow(`
		SELECT `+registrationColumns+`
		FROM event_registrations
		WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return reg, nil
}

const registrationColumns = `
	id, event_id, user_id, ticket_id, coupon_id, total_amount,
	discount_amount, final_amount, checked_in, checkin_time,
	checked_in_by, created_at
`

func scanRegistration(row interface{ Scan(...interface{}) error }) (*models.EventRegistration, error) {
	reg := &models.EventRegistration{}
	err := row.Scan(
		&reg.ID,
		&reg.EventID,
		&reg.UserID,
		&reg.TicketID,
		&reg.CouponID,
		&reg.TotalAmount,
		&reg.DiscountAmount,
		&reg.FinalAmount,
		&reg.CheckedIn,
		&reg.CheckinTime,
		&reg.CheckedInBy,
		&reg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// CountRegistrations returns the number of registrations for an event
func (r *EventRepository) CountRegistrations(eventID int64) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM event_registrations WHERE event_id = ?", eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

// CountAllRegistrations returns the total registration count across events
func (r *EventRepository) CountAllRegistrations() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM event_registrations").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

// CreateRegistration inserts a registration inside one transaction.
// The duplicate and capacity checks re-run against the same transaction
// as the insert, and the coupon usage counter is incremented with a
// guarded UPDATE, so two concurrent requests cannot both pass.
func (r *EventRepository) CreateRegistration(reg *models.EventRegistration, maxCapacity int) (*models.EventRegistration, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM event_registrations
		WHERE event_id = ? AND user_id = ?
	`, reg.EventID, reg.UserID).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing registration: %w", err)
	}
	if existing > 0 {
		return nil, ErrDuplicateRegistration
	}

	var count int
	err = tx.QueryRow(
		"SELECT COUNT(*) FROM event_registrations WHERE event_id = ?", reg.EventID).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}
	if maxCapacity > 0 && count >= maxCapacity {
		return nil, ErrCapacityReached
	}

	if reg.CouponID != nil {
		result, err := tx.Exec(`
			UPDATE coupons
			SET used_count = used_count + 1
			WHERE id = ? AND (usage_limit = 0 OR used_count < usage_limit)
		`, *reg.CouponID)
		if err != nil {
			return nil, fmt.Errorf("failed to increment coupon usage: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to read coupon update result: %w", err)
		}
		if rows == 0 {
			return nil, ErrCouponExhausted
		}
	}

	id, err := tx.ExecReturningID(`
		INSERT INTO event_registrations
			(event_id, user_id, ticket_id, coupon_id, total_amount,
			 discount_amount, final_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, reg.EventID, reg.UserID, reg.TicketID, reg.CouponID,
		reg.TotalAmount, reg.DiscountAmount, reg.FinalAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	reg.ID = id
	return reg, nil
}

// CheckInRegistration marks a registration as checked in. Returns false
// without error when the registration was already checked in.
func (r *EventRepository) CheckInRegistration(registrationID, staffUserID int64, at time.Time) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE event_registrations
		SET checked_in = ?, checkin_time = ?, checked_in_by = ?
		WHERE id = ? AND checked_in = ?
	`, true, at, staffUserID, registrationID, false)
	if err != nil {
		return false, fmt.Errorf("failed to check in registration: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read check-in result: %w", err)
	}
	return rows > 0, nil
}

// AttendeeRow is a registration joined with the attendee's name and email
type AttendeeRow struct {
	Registration models.EventRegistration
	Name         string
	Email        string
}

// GetEventAttendees retrieves all registrations for an event with user details
func (r *EventRepository) GetEventAttendees(eventID int64) ([]AttendeeRow, error) {
	rows, err := r.db.Query(`
		SELECT er.id, er.event_id, er.user_id, er.ticket_id, er.coupon_id,
			er.total_amount, er.discount_amount, er.final_amount,
			er.checked_in, er.checkin_time, er.checked_in_by, er.created_at,
			u.name, u.email
		FROM event_registrations er
		INNER JOIN users u ON u.id = er.user_id
		WHERE er.event_id = ?
		ORDER BY er.created_at
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendees: %w", err)
	}
	defer rows.Close()

	var attendees []AttendeeRow
	for rows.Next() {
		var a AttendeeRow
		if err := rows.Scan(
			&a.Registration.ID,
			&a.Registration.EventID,
			&a.Registration.UserID,
			&a.Registration.TicketID,
			&a.Registration.CouponID,
			&a.Registration.TotalAmount,
			&a.Registration.DiscountAmount,
			&a.Registration.FinalAmount,
			&a.Registration.CheckedIn,
			&a.Registration.CheckinTime,
			&a.Registration.CheckedInBy,
			&a.Registration.CreatedAt,
			&a.Name,
			&a.Email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendee: %w", err)
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

// UserEventRow is a registration joined with its event, for dashboards
type UserEventRow struct {
	Registration models.EventRegistration
	Event        models.Event
}

// GetUserRegistrations retrieves a user's registrations with their events
func (r *EventRepository) GetUserRegistrations(userID int64) ([]UserEventRow, error) {
	rows, err := r.db.Query(`
		SELECT er.id, er.event_id, er.user_id, er.ticket_id, er.coupon_id,
			er.total_amount, er.discount_amount, er.final_amount,
			er.checked_in, er.checkin_time, er.checked_in_by, er.created_at,
			e.id, e.title, e.slug, COALESCE(e.description, ''), e.starts_at, e.ends_at,
			e.registration_deadline, e.max_capacity, e.price, e.sponsorable,
			e.created_by, e.created_at, e.updated_at
		FROM event_registrations er
		INNER JOIN events e ON e.id = er.event_id
		WHERE er.user_id = ?
		ORDER BY e.starts_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user registrations: %w", err)
	}
	defer rows.Close()

	var results []UserEventRow
	for rows.Next() {
		var row UserEventRow
		if err := rows.Scan(
			&row.Registration.ID,
			&row.Registration.EventID,
			&row.Registration.UserID,
			&row.Registration.TicketID,
			&row.Registration.CouponID,
			&row.Registration.TotalAmount,
			&row.Registration.DiscountAmount,
			&row.Registration.FinalAmount,
			&row.Registration.CheckedIn,
			&row.Registration.CheckinTime,
			&row.Registration.CheckedInBy,
			&row.Registration.CreatedAt,
			&row.Event.ID,
			&row.Event.Title,
			&row.Event.Slug,
			&row.Event.Description,
			&row.Event.StartsAt,
			&row.Event.EndsAt,
			&row.Event.RegistrationDeadline,
			&row.Event.MaxCapacity,
			&row.Event.Price,
			&row.Event.Sponsorable,
			&row.Event.CreatedBy,
			&row.Event.CreatedAt,
			&row.Event.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user registration: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
