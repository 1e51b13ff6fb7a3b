package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"communityhub/internal/database"
	"communityhub/internal/models"
	"communityhub/internal/repository"
)

// BackupData is the complete JSON export structure
type BackupData struct {
	Version      string            `json:"version"`
	ExportedAt   time.Time         `json:"exported_at"`
	DatabaseType string            `json:"database_type"`
	Users        []UserBackup      `json:"users"`
	Families     []FamilyBackup    `json:"families"`
	Events       []EventBackup     `json:"events"`
	Donations    []models.Donation `json:"donations"`
}

// UserBackup is a user row with the role stored by name so imports work
// across databases with different role IDs.
type UserBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	OAuthProvider string    `json:"oauth_provider,omitempty"`
	OAuthSubject  string    `json:"oauth_subject,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// FamilyBackup is a family with its member rows
type FamilyBackup struct {
	Family  models.Family         `json:"family"`
	Members []models.FamilyMember `json:"members"`
}

// EventBackup is an event with its tickets, coupons and registrations
type EventBackup struct {
	Event         models.Event               `json:"event"`
	Tickets       []models.EventTicket       `json:"tickets"`
	Coupons       []models.Coupon            `json:"coupons"`
	Registrations []models.EventRegistration `json:"registrations"`
}

// BackupService exports and restores the database contents as JSON
type BackupService struct {
	db           *database.DB
	userRepo     *repository.UserRepository
	familyRepo   *repository.FamilyRepository
	eventRepo    *repository.EventRepository
	donationRepo *repository.DonationRepository
}

// NewBackupService creates a new backup service
func NewBackupService(
	db *database.DB,
	userRepo *repository.UserRepository,
	familyRepo *repository.FamilyRepository,
	eventRepo *repository.EventRepository,
	donationRepo *repository.DonationRepository,
) *BackupService {
	return &BackupService{
		db:           db,
		userRepo:     userRepo,
		familyRepo:   familyRepo,
		eventRepo:    eventRepo,
		donationRepo: donationRepo,
	}
}

// Export writes a JSON snapshot of all application data
func (s *BackupService) Export(w io.Writer) error {
	backup := BackupData{
		Version:      "1",
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	users, err := s.userRepo.GetAllUsers()
	if err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup{
			ID:            u.ID,
			Email:         u.Email,
			PasswordHash:  u.PasswordHash,
			Name:          u.Name,
			Role:          u.RoleName,
			OAuthProvider: u.OAuthProvider,
			OAuthSubject:  u.OAuthSubject,
			CreatedAt:     u.CreatedAt,
		})

		family, err := s.familyRepo.GetFamilyForUser(u.ID)
		if err != nil {
			return fmt.Errorf("failed to export family for user %d: %w", u.ID, err)
		}
		if family != nil {
			members, err := s.familyRepo.GetFamilyMembers(family.ID)
			if err != nil {
				return fmt.Errorf("failed to export family members: %w", err)
			}
			backup.Families = append(backup.Families, FamilyBackup{
				Family:  *family,
				Members: members,
			})
		}
	}

	events, err := s.eventRepo.GetAllEvents()
	if err != nil {
		return fmt.Errorf("failed to export events: %w", err)
	}
	for _, e := range events {
		tickets, err := s.eventRepo.GetEventTickets(e.ID)
		if err != nil {
			return fmt.Errorf("failed to export tickets: %w", err)
		}

		coupons, err := s.exportCoupons(e.ID)
		if err != nil {
			return fmt.Errorf("failed to export coupons: %w", err)
		}

		attendees, err := s.eventRepo.GetEventAttendees(e.ID)
		if err != nil {
			return fmt.Errorf("failed to export registrations: %w", err)
		}
		var registrations []models.EventRegistration
		for _, a := range attendees {
			registrations = append(registrations, a.Registration)
		}

		backup.Events = append(backup.Events, EventBackup{
			Event:         e,
			Tickets:       tickets,
			Coupons:       coupons,
			Registrations: registrations,
		})
	}

	donations, err := s.donationRepo.GetAllDonations()
	if err != nil {
		return fmt.Errorf("failed to export donations: %w", err)
	}
	backup.Donations = donations

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

func (s *BackupService) exportCoupons(eventID int64) ([]models.Coupon, error) {
	rows, err := s.db.Query(`
		SELECT id, event_id, code, discount_amount, usage_limit, one_per_user,
			active, starts_at, expires_at, used_count, created_at
		FROM coupons WHERE event_id = ? ORDER BY id
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []models.Coupon
	for rows.Next() {
		var c models.Coupon
		if err := rows.Scan(&c.ID, &c.EventID, &c.Code, &c.DiscountAmount,
			&c.UsageLimit, &c.OnePerUser, &c.Active, &c.StartsAt, &c.ExpiresAt,
			&c.UsedCount, &c.CreatedAt); err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

// Import restores application data from a JSON snapshot. Rows are
// inserted with their original IDs, in dependency order, so the target
// database should be empty (or cleared first).
func (s *BackupService) Import(r io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	log.Printf("Backup version %s, exported at %s", backup.Version, backup.ExportedAt)

	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importFamilies(backup.Families); err != nil {
		return fmt.Errorf("failed to import families: %w", err)
	}
	if err := s.importEvents(backup.Events); err != nil {
		return fmt.Errorf("failed to import events: %w", err)
	}
	if err := s.importDonations(backup.Donations); err != nil {
		return fmt.Errorf("failed to import donations: %w", err)
	}

	return nil
}

// Clear removes all application data, in reverse dependency order.
// Role seed rows are kept.
func (s *BackupService) Clear() error {
	tables := []string{
		"donations", "event_registrations", "coupons", "event_tickets",
		"events", "password_resets", "sessions", "family_members",
		"families", "users",
	}
	for _, table := range tables {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func (s *BackupService) importUsers(users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))
	for _, u := range users {
		role, err := s.userRepo.GetRoleByName(u.Role)
		if err != nil {
			return err
		}
		if role == nil {
			return fmt.Errorf("unknown role %q for user %d", u.Role, u.ID)
		}

		_, err = s.db.Exec(`
			INSERT INTO users (id, email, password_hash, name, role_id,
				oauth_provider, oauth_subject, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, u.ID, u.Email, u.PasswordHash, u.Name, role.ID,
			nullIfEmpty(u.OAuthProvider), nullIfEmpty(u.OAuthSubject), u.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importFamilies(families []FamilyBackup) error {
	log.Printf("Importing %d families...", len(families))
	for _, f := range families {
		_, err := s.db.Exec(`
			INSERT INTO families (id, name, created_at) VALUES (?, ?, ?)
		`, f.Family.ID, f.Family.Name, f.Family.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import family %d: %w", f.Family.ID, err)
		}

		for _, m := range f.Members {
			_, err := s.db.Exec(`
				INSERT INTO family_members (id, family_id, user_id, first_name,
					last_name, email, relationship, birth_year, phone, village,
					occupation, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, m.ID, m.FamilyID, m.UserID, m.FirstName, m.LastName, m.Email,
				m.Relationship, m.BirthYear, m.Phone, m.Village, m.Occupation,
				m.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to import family member %d: %w", m.ID, err)
			}
		}
	}
	return nil
}

func (s *BackupService) importEvents(events []EventBackup) error {
	log.Printf("Importing %d events...", len(events))
	for _, e := range events {
		ev := e.Event
		_, err := s.db.Exec(`
			INSERT INTO events (id, title, slug, description, starts_at,
				ends_at, registration_deadline, max_capacity, price,
				sponsorable, created_by, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, ev.ID, ev.Title, ev.Slug, ev.Description, ev.StartsAt, ev.EndsAt,
			ev.RegistrationDeadline, ev.MaxCapacity, ev.Price, ev.Sponsorable,
			ev.CreatedBy, ev.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import event %d: %w", ev.ID, err)
		}

		for _, t := range e.Tickets {
			_, err := s.db.Exec(`
				INSERT INTO event_tickets (id, event_id, name, price, quantity)
				VALUES (?, ?, ?, ?, ?)
			`, t.ID, t.EventID, t.Name, t.Price, t.Quantity)
			if err != nil {
				return fmt.Errorf("failed to import ticket %d: %w", t.ID, err)
			}
		}

		for _, c := range e.Coupons {
			_, err := s.db.Exec(`
				INSERT INTO coupons (id, event_id, code, discount_amount,
					usage_limit, one_per_user, active, starts_at, expires_at,
					used_count, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, c.ID, c.EventID, c.Code, c.DiscountAmount, c.UsageLimit,
				c.OnePerUser, c.Active, c.StartsAt, c.ExpiresAt, c.UsedCount,
				c.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to import coupon %d: %w", c.ID, err)
			}
		}

		for _, reg := range e.Registrations {
			_, err := s.db.Exec(`
				INSERT INTO event_registrations (id, event_id, user_id,
					ticket_id, coupon_id, total_amount, discount_amount,
					final_amount, checked_in, checkin_time, checked_in_by,
					created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, reg.ID, reg.EventID, reg.UserID, reg.TicketID, reg.CouponID,
				reg.TotalAmount, reg.DiscountAmount, reg.FinalAmount,
				reg.CheckedIn, reg.CheckinTime, reg.CheckedInBy, reg.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to import registration %d: %w", reg.ID, err)
			}
		}
	}
	return nil
}

func (s *BackupService) importDonations(donations []models.Donation) error {
	log.Printf("Importing %d donations...", len(donations))
	for _, d := range donations {
		_, err := s.db.Exec(`
			INSERT INTO donations (id, user_id, donor_name, amount, message, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, d.ID, d.UserID, d.DonorName, d.Amount, d.Message, d.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import donation %d: %w", d.ID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
