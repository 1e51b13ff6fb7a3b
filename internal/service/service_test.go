package service

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"communityhub/internal/database"
	"communityhub/internal/models"
	"communityhub/internal/repository"
)

// testEnv wires the repositories over a throwaway SQLite database with
// the real migrations applied, so service tests exercise the same SQL
// paths as production.
type testEnv struct {
	db           *database.DB
	userRepo     *repository.UserRepository
	familyRepo   *repository.FamilyRepository
	eventRepo    *repository.EventRepository
	donationRepo *repository.DonationRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "service_test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return &testEnv{
		db:           db,
		userRepo:     repository.NewUserRepository(db),
		familyRepo:   repository.NewFamilyRepository(db),
		eventRepo:    repository.NewEventRepository(db),
		donationRepo: repository.NewDonationRepository(db),
	}
}

func (e *testEnv) authService() *AuthService {
	return NewAuthService(e.userRepo, time.Hour)
}

func (e *testEnv) memberService() *MemberService {
	return NewMemberService(e.userRepo, e.familyRepo, e.eventRepo, e.donationRepo)
}

// registerUser creates a full member account (user + family + self row)
func (e *testEnv) registerUser(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := e.authService().Register(email, "correct-horse-battery", "Jordan Reyes")
	if err != nil {
		t.Fatalf("Failed to register user %s: %v", email, err)
	}
	return user
}

// createEvent inserts an event directly through the repository
func (e *testEnv) createEvent(t *testing.T, ev *models.Event) *models.Event {
	t.Helper()
	if ev.Slug == "" {
		ev.Slug = Slugify(ev.Title)
	}
	created, err := e.eventRepo.CreateEvent(ev)
	if err != nil {
		t.Fatalf("Failed to create event %q: %v", ev.Title, err)
	}
	return created
}

// uniqueEmail avoids collisions when a test registers several accounts
func uniqueEmail(n int) string {
	return fmt.Sprintf("member%d@example.com", n)
}
