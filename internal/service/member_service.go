package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"communityhub/internal/models"
	"communityhub/internal/repository"
	"communityhub/internal/validation"
)

var (
	ErrMemberNotFound = errors.New("family member not found")
	ErrNotFamilyOwner = errors.New("member does not belong to your family")
	ErrSelfImmutable  = errors.New("the self record cannot be removed")
)

// Dashboard is the assembled view data for a member's dashboard. Family
// holds only relatives: the "self" row is returned separately because it
// renders as the logged-in user's own profile row.
type Dashboard struct {
	Self            *models.FamilyMember
	Family          []models.FamilyMember
	Registrations   []repository.UserEventRow
	UpcomingEvents  []models.Event
	RecentDonations []models.Donation
}

// MemberService manages family directory records and dashboard assembly
type MemberService struct {
	userRepo     *repository.UserRepository
	familyRepo   *repository.FamilyRepository
	eventRepo    *repository.EventRepository
	donationRepo *repository.DonationRepository
}

// NewMemberService creates a new member service
func NewMemberService(
	userRepo *repository.UserRepository,
	familyRepo *repository.FamilyRepository,
	eventRepo *repository.EventRepository,
	donationRepo *repository.DonationRepository,
) *MemberService {
	return &MemberService{
		userRepo:     userRepo,
		familyRepo:   familyRepo,
		eventRepo:    eventRepo,
		donationRepo: donationRepo,
	}
}

// GetDashboard assembles the member dashboard. The "self" family member
// is excluded from the family list and returned on its own.
func (s *MemberService) GetDashboard(user *models.User) (*Dashboard, error) {
	dashboard := &Dashboard{}

	family, err := s.familyRepo.GetFamilyForUser(user.ID)
	if err != nil {
		return nil, err
	}

	if family != nil {
		members, err := s.familyRepo.GetFamilyMembers(family.ID)
		if err != nil {
			return nil, err
		}
		for i := range members {
			if members[i].IsSelf() && members[i].UserID != nil && *members[i].UserID == user.ID {
				self := members[i]
				dashboard.Self = &self
				continue
			}
			dashboard.Family = append(dashboard.Family, members[i])
		}
	}

	registrations, err := s.eventRepo.GetUserRegistrations(user.ID)
	if err != nil {
		return nil, err
	}
	dashboard.Registrations = registrations

	donations, err := s.donationRepo.GetUserDonations(user.ID)
	if err != nil {
		return nil, err
	}
	dashboard.RecentDonations = donations

	upcoming, err := s.eventRepo.GetUpcomingEvents(time.Now())
	if err != nil {
		return nil, err
	}
	dashboard.UpcomingEvents = upcoming

	return dashboard, nil
}

// GetFamily returns the user's family and all of its member rows
func (s *MemberService) GetFamily(userID int64) (*models.Family, []models.FamilyMember, error) {
	family, err := s.familyRepo.GetFamilyForUser(userID)
	if err != nil {
		return nil, nil, err
	}
	if family == nil {
		return nil, nil, nil
	}

	members, err := s.familyRepo.GetFamilyMembers(family.ID)
	if err != nil {
		return nil, nil, err
	}
	return family, members, nil
}

// GetSelf retrieves the user's own directory row
func (s *MemberService) GetSelf(userID int64) (*models.FamilyMember, error) {
	return s.familyRepo.GetSelfMember(userID)
}

// AddFamilyMember adds a relative to the user's family
func (s *MemberService) AddFamilyMember(userID int64, m *models.FamilyMember) (*models.FamilyMember, error) {
	if err := validateMember(m); err != nil {
		return nil, err
	}
	if m.Relationship == models.RelationshipSelf {
		return nil, validation.ValidationError{Field: "relationship", Message: "self record is created at registration"}
	}

	family, err := s.familyRepo.GetFamilyForUser(userID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, fmt.Errorf("no family found for user %d", userID)
	}

	m.FamilyID = family.ID
	m.UserID = nil
	return s.familyRepo.CreateFamilyMember(m)
}

// UpdateFamilyMember updates one of the user's family records. Users may
// edit their own "self" row; its relationship stays fixed.
func (s *MemberService) UpdateFamilyMember(userID int64, m *models.FamilyMember) error {
	existing, err := s.ownedMember(userID, m.ID)
	if err != nil {
		return err
	}

	if existing.IsSelf() {
		m.Relationship = models.RelationshipSelf
	}
	if err := validateMember(m); err != nil {
		return err
	}

	m.FamilyID = existing.FamilyID
	m.UserID = existing.UserID
	return s.familyRepo.UpdateFamilyMember(m)
}

// RemoveFamilyMember deletes a relative. The "self" row is immutable.
func (s *MemberService) RemoveFamilyMember(userID, memberID int64) error {
	existing, err := s.ownedMember(userID, memberID)
	if err != nil {
		return err
	}
	if existing.IsSelf() {
		return ErrSelfImmutable
	}
	return s.familyRepo.DeleteFamilyMember(memberID)
}

// GetFamilyMember fetches a single record, enforcing family ownership
func (s *MemberService) GetFamilyMember(userID, memberID int64) (*models.FamilyMember, error) {
	return s.ownedMember(userID, memberID)
}

// UpdateProfile updates the user row and keeps the "self" directory row
// mirroring the new name and email.
func (s *MemberService) UpdateProfile(userID int64, email, name string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)

	if err := validation.ValidateEmail(email); err != nil {
		return err
	}
	if err := validation.ValidateName(name); err != nil {
		return err
	}

	other, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if other != nil && other.ID != userID {
		return ErrEmailTaken
	}

	if err := s.userRepo.UpdateUser(userID, email, name); err != nil {
		return err
	}

	self, err := s.familyRepo.GetSelfMember(userID)
	if err != nil {
		return err
	}
	if self != nil {
		self.FirstName, self.LastName = splitDisplayName(name)
		self.Email = email
		if err := s.familyRepo.UpdateFamilyMember(self); err != nil {
			return err
		}
	}

	return nil
}

// ownedMember loads a member row and verifies it belongs to the user's family
func (s *MemberService) ownedMember(userID, memberID int64) (*models.FamilyMember, error) {
	member, err := s.familyRepo.GetFamilyMemberByID(memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}

	family, err := s.familyRepo.GetFamilyForUser(userID)
	if err != nil {
		return nil, err
	}
	if family == nil || member.FamilyID != family.ID {
		return nil, ErrNotFamilyOwner
	}

	return member, nil
}

func validateMember(m *models.FamilyMember) error {
	if err := validation.ValidateName(m.FirstName); err != nil {
		return err
	}
	if err := validation.ValidateRelationship(m.Relationship); err != nil {
		return err
	}
	if err := validation.ValidateBirthYear(m.BirthYear); err != nil {
		return err
	}
	if err := validation.ValidatePhone(m.Phone); err != nil {
		return err
	}
	if m.Email != "" {
		if err := validation.ValidateEmail(m.Email); err != nil {
			return err
		}
	}
	return nil
}

func splitDisplayName(name string) (string, string) {
	for i := len(name) - 1; i > 0; i-- {
		if name[i] == ' ' {
			return name[:i], name[i+1:]
		}
	}
	return name, ""
}
