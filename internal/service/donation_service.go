package service

import (
	"strings"

	"communityhub/internal/models"
	"communityhub/internal/repository"
	"communityhub/internal/validation"
)

// DonationService handles donation business rules
type DonationService struct {
	donationRepo *repository.DonationRepository
}

// NewDonationService creates a new donation service
func NewDonationService(donationRepo *repository.DonationRepository) *DonationService {
	return &DonationService{donationRepo: donationRepo}
}

// Donate records a contribution. userID is nil for anonymous donations;
// when the donor is logged in their display name defaults to the account
// name unless they provide one.
func (s *DonationService) Donate(userID *int64, donorName string, amount float64, message string) (*models.Donation, error) {
	if err := validation.ValidateAmount(amount); err != nil {
		return nil, err
	}

	donation := &models.Donation{
		UserID:    userID,
		DonorName: strings.TrimSpace(donorName),
		Amount:    amount,
		Message:   strings.TrimSpace(message),
	}

	return s.donationRepo.CreateDonation(donation)
}

// RecentDonations returns the latest donations for public display
func (s *DonationService) RecentDonations(limit int) ([]models.Donation, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.donationRepo.GetRecentDonations(limit)
}

// AllDonations returns every donation, newest first
func (s *DonationService) AllDonations() ([]models.Donation, error) {
	return s.donationRepo.GetAllDonations()
}

// TotalRaised returns the sum of all donations
func (s *DonationService) TotalRaised() (float64, error) {
	return s.donationRepo.TotalRaised()
}

// CountDonations returns the total number of donation records
func (s *DonationService) CountDonations() (int, error) {
	return s.donationRepo.CountDonations()
}

// Delete removes a donation record (admin only)
func (s *DonationService) Delete(id int64) error {
	return s.donationRepo.DeleteDonation(id)
}
