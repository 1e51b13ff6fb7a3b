package repository

import (
	"fmt"

	"communityhub/internal/database"
	"communityhub/internal/models"
)

// DonationRepository handles database operations for donations
type DonationRepository struct {
	db *database.DB
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *database.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// CreateDonation inserts a donation. Donations are append-only; the only
// later mutation allowed is an admin delete.
func (r *DonationRepository) CreateDonation(d *models.Donation) (*models.Donation, error) {
	id, err := r.db.ExecReturningID(`
		INSERT INTO donations (user_id, donor_name, amount, message)
		VALUES (?, ?, ?, ?)
	`, d.UserID, d.DonorName, d.Amount, d.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}
	d.ID = id
	return d, nil
}

// GetAllDonations retrieves all donations, newest first
func (r *DonationRepository) GetAllDonations() ([]models.Donation, error) {
	return r.queryDonations(`
		SELECT id, user_id, COALESCE(donor_name, ''), amount, COALESCE(message, ''), created_at
		FROM donations
		ORDER BY created_at DESC
	`)
}

// GetRecentDonations retrieves the most recent donations
func (r *DonationRepository) GetRecentDonations(limit int) ([]models.Donation, error) {
	return r.queryDonations(`
		SELECT id, user_id, COALESCE(donor_name, ''), amount, COALESCE(message, ''), created_at
		FROM donations
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
}

// GetUserDonations retrieves all donations made by a user
func (r *DonationRepository) GetUserDonations(userID int64) ([]models.Donation, error) {
	return r.queryDonations(`
		SELECT id, user_id, COALESCE(donor_name, ''), amount, COALESCE(message, ''), created_at
		FROM donations
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
}

func (r *DonationRepository) queryDonations(query string, args ...interface{}) ([]models.Donation, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query donations: %w", err)
	}
	defer rows.Close()

	var donations []models.Donation
	for rows.Next() {
		var d models.Donation
		if err := rows.Scan(&d.ID, &d.UserID, &d.DonorName, &d.Amount, &d.Message, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		donations = append(donations, d)
	}
	return donations, rows.Err()
}

// DeleteDonation removes a donation record
func (r *DonationRepository) DeleteDonation(id int64) error {
	if _, err := r.db.Exec("DELETE FROM donations WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete donation: %w", err)
	}
	return nil
}

// TotalRaised returns the sum of all donation amounts
func (r *DonationRepository) TotalRaised() (float64, error) {
	var total float64
	err := r.db.QueryRow("SELECT COALESCE(SUM(amount), 0) FROM donations").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum donations: %w", err)
	}
	return total, nil
}

// CountDonations returns the total number of donation rows
func (r *DonationRepository) CountDonations() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM donations").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count donations: %w", err)
	}
	return count, nil
}
