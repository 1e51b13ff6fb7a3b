package repository

import (
	"database/sql"
	"fmt"

	"communityhub/internal/database"
	"communityhub/internal/models"
)

// FamilyRepository handles database operations for families and
// family member directory records
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

const memberColumns = `
	id, family_id, user_id, first_name, last_name, COALESCE(email, ''),
	relationship, COALESCE(birth_year, 0), COALESCE(phone, ''),
	COALESCE(village, ''), COALESCE(occupation, ''), created_at, updated_at
`

func scanMember(row interface{ Scan(...interface{}) error }) (*models.FamilyMember, error) {
	member := &models.FamilyMember{}
	err := row.Scan(
		&member.ID,
		&member.FamilyID,
		&member.UserID,
		&member.FirstName,
		&member.LastName,
		&member.Email,
		&member.Relationship,
		&member.BirthYear,
		&member.Phone,
		&member.Village,
		&member.Occupation,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return member, nil
}

// GetFamilyByID retrieves a family by ID
func (r *FamilyRepository) GetFamilyByID(familyID int64) (*models.Family, error) {
	family := &models.Family{}
	err := r.db.QueryRow(`
		SELECT id, name, created_at, updated_at
		FROM families
		WHERE id = ?
	`, familyID).Scan(
		&family.ID,
		&family.Name,
		&family.CreatedAt,
		&family.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return family, nil
}

// GetFamilyForUser retrieves the family owned by a user via their "self" row
func (r *FamilyRepository) GetFamilyForUser(userID int64) (*models.Family, error) {
	family := &models.Family{}
	err := r.db.QueryRow(`
		SELECT f.id, f.name, f.created_at, f.updated_at
		FROM families f
		INNER JOIN family_members fm ON fm.family_id = f.id
		WHERE fm.user_id = ? AND fm.relationship = ?
	`, userID, models.RelationshipSelf).Scan(
		&family.ID,
		&family.Name,
		&family.CreatedAt,
		&family.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family for user: %w", err)
	}
	return family, nil
}

// GetSelfMember retrieves the "self" directory row for a user
func (r *FamilyRepository) GetSelfMember(userID int64) (*models.FamilyMember, error) {
	member, err := scanMember(r.db.QueryRow(`
		SELECT `+memberColumns+`
		FROM family_members
		WHERE user_id = ? AND relationship = ?
	`, userID, models.RelationshipSelf))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get self member: %w", err)
	}
	return member, nil
}

// GetFamilyMembers retrieves all member rows for a family
func (r *FamilyRepository) GetFamilyMembers(familyID int64) ([]models.FamilyMember, error) {
	rows, err := r.db.Query(`
		SELECT `+memberColumns+`
		FROM family_members
		WHERE family_id = ?
		ORDER BY created_at
	`, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family members: %w", err)
	}
	defer rows.Close()

	var members []models.FamilyMember
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		members = append(members, *member)
	}
	return members, rows.Err()
}

// GetFamilyMemberByID retrieves a single member row
func (r *FamilyRepository) GetFamilyMemberByID(id int64) (*models.FamilyMember, error) {
	member, err := scanMember(r.db.QueryRow(`
		SELECT `+memberColumns+`
		FROM family_members
		WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family member: %w", err)
	}
	return member, nil
}

// CreateFamilyMember inserts a relative row into a family
func (r *FamilyRepository) CreateFamilyMember(m *models.FamilyMember) (*models.FamilyMember, error) {
	id, err := r.db.ExecReturningID(`
		INSERT INTO family_members
			(family_id, user_id, first_name, last_name, email, relationship,
			 birth_year, phone, village, occupation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.FamilyID, m.UserID, m.FirstName, m.LastName, m.Email, m.Relationship,
		nullableInt(m.BirthYear), m.Phone, m.Village, m.Occupation)
	if err != nil {
		return nil, fmt.Errorf("failed to create family member: %w", err)
	}
	m.ID = id
	return m, nil
}

// UpdateFamilyMember updates a member row's demographic fields
func (r *FamilyRepository) UpdateFamilyMember(m *models.FamilyMember) error {
	_, err := r.db.Exec(`
		UPDATE family_members
		SET first_name = ?, last_name = ?, email = ?, relationship = ?,
			birth_year = ?, phone = ?, village = ?, occupation = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, m.FirstName, m.LastName, m.Email, m.Relationship,
		nullableInt(m.BirthYear), m.Phone, m.Village, m.Occupation, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update family member: %w", err)
	}
	return nil
}

// DeleteFamilyMember removes a member row
func (r *FamilyRepository) DeleteFamilyMember(id int64) error {
	if _, err := r.db.Exec("DELETE FROM family_members WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete family member: %w", err)
	}
	return nil
}

// CountFamilyMembers returns the total directory row count
func (r *FamilyRepository) CountFamilyMembers() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM family_members").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count family members: %w", err)
	}
	return count, nil
}

// UpdateFamilyName renames a family
func (r *FamilyRepository) UpdateFamilyName(familyID int64, name string) error {
	_, err := r.db.Exec(`
		UPDATE families
		SET name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, name, familyID)
	if err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	return nil
}

func nullableInt(v int) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
