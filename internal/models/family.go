package models

import "time"

// RelationshipSelf marks the family member row that mirrors the owning
// user's own details. Exactly one such row exists per user.
const RelationshipSelf = "self"

// Family groups member rows for one household
type Family struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FamilyMember is a directory record: either the owning user
// (relationship = "self") or a relative.
type FamilyMember struct {
	ID           int64
	FamilyID     int64
	UserID       *int64 // set only for the "self" row
	FirstName    string
	LastName     string
	Email        string
	Relationship string
	BirthYear    int
	Phone        string
	Village      string
	Occupation   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns the member's display name
func (m *FamilyMember) FullName() string {
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// IsSelf reports whether this row mirrors the owning user
func (m *FamilyMember) IsSelf() bool {
	return m.Relationship == RelationshipSelf
}
