package service

import (
	"errors"
	"testing"

	"communityhub/internal/models"
)

func TestAddFamilyMember(t *testing.T) {
	env := newTestEnv(t)
	svc := env.memberService()
	user := env.registerUser(t, "jordan@example.com")

	member, err := svc.AddFamilyMember(user.ID, &models.FamilyMember{
		FirstName:    "Sam",
		LastName:     "Reyes",
		Relationship: "child",
		BirthYear:    2015,
	})
	if err != nil {
		t.Fatalf("AddFamilyMember failed: %v", err)
	}
	if member.ID == 0 {
		t.Error("Expected member ID to be set")
	}
	if member.UserID != nil {
		t.Error("Relatives must not carry a linked user ID")
	}

	_, members, err := svc.GetFamily(user.ID)
	if err != nil {
		t.Fatalf("GetFamily failed: %v", err)
	}
	// The self row plus the new relative
	if len(members) != 2 {
		t.Errorf("Expected 2 family members, got %d", len(members))
	}
}

func TestAddFamilyMemberRejectsSelf(t *testing.T) {
	env := newTestEnv(t)
	svc := env.memberService()
	user := env.registerUser(t, "jordan@example.com")

	_, err := svc.AddFamilyMember(user.ID, &models.FamilyMember{
		FirstName:    "Jordan",
		Relationship: models.RelationshipSelf,
	})
	if err == nil {
		t.Error("Expected error when adding a second self record")
	}
}

func TestAddFamilyMemberValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.memberService()
	user := env.registerUser(t, "jordan@example.com")

	tests := []struct {
		name   string
		member models.FamilyMember
	}{
		{"blank name", models.FamilyMember{FirstName: " ", Relationship: "child"}},
		{"bad relationship", models.FamilyMember{FirstName: "Sam", Relationship: "cousin"}},
		{"bad birth year", models.FamilyMember{FirstName: "Sam", Relationship: "child", BirthYear: 1800}},
		{"bad email", models.FamilyMember{FirstName: "Sam", Relationship: "child", Email: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.member
			if _, err := svc.AddFamilyMember(user.ID, &m); err == nil {
				t.Error("Expected a validation error")
			}
		})
	}
}

func TestUpdateFamilyMember(t *testing.T) {
	env := newTestEnv(t)
	svc := env.memberService()
	user := env.registerUser(t, "jordan@example.com")

	member, err := svc.AddFamilyMember(user.ID, &models.FamilyMember{
		FirstName:    "Sam",
		Relationship: "child",
	})
	if err != nil {
		t.Fatalf("AddFamilyMember failed: %v", err)
	}

	member.FirstName = "Samuel"
	member.Relationship = "sibling"
	if err := svc.UpdateFamilyMember(user.ID, member); err != nil {
		t.Fatalf("UpdateFamilyMember failed: %v", err)
	}

	updated, err := svc.GetFamilyMember(user.ID, member.ID)
	if err != nil {
		t.Fatalf("GetFamilyMember failed: %v", err)
	}
	if updated.FirstName != "Samuel" || updated.Relationship != "sibling" {
		t.Errorf("Update not persisted: %+v", updated)
	}
}

func TestUpdateSelfKeepsRelationship(t *testing.T) {
	env := newTestEnv(t)
	svc := env.memberService()
	user := env.registerUser(t, "jordan@example.com")

	self, err := svc.GetSelf(user.ID)
	if err != nil {
		t.Fatalf("GetSelf failed: %v", err)
	}

	self.Phone = "555-0100"
	self.Relationship = "sibling" // must be ignored for the self row
	if err := svc.UpdateFamilyMember(user.ID, self); err != nil {
		t.Fatalf("UpdateFamilyMember failed: %v", err)
	}

	updated, err := svc.GetSelf(user.ID)
	if err != nil {
		t.Fatalf("GetSelf failed: %v", err)
	}
	if !updated.IsSelf() {
		t.Errorf("Self row relationship changed to %q", updated.Relationship)
	}
	if updated.Phone != "555-0100" {
		t.Errorf("Expected phone updated, got %q", updated.Phone)
	}
}

func TestRemoveFamilyMember(t *testing.T) {
	env := newTestEnv(t)
	svc := env.memberService()
	user := env.registerUser(t, "jordan@example.com")

	member, err := svc.AddFamilyMember(user.ID, &models.FamilyMember{
		FirstName:    "Sam",
		Relationship: "child",
	})
	if err != nil {
		t.Fatalf("AddFamilyMember failed: %v", err)
	}

	if err := svc.RemoveFamilyMember(user.ID, member.ID); err != nil {
		t.Fatalf("RemoveFamilyMember failed: %v", err)
	}
	if _, err := svc.GetFamilyMember(user.ID, member.ID); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("Expected ErrMemberNotFound after removal, got %v", err)
	}
}

func TestRemoveSelfIsRejected(t *testing.T) {
	env := newTestEnv(t)
	svc := env.memberService()
	user := env.registerUser(t, "jordan@example.com")

	self, err := svc.GetSelf(user.ID)
	if err != nil {
		t.Fatalf("GetSelf failed: %v", err)
	}

	if err := svc.RemoveFamilyMember(user.ID, self.ID); !errors.Is(err, ErrSelfImmutable) {
		t.Errorf("Expected ErrSelfImmutable, got %v", err)
	}
}

func TestFamilyOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	svc := env.memberService()
	owner := env.registerUser(t, "jordan@example.com")
	stranger := env.registerUser(t, "casey@example.com")

	member, err := svc.AddFamilyMember(owner.ID, &models.FamilyMember{
		FirstName:    "Sam",
		Relationship: "child",
	})
	if err != nil {
		t.Fatalf("AddFamilyMember failed: %v", err)
	}

	if _, err := svc.GetFamilyMember(stranger.ID, member.ID); !errors.Is(err, ErrNotFamilyOwner) {
		t.Errorf("Expected ErrNotFamilyOwner on read, got %v", err)
	}
	if err := svc.RemoveFamilyMember(stranger.ID, member.ID); !errors.Is(err, ErrNotFamilyOwner) {
		t.Errorf("Expected ErrNotFamilyOwner on delete, got %v", err)
	}
}

func TestGetDashboardSeparatesSelf(t *testing.T) {
	env := newTestEnv(t)
	svc := env.memberService()
	user := env.registerUser(t, "jordan@example.com")

	if _, err := svc.AddFamilyMember(user.ID, &models.FamilyMember{
		FirstName:    "Sam",
		Relationship: "child",
	}); err != nil {
		t.Fatalf("AddFamilyMember failed: %v", err)
	}

	dashboard, err := svc.GetDashboard(user)
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	if dashboard.Self == nil || !dashboard.Self.IsSelf() {
		t.Fatalf("Expected the self row on its own, got %+v", dashboard.Self)
	}
	if len(dashboard.Family) != 1 {
		t.Fatalf("Expected 1 relative in the family list, got %d", len(dashboard.Family))
	}
	if dashboard.Family[0].IsSelf() {
		t.Error("The self row must not appear in the family list")
	}
}

func TestUpdateProfileMirrorsSelfRecord(t *testing.T) {
	env := newTestEnv(t)
	svc := env.memberService()
	user := env.registerUser(t, "jordan@example.com")

	if err := svc.UpdateProfile(user.ID, "new@example.com", "Jordan Q Reyes"); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	updated, err := env.userRepo.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if updated.Email != "new@example.com" || updated.Name != "Jordan Q Reyes" {
		t.Errorf("User row not updated: %+v", updated)
	}

	self, err := svc.GetSelf(user.ID)
	if err != nil {
		t.Fatalf("GetSelf failed: %v", err)
	}
	if self.Email != "new@example.com" || self.FullName() != "Jordan Q Reyes" {
		t.Errorf("Self row does not mirror the profile: %+v", self)
	}
}

func TestUpdateProfileEmailTaken(t *testing.T) {
	env := newTestEnv(t)
	svc := env.memberService()
	env.registerUser(t, "jordan@example.com")
	other := env.registerUser(t, "casey@example.com")

	if err := svc.UpdateProfile(other.ID, "jordan@example.com", "Casey Reyes"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}
}
