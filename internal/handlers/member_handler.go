package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"communityhub/internal/models"
	"communityhub/internal/service"
)

// MemberHandler manages the family directory pages and the profile form
type MemberHandler struct {
	memberService *service.MemberService
	middleware    *Middleware
	templates     *template.Template
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *service.MemberService, middleware *Middleware, templates *template.Template) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		middleware:    middleware,
		templates:     templates,
	}
}

// Family renders the family directory page
func (h *MemberHandler) Family(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	family, members, err := h.memberService.GetFamily(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load family", err)
		return
	}

	h.render(w, "family.tmpl", FamilyViewData{
		Title:     "My Family - CommunityHub",
		User:      user,
		Family:    family,
		Members:   members,
		CSRFToken: h.middleware.CSRFToken(r),
	})
}

// AddFamilyMember handles the add-member form submission
func (h *MemberHandler) AddFamilyMember(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	member, err := memberFromForm(r, nil)
	if err != nil {
		h.renderFamilyError(w, r, user, err.Error())
		return
	}

	if _, err := h.memberService.AddFamilyMember(user.ID, member); err != nil {
		h.renderFamilyError(w, r, user, err.Error())
		return
	}

	http.Redirect(w, r, "/family", http.StatusSeeOther)
}

// UpdateFamilyMember handles the edit-member form submission
func (h *MemberHandler) UpdateFamilyMember(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	memberID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	existing, err := h.memberService.GetFamilyMember(user.ID, memberID)
	if err != nil {
		h.memberError(w, r, user, err)
		return
	}

	member, err := memberFromForm(r, existing)
	if err != nil {
		h.renderFamilyError(w, r, user, err.Error())
		return
	}

	if err := h.memberService.UpdateFamilyMember(user.ID, member); err != nil {
		h.memberError(w, r, user, err)
		return
	}

	http.Redirect(w, r, "/family", http.StatusSeeOther)
}

// DeleteFamilyMember removes a family member
func (h *MemberHandler) DeleteFamilyMember(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	memberID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	if err := h.memberService.RemoveFamilyMember(user.ID, memberID); err != nil {
		h.memberError(w, r, user, err)
		return
	}

	http.Redirect(w, r, "/family", http.StatusSeeOther)
}

// UpdateProfile handles the account form submission, keeping the
// member's self directory row in sync.
func (h *MemberHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	email := r.FormValue("email")
	name := r.FormValue("name")

	if err := h.memberService.UpdateProfile(user.ID, email, name); err != nil {
		h.renderFamilyError(w, r, user, err.Error())
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// GetUserForm returns the profile edit form partial for in-page editing
func (h *MemberHandler) GetUserForm(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	self, err := h.memberService.GetSelf(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load profile", err)
		return
	}

	h.render(w, "user_form.tmpl", UserFormViewData{
		User:      user,
		Self:      self,
		CSRFToken: h.middleware.CSRFToken(r),
	})
}

// GetFamilyMemberForm returns the member edit form partial. Without an
// id query parameter it returns a blank add-member form.
func (h *MemberHandler) GetFamilyMemberForm(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
		return
	}

	var member *models.FamilyMember
	if idParam := r.URL.Query().Get("id"); idParam != "" {
		memberID, err := strconv.ParseInt(idParam, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
			return
		}
		member, err = h.memberService.GetFamilyMember(user.ID, memberID)
		if err != nil {
			h.memberError(w, r, user, err)
			return
		}
	}

	h.render(w, "member_form.tmpl", MemberFormViewData{
		Member:    member,
		CSRFToken: h.middleware.CSRFToken(r),
	})
}

func (h *MemberHandler) memberError(w http.ResponseWriter, r *http.Request, user *models.User, err error) {
	switch {
	case errors.Is(err, service.ErrMemberNotFound), errors.Is(err, service.ErrNotFamilyOwner):
		http.NotFound(w, r)
	case errors.Is(err, service.ErrSelfImmutable):
		h.renderFamilyError(w, r, user, "Your own directory entry cannot be removed.")
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Family member operation failed", err)
	}
}

func (h *MemberHandler) renderFamilyError(w http.ResponseWriter, r *http.Request, user *models.User, message string) {
	family, members, err := h.memberService.GetFamily(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load family", err)
		return
	}

	h.render(w, "family.tmpl", FamilyViewData{
		Title:     "My Family - CommunityHub",
		User:      user,
		Family:    family,
		Members:   members,
		CSRFToken: h.middleware.CSRFToken(r),
		Error:     message,
	})
}

func (h *MemberHandler) render(w http.ResponseWriter, name string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// memberFromForm builds a family member from form fields, layered on
// top of the existing record for updates.
func memberFromForm(r *http.Request, existing *models.FamilyMember) (*models.FamilyMember, error) {
	member := &models.FamilyMember{}
	if existing != nil {
		*member = *existing
	}

	member.FirstName = r.FormValue("first_name")
	member.LastName = r.FormValue("last_name")
	// The self row keeps its relationship and mirrors the account email;
	// those change via the profile form instead.
	if existing == nil || !existing.IsSelf() {
		member.Relationship = r.FormValue("relationship")
		member.Email = r.FormValue("email")
	}
	member.Phone = r.FormValue("phone")
	member.Village = r.FormValue("village")
	member.Occupation = r.FormValue("occupation")

	member.BirthYear = 0
	if birthYear := r.FormValue("birth_year"); birthYear != "" {
		year, err := strconv.Atoi(birthYear)
		if err != nil {
			return nil, errors.New("birth year must be a number")
		}
		member.BirthYear = year
	}

	return member, nil
}
