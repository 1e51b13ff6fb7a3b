package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"communityhub/internal/models"
	"communityhub/internal/repository"
	"communityhub/internal/service"
)

// AdminHandler serves the staff dashboard: user roles, event and
// coupon management, attendee check-in and donation records.
type AdminHandler struct {
	userRepo     *repository.UserRepository
	familyRepo   *repository.FamilyRepository
	eventRepo    *repository.EventRepository
	eventService *service.EventService
	donations    *service.DonationService
	middleware   *Middleware
	templates    *template.Template
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	userRepo *repository.UserRepository,
	familyRepo *repository.FamilyRepository,
	eventRepo *repository.EventRepository,
	eventService *service.EventService,
	donations *service.DonationService,
	middleware *Middleware,
	templates *template.Template,
) *AdminHandler {
	return &AdminHandler{
		userRepo:     userRepo,
		familyRepo:   familyRepo,
		eventRepo:    eventRepo,
		eventService: eventService,
		donations:    donations,
		middleware:   middleware,
		templates:    templates,
	}
}

// Dashboard renders headline counts for staff
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	stats, err := h.collectStats()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load admin stats", err)
		return
	}

	h.render(w, "admin_dashboard.tmpl", AdminDashboardViewData{
		Title:     "Admin - CommunityHub",
		User:      user,
		Stats:     *stats,
		CSRFToken: h.middleware.CSRFToken(r),
	})
}

func (h *AdminHandler) collectStats() (*AdminStats, error) {
	stats := &AdminStats{}
	var err error

	if stats.Users, err = h.userRepo.CountUsers(); err != nil {
		return nil, err
	}
	if stats.FamilyMembers, err = h.familyRepo.CountFamilyMembers(); err != nil {
		return nil, err
	}
	if stats.Events, err = h.eventRepo.CountEvents(); err != nil {
		return nil, err
	}
	if stats.Registrations, err = h.eventRepo.CountAllRegistrations(); err != nil {
		return nil, err
	}
	if stats.Donations, err = h.donations.CountDonations(); err != nil {
		return nil, err
	}
	if stats.TotalRaised, err = h.donations.TotalRaised(); err != nil {
		return nil, err
	}

	return stats, nil
}

// ListUsers renders the user management page
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	users, err := h.userRepo.GetAllUsers()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load users", err)
		return
	}

	roles, err := h.userRepo.GetAllRoles()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load roles", err)
		return
	}

	h.render(w, "admin_users.tmpl", AdminUsersViewData{
		Title:     "Users - CommunityHub",
		User:      user,
		Users:     users,
		Roles:     roles,
		CSRFToken: h.middleware.CSRFToken(r),
	})
}

// UpdateUserRole changes a user's role. Admins cannot demote themselves.
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	targetID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}
	if targetID == user.ID {
		http.Error(w, "You cannot change your own role", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	roleID, err := strconv.ParseInt(r.FormValue("role_id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	if err := h.userRepo.UpdateUserRole(targetID, roleID); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to update role", err)
		return
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// DeleteUser removes a user account
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	targetID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}
	if targetID == user.ID {
		http.Error(w, "You cannot delete your own account", http.StatusBadRequest)
		return
	}

	if err := h.userRepo.DeleteUser(targetID); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to delete user", err)
		return
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// ListEvents renders the event management page
func (h *AdminHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	h.renderAdminEvents(w, r, "")
}

// CreateEvent handles the new-event form, provisioning the event's
// media folders after the row is created.
func (h *AdminHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	event, err := eventFromForm(r)
	if err != nil {
		h.renderAdminEvents(w, r, err.Error())
		return
	}

	user := GetUserFromContext(r.Context())
	event.CreatedBy = &user.ID

	if _, err := h.eventService.CreateEvent(event); err != nil {
		h.renderAdminEvents(w, r, err.Error())
		return
	}

	http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
}

// UpdateEvent handles the edit-event form
func (h *AdminHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	event, err := eventFromForm(r)
	if err != nil {
		h.renderAdminEvents(w, r, err.Error())
		return
	}

	if err := h.eventService.UpdateEvent(eventID, event); err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			http.NotFound(w, r)
			return
		}
		h.renderAdminEvents(w, r, err.Error())
		return
	}

	http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
}

// DeleteEvent removes an event
func (h *AdminHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	if err := h.eventRepo.DeleteEvent(eventID); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to delete event", err)
		return
	}

	http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
}

// CreateTicket adds a ticket tier to an event
func (h *AdminHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		h.renderAdminEvents(w, r, "Ticket price must be a number")
		return
	}

	quantity := 0
	if quantityParam := r.FormValue("quantity"); quantityParam != "" {
		if quantity, err = strconv.Atoi(quantityParam); err != nil {
			h.renderAdminEvents(w, r, "Ticket quantity must be a number")
			return
		}
	}

	ticket := &models.EventTicket{
		EventID:  eventID,
		Name:     r.FormValue("name"),
		Price:    price,
		Quantity: quantity,
	}
	if _, err := h.eventRepo.CreateTicket(ticket); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to create ticket", err)
		return
	}

	http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
}

// CreateCoupon adds a discount coupon to an event
func (h *AdminHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	coupon, err := couponFromForm(r, eventID)
	if err != nil {
		h.renderAdminEvents(w, r, err.Error())
		return
	}

	if _, err := h.eventRepo.CreateCoupon(coupon); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to create coupon", err)
		return
	}

	http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
}

// Attendees renders the check-in list for an event
func (h *AdminHandler) Attendees(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	eventID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	event, err := h.eventService.GetEvent(eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			http.NotFound(w, r)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load event", err)
		return
	}

	attendees, err := h.eventService.GetAttendees(eventID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load attendees", err)
		return
	}

	h.render(w, "admin_attendees.tmpl", AdminAttendeesViewData{
		Title:     "Attendees - CommunityHub",
		User:      user,
		Event:     event,
		Attendees: attendees,
		CSRFToken: h.middleware.CSRFToken(r),
	})
}

// CheckIn marks a registration as arrived. Responds with JSON so the
// attendee list can update in place.
func (h *AdminHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	registrationID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	checkedIn, err := h.eventService.CheckInAttendee(registrationID, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			http.NotFound(w, r)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Check-in failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{
		"checked_in":      true,
		"already_checked": !checkedIn,
	})
}

// ListDonations renders the donation records page
func (h *AdminHandler) ListDonations(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	donations, err := h.donations.AllDonations()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load donations", err)
		return
	}

	total, err := h.donations.TotalRaised()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load donation total", err)
		return
	}

	h.render(w, "admin_donations.tmpl", AdminDonationsViewData{
		Title:       "Donations - CommunityHub",
		User:        user,
		Donations:   donations,
		TotalRaised: total,
		CSRFToken:   h.middleware.CSRFToken(r),
	})
}

// DeleteDonation removes a donation record
func (h *AdminHandler) DeleteDonation(w http.ResponseWriter, r *http.Request) {
	donationID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	if err := h.donations.Delete(donationID); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to delete donation", err)
		return
	}

	http.Redirect(w, r, "/admin/donations", http.StatusSeeOther)
}

func (h *AdminHandler) renderAdminEvents(w http.ResponseWriter, r *http.Request, errMsg string) {
	user := GetUserFromContext(r.Context())

	events, err := h.eventService.ListAllEvents()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load events", err)
		return
	}

	h.render(w, "admin_events.tmpl", AdminEventsViewData{
		Title:     "Events - CommunityHub",
		User:      user,
		Events:    events,
		CSRFToken: h.middleware.CSRFToken(r),
		Error:     errMsg,
	})
}

func (h *AdminHandler) render(w http.ResponseWriter, name string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}

// eventFromForm parses the new-event form. Datetime fields use the
// HTML datetime-local format.
func eventFromForm(r *http.Request) (*models.Event, error) {
	event := &models.Event{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Sponsorable: r.FormValue("sponsorable") == "on",
	}
	if event.Title == "" {
		return nil, errors.New("event title is required")
	}

	var err error
	if event.StartsAt, err = parseFormTime(r.FormValue("starts_at")); err != nil {
		return nil, errors.New("invalid start time")
	}
	if event.EndsAt, err = parseFormTime(r.FormValue("ends_at")); err != nil {
		return nil, errors.New("invalid end time")
	}
	if event.RegistrationDeadline, err = parseFormTime(r.FormValue("registration_deadline")); err != nil {
		return nil, errors.New("invalid registration deadline")
	}

	if capacityParam := r.FormValue("max_capacity"); capacityParam != "" {
		if event.MaxCapacity, err = strconv.Atoi(capacityParam); err != nil {
			return nil, errors.New("capacity must be a number")
		}
	}
	if priceParam := r.FormValue("price"); priceParam != "" {
		if event.Price, err = strconv.ParseFloat(priceParam, 64); err != nil {
			return nil, errors.New("price must be a number")
		}
	}

	return event, nil
}

func couponFromForm(r *http.Request, eventID int64) (*models.Coupon, error) {
	coupon := &models.Coupon{
		EventID:    eventID,
		Code:       r.FormValue("code"),
		Active:     true,
		OnePerUser: r.FormValue("one_per_user") == "on",
	}
	if coupon.Code == "" {
		return nil, errors.New("coupon code is required")
	}

	var err error
	if coupon.DiscountAmount, err = strconv.ParseFloat(r.FormValue("discount"), 64); err != nil {
		return nil, errors.New("discount must be a number")
	}

	if limitParam := r.FormValue("usage_limit"); limitParam != "" {
		if coupon.UsageLimit, err = strconv.Atoi(limitParam); err != nil {
			return nil, errors.New("usage limit must be a number")
		}
	}
	if startsAt := r.FormValue("starts_at"); startsAt != "" {
		if coupon.StartsAt, err = parseFormTime(startsAt); err != nil {
			return nil, errors.New("invalid coupon start time")
		}
	}
	if expiresAt := r.FormValue("expires_at"); expiresAt != "" {
		if coupon.ExpiresAt, err = parseFormTime(expiresAt); err != nil {
			return nil, errors.New("invalid coupon expiry time")
		}
	}

	return coupon, nil
}

func parseFormTime(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
