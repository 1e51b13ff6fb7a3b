package handlers

import (
	"html/template"
	"log"
	"net/http"
	"strconv"

	"communityhub/internal/service"
)

// DonationHandler serves the donation page and form
type DonationHandler struct {
	donationService *service.DonationService
	middleware      *Middleware
	templates       *template.Template
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(donationService *service.DonationService, middleware *Middleware, templates *template.Template) *DonationHandler {
	return &DonationHandler{
		donationService: donationService,
		middleware:      middleware,
		templates:       templates,
	}
}

// ShowDonate renders the donation page with recent donations
func (h *DonationHandler) ShowDonate(w http.ResponseWriter, r *http.Request) {
	h.renderDonate(w, r, "", "")
}

// Donate handles the donation form submission
func (h *DonationHandler) Donate(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	amount, err := strconv.ParseFloat(r.FormValue("amount"), 64)
	if err != nil {
		h.renderDonate(w, r, "Please enter a valid amount.", "")
		return
	}

	donorName := user.Name
	donorID := &user.ID
	if r.FormValue("anonymous") == "on" {
		donorName = ""
		donorID = nil
	}

	if _, err := h.donationService.Donate(donorID, donorName, amount, r.FormValue("message")); err != nil {
		h.renderDonate(w, r, err.Error(), "")
		return
	}

	h.renderDonate(w, r, "", "Thank you for your donation!")
}

func (h *DonationHandler) renderDonate(w http.ResponseWriter, r *http.Request, errMsg, successMsg string) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	recent, err := h.donationService.RecentDonations(10)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load donations", err)
		return
	}

	total, err := h.donationService.TotalRaised()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load donation total", err)
		return
	}

	data := DonateViewData{
		Title:       "Donate - CommunityHub",
		User:        user,
		Recent:      recent,
		TotalRaised: total,
		CSRFToken:   h.middleware.CSRFToken(r),
		Error:       errMsg,
		Success:     successMsg,
	}

	if err := h.templates.ExecuteTemplate(w, "donate.tmpl", data); err != nil {
		log.Printf("Error rendering donate: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
