package handlers

import (
	"html/template"
	"log"
	"net/http"

	"communityhub/internal/service"
)

// DashboardHandler serves the member dashboard
type DashboardHandler struct {
	memberService *service.MemberService
	middleware    *Middleware
	templates     *template.Template
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(memberService *service.MemberService, middleware *Middleware, templates *template.Template) *DashboardHandler {
	return &DashboardHandler{
		memberService: memberService,
		middleware:    middleware,
		templates:     templates,
	}
}

// Dashboard renders the member home page with family, upcoming events,
// the member's registrations and recent donations.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	dashboard, err := h.memberService.GetDashboard(user)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load dashboard", err)
		return
	}

	data := DashboardViewData{
		Title:     "Dashboard - CommunityHub",
		User:      user,
		Dashboard: dashboard,
		CSRFToken: h.middleware.CSRFToken(r),
	}

	if err := h.templates.ExecuteTemplate(w, "dashboard.tmpl", data); err != nil {
		log.Printf("Error rendering dashboard: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
