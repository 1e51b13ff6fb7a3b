package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"communityhub/internal/models"
	"communityhub/internal/service"
)

// EventHandler serves event listings, detail pages and registration
type EventHandler struct {
	eventService *service.EventService
	emailService *service.EmailService
	middleware   *Middleware
	templates    *template.Template
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *service.EventService, emailService *service.EmailService, middleware *Middleware, templates *template.Template) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		emailService: emailService,
		middleware:   middleware,
		templates:    templates,
	}
}

// ListEvents renders upcoming events with per-viewer state
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	events, err := h.eventService.ListUpcomingEvents()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load events", err)
		return
	}

	now := time.Now()
	views := make([]EventView, 0, len(events))
	for _, event := range events {
		view := EventView{Event: event, Open: event.RegistrationOpen(now)}

		view.SpotsTaken, err = h.eventService.CountRegistrations(event.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to count registrations", err)
			return
		}
		view.SoldOut = event.MaxCapacity > 0 && view.SpotsTaken >= event.MaxCapacity

		reg, err := h.eventService.GetRegistration(event.ID, user.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load registration", err)
			return
		}
		view.Registered = reg != nil

		views = append(views, view)
	}

	h.render(w, "events.tmpl", EventListViewData{
		Title:  "Events - CommunityHub",
		User:   user,
		Events: views,
	})
}

// ShowEvent renders one event's detail page with its ticket tiers
func (h *EventHandler) ShowEvent(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	event := h.eventBySlug(w, r)
	if event == nil {
		return
	}

	data, err := h.eventDetailData(r, user, event)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load event", err)
		return
	}

	h.render(w, "event_detail.tmpl", *data)
}

// RegisterForEvent handles the event registration form submission
func (h *EventHandler) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	event := h.eventBySlug(w, r)
	if event == nil {
		return
	}

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	req := service.RegistrationRequest{
		CouponCode: r.FormValue("coupon_code"),
	}
	if ticketParam := r.FormValue("ticket_id"); ticketParam != "" {
		ticketID, err := strconv.ParseInt(ticketParam, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
			return
		}
		req.TicketID = &ticketID
	}

	registration, err := h.eventService.RegisterForEvent(user.ID, event.ID, req)
	if err != nil {
		h.renderRegisterError(w, r, user, event, err)
		return
	}

	if h.emailService != nil && h.emailService.IsEnabled() {
		if err := h.emailService.SendRegistrationConfirmation(r.Context(), user.Email, user.Name, event.Title, registration.FinalAmount); err != nil {
			log.Printf("Failed to send registration confirmation to %s: %v", user.Email, err)
		}
	}

	http.Redirect(w, r, "/events/"+event.Slug, http.StatusSeeOther)
}

func (h *EventHandler) renderRegisterError(w http.ResponseWriter, r *http.Request, user *models.User, event *models.Event, regErr error) {
	switch {
	case errors.Is(regErr, service.ErrAlreadyRegistered),
		errors.Is(regErr, service.ErrDeadlinePassed),
		errors.Is(regErr, service.ErrEventFull),
		errors.Is(regErr, service.ErrCouponInvalid),
		errors.Is(regErr, service.ErrCouponAlreadyUsed),
		errors.Is(regErr, service.ErrTicketNotFound):
		// fall through to re-render with the message
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Event registration failed", regErr)
		return
	}

	data, err := h.eventDetailData(r, user, event)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load event", err)
		return
	}
	data.Error = regErr.Error()

	h.render(w, "event_detail.tmpl", *data)
}

func (h *EventHandler) eventDetailData(r *http.Request, user *models.User, event *models.Event) (*EventDetailViewData, error) {
	tickets, err := h.eventService.GetEventTickets(event.ID)
	if err != nil {
		return nil, err
	}

	registration, err := h.eventService.GetRegistration(event.ID, user.ID)
	if err != nil {
		return nil, err
	}

	spotsTaken, err := h.eventService.CountRegistrations(event.ID)
	if err != nil {
		return nil, err
	}

	return &EventDetailViewData{
		Title:        event.Title + " - CommunityHub",
		User:         user,
		Event:        event,
		Tickets:      tickets,
		Registration: registration,
		SpotsTaken:   spotsTaken,
		Open:         event.RegistrationOpen(time.Now()),
		CSRFToken:    h.middleware.CSRFToken(r),
	}, nil
}

// eventBySlug resolves the {slug} path value, writing the error
// response itself when the event cannot be served.
func (h *EventHandler) eventBySlug(w http.ResponseWriter, r *http.Request) *models.Event {
	event, err := h.eventService.GetEventBySlug(r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			http.NotFound(w, r)
			return nil
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load event", err)
		return nil
	}
	return event
}

func (h *EventHandler) render(w http.ResponseWriter, name string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
