package handlers

import (
	"communityhub/internal/models"
	"communityhub/internal/repository"
	"communityhub/internal/service"
)

type LoginViewData struct {
	Title          string
	User           *models.User
	OAuthProviders []OAuthProviderView
	Error          string
	Email          string
	Success        string
}

type RegisterViewData struct {
	Title          string
	User           *models.User
	OAuthProviders []OAuthProviderView
	Error          string
	Email          string
	Name           string
}

type ForgotPasswordViewData struct {
	Title   string
	User    *models.User
	Success string
	Error   string
}

type ResetPasswordViewData struct {
	Title string
	User  *models.User
	Token string
	Error string
}

type DashboardViewData struct {
	Title     string
	User      *models.User
	Dashboard *service.Dashboard
	CSRFToken string
}

type FamilyViewData struct {
	Title     string
	User      *models.User
	Family    *models.Family
	Members   []models.FamilyMember
	CSRFToken string
	Error     string
}

type MemberFormViewData struct {
	Member    *models.FamilyMember
	CSRFToken string
}

type UserFormViewData struct {
	User      *models.User
	Self      *models.FamilyMember
	CSRFToken string
}

type EventListViewData struct {
	Title  string
	User   *models.User
	Events []EventView
}

// EventView decorates an event with per-viewer registration state
type EventView struct {
	models.Event
	Registered bool
	SpotsTaken int
	SoldOut    bool
	Open       bool
}

type EventDetailViewData struct {
	Title        string
	User         *models.User
	Event        *models.Event
	Tickets      []models.EventTicket
	Registration *models.EventRegistration
	SpotsTaken   int
	Open         bool
	CSRFToken    string
	Error        string
	Success      string
}

type DonateViewData struct {
	Title       string
	User        *models.User
	Recent      []models.Donation
	TotalRaised float64
	CSRFToken   string
	Error       string
	Success     string
}

type AdminDashboardViewData struct {
	Title     string
	User      *models.User
	Stats     AdminStats
	CSRFToken string
}

type AdminStats struct {
	Users         int
	FamilyMembers int
	Events        int
	Registrations int
	Donations     int
	TotalRaised   float64
}

type AdminUsersViewData struct {
	Title     string
	User      *models.User
	Users     []models.User
	Roles     []models.Role
	CSRFToken string
}

type AdminEventsViewData struct {
	Title     string
	User      *models.User
	Events    []models.Event
	CSRFToken string
	Error     string
}

type AdminAttendeesViewData struct {
	Title     string
	User      *models.User
	Event     *models.Event
	Attendees []repository.AttendeeRow
	CSRFToken string
}

type AdminDonationsViewData struct {
	Title       string
	User        *models.User
	Donations   []models.Donation
	TotalRaised float64
	CSRFToken   string
}
