package main

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"communityhub/internal/config"
	"communityhub/internal/database"
	"communityhub/internal/handlers"
	"communityhub/internal/repository"
	"communityhub/internal/security"
	"communityhub/internal/service"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, mysql, postgres)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Load templates
	templates, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	eventRepo := repository.NewEventRepository(db)
	donationRepo := repository.NewDonationRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.SessionLifetime)
	memberService := service.NewMemberService(userRepo, familyRepo, eventRepo, donationRepo)
	provisioner := service.NewUploadProvisioner(cfg.UploadsPath)
	eventService := service.NewEventService(eventRepo, provisioner)
	donationService := service.NewDonationService(donationRepo)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SMTPFrom, cfg.EmailFromName, cfg.AppURL, cfg.AppDebug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	if !emailService.IsEnabled() {
		log.Println("Email sending disabled (SMTP_FROM not set)")
	}

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
		"facebook": {
			Name:  "facebook",
			Label: "Facebook",
			Config: &oauth2.Config{
				ClientID:     cfg.FacebookClientID,
				ClientSecret: cfg.FacebookClientSecret,
				Endpoint:     facebook.Endpoint,
				Scopes:       []string{"email", "public_profile"},
			},
			UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email",
		},
		"apple": {
			Name:  "apple",
			Label: "Apple",
			Config: &oauth2.Config{
				ClientID:     cfg.AppleClientID,
				ClientSecret: cfg.AppleClientSecret,
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://appleid.apple.com/auth/authorize",
					TokenURL: "https://appleid.apple.com/auth/token",
				},
				Scopes: []string{"name", "email"},
			},
			AuthParams: map[string]string{
				"response_mode": "query",
			},
		},
	}

	// Initialize handlers
	csrf := security.NewCSRFGenerator(cfg.CSRFSecret)
	rateLimiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(authService, csrf, rateLimiter)

	authHandler := handlers.NewAuthHandler(authService, emailService, templates, oauthProviders, cfg.AppURL)
	dashboardHandler := handlers.NewDashboardHandler(memberService, middleware, templates)
	memberHandler := handlers.NewMemberHandler(memberService, middleware, templates)
	eventHandler := handlers.NewEventHandler(eventService, emailService, middleware, templates)
	donationHandler := handlers.NewDonationHandler(donationService, middleware, templates)
	adminHandler := handlers.NewAdminHandler(userRepo, familyRepo, eventRepo, eventService, donationService, middleware, templates)

	// Setup routes
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))

	// Public routes
	mux.HandleFunc("GET /{$}", authHandler.Home)
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.HandleFunc("POST /login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /register", authHandler.ShowRegister)
	mux.HandleFunc("POST /register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /logout", authHandler.Logout)
	mux.HandleFunc("GET /forgot-password", authHandler.ShowForgotPassword)
	mux.HandleFunc("POST /forgot-password", middleware.RateLimit(authHandler.ForgotPassword))
	mux.HandleFunc("GET /reset-password", authHandler.ShowResetPassword)
	mux.HandleFunc("POST /reset-password", middleware.RateLimit(authHandler.ResetPassword))
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)

	// Member routes
	mux.HandleFunc("GET /dashboard", middleware.RequireAuth(dashboardHandler.Dashboard))
	mux.HandleFunc("GET /family", middleware.RequireAuth(memberHandler.Family))
	mux.HandleFunc("POST /family/members/create", middleware.RequireAuth(middleware.CSRFProtect(memberHandler.AddFamilyMember)))
	mux.HandleFunc("POST /family/members/{id}/update", middleware.RequireAuth(middleware.CSRFProtect(memberHandler.UpdateFamilyMember)))
	mux.HandleFunc("POST /family/members/{id}/delete", middleware.RequireAuth(middleware.CSRFProtect(memberHandler.DeleteFamilyMember)))
	mux.HandleFunc("POST /profile/update", middleware.RequireAuth(middleware.CSRFProtect(memberHandler.UpdateProfile)))
	mux.HandleFunc("GET /get-user-form", middleware.RequireAuth(memberHandler.GetUserForm))
	mux.HandleFunc("GET /get-family-member-form", middleware.RequireAuth(memberHandler.GetFamilyMemberForm))

	// Event routes
	mux.HandleFunc("GET /events", middleware.RequireAuth(eventHandler.ListEvents))
	mux.HandleFunc("GET /events/{slug}", middleware.RequireAuth(eventHandler.ShowEvent))
	mux.HandleFunc("POST /events/{slug}/register", middleware.RequireAuth(middleware.CSRFProtect(eventHandler.RegisterForEvent)))

	// Donation routes
	mux.HandleFunc("GET /donate", middleware.RequireAuth(donationHandler.ShowDonate))
	mux.HandleFunc("POST /donate", middleware.RequireAuth(middleware.RateLimit(middleware.CSRFProtect(donationHandler.Donate))))

	// Admin routes
	mux.HandleFunc("GET /admin/dashboard", middleware.RequireAdmin(adminHandler.Dashboard))
	mux.HandleFunc("GET /admin/users", middleware.RequireAdmin(adminHandler.ListUsers))
	mux.HandleFunc("POST /admin/users/{id}/role", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.UpdateUserRole)))
	mux.HandleFunc("POST /admin/users/{id}/delete", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.DeleteUser)))
	mux.HandleFunc("GET /admin/events", middleware.RequireAdmin(adminHandler.ListEvents))
	mux.HandleFunc("POST /admin/events/create", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.CreateEvent)))
	mux.HandleFunc("POST /admin/events/{id}/update", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.UpdateEvent)))
	mux.HandleFunc("POST /admin/events/{id}/delete", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.DeleteEvent)))
	mux.HandleFunc("POST /admin/events/{id}/tickets/create", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.CreateTicket)))
	mux.HandleFunc("POST /admin/events/{id}/coupons/create", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.CreateCoupon)))
	mux.HandleFunc("GET /admin/events/{id}/attendees", middleware.RequireAdmin(adminHandler.Attendees))
	mux.HandleFunc("POST /admin/registrations/{id}/checkin", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.CheckIn)))
	mux.HandleFunc("GET /admin/donations", middleware.RequireAdmin(adminHandler.ListDonations))
	mux.HandleFunc("POST /admin/donations/{id}/delete", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.DeleteDonation)))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session and token cleanup
	go cleanupLoop(authService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}

// loadTemplates loads all template files
func loadTemplates(templatesPath string) (*template.Template, error) {
	files := []string{filepath.Join(templatesPath, "base.tmpl")}

	patterns := []string{
		filepath.Join(templatesPath, "auth/*.tmpl"),
		filepath.Join(templatesPath, "member/*.tmpl"),
		filepath.Join(templatesPath, "event/*.tmpl"),
		filepath.Join(templatesPath, "admin/*.tmpl"),
		filepath.Join(templatesPath, "components/*.tmpl"),
	}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}

	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 3:04 PM")
		},
		"formatAmount": func(amount float64) string {
			return fmt.Sprintf("$%.2f", amount)
		},
		"formField": func(t time.Time) string {
			return t.Format("2006-01-02T15:04")
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return tmpl, nil
}

// cleanupLoop periodically removes expired sessions and reset tokens
func cleanupLoop(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		}
		if err := authService.CleanupExpiredPasswordResetTokens(); err != nil {
			log.Printf("Error cleaning up expired reset tokens: %v", err)
		}
	}
}
