package handlers

import (
	"html/template"
	"log"
	"net/http"

	"communityhub/internal/security"
	"communityhub/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService  *service.AuthService
	emailService *service.EmailService
	templates    *template.Template

	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService *service.AuthService,
	emailService *service.EmailService,
	templates *template.Template,
	oauthProviders map[string]OAuthProvider,
	oauthRedirectBaseURL string,
) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		emailService:         emailService,
		templates:            templates,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

// Home renders the landing page, or the dashboard for logged-in members
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := h.authService.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	h.render(w, "home.tmpl", map[string]interface{}{
		"Title": "CommunityHub",
	})
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := h.authService.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	h.render(w, "login.tmpl", LoginViewData{
		Title:          "Login - CommunityHub",
		OAuthProviders: h.oauthProviderViews(r),
	})
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	session, _, err := h.authService.Login(email, password)
	if err != nil {
		h.render(w, "login.tmpl", LoginViewData{
			Title:          "Login - CommunityHub",
			Error:          "Invalid email or password",
			Email:          email,
			OAuthProviders: h.oauthProviderViews(r),
		})
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// ShowRegister renders the registration page
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := h.authService.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	h.render(w, "register.tmpl", RegisterViewData{
		Title:          "Register - CommunityHub",
		OAuthProviders: h.oauthProviderViews(r),
	})
}

// Register handles registration form submission
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	name := r.FormValue("name")

	user, err := h.authService.Register(email, password, name)
	if err != nil {
		h.render(w, "register.tmpl", RegisterViewData{
			Title:          "Register - CommunityHub",
			Error:          err.Error(),
			Email:          email,
			Name:           name,
			OAuthProviders: h.oauthProviderViews(r),
		})
		return
	}

	if h.emailService != nil && h.emailService.IsEnabled() {
		if err := h.emailService.SendWelcomeEmail(r.Context(), user.Email, user.Name); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	// Auto-login after registration
	session, _, err := h.authService.Login(email, password)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout invalidates the session and clears the cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.authService.Logout(cookie.Value); err != nil {
			log.Printf("Failed to delete session: %v", err)
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ShowForgotPassword renders the password reset request form
func (h *AuthHandler) ShowForgotPassword(w http.ResponseWriter, r *http.Request) {
	h.render(w, "forgot_password.tmpl", ForgotPasswordViewData{
		Title: "Forgot Password - CommunityHub",
	})
}

// ForgotPassword handles the reset request. The response is identical
// whether or not the email has an account.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	email := r.FormValue("email")
	if err := h.authService.RequestPasswordReset(r.Context(), h.emailService, email); err != nil {
		log.Printf("Password reset request failed for %s: %v", email, err)
	}

	h.render(w, "forgot_password.tmpl", ForgotPasswordViewData{
		Title:   "Forgot Password - CommunityHub",
		Success: "If that email has an account, a reset link is on its way.",
	})
}

// ShowResetPassword renders the reset form for a token link
func (h *AuthHandler) ShowResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	valid, err := h.authService.ValidatePasswordResetToken(token)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to validate reset token", err)
		return
	}
	if !valid {
		h.render(w, "reset_password.tmpl", ResetPasswordViewData{
			Title: "Reset Password - CommunityHub",
			Error: "This reset link is invalid or has expired.",
		})
		return
	}

	h.render(w, "reset_password.tmpl", ResetPasswordViewData{
		Title: "Reset Password - CommunityHub",
		Token: token,
	})
}

// ResetPassword handles the new password submission
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	token := r.FormValue("token")
	password := r.FormValue("password")

	if err := h.authService.ResetPassword(token, password); err != nil {
		h.render(w, "reset_password.tmpl", ResetPasswordViewData{
			Title: "Reset Password - CommunityHub",
			Token: token,
			Error: err.Error(),
		})
		return
	}

	h.render(w, "login.tmpl", LoginViewData{
		Title:          "Login - CommunityHub",
		Success:        "Password updated. Please sign in.",
		OAuthProviders: h.oauthProviderViews(r),
	})
}

// render executes a template, logging failures
func (h *AuthHandler) render(w http.ResponseWriter, name string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
