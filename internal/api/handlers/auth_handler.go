package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"fileshare/internal/auth"
	"fileshare/internal/services"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	users  services.UserServiceProvider
	tokens *auth.TokenService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// CredentialsPayload is the JSON body accepted by login and register.
// Both endpoints also accept a regular form post with the same fields.
type CredentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func credentials(r *http.Request) (CredentialsPayload, error) {
	var payload CredentialsPayload
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&payload)
		return payload, err
	}
	if err := r.ParseForm(); err != nil {
		return payload, err
	}
	payload.Username = r.PostFormValue("username")
	payload.Password = r.PostFormValue("password")
	return payload, nil
}

// LoginPage answers the login form descriptor. Rendering is left to the
// front end.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	writeForm(w, "login", "/login")
}

// RegisterPage answers the registration form descriptor.
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	writeForm(w, "register", "/register")
}

func writeForm(w http.ResponseWriter, page, action string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"page":   page,
		"action": action,
		"fields": []string{"username", "password"},
	})
}

// Register handles new user registration and redirects to the login page
// on success.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	payload, err := credentials(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := h.users.Register(payload.Username, payload.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			http.Redirect(w, r, "/register?reason=username_taken", http.StatusFound)
		case errors.Is(err, services.ErrMissingCredentials):
			http.Redirect(w, r, "/register?reason=missing_fields", http.StatusFound)
		default:
			log.Error().Err(err).Str("username", payload.Username).Msg("Failed to register user")
			http.Error(w, "Failed to register user", http.StatusInternalServerError)
		}
		return
	}

	log.Info().Str("username", payload.Username).Msg("Registered new user")
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Login verifies credentials, issues a session token and stores it in the
// session cookie before redirecting to the dashboard.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	payload, err := credentials(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.users.Authenticate(payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("username", payload.Username).Msg("Failed authentication attempt")
			http.Redirect(w, r, "/login?reason=bad_credentials", http.StatusFound)
			return
		}
		log.Error().Err(err).Str("username", payload.Username).Msg("Authentication lookup failed")
		http.Error(w, "Login unavailable", http.StatusInternalServerError)
		return
	}

	token, err := h.tokens.Issue(user.Username)
	if err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("Failed to issue session token")
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Expires:  time.Now().Add(h.tokens.TTL()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	http.Redirect(w, r, "/login?reason=logged_out", http.StatusFound)
}
