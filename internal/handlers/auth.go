package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/metrics"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/models"
)

// usernameRegex bounds the simple-login fallback name.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,50}$`)

// GoogleLoginRequest carries the Google Sign-In credential.
type GoogleLoginRequest struct {
	Credential string `json:"credential"`
}

// SimpleLoginRequest is the local-dev fallback without Google.
type SimpleLoginRequest struct {
	Username string `json:"username"`
}

// LoginResponse returns the session token and profile to the client.
type LoginResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    UserProfile `json:"user"`
}

// UserProfile is the public view of a participant.
type UserProfile struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// GoogleLogin verifies a Google ID token, upserts the user record and
// issues a session token.
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.Error(w, http.StatusServiceUnavailable, "google login not configured")
		return
	}

	var req GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Credential == "" {
		h.Error(w, http.StatusBadRequest, "missing credential")
		return
	}

	profile, err := h.google.Verify(r.Context(), req.Credential)
	if err != nil {
		h.Error(w, http.StatusUnauthorized, "google token verification failed")
		return
	}

	name := sanitizeName(profile.Name)
	if name == "" {
		name = profile.Email
	}

	if err := h.users.UpsertUser(r.Context(), &models.User{
		Email:    profile.Email,
		GoogleID: profile.Sub,
		Name:     name,
		Avatar:   profile.Picture,
	}); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to store user")
		return
	}

	token, err := h.issuer.Issue(profile.Email, name, profile.Picture)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	metrics.LoginsTotal.WithLabelValues("google").Inc()
	h.JSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Token:   token,
		User:    UserProfile{Email: profile.Email, Name: name, Avatar: profile.Picture},
	})
}

// SimpleLogin issues a session for a bare username. Local development
// only; the identity is scoped to the "@local" pseudo-domain.
func (h *Handler) SimpleLogin(w http.ResponseWriter, r *http.Request) {
	var req SimpleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		h.Error(w, http.StatusBadRequest, "missing username")
		return
	}
	if !usernameRegex.MatchString(req.Username) {
		h.Error(w, http.StatusBadRequest, "username must be 1-50 characters, alphanumeric with hyphens and underscores only")
		return
	}

	email := req.Username + "@local"

	if err := h.users.UpsertUser(r.Context(), &models.User{
		Email:    email,
		GoogleID: "local_" + req.Username,
		Name:     req.Username,
	}); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to store user")
		return
	}

	token, err := h.issuer.Issue(email, req.Username, "")
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	metrics.LoginsTotal.WithLabelValues("simple").Inc()
	h.JSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Token:   token,
		User:    UserProfile{Email: email, Name: req.Username},
	})
}
