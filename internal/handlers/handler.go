package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/auth"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/chat"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	svc    *chat.Service
	issuer *auth.TokenIssuer
	google *auth.GoogleVerifier
	msgs   store.MessageStore
	users  store.UserStore
}

// NewHandler creates a new Handler with the given dependencies.
// google may be nil when no OAuth client is configured.
func NewHandler(svc *chat.Service, issuer *auth.TokenIssuer, google *auth.GoogleVerifier, msgs store.MessageStore, users store.UserStore) *Handler {
	return &Handler{svc: svc, issuer: issuer, google: google, msgs: msgs, users: users}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// ServiceError maps the service error taxonomy to HTTP statuses.
func (h *Handler) ServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrValidation):
		h.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrNotParticipant):
		h.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, chat.ErrUnknownRecipient):
		h.Error(w, http.StatusNotFound, err.Error())
	default:
		h.Error(w, http.StatusInternalServerError, "storage unavailable")
	}
}

// sanitizeName trims and limits a display name to 100 characters,
// removing control characters.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)

	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	if len(name) > 100 {
		name = name[:100]
	}
	return name
}
