package handlers

import "net/http"

// UsersResponse represents the participant listing.
type UsersResponse struct {
	Users []UserProfile `json:"users"`
}

// ListUsers returns all known participants (authenticated).
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := identityFrom(r); !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	users, err := h.svc.Users(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to fetch users")
		return
	}

	profiles := make([]UserProfile, len(users))
	for i, u := range users {
		profiles[i] = UserProfile{Email: u.Email, Name: u.Name, Avatar: u.Avatar}
	}

	h.JSON(w, http.StatusOK, UsersResponse{Users: profiles})
}
