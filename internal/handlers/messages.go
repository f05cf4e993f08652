package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/api/middleware"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/chat"
)

const maxMessageBytes = 4096

// SendRequest represents the send message request.
type SendRequest struct {
	Message  string `json:"message"`
	ChatType string `json:"chatType"`
	To       string `json:"to,omitempty"`
}

// SendResponse echoes the stored message back to the sender.
type SendResponse struct {
	Success bool             `json:"success"`
	Message chat.ChatMessage `json:"message"`
}

// MessagesResponse represents the message listing response.
type MessagesResponse struct {
	Messages []chat.ChatMessage `json:"messages"`
}

// ClearRequest selects the conversation to clear.
type ClearRequest struct {
	ChatType string `json:"chatType"`
	With     string `json:"with,omitempty"`
}

// ClearResponse reports how many messages were removed.
type ClearResponse struct {
	Success bool  `json:"success"`
	Removed int64 `json:"removed"`
}

func identityFrom(r *http.Request) (chat.Identity, bool) {
	claims := middleware.GetIdentityFromContext(r.Context())
	if claims == nil {
		return chat.Identity{}, false
	}
	return chat.Identity{Email: claims.Email, Name: claims.Name, Avatar: claims.Avatar}, true
}

// SendMessage handles posting a message (authenticated).
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sender, ok := identityFrom(r)
	if !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Message) > maxMessageBytes {
		h.Error(w, http.StatusUnprocessableEntity, "message too long (max 4096 bytes)")
		return
	}

	echo, err := h.svc.Send(r.Context(), sender, req.ChatType, req.To, req.Message)
	if err != nil {
		h.ServiceError(w, err)
		return
	}

	h.JSON(w, http.StatusCreated, SendResponse{Success: true, Message: *echo})
}

// GetMessages handles fetching a conversation (authenticated).
// ?since=<unix ms> returns only strictly newer messages, which is what
// the polling frontend uses to diff.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	requester, ok := identityFrom(r)
	if !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	q := r.URL.Query()
	var since int64
	if s := q.Get("since"); s != "" {
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid since cursor")
			return
		}
		since = parsed
	}

	msgs, err := h.svc.List(r.Context(), requester.Email, q.Get("chatType"), q.Get("with"), since)
	if err != nil {
		h.ServiceError(w, err)
		return
	}
	if msgs == nil {
		msgs = []chat.ChatMessage{}
	}

	h.JSON(w, http.StatusOK, MessagesResponse{Messages: msgs})
}

// ClearMessages deletes a whole conversation (authenticated).
func (h *Handler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	requester, ok := identityFrom(r)
	if !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req ClearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	removed, err := h.svc.Clear(r.Context(), requester.Email, req.ChatType, req.With)
	if err != nil {
		h.ServiceError(w, err)
		return
	}

	h.JSON(w, http.StatusOK, ClearResponse{Success: true, Removed: removed})
}
