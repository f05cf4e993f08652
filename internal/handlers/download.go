package handlers

import (
	"fmt"
	"net/http"
	"time"
)

// DownloadTranscript streams the decrypted conversation as a plain
// text attachment (authenticated).
func (h *Handler) DownloadTranscript(w http.ResponseWriter, r *http.Request) {
	requester, ok := identityFrom(r)
	if !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	q := r.URL.Query()
	text, err := h.svc.Export(r.Context(), requester.Email, q.Get("chatType"), q.Get("with"))
	if err != nil {
		h.ServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("chat_log_%s.txt", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write([]byte(text))
}
