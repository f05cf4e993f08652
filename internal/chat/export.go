package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/models"
)

const exportRule = "=================================================="

// Export renders a conversation as a plaintext transcript, decrypted
// and ordered by time. Undecryptable records appear as the placeholder,
// same as in listings.
func (s *Service) Export(ctx context.Context, requester, mode, with string) (string, error) {
	mode = normalizeMode(mode)
	msgs, err := s.List(ctx, requester, mode, with, 0)
	if err != nil {
		return "", err
	}

	title := "Global Chat"
	if mode == models.ModePrivate {
		title = "DM with " + with
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", exportRule)
	fmt.Fprintf(&b, "  ChatApp Logger — %s\n", title)
	fmt.Fprintf(&b, "  Downloaded: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "  Messages: %d (last %d in queue)\n", len(msgs), MaxQueueSize)
	fmt.Fprintf(&b, "%s\n\n", exportRule)

	for _, m := range msgs {
		ts := time.UnixMilli(m.Timestamp).Format("2006-01-02 15:04:05")
		name := m.FromName
		if name == "" {
			name = m.From
		}
		fmt.Fprintf(&b, "[%s] %s:\n  %s\n\n", ts, name, m.Body)
	}

	fmt.Fprintf(&b, "%s\n  End of Chat Log\n%s\n", exportRule, exportRule)
	return b.String(), nil
}
