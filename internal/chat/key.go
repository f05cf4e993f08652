// Package chat implements the message service: conversation keys,
// bounded-retention send/list/clear and transcript export.
package chat

import "fmt"

// SharedConversationID is the fixed key of the global room.
const SharedConversationID = "global"

// ResolveShared returns the conversation key of the global room.
func ResolveShared() string {
	return SharedConversationID
}

// ResolveDirect returns the canonical key of the private conversation
// between a and b. The pair is sorted so that direction does not
// matter: ResolveDirect(a, b) == ResolveDirect(b, a), and both parties
// always read and write the same message set.
func ResolveDirect(a, b string) (string, error) {
	if a == "" || b == "" {
		return "", fmt.Errorf("%w: direct conversation needs both participants", ErrValidation)
	}
	if b < a {
		a, b = b, a
	}
	return "dm:" + a + "|" + b, nil
}
