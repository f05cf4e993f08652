package chat

import "errors"

// Error taxonomy of the message service. Handlers map these to HTTP
// statuses; everything else is a backing-store failure and surfaces
// as a transient 5xx.
var (
	// ErrValidation marks caller-fixable requests: empty body after
	// trimming, missing identifiers. Never retried.
	ErrValidation = errors.New("invalid request")

	// ErrNotParticipant marks a requester that is not a party to the
	// direct conversation being accessed. Never retried.
	ErrNotParticipant = errors.New("not a participant of this conversation")

	// ErrUnknownRecipient marks a direct send to a recipient the user
	// directory has never seen.
	ErrUnknownRecipient = errors.New("unknown recipient")
)
