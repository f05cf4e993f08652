package store

import (
	"context"

	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/models"
)

// MessageStore is the bounded-retention message log, grouped by
// conversation key. SQLiteStore, PostgresStore, RedisStore and
// MemoryStore all implement it.
//
// Every implementation must make EvictExcess atomic with respect to
// concurrent Appends into the same conversation: once eviction
// settles, a conversation never holds more than max messages and
// never loses more than the oldest excess.
type MessageStore interface {
	// Append inserts a message, assigning ID, Timestamp and Seq when
	// unset. Safe for concurrent calls against the same conversation.
	Append(ctx context.Context, msg *models.Message) error

	// EvictExcess deletes the oldest messages of a conversation beyond
	// max, ordered by timestamp then insertion order. Returns how many
	// were removed.
	EvictExcess(ctx context.Context, conversationID string, max int) (int64, error)

	// Query returns a conversation's messages ordered by timestamp
	// ascending (insertion order on ties). If since > 0, only messages
	// with a strictly greater timestamp are returned.
	Query(ctx context.Context, conversationID string, since int64) ([]models.Message, error)

	// DeleteConversation removes every message of a conversation and
	// reports the count. Deleting an empty conversation returns zero.
	DeleteConversation(ctx context.Context, conversationID string) (int64, error)

	CountByConversation(ctx context.Context, conversationID string) (int64, error)

	// Totals for the stats endpoint.
	CountMessages(ctx context.Context) (int64, error)
	CountConversations(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
}

// UserStore tracks known participants. Records are upserted on each
// authenticated contact and never deleted here.
type UserStore interface {
	UpsertUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
}

// DataStore is implemented by backends that provide both planes.
type DataStore interface {
	MessageStore
	UserStore
	Close()
}
