package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/models"
)

// MemoryStore keeps everything in process memory. It is the fallback
// backend when no database is configured and the backend used by unit
// tests.
//
// Concurrency control is scoped per conversation: each conversation
// carries its own mutex, so appends and evictions in independent
// conversations never contend, while append/evict/query on one
// conversation are serialized.
type MemoryStore struct {
	mu    sync.RWMutex // guards the maps, not conversation contents
	convs map[string]*conversation
	users map[string]*models.User
}

type conversation struct {
	mu     sync.Mutex
	msgs   []models.Message
	nextSq int64
	lastTs int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		convs: make(map[string]*conversation),
		users: make(map[string]*models.User),
	}
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStore) Close() {}

// Ping always succeeds for the in-memory backend.
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) conv(id string, create bool) *conversation {
	s.mu.RLock()
	c := s.convs[id]
	s.mu.RUnlock()
	if c != nil || !create {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c = s.convs[id]; c == nil {
		c = &conversation{}
		s.convs[id] = c
	}
	return c
}

// Append inserts a message, assigning ID, Timestamp and Seq under the
// conversation lock so that timestamps are non-decreasing in insertion
// order even when the wall clock steps backwards.
func (s *MemoryStore) Append(ctx context.Context, msg *models.Message) error {
	c := s.conv(msg.ConversationID, true)

	c.mu.Lock()
	defer c.mu.Unlock()

	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	if msg.Timestamp < c.lastTs {
		msg.Timestamp = c.lastTs
	}
	c.lastTs = msg.Timestamp

	c.nextSq++
	msg.Seq = c.nextSq

	c.msgs = append(c.msgs, *msg)
	return nil
}

// EvictExcess drops the oldest messages beyond max. Holding the
// conversation lock for the whole count-and-truncate closes the
// count-then-delete race two concurrent writers would otherwise hit.
func (s *MemoryStore) EvictExcess(ctx context.Context, conversationID string, max int) (int64, error) {
	c := s.conv(conversationID, false)
	if c == nil {
		return 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	excess := len(c.msgs) - max
	if excess <= 0 {
		return 0, nil
	}
	c.msgs = append([]models.Message(nil), c.msgs[excess:]...)
	return int64(excess), nil
}

func (s *MemoryStore) Query(ctx context.Context, conversationID string, since int64) ([]models.Message, error) {
	c := s.conv(conversationID, false)
	if c == nil {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Message, 0, len(c.msgs))
	for _, m := range c.msgs {
		if since > 0 && m.Timestamp <= since {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *MemoryStore) DeleteConversation(ctx context.Context, conversationID string) (int64, error) {
	c := s.conv(conversationID, false)
	if c == nil {
		return 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := int64(len(c.msgs))
	c.msgs = nil
	return removed, nil
}

func (s *MemoryStore) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	c := s.conv(conversationID, false)
	if c == nil {
		return 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.msgs)), nil
}

func (s *MemoryStore) CountMessages(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, c := range s.convs {
		c.mu.Lock()
		total += int64(len(c.msgs))
		c.mu.Unlock()
	}
	return total, nil
}

func (s *MemoryStore) CountConversations(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, c := range s.convs {
		c.mu.Lock()
		if len(c.msgs) > 0 {
			total++
		}
		c.mu.Unlock()
	}
	return total, nil
}

// UpsertUser creates or refreshes a participant record.
func (s *MemoryStore) UpsertUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	existing, ok := s.users[user.Email]
	if !ok {
		u := *user
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
		}
		u.LastActive = now
		s.users[user.Email] = &u
		return nil
	}

	existing.Name = user.Name
	existing.Avatar = user.Avatar
	if user.GoogleID != "" {
		existing.GoogleID = user.GoogleID
	}
	existing.LastActive = now
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].Email, out[j].Email) < 0
	})
	return out, nil
}

func (s *MemoryStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}
