package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/models"
)

func appendN(t *testing.T, s *MemoryStore, conv string, n int) []models.Message {
	t.Helper()
	ctx := context.Background()
	msgs := make([]models.Message, 0, n)
	for i := 0; i < n; i++ {
		m := models.Message{
			ConversationID: conv,
			FromID:         "alice@local",
			Content:        fmt.Sprintf("m%d", i+1),
			Mode:           models.ModeGlobal,
			ToID:           "global",
		}
		require.NoError(t, s.Append(ctx, &m))
		msgs = append(msgs, m)
	}
	return msgs
}

func TestAppendAssignsIdentity(t *testing.T) {
	s := NewMemoryStore()
	msgs := appendN(t, s, "global", 3)

	for _, m := range msgs {
		assert.NotEmpty(t, m.ID)
		assert.NotZero(t, m.Timestamp)
	}
	assert.Equal(t, int64(1), msgs[0].Seq)
	assert.Equal(t, int64(3), msgs[2].Seq)
}

func TestTimestampsNonDecreasing(t *testing.T) {
	s := NewMemoryStore()
	msgs := appendN(t, s, "global", 50)

	for i := 1; i < len(msgs); i++ {
		assert.GreaterOrEqual(t, msgs[i].Timestamp, msgs[i-1].Timestamp)
	}
}

func TestEvictKeepsNewest(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	appendN(t, s, "global", 12)

	removed, err := s.EvictExcess(ctx, "global", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	got, err := s.Query(ctx, "global", 0)
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, "m3", got[0].Content)
	assert.Equal(t, "m12", got[9].Content)
}

func TestEvictUnderCapRemovesNothing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	appendN(t, s, "global", 5)

	removed, err := s.EvictExcess(ctx, "global", 10)
	require.NoError(t, err)
	assert.Zero(t, removed)

	count, err := s.CountByConversation(ctx, "global")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestEvictUnknownConversation(t *testing.T) {
	s := NewMemoryStore()
	removed, err := s.EvictExcess(context.Background(), "nope", 10)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestConcurrentAppendEvict(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	const senders = 20
	const max = 10

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := models.Message{
				ConversationID: "busy",
				FromID:         "alice@local",
				Content:        fmt.Sprintf("c%d", i),
				Mode:           models.ModeGlobal,
				ToID:           "global",
			}
			if err := s.Append(ctx, &m); err != nil {
				t.Error(err)
				return
			}
			if _, err := s.EvictExcess(ctx, "busy", max); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	count, err := s.CountByConversation(ctx, "busy")
	require.NoError(t, err)
	assert.Equal(t, int64(max), count)

	// The survivors must be exactly the max most recent insertions.
	got, err := s.Query(ctx, "busy", 0)
	require.NoError(t, err)
	require.Len(t, got, max)
	for i, m := range got {
		assert.Equal(t, int64(senders-max+i+1), m.Seq)
	}
}

func TestQuerySinceIsExclusive(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	msgs := appendN(t, s, "global", 6)

	cursor := msgs[2].Timestamp
	got, err := s.Query(ctx, "global", cursor)
	require.NoError(t, err)
	for _, m := range got {
		assert.Greater(t, m.Timestamp, cursor)
	}
	// Everything at or before the cursor is excluded, nothing after is lost.
	want := 0
	for _, m := range msgs {
		if m.Timestamp > cursor {
			want++
		}
	}
	assert.Len(t, got, want)
}

func TestConversationsAreIndependent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	appendN(t, s, "busy", 12)
	appendN(t, s, "quiet", 2)

	_, err := s.EvictExcess(ctx, "busy", 10)
	require.NoError(t, err)

	quiet, err := s.CountByConversation(ctx, "quiet")
	require.NoError(t, err)
	assert.Equal(t, int64(2), quiet)
}

func TestDeleteConversation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	appendN(t, s, "global", 4)

	removed, err := s.DeleteConversation(ctx, "global")
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)

	// Idempotent: clearing again removes nothing.
	removed, err = s.DeleteConversation(ctx, "global")
	require.NoError(t, err)
	assert.Zero(t, removed)

	got, err := s.Query(ctx, "global", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCounts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	appendN(t, s, "a", 3)
	appendN(t, s, "b", 2)

	total, err := s.CountMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	convs, err := s.CountConversations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), convs)
}

func TestUpsertUser(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, &models.User{Email: "alice@local", Name: "Alice"}))
	first, err := s.GetUser(ctx, "alice@local")
	require.NoError(t, err)
	require.NotNil(t, first)

	require.NoError(t, s.UpsertUser(ctx, &models.User{Email: "alice@local", Name: "Alice B", GoogleID: "g1"}))
	second, err := s.GetUser(ctx, "alice@local")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "Alice B", second.Name)
	assert.Equal(t, "g1", second.GoogleID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.False(t, second.LastActive.Before(first.LastActive))

	count, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}
