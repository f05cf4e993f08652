package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/crypto"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/models"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/store"
)

var (
	alice = Identity{Email: "alice@local", Name: "Alice"}
	bob   = Identity{Email: "bob@local", Name: "Bob"}
)

func newTestService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()
	cipher, err := crypto.NewCipher("service-test-secret")
	require.NoError(t, err)

	mem := store.NewMemoryStore()
	svc := NewService(mem, mem, cipher, zerolog.Nop())

	// Both parties are known to the directory.
	require.NoError(t, mem.UpsertUser(context.Background(), &models.User{Email: alice.Email, Name: alice.Name}))
	require.NoError(t, mem.UpsertUser(context.Background(), &models.User{Email: bob.Email, Name: bob.Name}))
	return svc, mem
}

func TestSendEmptyBodyRejected(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	for _, body := range []string{"", "   ", "\n\t "} {
		_, err := svc.Send(ctx, alice, models.ModeGlobal, "", body)
		require.ErrorIs(t, err, ErrValidation)
	}

	count, err := mem.CountByConversation(ctx, ResolveShared())
	require.NoError(t, err)
	assert.Zero(t, count, "rejected sends must not create records")
}

func TestSendEchoesPlaintextStoresCiphertext(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	echo, err := svc.Send(ctx, alice, models.ModeGlobal, "", "  hello world  ")
	require.NoError(t, err)
	assert.Equal(t, "hello world", echo.Body, "echo is the trimmed plaintext")
	assert.NotEmpty(t, echo.ID)
	assert.NotZero(t, echo.Timestamp)
	assert.Equal(t, alice.Email, echo.From)
	assert.Equal(t, "global", echo.To)

	stored, err := mem.Query(ctx, ResolveShared(), 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.NotEqual(t, "hello world", stored[0].Content, "body must be encrypted at rest")
	assert.NotContains(t, stored[0].Content, "hello")
}

func TestSendUnknownRecipient(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Send(context.Background(), alice, models.ModePrivate, "stranger@local", "hi")
	require.ErrorIs(t, err, ErrUnknownRecipient)
}

func TestSendUnauthenticated(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Send(context.Background(), Identity{}, models.ModeGlobal, "", "hi")
	require.ErrorIs(t, err, ErrNotParticipant)
}

func TestSendUnknownMode(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Send(context.Background(), alice, "broadcast", "", "hi")
	require.ErrorIs(t, err, ErrValidation)
}

func TestDirectConversationSymmetry(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, alice, models.ModePrivate, bob.Email, "hi")
	require.NoError(t, err)
	_, err = svc.Send(ctx, bob, models.ModePrivate, alice.Email, "hello")
	require.NoError(t, err)

	fromAlice, err := svc.List(ctx, alice.Email, models.ModePrivate, bob.Email, 0)
	require.NoError(t, err)
	fromBob, err := svc.List(ctx, bob.Email, models.ModePrivate, alice.Email, 0)
	require.NoError(t, err)

	require.Len(t, fromAlice, 2)
	assert.Equal(t, fromAlice, fromBob, "both parties see the same conversation")
	assert.Equal(t, "hi", fromAlice[0].Body)
	assert.Equal(t, "hello", fromAlice[1].Body)
}

func TestFIFOCapKeepsLastTen(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		_, err := svc.Send(ctx, alice, models.ModeGlobal, "", fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, alice.Email, models.ModeGlobal, "", 0)
	require.NoError(t, err)
	require.Len(t, got, MaxQueueSize)
	assert.Equal(t, "m3", got[0].Body)
	assert.Equal(t, "m12", got[MaxQueueSize-1].Body)
}

func TestConcurrentSendsRespectCap(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.Send(ctx, alice, models.ModeGlobal, "", fmt.Sprintf("c%d", i)); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	count, err := mem.CountByConversation(ctx, ResolveShared())
	require.NoError(t, err)
	assert.Equal(t, int64(MaxQueueSize), count)
}

func TestDecryptionIsolation(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, alice, models.ModeGlobal, "", "first")
	require.NoError(t, err)

	// A record that was never sealed by our cipher.
	require.NoError(t, mem.Append(ctx, &models.Message{
		ConversationID: ResolveShared(),
		FromID:         bob.Email,
		ToID:           "global",
		Mode:           models.ModeGlobal,
		Content:        "garbage-not-ciphertext",
	}))

	_, err = svc.Send(ctx, alice, models.ModeGlobal, "", "third")
	require.NoError(t, err)

	got, err := svc.List(ctx, alice.Email, models.ModeGlobal, "", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Body)
	assert.Equal(t, crypto.DecryptFailedPlaceholder, got[1].Body)
	assert.Equal(t, "third", got[2].Body)
}

func TestListSinceCursor(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var cursor int64
	for i := 1; i <= 5; i++ {
		echo, err := svc.Send(ctx, alice, models.ModeGlobal, "", fmt.Sprintf("m%d", i))
		require.NoError(t, err)
		if i == 3 {
			cursor = echo.Timestamp
		}
	}

	got, err := svc.List(ctx, alice.Email, models.ModeGlobal, "", cursor)
	require.NoError(t, err)
	for _, m := range got {
		assert.Greater(t, m.Timestamp, cursor)
	}
}

func TestClearConversation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Send(ctx, alice, models.ModePrivate, bob.Email, "x")
		require.NoError(t, err)
	}

	removed, err := svc.Clear(ctx, bob.Email, models.ModePrivate, alice.Email)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	// Idempotent: a second clear finds nothing.
	removed, err = svc.Clear(ctx, alice.Email, models.ModePrivate, bob.Email)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestClearDoesNotTouchOtherConversations(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, alice, models.ModeGlobal, "", "keep me")
	require.NoError(t, err)
	_, err = svc.Send(ctx, alice, models.ModePrivate, bob.Email, "drop me")
	require.NoError(t, err)

	_, err = svc.Clear(ctx, alice.Email, models.ModePrivate, bob.Email)
	require.NoError(t, err)

	global, err := svc.List(ctx, alice.Email, models.ModeGlobal, "", 0)
	require.NoError(t, err)
	require.Len(t, global, 1)
	assert.Equal(t, "keep me", global[0].Body)
}

func TestExportTranscript(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, alice, models.ModeGlobal, "", "hello export")
	require.NoError(t, err)

	text, err := svc.Export(ctx, alice.Email, models.ModeGlobal, "")
	require.NoError(t, err)
	assert.Contains(t, text, "Global Chat")
	assert.Contains(t, text, "hello export")
	assert.Contains(t, text, "Alice")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(text), exportRule))
}

func TestStats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, alice, models.ModeGlobal, "", "one")
	require.NoError(t, err)
	_, err = svc.Send(ctx, alice, models.ModePrivate, bob.Email, "two")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalMessages)
	assert.Equal(t, int64(2), stats.TotalConversations)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, MaxQueueSize, stats.MaxQueueSize)
}
