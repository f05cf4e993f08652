package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/crypto"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/metrics"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/models"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/store"
)

// MaxQueueSize is the FIFO retention cap: each conversation keeps at
// most this many messages, oldest evicted first.
const MaxQueueSize = 10

// Identity is the authenticated caller, as established by the auth
// layer. Name and Avatar are snapshotted onto sent messages.
type Identity struct {
	Email  string
	Name   string
	Avatar string
}

// ChatMessage is a message on the API surface, body in plaintext.
type ChatMessage struct {
	ID         string `json:"_id"`
	From       string `json:"from"`
	FromName   string `json:"fromName"`
	FromAvatar string `json:"fromAvatar,omitempty"`
	To         string `json:"to"`
	ToName     string `json:"toName,omitempty"`
	Body       string `json:"content"`
	Mode       string `json:"chatType"`
	Timestamp  int64  `json:"timestamp"`
}

// Stats summarizes the whole store for the stats endpoint.
type Stats struct {
	TotalMessages      int64 `json:"totalMessages"`
	TotalUsers         int64 `json:"totalUsers"`
	TotalConversations int64 `json:"totalConversations"`
	AvgQueueSize       int64 `json:"avgQueueSize"`
	MaxQueueSize       int   `json:"maxQueueSize"`
}

// Service orchestrates cipher, conversation keys and the message
// store. It holds no per-request state and is safe for concurrent use.
type Service struct {
	msgs   store.MessageStore
	users  store.UserStore
	cipher *crypto.Cipher
	log    zerolog.Logger
}

// NewService wires the message service.
func NewService(msgs store.MessageStore, users store.UserStore, cipher *crypto.Cipher, log zerolog.Logger) *Service {
	return &Service{msgs: msgs, users: users, cipher: cipher, log: log}
}

// resolveFor maps (requester, mode, with) to the canonical conversation
// key. A requester is always one side of a direct pair, so they can
// never resolve a conversation they are not a party to.
func (s *Service) resolveFor(requester, mode, with string) (string, error) {
	if requester == "" {
		return "", ErrNotParticipant
	}
	switch mode {
	case models.ModeGlobal:
		return ResolveShared(), nil
	case models.ModePrivate:
		return ResolveDirect(requester, with)
	default:
		return "", fmt.Errorf("%w: unknown chat type %q", ErrValidation, mode)
	}
}

func normalizeMode(mode string) string {
	if mode == "" {
		return models.ModeGlobal
	}
	return mode
}

// Send validates, encrypts and appends one message, then trims the
// conversation to the cap. The returned record echoes the plaintext
// that was sent; it is never re-decrypted from the store.
func (s *Service) Send(ctx context.Context, sender Identity, mode, to, body string) (*ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: empty message", ErrValidation)
	}

	mode = normalizeMode(mode)
	toName := ""
	if mode == models.ModePrivate {
		if to == "" {
			return nil, fmt.Errorf("%w: direct message needs a recipient", ErrValidation)
		}
		recipient, err := s.users.GetUser(ctx, to)
		if err != nil {
			return nil, err
		}
		if recipient == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRecipient, to)
		}
		toName = recipient.Name
	} else {
		to = "global"
	}

	conversationID, err := s.resolveFor(sender.Email, mode, to)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpsertUser(ctx, &models.User{
		Email:  sender.Email,
		Name:   sender.Name,
		Avatar: sender.Avatar,
	}); err != nil {
		return nil, err
	}

	ciphertext, err := s.cipher.Encrypt(body)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conversationID,
		FromID:         sender.Email,
		FromName:       sender.Name,
		FromAvatar:     sender.Avatar,
		ToID:           to,
		ToName:         toName,
		Content:        ciphertext,
		Mode:           mode,
	}
	if err := s.msgs.Append(ctx, msg); err != nil {
		return nil, err
	}

	evicted, err := s.msgs.EvictExcess(ctx, conversationID, MaxQueueSize)
	if err != nil {
		// The message is stored; a failed trim only delays eviction
		// until the next send into this conversation.
		s.log.Error().Err(err).Str("conversation", conversationID).Msg("eviction failed")
	} else if evicted > 0 {
		metrics.MessagesEvicted.Add(float64(evicted))
	}
	metrics.MessagesSent.WithLabelValues(mode).Inc()

	return &ChatMessage{
		ID:         msg.ID,
		From:       msg.FromID,
		FromName:   msg.FromName,
		FromAvatar: msg.FromAvatar,
		To:         msg.ToID,
		ToName:     msg.ToName,
		Body:       body,
		Mode:       mode,
		Timestamp:  msg.Timestamp,
	}, nil
}

// List returns a conversation's messages ascending by time, decrypting
// each record independently. One undecryptable record renders as the
// placeholder and never fails the listing.
func (s *Service) List(ctx context.Context, requester, mode, with string, since int64) ([]ChatMessage, error) {
	mode = normalizeMode(mode)
	conversationID, err := s.resolveFor(requester, mode, with)
	if err != nil {
		return nil, err
	}

	stored, err := s.msgs.Query(ctx, conversationID, since)
	if err != nil {
		return nil, err
	}

	out := make([]ChatMessage, 0, len(stored))
	for _, m := range stored {
		body := s.cipher.Decrypt(m.Content)
		if body == crypto.DecryptFailedPlaceholder {
			metrics.DecryptFailures.Inc()
			s.log.Warn().Str("message_id", m.ID).Msg("undecryptable message")
		}
		out = append(out, ChatMessage{
			ID:         m.ID,
			From:       m.FromID,
			FromName:   m.FromName,
			FromAvatar: m.FromAvatar,
			To:         m.ToID,
			ToName:     m.ToName,
			Body:       body,
			Mode:       m.Mode,
			Timestamp:  m.Timestamp,
		})
	}
	return out, nil
}

// Clear deletes a whole conversation and reports how many messages
// were removed. Clearing an empty conversation removes zero.
func (s *Service) Clear(ctx context.Context, requester, mode, with string) (int64, error) {
	mode = normalizeMode(mode)
	conversationID, err := s.resolveFor(requester, mode, with)
	if err != nil {
		return 0, err
	}
	return s.msgs.DeleteConversation(ctx, conversationID)
}

// Users lists all known participants.
func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

// Stats returns store-wide totals.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	totalMessages, err := s.msgs.CountMessages(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	totalConvs, err := s.msgs.CountConversations(ctx)
	if err != nil {
		return nil, err
	}

	var avg int64
	if totalConvs > 0 {
		avg = totalMessages / totalConvs
	}
	return &Stats{
		TotalMessages:      totalMessages,
		TotalUsers:         totalUsers,
		TotalConversations: totalConvs,
		AvgQueueSize:       avg,
		MaxQueueSize:       MaxQueueSize,
	}, nil
}
