package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/models"
)

// RedisStore keeps the message log in Redis sorted sets, scored by the
// message timestamp. It implements MessageStore only; user records stay
// in the SQL plane.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed message store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying connection for the rate limiter.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// conversationKey returns the key for a conversation's message sorted set.
func conversationKey(conversationID string) string {
	return fmt.Sprintf("conv:%s:messages", conversationID)
}

// conversationSeqKey returns the key for a conversation's insertion counter.
func conversationSeqKey(conversationID string) string {
	return fmt.Sprintf("conv:%s:seq", conversationID)
}

// Append stores a message, assigning ID, Timestamp and Seq when unset.
func (s *RedisStore) Append(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	if msg.Seq == 0 {
		seq, err := s.client.Incr(ctx, conversationSeqKey(msg.ConversationID)).Result()
		if err != nil {
			return err
		}
		msg.Seq = seq
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// Equal scores fall back to lexical member order; the member JSON
	// leads with the ULID, which sorts by creation time.
	return s.client.ZAdd(ctx, conversationKey(msg.ConversationID), redis.Z{
		Score:  float64(msg.Timestamp),
		Member: string(data),
	}).Err()
}

// EvictExcess trims a conversation to its newest max messages.
// ZREMRANGEBYRANK is a single server-side operation, so concurrent
// appends cannot interleave with a stale count.
func (s *RedisStore) EvictExcess(ctx context.Context, conversationID string, max int) (int64, error) {
	return s.client.ZRemRangeByRank(ctx, conversationKey(conversationID), 0, int64(-(max + 1))).Result()
}

func (s *RedisStore) Query(ctx context.Context, conversationID string, since int64) ([]models.Message, error) {
	min := "-inf"
	if since > 0 {
		min = "(" + strconv.FormatInt(since, 10) // exclusive
	}

	results, err := s.client.ZRangeByScore(ctx, conversationKey(conversationID), &redis.ZRangeBy{
		Min: min,
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}

	msgs := make([]models.Message, 0, len(results))
	for _, data := range results {
		var m models.Message
		if err := json.Unmarshal([]byte(data), &m); err != nil {
			continue
		}
		m.ConversationID = conversationID
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// DeleteConversation removes the whole sorted set in one transaction
// and reports how many members it held.
func (s *RedisStore) DeleteConversation(ctx context.Context, conversationID string) (int64, error) {
	key := conversationKey(conversationID)

	pipe := s.client.TxPipeline()
	card := pipe.ZCard(ctx, key)
	pipe.Del(ctx, key, conversationSeqKey(conversationID))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return card.Val(), nil
}

func (s *RedisStore) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	return s.client.ZCard(ctx, conversationKey(conversationID)).Result()
}

func (s *RedisStore) CountMessages(ctx context.Context) (int64, error) {
	var total int64
	err := s.scanConversations(ctx, func(key string) error {
		n, err := s.client.ZCard(ctx, key).Result()
		if err != nil {
			return err
		}
		total += n
		return nil
	})
	return total, err
}

func (s *RedisStore) CountConversations(ctx context.Context) (int64, error) {
	var total int64
	err := s.scanConversations(ctx, func(key string) error {
		total++
		return nil
	})
	return total, err
}

func (s *RedisStore) scanConversations(ctx context.Context, fn func(key string) error) error {
	iter := s.client.Scan(ctx, 0, "conv:*:messages", 0).Iterator()
	for iter.Next(ctx) {
		if err := fn(iter.Val()); err != nil {
			return err
		}
	}
	return iter.Err()
}

// rateLimitKey returns the key for a sender's rate limit counter.
func rateLimitKey(senderID string) string {
	return fmt.Sprintf("ratelimit:%s", senderID)
}

// CheckRateLimit reports whether a sender is under the limit.
func (s *RedisStore) CheckRateLimit(ctx context.Context, senderID string, limit int) (bool, error) {
	count, err := s.client.Get(ctx, rateLimitKey(senderID)).Int()
	if err != nil && err != redis.Nil {
		return false, err
	}
	return count < limit, nil
}

// IncrementRateLimit bumps the sender's counter and refreshes its window.
func (s *RedisStore) IncrementRateLimit(ctx context.Context, senderID string, window time.Duration) error {
	pipe := s.client.Pipeline()
	pipe.Incr(ctx, rateLimitKey(senderID))
	pipe.Expire(ctx, rateLimitKey(senderID), window)
	_, err := pipe.Exec(ctx)
	return err
}
