package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/models"
)

// PostgresStore is the production backend, backed by a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a pool and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	s := &PostgresStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT UNIQUE NOT NULL,
		conversation_id TEXT NOT NULL,
		from_id TEXT NOT NULL,
		from_name TEXT NOT NULL DEFAULT '',
		from_avatar TEXT NOT NULL DEFAULT '',
		to_id TEXT NOT NULL DEFAULT 'global',
		to_name TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		mode TEXT NOT NULL DEFAULT 'global',
		ts BIGINT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		email TEXT PRIMARY KEY,
		google_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		avatar TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_active TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conv_ts ON messages(conversation_id, ts, seq);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Append inserts a message, assigning ID and Timestamp when unset.
func (s *PostgresStore) Append(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO messages (id, conversation_id, from_id, from_name, from_avatar, to_id, to_name, content, mode, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq
	`, msg.ID, msg.ConversationID, msg.FromID, msg.FromName, msg.FromAvatar,
		msg.ToID, msg.ToName, msg.Content, msg.Mode, msg.Timestamp).Scan(&msg.Seq)
}

// EvictExcess deletes everything older than the newest max messages in
// a single statement, so concurrent writers never evict from a stale
// count.
func (s *PostgresStore) EvictExcess(ctx context.Context, conversationID string, max int) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM messages
		WHERE seq IN (
			SELECT seq FROM messages
			WHERE conversation_id = $1
			ORDER BY ts DESC, seq DESC
			OFFSET $2
		)
	`, conversationID, max)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Query(ctx context.Context, conversationID string, since int64) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT seq, id, conversation_id, from_id, from_name, from_avatar, to_id, to_name, content, mode, ts
		FROM messages
		WHERE conversation_id = $1 AND ts > $2
		ORDER BY ts ASC, seq ASC
	`, conversationID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.Seq, &m.ID, &m.ConversationID, &m.FromID, &m.FromName,
			&m.FromAvatar, &m.ToID, &m.ToName, &m.Content, &m.Mode, &m.Timestamp); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *PostgresStore) DeleteConversation(ctx context.Context, conversationID string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE conversation_id = $1`, conversationID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = $1`, conversationID).Scan(&count)
	return count, err
}

func (s *PostgresStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

func (s *PostgresStore) CountConversations(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(DISTINCT conversation_id) FROM messages`).Scan(&count)
	return count, err
}

// UpsertUser creates or refreshes a participant record.
func (s *PostgresStore) UpsertUser(ctx context.Context, user *models.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (email, google_id, name, avatar)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET
			google_id = CASE WHEN EXCLUDED.google_id != '' THEN EXCLUDED.google_id ELSE users.google_id END,
			name = EXCLUDED.name,
			avatar = EXCLUDED.avatar,
			last_active = NOW()
	`, user.Email, user.GoogleID, user.Name, user.Avatar)
	return err
}

func (s *PostgresStore) GetUser(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		SELECT email, google_id, name, avatar, created_at, last_active
		FROM users WHERE email = $1
	`, email).Scan(&user.Email, &user.GoogleID, &user.Name, &user.Avatar, &user.CreatedAt, &user.LastActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT email, google_id, name, avatar, created_at, last_active
		FROM users ORDER BY email
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Email, &u.GoogleID, &u.Name, &u.Avatar, &u.CreatedAt, &u.LastActive); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
