package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/models"
)

// SQLiteStore is the default single-file backend for local deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database file.
// If dbPath is empty, defaults to "./data/chatlogger.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/chatlogger.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// initSchema creates tables if they don't exist. seq is the rowid
// autoincrement and doubles as the insertion-order tiebreak.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		conversation_id TEXT NOT NULL,
		from_id TEXT NOT NULL,
		from_name TEXT NOT NULL DEFAULT '',
		from_avatar TEXT NOT NULL DEFAULT '',
		to_id TEXT NOT NULL DEFAULT 'global',
		to_name TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		mode TEXT NOT NULL DEFAULT 'global',
		ts INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		email TEXT PRIMARY KEY,
		google_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		avatar TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_active DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conv_ts ON messages(conversation_id, ts, seq);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Append inserts a message, assigning ID and Timestamp when unset.
func (s *SQLiteStore) Append(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO messages (id, conversation_id, from_id, from_name, from_avatar, to_id, to_name, content, mode, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING seq
	`, msg.ID, msg.ConversationID, msg.FromID, msg.FromName, msg.FromAvatar,
		msg.ToID, msg.ToName, msg.Content, msg.Mode, msg.Timestamp).Scan(&msg.Seq)
	return err
}

// EvictExcess deletes everything older than the newest max messages.
// Count and delete happen in one statement, so two racing senders
// cannot both evict based on a stale count.
func (s *SQLiteStore) EvictExcess(ctx context.Context, conversationID string, max int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM messages
		WHERE conversation_id = ?
		  AND seq IN (
			SELECT seq FROM messages
			WHERE conversation_id = ?
			ORDER BY ts DESC, seq DESC
			LIMIT -1 OFFSET ?
		  )
	`, conversationID, conversationID, max)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Query(ctx context.Context, conversationID string, since int64) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, conversation_id, from_id, from_name, from_avatar, to_id, to_name, content, mode, ts
		FROM messages
		WHERE conversation_id = ? AND ts > ?
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

func (s *SQLiteStore) DeleteConversation(ctx context.Context, conversationID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, conversationID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID).Scan(&count)
	return count, err
}

func (s *SQLiteStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

func (s *SQLiteStore) CountConversations(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT conversation_id) FROM messages`).Scan(&count)
	return count, err
}

// UpsertUser creates or refreshes a participant record.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, google_id, name, avatar, created_at, last_active)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(email) DO UPDATE SET
			google_id = CASE WHEN excluded.google_id != '' THEN excluded.google_id ELSE users.google_id END,
			name = excluded.name,
			avatar = excluded.avatar,
			last_active = CURRENT_TIMESTAMP
	`, user.Email, user.GoogleID, user.Name, user.Avatar)
	return err
}

func (s *SQLiteStore) GetUser(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT email, google_id, name, avatar, created_at, last_active
		FROM users WHERE email = ?
	`, email).Scan(&user.Email, &user.GoogleID, &user.Name, &user.Avatar, &user.CreatedAt, &user.LastActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
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

func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
