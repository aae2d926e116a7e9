package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Repository handles all database operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new repository with SQLite
func NewRepository(dbPath string) (*Repository, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the database schema
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message_id TEXT,
			channel_id TEXT NOT NULL,
			guild_id TEXT,
			user_id TEXT NOT NULL,
			username TEXT NOT NULL,
			content TEXT NOT NULL,
			is_tribute INTEGER NOT NULL DEFAULT 0,
			processed_by_bot INTEGER NOT NULL DEFAULT 0,
			bot_response TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// InsertMessage appends a new message row and sets its surrogate ID
func (r *Repository) InsertMessage(m *Message) error {
	result, err := r.db.Exec(
		`INSERT INTO messages (message_id, channel_id, guild_id, user_id, username, content, is_tribute, processed_by_bot, bot_response)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.MessageID, m.ChannelID, m.GuildID, m.UserID, m.Username, m.Content,
		boolToInt(m.IsTribute), boolToInt(m.ProcessedByBot), m.BotResponse,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// SetBotResponse records the generated reply for the row matching the given
// Discord message ID. The processed_by_bot guard makes the transition
// one-shot: a row that already has a response is never touched again.
func (r *Repository) SetBotResponse(messageID, response string) error {
	_, err := r.db.Exec(
		`UPDATE messages SET bot_response = ?, processed_by_bot = 1
		 WHERE message_id = ? AND processed_by_bot = 0`,
		response, messageID,
	)
	return err
}

// GetByMessageID finds a row by its Discord message ID
func (r *Repository) GetByMessageID(messageID string) (*Message, error) {
	m := &Message{}
	err := r.db.QueryRow(
		`SELECT id, message_id, channel_id, guild_id, user_id, username, content, is_tribute, processed_by_bot, bot_response, timestamp
		 FROM messages WHERE message_id = ?`,
		messageID,
	).Scan(&m.ID, &m.MessageID, &m.ChannelID, &m.GuildID, &m.UserID, &m.Username,
		&m.Content, &m.IsTribute, &m.ProcessedByBot, &m.BotResponse, &m.Timestamp)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecentTributes returns the most recently flagged messages, newest first
func (r *Repository) RecentTributes(limit int) ([]*Message, error) {
	rows, err := r.db.Query(
		`SELECT id, message_id, channel_id, guild_id, user_id, username, content, is_tribute, processed_by_bot, bot_response, timestamp
		 FROM messages WHERE is_tribute = 1 ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(&m.ID, &m.MessageID, &m.ChannelID, &m.GuildID, &m.UserID, &m.Username,
			&m.Content, &m.IsTribute, &m.ProcessedByBot, &m.BotResponse, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// CountBySender returns how many messages have been logged for a sender
func (r *Repository) CountBySender(userID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM messages WHERE user_id = ?`,
		userID,
	).Scan(&count)
	return count, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
