package storage

import (
	"database/sql"
	"time"
)

// Message represents one observed chat message or command invocation.
// Rows are append-only: only BotResponse/ProcessedByBot may change after
// insert, and only once.
type Message struct {
	ID             int64
	MessageID      sql.NullString // null for synthetic command-originated rows
	ChannelID      string
	GuildID        sql.NullString // null for direct messages
	UserID         string
	Username       string
	Content        string
	IsTribute      bool
	ProcessedByBot bool
	BotResponse    sql.NullString
	Timestamp      time.Time
}
