package bot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/flor3z/seraphina-bot/internal/storage"
)

const (
	commandPrefix = "!"

	chatPersona   = "You are Mistress Seraphina, an intelligent, confident personality. Keep replies concise and authoritative."
	chatMaxTokens = 300
)

// dispatchCommand routes prefix commands. It runs for every message after
// the main handler stages, so a failed stage never swallows a command.
func (b *Bot) dispatchCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	if !strings.HasPrefix(m.Content, commandPrefix) {
		return
	}

	name, args := splitCommand(m.Content)
	slog.Debug("Received command", "command", name, "user", m.Author.Username)

	switch name {
	case "chat":
		b.handleChat(s, m, args)
	case "tributes":
		b.handleTributes(s, m)
	}
}

// splitCommand separates a prefixed message into command name and argument
// text. The name is lowercased; the argument keeps its internal spacing.
func splitCommand(content string) (string, string) {
	content = strings.TrimPrefix(content, commandPrefix)
	parts := strings.SplitN(content, " ", 2)

	name := strings.ToLower(strings.TrimSpace(parts[0]))
	args := ""
	if len(parts) == 2 {
		args = strings.TrimSpace(parts[1])
	}
	return name, args
}

// handleChat handles the !chat command: always generate a reply for the
// given text and log the exchange as a synthetic row
func (b *Bot) handleChat(s *discordgo.Session, m *discordgo.MessageCreate, prompt string) {
	if prompt == "" {
		b.sendPublic(s, m.ChannelID, "Usage: `!chat <message>`")
		return
	}

	if err := s.ChannelTyping(m.ChannelID); err != nil {
		slog.Debug("Failed to send typing indicator", "channelID", m.ChannelID, "error", err)
	}

	reply := b.llm.GenerateReply(context.Background(), prompt, chatPersona, chatMaxTokens)

	// Log the command invocation. No source message ID: the row is
	// synthetic and lands with its response already set.
	row := &storage.Message{
		ChannelID:      m.ChannelID,
		GuildID:        nullString(m.GuildID),
		UserID:         m.Author.ID,
		Username:       m.Author.Username,
		Content:        prompt,
		IsTribute:      b.classifier.IsTribute(prompt),
		ProcessedByBot: true,
		BotResponse:    sql.NullString{String: reply, Valid: true},
	}
	if err := b.repo.InsertMessage(row); err != nil {
		slog.Error("Failed to log chat command", "user", m.Author.ID, "error", err)
	}

	b.sendPublic(s, m.ChannelID, reply)
}

// handleTributes handles the owner-only !tributes command, listing the most
// recently flagged messages
func (b *Bot) handleTributes(s *discordgo.Session, m *discordgo.MessageCreate) {
	if b.config.OwnerID == "" || m.Author.ID != b.config.OwnerID {
		return
	}

	messages, err := b.repo.RecentTributes(10)
	if err != nil {
		slog.Error("Failed to list tributes", "error", err)
		b.sendPublic(s, m.ChannelID, "Failed to retrieve tribute log.")
		return
	}

	if len(messages) == 0 {
		b.sendPublic(s, m.ChannelID, "No tribute messages logged yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("**Recent Tribute Messages:**\n\n")
	for idx, msg := range messages {
		sb.WriteString(fmt.Sprintf("%d. `%s` at %s\n", idx+1, msg.Username, msg.Timestamp.UTC().Format("2006-01-02 15:04")))
		sb.WriteString(fmt.Sprintf("   %s\n", msg.Content))
	}

	b.sendPublic(s, m.ChannelID, sb.String())
}
