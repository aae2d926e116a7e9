package bot

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/flor3z/seraphina-bot/internal/storage"
)

const (
	// wakeWord addresses the bot without an explicit mention
	wakeWord = "seraphina,"

	replyPersona   = "You are Mistress Seraphina, confident and polite. Keep replies concise, authoritative, and seductive when appropriate."
	replyMaxTokens = 220
)

// handleMessageCreate processes every inbound message. Stages run strictly
// in order and each one contains its own failures: a logging error, a failed
// alert or a failed reply never stops the stages after it.
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore messages from bots, including ourselves
	if m.Author == nil || m.Author.Bot {
		return
	}

	content := m.Content
	isTribute := b.classifier.IsTribute(content)

	// Log the raw message
	row := &storage.Message{
		MessageID: sql.NullString{String: m.ID, Valid: true},
		ChannelID: m.ChannelID,
		GuildID:   nullString(m.GuildID),
		UserID:    m.Author.ID,
		Username:  m.Author.Username,
		Content:   content,
		IsTribute: isTribute,
	}
	if err := b.repo.InsertMessage(row); err != nil {
		slog.Error("Failed to log message", "messageID", m.ID, "error", err)
	}

	if isTribute {
		b.handleTribute(s, m)
	}

	if query, ok := b.extractQuery(s, m); ok && query != "" {
		b.replyTo(s, m, query)
	}

	b.dispatchCommand(s, m)
}

// handleTribute alerts the owner about a flagged message, subject to the
// per-sender cooldown
func (b *Bot) handleTribute(s *discordgo.Session, m *discordgo.MessageCreate) {
	now := time.Now().UTC()
	if !b.limiter.ShouldNotify(m.Author.ID, now) {
		slog.Info("Tribute detected but sender on cooldown", "user", m.Author.Username, "userID", m.Author.ID)
		return
	}

	body := formatTributeAlert(m, b.guildName(s, m.GuildID), now)
	if b.notifyOwner(s, body) {
		slog.Info("Owner notified about tribute", "user", m.Author.Username, "userID", m.Author.ID)
	} else {
		slog.Warn("Could not notify owner about tribute", "user", m.Author.Username)
	}
}

// formatTributeAlert builds the owner DM body for a flagged message
func formatTributeAlert(m *discordgo.MessageCreate, guildName string, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("💰 **Tribute Offer Detected**\n")
	sb.WriteString("From: " + m.Author.Username + " (ID: " + m.Author.ID + ")\n")
	sb.WriteString("Channel: <#" + m.ChannelID + "> (ID: " + m.ChannelID + ")\n")
	sb.WriteString("Guild: " + guildName + "\n")
	sb.WriteString("Time (UTC): " + now.Format(time.RFC3339) + "\n\n")
	sb.WriteString("Message:\n" + m.Content)
	return sb.String()
}

// guildName resolves a guild ID to its display name, falling back to the ID
// when the guild is not in the state cache. Direct messages report "DM".
func (b *Bot) guildName(s *discordgo.Session, guildID string) string {
	if guildID == "" {
		return "DM"
	}
	if g, err := s.State.Guild(guildID); err == nil && g.Name != "" {
		return g.Name
	}
	return guildID
}

// extractQuery decides whether the bot was addressed and returns the user's
// question with the addressing tokens removed. The bot is addressed either
// by an explicit mention or by the wake-word prefix.
func (b *Bot) extractQuery(s *discordgo.Session, m *discordgo.MessageCreate) (string, bool) {
	var botID string
	if s.State != nil && s.State.User != nil {
		botID = s.State.User.ID
	}

	if botID != "" && mentionsUser(m.Mentions, botID) {
		return stripMentions(m.Content, botID), true
	}

	if query, ok := wakeWordQuery(m.Content); ok {
		return query, true
	}

	return "", false
}

// mentionsUser reports whether the mention list contains the given user ID
func mentionsUser(mentions []*discordgo.User, userID string) bool {
	for _, u := range mentions {
		if u != nil && u.ID == userID {
			return true
		}
	}
	return false
}

// stripMentions removes the bot's mention tokens from the text
func stripMentions(content, botID string) string {
	content = strings.ReplaceAll(content, "<@!"+botID+">", "")
	content = strings.ReplaceAll(content, "<@"+botID+">", "")
	return strings.TrimSpace(content)
}

// wakeWordQuery extracts the query from a wake-word-prefixed message.
// The prefix match is case-insensitive on the trimmed text.
func wakeWordQuery(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) < len(wakeWord) || !strings.EqualFold(trimmed[:len(wakeWord)], wakeWord) {
		return "", false
	}
	return strings.TrimSpace(trimmed[len(wakeWord):]), true
}

// replyTo generates and posts a public reply for a message addressed to the
// bot, and records the reply on the message's log row
func (b *Bot) replyTo(s *discordgo.Session, m *discordgo.MessageCreate, query string) {
	if err := s.ChannelTyping(m.ChannelID); err != nil {
		slog.Debug("Failed to send typing indicator", "channelID", m.ChannelID, "error", err)
	}

	reply := b.llm.GenerateReply(context.Background(), query, replyPersona, replyMaxTokens)

	if err := b.repo.SetBotResponse(m.ID, reply); err != nil {
		slog.Error("Failed to record bot response", "messageID", m.ID, "error", err)
	}

	b.sendPublic(s, m.ChannelID, reply)
}

// sendPublic posts content to a channel, allowing direct user mentions but
// suppressing role and @everyone pings
func (b *Bot) sendPublic(s *discordgo.Session, channelID, content string) {
	_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		},
	})
	if err != nil {
		slog.Error("Failed to send public reply", "channelID", channelID, "error", err)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
