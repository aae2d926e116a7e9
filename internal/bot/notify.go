package bot

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// notifyOwner delivers an alert to the configured owner via direct message.
// All failure modes (no owner configured, owner not resolvable, send
// rejected) are logged and reported as false; nothing propagates.
func (b *Bot) notifyOwner(s *discordgo.Session, body string) bool {
	if b.config.OwnerID == "" {
		slog.Warn("OWNER_ID not configured, dropping alert")
		return false
	}

	channelID, err := b.ownerDMChannelID(s)
	if err != nil {
		slog.Error("Failed to resolve owner DM channel", "ownerID", b.config.OwnerID, "error", err)
		return false
	}

	if _, err := s.ChannelMessageSend(channelID, body); err != nil {
		slog.Error("Failed to DM owner", "ownerID", b.config.OwnerID, "error", err)
		return false
	}

	return true
}

// ownerDMChannelID returns the owner's DM channel, using the cached ID when
// available and fetching it from Discord otherwise
func (b *Bot) ownerDMChannelID(s *discordgo.Session) (string, error) {
	b.dmMu.Lock()
	defer b.dmMu.Unlock()

	if b.ownerDMChannel != "" {
		return b.ownerDMChannel, nil
	}

	ch, err := s.UserChannelCreate(b.config.OwnerID)
	if err != nil {
		return "", err
	}

	b.ownerDMChannel = ch.ID
	return ch.ID, nil
}
