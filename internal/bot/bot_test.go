package bot

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flor3z/seraphina-bot/internal/classifier"
	"github.com/flor3z/seraphina-bot/internal/config"
	"github.com/flor3z/seraphina-bot/internal/limiter"
	"github.com/flor3z/seraphina-bot/internal/llm"
	"github.com/flor3z/seraphina-bot/internal/storage"
)

// fakeDiscord intercepts the session's REST calls so handler tests run
// without a network
type fakeDiscord struct {
	mu               sync.Mutex
	dmChannelCreates int
	sentMessages     map[string][]string // channel ID -> message contents
}

func newFakeDiscord() *fakeDiscord {
	return &fakeDiscord{sentMessages: make(map[string][]string)}
}

func (f *fakeDiscord) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := req.URL.Path
	switch {
	case strings.HasSuffix(path, "/users/@me/channels"):
		f.dmChannelCreates++
		return jsonResponse(http.StatusOK, `{"id":"dm-chan","type":1}`), nil

	case strings.HasSuffix(path, "/typing"):
		return jsonResponse(http.StatusNoContent, ``), nil

	case strings.HasSuffix(path, "/messages"):
		// /api/vN/channels/<id>/messages
		parts := strings.Split(strings.Trim(path, "/"), "/")
		channelID := parts[len(parts)-2]

		var payload struct {
			Content string `json:"content"`
		}
		body, _ := io.ReadAll(req.Body)
		json.Unmarshal(body, &payload)

		f.sentMessages[channelID] = append(f.sentMessages[channelID], payload.Content)
		return jsonResponse(http.StatusOK, `{"id":"sent-1"}`), nil
	}

	return jsonResponse(http.StatusNotFound, `{}`), nil
}

func (f *fakeDiscord) sentTo(channelID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sentMessages[channelID]...)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestBot(t *testing.T, fake *fakeDiscord, llmReply string) *Bot {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": llmReply}},
			},
		})
	}))
	t.Cleanup(srv.Close)

	session, err := discordgo.New("Bot test-token")
	require.NoError(t, err)
	session.Client = &http.Client{Transport: fake}
	session.State.User = &discordgo.User{ID: "bot-1", Username: "Seraphina", Bot: true}

	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	lim, err := limiter.New(300*time.Second, 64)
	require.NoError(t, err)

	return &Bot{
		config:     &config.Config{OwnerID: "owner-1"},
		session:    session,
		repo:       repo,
		classifier: classifier.Default(),
		limiter:    lim,
		llm:        llm.NewClientWithBaseURL("test-key", srv.URL, "gpt-4o-mini", 5*time.Second),
	}
}

func inboundMessage(id, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{
		Message: &discordgo.Message{
			ID:        id,
			ChannelID: "chan-1",
			GuildID:   "guild-1",
			Content:   content,
			Author:    &discordgo.User{ID: "user-1", Username: "sender"},
		},
	}
}

func TestHandleMessageCreate_TributeFlow(t *testing.T) {
	fake := newFakeDiscord()
	b := newTestBot(t, fake, "unused")

	b.handleMessageCreate(b.session, inboundMessage("msg-1", "cashapp me $20"))

	// Exactly one row, flagged
	rows, err := b.repo.RecentTributes(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsTribute)
	assert.Equal(t, "cashapp me $20", rows[0].Content)

	// Exactly one owner DM
	assert.Equal(t, 1, fake.dmChannelCreates)
	alerts := fake.sentTo("dm-chan")
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0], "Tribute Offer Detected")
	assert.Contains(t, alerts[0], "cashapp me $20")

	// Not addressed, so no public reply
	assert.Empty(t, fake.sentTo("chan-1"))
}

func TestHandleMessageCreate_TributeCooldown(t *testing.T) {
	fake := newFakeDiscord()
	b := newTestBot(t, fake, "unused")

	b.handleMessageCreate(b.session, inboundMessage("msg-1", "cashapp me $20"))
	b.handleMessageCreate(b.session, inboundMessage("msg-2", "venmo works too"))

	// Both messages logged, but only the first alerted
	rows, err := b.repo.RecentTributes(10)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Len(t, fake.sentTo("dm-chan"), 1)
}

func TestHandleMessageCreate_WakeWordReply(t *testing.T) {
	fake := newFakeDiscord()
	b := newTestBot(t, fake, "Four, naturally.")

	b.handleMessageCreate(b.session, inboundMessage("msg-1", "Seraphina, what is 2+2?"))

	sent := fake.sentTo("chan-1")
	require.Len(t, sent, 1)
	assert.Equal(t, "Four, naturally.", sent[0])

	row, err := b.repo.GetByMessageID("msg-1")
	require.NoError(t, err)
	assert.True(t, row.ProcessedByBot)
	assert.Equal(t, "Four, naturally.", row.BotResponse.String)
}

func TestHandleMessageCreate_MentionReply(t *testing.T) {
	fake := newFakeDiscord()
	b := newTestBot(t, fake, "Hello yourself.")

	m := inboundMessage("msg-1", "<@bot-1> hello")
	m.Mentions = []*discordgo.User{{ID: "bot-1"}}

	b.handleMessageCreate(b.session, m)

	sent := fake.sentTo("chan-1")
	require.Len(t, sent, 1)
	assert.Equal(t, "Hello yourself.", sent[0])
}

func TestHandleMessageCreate_IgnoresBots(t *testing.T) {
	fake := newFakeDiscord()
	b := newTestBot(t, fake, "unused")

	m := inboundMessage("msg-1", "cashapp me $20")
	m.Author.Bot = true

	b.handleMessageCreate(b.session, m)

	rows, err := b.repo.RecentTributes(10)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Zero(t, fake.dmChannelCreates)
}

func TestHandleMessageCreate_ChatCommand(t *testing.T) {
	fake := newFakeDiscord()
	b := newTestBot(t, fake, "A story, then.")

	b.handleMessageCreate(b.session, inboundMessage("msg-1", "!chat tell me a story"))

	sent := fake.sentTo("chan-1")
	require.Len(t, sent, 1)
	assert.Equal(t, "A story, then.", sent[0])

	// Two rows: the observed message and the synthetic command row
	count, err := b.repo.CountBySender("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestHandleTributes_OwnerOnly(t *testing.T) {
	fake := newFakeDiscord()
	b := newTestBot(t, fake, "unused")

	b.handleMessageCreate(b.session, inboundMessage("msg-1", "!tributes"))

	// Sender is not the owner, so the command is silently ignored
	assert.Empty(t, fake.sentTo("chan-1"))
}
