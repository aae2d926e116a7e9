package bot

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/flor3z/seraphina-bot/internal/classifier"
	"github.com/flor3z/seraphina-bot/internal/config"
	"github.com/flor3z/seraphina-bot/internal/limiter"
	"github.com/flor3z/seraphina-bot/internal/llm"
	"github.com/flor3z/seraphina-bot/internal/storage"
)

// Bot represents the Discord bot instance
type Bot struct {
	config     *config.Config
	session    *discordgo.Session
	repo       *storage.Repository
	classifier *classifier.Classifier
	limiter    *limiter.Limiter
	llm        *llm.Client

	// Cached owner DM channel, resolved lazily on first alert
	dmMu           sync.Mutex
	ownerDMChannel string
}

// New creates a new Bot instance
func New(cfg *config.Config) (*Bot, error) {
	// Create Discord session
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Set intents; MessageContent is required to read message text
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	// Initialize storage
	repo, err := storage.NewRepository(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	lim, err := limiter.New(
		time.Duration(cfg.TributeCooldownSeconds)*time.Second,
		cfg.CooldownCacheSize,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification limiter: %w", err)
	}

	b := &Bot{
		config:     cfg,
		session:    session,
		repo:       repo,
		classifier: classifier.Default(),
		limiter:    lim,
		llm:        llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, time.Duration(cfg.ReplyTimeoutSeconds)*time.Second),
	}

	// Register event handlers
	b.registerHandlers()

	return b, nil
}

// Start opens the Discord connection
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	slog.Info("Connected to Discord", "user", b.session.State.User.Username)
	return nil
}

// Stop gracefully shuts down the bot
func (b *Bot) Stop() error {
	// Close storage
	if b.repo != nil {
		b.repo.Close()
	}

	// Close Discord session
	if b.session != nil {
		return b.session.Close()
	}

	return nil
}

// registerHandlers sets up Discord event handlers
func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleMessageCreate)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("Bot is ready", "user", r.User.Username, "id", r.User.ID, "guilds", len(r.Guilds))
	})
}
