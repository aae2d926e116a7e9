package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Supervisor keeps the gateway connection alive. Failed connection attempts
// are retried forever with a fixed delay; once a connection is established,
// in-flight recovery is handled by the gateway client's own reconnect logic,
// so the supervisor's job ends there. It stops only on explicit shutdown.
type Supervisor struct {
	bot   *Bot
	delay time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewSupervisor creates a supervisor for the bot's gateway connection
func NewSupervisor(b *Bot, delay time.Duration) *Supervisor {
	return &Supervisor{
		bot:      b,
		delay:    delay,
		stopChan: make(chan struct{}),
	}
}

// Start runs the connect-retry loop until the connection opens or the
// supervisor is stopped. Intended to run on its own goroutine.
func (s *Supervisor) Start(ctx context.Context) {
	s.wg.Add(1)
	defer s.wg.Done()

	for {
		err := s.bot.Start()
		if err == nil {
			return
		}

		slog.Error("Discord connection failed", "error", err)
		slog.Info("Reconnecting", "delay", s.delay)

		select {
		case <-ctx.Done():
			slog.Info("Supervisor stopped (context cancelled)")
			return
		case <-s.stopChan:
			slog.Info("Supervisor stopped")
			return
		case <-time.After(s.delay):
		}
	}
}

// Stop signals the supervisor to stop and waits for it to exit
func (s *Supervisor) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
