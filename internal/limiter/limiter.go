// Package limiter rate-limits owner notifications per sender.
package limiter

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Limiter enforces a minimum interval between notifications for the same
// sender. State lives in a bounded LRU so memory stays flat no matter how
// many distinct senders are ever seen; evicting a stale sender only means
// the next tribute from them notifies immediately, which is harmless.
type Limiter struct {
	cooldown time.Duration
	recent   *lru.Cache[string, time.Time]
}

// New creates a Limiter that allows one notification per sender per cooldown
// interval, remembering at most maxSenders senders.
func New(cooldown time.Duration, maxSenders int) (*Limiter, error) {
	recent, err := lru.New[string, time.Time](maxSenders)
	if err != nil {
		return nil, err
	}
	return &Limiter{cooldown: cooldown, recent: recent}, nil
}

// ShouldNotify reports whether a notification for senderID may be sent at
// now. When it returns true it also records now as the sender's last
// notification time in the same call, so check and update cannot be torn
// apart. A false result changes nothing.
func (l *Limiter) ShouldNotify(senderID string, now time.Time) bool {
	if last, ok := l.recent.Get(senderID); ok {
		if now.Sub(last) < l.cooldown {
			return false
		}
	}
	l.recent.Add(senderID, now)
	return true
}

// Len returns the number of senders currently tracked
func (l *Limiter) Len() int {
	return l.recent.Len()
}
