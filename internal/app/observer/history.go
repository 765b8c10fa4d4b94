package observer

import (
	"sync"

	"github.com/osa030/playerfsm/internal/app/notification"
)

// HistoryConfig holds settings of the history observer.
type HistoryConfig struct {
	Capacity int `mapstructure:"capacity" default:"64" validate:"gte=1,lte=100000"`
}

// History keeps the most recent notifications in memory.
type History struct {
	mu       sync.RWMutex
	entries  []notification.Notification
	next     int
	full     bool
	capacity int
}

// NewHistory creates a history observer.
func NewHistory(settings map[string]any) (*History, error) {
	var cfg HistoryConfig
	if err := decodeSettings(settings, &cfg); err != nil {
		return nil, err
	}
	return &History{
		entries:  make([]notification.Notification, cfg.Capacity),
		capacity: cfg.Capacity,
	}, nil
}

// Send records the notification, evicting the oldest one when full.
func (h *History) Send(n *notification.Notification) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.next] = *n
	h.next = (h.next + 1) % h.capacity
	if h.next == 0 {
		h.full = true
	}
	return nil
}

// Entries returns the recorded notifications, oldest first.
func (h *History) Entries() []notification.Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.full {
		out := make([]notification.Notification, h.next)
		copy(out, h.entries[:h.next])
		return out
	}
	out := make([]notification.Notification, 0, h.capacity)
	out = append(out, h.entries[h.next:]...)
	out = append(out, h.entries[:h.next]...)
	return out
}

// Len returns the number of recorded notifications.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.full {
		return h.capacity
	}
	return h.next
}
