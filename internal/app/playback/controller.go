// Package playback drives the player state machine and reports its changes.
package playback

import (
	"context"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playerfsm/internal/app/notification"
	"github.com/osa030/playerfsm/internal/domain/player"
)

// Config holds controller configuration.
type Config struct {
	NotifyNoOps bool // Broadcast events that did not change the state
}

// Notifier receives the state changes produced by the controller.
type Notifier interface {
	Broadcast(ctx context.Context, n *notification.Notification) error
}

// Controller owns a player state machine and forwards its changes to a notifier.
type Controller struct {
	// mu keeps notifications in the same order as the transitions.
	mu       sync.Mutex
	machine  *player.Machine
	notifier Notifier
	config   Config
	now      func() time.Time
}

// NewController creates a controller with a fresh machine in the idle state.
// notifier may be nil.
func NewController(config Config, notifier Notifier) *Controller {
	return &Controller{
		machine:  player.New(),
		notifier: notifier,
		config:   config,
		now:      time.Now,
	}
}

// CurrentState returns the current playback state.
func (c *Controller) CurrentState() player.State {
	return c.machine.CurrentState()
}

// Can reports whether the event would change the current state.
func (c *Controller) Can(event player.Event) bool {
	return c.machine.Can(event)
}

// Send applies the event and returns the resulting state.
// Undefined events leave the state unchanged; notifier failures are logged
// and never affect the state.
func (c *Controller) Send(ctx context.Context, event player.Event) player.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	from, to, changed := c.machine.SendChanged(event)
	if changed {
		zlog.Info().Msgf("player state changed: %s -> %s (event=%s)", from, to, event)
	} else {
		zlog.Debug().Msgf("event ignored: state=%s event=%s", from, event)
	}

	if c.notifier == nil || (!changed && !c.config.NotifyNoOps) {
		return to
	}

	n := &notification.Notification{
		From:  from,
		To:    to,
		Event: event,
		At:    c.now(),
	}
	if err := c.notifier.Broadcast(ctx, n); err != nil {
		zlog.Warn().Msgf("failed to notify state change (seq=%d): %v", n.SequenceNo, err)
	}
	return to
}

// Replay sends the events in order and returns the state after each one.
// It stops early when ctx is done.
func (c *Controller) Replay(ctx context.Context, events []player.Event) []player.State {
	states := make([]player.State, 0, len(events))
	for _, e := range events {
		if ctx.Err() != nil {
			zlog.Debug().Msgf("replay cancelled after %d of %d events", len(states), len(events))
			break
		}
		states = append(states, c.Send(ctx, e))
	}
	return states
}
