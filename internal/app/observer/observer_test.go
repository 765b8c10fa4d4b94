package observer

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/playerfsm/internal/app/notification"
	"github.com/osa030/playerfsm/internal/domain/player"
	"github.com/osa030/playerfsm/internal/infra/config"
)

func notif(seq uint64, from, to player.State, e player.Event) *notification.Notification {
	return &notification.Notification{SequenceNo: seq, From: from, To: to, Event: e, At: time.Unix(0, 0)}
}

func TestNewFromConfig(t *testing.T) {
	observers, err := NewFromConfig([]config.ObserverConfig{
		{Type: TypeLog},
		{Type: TypeHistory, Settings: map[string]any{"capacity": 3}},
	})
	require.NoError(t, err)
	require.Len(t, observers, 2)

	assert.Equal(t, TypeLog, observers[0].Type)
	assert.IsType(t, &LogStream{}, observers[0].Stream)

	h, ok := observers[1].Stream.(*History)
	require.True(t, ok)
	assert.Equal(t, 3, h.capacity)
}

func TestNewFromConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		cfgs   []config.ObserverConfig
		errMsg string
	}{
		{
			name:   "unknown type",
			cfgs:   []config.ObserverConfig{{Type: "webhook"}},
			errMsg: "unsupported observer type: webhook",
		},
		{
			name:   "invalid log level",
			cfgs:   []config.ObserverConfig{{Type: TypeLog, Settings: map[string]any{"level": "loud"}}},
			errMsg: "validation failed",
		},
		{
			name:   "negative capacity",
			cfgs:   []config.ObserverConfig{{Type: TypeHistory, Settings: map[string]any{"capacity": -1}}},
			errMsg: "validation failed",
		},
		{
			name:   "undecodable capacity",
			cfgs:   []config.ObserverConfig{{Type: TypeHistory, Settings: map[string]any{"capacity": "many"}}},
			errMsg: "failed to decode settings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFromConfig(tt.cfgs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestHistory_DefaultCapacity(t *testing.T) {
	h, err := NewHistory(nil)
	require.NoError(t, err)
	assert.Equal(t, 64, h.capacity)
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Entries())
}

func TestHistory_Ring(t *testing.T) {
	h, err := NewHistory(map[string]any{"capacity": 2})
	require.NoError(t, err)

	require.NoError(t, h.Send(notif(1, player.StateIdle, player.StatePlayingBegin, player.EventPlayBegin)))
	entries := h.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(1), entries[0].SequenceNo)

	require.NoError(t, h.Send(notif(2, player.StatePlayingBegin, player.StatePlaying, player.EventPlay)))
	require.NoError(t, h.Send(notif(3, player.StatePlaying, player.StatePaused, player.EventPause)))

	entries = h.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(2), entries[0].SequenceNo)
	assert.Equal(t, uint64(3), entries[1].SequenceNo)
	assert.Equal(t, 2, h.Len())
}

func TestLogStream_Send(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	s := &LogStream{logger: &l, level: zerolog.WarnLevel}

	require.NoError(t, s.Send(notif(7, player.StatePlaying, player.StatePlayingBegin, player.EventPlayBegin)))

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"seq":7`)
	assert.Contains(t, out, `"from":"playing"`)
	assert.Contains(t, out, `"to":"playingBegin"`)
	assert.Contains(t, out, `"event":"PLAY_BEGIN"`)
	assert.Contains(t, out, `"changed":true`)
}
