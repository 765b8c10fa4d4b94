package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/playerfsm/internal/domain/player"
)

type recordingStream struct {
	mu       sync.Mutex
	received []*Notification
	err      error
	delay    time.Duration
}

func (s *recordingStream) Send(n *Notification) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, n)
	return s.err
}

func (s *recordingStream) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

func change() *Notification {
	return &Notification{
		From:  player.StateIdle,
		To:    player.StatePlayingBegin,
		Event: player.EventPlayBegin,
		At:    time.Now(),
	}
}

func TestManager_SubscribeUnsubscribe(t *testing.T) {
	m := NewManager(0)
	assert.Equal(t, 0, m.SubscriberCount())

	id1 := m.Subscribe(&recordingStream{})
	id2 := m.Subscribe(&recordingStream{})
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, m.SubscriberCount())

	m.Unsubscribe(id1)
	assert.Equal(t, 1, m.SubscriberCount())

	m.Close()
	assert.Equal(t, 0, m.SubscriberCount())
}

func TestManager_Broadcast(t *testing.T) {
	m := NewManager(time.Second)
	s1 := &recordingStream{}
	s2 := &recordingStream{}
	m.Subscribe(s1)
	m.Subscribe(s2)

	require.NoError(t, m.Broadcast(context.Background(), change()))
	require.NoError(t, m.Broadcast(context.Background(), change()))

	assert.Equal(t, 2, s1.count())
	assert.Equal(t, 2, s2.count())
	assert.Equal(t, uint64(1), s1.received[0].SequenceNo)
	assert.Equal(t, uint64(2), s1.received[1].SequenceNo)
}

func TestManager_BroadcastReportsFailures(t *testing.T) {
	m := NewManager(50 * time.Millisecond)
	ok := &recordingStream{}
	failing := &recordingStream{err: errors.New("closed")}
	slow := &recordingStream{delay: 300 * time.Millisecond}
	m.Subscribe(ok)
	m.Subscribe(failing)
	m.Subscribe(slow)

	err := m.Broadcast(context.Background(), change())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
	assert.Equal(t, 1, ok.count())
}

func TestManager_BroadcastTimeout(t *testing.T) {
	m := NewManager(20 * time.Millisecond)
	m.Subscribe(&recordingStream{delay: 200 * time.Millisecond})

	err := m.Broadcast(context.Background(), change())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSendTimeout))
}

func TestManager_Send(t *testing.T) {
	m := NewManager(0)
	s := &recordingStream{}
	id := m.Subscribe(s)

	require.NoError(t, m.Send(id, change()))
	require.NoError(t, m.Send("missing", change()))
	assert.Equal(t, 1, s.count())
}

func TestManager_SequenceNoMonotonic(t *testing.T) {
	m := NewManager(0)
	var last uint64
	for i := 0; i < 10; i++ {
		next := m.NextSequenceNo()
		assert.Greater(t, next, last)
		last = next
	}
}

func TestStreamFunc(t *testing.T) {
	var got *Notification
	s := StreamFunc(func(n *Notification) error {
		got = n
		return nil
	})
	n := change()
	require.NoError(t, s.Send(n))
	assert.Same(t, n, got)
	assert.True(t, n.Changed())
}
