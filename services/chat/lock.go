package chat

import (
	"context"
	"sync"
)

// LocalTurnLocker is an in-process keyed mutex. Entries are dropped once no
// turn holds or waits for them.
type LocalTurnLocker struct {
	mu    sync.Mutex
	slots map[string]*turnSlot
}

type turnSlot struct {
	ch   chan struct{}
	refs int
}

// NewLocalTurnLocker returns an empty in-process locker.
func NewLocalTurnLocker() *LocalTurnLocker {
	return &LocalTurnLocker{slots: make(map[string]*turnSlot)}
}

// Lock blocks until userID is free or ctx is done.
func (l *LocalTurnLocker) Lock(ctx context.Context, userID string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[userID]
	if !ok {
		slot = &turnSlot{ch: make(chan struct{}, 1)}
		l.slots[userID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(userID, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.release(userID, slot)
		})
	}, nil
}

func (l *LocalTurnLocker) release(userID string, slot *turnSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, userID)
	}
}

// NoopTurnLocker performs no coordination; the versioned save still rejects
// a losing concurrent turn.
type NoopTurnLocker struct{}

func (NoopTurnLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
