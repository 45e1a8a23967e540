package utils

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestHealthMonitorCheck(t *testing.T) {
	m := NewHealthMonitor(time.Minute, zap.NewNop())
	assert.True(t, m.Status().Healthy)

	m.Register("mongo", func(context.Context) error { return nil })
	m.Register("redis", func(context.Context) error { return errors.New("connection refused") })

	st := m.Check(context.Background())
	assert.False(t, st.Healthy)
	assert.Equal(t, map[string]bool{"mongo": true, "redis": false}, st.Dependencies)
	assert.Equal(t, st, m.Status())
}

func TestHealthMonitorStartRechecks(t *testing.T) {
	var calls atomic.Int32
	m := NewHealthMonitor(10*time.Millisecond, zap.NewNop())
	m.Register("redis", func(context.Context) error {
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, m.Status().Healthy)
}
