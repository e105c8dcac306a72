package monitoring

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (p *fakePinger) Ping(context.Context) error { return p.err }

func TestCheckHealth(t *testing.T) {
	healthy := &atomic.Bool{}
	healthy.Store(true)
	p := &fakePinger{err: errors.New("connection refused")}

	assert.False(t, CheckHealth(context.Background(), "valkey", p, healthy))
	assert.False(t, healthy.Load())

	p.err = nil
	assert.True(t, CheckHealth(context.Background(), "valkey", p, healthy))
	assert.True(t, healthy.Load())
}

func TestMonitorStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		MonitorValkeyHealth(ctx, &fakePinger{}, &atomic.Bool{})
		close(done)
	}()
	<-done
}
