package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "hourly", spec: "0 * * * *"},
		{name: "every five minutes", spec: "*/5 * * * *"},
		{name: "daily at six", spec: "0 6 * * *"},
		{name: "six fields rejected", spec: "0 0 * * * *", wantErr: true},
		{name: "garbage", spec: "whenever", wantErr: true},
		{name: "empty", spec: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScheduler(tt.spec, func(context.Context) error { return nil })
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}

func TestScheduler_StopUnblocks(t *testing.T) {
	s, err := NewScheduler("59 23 31 12 *", func(context.Context) error { return nil })
	require.NoError(t, err)

	s.Start(context.Background())

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestScheduler_ContextCancelStopsLoop(t *testing.T) {
	s, err := NewScheduler("59 23 31 12 *", func(context.Context) error { return nil })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	// Once the loop has exited on its own, Stop must return without
	// waiting on anything.
	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit on context cancellation")
	}
}
