package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type countingWarmer struct {
	calls atomic.Int32
	err   error
}

func (w *countingWarmer) Warm(context.Context) error {
	w.calls.Add(1)
	return w.err
}

// Первый прогрев сразу, дальше по тикеру, остановка по контексту
func TestStart_RunsImmediatelyAndStops(t *testing.T) {
	w := &countingWarmer{err: errors.New("provider down")} // ошибки не останавливают цикл
	s := NewScheduler(w, 10*time.Millisecond, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for w.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 warm calls, got %d", w.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
