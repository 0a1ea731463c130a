package lifecycle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/formscout/pkg/lifecycle"
)

func TestReadiness(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Fatal("ready before WaitForStartup")
	}

	lc.WaitForStartup()
	if !lc.Ready() {
		t.Fatal("not ready after WaitForStartup")
	}

	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if lc.Ready() {
		t.Error("still ready after Shutdown")
	}
}

func TestStartupHooksRunBeforeReady(t *testing.T) {
	lc := lifecycle.New()

	var pool, container atomic.Bool
	lc.OnStartup(func() {
		time.Sleep(20 * time.Millisecond)
		pool.Store(true)
	})
	lc.OnStartup(func() { container.Store(true) })

	lc.WaitForStartup()

	if !pool.Load() || !container.Load() {
		t.Errorf("hooks finished: pool=%v container=%v, want both", pool.Load(), container.Load())
	}
}

func TestShutdownHooksWaitForCancel(t *testing.T) {
	lc := lifecycle.New()

	var closed atomic.Int32
	for range 2 {
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			closed.Add(1)
		})
	}

	lc.WaitForStartup()
	if got := closed.Load(); got != 0 {
		t.Fatalf("shutdown hooks ran before Shutdown: %d", got)
	}

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if got := closed.Load(); got != 2 {
		t.Errorf("closed = %d, want 2", got)
	}

	select {
	case <-lc.Context().Done():
	default:
		t.Error("context not cancelled after Shutdown")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		time.Sleep(500 * time.Millisecond)
	})

	lc.WaitForStartup()

	if err := lc.Shutdown(50 * time.Millisecond); err == nil {
		t.Error("expected timeout error for a slow shutdown hook")
	}
}
