package server

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blockberries/txcodec"
)

func TestLifecycleGuard_HappyPath(t *testing.T) {
	g := NewLifecycleGuard()
	if !g.IsServing() {
		t.Fatal("expected Serving after construction")
	}

	for i := 0; i < 3; i++ {
		if err := g.Enter(); err != nil {
			t.Fatalf("Enter: %v", err)
		}
		g.Exit()
	}

	g.Close()
	if g.State() != "Closed" {
		t.Fatalf("state = %s, want Closed", g.State())
	}
}

func TestLifecycleGuard_EnterAfterClose(t *testing.T) {
	g := NewLifecycleGuard()
	g.Close()
	if err := g.Enter(); !errors.Is(err, txcodec.ErrClosed) {
		t.Fatalf("Enter after Close = %v, want ErrClosed", err)
	}
}

func TestLifecycleGuard_DoubleClose(t *testing.T) {
	g := NewLifecycleGuard()
	g.Close()
	g.Close()
	if g.State() != "Closed" {
		t.Fatalf("state = %s, want Closed", g.State())
	}
}

func TestLifecycleGuard_CloseWaitsForInflight(t *testing.T) {
	g := NewLifecycleGuard()
	if err := g.Enter(); err != nil {
		t.Fatalf("Enter: %v", err)
	}

	closed := make(chan struct{})
	go func() {
		g.Close()
		close(closed)
	}()

	// Close must not finish while a call is in flight.
	select {
	case <-closed:
		t.Fatal("Close returned with a call in flight")
	case <-time.After(50 * time.Millisecond):
	}
	if g.IsServing() {
		t.Fatal("guard still serving after Close started")
	}
	if err := g.Enter(); !errors.Is(err, txcodec.ErrClosed) {
		t.Fatalf("Enter while draining = %v, want ErrClosed", err)
	}

	g.Exit()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after the last call exited")
	}
}

func TestLifecycleGuard_ConcurrentEnter(t *testing.T) {
	g := NewLifecycleGuard()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := g.Enter(); err == nil {
				g.Exit()
			}
		}()
	}
	g.Close()
	wg.Wait()
	if g.State() != "Closed" {
		t.Fatalf("state = %s, want Closed", g.State())
	}
}

func TestLifecycleState_String(t *testing.T) {
	if got := lifecycleState(9).String(); got != "unknown(9)" {
		t.Fatalf("String = %q", got)
	}
}
