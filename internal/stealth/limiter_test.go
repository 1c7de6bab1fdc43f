package stealth

import (
	"context"
	"testing"
	"time"
)

func TestPacerEnforcesMinimumSpacing(t *testing.T) {
	p := NewPacer(50*time.Millisecond, 0)
	ctx := context.Background()

	if err := p.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	start := time.Now()
	if err := p.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 45*time.Millisecond {
		t.Fatalf("second Wait returned after %v, want >= ~50ms", elapsed)
	}
}

func TestPacerFirstCallDoesNotBlock(t *testing.T) {
	p := NewPacer(time.Hour, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// lastAt is zero, so the window is already elapsed.
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("first Wait blocked: %v", err)
	}
}

func TestPacerHonorsCancellation(t *testing.T) {
	p := NewPacer(time.Hour, 0)
	ctx := context.Background()
	if err := p.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := p.Wait(cancelCtx); err != context.DeadlineExceeded {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
}
