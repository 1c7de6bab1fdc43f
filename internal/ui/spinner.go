// Package ui holds the terminal progress indicator used by the CLI commands.
package ui

import (
	"fmt"
	"os"
	"sync"
	"time"
)

var frames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

const frameInterval = 80 * time.Millisecond

// Spinner animates a progress line on stderr so stdout stays clean for
// machine-readable output.
type Spinner struct {
	mu   sync.Mutex
	msg  string
	done chan struct{}
}

func NewSpinner() *Spinner {
	return &Spinner{}
}

// Start begins the animation with the given message. Calling Start on a
// running spinner restarts it.
func (s *Spinner) Start(msg string) {
	s.mu.Lock()
	if s.done != nil {
		close(s.done)
	}
	s.msg = msg
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go s.run(done)
}

// Update replaces the message while the spinner keeps running.
func (s *Spinner) Update(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	s.mu.Unlock()

	fmt.Fprint(os.Stderr, "\r\033[K")
}

func (s *Spinner) run(done chan struct{}) {
	tick := time.NewTicker(frameInterval)
	defer tick.Stop()

	i := 0
	for {
		select {
		case <-done:
			return
		case <-tick.C:
			s.mu.Lock()
			msg := s.msg
			s.mu.Unlock()
			fmt.Fprintf(os.Stderr, "\r\033[K%c %s", frames[i%len(frames)], msg)
			i++
		}
	}
}
