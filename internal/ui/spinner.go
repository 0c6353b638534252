package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Spinner provides an animated loading indicator
type Spinner struct {
	frames   []string
	interval time.Duration
	message  string
	stop     chan struct{}
	done     chan struct{}
	out      io.Writer
	silent   bool
	mu       sync.Mutex
	running  bool
}

// spinnerFrames is the braille dots animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a new spinner with default settings
func NewSpinner() *Spinner {
	return &Spinner{
		frames:   spinnerFrames,
		interval: 80 * time.Millisecond,
		out:      os.Stderr,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the spinner animation with the given message
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.message = message
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	if s.silent {
		close(s.done)
		return
	}

	go func() {
		i := 0
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.draw(i)

		for {
			select {
			case <-s.stop:
				// Clear the spinner line
				fmt.Fprint(s.out, "\r\033[K")
				close(s.done)
				return
			case <-ticker.C:
				i = (i + 1) % len(s.frames)
				s.draw(i)
			}
		}
	}()
}

func (s *Spinner) draw(i int) {
	s.mu.Lock()
	message := s.message
	s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s %s", SpinnerStyle.Render(s.frames[i]), message)
}

// Stop halts the spinner animation
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stop)
	<-s.done
}

// IsRunning returns whether the spinner is currently active
func (s *Spinner) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
