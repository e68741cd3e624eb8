package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows progress while a store mutation is being persisted.
type Spinner struct {
	out      io.Writer
	frames   []string
	message  string
	running  bool
	stopCh   chan struct{}
	done     chan struct{}
	mu       sync.Mutex
	style    lipgloss.Style
	msgStyle lipgloss.Style
	interval time.Duration
	delay    time.Duration
	colored  bool
}

// NewSpinner creates a spinner writing to out. Frames are only drawn once the
// work has been running for longer than a short delay, so fast saves stay silent.
func NewSpinner(out io.Writer, colored bool) *Spinner {
	return &Spinner{
		out:      out,
		frames:   spinnerFrames,
		style:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
		msgStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		interval: 80 * time.Millisecond,
		delay:    150 * time.Millisecond,
		colored:  colored,
	}
}

// Start begins the spinner animation with a message
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})

	go s.animate(s.stopCh, s.done)
}

// Stop stops the spinner and clears the line if anything was drawn.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.done
	s.mu.Unlock()

	<-done
}

// Do runs fn with the spinner active and returns its error.
func (s *Spinner) Do(message string, fn func() error) error {
	s.Start(message)
	defer s.Stop()
	return fn()
}

func (s *Spinner) animate(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	select {
	case <-stop:
		return
	case <-time.After(s.delay):
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	drawn := false
	frame := 0
	for {
		s.mu.Lock()
		msg := s.message
		s.mu.Unlock()

		s.render(frame, msg)
		drawn = true
		frame = (frame + 1) % len(s.frames)

		select {
		case <-stop:
			if drawn {
				fmt.Fprint(s.out, "\r\033[K")
			}
			return
		case <-ticker.C:
		}
	}
}

func (s *Spinner) render(frame int, message string) {
	spinChar := s.frames[frame]
	if s.colored {
		fmt.Fprintf(s.out, "\r\033[K%s %s", s.style.Render(spinChar), s.msgStyle.Render(message))
		return
	}
	fmt.Fprintf(s.out, "\r\033[K%s %s", spinChar, message)
}
