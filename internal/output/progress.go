package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// writerIsTTY returns true if the given writer exposes an Fd() method
// (e.g. *os.File) and that fd is a terminal. Falls back to false for
// plain io.Writer values such as *bytes.Buffer.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// animates reports whether a spinner on w should draw frames.
func animates(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return writerIsTTY(w)
}

// Spinner displays an animated spinner with a message.
// Example: ⠋ Installing missing packages...
type Spinner struct {
	message string
	running bool
	chars   []string
	mu      sync.Mutex
	writer  io.Writer
	ticker  *time.Ticker
	done    chan struct{}
	wg      sync.WaitGroup

	// isTTY decides between animation and a single plain line.
	isTTY func(io.Writer) bool
}

// NewSpinner creates a stopped spinner writing to stdout.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		chars:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		writer:  os.Stdout,
		isTTY:   animates,
	}
}

// SetWriter sets the output writer (useful for testing).
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// Start begins the spinner animation.
// On a non-TTY writer the animation goroutine is not started; the message
// is printed once instead so that non-interactive output stays clean.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	if !s.isTTY(s.writer) {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
		return
	}

	s.done = make(chan struct{})
	s.ticker = time.NewTicker(100 * time.Millisecond)
	s.wg.Add(1)

	go func(ticker *time.Ticker, done <-chan struct{}) {
		defer s.wg.Done()
		idx := 0
		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(s.writer, "\r%s %s...", blue(s.chars[idx]), s.message)
				s.mu.Unlock()
				idx = (idx + 1) % len(s.chars)
			case <-done:
				return
			}
		}
	}(s.ticker, s.done)
}

// Stop stops the spinner, waits for the animation goroutine to exit and
// clears the line. Calling Stop more than once is harmless.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	animated := s.ticker != nil
	if animated {
		s.ticker.Stop()
		s.ticker = nil
		close(s.done)
	}
	s.mu.Unlock()

	s.wg.Wait()

	if animated {
		s.mu.Lock()
		fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", len(s.message)+6))
		s.mu.Unlock()
	}
}

// UpdateMessage updates the spinner message while it's running.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// StopWithMessage stops the spinner and displays a final message.
func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.writer, message)
}

// Spin runs fn while a spinner shows message on w. The spinner is fully
// stopped before fn's error is returned.
func Spin(w io.Writer, message string, fn func() error) error {
	s := NewSpinner(message)
	s.SetWriter(w)
	s.Start()
	err := fn()
	s.Stop()
	return err
}
