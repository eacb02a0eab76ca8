package output

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func ttySpinner(message string, w io.Writer) *Spinner {
	s := NewSpinner(message)
	s.SetWriter(w)
	s.isTTY = func(io.Writer) bool { return true }
	return s
}

func TestSpinner_NonTTYPrintsOnce(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Loading")
	s.SetWriter(buf)

	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	assert.Equal(t, "Loading...\n", buf.String(), "non-TTY spinner prints a single line")
}

func TestSpinner_StartStop(t *testing.T) {
	buf := &syncBuffer{}
	s := ttySpinner("Test", buf)

	s.Start()
	assert.True(t, s.running, "running after Start()")

	time.Sleep(250 * time.Millisecond)
	s.Stop()

	assert.False(t, s.running, "running after Stop()")

	// The goroutine has been joined, so nothing is written after Stop.
	after := buf.String()
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, after, buf.String(), "spinner wrote output after Stop() returned")
	assert.Contains(t, after, "Test...")
}

func TestSpinner_MultipleStops(t *testing.T) {
	s := ttySpinner("Test", &syncBuffer{})
	s.Start()

	assert.NotPanics(t, func() {
		s.Stop()
		s.Stop()
		s.Stop()
	})
}

func TestSpinner_Restart(t *testing.T) {
	buf := &syncBuffer{}
	s := ttySpinner("Again", buf)

	s.Start()
	s.Stop()
	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	assert.Contains(t, buf.String(), "Again...", "restarted spinner should animate")
}

func TestSpinner_UpdateMessage(t *testing.T) {
	buf := &syncBuffer{}
	s := ttySpinner("Initial", buf)
	s.Start()

	s.UpdateMessage("Updated")
	time.Sleep(250 * time.Millisecond)
	s.Stop()

	assert.Contains(t, buf.String(), "Updated")
}

func TestSpinner_StopWithMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	s := NewSpinner("Working")
	s.SetWriter(buf)
	s.Start()

	s.StopWithMessage("Done!")

	assert.True(t, strings.HasSuffix(buf.String(), "Done!\n"), "output %q should end with the final message", buf.String())
}

func TestSpin(t *testing.T) {
	buf := &bytes.Buffer{}
	wantErr := errors.New("boom")

	called := false
	err := Spin(buf, "Scanning", func() error {
		called = true
		return wantErr
	})

	require.True(t, called, "Spin() did not call fn")
	assert.ErrorIs(t, err, wantErr)
	assert.Contains(t, buf.String(), "Scanning...")
}

func TestSpinner_Concurrent(t *testing.T) {
	s := ttySpinner("Concurrent", &syncBuffer{})
	s.Start()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.UpdateMessage("Updated")
		}()
	}
	wg.Wait()
	s.Stop()
}
