package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner shows progress on the error stream of a terminal.
type Spinner struct {
	w       io.Writer
	msg     string
	styles  *Styles
	frames  []string
	fps     time.Duration
	stop    chan struct{}
	done    chan struct{}
	started bool
	once    sync.Once
}

// NewSpinner creates a spinner with a message. It does nothing until Start.
func (r *Renderer) NewSpinner(msg string) *Spinner {
	return &Spinner{
		w:      r.errOut,
		msg:    msg,
		styles: r.styles,
		frames: spinner.Dot.Frames,
		fps:    spinner.Dot.FPS,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start animates the spinner until Success, Fail or Stop.
func (s *Spinner) Start() {
	s.started = true
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.fps)
		defer ticker.Stop()
		for i := 0; ; i++ {
			_, _ = fmt.Fprintf(s.w, "\r%s %s", s.styles.Info.Render(s.frames[i%len(s.frames)]), s.msg)
			select {
			case <-s.stop:
				_, _ = fmt.Fprint(s.w, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop clears the spinner line.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
		if s.started {
			<-s.done
		}
	})
}

// Success stops the spinner and prints a success line.
func (s *Spinner) Success(msg string) {
	s.Stop()
	_, _ = fmt.Fprintln(s.w, s.styles.Success.Render("✓ "+msg))
}

// Fail stops the spinner and prints a failure line.
func (s *Spinner) Fail(msg string) {
	s.Stop()
	_, _ = fmt.Fprintln(s.w, s.styles.Error.Render("✗ "+msg))
}
