package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/sldlayout/pkg/observability"
)

var errSpinnerStopped = errors.New("spinner stopped")

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line while a layout runs. It is also the
// runner's stage hook: the line names the stage in progress and layout
// warnings are counted. Events are forwarded to the next hooks.
type Spinner struct {
	next observability.StageHooks
	out  io.Writer

	mu       sync.Mutex
	message  string
	stage    string
	warnings int
	width    int
	started  bool

	ctx     context.Context
	cancel  context.CancelCauseFunc
	stopped chan struct{}
	once    sync.Once
}

// newSpinner returns a spinner on stderr that stops when ctx is done.
func newSpinner(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, out io.Writer, message string) *Spinner {
	sctx, cancel := context.WithCancelCause(ctx)
	return &Spinner{
		next:    observability.Stages(),
		out:     out,
		message: message,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.message
	if s.stage != "" {
		text += " " + s.stage
	}
	s.width = max(s.width, len(text)+2)
	fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(text))
}

// Stop ends the animation and clears the line. It is safe to call more
// than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel(errSpinnerStopped)
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.stopped
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width+2))
		}
	})
}

// StopWithError stops the spinner and prints message as an error.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner ended because its parent context
// did, rather than through Stop.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil && !errors.Is(context.Cause(s.ctx), errSpinnerStopped)
}

// Stage returns the stage currently shown.
func (s *Spinner) Stage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Warnings returns the number of layout warnings seen.
func (s *Spinner) Warnings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warnings
}

func (s *Spinner) OnStageStart(ctx context.Context, stage string) {
	s.mu.Lock()
	s.stage = stage
	s.mu.Unlock()
	s.next.OnStageStart(ctx, stage)
}

func (s *Spinner) OnStageComplete(ctx context.Context, stage string, d time.Duration, err error) {
	s.next.OnStageComplete(ctx, stage, d, err)
}

func (s *Spinner) OnWarning(ctx context.Context, stage, kind string) {
	s.mu.Lock()
	s.warnings++
	s.mu.Unlock()
	s.next.OnWarning(ctx, stage, kind)
}

var _ observability.StageHooks = (*Spinner)(nil)
