// Package spinning provides a friendly spinning clock (or some other spinning symbols)
// to use while a program is calculating something, optionally followed by a progress count.
package spinning

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"k8s.io/klog/v2"
)

// Spinning display, created with New or NewProgress.
type Spinning struct {
	wg     sync.WaitGroup
	cancel func()

	label string
	total int
	done  atomic.Int64
}

var (
	ThemeAscii = []rune("|/-\\")
	ThemeMoon  = []rune("🌑🌒🌓🌔🌕🌖🌗🌘")
	ThemeClock = []rune("🕐🕑🕒🕓🕔🕕🕖🕗🕘🕙🕚🕛")

	// Theme defaults to ThemeClock, but it can be set to anything else.
	Theme = ThemeClock

	// Output where the spinning is displayed.
	Output io.Writer = os.Stdout

	// Period of the spinning.
	Period = 500 * time.Millisecond
)

// SafeInterrupt will capture SigInt (Ctrl+C) and SigTerm and call the provided onInterrupt.
// If the program haven't exited after gracePeriod, it will call Reset to reset the terminal
// and exit.
func SafeInterrupt(onInterrupt func(), gracePeriod time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigChan
		fmt.Println()
		klog.Errorf("Got interrupted (signal %q), shutting down... (%s)", s, gracePeriod)
		if onInterrupt != nil {
			go onInterrupt()
		}

		// Wait for gracePeriod before exiting.
		time.Sleep(gracePeriod)
		Reset()
		klog.Fatalf("Graceful shutting down %s period expired, exiting.", gracePeriod)
	}()
}

// Reset terminal: make cursor visible, restore default terminal colors.
func Reset() {
	fmt.Fprint(Output, "\033[?25h\033[39;49;0m\n") // Restore cursor and colors.
}

// New starts a spinning display that runs on a separate GoRoutine.
// It stops when Spinning.Done is called.
func New(ctx context.Context) *Spinning {
	return NewProgress(ctx, "", 0)
}

// NewProgress is like New, but the spinning symbol is followed by label and by the number of tasks
// completed (see Spinning.Increment) out of total. If total is 0 no count is displayed.
func NewProgress(ctx context.Context, label string, total int) *Spinning {
	s := &Spinning{label: label, total: total}
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(Period)
		defer ticker.Stop()
		fmt.Fprint(Output, "\033[?25l")       // Hide cursor.
		defer fmt.Fprint(Output, "\033[?25h") // Restore cursor.

		var spinningIdx int
		for {
			fmt.Fprintf(Output, "\r%s\033[0K", s.line(Theme[spinningIdx]))
			spinningIdx = (spinningIdx + 1) % len(Theme)
			select {
			case <-ctx.Done():
				fmt.Fprintf(Output, "\r%s\033[0K\n", s.line(' '))
				return
			case <-ticker.C:
				// continue
			}
		}
	}()
	return s
}

// Increment the number of tasks completed. It is safe to call concurrently.
func (s *Spinning) Increment() {
	s.done.Add(1)
}

// Count of tasks completed so far.
func (s *Spinning) Count() int {
	return int(s.done.Load())
}

// line to display with the given symbol.
func (s *Spinning) line(symbol rune) string {
	line := string(symbol)
	if s.label != "" {
		line += " " + s.label
	}
	if s.total > 0 {
		line += fmt.Sprintf(" %d/%d", s.Count(), s.total)
	}
	return line
}

// Done stops the spinning, and waits for the display to be cleaned up.
func (s *Spinning) Done() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.wg.Wait()
}
