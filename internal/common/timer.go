// Package common provides shared utilities including stage timing.
package common

import (
	"fmt"
	"log/slog"
	"time"
)

// Timer measures the duration of a named processing stage.
type Timer struct {
	name     string
	start    time.Time
	duration time.Duration
}

// NewTimer starts an unnamed timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// NewNamedTimer starts a timer for the given stage name.
func NewNamedTimer(name string) *Timer {
	return &Timer{name: name, start: time.Now()}
}

// Stop records and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration (valid after Stop).
func (t *Timer) Duration() time.Duration { return t.duration }

// Name returns the stage name, empty if unnamed.
func (t *Timer) Name() string { return t.name }

// StopAndLog stops the timer and emits a debug log entry for the stage.
func (t *Timer) StopAndLog(logger *slog.Logger) time.Duration {
	d := t.Stop()
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("stage complete", "stage", t.name, "duration", d)
	return d
}

// String formats the timer as "name: duration" (or just the duration).
func (t *Timer) String() string {
	if t.name != "" {
		return fmt.Sprintf("%s: %v", t.name, t.duration)
	}
	return t.duration.String()
}
