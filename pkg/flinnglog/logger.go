// Package flinnglog carries the two diagnostic events a FlinngIndex
// actually emits: a completed AddPoints batch and a completed
// PrepareForQueries pass. It is intentionally not a general-purpose
// logging facade — callers that want one can wrap a Logger around
// whatever they already use.
package flinnglog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger receives FlinngIndex lifecycle events as they happen. Each
// method corresponds to one concrete event, so an implementation never
// has to parse a message string to find out what occurred.
type Logger interface {
	// AddedPoints reports a batch that AddPoints just scattered into
	// cells, along with the index's running total.
	AddedPoints(batchSize int, totalPoints uint64)
	// PreparedBuckets reports a PrepareForQueries pass over numBuckets
	// buckets (including the implicit one AddPoints runs after every
	// batch).
	PreparedBuckets(numBuckets int)
}

type stderrLogger struct {
	mu     sync.Mutex
	writer io.Writer
}

// New returns a Logger that writes one line per event to w.
func New(w io.Writer) Logger {
	return &stderrLogger{writer: w}
}

// NewStderr returns a Logger writing to stderr.
func NewStderr() Logger {
	return New(os.Stderr)
}

func (l *stderrLogger) AddedPoints(batchSize int, totalPoints uint64) {
	l.emit("add_points", "batch=%d total_points=%d", batchSize, totalPoints)
}

func (l *stderrLogger) PreparedBuckets(numBuckets int) {
	l.emit("prepare_buckets", "num_buckets=%d", numBuckets)
}

func (l *stderrLogger) emit(event, detailFmt string, detailArgs ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(l.writer, "%s %s ", ts, event)
	fmt.Fprintf(l.writer, detailFmt, detailArgs...)
	fmt.Fprintln(l.writer)
}

type nopLogger struct{}

func (nopLogger) AddedPoints(batchSize int, totalPoints uint64) {}
func (nopLogger) PreparedBuckets(numBuckets int)                {}

// Nop returns a Logger that discards every event, the default for any
// index constructed without an explicit one.
func Nop() Logger {
	return nopLogger{}
}
