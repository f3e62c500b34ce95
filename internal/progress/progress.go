// Package progress implements the lock-free progress/timing tracker: one
// atomic completed counter and an atomic total per stage, a dedicated redraw
// loop polling at roughly 10Hz, and a weighted overall percentage. Adapted
// from the tile generator's worker.Progress, which protected a single
// counter set behind a mutex; here every stage gets its own atomic
// counters so pipeline workers never contend with each other or the
// printer.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"
)

// Stage identifies one of the seven tracked pipeline stages, in pipeline
// order.
type Stage int

const (
	StagePlacement Stage = iota
	StageAssignment
	StageSmoothing
	StageBiomeWater
	StageBiomeLand
	StageRasterize
	StageSink
	numStages
)

var stageNames = [numStages]string{
	"placement", "assignment", "smoothing",
	"biome-water", "biome-land", "rasterize", "sink",
}

// stageWeights are the fixed coefficients the overall percentage is
// weighted by, in stage order, summing to 1.00.
var stageWeights = [numStages]float64{0.01, 0.01, 0.02, 0.60, 0.06, 0.10, 0.20}

type counters struct {
	completed atomic.Int64
	total     atomic.Int64
	elapsed   atomic.Int64 // nanoseconds; 0 until FinishStage
	started   atomic.Bool
	startedAt atomic.Int64 // unix nanoseconds
}

// Tracker holds the seven per-stage counters plus the run's start time.
type Tracker struct {
	stages [numStages]counters
	start  time.Time
}

// New creates a tracker with its clock started.
func New() *Tracker {
	return &Tracker{start: time.Now()}
}

// SetTotal records a stage's total unit count. Call before StartStage.
func (t *Tracker) SetTotal(s Stage, total int64) {
	t.stages[s].total.Store(total)
}

// StartStage marks a stage as begun, recording its start time.
func (t *Tracker) StartStage(s Stage) {
	t.stages[s].startedAt.Store(time.Now().UnixNano())
	t.stages[s].started.Store(true)
}

// Add atomically increments a stage's completed counter by delta. Safe to
// call concurrently from any number of worker goroutines.
func (t *Tracker) Add(s Stage, delta int64) {
	t.stages[s].completed.Add(delta)
}

// FinishStage records a stage's elapsed time. Publishing elapsed after all
// of that stage's Add calls have returned (the stage's barrier join) is
// what lets the tracker observe a consistent, complete picture.
func (t *Tracker) FinishStage(s Stage) {
	start := t.stages[s].startedAt.Load()
	if start == 0 {
		return
	}
	t.stages[s].elapsed.Store(time.Now().UnixNano() - start)
}

// StageSnapshot is one stage's progress as of a poll.
type StageSnapshot struct {
	Name      string
	Fraction  float64 // in [0,1]
	Elapsed   time.Duration
	Done      bool
	completed int64
	total     int64
}

// Snapshot is a full poll across all stages plus the weighted overall
// percentage and total elapsed time so far.
type Snapshot struct {
	Stages  [numStages]StageSnapshot
	Overall float64 // in [0,1]
	Elapsed time.Duration
}

// Poll reads the current state of every stage without blocking.
func (t *Tracker) Poll() Snapshot {
	var snap Snapshot
	snap.Elapsed = time.Since(t.start)

	var overall float64
	for i := 0; i < int(numStages); i++ {
		c := &t.stages[i]
		completed := c.completed.Load()
		total := c.total.Load()
		frac := 0.0
		if total > 0 {
			frac = float64(completed) / float64(total)
			if frac > 1 {
				frac = 1
			}
		}
		elapsedNs := c.elapsed.Load()
		done := total <= 0 || completed >= total
		var elapsed time.Duration
		if elapsedNs > 0 {
			elapsed = time.Duration(elapsedNs)
		} else if c.started.Load() {
			elapsed = time.Since(time.Unix(0, c.startedAt.Load()))
		}
		snap.Stages[i] = StageSnapshot{
			Name: stageNames[i], Fraction: frac, Elapsed: elapsed, Done: done,
			completed: completed, total: total,
		}
		overall += frac * stageWeights[i]
	}
	snap.Overall = overall
	return snap
}

// Done reports whether every stage has reached its total. A stage whose
// total is zero or was never set (a skipped stage, such as smoothing with
// k=0) is vacuously complete rather than stuck "not done" forever.
func (t *Tracker) Done() bool {
	for i := 0; i < int(numStages); i++ {
		c := &t.stages[i]
		total := c.total.Load()
		if total > 0 && c.completed.Load() < total {
			return false
		}
	}
	return true
}

const barWidth = 30

// Run drives the terminal redraw loop at roughly 10Hz until every stage is
// complete. It only reads tracker state; workers are the sole writers.
func (t *Tracker) Run(out io.Writer) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		t.render(out)
		if t.Done() {
			return
		}
	}
}

func (t *Tracker) render(out io.Writer) {
	snap := t.Poll()
	var b strings.Builder
	b.WriteString("\r\033[K")
	for _, s := range snap.Stages {
		filled := int(s.Fraction * barWidth)
		bar := strings.Repeat("\033[32m█\033[0m", filled) + strings.Repeat("░", barWidth-filled)
		fmt.Fprintf(&b, "%-12s[%s] %s  ", s.Name, bar, formatDuration(s.Elapsed))
	}
	fmt.Fprintf(&b, "\033[34mtotal %5.1f%%\033[0m %s", snap.Overall*100, formatDuration(snap.Elapsed))
	fmt.Fprint(out, b.String())
}

// formatDuration renders MM:SS.ssssss, matching the reference UI's timer
// format.
func formatDuration(d time.Duration) string {
	total := d.Seconds()
	minutes := int(total) / 60
	seconds := total - float64(minutes*60)
	return fmt.Sprintf("%02d:%09.6f", minutes, seconds)
}
