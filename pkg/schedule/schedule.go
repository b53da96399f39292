// Package schedule provides an interval-based task scheduler for
// housekeeping work such as expiring stale pending orders.
//
//	schedule.Every(1).Minutes().Name("orders.expire").WithoutOverlapping().Run(expireOrders)
//	schedule.Daily().Name("otp.cleanup").Run(cleanupCodes)
//
//	schedule.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mkamalov/bazar/pkg/logger"
)

// Task is the function signature for a scheduled task.
type Task func()

type entry struct {
	id        string
	interval  time.Duration
	task      Task
	lastRun   time.Time
	running   bool
	noOverlap bool
	mu        sync.Mutex
}

// Schedule is a fluent builder for a single entry before it is registered.
type Schedule struct {
	e *entry
}

var (
	regMu   sync.Mutex
	entries []*entry
)

// EveryMinute schedules the task to run every 60 seconds.
func EveryMinute() *Schedule { return Every(1).Minutes() }

// Every starts a fluent builder with n units.
func Every(n int) *freqBuilder { return &freqBuilder{n: n} }

// Hourly schedules the task to run every hour.
func Hourly() *Schedule { return Every(1).Hours() }

// Daily schedules the task to run every 24 hours.
func Daily() *Schedule { return Every(24).Hours() }

type freqBuilder struct{ n int }

func (f *freqBuilder) Seconds() *Schedule {
	return &Schedule{e: &entry{interval: time.Duration(f.n) * time.Second}}
}
func (f *freqBuilder) Minutes() *Schedule {
	return &Schedule{e: &entry{interval: time.Duration(f.n) * time.Minute}}
}
func (f *freqBuilder) Hours() *Schedule {
	return &Schedule{e: &entry{interval: time.Duration(f.n) * time.Hour}}
}

// WithoutOverlapping prevents a new run while the previous one is still
// executing.
func (s *Schedule) WithoutOverlapping() *Schedule {
	s.e.noOverlap = true
	return s
}

// Name gives the entry a human-readable identifier for logging.
func (s *Schedule) Name(id string) *Schedule {
	s.e.id = id
	return s
}

// Run registers the task with the global scheduler. Call Start() to begin
// dispatching.
func (s *Schedule) Run(fn Task) {
	s.e.task = fn

	regMu.Lock()
	defer regMu.Unlock()
	if s.e.id == "" {
		s.e.id = fmt.Sprintf("task-%d", len(entries)+1)
	}
	entries = append(entries, s.e)
}

// Start begins the scheduler loop in the background. It ticks every second
// and dispatches due tasks until ctx is cancelled.
func Start(ctx context.Context) {
	go run(ctx)
	logger.Info("schedule: scheduler started")
}

func run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("schedule: scheduler stopped")
			return
		case now := <-ticker.C:
			regMu.Lock()
			current := make([]*entry, len(entries))
			copy(current, entries)
			regMu.Unlock()

			for _, e := range current {
				if isDue(e, now) {
					dispatch(e)
				}
			}
		}
	}
}

func isDue(e *entry, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.noOverlap && e.running {
		return false
	}
	if e.lastRun.IsZero() {
		e.lastRun = now
		return false // first tick only arms the timer
	}
	if now.Sub(e.lastRun) >= e.interval {
		e.lastRun = now
		e.running = true
		return true
	}
	return false
}

func dispatch(e *entry) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("schedule: task panic", "task", e.id, "error", fmt.Sprintf("%v", r))
			}
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
		}()

		start := time.Now()
		e.task()
		logger.Debug("schedule: task ran", "task", e.id, "duration", time.Since(start).String())
	}()
}

// Flush removes all registered entries. Used in tests.
func Flush() {
	regMu.Lock()
	defer regMu.Unlock()
	entries = nil
}
