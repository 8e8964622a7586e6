package scheduler

import (
	"sync"
	"time"
)

// delayedSchedule fires once after delay, then every period.
type delayedSchedule struct {
	mu     sync.Mutex
	delay  time.Duration
	period time.Duration
	fired  bool
}

func newDelayedSchedule(delay, period time.Duration) *delayedSchedule {
	return &delayedSchedule{delay: delay, period: period}
}

func (d *delayedSchedule) Next(t time.Time) time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.fired {
		d.fired = true
		return t.Add(d.delay)
	}
	return t.Add(d.period)
}
