package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/victorjacobs/go-flexit/flexit"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// RefreshDelay gives the backend time to apply a write before it is read back.
const RefreshDelay = time.Second

type refresher interface {
	RefreshSnapshot(ctx context.Context) (*flexit.Snapshot, error)
}

// Coordinator owns the current snapshot. It polls on an interval, applies
// confirmed writes, and tells its listener about every change.
type Coordinator struct {
	log      *zap.SugaredLogger
	source   refresher
	metrics  *Metrics
	onUpdate func(*flexit.Snapshot, Status)
	delay    time.Duration

	group singleflight.Group

	mu          sync.RWMutex
	snapshot    *flexit.Snapshot
	lastSuccess time.Time
	lastErr     error

	timerMu sync.Mutex
	timer   *time.Timer
}

func NewCoordinator(log *zap.SugaredLogger, source refresher, metrics *Metrics, onUpdate func(*flexit.Snapshot, Status)) *Coordinator {
	return &Coordinator{
		log:      log,
		source:   source,
		metrics:  metrics,
		onUpdate: onUpdate,
		delay:    RefreshDelay,
	}
}

// Snapshot returns a copy of the current snapshot, or nil before the first
// successful refresh.
func (c *Coordinator) Snapshot() *flexit.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.snapshot == nil {
		return nil
	}
	s := *c.snapshot
	return &s
}

func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.status()
}

func (c *Coordinator) status() Status {
	status := Status{
		Available:   c.snapshot != nil && c.lastErr == nil,
		LastSuccess: c.lastSuccess,
	}
	if c.lastErr != nil {
		status.LastError = c.lastErr.Error()
	}
	return status
}

// Refresh fetches a new snapshot. Concurrent calls share one fetch. A failed
// refresh keeps the previous snapshot but marks it unavailable.
func (c *Coordinator) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		snapshot, err := c.source.RefreshSnapshot(ctx)

		c.mu.Lock()
		if err != nil {
			c.lastErr = err
		} else {
			c.snapshot = snapshot
			c.lastSuccess = time.Now()
			c.lastErr = nil
		}
		c.mu.Unlock()

		c.metrics.Poll(err)
		c.notify()

		return nil, err
	})
	return err
}

// Apply patches the current snapshot with a confirmed write and notifies
// the listener. It reports whether anything changed.
func (c *Coordinator) Apply(res flexit.WriteResult) bool {
	c.mu.Lock()
	if c.snapshot == nil {
		c.mu.Unlock()
		return false
	}

	next := *c.snapshot
	if !res.Apply(&next) {
		c.mu.Unlock()
		return false
	}
	c.snapshot = &next
	c.mu.Unlock()

	c.notify()
	return true
}

func (c *Coordinator) notify() {
	if c.onUpdate == nil {
		return
	}
	c.onUpdate(c.Snapshot(), c.Status())
}

// RequestRefresh schedules a refresh after the refresh delay. Requests made
// while one is pending push it back.
func (c *Coordinator) RequestRefresh(ctx context.Context) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, func() {
		if ctx.Err() != nil {
			return
		}
		if err := c.Refresh(ctx); err != nil {
			c.log.Errorf("Refresh after write failed: %v", err)
		}
	})
}

func (c *Coordinator) stopTimer() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Run refreshes every interval until ctx is done. Failed polls are logged
// and retried on the next tick.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer c.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.log.Errorf("Update failed: %v", err)
			}
		}
	}
}
