// Package activity logs identities out after a period without requests.
//
// Every authenticated request resets a single per-identity timer; when a
// timer fires the configured callback runs once and the entry is removed.
package activity

import (
	"sync"
	"time"

	id "crm/pkg/domain"
)

const DefaultIdleTimeout = 10 * time.Minute

// Timer is the part of *time.Timer the monitor needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it through StdAfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func StdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type pending struct {
	timer Timer
	gen   uint64
}

// Monitor keeps at most one pending timer per identity.
type Monitor struct {
	mu        sync.Mutex
	timers    map[id.IdentityID]pending
	gen       uint64
	timeout   time.Duration
	afterFunc AfterFunc
	metrics   *Metrics
}

type MonitorOption func(*Monitor)

func WithIdleTimeout(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.timeout = d
		}
	}
}

func WithAfterFunc(f AfterFunc) MonitorOption {
	return func(m *Monitor) {
		m.afterFunc = f
	}
}

func WithMetrics(metrics *Metrics) MonitorOption {
	return func(m *Monitor) {
		m.metrics = metrics
	}
}

func NewMonitor(opts ...MonitorOption) *Monitor {
	m := &Monitor{
		timers:    make(map[id.IdentityID]pending),
		timeout:   DefaultIdleTimeout,
		afterFunc: StdAfterFunc,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ResetTimer cancels any pending timer for identityID and schedules
// onTimeout after the idle timeout.
func (m *Monitor) ResetTimer(identityID id.IdentityID, onTimeout func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.timers[identityID]; ok {
		prev.timer.Stop()
	}
	m.gen++
	gen := m.gen
	timer := m.afterFunc(m.timeout, func() { m.fire(identityID, gen, onTimeout) })
	m.timers[identityID] = pending{timer: timer, gen: gen}
	m.metrics.setPending(len(m.timers))
}

// fire runs onTimeout only if the timer is still the current one for the
// identity. A timer that fired while being replaced is a no-op.
func (m *Monitor) fire(identityID id.IdentityID, gen uint64, onTimeout func()) {
	m.mu.Lock()
	current, ok := m.timers[identityID]
	if !ok || current.gen != gen {
		m.mu.Unlock()
		return
	}
	delete(m.timers, identityID)
	m.metrics.setPending(len(m.timers))
	m.mu.Unlock()

	m.metrics.incTimeouts()
	onTimeout()
}

// ClearTimer cancels the pending timer, if any.
func (m *Monitor) ClearTimer(identityID id.IdentityID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.timers[identityID]; ok {
		prev.timer.Stop()
		delete(m.timers, identityID)
		m.metrics.setPending(len(m.timers))
	}
}

func (m *Monitor) Pending(identityID id.IdentityID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.timers[identityID]
	return ok
}

func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Stop cancels every pending timer without running callbacks.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for identityID, p := range m.timers {
		p.timer.Stop()
		delete(m.timers, identityID)
	}
	m.metrics.setPending(0)
}
