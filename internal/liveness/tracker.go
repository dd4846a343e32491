// Package liveness tracks which worker IPs are currently alive based on
// periodic heartbeats, and evicts entries that have gone quiet.
package liveness

import (
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// Tracker is a concurrent map from worker IP to the last time it was heard
// from. It is safe for concurrent use by many heartbeat responders and one
// cleanup loop without a hand-rolled mutex.
type Tracker struct {
	lastSeen *xsync.MapOf[string, time.Time]
}

func New() *Tracker {
	return &Tracker{lastSeen: xsync.NewMapOf[string, time.Time]()}
}

// AddIP records now as ip's last-seen time. If ip was not already tracked,
// onNew is invoked after the map has been updated, never while any internal
// lock is held.
func (t *Tracker) AddIP(ip string, onNew func(ip string)) {
	_, existed := t.lastSeen.LoadAndStore(ip, time.Now())
	if !existed && onNew != nil {
		onNew(ip)
	}
}

// Cleanup removes every IP whose last-seen time is older than timeout and
// invokes onEvict once per removed IP, after the removal. Calling Cleanup
// twice in a row with no intervening AddIP evicts nothing the second time.
func (t *Tracker) Cleanup(timeout time.Duration, onEvict func(ip string)) {
	now := time.Now()
	var evicted []string

	t.lastSeen.Range(func(ip string, last time.Time) bool {
		if now.Sub(last) > timeout {
			evicted = append(evicted, ip)
		}
		return true
	})

	for _, ip := range evicted {
		t.lastSeen.Delete(ip)
	}

	if onEvict == nil {
		return
	}
	for _, ip := range evicted {
		onEvict(ip)
	}
}

// ConnectedIPs returns a snapshot of the currently tracked IPs.
func (t *Tracker) ConnectedIPs() []string {
	ips := make([]string, 0, t.lastSeen.Size())
	t.lastSeen.Range(func(ip string, _ time.Time) bool {
		ips = append(ips, ip)
		return true
	})
	return ips
}

// LastSeen returns the last-seen time for ip and whether it is tracked.
func (t *Tracker) LastSeen(ip string) (time.Time, bool) {
	return t.lastSeen.Load(ip)
}
