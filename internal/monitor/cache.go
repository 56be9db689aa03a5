package monitor

import (
	"sync"
	"time"
)

// Cache is the shared status store. The scheduler writes completed
// snapshots; the UI and the metrics exporter read. All methods are safe
// for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	hosts []string
	snaps map[string]HostSnapshot
}

// NewCache seeds one Initializing entry per host so readers see every
// host from the first frame.
func NewCache(hosts []string) *Cache {
	c := &Cache{
		hosts: append([]string(nil), hosts...),
		snaps: make(map[string]HostSnapshot, len(hosts)),
	}
	now := time.Now()
	for _, h := range hosts {
		c.snaps[h] = HostSnapshot{
			Host:      h,
			Status:    StatusInitializing,
			Timestamp: now,
		}
	}
	return c
}

// Put stores a completed snapshot.
func (c *Cache) Put(snap HostSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps[snap.Host] = snap
}

// MarkUpdating flags a host as mid-refresh while keeping its last-known
// devices and error visible. Hosts still Initializing are left alone.
func (c *Cache) MarkUpdating(host string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.snaps[host]
	if !ok || snap.Status == StatusInitializing {
		return
	}
	snap.Status = StatusUpdating
	c.snaps[host] = snap
}

// Get returns the snapshot for one host.
func (c *Cache) Get(host string) (HostSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snaps[host]
	return snap, ok
}

// Snapshot returns a copy of the whole store keyed by host.
func (c *Cache) Snapshot() map[string]HostSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]HostSnapshot, len(c.snaps))
	for h, s := range c.snaps {
		out[h] = s
	}
	return out
}

// Hosts returns the configured host list in its original order.
func (c *Cache) Hosts() []string {
	return append([]string(nil), c.hosts...)
}
