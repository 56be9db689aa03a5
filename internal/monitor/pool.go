package monitor

import (
	"sync"
	"time"

	"github.com/gpufleet/gpumon/pkg/sshutil"
)

// Pool manages a pool of SSH connections for reuse between poll cycles.
// It keeps connections alive to avoid the overhead of reconnecting on each
// fetch.
type Pool struct {
	mu          sync.Mutex
	connections map[string]*poolEntry
	timeout     time.Duration
	dial        func(host string, timeout time.Duration) (sshutil.SSHClient, error)
}

// poolEntry holds a connection and its metadata.
type poolEntry struct {
	client   sshutil.SSHClient
	lastUsed time.Time
}

// NewPool creates a new SSH connection pool with the given dial timeout.
func NewPool(timeout time.Duration) *Pool {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Pool{
		connections: make(map[string]*poolEntry),
		timeout:     timeout,
		dial: func(host string, timeout time.Duration) (sshutil.SSHClient, error) {
			return sshutil.Dial(host, timeout)
		},
	}
}

// Get retrieves an existing connection for the given target, or dials a new
// one. Dead connections are detected on use by the caller, which should
// CloseOne so the next Get reconnects.
func (p *Pool) Get(target string) (sshutil.SSHClient, error) {
	p.mu.Lock()
	entry, exists := p.connections[target]
	if exists && entry.client != nil {
		entry.lastUsed = time.Now()
		p.mu.Unlock()
		return entry.client, nil
	}
	p.mu.Unlock()

	client, err := p.dial(target, p.timeout)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.connections[target] = &poolEntry{
		client:   client,
		lastUsed: time.Now(),
	}
	p.mu.Unlock()

	return client, nil
}

// CloseOne closes and removes a specific connection from the pool.
func (p *Pool) CloseOne(target string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, ok := p.connections[target]; ok {
		if entry.client != nil {
			_ = entry.client.Close()
		}
		delete(p.connections, target)
	}
}

// Close closes all connections in the pool and clears it.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for target, entry := range p.connections {
		if entry.client != nil {
			_ = entry.client.Close()
		}
		delete(p.connections, target)
	}
}

// Size returns the number of connections in the pool.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.connections)
}
