package monitor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gpufleet/gpumon/internal/logger"
)

// Default per-query timeouts. Device discovery gets the long timeout; the
// best-effort activity query gets a shorter one.
const (
	DefaultTelemetryTimeout = 25 * time.Second
	DefaultActivityTimeout  = 10 * time.Second
)

// activityFailureThreshold is how many consecutive activity-query failures
// a host tolerates before its Busy flags are reported as unknown instead of
// silently "not busy".
const activityFailureThreshold = 3

// Runner executes a command against a remote host. The production
// implementation runs over the SSH pool; tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, target, cmd string) (stdout, stderr []byte, exitCode int, err error)
}

// poolRunner executes commands over pooled SSH connections.
type poolRunner struct {
	pool *Pool
}

// NewPoolRunner returns a Runner backed by the given connection pool.
func NewPoolRunner(pool *Pool) Runner {
	return &poolRunner{pool: pool}
}

func (r *poolRunner) Run(ctx context.Context, target, cmd string) ([]byte, []byte, int, error) {
	client, err := r.pool.Get(target)
	if err != nil {
		return nil, nil, -1, err
	}

	stdout, stderr, exitCode, err := client.ExecContext(ctx, cmd)
	if err != nil {
		// Transport-level failure: drop the connection so the next poll
		// cycle dials fresh instead of reusing a dead session.
		r.pool.CloseOne(target)
	}
	return stdout, stderr, exitCode, err
}

// Fetcher produces a typed HostSnapshot per host by issuing the two remote
// telemetry queries. One Fetcher serves all hosts; it is safe for
// concurrent use.
type Fetcher struct {
	runner Runner
	user   string // optional credential override, prepended as user@host
	log    logger.Logger

	telemetryTimeout time.Duration
	activityTimeout  time.Duration

	mu            sync.Mutex
	activityFails map[string]int // consecutive activity-query failures per host
}

// NewFetcher creates a fetcher over the given runner. user, if non-empty,
// overrides the SSH user for every host.
func NewFetcher(runner Runner, user string, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.Noop()
	}
	return &Fetcher{
		runner:           runner,
		user:             user,
		log:              log,
		telemetryTimeout: DefaultTelemetryTimeout,
		activityTimeout:  DefaultActivityTimeout,
		activityFails:    make(map[string]int),
	}
}

// SetTimeouts overrides the per-query timeouts. Zero values keep the default.
func (f *Fetcher) SetTimeouts(telemetry, activity time.Duration) {
	if telemetry > 0 {
		f.telemetryTimeout = telemetry
	}
	if activity > 0 {
		f.activityTimeout = activity
	}
}

// Fetch queries one host and returns its snapshot. Host-level failures
// (transport errors, non-zero exit, no output) produce an error snapshot
// with an empty device list. A failed activity query never fails the fetch;
// its absence only means no device is flagged busy.
func (f *Fetcher) Fetch(ctx context.Context, host string) HostSnapshot {
	target := f.target(host)

	tctx, cancel := context.WithTimeout(ctx, f.telemetryTimeout)
	defer cancel()

	stdout, stderr, exitCode, err := f.runner.Run(tctx, target, TelemetryQuery)
	if err != nil {
		return f.hostError(host, classifyTransportError(err))
	}
	if exitCode != 0 {
		return f.hostError(host, classifyRemoteFailure(string(stderr), exitCode))
	}

	output := strings.TrimSpace(string(stdout))
	if output == "" {
		return f.hostError(host, "nvidia-smi returned no GPU data")
	}

	active, activityUnknown := f.fetchActiveSet(ctx, host, target)

	devices := ParseTelemetry(host, output, active)

	snap := HostSnapshot{
		Host:            host,
		Devices:         devices,
		Status:          StatusOK,
		Timestamp:       time.Now(),
		ActivityUnknown: activityUnknown,
	}
	if snap.HasDeviceErrors() {
		snap.Status = StatusError
	}
	return snap
}

// fetchActiveSet runs the best-effort activity query. Failures are swallowed
// and logged; after activityFailureThreshold consecutive failures the busy
// state is reported as unknown.
func (f *Fetcher) fetchActiveSet(ctx context.Context, host, target string) (map[string]bool, bool) {
	actx, cancel := context.WithTimeout(ctx, f.activityTimeout)
	defer cancel()

	stdout, _, exitCode, err := f.runner.Run(actx, target, ActivityQuery)
	if err != nil || exitCode != 0 {
		fails := f.recordActivityFailure(host)
		if err != nil {
			f.log.Warn("activity query failed on %s: %v", host, err)
		} else {
			f.log.Warn("activity query failed on %s: exit %d", host, exitCode)
		}
		return nil, fails >= activityFailureThreshold
	}

	f.resetActivityFailures(host)
	return ParseActiveSet(string(stdout)), false
}

func (f *Fetcher) recordActivityFailure(host string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activityFails[host]++
	return f.activityFails[host]
}

func (f *Fetcher) resetActivityFailures(host string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.activityFails, host)
}

// target returns the SSH target for a host, applying the user override.
func (f *Fetcher) target(host string) string {
	if f.user != "" && !strings.Contains(host, "@") {
		return f.user + "@" + host
	}
	return host
}

// hostError builds an unreachable-host snapshot. Host-level errors always
// carry an empty device list.
func (f *Fetcher) hostError(host, msg string) HostSnapshot {
	return HostSnapshot{
		Host:      host,
		Err:       msg,
		Status:    StatusError,
		Timestamp: time.Now(),
	}
}

// classifyTransportError maps a transport failure to one of the known
// host-level error messages. First match wins; unclassified falls through
// to the raw error's first line.
func classifyTransportError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Permission denied") || strings.Contains(msg, "unable to authenticate"):
		return "Permission denied (check SSH keys/agent, user)"
	case strings.Contains(msg, "Could not resolve hostname") ||
		strings.Contains(msg, "Name or service not known") ||
		strings.Contains(msg, "no such host"):
		return "Could not resolve hostname"
	case strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "i/o timeout") ||
		strings.Contains(msg, "timed out"):
		return "Connection timed out"
	default:
		return firstLine(msg)
	}
}

// classifyRemoteFailure maps a non-zero remote exit to a host-level error
// message using the command's diagnostic text.
func classifyRemoteFailure(stderr string, exitCode int) string {
	switch {
	case strings.Contains(stderr, "Permission denied"):
		return "Permission denied (check SSH keys/agent, user)"
	case strings.Contains(stderr, "Could not resolve hostname") ||
		strings.Contains(stderr, "Name or service not known"):
		return "Could not resolve hostname"
	case strings.Contains(stderr, "Connection timed out"):
		return "Connection timed out"
	case strings.Contains(stderr, "command not found") || exitCode == 127:
		return "nvidia-smi not found on host"
	}

	if msg := firstLine(stderr); msg != "" {
		return msg
	}
	return fmt.Sprintf("remote command failed (exit %d)", exitCode)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
