// Package monitor implements the GPU fleet polling engine and its TUI dashboard.
//
// The package splits into a concurrent data pipeline and a rendering layer:
//
//	Fetcher    - Runs the two per-host nvidia-smi queries over SSH and
//	             produces a typed HostSnapshot with classified errors
//	Pool       - Manages SSH connection reuse between poll cycles
//	Cache      - The shared host-to-snapshot store; the scheduler writes,
//	             the UI and the metrics exporter read
//	Scheduler  - Relaunches fetchers on a cadence with at most one fetch
//	             in flight per host
//	Aggregate  - Pure reduction of a cache snapshot into a ViewModel
//	Model      - The Bubble Tea model rendering the ViewModel each tick
//
// # Message Flow
//
// The scheduler runs in its own goroutine and owns all cache writes. The
// dashboard follows The Elm Architecture (Model-Update-View) and never
// performs remote I/O itself:
//
//  1. The scheduler fans out one fetch goroutine per due host.
//  2. Completed snapshots are stored in the Cache.
//  3. tickMsg fires at the refresh interval; the model copies the cache
//     and recomputes the ViewModel via Aggregate.
//  4. View() re-renders the dashboard with the new data.
//
// A slow or hung host therefore delays only its own cache entry, never a
// render tick or another host's poll.
//
// # Severity Classification
//
// Thresholds live in classify.go: utilization warns at 75% and goes
// critical at 90%; temperature warns at 75C and goes critical at 85C. A
// device whose telemetry line failed to parse is always critical and is
// excluded from every aggregate.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	d           - Toggle the per-device detail listing
//	j/k, ↑/↓    - Scroll the detail listing
package monitor
