package monitor

import "time"

// Status is the lifecycle state of a host's cache entry.
type Status int

const (
	// StatusInitializing is the pre-seeded state before the first fetch lands.
	StatusInitializing Status = iota
	// StatusUpdating means a fetch is in flight; Devices hold last-known data.
	StatusUpdating
	// StatusOK means the last fetch succeeded with no device errors.
	StatusOK
	// StatusError means the host was unreachable or a device reported an error.
	StatusError
)

// String returns a human-readable status label.
func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusUpdating:
		return "updating"
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Severity classifies a metric value or a device/host as a whole.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityCritical
)

// String returns a human-readable severity label.
func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// DeviceMetrics contains the telemetry readings for one healthy device.
// Power fields are nil when the device reports the "[N/A]" sentinel.
type DeviceMetrics struct {
	Utilization float64  // percent [0,100]
	MemoryTotal float64  // MiB
	MemoryUsed  float64  // MiB
	Temperature float64  // degrees C
	PowerDraw   *float64 // watts, nil if unavailable
	PowerLimit  *float64 // watts, nil if unavailable
	Busy        bool     // hardware id appeared in the active-compute set
}

// DeviceRecord is one accelerator on one host at one point in time.
// Either Metrics is set (valid reading) or Err is set (that device's line
// failed to parse); never both.
type DeviceRecord struct {
	Host    string
	Index   int    // -1 when the record carries an error with no known index
	Name    string
	UUID    string
	Err     string
	Metrics *DeviceMetrics // nil if Err != ""
}

// HostSnapshot is the unit stored per host in the result cache.
// If Err is set the host itself was unreachable and Devices is empty.
type HostSnapshot struct {
	Host      string
	Devices   []DeviceRecord
	Err       string
	Status    Status
	Timestamp time.Time

	// ActivityUnknown is set after repeated consecutive failures of the
	// active-compute query: Busy flags are then meaningless rather than
	// silently "not busy".
	ActivityUnknown bool
}

// HasDeviceErrors reports whether any device record carries an error.
func (s HostSnapshot) HasDeviceErrors() bool {
	for _, d := range s.Devices {
		if d.Err != "" {
			return true
		}
	}
	return false
}

// Topology is the cluster under observation: a display name and an ordered,
// non-empty list of host identifiers. The core treats it as read-only input.
type Topology struct {
	Name  string
	Hosts []string
}
