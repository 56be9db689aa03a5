package monitor

import (
	"fmt"
	"sort"
	"time"

	"github.com/gpufleet/gpumon/internal/util"
)

// HostSummary is one fleet-table row.
type HostSummary struct {
	Host     string
	Status   Status
	Severity Severity

	// Err is set for unreachable hosts; NoData marks a reachable host
	// that reported zero devices. Both replace the numeric columns.
	Err    string
	NoData bool

	Updating        bool
	ActivityUnknown bool

	DeviceTotal  int
	BusyCount    int
	Available    int
	AvailableIDs string // run-length compressed index ranges, "none" if empty

	// Averages over non-errored devices; nil when not applicable.
	AvgUtilization *float64
	AvgMemoryPct   *float64
	AvgTemperature *float64
	TotalPowerDraw *float64

	DeviceTypes []string // distinct, lexicographically sorted
}

// ProblemRow is one attention-worthy host or device. Host-level rows
// carry Index -1.
type ProblemRow struct {
	Host     string
	Index    int
	Name     string
	Severity Severity
	Issues   []string
}

// DetailRow is one device in the optional full listing, with per-metric
// severities for display styling.
type DetailRow struct {
	Host    string
	Index   int
	Name    string
	UUID    string
	Err     string
	Metrics *DeviceMetrics

	UtilSeverity Severity
	TempSeverity Severity
	Severity     Severity
}

// ViewModel is the render-ready reduction of one cache snapshot. It is
// rebuilt from scratch each tick and never mutated afterwards.
type ViewModel struct {
	Cluster     string
	GeneratedAt time.Time

	Hosts    []HostSummary
	Problems []ProblemRow

	// AllClear distinguishes "no problems found" from a view with no
	// hosts at all.
	AllClear bool

	// Details is populated only when the full listing is requested.
	Details []DetailRow
}

// AggregateOptions selects optional view sections.
type AggregateOptions struct {
	IncludeDetails bool
}

// Aggregate reduces a cache snapshot into a ViewModel. Pure: it reads but
// never mutates its inputs, and identical inputs yield identical output
// apart from GeneratedAt. Hosts missing from the snapshot are skipped;
// hosts are ordered naturally so gpu2 precedes gpu10.
func Aggregate(snaps map[string]HostSnapshot, topo Topology, opts AggregateOptions) ViewModel {
	hosts := append([]string(nil), topo.Hosts...)
	util.SortNatural(hosts)

	vm := ViewModel{
		Cluster:     topo.Name,
		GeneratedAt: time.Now(),
	}

	reported := 0
	for _, host := range hosts {
		snap, ok := snaps[host]
		if !ok {
			continue
		}
		if snap.Status != StatusInitializing {
			reported++
		}
		vm.Hosts = append(vm.Hosts, summarize(snap))
		vm.Problems = append(vm.Problems, problemsFor(snap)...)
		if opts.IncludeDetails {
			vm.Details = append(vm.Details, detailsFor(snap)...)
		}
	}

	// All clear is a positive claim: at least one host must have completed
	// a fetch before the fleet can be called healthy.
	vm.AllClear = len(vm.Problems) == 0 && reported > 0
	return vm
}

func summarize(snap HostSnapshot) HostSummary {
	sum := HostSummary{
		Host:            snap.Host,
		Status:          snap.Status,
		Severity:        HostSeverity(snap),
		Updating:        snap.Status == StatusUpdating,
		ActivityUnknown: snap.ActivityUnknown,
	}

	if snap.Err != "" {
		sum.Err = snap.Err
		return sum
	}
	if len(snap.Devices) == 0 {
		sum.NoData = snap.Status != StatusInitializing
		return sum
	}

	var (
		utilSum, memPctSum, tempSum, powerSum float64
		memCount, powerCount                  int
		healthy                               int
		availableIDs                          []int
		types                                 = make(map[string]bool)
	)

	sum.DeviceTotal = len(snap.Devices)
	for _, dev := range snap.Devices {
		if dev.Err != "" || dev.Metrics == nil {
			continue
		}
		healthy++
		m := dev.Metrics

		utilSum += m.Utilization
		tempSum += m.Temperature
		if m.MemoryTotal > 0 {
			memPctSum += m.MemoryUsed / m.MemoryTotal * 100
			memCount++
		}
		if m.PowerDraw != nil {
			powerSum += *m.PowerDraw
			powerCount++
		}
		if m.Busy {
			sum.BusyCount++
		} else {
			sum.Available++
			availableIDs = append(availableIDs, dev.Index)
		}
		if dev.Name != "" {
			types[dev.Name] = true
		}
	}

	sum.AvailableIDs = util.FormatIndexRanges(availableIDs)
	if healthy > 0 {
		sum.AvgUtilization = ptr(utilSum / float64(healthy))
		sum.AvgTemperature = ptr(tempSum / float64(healthy))
	}
	if memCount > 0 {
		sum.AvgMemoryPct = ptr(memPctSum / float64(memCount))
	}
	if powerCount > 0 {
		sum.TotalPowerDraw = ptr(powerSum)
	}
	for name := range types {
		sum.DeviceTypes = append(sum.DeviceTypes, name)
	}
	sort.Strings(sum.DeviceTypes)
	return sum
}

// problemsFor emits attention rows for one host: a host-level row for an
// unreachable or empty host, then per-device rows ordered by index with
// indexless parse errors first.
func problemsFor(snap HostSnapshot) []ProblemRow {
	if snap.Err != "" {
		return []ProblemRow{{
			Host:     snap.Host,
			Index:    -1,
			Severity: SeverityCritical,
			Issues:   []string{snap.Err},
		}}
	}
	if len(snap.Devices) == 0 && snap.Status != StatusInitializing {
		return []ProblemRow{{
			Host:     snap.Host,
			Index:    -1,
			Severity: SeverityWarning,
			Issues:   []string{"no device data"},
		}}
	}

	var rows []ProblemRow
	for _, dev := range snap.Devices {
		if row, ok := problemFor(dev); ok {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Index < rows[j].Index
	})
	return rows
}

func problemFor(dev DeviceRecord) (ProblemRow, bool) {
	row := ProblemRow{Host: dev.Host, Index: dev.Index, Name: dev.Name}

	if dev.Err != "" || dev.Metrics == nil {
		row.Severity = SeverityCritical
		row.Issues = []string{dev.Err}
		return row, true
	}

	m := dev.Metrics
	if sev := UtilizationSeverity(m.Utilization); sev != SeverityOK {
		row.Issues = append(row.Issues, fmt.Sprintf("utilization %.0f%%", m.Utilization))
		row.Severity = maxSeverity(row.Severity, sev)
	}
	if sev := TemperatureSeverity(m.Temperature); sev != SeverityOK {
		row.Issues = append(row.Issues, fmt.Sprintf("temperature %.0fC", m.Temperature))
		row.Severity = maxSeverity(row.Severity, sev)
	}
	return row, len(row.Issues) > 0
}

func detailsFor(snap HostSnapshot) []DetailRow {
	rows := make([]DetailRow, 0, len(snap.Devices))
	for _, dev := range snap.Devices {
		row := DetailRow{
			Host:     dev.Host,
			Index:    dev.Index,
			Name:     dev.Name,
			UUID:     dev.UUID,
			Err:      dev.Err,
			Metrics:  dev.Metrics,
			Severity: DeviceSeverity(dev),
		}
		if dev.Metrics != nil {
			row.UtilSeverity = UtilizationSeverity(dev.Metrics.Utilization)
			row.TempSeverity = TemperatureSeverity(dev.Metrics.Temperature)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Index < rows[j].Index
	})
	return rows
}

func ptr(v float64) *float64 { return &v }
