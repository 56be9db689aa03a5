package monitor

// Severity thresholds for color coding. Warning is inclusive at the low
// bound, Critical is inclusive at its own bound.
const (
	UtilizationWarnThreshold = 75.0
	UtilizationCritThreshold = 90.0
	TempWarnThreshold        = 75.0
	TempCritThreshold        = 85.0
)

// UtilizationSeverity maps a utilization percentage to a severity level.
func UtilizationSeverity(pct float64) Severity {
	switch {
	case pct >= UtilizationCritThreshold:
		return SeverityCritical
	case pct >= UtilizationWarnThreshold:
		return SeverityWarning
	default:
		return SeverityOK
	}
}

// TemperatureSeverity maps a temperature reading to a severity level.
func TemperatureSeverity(degrees float64) Severity {
	switch {
	case degrees >= TempCritThreshold:
		return SeverityCritical
	case degrees >= TempWarnThreshold:
		return SeverityWarning
	default:
		return SeverityOK
	}
}

// DeviceSeverity is the worst of the device's metric severities. A device
// carrying an error is always Critical and its metrics are never consulted.
func DeviceSeverity(rec DeviceRecord) Severity {
	if rec.Err != "" || rec.Metrics == nil {
		return SeverityCritical
	}
	return maxSeverity(
		UtilizationSeverity(rec.Metrics.Utilization),
		TemperatureSeverity(rec.Metrics.Temperature),
	)
}

// HostSeverity reduces a snapshot to a single severity: Critical on a
// host-level error or any Critical/errored device, Warning if any device
// warns, otherwise OK.
func HostSeverity(snap HostSnapshot) Severity {
	if snap.Err != "" {
		return SeverityCritical
	}
	worst := SeverityOK
	for _, d := range snap.Devices {
		worst = maxSeverity(worst, DeviceSeverity(d))
	}
	return worst
}

func maxSeverity(a, b Severity) Severity {
	if a > b {
		return a
	}
	return b
}
