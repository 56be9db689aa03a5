package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUtilizationSeverityBoundaries(t *testing.T) {
	tests := []struct {
		pct  float64
		want Severity
	}{
		{0, SeverityOK},
		{74.9, SeverityOK},
		{75.0, SeverityWarning},
		{89.9, SeverityWarning},
		{90.0, SeverityCritical},
		{100, SeverityCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UtilizationSeverity(tt.pct), "utilization %.1f", tt.pct)
	}
}

func TestTemperatureSeverityBoundaries(t *testing.T) {
	tests := []struct {
		degrees float64
		want    Severity
	}{
		{30, SeverityOK},
		{74.9, SeverityOK},
		{75.0, SeverityWarning},
		{84.9, SeverityWarning},
		{85.0, SeverityCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TemperatureSeverity(tt.degrees), "temperature %.1f", tt.degrees)
	}
}

func TestDeviceSeverity(t *testing.T) {
	ok := DeviceRecord{Metrics: &DeviceMetrics{Utilization: 10, Temperature: 40}}
	assert.Equal(t, SeverityOK, DeviceSeverity(ok))

	warn := DeviceRecord{Metrics: &DeviceMetrics{Utilization: 80, Temperature: 40}}
	assert.Equal(t, SeverityWarning, DeviceSeverity(warn))

	// Highest of the two metric severities wins.
	mixed := DeviceRecord{Metrics: &DeviceMetrics{Utilization: 80, Temperature: 90}}
	assert.Equal(t, SeverityCritical, DeviceSeverity(mixed))

	// An errored device is always Critical, even with benign metric values.
	errored := DeviceRecord{Err: "telemetry parse error: junk"}
	assert.Equal(t, SeverityCritical, DeviceSeverity(errored))
}

func TestHostSeverity(t *testing.T) {
	assert.Equal(t, SeverityCritical, HostSeverity(HostSnapshot{Err: "Connection timed out"}))

	warn := HostSnapshot{Devices: []DeviceRecord{
		{Metrics: &DeviceMetrics{Utilization: 80, Temperature: 40}},
		{Metrics: &DeviceMetrics{Utilization: 10, Temperature: 40}},
	}}
	assert.Equal(t, SeverityWarning, HostSeverity(warn))

	crit := HostSnapshot{Devices: []DeviceRecord{
		{Metrics: &DeviceMetrics{Utilization: 10, Temperature: 40}},
		{Err: "telemetry parse error: junk"},
	}}
	assert.Equal(t, SeverityCritical, HostSeverity(crit))

	assert.Equal(t, SeverityOK, HostSeverity(HostSnapshot{Devices: []DeviceRecord{
		{Metrics: &DeviceMetrics{Utilization: 10, Temperature: 40}},
	}}))
}
