package monitor

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// TelemetryQuery is the per-device telemetry command run on each host.
// One CSV record per device, nine fields, fixed order.
const TelemetryQuery = "nvidia-smi --query-gpu=index,name,uuid,utilization.gpu,memory.total,memory.used,temperature.gpu,power.draw,power.limit --format=csv,noheader,nounits"

// ActivityQuery enumerates hardware ids currently running compute work,
// one per line. Best-effort; its failure never fails a fetch.
const ActivityQuery = "nvidia-smi --query-compute-apps=gpu_uuid --format=csv,noheader,nounits"

// telemetryFieldCount is the number of CSV fields in one telemetry record.
const telemetryFieldCount = 9

// ParseTelemetry parses the telemetry query output line by line. A line that
// fails to decompose produces one DeviceRecord carrying a parse error for
// that line; all other lines are still parsed. Busy flags are set from the
// active set of hardware ids.
func ParseTelemetry(host, output string, active map[string]bool) []DeviceRecord {
	var records []DeviceRecord

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		records = append(records, parseTelemetryLine(host, line, active))
	}

	return records
}

// parseTelemetryLine decomposes one CSV record into a DeviceRecord.
func parseTelemetryLine(host, line string, active map[string]bool) DeviceRecord {
	parseErr := func() DeviceRecord {
		return DeviceRecord{
			Host:  host,
			Index: -1,
			Err:   fmt.Sprintf("telemetry parse error: %s", line),
		}
	}

	fields := strings.Split(line, ", ")
	if len(fields) < telemetryFieldCount {
		return parseErr()
	}

	index, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil || index < 0 {
		return parseErr()
	}

	util, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil {
		return parseErr()
	}
	memTotal, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
	if err != nil {
		return parseErr()
	}
	memUsed, err := strconv.ParseFloat(strings.TrimSpace(fields[5]), 64)
	if err != nil {
		return parseErr()
	}
	temp, err := strconv.ParseFloat(strings.TrimSpace(fields[6]), 64)
	if err != nil {
		return parseErr()
	}

	uuid := strings.TrimSpace(fields[2])

	return DeviceRecord{
		Host:  host,
		Index: index,
		Name:  strings.TrimSpace(fields[1]),
		UUID:  uuid,
		Metrics: &DeviceMetrics{
			Utilization: util,
			MemoryTotal: memTotal,
			MemoryUsed:  memUsed,
			Temperature: temp,
			PowerDraw:   parseOptionalFloat(fields[7]),
			PowerLimit:  parseOptionalFloat(fields[8]),
			Busy:        active[uuid],
		},
	}
}

// parseOptionalFloat parses a power field, returning nil for the
// "[N/A]"-style sentinel nvidia-smi emits when a reading is unavailable.
func parseOptionalFloat(field string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseActiveSet parses the activity query output into the set of hardware
// ids currently hosting compute work.
func ParseActiveSet(output string) map[string]bool {
	active := make(map[string]bool)

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		uuid := strings.TrimSpace(scanner.Text())
		if uuid != "" {
			active[uuid] = true
		}
	}

	return active
}
