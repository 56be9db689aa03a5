package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTelemetryValidLines(t *testing.T) {
	output := `0, NVIDIA A100-SXM4-80GB, GPU-aaa, 95, 81920, 40960, 80, 250.5, 400.0
1, NVIDIA A100-SXM4-80GB, GPU-bbb, 10, 81920, 1024, 40, 60.2, 400.0`

	records := ParseTelemetry("gpu1", output, map[string]bool{"GPU-aaa": true})

	require.Len(t, records, 2)
	first := records[0]
	assert.Equal(t, "gpu1", first.Host)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "NVIDIA A100-SXM4-80GB", first.Name)
	assert.Equal(t, "GPU-aaa", first.UUID)
	assert.Empty(t, first.Err)
	require.NotNil(t, first.Metrics)
	assert.InDelta(t, 95, first.Metrics.Utilization, 0.001)
	assert.InDelta(t, 81920, first.Metrics.MemoryTotal, 0.001)
	assert.InDelta(t, 40960, first.Metrics.MemoryUsed, 0.001)
	assert.InDelta(t, 80, first.Metrics.Temperature, 0.001)
	require.NotNil(t, first.Metrics.PowerDraw)
	assert.InDelta(t, 250.5, *first.Metrics.PowerDraw, 0.001)
	assert.True(t, first.Metrics.Busy)

	assert.False(t, records[1].Metrics.Busy)
}

func TestParseTelemetryPowerSentinel(t *testing.T) {
	output := "0, Tesla T4, GPU-aaa, 5, 15360, 100, 35, [N/A], [N/A]"

	records := ParseTelemetry("gpu1", output, nil)

	require.Len(t, records, 1)
	require.NotNil(t, records[0].Metrics)
	assert.Nil(t, records[0].Metrics.PowerDraw)
	assert.Nil(t, records[0].Metrics.PowerLimit)
}

func TestParseTelemetryMalformedLineIsolated(t *testing.T) {
	output := `0, Tesla T4, GPU-aaa, 5, 15360, 100, 35, 30.0, 70.0
garbage
2, Tesla T4, GPU-ccc, 5, 15360, 100, 35, 30.0, 70.0`

	records := ParseTelemetry("gpu1", output, nil)

	require.Len(t, records, 3)
	assert.Empty(t, records[0].Err)
	assert.Equal(t, -1, records[1].Index)
	assert.Equal(t, "telemetry parse error: garbage", records[1].Err)
	assert.Nil(t, records[1].Metrics)
	assert.Empty(t, records[2].Err)
	assert.Equal(t, 2, records[2].Index)
}

func TestParseTelemetryBadNumeric(t *testing.T) {
	output := "0, Tesla T4, GPU-aaa, not-a-number, 15360, 100, 35, 30.0, 70.0"

	records := ParseTelemetry("gpu1", output, nil)

	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].Err)
	assert.Nil(t, records[0].Metrics)
}

func TestParseTelemetrySkipsBlankLines(t *testing.T) {
	output := "\n0, Tesla T4, GPU-aaa, 5, 15360, 100, 35, 30.0, 70.0\n\n"

	records := ParseTelemetry("gpu1", output, nil)
	assert.Len(t, records, 1)
}

func TestParseActiveSet(t *testing.T) {
	active := ParseActiveSet("GPU-aaa\nGPU-bbb\nGPU-aaa\n\n")

	assert.Len(t, active, 2)
	assert.True(t, active["GPU-aaa"])
	assert.True(t, active["GPU-bbb"])

	assert.Empty(t, ParseActiveSet(""))
}
