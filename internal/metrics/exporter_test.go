package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpufleet/gpumon/internal/monitor"
)

func seededCache() *monitor.Cache {
	cache := monitor.NewCache([]string{"gpu1", "gpu2", "gpu3"})

	draw := 250.0
	limit := 400.0
	cache.Put(monitor.HostSnapshot{
		Host:   "gpu1",
		Status: monitor.StatusOK,
		Devices: []monitor.DeviceRecord{
			{
				Host: "gpu1", Index: 0, Name: "NVIDIA A100", UUID: "GPU-aaa",
				Metrics: &monitor.DeviceMetrics{
					Utilization: 95,
					MemoryTotal: 81920,
					MemoryUsed:  40960,
					Temperature: 80,
					PowerDraw:   &draw,
					PowerLimit:  &limit,
					Busy:        true,
				},
			},
			{Host: "gpu1", Index: -1, Err: "telemetry parse error: junk"},
		},
		Timestamp: time.Now(),
	})
	cache.Put(monitor.HostSnapshot{
		Host:      "gpu2",
		Status:    monitor.StatusError,
		Err:       "Connection timed out",
		Timestamp: time.Now(),
	})
	// gpu3 left Initializing.
	return cache
}

func TestCollectorGauges(t *testing.T) {
	c := NewCollector(seededCache(), "demo")

	expected := `
# HELP gpumon_host_up Whether the host's last telemetry fetch succeeded (1 = up).
# TYPE gpumon_host_up gauge
gpumon_host_up{cluster="demo",host="gpu1"} 1
gpumon_host_up{cluster="demo",host="gpu2"} 0
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "gpumon_host_up"))

	expected = `
# HELP gpumon_gpu_utilization_percent GPU utilization percentage.
# TYPE gpumon_gpu_utilization_percent gauge
gpumon_gpu_utilization_percent{cluster="demo",gpu="0",host="gpu1",name="NVIDIA A100",uuid="GPU-aaa"} 95
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "gpumon_gpu_utilization_percent"))

	expected = `
# HELP gpumon_host_device_errors Number of device records on the host that failed to parse.
# TYPE gpumon_host_device_errors gauge
gpumon_host_device_errors{cluster="demo",host="gpu1"} 1
gpumon_host_device_errors{cluster="demo",host="gpu2"} 0
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "gpumon_host_device_errors"))
}

func TestCollectorSkipsAbsentPower(t *testing.T) {
	cache := monitor.NewCache([]string{"gpu1"})
	cache.Put(monitor.HostSnapshot{
		Host:   "gpu1",
		Status: monitor.StatusOK,
		Devices: []monitor.DeviceRecord{
			{
				Host: "gpu1", Index: 0, Name: "Tesla T4", UUID: "GPU-aaa",
				Metrics: &monitor.DeviceMetrics{Utilization: 10, MemoryTotal: 15360, Temperature: 35},
			},
		},
	})
	c := NewCollector(cache, "demo")

	assert.Equal(t, 0, testutil.CollectAndCount(c, "gpumon_gpu_power_draw_watts"))
	assert.Equal(t, 1, testutil.CollectAndCount(c, "gpumon_gpu_utilization_percent"))
}

func TestServerServesMetrics(t *testing.T) {
	srv := NewServer(":0", NewCollector(seededCache(), "demo"))
	require.NoError(t, srv.Start())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "gpumon_host_up")
	assert.Contains(t, string(body), "gpumon_gpu_busy")
}
