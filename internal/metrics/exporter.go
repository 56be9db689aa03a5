// Package metrics exposes the fleet's current telemetry as Prometheus
// gauges. The collector reads the shared status cache on each scrape, so
// the exporter adds no polling of its own.
package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gpufleet/gpumon/internal/monitor"
)

// Collector derives per-device and per-host gauges from the status cache.
// It uses a custom registry to avoid polluting the global default.
type Collector struct {
	cache   *monitor.Cache
	cluster string

	hostUp       *prometheus.Desc
	deviceCount  *prometheus.Desc
	utilization  *prometheus.Desc
	memoryTotal  *prometheus.Desc
	memoryUsed   *prometheus.Desc
	temperature  *prometheus.Desc
	powerDraw    *prometheus.Desc
	powerLimit   *prometheus.Desc
	deviceBusy   *prometheus.Desc
	deviceErrors *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector over the given cache.
func NewCollector(cache *monitor.Cache, cluster string) *Collector {
	constLabels := prometheus.Labels{"cluster": cluster}
	deviceLabels := []string{"host", "gpu", "uuid", "name"}

	return &Collector{
		cache:   cache,
		cluster: cluster,
		hostUp: prometheus.NewDesc(
			"gpumon_host_up",
			"Whether the host's last telemetry fetch succeeded (1 = up).",
			[]string{"host"}, constLabels),
		deviceCount: prometheus.NewDesc(
			"gpumon_host_devices",
			"Number of devices reported by the host.",
			[]string{"host"}, constLabels),
		deviceErrors: prometheus.NewDesc(
			"gpumon_host_device_errors",
			"Number of device records on the host that failed to parse.",
			[]string{"host"}, constLabels),
		utilization: prometheus.NewDesc(
			"gpumon_gpu_utilization_percent",
			"GPU utilization percentage.",
			deviceLabels, constLabels),
		memoryTotal: prometheus.NewDesc(
			"gpumon_gpu_memory_total_mib",
			"Total GPU memory in MiB.",
			deviceLabels, constLabels),
		memoryUsed: prometheus.NewDesc(
			"gpumon_gpu_memory_used_mib",
			"Used GPU memory in MiB.",
			deviceLabels, constLabels),
		temperature: prometheus.NewDesc(
			"gpumon_gpu_temperature_celsius",
			"GPU temperature in degrees Celsius.",
			deviceLabels, constLabels),
		powerDraw: prometheus.NewDesc(
			"gpumon_gpu_power_draw_watts",
			"GPU power draw in watts. Absent when the device does not report power.",
			deviceLabels, constLabels),
		powerLimit: prometheus.NewDesc(
			"gpumon_gpu_power_limit_watts",
			"GPU power limit in watts. Absent when the device does not report power.",
			deviceLabels, constLabels),
		deviceBusy: prometheus.NewDesc(
			"gpumon_gpu_busy",
			"Whether the GPU currently hosts compute work (1 = busy).",
			deviceLabels, constLabels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hostUp
	ch <- c.deviceCount
	ch <- c.deviceErrors
	ch <- c.utilization
	ch <- c.memoryTotal
	ch <- c.memoryUsed
	ch <- c.temperature
	ch <- c.powerDraw
	ch <- c.powerLimit
	ch <- c.deviceBusy
}

// Collect implements prometheus.Collector. Each scrape reads a consistent
// copy of the cache; hosts still Initializing are skipped since they have
// no data yet.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, snap := range c.cache.Snapshot() {
		if snap.Status == monitor.StatusInitializing {
			continue
		}

		up := 1.0
		if snap.Err != "" {
			up = 0
		}
		ch <- prometheus.MustNewConstMetric(c.hostUp, prometheus.GaugeValue, up, snap.Host)
		ch <- prometheus.MustNewConstMetric(c.deviceCount, prometheus.GaugeValue,
			float64(len(snap.Devices)), snap.Host)

		errCount := 0
		for _, dev := range snap.Devices {
			if dev.Err != "" || dev.Metrics == nil {
				errCount++
				continue
			}
			c.collectDevice(ch, dev)
		}
		ch <- prometheus.MustNewConstMetric(c.deviceErrors, prometheus.GaugeValue,
			float64(errCount), snap.Host)
	}
}

func (c *Collector) collectDevice(ch chan<- prometheus.Metric, dev monitor.DeviceRecord) {
	labels := []string{dev.Host, fmt.Sprintf("%d", dev.Index), dev.UUID, dev.Name}
	m := dev.Metrics

	ch <- prometheus.MustNewConstMetric(c.utilization, prometheus.GaugeValue, m.Utilization, labels...)
	ch <- prometheus.MustNewConstMetric(c.memoryTotal, prometheus.GaugeValue, m.MemoryTotal, labels...)
	ch <- prometheus.MustNewConstMetric(c.memoryUsed, prometheus.GaugeValue, m.MemoryUsed, labels...)
	ch <- prometheus.MustNewConstMetric(c.temperature, prometheus.GaugeValue, m.Temperature, labels...)

	busy := 0.0
	if m.Busy {
		busy = 1
	}
	ch <- prometheus.MustNewConstMetric(c.deviceBusy, prometheus.GaugeValue, busy, labels...)

	if m.PowerDraw != nil {
		ch <- prometheus.MustNewConstMetric(c.powerDraw, prometheus.GaugeValue, *m.PowerDraw, labels...)
	}
	if m.PowerLimit != nil {
		ch <- prometheus.MustNewConstMetric(c.powerLimit, prometheus.GaugeValue, *m.PowerLimit, labels...)
	}
}

// Server serves the /metrics endpoint over HTTP.
type Server struct {
	Registry   *prometheus.Registry
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a metrics server on the given address. Pass ":0" to
// let the OS pick a free port (useful for tests).
func NewServer(addr string, collector *Collector) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collector)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &Server{
		Registry: reg,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start begins listening and serving in a background goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("metrics listener on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = ln

	go func() {
		_ = s.httpServer.Serve(ln)
	}()
	return nil
}

// Addr returns the bound address, valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.httpServer.Addr
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
