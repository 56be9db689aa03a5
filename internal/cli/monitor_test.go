package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpufleet/gpumon/internal/config"
	"github.com/gpufleet/gpumon/internal/monitor"
)

func TestResolveInterval(t *testing.T) {
	cluster := &config.Cluster{Name: "demo", Hosts: []string{"gpu1"}}

	d, err := resolveInterval("", cluster)
	require.NoError(t, err)
	assert.Equal(t, monitor.DefaultPollInterval, d)

	cluster.RefreshSeconds = 30
	d, err = resolveInterval("", cluster)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	// The flag beats the cluster file.
	d, err = resolveInterval("10s", cluster)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)
}

func TestResolveIntervalInvalid(t *testing.T) {
	cluster := &config.Cluster{Name: "demo", Hosts: []string{"gpu1"}}

	_, err := resolveInterval("banana", cluster)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid interval")

	_, err = resolveInterval("100ms", cluster)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
}

func TestMonitorUnknownCluster(t *testing.T) {
	withConfigDir(t)

	err := monitorCommand("nope", monitorOptions{ConfigDir: configDirFlag})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
