package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpufleet/gpumon/internal/config"
)

func withConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig := configDirFlag
	configDirFlag = dir
	t.Cleanup(func() { configDirFlag = orig })
	return dir
}

func TestClusterAddNonInteractive(t *testing.T) {
	dir := withConfigDir(t)

	require.NoError(t, clusterAddCommand("training", "gpu1, gpu2 ,gpu10", "ml", false))

	cluster, err := config.Load(dir, "training")
	require.NoError(t, err)
	assert.Equal(t, "training", cluster.Name)
	assert.Equal(t, []string{"gpu1", "gpu2", "gpu10"}, cluster.Hosts)
	assert.Equal(t, "ml", cluster.User)
}

func TestClusterAddRejectsDuplicateHosts(t *testing.T) {
	withConfigDir(t)

	err := clusterAddCommand("training", "gpu1,gpu1", "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twice")
}

func TestClusterAddExistingRequiresConfirmation(t *testing.T) {
	dir := withConfigDir(t)
	require.NoError(t, clusterAddCommand("training", "gpu1,gpu2,gpu3", "ml", false))

	// Stdin is not a terminal here, so the overwrite prompt cannot run and
	// the command must refuse instead of replacing the file.
	err := clusterAddCommand("training", "other1", "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	cluster, loadErr := config.Load(dir, "training")
	require.NoError(t, loadErr)
	assert.Equal(t, []string{"gpu1", "gpu2", "gpu3"}, cluster.Hosts)
	assert.Equal(t, "ml", cluster.User)
}

func TestClusterAddForceOverwrites(t *testing.T) {
	dir := withConfigDir(t)
	require.NoError(t, clusterAddCommand("training", "gpu1,gpu2,gpu3", "ml", false))

	require.NoError(t, clusterAddCommand("training", "other1", "", true))

	cluster, err := config.Load(dir, "training")
	require.NoError(t, err)
	assert.Equal(t, []string{"other1"}, cluster.Hosts)
}

func TestClusterRemoveForce(t *testing.T) {
	dir := withConfigDir(t)
	require.NoError(t, clusterAddCommand("gone", "gpu1", "", false))

	require.NoError(t, clusterRemoveCommand("gone", true))

	names, err := config.List(dir)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestClusterRemoveMissing(t *testing.T) {
	withConfigDir(t)

	err := clusterRemoveCommand("nope", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestClusterListEmpty(t *testing.T) {
	withConfigDir(t)
	assert.NoError(t, clusterListCommand())
}

func TestSplitHosts(t *testing.T) {
	assert.Equal(t, []string{"gpu1", "gpu2"}, splitHosts("gpu1, gpu2"))
	assert.Equal(t, []string{"ops@gpu1"}, splitHosts(" ops@gpu1 ,, "))
	assert.Nil(t, splitHosts(""))
}
