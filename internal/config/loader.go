package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gpufleet/gpumon/internal/errors"
)

// DefaultDirName is the cluster directory under the user config root.
const DefaultDirName = "gpumon/clusters"

// clusterExt is the file extension for cluster definitions.
const clusterExt = ".yaml"

// Dir resolves the cluster directory. An explicit path (from --config-dir)
// wins; otherwise the user config directory is used.
func Dir(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	root, err := os.UserConfigDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine config directory",
			"Set HOME or pass --config-dir explicitly")
	}
	return filepath.Join(root, DefaultDirName), nil
}

// Path returns the file path for a named cluster inside dir.
func Path(dir, name string) string {
	return filepath.Join(dir, name+clusterExt)
}

// Load reads and validates one cluster definition by name.
func Load(dir, name string) (*Cluster, error) {
	path := Path(dir, name)

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Cluster '"+name+"' not found",
				"Run 'gpumon cluster list' to see configured clusters, or 'gpumon cluster add' to create one")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read cluster file "+path,
			"Check the file exists and is valid YAML")
	}

	cluster := &Cluster{}
	if err := v.Unmarshal(cluster); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid cluster file format",
			"Check the YAML syntax in "+path)
	}
	if cluster.Name == "" {
		cluster.Name = name
	}
	if err := cluster.Validate(); err != nil {
		return nil, err
	}
	return cluster, nil
}

// Save writes a cluster definition, creating the directory if needed.
func Save(dir string, cluster *Cluster) error {
	if err := cluster.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create config directory "+dir,
			"Check directory permissions")
	}

	data, err := yaml.Marshal(cluster)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot encode cluster '"+cluster.Name+"'", "")
	}
	path := Path(dir, cluster.Name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot write cluster file "+path,
			"Check directory permissions")
	}
	return nil
}

// List returns the names of all configured clusters, sorted. A missing
// directory is not an error; it just means no clusters yet.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot read config directory "+dir,
			"Check directory permissions")
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), clusterExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), clusterExt))
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes a cluster definition.
func Remove(dir, name string) error {
	path := Path(dir, name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrConfig,
				"Cluster '"+name+"' not found",
				"Run 'gpumon cluster list' to see configured clusters")
		}
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot remove cluster file "+path,
			"Check file permissions")
	}
	return nil
}
