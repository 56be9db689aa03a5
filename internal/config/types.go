// Package config manages on-disk cluster definitions: one YAML file per
// cluster under the config directory, each naming the cluster and its hosts.
package config

import (
	"github.com/gpufleet/gpumon/internal/errors"
)

// Cluster is one monitored fleet: a display name and the hosts to poll.
type Cluster struct {
	Name  string   `yaml:"cluster_name" mapstructure:"cluster_name"`
	Hosts []string `yaml:"hosts" mapstructure:"hosts"`

	// User, when set, overrides the SSH user for every host in this
	// cluster. A per-host user@host entry still wins.
	User string `yaml:"user,omitempty" mapstructure:"user"`

	// RefreshSeconds overrides the default poll cadence.
	RefreshSeconds int `yaml:"refresh_seconds,omitempty" mapstructure:"refresh_seconds"`
}

// Validate checks that the cluster definition is usable.
func (c *Cluster) Validate() error {
	if c.Name == "" {
		return errors.New(errors.ErrConfig,
			"Cluster has no name",
			"Add a 'cluster_name' field to the cluster file")
	}
	if len(c.Hosts) == 0 {
		return errors.New(errors.ErrConfig,
			"Cluster '"+c.Name+"' has no hosts",
			"Add at least one host under the 'hosts' list")
	}
	seen := make(map[string]bool, len(c.Hosts))
	for _, h := range c.Hosts {
		if h == "" {
			return errors.New(errors.ErrConfig,
				"Cluster '"+c.Name+"' contains an empty host entry",
				"Remove the blank line from the 'hosts' list")
		}
		if seen[h] {
			return errors.New(errors.ErrConfig,
				"Cluster '"+c.Name+"' lists host '"+h+"' twice",
				"Remove the duplicate entry from the 'hosts' list")
		}
		seen[h] = true
	}
	if c.RefreshSeconds < 0 {
		return errors.New(errors.ErrConfig,
			"Cluster '"+c.Name+"' has a negative refresh interval",
			"Use a positive 'refresh_seconds' value or remove it")
	}
	return nil
}
