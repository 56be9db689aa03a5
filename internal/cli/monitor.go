package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gpufleet/gpumon/internal/config"
	"github.com/gpufleet/gpumon/internal/errors"
	"github.com/gpufleet/gpumon/internal/logger"
	"github.com/gpufleet/gpumon/internal/metrics"
	"github.com/gpufleet/gpumon/internal/monitor"
	"github.com/gpufleet/gpumon/pkg/sshutil"
)

var (
	monitorUserFlag     string
	monitorIntervalFlag string
	monitorDetailsFlag  bool
	monitorMetricsFlag  string
)

// monitorCmd starts the dashboard for a named cluster.
var monitorCmd = &cobra.Command{
	Use:   "monitor <cluster>",
	Short: "Start the live dashboard for a cluster",
	Long: `Start the interactive dashboard for a configured cluster.

Each host is polled concurrently over SSH; a slow or unreachable host
never delays the others. Problem detection runs on every refresh.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  d           Toggle the per-device detail listing
  up/down j/k Scroll the detail listing

Examples:
  gpumon monitor training
  gpumon monitor training --interval 10s --user ml
  gpumon monitor training --metrics-addr :9135`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(args[0], monitorOptions{
			ConfigDir:   configDirFlag,
			User:        monitorUserFlag,
			Interval:    monitorIntervalFlag,
			ShowDetails: monitorDetailsFlag,
			MetricsAddr: monitorMetricsFlag,
		})
	},
}

// monitorOptions collects the dashboard's tunables.
type monitorOptions struct {
	ConfigDir   string
	User        string
	Interval    string
	ShowDetails bool
	MetricsAddr string
}

// monitorCommand loads the cluster, verifies SSH is usable, and runs the
// scheduler plus the Bubble Tea program until the user quits.
func monitorCommand(clusterName string, opts monitorOptions) error {
	dir, err := config.Dir(opts.ConfigDir)
	if err != nil {
		return err
	}
	cluster, err := config.Load(dir, clusterName)
	if err != nil {
		return err
	}

	interval, err := resolveInterval(opts.Interval, cluster)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrExec,
			"Standard output is not a terminal",
			"The dashboard needs an interactive terminal to render")
	}

	// Fail fast if no SSH credentials are usable at all; per-host auth
	// problems still surface as host errors in the dashboard.
	if err := sshutil.CheckAuth(); err != nil {
		return err
	}
	defer sshutil.CloseAgent()

	user := opts.User
	if user == "" {
		user = cluster.User
	}

	pool := monitor.NewPool(0)
	defer pool.Close()

	fetcher := monitor.NewFetcher(monitor.NewPoolRunner(pool), user, logger.NewEnvLogger("[fetch]"))
	cache := monitor.NewCache(cluster.Hosts)
	sched := monitor.NewScheduler(fetcher, cache, interval, logger.NewEnvLogger("[sched]"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	if opts.MetricsAddr != "" {
		srv := metrics.NewServer(opts.MetricsAddr, metrics.NewCollector(cache, cluster.Name))
		if err := srv.Start(); err != nil {
			return errors.WrapWithCode(err, errors.ErrExec,
				"Cannot start metrics endpoint on "+opts.MetricsAddr,
				"Check the address is free and bindable")
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	topo := monitor.Topology{Name: cluster.Name, Hosts: cluster.Hosts}
	model := monitor.NewModel(cache, topo, interval, opts.ShowDetails)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// resolveInterval picks the refresh interval: flag, then cluster file,
// then the default cadence.
func resolveInterval(flag string, cluster *config.Cluster) (time.Duration, error) {
	if flag != "" {
		parsed, err := time.ParseDuration(flag)
		if err != nil {
			return 0, errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Invalid interval: %s", flag),
				"Use a valid duration like 5s, 10s, or 1m")
		}
		if parsed < 500*time.Millisecond {
			return 0, errors.New(errors.ErrConfig,
				"Interval too short",
				"Minimum interval is 500ms to avoid overwhelming hosts")
		}
		return parsed, nil
	}
	if cluster.RefreshSeconds > 0 {
		return time.Duration(cluster.RefreshSeconds) * time.Second, nil
	}
	return monitor.DefaultPollInterval, nil
}

func init() {
	monitorCmd.Flags().StringVar(&monitorUserFlag, "user", "", "SSH user override for all hosts")
	monitorCmd.Flags().StringVar(&monitorIntervalFlag, "interval", "", "refresh interval (e.g., 5s, 10s, 1m)")
	monitorCmd.Flags().BoolVar(&monitorDetailsFlag, "details", false, "start with the per-device listing open")
	monitorCmd.Flags().StringVar(&monitorMetricsFlag, "metrics-addr", "", "serve Prometheus metrics on this address (e.g., :9135)")

	rootCmd.AddCommand(monitorCmd)
}
