package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gpufleet/gpumon/internal/config"
	"github.com/gpufleet/gpumon/internal/errors"
	"github.com/gpufleet/gpumon/internal/util"
)

var (
	addNameFlag  string
	addHostsFlag string
	addUserFlag  string
	addForce     bool
	removeForce  bool
)

// clusterCmd groups the cluster management subcommands.
var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Manage cluster definitions",
	Long:  `List, add, and remove the cluster definitions the dashboard monitors.`,
}

var clusterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured clusters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return clusterListCommand()
	},
}

var clusterAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a cluster definition",
	Long: `Create a new cluster definition.

Runs interactively unless --name and --hosts are given.

Examples:
  gpumon cluster add
  gpumon cluster add --name training --hosts gpu1,gpu2,gpu10 --user ml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return clusterAddCommand(addNameFlag, addHostsFlag, addUserFlag, addForce)
	},
}

var clusterRemoveCmd = &cobra.Command{
	Use:   "remove <cluster>",
	Short: "Remove a cluster definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return clusterRemoveCommand(args[0], removeForce)
	},
}

func clusterListCommand() error {
	dir, err := config.Dir(configDirFlag)
	if err != nil {
		return err
	}
	names, err := config.List(dir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No clusters configured. Run 'gpumon cluster add' to create one.")
		return nil
	}

	for _, name := range names {
		cluster, err := config.Load(dir, name)
		if err != nil {
			fmt.Printf("%-20s (unreadable: %v)\n", name, err)
			continue
		}
		fmt.Printf("%-20s %d %s\n", name, len(cluster.Hosts),
			util.Pluralize(len(cluster.Hosts), "host", "hosts"))
	}
	return nil
}

func clusterAddCommand(name, hosts, user string, force bool) error {
	dir, err := config.Dir(configDirFlag)
	if err != nil {
		return err
	}

	if name == "" || hosts == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Cluster name").
					Description("A short identifier for this fleet").
					Placeholder("training").
					Value(&name).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("cluster name is required")
						}
						if strings.ContainsAny(s, " \t\n/") {
							return fmt.Errorf("cluster name cannot contain whitespace or slashes")
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Hosts").
					Description("Comma-separated host names (user@host entries allowed)").
					Placeholder("gpu1, gpu2, gpu10").
					Value(&hosts).
					Validate(func(s string) error {
						if len(splitHosts(s)) == 0 {
							return fmt.Errorf("at least one host is required")
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("SSH user (optional)").
					Description("Applied to every host without an explicit user@").
					Placeholder("leave empty to use your SSH config").
					Value(&user),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get cluster details",
				"Pass --name and --hosts to skip the interactive form")
		}
	}

	cluster := &config.Cluster{
		Name:  strings.TrimSpace(name),
		Hosts: splitHosts(hosts),
		User:  strings.TrimSpace(user),
	}

	if !force {
		if _, statErr := os.Stat(config.Path(dir, cluster.Name)); statErr == nil {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New(errors.ErrConfig,
					fmt.Sprintf("Cluster '%s' already exists", cluster.Name),
					"Pass --force to overwrite it")
			}
			var overwrite bool
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Cluster '%s' already exists. Overwrite?", cluster.Name)).
						Value(&overwrite),
				),
			)
			if err := form.Run(); err != nil {
				return errors.WrapWithCode(err, errors.ErrConfig,
					"Failed to get confirmation",
					"Use --force to overwrite without prompting")
			}
			if !overwrite {
				fmt.Println("Cancelled.")
				return nil
			}
		}
	}

	if err := config.Save(dir, cluster); err != nil {
		return err
	}

	fmt.Printf("Cluster '%s' saved with %d %s.\n", cluster.Name, len(cluster.Hosts),
		util.Pluralize(len(cluster.Hosts), "host", "hosts"))
	fmt.Printf("Start monitoring with: gpumon %s\n", cluster.Name)
	return nil
}

func clusterRemoveCommand(name string, force bool) error {
	dir, err := config.Dir(configDirFlag)
	if err != nil {
		return err
	}

	if !force {
		var confirm bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Remove cluster '%s'?", name)).
					Value(&confirm),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get confirmation",
				"Use --force to remove without prompting")
		}
		if !confirm {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := config.Remove(dir, name); err != nil {
		return err
	}
	fmt.Printf("Cluster '%s' removed.\n", name)
	return nil
}

// splitHosts parses a comma-separated host list, dropping blanks.
func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		h = strings.TrimSpace(h)
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func init() {
	clusterAddCmd.Flags().StringVar(&addNameFlag, "name", "", "cluster name")
	clusterAddCmd.Flags().StringVar(&addHostsFlag, "hosts", "", "comma-separated host list")
	clusterAddCmd.Flags().StringVar(&addUserFlag, "user", "", "default SSH user for the cluster")
	clusterAddCmd.Flags().BoolVarP(&addForce, "force", "f", false, "overwrite an existing cluster without confirmation")
	clusterRemoveCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "remove without confirmation")

	clusterCmd.AddCommand(clusterListCmd)
	clusterCmd.AddCommand(clusterAddCmd)
	clusterCmd.AddCommand(clusterRemoveCmd)
	rootCmd.AddCommand(clusterCmd)
}
