package main

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/davetashner/sonarstep/internal/config"
)

// configGlobal selects the global config file for get and set.
var configGlobal bool

// sourceColors labels where a listed value came from.
var sourceColors = map[string]*color.Color{
	"global": color.New(color.FgCyan),
	"repo":   color.New(color.FgGreen),
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and modify sonarstep configuration",
	Long: `View and modify the settings read from .sonarstep.yaml (or .sonarstep.toml)
and the global ~/.config/sonarstep/config.yaml. Repo values override global
values; flags override both.`,
}

var configGetCmd = &cobra.Command{
	Use:     "get <key>",
	Short:   "Print the effective value of a key",
	Example: "  sonarstep config get timeout\n  sonarstep config get --global base_url",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:     "set <key> <value>",
	Short:   "Write a key to the repo (or --global) YAML config",
	Example: "  sonarstep config set timeout 30s\n  sonarstep config set --global concurrency 8",
	Args:    cobra.ExactArgs(2),
	RunE:    runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List set keys with their source",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

func init() {
	configGetCmd.Flags().BoolVar(&configGlobal, "global", false, "read only the global config")
	configSetCmd.Flags().BoolVar(&configGlobal, "global", false, "write the global config")

	configCmd.AddCommand(configGetCmd, configSetCmd, configListCmd)
}

// resetConfigFlags resets config command flags for testing.
func resetConfigFlags() {
	configGlobal = false
	for _, c := range []*cobra.Command{configGetCmd, configSetCmd} {
		if f := c.Flags().Lookup("global"); f != nil {
			_ = f.Value.Set("false")
			f.Changed = false
		}
	}
}

// loadLayers reads the global and repo configs.
func loadLayers() (global, repo *config.Config, err error) {
	if global, err = config.LoadGlobal(); err != nil {
		return nil, nil, fmt.Errorf("loading global config: %w", err)
	}
	if repo, err = config.Load("."); err != nil {
		return nil, nil, fmt.Errorf("loading repo config: %w", err)
	}
	return global, repo, nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	global, repo, err := loadLayers()
	if err != nil {
		return err
	}
	cfg := config.Overlay(global, repo)
	if configGlobal {
		cfg = global
	}

	val, err := config.GetValue(cfg, args[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	if err := config.ValidateKeyPath(key); err != nil {
		return err
	}

	path := filepath.Join(".", config.FileName)
	if configGlobal {
		path = config.GlobalConfigPath()
	}

	data, err := config.LoadRaw(path)
	if err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}
	if err := config.SetValue(data, key, raw); err != nil {
		return err
	}

	// Decode the edited map as a Config so a bad value never reaches disk.
	buf, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	var cfg config.Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := config.Validate(&cfg); err != nil {
		return err
	}

	if err := config.WriteFile(path, data); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, raw)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	global, repo, err := loadLayers()
	if err != nil {
		return err
	}

	values := make(map[string]any)
	sources := make(map[string]string)
	for _, layer := range []struct {
		name string
		cfg  *config.Config
	}{{"global", global}, {"repo", repo}} {
		flat, err := config.FlattenConfig(layer.cfg)
		if err != nil {
			return err
		}
		for k, v := range flat {
			values[k] = v
			sources[k] = layer.name
		}
	}

	w := cmd.OutOrStdout()
	if len(values) == 0 {
		_, _ = fmt.Fprintln(w, "No configuration set.")
		_, _ = fmt.Fprintln(w, "Run 'sonarstep config set <key> <value>' to set values.")
		return nil
	}
	for _, k := range slices.Sorted(maps.Keys(values)) {
		label := sourceColors[sources[k]].Sprintf("(%s)", sources[k])
		_, _ = fmt.Fprintf(w, "%s = %v %s\n", k, values[k], label)
	}
	return nil
}
