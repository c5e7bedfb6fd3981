package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// cliConfig is the persisted CLI configuration. Flags and environment
// variables take precedence over it.
type cliConfig struct {
	Server string `yaml:"server,omitempty"`
	User   string `yaml:"user,omitempty"`
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".postgen", "config.yaml"), nil
}

func loadCLIConfig() (cliConfig, error) {
	var cfg cliConfig
	path, err := configPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func saveCLIConfig(cfg cliConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the saved CLI configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadCLIConfig()
		if err != nil {
			return err
		}
		path, _ := configPath()
		fmt.Println(dimStyle.Render(path))
		fmt.Printf("server: %s\n", orUnset(cfg.Server))
		fmt.Printf("user:   %s\n", orUnset(cfg.User))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <server|user> <value>",
	Short: "Persist a default server URL or user ID",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadCLIConfig()
		if err != nil {
			return err
		}
		switch args[0] {
		case "server":
			cfg.Server = args[1]
		case "user":
			cfg.User = args[1]
		default:
			return fmt.Errorf("unknown config key %q (expected server or user)", args[0])
		}
		if err := saveCLIConfig(cfg); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Saved."))
		return nil
	},
}

func orUnset(s string) string {
	if s == "" {
		return dimStyle.Render("(unset)")
	}
	return s
}

func init() {
	configCmd.AddCommand(configSetCmd)
}
