// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"bv-cli/internal/config"
)

var (
	// configCmd manages the application configuration
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage bv configuration",
		Long: `Manage bv configuration.

Configuration is stored in:
  - Linux: ~/.config/bv/config.cue
  - macOS: ~/Library/Application Support/bv/config.cue
  - Windows: %APPDATA%\bv\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return err
			}
			fmt.Printf("%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value and persist it to the configuration file.

Supported keys: publish_dir, python, orchestrator.url, ui.color_scheme,
ui.verbose.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), args[0], args[1])
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Println(filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewProvider().Load(cmd.Context(), config.LoadOptions{
				ConfigFilePath: cfgFile,
			})
			if err != nil {
				return err
			}
			fmt.Print(config.GenerateCUE(cfg))
			return nil
		},
	})
}

func setConfigValue(ctx context.Context, key, value string) error {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		return err
	}

	switch key {
	case "publish_dir":
		cfg.PublishDir = config.PublishDirPath(value)
	case "python":
		cfg.Python = config.PythonExecutable(value)
	case "orchestrator.url":
		cfg.Orchestrator.URL = value
	case "ui.color_scheme":
		cfg.UI.ColorScheme = config.ColorScheme(value)
	case "ui.verbose":
		verbose, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("ui.verbose takes a boolean, got %q", value)
		}
		cfg.UI.Verbose = verbose
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return errs[0]
	}
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Printf("%s Set %s to %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(key), value)
	return nil
}

func showConfig(ctx context.Context) error {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		return err
	}

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	cfgDir, dirErr := config.ConfigDir()
	if dirErr == nil {
		cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
		if _, statErr := os.Stat(cfgPath); statErr == nil {
			fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), cfgPath)
		} else {
			fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", CmdStyle.Render("publish_dir"), SuccessStyle.Render(cfg.PublishDir.String()))
	fmt.Printf("%s: %s\n", CmdStyle.Render("python"), SuccessStyle.Render(cfg.Python.String()))
	if cfg.Orchestrator.URL != "" {
		fmt.Printf("%s: %s\n", CmdStyle.Render("orchestrator.url"), SuccessStyle.Render(cfg.Orchestrator.URL))
	}
	fmt.Printf("%s: %s\n", CmdStyle.Render("ui.color_scheme"), SuccessStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Printf("%s: %v\n", CmdStyle.Render("ui.verbose"), cfg.UI.Verbose)

	return nil
}
