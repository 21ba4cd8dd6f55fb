package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/lexsearch/configs"
	"github.com/Aman-CERP/lexsearch/internal/config"
	"github.com/Aman-CERP/lexsearch/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage lexsearch configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/lexsearch/config.yaml)
  3. Project config (.lexsearch.yaml)
  4. .env file in the project root
  5. Environment variables (LEXSEARCH_*)`,
		Example: `  # Create .lexsearch.yaml and the partition folder
  lexsearch config init

  # Show effective configuration
  lexsearch config show`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force bool
		user  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file",
		Long: `Create .lexsearch.yaml in the current directory from the built-in
template and create the partition folder it names.

With --user, create the user configuration file instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if user {
				return runConfigInitUser(cmd, force)
			}
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	cmd.Flags().BoolVar(&user, "user", false, "Create the user configuration instead of the project one")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long: `Show the effective configuration after merging all sources, with
paths resolved against the project root.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print configuration file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "user:    %s\n", config.GetUserConfigPath())

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
			root, err := config.FindProjectRoot(cwd)
			if err != nil {
				root = cwd
			}
			project := config.FindProjectConfig(root)
			if project == "" {
				project = "(none)"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "project: %s\n", project)
			return nil
		},
	}
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	configPath := filepath.Join(cwd, config.ProjectConfigNames[0])

	if fileExists(configPath) && !force {
		out.Warning("Project configuration already exists")
		out.Statusf("📁", "Location: %s", configPath)
		out.Status("💡", "Use --force to overwrite it")
		return nil
	}

	if err := os.WriteFile(configPath, []byte(configs.ProjectConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Load through the normal path so env overrides apply to the folder.
	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Indexing.PartitionFolder, 0o755); err != nil {
		return fmt.Errorf("failed to create partition folder: %w", err)
	}

	out.Success("Created project configuration")
	out.Statusf("📁", "Location: %s", configPath)
	out.Statusf("📂", "Partition folder: %s", cfg.Indexing.PartitionFolder)
	out.Newline()
	out.Status("📋", "Next steps:")
	out.Status("", "  1. Set enumeration.mode, and enumeration.roots for builtin mode")
	out.Status("", "  2. Run 'lexsearch index'")

	return nil
}

func runConfigInitUser(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	configPath := config.GetUserConfigPath()

	if fileExists(configPath) && !force {
		out.Warning("User configuration already exists")
		out.Statusf("📁", "Location: %s", configPath)
		out.Status("💡", "Use --force to overwrite it")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(configs.UserConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created user configuration")
	out.Statusf("📁", "Location: %s", configPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool, source string) error {
	var cfg *config.Config

	switch source {
	case "merged":
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		root, err := config.FindProjectRoot(cwd)
		if err != nil {
			root = cwd
		}
		if err := loadDotEnv(root); err != nil {
			return err
		}
		cfg, err = config.Load(root)
		if err != nil {
			return err
		}
	case "defaults":
		cfg = config.NewConfig()
	default:
		return fmt.Errorf("invalid --source %q: must be merged or defaults", source)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# Source: %s\n", source)
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
