package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igdm/pkg/config"
	"igdm/pkg/logger"
	"igdm/pkg/profile"
	"igdm/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igdm configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (IGDM_*, OPENAI_API_KEY)
  - .env files (./.env, ~/.igdm.env)
  - Configuration file
  - Default values (lowest priority)

The API key is never read from or written to the configuration file.`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.igdm.yaml'
unless a different path is specified with the --config flag.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after all sources are merged.

The API key is shown masked.`,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Tone, log level and numeric ranges
  - Output and log paths
  - Prompt template and profile directory files`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# igdm configuration file
#
# Environment variables prefixed with IGDM_ override these values.
# The API key is read from OPENAI_API_KEY or IGDM_API_KEY only.

# Chat completions endpoint
openai:
  base_url: "https://api.openai.com/v1"
  model: "gpt-3.5-turbo"

  # Per-request timeout, 0 for none (e.g. 30s)
  timeout: 0

  # Attempts per message for rate limits, network and server errors
  max_attempts: 1

  # Pace requests, 0 for unlimited
  requests_per_minute: 0

# Message generation
generation:
  # Friendly, Direct or Humorous
  tone: "Friendly"

  # Optional text/template file. Fields: .Tone .Username .Bio .Caption
  prompt_template: ""

# Profile lookup
input:
  # Optional YAML file with a "profiles" list of username/bio/caption.
  # Leave empty to use placeholder profiles.
  profiles_file: ""

# CSV export
output:
  directory: "."
  file_name: "generated_dms.csv"
  overwrite_existing: true

# Logging configuration
logging:
  # debug, info, warn, error, disabled
  level: "info"

  # Optional log file
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".igdm.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Fprintln(ui.Output, "\nTo overwrite, first remove the existing file:")
		fmt.Fprintf(ui.Output, "  rm %s\n", configPath)
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		return err
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Fprintln(ui.Output, "\nNext steps:")
	fmt.Fprintln(ui.Output, "1. Export OPENAI_API_KEY or put it in a .env file")
	fmt.Fprintln(ui.Output, "2. Run 'igdm config validate' to check the configuration")
	fmt.Fprintln(ui.Output, "3. Generate messages with 'igdm generate <username>...'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		return err
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(ui.Output)
	fmt.Fprint(ui.Output, string(data))

	key := "(not set)"
	if cfg.HasAPIKey() {
		key = logger.MaskSecret(cfg.OpenAI.APIKey)
	}
	fmt.Fprintln(ui.Output)
	ui.PrintInfo("API key", key)

	fmt.Fprintln(ui.Output, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(ui.Output, "1. Command line flags")
	fmt.Fprintln(ui.Output, "2. Environment variables (IGDM_*, OPENAI_API_KEY)")
	fmt.Fprintln(ui.Output, "3. .env files")
	if configFile != "" {
		fmt.Fprintf(ui.Output, "4. Configuration file: %s\n", configFile)
	} else {
		fmt.Fprintln(ui.Output, "4. Configuration file: (searched in default locations)")
	}
	fmt.Fprintln(ui.Output, "5. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		return err
	}

	warnings := []string{}
	errs := []string{}

	if !cfg.HasAPIKey() {
		warnings = append(warnings, "OpenAI API key not set (OPENAI_API_KEY or IGDM_API_KEY)")
	}

	if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
		errs = append(errs, fmt.Sprintf("Cannot create output directory: %v", err))
	}

	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			errs = append(errs, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if cfg.Generation.PromptTemplate != "" {
		if _, err := os.Stat(cfg.Generation.PromptTemplate); err != nil {
			errs = append(errs, fmt.Sprintf("Prompt template not readable: %v", err))
		}
	}

	if cfg.Input.ProfilesFile != "" {
		if _, err := profile.LoadDirectory(cfg.Input.ProfilesFile); err != nil {
			errs = append(errs, fmt.Sprintf("Profile directory invalid: %v", err))
		}
	}

	if len(errs) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, e := range errs {
			fmt.Fprintf(ui.Output, "  - %s\n", e)
		}
		return fmt.Errorf("configuration has %d errors", len(errs))
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Fprintf(ui.Output, "  - %s\n", w)
		}
		fmt.Fprintln(ui.Output)
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Fprintln(ui.Output, "\nConfiguration summary:")
	fmt.Fprintf(ui.Output, "  Model: %s\n", cfg.OpenAI.Model)
	fmt.Fprintf(ui.Output, "  Tone: %s\n", cfg.Generation.Tone)
	fmt.Fprintf(ui.Output, "  Max attempts: %d\n", cfg.OpenAI.MaxAttempts)
	fmt.Fprintf(ui.Output, "  Rate limit: %d requests/minute\n", cfg.OpenAI.RequestsPerMinute)
	fmt.Fprintf(ui.Output, "  Export: %s\n", filepath.Join(cfg.Output.Directory, cfg.Output.FileName))
	fmt.Fprintf(ui.Output, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
