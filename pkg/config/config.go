package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the DM generator
type Config struct {
	// Text-generation service settings
	OpenAI OpenAIConfig `yaml:"openai" json:"openai"`

	// Prompt and tone settings
	Generation GenerationConfig `yaml:"generation" json:"generation"`

	// Identifier and profile sources
	Input InputConfig `yaml:"input" json:"input"`

	// Export settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// OpenAIConfig holds settings for the chat-completions endpoint.
// APIKey is never read from or written to the config file.
type OpenAIConfig struct {
	APIKey            string        `yaml:"-" json:"-"`
	BaseURL           string        `yaml:"base_url" json:"base_url"`
	Model             string        `yaml:"model" json:"model"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	MaxAttempts       int           `yaml:"max_attempts" json:"max_attempts"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// GenerationConfig holds prompt settings
type GenerationConfig struct {
	Tone           string `yaml:"tone" json:"tone"`
	PromptTemplate string `yaml:"prompt_template" json:"prompt_template"`
}

// InputConfig holds settings for where profiles come from
type InputConfig struct {
	ProfilesFile string `yaml:"profiles_file" json:"profiles_file"`
}

// OutputConfig holds export configuration
type OutputConfig struct {
	Directory         string `yaml:"directory" json:"directory"`
	FileName          string `yaml:"file_name" json:"file_name"`
	OverwriteExisting bool   `yaml:"overwrite_existing" json:"overwrite_existing"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// Tones lists the accepted tone labels
var Tones = []string{"Friendly", "Direct", "Humorous"}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			BaseURL:           "https://api.openai.com/v1",
			Model:             "gpt-3.5-turbo",
			Timeout:           0, // 0 keeps the HTTP client default
			MaxAttempts:       1,
			RequestsPerMinute: 0, // 0 means no pacing
		},
		Generation: GenerationConfig{
			Tone: "Friendly",
		},
		Output: OutputConfig{
			Directory:         ".",
			FileName:          "generated_dms.csv",
			OverwriteExisting: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// OPENAI_API_KEY is honoured for compatibility with other OpenAI tooling
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		c.OpenAI.APIKey = apiKey
	}
	if apiKey := os.Getenv("IGDM_API_KEY"); apiKey != "" {
		c.OpenAI.APIKey = apiKey
	}
	if baseURL := os.Getenv("IGDM_BASE_URL"); baseURL != "" {
		c.OpenAI.BaseURL = baseURL
	}
	if model := os.Getenv("IGDM_MODEL"); model != "" {
		c.OpenAI.Model = model
	}

	if rpm := os.Getenv("IGDM_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val >= 0 {
			c.OpenAI.RequestsPerMinute = val
		}
	}

	if tone := os.Getenv("IGDM_TONE"); tone != "" {
		c.Generation.Tone = tone
	}

	if profiles := os.Getenv("IGDM_PROFILES_FILE"); profiles != "" {
		c.Input.ProfilesFile = profiles
	}

	if outputDir := os.Getenv("IGDM_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}

	if logLevel := os.Getenv("IGDM_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".igdm.yaml",
		".igdm.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igdm", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "igdm", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".igdm.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. A missing API key is not a
// configuration error; the batch runner refuses to start without one.
func (c *Config) Validate() error {
	var errs []error

	if c.OpenAI.BaseURL == "" {
		errs = append(errs, errors.New("openai base URL is required"))
	}
	if c.OpenAI.Model == "" {
		errs = append(errs, errors.New("openai model is required"))
	}
	if c.OpenAI.Timeout < 0 {
		errs = append(errs, errors.New("timeout cannot be negative"))
	}
	if c.OpenAI.MaxAttempts < 1 {
		errs = append(errs, errors.New("max attempts must be at least 1"))
	}
	if c.OpenAI.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	validTone := false
	for _, tone := range Tones {
		if c.Generation.Tone == tone {
			validTone = true
			break
		}
	}
	if !validTone {
		errs = append(errs, fmt.Errorf("invalid tone %q (expected one of %s)", c.Generation.Tone, strings.Join(Tones, ", ")))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.FileName == "" {
		errs = append(errs, errors.New("output file name is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// HasAPIKey reports whether a credential has been supplied
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.OpenAI.APIKey) != ""
}

// Save saves the configuration to a file. The API key is never written.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if apiKey, ok := flags["api-key"].(string); ok && apiKey != "" {
		c.OpenAI.APIKey = apiKey
	}
	if model, ok := flags["model"].(string); ok && model != "" {
		c.OpenAI.Model = model
	}
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.OpenAI.BaseURL = baseURL
	}
	if attempts, ok := flags["max-attempts"].(int); ok && attempts > 0 {
		c.OpenAI.MaxAttempts = attempts
	}
	if rpm, ok := flags["requests-per-minute"].(int); ok && rpm >= 0 {
		c.OpenAI.RequestsPerMinute = rpm
	}
	if tone, ok := flags["tone"].(string); ok && tone != "" {
		c.Generation.Tone = tone
	}
	if tmpl, ok := flags["prompt-template"].(string); ok && tmpl != "" {
		c.Generation.PromptTemplate = tmpl
	}
	if profiles, ok := flags["profiles"].(string); ok && profiles != "" {
		c.Input.ProfilesFile = profiles
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if fileName, ok := flags["file-name"].(string); ok && fileName != "" {
		c.Output.FileName = fileName
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igdm.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
