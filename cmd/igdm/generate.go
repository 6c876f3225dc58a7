package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"igdm/pkg/batch"
	"igdm/pkg/composer"
	"igdm/pkg/config"
	"igdm/pkg/input"
	"igdm/pkg/logger"
	"igdm/pkg/openai"
	"igdm/pkg/profile"
	"igdm/pkg/storage"
	"igdm/pkg/table"
	"igdm/pkg/ui"
	"igdm/pkg/ui/tui"
)

var (
	// Generate command flags
	usernamesText   string
	csvPath         string
	tone            string
	outputDir       string
	fileName        string
	apiKey          string
	model           string
	baseURL         string
	promptTemplate  string
	profilesFile    string
	maxAttempts     int
	requestsPerMin  int
	reviewResults   bool
	printCSV        bool
	promptForAPIKey bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [username...]",
	Short: "Generate a DM for each username",
	Long: `Generate one direct message per username.

Usernames can be given as arguments, with --usernames (separated by commas or
newlines) or from a CSV file whose first column holds them; the first CSV row
is a header. A leading @ is ignored.

The OpenAI API key is read from --api-key, OPENAI_API_KEY or IGDM_API_KEY. When
none is set and stdin is a terminal you will be asked for it. The key is only
used for this run and is never written to disk.`,
	Example: `  # Two creators, friendly tone, export to ./generated_dms.csv
  igdm generate @alice bob

  # Usernames from a CSV file, humorous tone, review before saving
  igdm generate --csv creators.csv --tone Humorous --review

  # Print the CSV to stdout instead of writing a file
  igdm generate --usernames "alice,bob" --stdout > dms.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&usernamesText, "usernames", "u", "", "usernames separated by commas or newlines")
	generateCmd.Flags().StringVar(&csvPath, "csv", "", "CSV file with usernames in the first column")
	generateCmd.Flags().StringVarP(&tone, "tone", "t", "", "message tone: Friendly, Direct or Humorous")
	generateCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for the CSV export")
	generateCmd.Flags().StringVar(&fileName, "file-name", "", "export file name (default generated_dms.csv)")
	generateCmd.Flags().StringVar(&apiKey, "api-key", "", "OpenAI API key")
	generateCmd.Flags().StringVar(&model, "model", "", "chat model name")
	generateCmd.Flags().StringVar(&baseURL, "base-url", "", "chat completions base URL")
	generateCmd.Flags().StringVar(&promptTemplate, "prompt-template", "", "file with a custom prompt template")
	generateCmd.Flags().StringVar(&profilesFile, "profiles", "", "YAML file with known profiles")
	generateCmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "attempts per message for transient failures")
	generateCmd.Flags().IntVar(&requestsPerMin, "rate-limit", -1, "maximum requests per minute (0 for unlimited)")
	generateCmd.Flags().BoolVarP(&reviewResults, "review", "r", false, "review and edit results in an interactive table before saving")
	generateCmd.Flags().BoolVar(&printCSV, "stdout", false, "write the CSV to stdout instead of a file")
	generateCmd.Flags().BoolVar(&promptForAPIKey, "ask-key", true, "ask for the API key when none is configured")
}

// generateFlags maps the command line onto config flag names
func generateFlags() map[string]interface{} {
	flags := map[string]interface{}{
		"api-key":         apiKey,
		"model":           model,
		"base-url":        baseURL,
		"tone":            tone,
		"prompt-template": promptTemplate,
		"profiles":        profilesFile,
		"output":          outputDir,
		"file-name":       fileName,
	}
	if rootCmd.PersistentFlags().Changed("log-level") {
		flags["log-level"] = logLevel
	}
	if maxAttempts > 0 {
		flags["max-attempts"] = maxAttempts
	}
	if requestsPerMin >= 0 {
		flags["requests-per-minute"] = requestsPerMin
	}
	return flags
}

// usernameSource combines arguments and --usernames into one input
func usernameSource(args []string) input.Source {
	text := usernamesText
	if len(args) > 0 {
		text = strings.Join(append([]string{text}, args...), "\n")
	}
	return input.Source{Text: text, CSVPath: csvPath}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, generateFlags())
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	// The progress line replaces info logs unless verbose is requested
	if !verbose && !rootCmd.PersistentFlags().Changed("log-level") && cfg.Logging.Level == "info" {
		cfg.Logging.Level = "warn"
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("igdm starting")

	usernames, err := input.Collect(usernameSource(args))
	if err != nil {
		ui.PrintError("Failed to read usernames", err.Error())
		return err
	}

	if needsAPIKeyPrompt(cfg, usernames, promptForAPIKey) {
		key, err := readAPIKey()
		if err != nil {
			log.WithError(err).Warn("Failed to read API key")
		}
		cfg.OpenAI.APIKey = key
	}

	selectedTone, err := composer.ParseTone(cfg.Generation.Tone)
	if err != nil {
		return err
	}

	session := batch.NewSession(cfg.OpenAI.APIKey, selectedTone, usernames)
	if err := session.Validate(); err != nil {
		switch {
		case errors.Is(err, batch.ErrMissingCredential):
			ui.PrintWarning("Please enter your OpenAI API key")
		case errors.Is(err, batch.ErrNoUsernames):
			ui.PrintWarning("Please enter at least one username")
		}
		return err
	}

	runner, err := buildRunner(cfg, session, log)
	if err != nil {
		return err
	}

	manager, err := storage.NewManager(cfg.Output.Directory, cfg.Output.OverwriteExisting)
	if err != nil {
		ui.PrintError("Failed to prepare output directory", err.Error())
		return err
	}
	save := func(t *table.Table) (string, error) {
		return manager.SaveTable(t, cfg.Output.FileName)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ui.PrintInfo("Usernames", fmt.Sprintf("%d", len(usernames)))
	ui.PrintInfo("Tone", selectedTone.String())
	ui.PrintInfo("Model", cfg.OpenAI.Model)

	if reviewResults {
		return runWithReview(ctx, runner, session, save)
	}
	return runHeadless(ctx, runner, session, save, cmd)
}

// buildRunner wires the resolver, prompt and chat client for a session
// needsAPIKeyPrompt holds the key prompt back until there is something to generate
func needsAPIKeyPrompt(cfg *config.Config, usernames []string, ask bool) bool {
	return ask && len(usernames) > 0 && !cfg.HasAPIKey()
}

func buildRunner(cfg *config.Config, session batch.Session, log logger.Logger) (*batch.Runner, error) {
	var resolver profile.Resolver = profile.NewPlaceholderResolver()
	if cfg.Input.ProfilesFile != "" {
		dir, err := profile.LoadDirectory(cfg.Input.ProfilesFile)
		if err != nil {
			ui.PrintError("Failed to load profiles", err.Error())
			return nil, err
		}
		log.WithField("profiles", dir.Len()).Info("Loaded profile directory")
		resolver = dir
	}

	prompt := composer.DefaultPrompt()
	if cfg.Generation.PromptTemplate != "" {
		src, err := os.ReadFile(cfg.Generation.PromptTemplate)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt template: %w", err)
		}
		if prompt, err = composer.NewPrompt(string(src)); err != nil {
			return nil, err
		}
	}

	client := openai.NewClient(openai.Options{
		APIKey:            session.APIKey,
		BaseURL:           cfg.OpenAI.BaseURL,
		Model:             cfg.OpenAI.Model,
		Timeout:           cfg.OpenAI.Timeout,
		MaxAttempts:       cfg.OpenAI.MaxAttempts,
		RequestsPerMinute: cfg.OpenAI.RequestsPerMinute,
	}, log.WithField("component", "openai"))

	logger.LogComponentStart(log, "batch", map[string]interface{}{
		"run_id":  session.RunID,
		"model":   client.Model(),
		"api_key": logger.MaskSecret(session.APIKey),
	})

	return batch.NewRunner(resolver, composer.New(client, prompt), log), nil
}

func runHeadless(ctx context.Context, runner *batch.Runner, session batch.Session, save tui.SaveFunc, cmd *cobra.Command) error {
	ui.PrintHighlight("[GENERATING MESSAGES]")

	progress := ui.NewProgressDisplay(os.Stderr, len(session.Usernames), verbose)
	runner.Observer = progress.Observe

	results, err := runner.Run(ctx, session)
	if err != nil {
		return err
	}
	progress.Complete()

	path := ""
	if printCSV {
		if err := results.WriteCSV(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
	} else {
		if path, err = save(results); err != nil {
			ui.PrintError("Failed to save results", err.Error())
			return err
		}
		ui.PrintSuccess("Saved " + path)
	}

	if notifications {
		ui.NewNotifier().NotifyRunComplete(ui.SummarizeRun(results, path))
	}
	return nil
}

func runWithReview(ctx context.Context, runner *batch.Runner, session batch.Session, save tui.SaveFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	terminal := tui.NewTUI(len(session.Usernames), save)
	runner.Observer = terminal.Observe

	go func() {
		results, err := runner.Run(ctx, session)
		terminal.Finish(results, err)
	}()

	final, err := terminal.Run()
	cancel()
	if err != nil {
		return fmt.Errorf("review screen failed: %w", err)
	}
	if final.Err() != nil {
		return final.Err()
	}

	if path := final.SavedPath(); path != "" {
		ui.PrintSuccess("Saved " + path)
	} else {
		ui.PrintWarning("Results were not saved")
	}

	if notifications {
		ui.NewNotifier().NotifyRunComplete(ui.SummarizeRun(final.Table(), final.SavedPath()))
	}
	return nil
}

// readAPIKey asks for the key without echoing it
func readAPIKey() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}

	fmt.Fprint(os.Stderr, ui.Cyan("OpenAI API key: "))
	key, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(key)), nil
}
