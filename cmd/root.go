package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/aae42/clippy-clippy/internal/clipboard"
	"github.com/aae42/clippy-clippy/internal/config"
	"github.com/aae42/clippy-clippy/internal/llm"
	"github.com/aae42/clippy-clippy/internal/llm/openai"
	"github.com/aae42/clippy-clippy/internal/pipeline"
)

// Exit codes. Bootstrap is informational, not a failure: the config file was
// just created and the user has to fill it in before a transcription can be
// attempted.
const (
	exitFailure   = 1
	exitBootstrap = 2
)

var (
	flagMarkdown bool
	flagConfig   string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "clippy-clippy",
	Short: "Transcribe the image on your clipboard with a vision model",
	Long: "clippy-clippy sends the image currently on the OS clipboard to an " +
		"OpenAI-compatible vision model and prints the transcribed text to stdout. " +
		"Diagnostics go to stderr, so the output composes cleanly with pipes.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

var (
	bootstrapTitleStyle = lipgloss.NewStyle().Bold(true)
	bootstrapPathStyle  = lipgloss.NewStyle().Underline(true)
)

func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var bootstrap *config.BootstrapError
	if errors.As(err, &bootstrap) {
		printBootstrapGuidance(bootstrap.Path)
		os.Exit(exitBootstrap)
	}
	if errors.Is(err, clipboard.ErrNoImage) {
		fmt.Fprintln(os.Stderr, "No image found on the clipboard. Copy an image and try again.")
		os.Exit(exitFailure)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(exitFailure)
}

func run(cmd *cobra.Command, _ []string) error {
	level := log.WarnLevel
	if flagVerbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Level:           level,
	})

	// Configuration resolves before the clipboard is touched, so a first
	// run bootstraps even with an empty clipboard.
	cfg, err := config.Resolve(flagConfig)
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded", "endpoint", cfg.Endpoint, "model", cfg.Model)

	source, err := clipboard.NewSystem()
	if err != nil {
		return err
	}

	mode := llm.ModePlain
	if flagMarkdown {
		mode = llm.ModeMarkdown
	}

	runner := &pipeline.Runner{
		Log:    logger,
		Source: source,
		LLM:    openai.New(cfg, logger),
		Out:    cmd.OutOrStdout(),
	}
	return runner.Run(cmd.Context(), mode)
}

// Bootstrap guidance is the one non-transcription message allowed on
// stdout: there is no transcription to emit on a first run.
func printBootstrapGuidance(path string) {
	fmt.Fprintln(os.Stdout, bootstrapTitleStyle.Render("First run: configuration file created."))
	fmt.Fprintf(os.Stdout, "Edit %s and set your API endpoint and key, then run clippy-clippy again.\n",
		bootstrapPathStyle.Render(path))
}

func init() {
	rootCmd.Flags().BoolVarP(&flagMarkdown, "markdown", "m", false, "request GitHub Flavored Markdown output (tables, lists, code)")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to an alternate configuration file")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging on stderr")
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
