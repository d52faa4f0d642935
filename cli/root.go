// Package cli implements the summarize command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/summarize/config"
	"github.com/randalmurphal/summarize/prompt"
	"github.com/randalmurphal/summarize/provider"
	_ "github.com/randalmurphal/summarize/providers"
	"github.com/randalmurphal/summarize/summarize"
	"github.com/randalmurphal/summarize/tokens"
	"github.com/randalmurphal/summarize/truncate"
	"github.com/randalmurphal/summarize/ui"
	"github.com/randalmurphal/summarize/watch"
)

const listArg = "list"

// ClientFactory creates the inference backend for a run.
type ClientFactory func(cfg provider.Config) (provider.Client, error)

// App holds the command's dependencies.
type App struct {
	Out io.Writer
	Err io.Writer

	// NewClient defaults to the provider registry.
	NewClient ClientFactory

	// WatchDebounce overrides watch.DefaultDebounce when non-zero.
	WatchDebounce time.Duration

	printer *ui.Printer
}

type flags struct {
	style          string
	customPrompt   string
	maxTokens      int
	maxWords       int
	maxOutputWords int
	outputTrim     string
	backend        string
	model          string
	modelPath      string
	command        string
	configPath     string
	timeout        time.Duration
	watch          bool
	verbose        bool
}

// Run executes the command with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := &App{Out: stdout, Err: stderr}
	return app.Run(ctx, args)
}

// Run executes the command with args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	a.printer = ui.NewPrinter(a.Out, a.Err)
	if a.NewClient == nil {
		a.NewClient = func(cfg provider.Config) (provider.Client, error) {
			return provider.New(cfg.Provider, cfg)
		}
	}

	cmd := a.newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(a.Out)
	cmd.SetErr(a.Err)

	if err := cmd.ExecuteContext(ctx); err != nil {
		msg, code := classify(err)
		a.printer.Error(msg)
		return code
	}
	return ExitOK
}

func (a *App) newRootCommand() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "summarize <input-file|list>",
		Short: "Summarize a text file with a local language model",
		Long: `Summarize reads a text file, asks a locally running language model for a
summary in the chosen style, and prints it.

Run "summarize list" to see the available styles.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usageError("expected one input file, got %d arguments", len(args))
			}
			return nil
		},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return []string{listArg}, cobra.ShellCompDirectiveDefault
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, f, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.style, "style", prompt.Default.String(), "summary style (see 'summarize list')")
	fl.StringVar(&f.customPrompt, "custom-prompt", "", "instruction that replaces the style entirely")
	fl.IntVar(&f.maxTokens, "max-tokens", summarize.DefaultMaxTokens, "maximum tokens to generate")
	fl.IntVar(&f.maxWords, "max-words", 0, "cut the input to this many words (0 = no limit)")
	fl.IntVar(&f.maxOutputWords, "max-output-words", 0, "trim the summary to this many words (default: --max-tokens, 0 = no limit)")
	fl.StringVar(&f.outputTrim, "output-trim", truncate.Sentence.String(), "output trimming: hard or sentence")
	fl.StringVar(&f.backend, "backend", "", "inference backend: local or command")
	fl.StringVar(&f.model, "model", "", "model name")
	fl.StringVar(&f.modelPath, "model-path", "", "model file for the local backend")
	fl.StringVar(&f.command, "command", "", "model command line for the command backend (e.g. \"ollama run\")")
	fl.StringVar(&f.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/summarize/config.yaml)")
	fl.DurationVar(&f.timeout, "timeout", 0, "per-request timeout (0 = none)")
	fl.BoolVar(&f.watch, "watch", false, "re-run whenever the input file changes")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging on stderr")

	_ = cmd.RegisterFlagCompletionFunc("style", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return prompt.Keys(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("output-trim", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{truncate.Hard.String(), truncate.Sentence.String()}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("backend", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{config.BackendLocal, config.BackendCommand}, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitError{code: ExitUsage, msg: err.Error(), err: err}
	})

	return cmd
}

func (a *App) run(cmd *cobra.Command, f *flags, args []string) error {
	if len(args) == 0 {
		return usageError("Please provide a .txt file or use 'list'")
	}
	if args[0] == listArg {
		a.printer.StyleList(prompt.Styles())
		return nil
	}
	path := args[0]

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return &exitError{code: ExitUsage, msg: fmt.Sprintf("Config error: %v", err), err: err}
	}
	applyFlags(cmd, f, cfg)
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, prompt.ErrUnsupportedStyle) {
			return err
		}
		return &exitError{code: ExitUsage, msg: fmt.Sprintf("Config error: %v", err), err: err}
	}

	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(a.Err, &slog.HandlerOptions{Level: level})))

	// Read the input before paying for a backend.
	text, err := summarize.ReadFile(path)
	if err != nil {
		if errors.Is(err, summarize.ErrFileNotFound) {
			return &exitError{code: ExitNotFound, msg: "File not found: " + path, err: err}
		}
		return err
	}

	client, err := a.NewClient(cfg.ProviderConfig())
	if err != nil {
		return fmt.Errorf("create %s backend: %w", cfg.Backend, err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slog.Debug("close backend", slog.Any("error", err))
		}
	}()

	s := summarize.New(client, summarize.WithWindow(tokens.NewWindow(cfg.ContextSize)))
	req := cfg.SummaryRequest()
	req.CustomPrompt = f.customPrompt

	ctx := cmd.Context()
	first := req
	first.Text = text
	runErr := a.summarizeOnce(cfg.ModelLabel(), func() (*summarize.Result, error) {
		return s.Summarize(ctx, first)
	})
	if !f.watch {
		return runErr
	}
	if runErr != nil {
		msg, _ := classify(runErr)
		a.printer.Error(msg)
	}

	a.printer.Info(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", path))

	var opts []watch.Option
	if a.WatchDebounce > 0 {
		opts = append(opts, watch.WithDebounce(a.WatchDebounce))
	}
	err = watch.New(path, opts...).Run(ctx, func(ctx context.Context) {
		err := a.summarizeOnce(cfg.ModelLabel(), func() (*summarize.Result, error) {
			return s.SummarizeFile(ctx, path, req)
		})
		if err != nil {
			msg, _ := classify(err)
			a.printer.Error(msg)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) summarizeOnce(model string, summarizeFn func() (*summarize.Result, error)) error {
	a.printer.Progress(model)

	res, err := summarizeFn()
	if err != nil {
		return err
	}

	a.printer.Summary(res)
	return nil
}

// applyFlags overrides config values with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, f *flags, cfg *config.Config) {
	fl := cmd.Flags()

	if fl.Changed("style") {
		cfg.Style = f.style
	}
	if fl.Changed("max-tokens") {
		cfg.MaxTokens = f.maxTokens
	}
	if fl.Changed("max-words") {
		cfg.MaxInputWords = f.maxWords
	}
	if fl.Changed("max-output-words") {
		n := f.maxOutputWords
		cfg.MaxOutputWords = &n
	}
	if fl.Changed("output-trim") {
		cfg.OutputTrim = f.outputTrim
	}
	if fl.Changed("backend") {
		cfg.Backend = f.backend
	}
	if fl.Changed("model") {
		cfg.Model = f.model
	}
	if fl.Changed("model-path") {
		cfg.ModelPath = f.modelPath
	}
	if fl.Changed("command") {
		cfg.SetCommand(f.command)
	}
	if fl.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if f.verbose {
		cfg.LogLevel = "debug"
	}
}
