package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/twins/internal/config"
	"github.com/bamsammich/twins/internal/dupes"
	"github.com/bamsammich/twins/internal/engine"
	"github.com/bamsammich/twins/internal/event"
	"github.com/bamsammich/twins/internal/filter"
	"github.com/bamsammich/twins/internal/report"
	"github.com/bamsammich/twins/internal/sample"
	"github.com/bamsammich/twins/internal/stats"
	"github.com/bamsammich/twins/internal/ui"
)

var version = "dev"

// Exit codes.
const (
	exitOK      = 0
	exitPartial = 1 // some files skipped or not deleted
	exitFatal   = 2 // bad configuration or aborted run
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// filterRule is one --exclude or --include, kept in command-line order.
type filterRule struct {
	pattern string
	include bool
}

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude and --include rules by appending to a shared list.
type filterFlag struct {
	rules   *[]filterRule
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "pattern" }

func (f *filterFlag) Set(val string) error {
	*f.rules = append(*f.rules, filterRule{pattern: val, include: f.include})
	return nil
}

// options holds every flag value after config defaults are applied.
type options struct {
	mode           string
	followSymlinks bool
	sampleWindow   int
	minSize        string
	maxSize        string
	paranoid       bool
	strict         bool
	deleteCommand  string
	bwLimit        string
	filterFile     string
	rules          []filterRule
	dryRun         bool
	output         string
	logFile        string
	configFile     string
	verbose        bool
	quiet          bool
	noProgress     bool
	showVersion    bool
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: main CLI entry point orchestrates all flag parsing and mode selection
func run(args []string, stdout, stderr io.Writer) int {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "twins [flags] <path>...",
		Short: "Find duplicate files by content",
		Long: `twins finds files with identical content under the given paths.

Files are grouped by size, compared by a small head/middle/tail sample and
confirmed by a full SHA-256 digest. Within each set of identical files the
first one found in scan order is reported as the original; roots are walked
in argument order and directory entries in lexical order. Which file is the
original carries no other meaning: it is not the oldest file, nor the one
with the shortest path.

Modes:
  show     list each original followed by its copies (default)
  delete   remove every copy, keeping the original
  command  print a delete command line per original
  json     print one JSON object mapping originals to copies

Unreadable files are skipped with a warning and the exit status is 1;
--strict aborts on the first unreadable file instead.

Exit status:
  0  success
  1  some files were skipped or could not be deleted
  2  invalid configuration or aborted run`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintf(stdout, "twins %s\n", version)
				return nil
			}

			// Load optional config file.
			var cfg config.Config
			var err error
			if opts.configFile != "" {
				cfg, err = config.LoadFile(opts.configFile)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}

			// Apply config defaults for flags not explicitly set on CLI.
			applyConfigDefaults(cmd, cfg.Defaults, &opts)

			// Configure logging.
			logLevel := slog.LevelInfo
			if opts.verbose {
				logLevel = slog.LevelDebug
			} else if opts.quiet {
				logLevel = slog.LevelWarn
			}
			textHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			var logHandler slog.Handler = textHandler
			if opts.logFile != "" {
				lf, lfErr := os.Create(opts.logFile)
				if lfErr != nil {
					return fmt.Errorf("open log file: %w", lfErr)
				}
				defer lf.Close()
				jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})
				logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
			}
			logger := slog.New(logHandler)
			slog.SetDefault(logger)

			if opts.sampleWindow <= 0 {
				return fmt.Errorf("invalid --sample-window: must be positive, got %d", opts.sampleWindow)
			}

			mode, err := report.ParseMode(opts.mode)
			if err != nil {
				return err
			}
			if mode == report.Command {
				if _, err := report.ParseCommand(opts.deleteCommand); err != nil {
					return err
				}
			}
			if opts.dryRun && mode != report.Delete {
				slog.Warn("--dry-run only affects delete mode", "mode", mode)
			}

			chain, err := buildFilter(opts, cfg.Filter)
			if err != nil {
				return err
			}

			var bwLimit int64
			if opts.bwLimit != "" {
				bwLimit, err = filter.ParseSize(opts.bwLimit)
				if err != nil {
					return fmt.Errorf("invalid --bwlimit: %w", err)
				}
			}

			policy := dupes.SkipUnreadable
			if opts.strict {
				policy = dupes.AbortOnError
			}

			collector := stats.NewCollector()
			events := make(chan event.Event, 256)

			engineCfg := engine.Config{
				Roots:          args,
				FollowSymlinks: opts.followSymlinks,
				Window:         opts.sampleWindow,
				BWLimit:        bwLimit,
				Policy:         policy,
				Paranoid:       opts.paranoid,
				Events:         events,
				Stats:          collector,
			}
			// Only set filter if it has rules/size constraints.
			if !chain.Empty() {
				engineCfg.Filter = chain
			}
			if err := engineCfg.Validate(); err != nil {
				return err
			}

			// Set up context with signal handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// When --log is set, tee events through a logging goroutine
			// that writes structured records before forwarding to the presenter.
			presenterEvents := (<-chan event.Event)(events)
			if opts.logFile != "" {
				presenterEvents = ui.LogEvents(logger, events)
			}

			f, isFile := stderr.(*os.File)
			presenter := ui.NewPresenter(ui.Config{
				Writer:     stderr,
				Stats:      collector,
				IsTTY:      isFile && ui.IsTTY(f.Fd()),
				Quiet:      opts.quiet,
				Verbose:    opts.verbose,
				NoProgress: opts.noProgress,
			})

			var presenterErr error
			var presenterWg sync.WaitGroup
			presenterWg.Add(1)
			go func() {
				defer presenterWg.Done()
				presenterErr = presenter.Run(presenterEvents)
			}()

			slog.Debug("starting search",
				"roots", args,
				"mode", mode,
				"window", opts.sampleWindow,
				"paranoid", opts.paranoid,
				"strict", opts.strict,
			)

			result := engine.Run(ctx, engineCfg)

			var outcome report.Outcome
			var reportErr error
			if result.Err == nil {
				reportOpts := report.Options{
					Out:           stdout,
					Events:        events,
					Stats:         collector,
					DeleteCommand: opts.deleteCommand,
					Mode:          mode,
					DryRun:        opts.dryRun,
				}
				if opts.output != "" {
					outcome, reportErr = report.WriteFile(ctx, opts.output, reportOpts, result.Graph)
				} else {
					outcome, reportErr = report.Write(ctx, reportOpts, result.Graph)
				}
			}

			stop()
			close(events)
			presenterWg.Wait()
			if presenterErr != nil {
				fmt.Fprintf(stderr, "presenter: %v\n", presenterErr)
			}

			if !opts.quiet {
				summary := presenter.Summary()
				if summary != "" {
					fmt.Fprintln(stderr, summary)
				}
			}

			if result.Err != nil {
				slog.Error("search aborted", "error", result.Err)
				return &exitError{code: exitFatal}
			}
			if reportErr != nil {
				slog.Error("report failed", "error", reportErr)
				return &exitError{code: exitFatal}
			}
			if result.Partial() || len(outcome.Failed) > 0 {
				return &exitError{code: exitPartial}
			}
			return nil
		},
	}

	// Version flag handled in RunE, but also register the flag.
	rootCmd.Flags().BoolVar(&opts.showVersion, "version", false, "print version and exit")

	rootCmd.Flags().
		StringVarP(&opts.mode, "mode", "m", "show", "what to do with duplicates: show, delete, command or json")
	rootCmd.Flags().
		BoolVarP(&opts.followSymlinks, "follow-symlinks", "L", false, "follow symbolic links to files and directories")
	rootCmd.Flags().
		IntVar(&opts.sampleWindow, "sample-window", sample.DefaultWindow, "bytes per head/middle/tail sample window")
	rootCmd.Flags().
		BoolVar(&opts.paranoid, "paranoid", false, "compare byte for byte after digests match")
	rootCmd.Flags().
		BoolVar(&opts.strict, "strict", false, "abort on the first unreadable file instead of skipping it")
	rootCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "delete mode: show what would be removed")
	rootCmd.Flags().
		StringVar(&opts.deleteCommand, "delete-command", report.DefaultDeleteCommand, "command mode: command that removes files")
	rootCmd.Flags().
		StringVarP(&opts.output, "output", "o", "", "write the report to FILE (replaced atomically)")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress all output except errors and the report")
	rootCmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "disable progress display")

	// Filter flags use a custom pflag.Value to preserve CLI ordering.
	rootCmd.Flags().
		Var(&filterFlag{rules: &opts.rules, include: false}, "exclude", "exclude files matching PATTERN (repeatable)")
	rootCmd.Flags().
		Var(&filterFlag{rules: &opts.rules, include: true}, "include", "include files matching PATTERN (repeatable)")
	rootCmd.Flags().StringVar(&opts.filterFile, "filter", "", "read filter rules from FILE")
	rootCmd.Flags().
		StringVar(&opts.minSize, "min-size", "", "skip files smaller than SIZE (e.g. 1, 100K)")
	rootCmd.Flags().
		StringVar(&opts.maxSize, "max-size", "", "skip files larger than SIZE (e.g. 1G, 500M)")
	rootCmd.Flags().
		StringVar(&opts.bwLimit, "bwlimit", "", "limit full-file hashing reads (e.g. 100M)")
	rootCmd.Flags().
		StringVar(&opts.logFile, "log", "", "write structured JSON log to FILE")
	rootCmd.Flags().
		StringVar(&opts.configFile, "config", "", "read config from FILE instead of the default location")

	// Register subcommands.
	rootCmd.AddCommand(docsCmd)

	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "exclude" || f.Name == "include" {
			f.NoOptDefVal = ""
		}
	})

	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}

	return exitOK
}

// buildFilter assembles the filter chain. Command-line rules come first
// so they take precedence over config rules under first-match-wins.
func buildFilter(opts options, fc config.FilterConfig) (*filter.Chain, error) {
	chain := filter.NewChain()
	for _, r := range opts.rules {
		var err error
		if r.include {
			err = chain.Include(r.pattern)
		} else {
			err = chain.Exclude(r.pattern)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid filter: %w", err)
		}
	}
	if opts.filterFile != "" {
		if err := chain.LoadFile(opts.filterFile); err != nil {
			return nil, fmt.Errorf("load filter file: %w", err)
		}
	}

	for _, p := range fc.Include {
		if err := chain.Include(p); err != nil {
			return nil, fmt.Errorf("config filter: %w", err)
		}
	}
	for _, p := range fc.Exclude {
		if err := chain.Exclude(p); err != nil {
			return nil, fmt.Errorf("config filter: %w", err)
		}
	}
	if fc.File != nil {
		if err := chain.LoadFile(*fc.File); err != nil {
			return nil, fmt.Errorf("load filter file: %w", err)
		}
	}

	var minSize, maxSize int64
	var err error
	if opts.minSize != "" {
		if minSize, err = filter.ParseSize(opts.minSize); err != nil {
			return nil, fmt.Errorf("invalid --min-size: %w", err)
		}
	}
	if opts.maxSize != "" {
		if maxSize, err = filter.ParseSize(opts.maxSize); err != nil {
			return nil, fmt.Errorf("invalid --max-size: %w", err)
		}
	}
	if err := chain.SizeRange(minSize, maxSize); err != nil {
		return nil, fmt.Errorf("invalid size range: %w", err)
	}
	return chain, nil
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(cmd *cobra.Command, d config.DefaultsConfig, opts *options) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }

	if !set("mode") && d.Mode != nil {
		opts.mode = *d.Mode
	}
	if !set("follow-symlinks") && d.FollowSymlinks != nil {
		opts.followSymlinks = *d.FollowSymlinks
	}
	if !set("sample-window") && d.SampleWindow != nil {
		opts.sampleWindow = *d.SampleWindow
	}
	if !set("min-size") && d.MinSize != nil {
		opts.minSize = *d.MinSize
	}
	if !set("max-size") && d.MaxSize != nil {
		opts.maxSize = *d.MaxSize
	}
	if !set("strict") && d.OnError != nil {
		opts.strict = *d.OnError == config.OnErrorAbort
	}
	if !set("paranoid") && d.Paranoid != nil {
		opts.paranoid = *d.Paranoid
	}
	if !set("delete-command") && d.DeleteCommand != nil {
		opts.deleteCommand = *d.DeleteCommand
	}
	if !set("bwlimit") && d.BWLimit != nil {
		opts.bwLimit = *d.BWLimit
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
