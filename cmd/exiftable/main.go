package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tordrt/exiftable"
	"github.com/tordrt/exiftable/internal/collector"
	"github.com/tordrt/exiftable/internal/config"
	"github.com/tordrt/exiftable/internal/dataset"
	"github.com/tordrt/exiftable/internal/formatter"
	"github.com/tordrt/exiftable/internal/progress"
	"github.com/tordrt/exiftable/internal/watch"
)

var (
	// Global flags
	configPath     string
	verbose        bool
	workers        int
	locale         string
	skipUnreadable bool
	noProgress     bool

	// Extract flags
	outputFile  string
	outputDir   string
	format      string
	existingURL string
	save        bool

	// watch and summary
	storeURL string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "exiftable [paths...]",
	Short: "Extract EXIF metadata from images into a table",
	Long: `exiftable reads EXIF metadata from image files and directories and outputs one row per
image, with derived columns for exposure mode, focal length range, exposure time and aperture.

Use --existing to read only images missing from a stored table, and --save to append them.`,
	Args: cobra.MinimumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
	RunE:         run,
}

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Keep a stored table up to date as images are added",
	Long: `Reads images missing from the store once, then watches the directories and appends
new images as they appear. Runs until interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the category distributions of a stored table",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Files read concurrently (default: number of CPUs)")
	rootCmd.PersistentFlags().StringVar(&locale, "locale", "ja", "Label language for categorical columns: ja or en")
	rootCmd.PersistentFlags().BoolVar(&skipUnreadable, "skip-unreadable", false, "Skip files that are not readable images instead of failing")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")

	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for multi-file output (one file per source directory)")
	rootCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, markdown or csv")
	rootCmd.Flags().StringVar(&existingURL, "existing", "", "Store URL of an existing table; only images missing from it are read")
	rootCmd.Flags().BoolVar(&save, "save", false, "Append the newly read rows to the --existing store")

	watchCmd.Flags().StringVar(&storeURL, "store", "", "Store URL (sqlite://, postgres://, mysql://, csv://)")
	summaryCmd.Flags().StringVar(&storeURL, "store", "", "Store URL (sqlite://, postgres://, mysql://, csv://)")
	summaryCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or markdown")

	rootCmd.AddCommand(watchCmd, summaryCmd)
}

// loadSettings reads the config file and applies flags the user set explicitly
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("locale") {
		cfg.Locale = locale
	}
	if flags.Changed("skip-unreadable") {
		cfg.SkipUnreadable = skipUnreadable
	}
	if flags.Changed("format") {
		cfg.Format = format
	}
	if flags.Changed("store") {
		cfg.Store = storeURL
	}
	if flags.Changed("existing") {
		cfg.Store = existingURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func extractOptions(cfg *config.Config, withProgress bool) *exiftable.Options {
	opts := &exiftable.Options{
		Workers:        cfg.Workers,
		Locale:         cfg.Locale,
		SkipUnreadable: cfg.SkipUnreadable,
		Extensions:     cfg.Extensions,
		Logger:         logger,
	}
	if withProgress && !noProgress {
		opts.Reporter = progress.NewBar(os.Stderr)
	}
	return opts
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	// Validate flag combinations
	if outputDir != "" && outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}
	if save && cfg.Store == "" {
		return fmt.Errorf("--save requires --existing (or store in the config file)")
	}

	paths, err := collector.Discover(args, cfg.Extensions)
	if err != nil {
		return err
	}
	opts := extractOptions(cfg, true)

	var table *dataset.Table
	if cfg.Store != "" {
		previous, err := exiftable.LoadTable(ctx, cfg.Store)
		if err != nil {
			return fmt.Errorf("failed to load existing table: %w", err)
		}

		table, err = exiftable.ExtractAdd(ctx, paths, previous, opts)
		if err != nil {
			return fmt.Errorf("failed to extract EXIF data: %w", err)
		}

		if save {
			added, err := exiftable.SaveTable(ctx, cfg.Store, &dataset.Table{Records: table.Records[previous.Len():]})
			if err != nil {
				return fmt.Errorf("failed to save new rows: %w", err)
			}
			logger.Info("saved new rows", zap.String("store", cfg.Store), zap.Int("rows", added))
		}
	} else {
		table, err = exiftable.Extract(ctx, paths, opts)
		if err != nil {
			return fmt.Errorf("failed to extract EXIF data: %w", err)
		}
	}

	// Multi-file output
	if outputDir != "" {
		if err := exiftable.FormatTable(table, &exiftable.OutputOptions{OutputDir: outputDir, Format: cfg.Format}); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return nil
	}

	// Single-file output
	var writer io.Writer = cmd.OutOrStdout()
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
			}
		}()
		writer = f
	}

	if err := exiftable.FormatTable(table, &exiftable.OutputOptions{Writer: writer, Format: cfg.Format}); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cfg.Store == "" {
		return fmt.Errorf("--store (or store in the config file) is required")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := exiftable.Update(ctx, args, cfg.Store, extractOptions(cfg, true))
	if err != nil {
		return fmt.Errorf("initial update failed: %w", err)
	}
	logger.Info("store up to date", zap.Int("rows", result.Table.Len()), zap.Int("added", result.Added))

	// Batches arrive while watching; no progress bar between them
	opts := extractOptions(cfg, false)
	handler := func(ctx context.Context, paths []string) error {
		result, err := exiftable.Update(ctx, paths, cfg.Store, opts)
		if err != nil {
			return err
		}
		logger.Info("appended new images", zap.Int("added", result.Added), zap.Int("rows", result.Table.Len()))
		return nil
	}

	w, err := watch.New(args, handler, watch.Options{Extensions: cfg.Extensions, Logger: logger})
	if err != nil {
		return err
	}
	logger.Info("watching for new images", zap.Strings("dirs", args))
	return w.Run(ctx)
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cfg.Store == "" {
		return fmt.Errorf("--store (or store in the config file) is required")
	}

	table, err := exiftable.LoadTable(cmd.Context(), cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to load table: %w", err)
	}

	summaryFormat := cfg.Format
	if summaryFormat == formatter.FormatCSV {
		if cmd.Flags().Changed("format") {
			return fmt.Errorf("invalid format: csv (summary supports 'text' or 'markdown')")
		}
		// format: csv in the config file applies to tables; summaries fall back to text
		summaryFormat = formatter.FormatText
	}

	out := cmd.OutOrStdout()
	summaries := formatter.Summarize(table)
	switch summaryFormat {
	case formatter.FormatMarkdown:
		_, _ = fmt.Fprintf(out, "# EXIF Summary\n\n%d rows\n\n", table.Len())
		formatter.WriteSummaryMarkdown(out, summaries, "##")
	case formatter.FormatText:
		_, _ = fmt.Fprintf(out, "EXIF SUMMARY (%d rows)\n\n", table.Len())
		formatter.WriteSummaryText(out, summaries)
	default:
		return fmt.Errorf("invalid format: %s (must be 'text' or 'markdown')", summaryFormat)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
