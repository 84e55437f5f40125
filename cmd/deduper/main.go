package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dedupkit/deduper/internal/config"
	"github.com/dedupkit/deduper/internal/dedup"
	"github.com/dedupkit/deduper/internal/logger"
	"github.com/dedupkit/deduper/internal/progress"
	"github.com/dedupkit/deduper/internal/reporter"
	"github.com/dedupkit/deduper/internal/security"
	"github.com/dedupkit/deduper/internal/tui"
	"github.com/dedupkit/deduper/pkg/utils"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPath   string
	strategyName string
	dryRun       bool
	verify       bool
	showProgress bool
	verbose      bool
	force        bool
	outputFmt    string
	workers      int
	minSize      string
	excludes     []string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "deduper ROOTDIR",
	Short: "A reasonably useful file deduplicator",
	Long: `Deduper locates duplicate files beneath a directory tree and removes all
but one copy of each duplicate set, choosing the survivor via a retention
strategy. Runs are dry by default: pass --dry-run=false to delete.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		level := "info"
		if cfg.Verbose {
			level = "debug"
		}
		logger.Init(logger.Config{Level: level, Format: cfg.LogFormat})

		// Configuration errors are rejected before any scanning begins
		strategy, err := dedup.StrategyByName(cfg.Strategy, cfg.CopyPrefix)
		if err != nil {
			return err
		}

		root, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving root directory: %w", err)
		}
		if err := security.ValidateRoot(root, cfg.MinRootDepth, force); err != nil {
			return err
		}

		if !reporter.ValidFormat(reporter.OutputFormat(outputFmt)) {
			return fmt.Errorf("unknown output format %q", outputFmt)
		}

		logger.Info("starting scan",
			"root", root,
			"strategy", strategy.Name(),
			"dry_run", cfg.DryRun,
			"verify", cfg.Verify,
			"workers", cfg.Workers,
			"block_size", cfg.BlockSize)

		tracker := progress.NewTracker()
		var wait func()
		if cfg.ShowProgress {
			wait = tui.Run(tracker)
		}

		deduper := dedup.New(dedup.Options{
			BlockSize: int64(cfg.BlockSize),
			MinSize:   cfg.MinFileSizeBytes(),
			Excludes:  cfg.ExcludePatterns,
			Workers:   cfg.Workers,
			DryRun:    cfg.DryRun,
			Verify:    cfg.Verify,
		})
		deduper.SetTracker(tracker)

		startTime := time.Now()
		report, runErr := deduper.FindDuplicates(root, strategy)

		tracker.Close()
		if wait != nil {
			wait()
		}

		if runErr != nil {
			return runErr
		}

		if err := reporter.New(os.Stdout, reporter.OutputFormat(outputFmt)).Report(report); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		logger.Info("scan finished",
			"elapsed", time.Since(startTime).Round(time.Millisecond),
			"freed", utils.FormatBytes(report.BytesFreed))

		return nil
	},
}

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the available retention strategies",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(strings.Join(dedup.StrategyNames(), "\n"))
	},
}

// loadConfig loads the YAML config and applies flag overrides for any flag
// the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	if path == "" {
		defaultPath, err := config.GetConfigPath()
		if err == nil {
			path = defaultPath
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("strategy") {
		cfg.Strategy = strategyName
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = dryRun
	}
	if flags.Changed("verify") {
		cfg.Verify = verify
	}
	if flags.Changed("progress") {
		cfg.ShowProgress = showProgress
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("min-size") {
		cfg.MinFileSize = minSize
	}
	if flags.Changed("exclude") {
		cfg.ExcludePatterns = excludes
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to config file")
	flags.StringVar(&strategyName, "strategy", "nop",
		fmt.Sprintf("retention strategy (%s)", strings.Join(dedup.StrategyNames(), ", ")))
	flags.BoolVar(&dryRun, "dry-run", true, "perform scan but do not delete files")
	flags.BoolVar(&verify, "verify", false, "byte-compare every duplicate group before acting")
	flags.BoolVar(&showProgress, "progress", false, "show live progress")
	flags.BoolVar(&verbose, "verbose", false, "show debug logging")
	flags.BoolVar(&force, "force", false, "override safety check on shallow directories")
	flags.StringVarP(&outputFmt, "output", "o", string(reporter.FormatSummary),
		"report format (summary, table, json, yaml)")
	flags.IntVar(&workers, "workers", 0, "signature workers (0 = sequential)")
	flags.StringVar(&minSize, "min-size", "", "ignore files smaller than this (e.g. 1KB)")
	flags.StringSliceVar(&excludes, "exclude", nil, "glob patterns to skip")

	rootCmd.AddCommand(strategiesCmd)
}
