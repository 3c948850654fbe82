package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/goodtune/mstat/internal/config"
	"github.com/goodtune/mstat/internal/lmstat"
	"github.com/goodtune/mstat/internal/metrics"
	"github.com/goodtune/mstat/internal/storage"
	"github.com/goodtune/mstat/internal/storage/redis"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// maxLineLength bounds a single report line; lmstat lines are short.
const maxLineLength = 1024 * 1024

func runReport(cmd *cobra.Command, opts *rootOptions) error {
	// Load configuration
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, cfg)

	logger := setupLogger(cfg.Logging, cmd.ErrOrStderr())

	// Validated by config.Load
	mode, _ := lmstat.ParseSortMode(cfg.Report.Sort)

	input, closeInput, err := openInput(cfg.Input.Path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer closeInput()

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	var headerStyle *color.Color
	if cfg.Report.Color {
		headerStyle = color.New(color.Bold)
	}

	reader := lmstat.NewReader(lmstat.Options{
		Clock:       opts.clock,
		Sort:        mode,
		Logger:      logger,
		HeaderStyle: headerStyle,
	})

	logger.Debug().
		Str("input", inputName(cfg.Input.Path)).
		Str("sort", mode.String()).
		Msg("Reading lmstat report")

	// Nothing is printed unless the whole report parses
	capturedAt := opts.clock.Now()
	var out bytes.Buffer
	reports, err := reader.Run(scanner, &out)
	if err != nil {
		return err
	}

	if _, err := out.WriteTo(cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Info().
		Int("blocks", len(reports)).
		Msg("Report rendered")

	if cfg.Metrics.Textfile != "" {
		recorder := metrics.NewRecorder()
		recorder.Observe(reports, capturedAt)
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return err
		}
		logger.Info().Str("path", cfg.Metrics.Textfile).Msg("Metrics textfile written")
	}

	if cfg.Storage.Type == config.StorageRedis {
		if err := recordSnapshots(cfg.Storage.Redis, storage.NewSnapshots(reports, capturedAt), logger); err != nil {
			return err
		}
	}

	return nil
}

// applyFlags lets explicitly set flags override the loaded configuration
func applyFlags(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("time") && opts.timeSort {
		cfg.Report.Sort = lmstat.SortByElapsed.String()
	}
	if flags.Changed("input") {
		cfg.Input.Path = opts.inputPath
	}
	if flags.Changed("metrics-file") {
		cfg.Metrics.Textfile = opts.metricsFile
	}
	if flags.Changed("color") {
		cfg.Report.Color = opts.color
	}
	if flags.Changed("no-color") && opts.noColor {
		cfg.Report.Color = false
	}
}

// openInput returns the report source: the file at path, or stdin when path
// is empty.
func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" {
		return stdin, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, &inputNotFoundError{path: path, err: err}
		}
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}

	return f, func() { _ = f.Close() }, nil
}

func inputName(path string) string {
	if path == "" {
		return "stdin"
	}
	return path
}

func recordSnapshots(cfg config.RedisConfig, snapshots []storage.Snapshot, logger zerolog.Logger) error {
	err := withSnapshotStore(cfg, logger, func(ctx context.Context, store storage.SnapshotStore) error {
		return store.Record(ctx, snapshots)
	})
	if err != nil {
		return err
	}

	logger.Info().
		Int("toolboxes", len(snapshots)).
		Msg("Snapshots recorded")
	return nil
}

// withSnapshotStore opens the Redis snapshot store and runs fn within the
// configured storage timeout.
func withSnapshotStore(cfg config.RedisConfig, logger zerolog.Logger, fn func(context.Context, storage.SnapshotStore) error) error {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return fmt.Errorf("invalid storage timeout: %w", err)
	}

	store, err := redis.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close snapshot store")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return fn(ctx, store.Snapshots())
}
