package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/goodtune/mstat/internal/config"
	"github.com/goodtune/mstat/internal/lmstat"
	"github.com/goodtune/mstat/internal/storage"
	"github.com/spf13/cobra"
)

// errStorageDisabled is returned by history when no snapshot store is configured
var errStorageDisabled = errors.New("snapshot storage is not configured (set storage.type to redis)")

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [toolbox]",
		Short: "Show recorded license snapshots",
		Long: `Show the snapshots recorded by earlier runs.

Without a toolbox, the latest snapshot of every recorded toolbox is printed.
With a toolbox, its snapshots are printed newest first.`,
		Example: `  mstat history
  mstat history MATLAB --limit 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toolbox := ""
			if len(args) == 1 {
				toolbox = args[0]
			}
			return runHistory(cmd, opts, toolbox, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of snapshots to show for a toolbox (capped by storage.redis.history_limit)")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *rootOptions, toolbox string, limit int) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if cfg.Storage.Type != config.StorageRedis {
		return errStorageDisabled
	}

	logger := setupLogger(cfg.Logging, cmd.ErrOrStderr())

	var headerStyle *color.Color
	if cfg.Report.Color {
		headerStyle = color.New(color.Bold)
	}

	var snapshots []storage.Snapshot
	err = withSnapshotStore(cfg.Storage.Redis, logger, func(ctx context.Context, store storage.SnapshotStore) error {
		if toolbox != "" {
			history, err := store.History(ctx, toolbox, limit)
			snapshots = history
			return err
		}

		toolboxes, err := store.Toolboxes(ctx)
		if err != nil {
			return err
		}
		for _, name := range toolboxes {
			snap, err := store.Latest(ctx, name)
			if errors.Is(err, storage.ErrNotFound) {
				logger.Warn().Str("toolbox", name).Msg("Indexed toolbox has no latest snapshot")
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to load snapshot of %s: %w", name, err)
			}
			snapshots = append(snapshots, *snap)
		}
		return nil
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(snapshots) == 0 {
		if toolbox != "" {
			_, _ = fmt.Fprintf(out, "No snapshots recorded for %s.\n", toolbox)
		} else {
			_, _ = fmt.Fprintln(out, "No snapshots recorded.")
		}
		return nil
	}

	logger.Debug().
		Str("toolbox", toolbox).
		Int("snapshots", len(snapshots)).
		Msg("Snapshots loaded")

	for _, snap := range snapshots {
		if err := writeSnapshot(out, snap, headerStyle); err != nil {
			return fmt.Errorf("failed to write history: %w", err)
		}
	}
	return nil
}

// writeSnapshot renders a stored snapshot the way the live report renders a
// block, preceded by its capture time.
func writeSnapshot(w io.Writer, snap storage.Snapshot, headerStyle *color.Color) error {
	report := snap.Report()

	header := lmstat.FormatLicenseBlock(report.License)
	if headerStyle != nil {
		header = headerStyle.Sprint(header)
	}

	if _, err := fmt.Fprintf(w, "\nCaptured %s\n%s\n", snap.CapturedAt.Format(lmstat.TimestampLayout), header); err != nil {
		return err
	}

	width := lmstat.UsernameWidth(report.Sessions)
	for _, s := range report.Sessions {
		if _, err := fmt.Fprintln(w, lmstat.FormatUserSession(s, width)); err != nil {
			return err
		}
	}
	return nil
}
