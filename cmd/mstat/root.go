package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goodtune/mstat/internal/lmstat"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
)

// rootOptions holds the flags shared by every command
type rootOptions struct {
	configPath  string
	inputPath   string
	metricsFile string
	timeSort    bool
	color       bool
	noColor     bool

	clock lmstat.Clock
}

// newRootCmd builds the command tree. The clock is injected so tests can pin
// elapsed hours.
func newRootCmd(clock lmstat.Clock) *cobra.Command {
	return newRootCmdWithOptions(&rootOptions{clock: clock})
}

func newRootCmdWithOptions(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mstat",
		Short: "mstat - Summarize floating license usage from lmstat output",
		Long: `mstat reads the report printed by "lmstat -a" for a numerical-computing
license server and prints, per toolbox, the seats in use out of the seats issued
followed by the current users and how long each has held a seat.

The report is read from standard input unless an input file is configured.`,
		Example: `  lmstat -a -c 27000@licsrv | mstat
  mstat -t --input /tmp/lmstat.txt`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (default: search ~/.config/mstat and /etc/mstat)")

	cmd.Flags().BoolVarP(&opts.timeSort, "time", "t", false, "Sort users by longest elapsed time instead of by name")
	cmd.Flags().StringVarP(&opts.inputPath, "input", "i", "", "Read the lmstat report from a file instead of standard input")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics for the textfile collector to this path")
	cmd.Flags().BoolVar(&opts.color, "color", false, "Print toolbox headers in bold")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored toolbox headers")

	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))

	return cmd
}

// Execute runs the root command against the process streams and returns the
// exit code.
func Execute() int {
	return execute(newRootCmd(lmstat.RealClock{}), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func execute(cmd *cobra.Command, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return 0
	}

	msg, code := outcome(err)
	if code == 0 {
		fmt.Fprintln(stdout, msg)
	} else {
		fmt.Fprintln(stderr, msg)
	}
	return code
}

// inputNotFoundError reports a configured input file that does not exist
type inputNotFoundError struct {
	path string
	err  error
}

func (e *inputNotFoundError) Error() string {
	return fmt.Sprintf("input file not found: %s", e.path)
}

func (e *inputNotFoundError) Unwrap() error {
	return e.err
}

// outcome maps a run error to the message shown to the user and the exit
// code. Missing input is benign; undecodable fields are fatal.
func outcome(err error) (string, int) {
	var fieldErr *lmstat.FieldError
	var notFound *inputNotFoundError

	switch {
	case errors.Is(err, lmstat.ErrNoInput):
		return "No license information provided!", 0
	case errors.Is(err, lmstat.ErrLicenseInfoUnavailable):
		return "User license information not available.", 0
	case errors.As(err, &notFound):
		return "File not found: " + notFound.path, 0
	case errors.As(err, &fieldErr):
		return fieldErr.Diagnostic(), 1
	default:
		return "Error: " + err.Error(), 1
	}
}
