package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// streams are the standard streams of one invocation.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// options holds the parsed command line.
type options struct {
	file       string
	value      string
	hasValue   bool
	configPath string

	list     bool
	dev      string
	get      string
	set      string
	setThres bool
	noBackup bool
	history  bool
	limit    int
}

// usageError marks command-line mistakes (exit 2).
type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// errReported means the failure was already printed to the operator.
var errReported = errors.New("failure already reported")

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, s streams) int {
	if args == nil {
		args = []string{}
	}
	cmd := newRootCommand(ctx, s)
	cmd.SetArgs(args)

	err := cmd.Execute()
	var usage usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &usage):
		fmt.Fprintf(s.err, "Error: %v\n", err)
		fmt.Fprintf(s.err, "Run '%s --help' for usage.\n", cmd.Name())
		return exitUsage
	case errors.Is(err, errReported):
		return exitFailure
	default:
		fmt.Fprintf(s.err, "Error: %v\n", err)
		return exitFailure
	}
}

// newRootCommand builds the pmcconfig command.
func newRootCommand(ctx context.Context, s streams) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "pmcconfig [flags] <pmc_file> [VALUE]",
		Short: "Parse and modify PMC device configurations",
		Long: `pmcconfig reads a PMC board file and shows or edits the configuration of
its devices. Threshold parameters are shown and entered as real values and
stored as raw hex using the device's M_VAL and R_EXP coefficients.

VALUE is the new value for --set. Use "--" before a negative VALUE.`,
		Version:       fmt.Sprintf("%s (commit %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return usagef("expected <pmc_file> and an optional VALUE, got %d arguments", len(args))
			}
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			opts.file = args[0]
			if len(args) == 2 {
				opts.value = args[1]
				opts.hasValue = true
			}
			if opts.configPath == "" {
				opts.configPath = os.Getenv("PMCCONFIG_CONFIG")
			}
			if err := opts.validate(); err != nil {
				return err
			}

			a, err := newApp(opts, s)
			if err != nil {
				return err
			}
			defer a.close()
			return a.execute(ctx)
		},
	}

	cmd.SetIn(s.in)
	cmd.SetOut(s.out)
	cmd.SetErr(s.err)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})

	f := cmd.Flags()
	f.BoolVar(&opts.list, "list", false, "List all devices")
	f.StringVar(&opts.dev, "dev", "", "Device name to operate on (using <name> tag)")
	f.StringVar(&opts.get, "get", "", "Get value of a configuration variable")
	f.StringVar(&opts.set, "set", "", "Set a configuration variable to VALUE")
	f.BoolVar(&opts.setThres, "set-thres", false, "Interactive mode to set all threshold parameters")
	f.BoolVar(&opts.noBackup, "no-backup", false, "Do not create backup when saving")
	f.BoolVar(&opts.history, "history", false, "Show journaled changes for the device")
	f.IntVar(&opts.limit, "limit", 20, "Maximum number of journal entries for --history")
	f.StringVar(&opts.configPath, "config", "", "Tool configuration file (default $PMCCONFIG_CONFIG)")

	return cmd
}

// validate checks flag combinations that cobra cannot express.
func (o *options) validate() error {
	if o.list {
		if o.hasValue {
			return usagef("unexpected argument %q", o.value)
		}
		return nil
	}
	if o.dev == "" {
		return usagef("--dev is required (unless using --list)")
	}
	if o.set != "" && o.get == "" {
		if !o.hasValue {
			return usagef("--set requires VARIABLE and VALUE")
		}
		return nil
	}
	if o.hasValue {
		return usagef("unexpected argument %q", o.value)
	}
	if o.history && o.limit < 1 {
		return usagef("--limit must be positive")
	}
	return nil
}
