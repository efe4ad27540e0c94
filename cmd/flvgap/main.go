// Package main provides the CLI entry point for flvgap.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/five82/flvgap/internal/util"
)

const appName = "flvgap"

// Exit codes.
const (
	exitOK    = 0
	exitGap   = 1
	exitError = 2
)

// exitCodeError carries a process exit code out of a command. A nil err
// means the command already reported everything it had to say.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitCodeError) Unwrap() error {
	return e.err
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return exitOK
	}

	var ec *exitCodeError
	if errors.As(err, &ec) {
		if ec.err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", ec.err)
		}
		return ec.code
	}
	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitError
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Detect timestamp gaps in FLV files",
		Long: `flvgap reads FLV files front to back and reports every place where an
audio or video timestamp breaks the stream's cadence.

Exit status is 0 when every file is clean, 1 when a gap was found and 2
when a file could not be checked.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newCheckCmd(), newInfoCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := util.GetSystemInfo()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (%s, %s/%s)\n",
				appName, util.ModuleVersion(), info.GoVersion, info.OS, info.Arch)
		},
	}
}
