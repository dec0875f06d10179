// Package main provides tconsole, a small CLI that exposes the console
// library to shell scripts: terminal capability reports, emoji stripping,
// themed log lines and task trees described in YAML.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/dianlight/tconsole"
	"github.com/dianlight/tconsole/capability"
)

// errReported marks failures whose message was already written by the
// console.
var errReported = errors.Base("already reported")

// app carries what every command needs. Tests replace the environment and
// the exit function.
type app struct {
	flags  *Flags
	lookup capability.LookupFunc
	exit   func(code int)
	stdin  io.Reader

	console *tconsole.Console
}

func main() {
	a := &app{
		flags:  NewFlags(),
		lookup: capability.OSLookup,
		exit:   os.Exit,
		stdin:  os.Stdin,
	}
	cmd := a.rootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "tconsole: %v\n", err)
		}
		os.Exit(1)
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "tconsole",
		Short: "Capability-aware console output for shell scripts",
		Long: `tconsole writes themed log lines, runs task trees with live progress and
reports what the current terminal supports. Output follows the same
TCONSOLE_* environment variables as the Go library; flags override them.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.console = tconsole.New(a.options(cmd)...)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.console != nil {
				a.console.Shutdown()
			}
		},
	}

	a.flags.RegisterFlags(root.PersistentFlags())
	if err := a.flags.RegisterCompletions(root); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	root.AddCommand(
		a.capsCommand(),
		a.stripCommand(),
		a.logCommand(),
		a.runCommand(),
	)
	return root
}

func (a *app) options(cmd *cobra.Command) []tconsole.Option {
	opts := []tconsole.Option{
		tconsole.WithWriter(cmd.ErrOrStderr()),
		tconsole.WithLookup(a.lookup),
		tconsole.WithExit(a.exit),
	}
	if fn := a.flags.Apply(cmd.Flags()); fn != nil {
		opts = append(opts, tconsole.WithConfig(fn))
	}
	return opts
}
