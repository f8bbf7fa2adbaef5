// Command envgrep matches a pattern-language expression against one of
// the module's builtin demo envelopes and prints the resulting paths,
// the way a grep-like tool reports matching lines (§6.3's public API,
// exposed as a CLI rather than only a library).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	envelopepattern "github.com/BlockchainCommons/bc-envelope-pattern-go"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/internal/demo"
	"github.com/BlockchainCommons/bc-envelope-pattern-go/pathutil"
)

// envelopeFlag implements [pflag.Value], validating --envelope against
// the builtin demo set at flag-parse time rather than at RunE time.
type envelopeFlag struct{ name string }

func (f *envelopeFlag) String() string { return f.name }
func (f *envelopeFlag) Type() string   { return "envelope" }
func (f *envelopeFlag) Set(s string) error {
	if _, ok := demo.Build(s); !ok {
		return fmt.Errorf("unknown envelope %q (available: %v)", s, demo.Names)
	}
	f.name = s
	return nil
}

func main() {
	os.Exit(run())
}

// run executes the command and returns a process exit code; split out
// of main so testscript.RunMain can invoke it in-process (main_test.go).
func run() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	envFlag := &envelopeFlag{name: "alice"}
	var showCaptures bool

	cmd := &cobra.Command{
		Use:   "envgrep <pattern>",
		Short: "match a pattern-language expression against a demo envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, _ := demo.Build(envFlag.name)
			pat, err := envelopepattern.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse pattern: %w", err)
			}
			paths, captures, err := pat.PathsWithCaptures(env)
			if err != nil {
				return fmt.Errorf("match: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(paths) == 0 {
				fmt.Fprintln(out, "no match")
				return nil
			}
			for _, p := range paths {
				fmt.Fprintln(out, pathutil.Format(p))
			}
			if showCaptures {
				for name, spans := range captures {
					for _, span := range spans {
						fmt.Fprintf(out, "@%s: %s\n", name, pathutil.Format(span))
					}
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Var(envFlag, "envelope", "builtin demo envelope to match against")
	flags.BoolVar(&showCaptures, "captures", false, "also print named captures")
	var _ pflag.Value = envFlag

	return cmd
}
