// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/luthersystems/tinylisp/lint"
	"github.com/spf13/cobra"
)

type lintOptions struct {
	json        bool
	checks      string
	list        bool
	severities  []string
	minSeverity string
}

// LintCommand creates the "lint" cobra command.
func LintCommand() *cobra.Command {
	var opts lintOptions
	cmd := &cobra.Command{
		Use:   "lint [flags] [FILE...]",
		Short: "Run static analysis checks on lisp source files",
		Long: `Run static analysis checks on lisp source files.

The linter reports likely mistakes, similar to "go vet" for Go.  Each check is
an independent analyzer that examines the parsed forms of a file.  It does not
report layout; use "tinylisp fmt" for that.

With no files, reads from stdin.  An argument ending in "/..." lints every
.lisp file found below that directory.  The command exits with status 1 when
any problem is reported.

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `
Examples:
  tinylisp lint main.lisp
  tinylisp lint --json lib/...
  tinylisp lint --checks=if-arity,call-arity main.lisp
  tinylisp lint --severity undefined-symbol=error --min-severity warning .
  cat main.lisp | tinylisp lint`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false,
		"Output diagnostics as JSON")
	cmd.Flags().StringVar(&opts.checks, "checks", "",
		"Comma-separated list of checks to run (default: all)")
	cmd.Flags().BoolVar(&opts.list, "list", false,
		"List available checks and exit")
	cmd.Flags().StringArrayVar(&opts.severities, "severity", nil,
		"Override a check's severity as check=error|warning|info (repeatable)")
	cmd.Flags().StringVar(&opts.minSeverity, "min-severity", "",
		"Report only problems at least this severe")
	return cmd
}

func runLint(stdin io.Reader, stdout, stderr io.Writer, args []string, opts lintOptions) error {
	if opts.list {
		for _, name := range lint.AnalyzerNames() {
			fmt.Fprintln(stdout, name) //nolint:errcheck
		}
		return nil
	}
	var names []string
	if opts.checks != "" {
		for _, name := range strings.Split(opts.checks, ",") {
			names = append(names, strings.TrimSpace(name))
		}
	}
	analyzers, err := lint.SelectAnalyzers(names)
	if err != nil {
		return err
	}
	l := &lint.Linter{Analyzers: analyzers}
	if err := applySeverityFlags(l, opts); err != nil {
		return err
	}

	var sources []source
	if len(args) == 0 {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		sources = []source{{name: "<stdin>", text: string(b)}}
	} else {
		sources, err = readSources(args, false)
		if err != nil {
			return err
		}
	}
	texts := make(map[string]string, len(sources))
	for _, src := range sources {
		texts[src.name] = src.text
	}

	var all []lint.Diagnostic
	for _, src := range sources {
		diags, err := l.LintFile([]byte(src.text), src.name)
		if err != nil {
			renderError(stderr, err, texts)
			return errReported
		}
		all = append(all, diags...)
	}
	if opts.json {
		if err := lint.FormatJSON(stdout, all); err != nil {
			return err
		}
	} else {
		renderLintDiagnostics(stderr, all, texts)
		if len(all) > 0 {
			fmt.Fprintln(stderr, lint.Summary(all)) //nolint:errcheck
		}
	}
	if len(all) > 0 {
		return errReported
	}
	return nil
}

func applySeverityFlags(l *lint.Linter, opts lintOptions) error {
	known := make(map[string]bool)
	for _, name := range lint.AnalyzerNames() {
		known[name] = true
	}
	for _, flag := range opts.severities {
		name, level, ok := strings.Cut(flag, "=")
		if !ok || !known[strings.TrimSpace(name)] {
			return fmt.Errorf("bad --severity %q: expected check=level", flag)
		}
		sev, err := lint.ParseSeverity(strings.TrimSpace(level))
		if err != nil {
			return err
		}
		if l.Severities == nil {
			l.Severities = make(map[string]lint.Severity)
		}
		l.Severities[strings.TrimSpace(name)] = sev
	}
	if opts.minSeverity != "" {
		sev, err := lint.ParseSeverity(opts.minSeverity)
		if err != nil {
			return err
		}
		l.MinSeverity = sev
	}
	return nil
}
