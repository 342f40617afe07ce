// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/luthersystems/tinylisp/formatter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
)

type fmtOptions struct {
	write      bool
	list       bool
	diff       bool
	indentSize int
	rules      []string
}

// FmtCommand creates the "fmt" cobra command.
func FmtCommand() *cobra.Command {
	var opts fmtOptions
	cmd := &cobra.Command{
		Use:   "fmt [flags] [FILE...]",
		Short: "Format lisp source files",
		Long: `Format lisp source files.

Spacing inside each form is normalized and continuation lines are indented.
Line breaks and blank lines between forms are kept, with runs of blank lines
collapsed.  The bodies of def, fn and if are indented by the indent size and
the arguments of other calls are aligned with the first argument.  Use
--rule to indent other names, as align, body or special:N where N is the
number of header arguments.

With no files, formats stdin to stdout.  An argument ending in "/..."
formats every .lisp file found below that directory.

Flags:
  -w          Write result to (source) file instead of stdout
  -l          List files whose formatting differs
  -d          Display a diff of changes

Examples:
  tinylisp fmt main.lisp
  tinylisp fmt -w lib/...
  tinylisp fmt -l .
  tinylisp fmt --rule when=special:1 main.lisp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.write, "write", "w", false,
		"Write result to (source) file instead of stdout.")
	cmd.Flags().BoolVarP(&opts.diff, "diff", "d", false,
		"Display diffs instead of rewriting files.")
	cmd.Flags().BoolVarP(&opts.list, "list", "l", false,
		"List files whose formatting differs from tinylisp fmt's.")
	cmd.Flags().IntVar(&opts.indentSize, "indent-size", 2,
		"Number of spaces per indent level.")
	cmd.Flags().StringArrayVar(&opts.rules, "rule", nil,
		"Indent rule name=align|body|special:N (repeatable).")
	return cmd
}

func runFmt(stdin io.Reader, stdout, stderr io.Writer, args []string, opts fmtOptions) error {
	cfg := formatter.DefaultConfig()
	if opts.indentSize > 0 {
		cfg.IndentSize = opts.indentSize
	}
	for _, r := range opts.rules {
		name, rule, err := formatter.ParseIndentRule(r)
		if err != nil {
			return err
		}
		cfg.Rules[name] = rule
	}

	if len(args) == 0 {
		src, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		out, err := formatter.Format(src, cfg)
		if err != nil {
			renderError(stderr, err, map[string]string{"<stdin>": string(src)})
			return errReported
		}
		_, err = stdout.Write(out)
		return err
	}

	paths, err := expandArgs(args)
	if err != nil {
		return err
	}
	var failed, changed bool
	for _, path := range paths {
		c, err := fmtFile(stdout, path, cfg, opts)
		if err != nil {
			renderError(stderr, err, nil)
			failed = true
			continue
		}
		changed = changed || c
	}
	if failed || (opts.list && changed) {
		return errReported
	}
	return nil
}

func fmtFile(stdout io.Writer, path string, cfg *formatter.Config, opts fmtOptions) (bool, error) {
	src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
	if err != nil {
		return false, err
	}
	out, err := formatter.FormatFile(src, path, cfg)
	if err != nil {
		return false, err
	}

	changed := string(src) != string(out)

	switch {
	case opts.list:
		if changed {
			fmt.Fprintln(stdout, path) //nolint:errcheck
		}
		return changed, nil
	case opts.diff:
		if changed {
			return true, writeUnifiedDiff(stdout, path, src, out)
		}
		return false, nil
	case opts.write:
		if !changed {
			return false, nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return false, err
		}
		return true, os.WriteFile(path, out, info.Mode().Perm())
	}

	// Default: print to stdout
	_, err = stdout.Write(out)
	return changed, err
}

func writeUnifiedDiff(w io.Writer, path string, original, formatted []byte) error {
	return difflib.WriteUnifiedDiff(w, difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(original)),
		B:        difflib.SplitLines(string(formatted)),
		FromFile: path + ".orig",
		ToFile:   path,
		Context:  3,
	})
}
