// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// RunCommand creates the "run" cobra command.
func RunCommand() *cobra.Command {
	var (
		expression  bool
		printValues bool
	)
	cmd := &cobra.Command{
		Use:   "run [flags] FILE...",
		Short: "Run lisp code",
		Long: `Run lisp code supplied via the command line or in files.

Every argument is evaluated in order in one session, so definitions made by
an earlier program are visible to later ones.  An argument ending in "/..."
runs every .lisp file found below that directory.

Examples:
  tinylisp run main.lisp
  tinylisp run -p -e '(def sq (fn (x) (+ x x)))' '(sq 4)'
  tinylisp run --trace callgrind examples/...`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrograms(cmd.OutOrStdout(), cmd.ErrOrStderr(), args, expression, printValues)
		},
	}
	cmd.Flags().BoolVarP(&expression, "expression", "e", false,
		"Interpret arguments as lisp expressions")
	cmd.Flags().BoolVarP(&printValues, "print", "p", false,
		"Print expression values to stdout")
	return cmd
}

type source struct {
	name string
	text string
}

func runPrograms(stdout, stderr io.Writer, args []string, expression, printValues bool) error {
	sources, err := readSources(args, expression)
	if err != nil {
		return err
	}
	env, err := newSession(stderr)
	if err != nil {
		return err
	}
	stop, err := startTrace(env, stderr)
	if err != nil {
		return err
	}
	texts := make(map[string]string, len(sources))
	for _, src := range sources {
		texts[src.name] = src.text
	}
	for _, src := range sources {
		v, err := env.EvaluateProgramNamed(src.name, src.text)
		if err != nil {
			_ = stop()
			renderError(stderr, err, texts)
			return errReported
		}
		if printValues {
			fmt.Fprintln(stdout, v) //nolint:errcheck
		}
	}
	return stop()
}

func readSources(args []string, expression bool) ([]source, error) {
	if expression {
		sources := make([]source, len(args))
		for i := range args {
			sources[i] = source{name: fmt.Sprintf("expr%d", i+1), text: args[i]}
		}
		return sources, nil
	}
	paths, err := expandArgs(args)
	if err != nil {
		return nil, err
	}
	sources := make([]source, len(paths))
	for i, path := range paths {
		b, err := os.ReadFile(path) //nolint:gosec // user-specified program
		if err != nil {
			return nil, err
		}
		sources[i] = source{name: path, text: string(b)}
	}
	return sources, nil
}

// expandArgs resolves arguments of the form "dir/..." to the .lisp files
// below dir, in lexical order.  Other arguments pass through unchanged.
func expandArgs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		dir, ok := strings.CutSuffix(arg, "/...")
		if !ok {
			out = append(out, arg)
			continue
		}
		if dir == "" {
			dir = "."
		}
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == ".lisp" {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", arg, err)
		}
	}
	return out, nil
}
