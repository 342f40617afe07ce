// Copyright © 2024 The ELPS authors

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/luthersystems/tinylisp/docs"
	"github.com/luthersystems/tinylisp/lisp"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

const docWidth = 72

// DocCommand creates the "doc" cobra command.
func DocCommand() *cobra.Command {
	var (
		sourceFile string
		guide      bool
	)
	cmd := &cobra.Command{
		Use:   "doc [flags] [NAME]",
		Short: "Show documentation for builtins and special operators",
		Long: `Show documentation for the builtin functions and special operators.

Without arguments every documented name is listed with a summary.  Use -f to
evaluate a source file first so that the functions it defines can be queried
as well.  Use --guide to print the language reference.

Examples:
  tinylisp doc                     List all builtins
  tinylisp doc --guide             Print the language reference
  tinylisp doc if                  Show docs for the if operator
  tinylisp doc -f lib.lisp sq      Load a file, then describe sq`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if guide {
				_, err := io.WriteString(cmd.OutOrStdout(), docs.LangGuide)
				return err
			}
			stderr := cmd.ErrOrStderr()
			env, err := newSession(stderr)
			if err != nil {
				return err
			}
			if sourceFile != "" {
				b, err := os.ReadFile(sourceFile) //nolint:gosec // user-specified source
				if err != nil {
					return err
				}
				if _, err := env.EvaluateProgramNamed(sourceFile, string(b)); err != nil {
					renderError(stderr, err, nil)
					return errReported
				}
			}
			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush() //nolint:errcheck // best-effort flush on exit
			if len(args) == 0 {
				return renderDocList(out, env)
			}
			return renderDoc(out, env, args[0])
		},
	}
	cmd.Flags().StringVarP(&sourceFile, "source-file", "f", "",
		"Evaluate a lisp source file before querying documentation.")
	cmd.Flags().BoolVar(&guide, "guide", false,
		"Print the language reference.")
	return cmd
}

// docEntry describes one documented name.
type docEntry struct {
	name    string
	kind    string
	formals []string
	doc     string
}

func (e docEntry) signature() string {
	if len(e.formals) == 0 {
		return "(" + e.name + ")"
	}
	return "(" + e.name + " " + strings.Join(e.formals, " ") + ")"
}

func builtinDocs() map[string]docEntry {
	entries := make(map[string]docEntry)
	add := func(kind string, defs []lisp.LBuiltinDef) {
		for _, def := range defs {
			var formals []string
			for _, f := range def.Formals().Cells {
				formals = append(formals, f.Str)
			}
			entries[def.Name()] = docEntry{
				name:    def.Name(),
				kind:    kind,
				formals: formals,
				doc:     def.Docstring(),
			}
		}
	}
	add("special operator", lisp.DefaultSpecialOps())
	add("function", lisp.DefaultBuiltins())
	return entries
}

// lookupDoc describes name as bound in env.  Builtins are described by their
// definitions, lambdas by their parameter lists.
func lookupDoc(env *lisp.LEnv, name string) (docEntry, bool) {
	if v, ok := env.Lookup(name); ok && v.Type == lisp.LLambda {
		var formals []string
		for _, p := range v.Params().Cells {
			formals = append(formals, p.String())
		}
		return docEntry{name: name, kind: "lambda", formals: formals}, true
	}
	e, ok := builtinDocs()[name]
	return e, ok
}

func renderDoc(w io.Writer, env *lisp.LEnv, name string) error {
	e, ok := lookupDoc(env, name)
	if !ok {
		if v, bound := env.Lookup(name); bound {
			_, err := fmt.Fprintf(w, "%s is a %s: %v\n", name, v.Type, v)
			return err
		}
		return fmt.Errorf("no documentation for %s", name)
	}
	if _, err := fmt.Fprintf(w, "%s %s\n", e.kind, e.signature()); err != nil {
		return err
	}
	if e.doc == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "\n%s\n", indent.String(wordwrap.String(e.doc, docWidth), 2))
	return err
}

func renderDocList(w io.Writer, env *lisp.LEnv) error {
	entries := builtinDocs()
	for _, name := range env.Root().Names() {
		if e, ok := lookupDoc(env, name); ok {
			entries[name] = e
		}
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e := entries[name]
		summary := e.kind
		if e.doc != "" {
			summary = firstSentence(e.doc)
		}
		if _, err := fmt.Fprintf(w, "%-24s %s\n", e.signature(), summary); err != nil {
			return err
		}
	}
	return nil
}

func firstSentence(doc string) string {
	doc = strings.Join(strings.Fields(doc), " ")
	if i := strings.Index(doc, ". "); i >= 0 {
		return doc[:i+1]
	}
	return doc
}
