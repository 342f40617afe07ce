// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"os"

	"github.com/luthersystems/tinylisp/lint"
	"github.com/luthersystems/tinylisp/lsp"
	"github.com/spf13/cobra"
)

// LSPCommand creates the "lsp" cobra command.
func LSPCommand() *cobra.Command {
	var (
		stdio      bool
		port       int
		checks     []string
		severities []string
		indentSize int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the Language Server Protocol server",
		Long: `Start an LSP server for tinylisp source files.

The language server provides diagnostics, hover documentation,
go-to-definition, find references, completion, document symbols, folding,
signature help and rename support.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Lint checks, severities and formatting set by flags apply until the client
sends its own settings.

Examples:
  tinylisp lsp                           Start with stdio transport
  tinylisp lsp --port 7998               Start with TCP on port 7998
  tinylisp lsp --checks if-arity,call-arity`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries the protocol so everything else goes to stderr.
			env, err := newSession(os.Stderr)
			if err != nil {
				return err
			}
			settings, err := lspSettings(checks, severities, indentSize)
			if err != nil {
				return err
			}
			srv := lsp.New(
				lsp.WithEnv(env),
				lsp.WithLogger(env.Runtime.Logger),
				lsp.WithSettings(settings),
			)

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				env.Runtime.Logger.WithField("addr", addr).Info("tinylisp LSP server listening")
				return srv.RunTCP(addr)
			}
			return srv.RunStdio()
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")
	cmd.Flags().StringSliceVar(&checks, "checks", nil,
		"Lint checks to publish (default: all)")
	cmd.Flags().StringArrayVar(&severities, "severity", nil,
		"Override a check's severity as check=error|warning|info (repeatable)")
	cmd.Flags().IntVar(&indentSize, "indent-size", 0,
		"Indent size for formatting (default: the editor's tab size)")

	return cmd
}

// lspSettings validates the initial server settings given by flags.
func lspSettings(checks, severities []string, indentSize int) (lsp.Settings, error) {
	if _, err := lint.SelectAnalyzers(checks); err != nil {
		return lsp.Settings{}, err
	}
	l := &lint.Linter{}
	if err := applySeverityFlags(l, lintOptions{severities: severities}); err != nil {
		return lsp.Settings{}, err
	}
	return lsp.Settings{
		Checks:     checks,
		Severities: l.Severities,
		IndentSize: indentSize,
	}, nil
}
