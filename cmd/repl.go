// Copyright © 2024 The ELPS authors

package cmd

import (
	"strings"

	"github.com/luthersystems/tinylisp/repl"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultPrompt = "tinylisp> "

// ReplCommand creates the "repl" cobra command.
func ReplCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive REPL",
		Long: `Start an interactive read-eval-print loop.

Input is evaluated once every open parenthesis has been closed; until then a
continuation prompt is shown.  Line editing, tab completion of bound names
and command history (~/.tinylisp_history) are supported via readline.  Use
Ctrl-D to exit and Ctrl-C to discard the current input.

Example REPL session:
  tinylisp> (def sq (fn (x) (+ x x)))
  sq
  tinylisp> (sq 4)
  8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			stop, err := startTrace(env, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			prompt := viper.GetString(keyPrompt)
			if prompt == "" {
				prompt = defaultPrompt
			}
			err = repl.RunEnv(env, prompt, strings.Repeat(" ", len(prompt)),
				repl.WithColor(colorMode()))
			if serr := stop(); err == nil {
				err = serr
			}
			return err
		},
	}
	cmd.Flags().String(keyPrompt, defaultPrompt, "REPL prompt")
	_ = viper.BindPFlag(keyPrompt, cmd.Flags().Lookup(keyPrompt))
	return cmd
}
