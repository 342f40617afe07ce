// Copyright © 2024 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// errReported is returned by commands which have already written their
// failure to stderr.
var errReported = errors.New("error reported")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tinylisp",
	Short: "A small S-expression language",
	Long: `tinylisp evaluates programs in a small S-expression language with
numbers, booleans, def, fn and if.

Getting started:
  tinylisp run file.lisp          Run a source file
  tinylisp run -e '(+ 1 2)'       Evaluate an expression
  tinylisp repl                   Start an interactive REPL
  tinylisp doc +                  Show documentation for a builtin
  tinylisp lsp                    Start the language server

Language overview:
  (def x 1)                 Bind x in the current scope
  (fn (a b) (+ a b))        Create a function of a and b
  (if (< x 2) x (- x 1))    Evaluate one of two branches
  + - < > <= >=             Numeric builtins

Settings may be given as flags, in $HOME/.tinylisp.yaml, or as
TINYLISP_* environment variables (for example TINYLISP_SCOPING=lexical).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tinylisp.yaml)")
	flags.String(keyColor, "auto", `Control colored output: "auto", "always", or "never".`)
	flags.String(keyReader, "rd", `Source reader: "rd" (recursive descent) or "parsec".`)
	flags.String(keyScoping, "dynamic", `Variable scoping of functions: "dynamic" or "lexical".`)
	flags.Bool(keyEagerIf, false, "Evaluate both branches of if before selecting one.")
	flags.Int(keyMaxDepth, defaultMaxDepth, "Maximum call stack height.")
	flags.String(keyLogLevel, "warn", "Runtime log level (debug, info, warn, error).")
	flags.String(keyTrace, "", `Trace function calls: "otel", "opencensus", "pprof" or "callgrind".`)
	flags.String(keyTraceFile, "", "File receiving trace output (default stderr, or callgrind.out).")
	for _, key := range []string{
		keyColor, keyReader, keyScoping, keyEagerIf, keyMaxDepth,
		keyLogLevel, keyTrace, keyTraceFile,
	} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}

	rootCmd.AddCommand(RunCommand())
	rootCmd.AddCommand(ReplCommand())
	rootCmd.AddCommand(DocCommand())
	rootCmd.AddCommand(LSPCommand())
	rootCmd.AddCommand(FmtCommand())
	rootCmd.AddCommand(LintCommand())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory with name ".tinylisp" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".tinylisp")
	}

	viper.SetEnvPrefix("tinylisp")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
