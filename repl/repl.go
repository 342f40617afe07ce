// Copyright © 2024 The ELPS authors

package repl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/luthersystems/tinylisp/diagnostic"
	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/parser"
	"github.com/sirupsen/logrus"
)

// SourceName is the file name given to REPL input in error locations.
const SourceName = "stdin"

type config struct {
	stdin       io.ReadCloser
	stderr      io.Writer
	historyFile string
	noHistory   bool
	color       diagnostic.ColorMode
	envConfig   []lisp.Config
}

func newConfig(opts ...Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output of the REPL.
func WithStderr(stderr io.Writer) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithHistoryFile stores input history in path instead of
// ~/.tinylisp_history.  An empty path disables history.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.historyFile = path
		c.noHistory = path == ""
	}
}

// WithColor sets the color mode of rendered errors.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// WithEnvConfig passes additional configuration to the session created by
// RunRepl.
func WithEnvConfig(cfgs ...lisp.Config) Option {
	return func(c *config) {
		c.envConfig = append(c.envConfig, cfgs...)
	}
}

// RunRepl runs a repl in a new session.
func RunRepl(prompt string, opts ...Option) error {
	cfg := newConfig(opts...)
	envOpts := []lisp.Config{
		lisp.WithReader(parser.NewReader()),
	}
	if cfg.stderr != nil {
		envOpts = append(envOpts, lisp.WithStderr(cfg.stderr))
	}
	envOpts = append(envOpts, cfg.envConfig...)
	env, err := lisp.NewSession(envOpts...)
	if err != nil {
		return fmt.Errorf("language initialization failure: %w", err)
	}
	return RunEnv(env, prompt, strings.Repeat(" ", len(prompt)), opts...)
}

// RunEnv runs a repl with env as a root environment.  The cont prompt is
// shown while a list remains open.
func RunEnv(env *lisp.LEnv, prompt, cont string, opts ...Option) error {
	if env.Parent != nil {
		return errors.New("REPL environment is not a root environment")
	}

	cfg := newConfig(opts...)
	if cfg.stderr != nil {
		env.Runtime.Stderr = cfg.stderr
	}
	history := cfg.historyFile
	if history == "" && !cfg.noHistory {
		history = historyPath()
	}
	ensureHistoryFilePermissions(history)

	rlCfg := &readline.Config{
		Stdout:            env.Runtime.Stderr,
		Stderr:            env.Runtime.Stderr,
		Prompt:            prompt,
		HistoryFile:       history,
		HistorySearchFold: true,
		AutoComplete:      &symbolCompleter{env: env},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	s := newSession(env, cfg.color)
	for {
		line, err := rl.ReadSlice()
		if err == readline.ErrInterrupt {
			s.reset()
			rl.SetPrompt(prompt)
			continue
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if s.feed(env.Runtime.Stderr, string(line)) {
			rl.SetPrompt(cont)
		} else {
			rl.SetPrompt(prompt)
		}
	}
}

// session accumulates REPL input until it forms a complete program.
type session struct {
	env      *lisp.LEnv
	renderer *diagnostic.Renderer
	buf      bytes.Buffer
}

func newSession(env *lisp.LEnv, color diagnostic.ColorMode) *session {
	s := &session{env: env}
	s.renderer = &diagnostic.Renderer{
		Color: color,
		SourceReader: func(name string) ([]byte, error) {
			if name != SourceName {
				return os.ReadFile(name) //nolint:gosec // reads user-specified source files for display
			}
			return s.buf.Bytes(), nil
		},
	}
	return s
}

// feed adds a line of input and evaluates the buffered program once it is
// complete.  The result or error is written to w.  Feed returns true if the
// program is still missing closing parentheses.
func (s *session) feed(w io.Writer, line string) bool {
	if s.buf.Len() == 0 && strings.TrimSpace(line) == "" {
		return false
	}
	s.buf.WriteString(line)
	s.buf.WriteString("\n")
	val, err := s.env.EvaluateProgramNamed(SourceName, s.buf.String())
	if lisp.IsIncomplete(err) {
		s.env.Runtime.Logger.WithFields(logrus.Fields{
			"buffered": s.buf.Len(),
		}).Debug("repl input incomplete")
		return true
	}
	if err != nil {
		renderError(w, s.renderer, err)
	} else {
		fmt.Fprintln(w, val) //nolint:errcheck // best-effort REPL output
	}
	s.reset()
	return false
}

func (s *session) reset() {
	s.buf.Reset()
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tinylisp_history")
}

// ensureHistoryFilePermissions creates the history file if it does not exist
// and restricts it to the current user.  REPL input may contain secrets.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600) //nolint:gosec // path is the user's history file
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0600)
}
