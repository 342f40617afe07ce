// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luthersystems/tinylisp/lint"
	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/lsp"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withConfig sets configuration keys for the duration of a test.
func withConfig(t *testing.T, kv map[string]interface{}) {
	t.Helper()
	viper.Reset()
	viper.Set(keyColor, "never")
	for k, v := range kv {
		viper.Set(k, v)
	}
	t.Cleanup(viper.Reset)
}

func TestRunExpressions(t *testing.T) {
	withConfig(t, nil)
	var stdout, stderr bytes.Buffer
	err := runPrograms(&stdout, &stderr, []string{
		"(def sq (fn (x) (+ x x)))",
		"(sq 4)",
		"(if (< (sq 2) 5) 1 2)",
	}, true, true)
	require.NoError(t, err)
	assert.Equal(t, "sq\n8\n1\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRunError(t *testing.T) {
	withConfig(t, nil)
	var stdout, stderr bytes.Buffer
	err := runPrograms(&stdout, &stderr, []string{"(def x 1)", "(+ x true)"}, true, true)
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, "x\n", stdout.String())
	msg := stderr.String()
	assert.Contains(t, msg, "error[type-mismatch]: argument 1 is not a number: boolean\n")
	assert.Contains(t, msg, "--> expr2:1:1\n")
	assert.Contains(t, msg, " 1 |  (+ x true)\n")
	assert.Contains(t, msg, "note: in + at expr2:1:1\n")
}

func TestRunParseError(t *testing.T) {
	withConfig(t, nil)
	var stdout, stderr bytes.Buffer
	err := runPrograms(&stdout, &stderr, []string{"(+ 1 2))"}, true, false)
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr.String(), "error[parse-error]: unexpected token )")
	assert.Empty(t, stdout.String())
}

func TestRunFiles(t *testing.T) {
	withConfig(t, nil)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lisp"), []byte("(def one 1)"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "b.lisp"), []byte("(+ one 1)"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("(+ 1"), 0o600))

	var stdout, stderr bytes.Buffer
	err := runPrograms(&stdout, &stderr, []string{dir + "/..."}, false, true)
	require.NoError(t, err, stderr.String())
	assert.Equal(t, "one\n2\n", stdout.String())

	err = runPrograms(&stdout, &stderr, []string{filepath.Join(dir, "missing.lisp")}, false, true)
	assert.Error(t, err)
}

func TestExpandArgs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.lisp"), nil, 0o600))
	args, err := expandArgs([]string{"main.lisp", dir + "/..."})
	require.NoError(t, err)
	assert.Equal(t, []string{"main.lisp", filepath.Join(dir, "x.lisp")}, args)

	_, err = expandArgs([]string{filepath.Join(dir, "nope") + "/..."})
	assert.Error(t, err)
}

func TestSessionConfigs(t *testing.T) {
	withConfig(t, map[string]interface{}{
		keyScoping:  "lexical",
		keyEagerIf:  true,
		keyMaxDepth: 3,
		keyLogLevel: "debug",
		keyReader:   "parsec",
	})
	var stderr bytes.Buffer
	env, err := newSession(&stderr)
	require.NoError(t, err)
	assert.Equal(t, lisp.LexicalScope, env.Runtime.Scoping)
	assert.True(t, env.Runtime.EagerIf)
	assert.Equal(t, 3, env.Runtime.Stack.MaxHeight)

	_, err = env.EvaluateProgram("(def f (fn (n) (if (< n 1) 0 (f (- n 1)))))")
	require.NoError(t, err)
	_, err = env.EvaluateProgram("(f 1)")
	assert.ErrorIs(t, err, lisp.CondStackOverflow)
	assert.Contains(t, stderr.String(), "level=debug")
}

func TestSessionConfigErrors(t *testing.T) {
	for key, value := range map[string]string{
		keyScoping:  "static",
		keyReader:   "yacc",
		keyLogLevel: "loud",
	} {
		withConfig(t, map[string]interface{}{key: value})
		_, err := sessionConfigs(&bytes.Buffer{})
		assert.Error(t, err, "%s=%s", key, value)
	}
}

func TestTraceCallgrind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "callgrind.out")
	withConfig(t, map[string]interface{}{
		keyTrace:     "callgrind",
		keyTraceFile: path,
	})
	var stdout, stderr bytes.Buffer
	err := runPrograms(&stdout, &stderr, []string{"(def f (fn (x) (+ x 1)))", "(f 1)"}, true, true)
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "version: 1\ncreator: tinylisp"))
	assert.Contains(t, string(b), ") ENTRYPOINT\n")
	assert.Contains(t, string(b), ") f\ncalls=1 ")
	assert.Contains(t, string(b), "\ntotals: ")
}

func TestTraceOpenTelemetry(t *testing.T) {
	withConfig(t, map[string]interface{}{keyTrace: "otel"})
	var stdout, stderr bytes.Buffer
	err := runPrograms(&stdout, &stderr, []string{"(def f (fn (x) (+ x 1)))", "(f 1)"}, true, true)
	require.NoError(t, err)
	assert.Equal(t, "f\n2\n", stdout.String())
	trace := stderr.String()
	assert.Contains(t, trace, `"msg":"evaluate"`)
	assert.Contains(t, trace, `"msg":"f"`)
	assert.Contains(t, trace, `"parent_id"`)
}

func TestTraceOpenCensus(t *testing.T) {
	withConfig(t, map[string]interface{}{keyTrace: "opencensus"})
	var stdout, stderr bytes.Buffer
	err := runPrograms(&stdout, &stderr, []string{"(def f (fn (x) (+ x 1)))", "(f 1)"}, true, true)
	require.NoError(t, err)
	trace := stderr.String()
	assert.Contains(t, trace, `"msg":"evaluate"`)
	assert.Contains(t, trace, `"msg":"lambda:f@expr1:1"`)
}

func TestTraceUnknown(t *testing.T) {
	withConfig(t, map[string]interface{}{keyTrace: "dtrace"})
	err := runPrograms(&bytes.Buffer{}, &bytes.Buffer{}, []string{"1"}, true, false)
	assert.EqualError(t, err, `unknown trace kind: "dtrace"`)
}

func TestDoc(t *testing.T) {
	withConfig(t, nil)
	env, err := newSession(&bytes.Buffer{})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, renderDoc(&out, env, "-"))
	assert.Equal(t, "function (- x &rest y)\n\n"+
		"  Returns the first argument minus the sum of the remaining\n"+
		"  arguments.  At least one argument is required.\n", out.String())

	out.Reset()
	require.NoError(t, renderDoc(&out, env, "if"))
	assert.True(t, strings.HasPrefix(out.String(), "special operator (if test then else)\n"))

	_, err = env.EvaluateProgram("(def sq (fn (x) (+ x x)))")
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, renderDoc(&out, env, "sq"))
	assert.Equal(t, "lambda (sq x)\n", out.String())

	assert.EqualError(t, renderDoc(&out, env, "nope"), "no documentation for nope")

	out.Reset()
	require.NoError(t, renderDocList(&out, env))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 10)
	assert.Contains(t, out.String(), "(+ &rest x)              Returns the sum of its arguments.\n")
	assert.Contains(t, out.String(), "(sq x)                   lambda\n")
}

func TestCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"run", "repl", "doc", "lsp", "fmt", "lint"} {
		assert.True(t, names[name], "missing command %s", name)
	}
	for _, flag := range []string{"config", keyColor, keyReader, keyScoping, keyEagerIf, keyMaxDepth, keyLogLevel, keyTrace, keyTraceFile} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestParseScoping(t *testing.T) {
	s, err := parseScoping("")
	require.NoError(t, err)
	assert.Equal(t, lisp.DynamicScope, s)
	s, err = parseScoping("Lexical")
	require.NoError(t, err)
	assert.Equal(t, lisp.LexicalScope, s)
}

func TestDocGuide(t *testing.T) {
	withConfig(t, nil)
	var out bytes.Buffer
	cmd := DocCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--guide"})
	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "# tinylisp language reference"))
}

func TestFmtFiles(t *testing.T) {
	withConfig(t, nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "a.lisp")
	require.NoError(t, os.WriteFile(path, []byte("(+   1 2)"), 0o600))

	var stdout, stderr bytes.Buffer
	err := runFmt(nil, &stdout, &stderr, []string{path}, fmtOptions{list: true})
	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, path+"\n", stdout.String())

	stdout.Reset()
	require.NoError(t, runFmt(nil, &stdout, &stderr, []string{path}, fmtOptions{diff: true}))
	assert.Contains(t, stdout.String(), "-(+   1 2)")
	assert.Contains(t, stdout.String(), "+(+ 1 2)")

	stdout.Reset()
	require.NoError(t, runFmt(nil, &stdout, &stderr, []string{dir + "/..."}, fmtOptions{write: true}))
	assert.Empty(t, stdout.String())
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "(+ 1 2)\n", string(b))

	require.NoError(t, runFmt(nil, &stdout, &stderr, []string{path}, fmtOptions{list: true}))
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestFmtStdin(t *testing.T) {
	withConfig(t, nil)
	var stdout, stderr bytes.Buffer
	err := runFmt(strings.NewReader("(if true\n1\n2)"), &stdout, &stderr, nil, fmtOptions{indentSize: 4})
	require.NoError(t, err)
	assert.Equal(t, "(if true\n    1\n    2)\n", stdout.String())

	stdout.Reset()
	err = runFmt(strings.NewReader("(when x\n1\n2)"), &stdout, &stderr, nil, fmtOptions{rules: []string{"when=special:1"}})
	require.NoError(t, err)
	assert.Equal(t, "(when x\n  1\n  2)\n", stdout.String())

	err = runFmt(strings.NewReader("(when x)"), &stdout, &stderr, nil, fmtOptions{rules: []string{"when"}})
	assert.EqualError(t, err, `indent rule "when": expected name=style`)

	stdout.Reset()
	err = runFmt(strings.NewReader("(+ 1"), &stdout, &stderr, nil, fmtOptions{})
	assert.ErrorIs(t, err, errReported)
	assert.Empty(t, stdout.String())
	assert.NotEmpty(t, stderr.String())
}

func TestLint(t *testing.T) {
	withConfig(t, nil)
	var stdout, stderr bytes.Buffer
	err := runLint(strings.NewReader("(def x 1)\n(+ x 1)\n"), &stdout, &stderr, nil, lintOptions{})
	require.NoError(t, err)
	assert.Empty(t, stderr.String())

	err = runLint(strings.NewReader("(+ y 1)\n"), &stdout, &stderr, nil, lintOptions{})
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr.String(), "warning[undefined-symbol]: unbound symbol: y\n")
	assert.True(t, strings.HasSuffix(stderr.String(), "1 problem (1 warning)\n"))
	assert.Empty(t, stdout.String())
}

func TestLintSeverity(t *testing.T) {
	withConfig(t, nil)
	src := "(if true 1 2)\n(+ y 1)\n"
	var stdout, stderr bytes.Buffer
	opts := lintOptions{severities: []string{"undefined-symbol=error"}, minSeverity: "warning"}
	err := runLint(strings.NewReader(src), &stdout, &stderr, nil, opts)
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr.String(), "error[undefined-symbol]: unbound symbol: y\n")
	assert.NotContains(t, stderr.String(), "constant-condition")
	assert.True(t, strings.HasSuffix(stderr.String(), "1 problem (1 error)\n"))

	err = runLint(strings.NewReader(src), &stdout, &stderr, nil, lintOptions{severities: []string{"nope=error"}})
	assert.EqualError(t, err, `bad --severity "nope=error": expected check=level`)
	err = runLint(strings.NewReader(src), &stdout, &stderr, nil, lintOptions{minSeverity: "fatal"})
	assert.EqualError(t, err, `unknown severity: "fatal"`)
}

func TestLintJSON(t *testing.T) {
	withConfig(t, nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "a.lisp")
	require.NoError(t, os.WriteFile(path, []byte("(if 1 2 3)\n(+ y 1)\n"), 0o600))

	var stdout, stderr bytes.Buffer
	err := runLint(nil, &stdout, &stderr, []string{path}, lintOptions{json: true, checks: "undefined-symbol"})
	assert.ErrorIs(t, err, errReported)
	var diags []lint.Diagnostic
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &diags))
	require.Len(t, diags, 1)
	assert.Equal(t, "undefined-symbol", diags[0].Analyzer)
	assert.Equal(t, lint.Position{File: path, Line: 2, Col: 4}, diags[0].Pos)
}

func TestLintOptions(t *testing.T) {
	withConfig(t, nil)
	var stdout, stderr bytes.Buffer
	require.NoError(t, runLint(nil, &stdout, &stderr, nil, lintOptions{list: true}))
	assert.Equal(t, strings.Join(lint.AnalyzerNames(), "\n")+"\n", stdout.String())

	err := runLint(nil, &stdout, &stderr, nil, lintOptions{checks: "nope"})
	assert.EqualError(t, err, `unknown analyzer: "nope"`)

	stderr.Reset()
	err = runLint(strings.NewReader("(+ 1 2))"), &stdout, &stderr, nil, lintOptions{})
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr.String(), "unexpected token )")
}

func TestLSPSettings(t *testing.T) {
	settings, err := lspSettings([]string{"if-arity"}, []string{"if-arity=info"}, 4)
	require.NoError(t, err)
	assert.Equal(t, lsp.Settings{
		Checks:     []string{"if-arity"},
		Severities: map[string]lint.Severity{"if-arity": lint.SeverityInfo},
		IndentSize: 4,
	}, settings)

	_, err = lspSettings([]string{"nope"}, nil, 0)
	assert.EqualError(t, err, `unknown analyzer: "nope"`)
	_, err = lspSettings(nil, []string{"if-arity"}, 0)
	assert.EqualError(t, err, `bad --severity "if-arity": expected check=level`)
}
