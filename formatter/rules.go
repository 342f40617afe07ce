// Copyright © 2024 The ELPS authors

package formatter

import (
	"fmt"
	"strconv"
	"strings"
)

// IndentStyle determines how continuation lines of a call are indented.
type IndentStyle int

const (
	// IndentAlign lines up continuation lines with the first argument.
	IndentAlign IndentStyle = iota
	// IndentBody indents every continuation line one level past the paren.
	IndentBody
	// IndentSpecial aligns header arguments and indents the rest as a body.
	IndentSpecial
)

var styleNames = []string{"align", "body", "special"}

func (s IndentStyle) String() string {
	if int(s) < len(styleNames) {
		return styleNames[s]
	}
	return "IndentStyle(" + strconv.Itoa(int(s)) + ")"
}

// IndentRule is the indentation of calls to one name.
type IndentRule struct {
	Style      IndentStyle
	HeaderArgs int // arguments before the body under IndentSpecial
}

func (r *IndentRule) String() string {
	if r.Style == IndentSpecial {
		return fmt.Sprintf("special:%d", r.HeaderArgs)
	}
	return r.Style.String()
}

// ParseIndentRule parses "name=style" where style is align, body or
// special:N.
func ParseIndentRule(s string) (string, *IndentRule, error) {
	name, style, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("indent rule %q: expected name=style", s)
	}
	style = strings.TrimSpace(style)
	switch {
	case style == "align":
		return name, &IndentRule{Style: IndentAlign}, nil
	case style == "body":
		return name, &IndentRule{Style: IndentBody}, nil
	case strings.HasPrefix(style, "special:"):
		n, err := strconv.Atoi(strings.TrimPrefix(style, "special:"))
		if err != nil || n < 0 {
			return "", nil, fmt.Errorf("indent rule %q: bad header argument count", s)
		}
		return name, &IndentRule{Style: IndentSpecial, HeaderArgs: n}, nil
	default:
		return "", nil, fmt.Errorf("indent rule %q: unknown style %q", s, style)
	}
}

// Config holds formatting configuration.
type Config struct {
	IndentSize    int                    // spaces per indent level
	MaxBlankLines int                    // consecutive blank lines kept
	Rules         map[string]*IndentRule // call head -> rule
}

// DefaultConfig indents by two spaces and keeps one blank line.
func DefaultConfig() *Config {
	return &Config{
		IndentSize:    2,
		MaxBlankLines: 1,
		Rules:         DefaultRules(),
	}
}

// DefaultRules gives each special operator one header argument: the bound
// symbol of def, the parameter list of fn and the test of if.
func DefaultRules() map[string]*IndentRule {
	return map[string]*IndentRule{
		"def": {Style: IndentSpecial, HeaderArgs: 1},
		"fn":  {Style: IndentSpecial, HeaderArgs: 1},
		"if":  {Style: IndentSpecial, HeaderArgs: 1},
	}
}

// RuleFor returns the rule for calls to name.  Names without a rule that
// start with "def" are indented like def and other calls align.
func (c *Config) RuleFor(name string) *IndentRule {
	if r, ok := c.Rules[name]; ok {
		return r
	}
	if strings.HasPrefix(name, "def") {
		return c.RuleFor("def")
	}
	return &IndentRule{Style: IndentAlign}
}
