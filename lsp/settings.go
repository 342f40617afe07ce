// Copyright © 2024 The ELPS authors

package lsp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/luthersystems/tinylisp/formatter"
	"github.com/luthersystems/tinylisp/lint"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Settings are the options a client may send as initializationOptions or
// in workspace/didChangeConfiguration, optionally nested under "tinylisp".
type Settings struct {
	// Checks names the lint analyzers to run.  Empty runs all of them.
	Checks []string `json:"checks"`
	// Severities overrides the severity of lint findings by analyzer name.
	Severities map[string]lint.Severity `json:"severities"`
	// IndentSize overrides the editor's tab size when formatting.
	IndentSize int `json:"indentSize"`
	// IndentRules maps call heads to formatter rules (align, body or
	// special:N).
	IndentRules map[string]string `json:"indentRules"`
	// DebounceMs delays diagnostics after an edit.
	DebounceMs int `json:"debounceMs"`
}

func (c Settings) hasIndentSize() bool {
	return c.IndentSize > 0
}

func (c Settings) debounce() time.Duration {
	if c.DebounceMs <= 0 {
		return debounceDelay
	}
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// decodeSettings reads client settings from the untyped JSON value
// delivered by the protocol.
func decodeSettings(raw any) (Settings, error) {
	var c Settings
	if raw == nil {
		return c, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return c, err
	}
	var nested struct {
		Tinylisp *Settings `json:"tinylisp"`
	}
	if err := json.Unmarshal(b, &nested); err == nil && nested.Tinylisp != nil {
		return *nested.Tinylisp, nil
	}
	err = json.Unmarshal(b, &c)
	return c, err
}

// applySettings validates c and makes it current.  Invalid settings leave
// the current ones in place.
func (s *Server) applySettings(c Settings) error {
	analyzers, err := lint.SelectAnalyzers(c.Checks)
	if err != nil {
		return err
	}
	for name, rule := range c.IndentRules {
		if _, _, err := formatter.ParseIndentRule(name + "=" + rule); err != nil {
			return err
		}
	}
	s.settingsMu.Lock()
	s.config = c
	if !s.fixedLinter {
		s.linter = &lint.Linter{
			Analyzers:  analyzers,
			Builtins:   s.builtins,
			Severities: c.Severities,
		}
	}
	s.settingsMu.Unlock()
	s.log.WithField("checks", len(analyzers)).Debug("settings applied")
	return nil
}

func (s *Server) settings() Settings {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	return s.config
}

func (s *Server) currentLinter() *lint.Linter {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	return s.linter
}

// formatConfig returns a formatter configuration reflecting the current
// settings.
func (s *Server) formatConfig() *formatter.Config {
	c := s.settings()
	cfg := formatter.DefaultConfig()
	if c.hasIndentSize() {
		cfg.IndentSize = c.IndentSize
	}
	for name, rule := range c.IndentRules {
		if _, r, err := formatter.ParseIndentRule(name + "=" + rule); err == nil {
			cfg.Rules[name] = r
		}
	}
	return cfg
}

// workspaceDidChangeConfiguration applies new settings and republishes
// diagnostics for every open document.
func (s *Server) workspaceDidChangeConfiguration(ctx *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	s.captureNotify(ctx)
	c, err := decodeSettings(params.Settings)
	if err == nil {
		err = s.applySettings(c)
	}
	if err != nil {
		s.log.WithError(err).Warn("ignoring settings")
		s.sendNotification(protocol.ServerWindowShowMessage, &protocol.ShowMessageParams{
			Type:    protocol.MessageTypeWarning,
			Message: fmt.Sprintf("%s: ignoring settings: %v", serverName, err),
		})
		return nil
	}
	for _, doc := range s.docs.All() {
		s.analyzeAndPublish(doc)
	}
	return nil
}
