// Copyright © 2024 The ELPS authors

// Package diagnostic defines the diagnostic value shared by the lexer,
// parser and validator, and renders diagnostics as Rust-style annotated
// source snippets for CLI output. It depends only on the position package
// so that every stage of the pipeline can produce diagnostics without
// import cycles.
package diagnostic

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/luthersystems/drl/parser/position"
)

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// MarshalYAML serializes the severity by name.
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info", "information":
		*s = SeverityInformation
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Sources tag which stage produced a diagnostic.
const (
	SourceParser       = "parser"
	SourceSyntax       = "syntax"
	SourceSemantic     = "semantic"
	SourceBestPractice = "best-practice"
	SourceMultiline    = "multiline-pattern"
)

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Range    position.Range `json:"range" yaml:"range"`
	Severity Severity       `json:"severity" yaml:"severity"`
	Message  string         `json:"message" yaml:"message"`
	Source   string         `json:"source" yaml:"source"`
	Code     string         `json:"code,omitempty" yaml:"code,omitempty"`
	Notes    []string       `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// String returns the diagnostic in go vet style: line:col: message (code).
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s: %s", d.Range.Start, d.Severity, d.Message)
	if d.Code != "" {
		s += " (" + d.Code + ")"
	}
	return s
}

// Errorf returns an error diagnostic covering r.
func Errorf(r position.Range, source, code, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Range:    r,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Source:   source,
		Code:     code,
	}
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with severity sev.
func Count(diags []Diagnostic, sev Severity) int {
	n := 0
	for _, d := range diags {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// Sort orders diagnostics by start position, then severity (errors first),
// then source and message, giving a deterministic output order.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		di, dj := diags[i], diags[j]
		if c := di.Range.Start.Compare(dj.Range.Start); c != 0 {
			return c < 0
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Source != dj.Source {
			return di.Source < dj.Source
		}
		return di.Message < dj.Message
	})
}
