package types

import (
	"fmt"
	"slices"
	"strings"
)

// Severity grades a diagnostic. Lower values are more severe.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// ParseSeverity maps a severity name back to its value.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(name) {
	case "error":
		return SeverityError, nil
	case "warning":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	}
	return 0, fmt.Errorf("unknown severity %q", name)
}

// Diagnostic codes for syntax problems found in a tree.
const (
	DiagUnexpected   = "syntax-unexpected"
	DiagMissing      = "syntax-missing"
	DiagErrorNode    = "syntax-error"
	DiagEmptyProgram = "empty-input"
)

// AllDiagnosticCodes returns every code with its default severity.
func AllDiagnosticCodes() []DiagCodeInfo {
	return []DiagCodeInfo{
		{Code: DiagUnexpected, Severity: SeverityError},
		{Code: DiagMissing, Severity: SeverityError},
		{Code: DiagErrorNode, Severity: SeverityError},
		{Code: DiagEmptyProgram, Severity: SeverityInfo},
	}
}

// DiagCodeInfo describes a diagnostic code and its default severity.
type DiagCodeInfo struct {
	Code     string
	Severity Severity
}

// Diagnostic is one problem found in a syntax tree.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Source   string // file name, empty for stdin
	Line     int    // 1-based
	Column   int    // 1-based, in code units
	Start    uint32 // code-unit offsets
	End      uint32
}

// String returns "[severity] source:line:col: message (code)", with the
// source prefix omitted when empty.
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(d.Severity.String())
	b.WriteString("] ")
	if d.Source != "" {
		b.WriteString(d.Source)
		b.WriteByte(':')
	}
	if d.Line > 0 {
		fmt.Fprintf(&b, "%d:%d: ", d.Line, d.Column)
	} else if d.Source != "" {
		b.WriteByte(' ')
	}
	b.WriteString(d.Message)
	b.WriteString(" (")
	b.WriteString(d.Code)
	b.WriteByte(')')
	return b.String()
}

// DiagnosticConfig controls which diagnostics are reported and which fail
// a run.
type DiagnosticConfig struct {
	// Level suppresses diagnostics less severe than it.
	Level Severity

	// FailAt is the threshold at or above which a diagnostic fails the run.
	FailAt Severity

	// Overrides change the severity of specific codes.
	Overrides map[string]Severity

	// Ignore lists codes to suppress entirely. Supports a leading or
	// trailing * (e.g. "syntax-*").
	Ignore []string
}

// DefaultConfig reports warnings and errors and fails on errors.
func DefaultConfig() DiagnosticConfig {
	return DiagnosticConfig{
		Level:  SeverityWarning,
		FailAt: SeverityError,
	}
}

// Severity returns the effective severity of code.
func (c DiagnosticConfig) Severity(code string, sev Severity) Severity {
	if override, ok := c.Overrides[code]; ok {
		return override
	}
	return sev
}

// ShouldReport reports whether a diagnostic with the given code and
// severity passes the filters.
func (c DiagnosticConfig) ShouldReport(code string, sev Severity) bool {
	if slices.ContainsFunc(c.Ignore, func(pattern string) bool {
		return MatchGlob(pattern, code)
	}) {
		return false
	}
	return c.Severity(code, sev) <= c.Level
}

// ShouldFail reports whether a diagnostic with the given severity fails
// the run.
func (c DiagnosticConfig) ShouldFail(sev Severity) bool {
	return sev <= c.FailAt
}

// Filter applies the overrides and filters to diags.
func (c DiagnosticConfig) Filter(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if !c.ShouldReport(d.Code, d.Severity) {
			continue
		}
		d.Severity = c.Severity(d.Code, d.Severity)
		out = append(out, d)
	}
	return out
}

// MatchGlob performs simple glob matching with * wildcard.
func MatchGlob(pattern, s string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(s, prefix)
	}
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok {
		return strings.HasSuffix(s, suffix)
	}
	return pattern == s
}
