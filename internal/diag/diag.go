// Package diag implements the diagnostic sink external collaborator from
// spec §6.4: a fire-and-forget error/warning reporter with running totals,
// kept separate from the core's type system and from Go's own error type
// (see SPEC_FULL.md's AMBIENT STACK / Error handling section).
package diag

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Sink is the narrow external collaborator spec §6.4 describes. The core
// (scanner, parser, symbol table) depends only on this interface, never on
// a concrete rendering.
type Sink interface {
	ReportError(message string, line int)
	ReportWarning(message string, line int)
}

// Discard is a Sink that drops every report. Useful for tests that only
// care about structural output, mirroring a //dev/null diagnostic sink.
type Discard struct{}

func (Discard) ReportError(string, int)   {}
func (Discard) ReportWarning(string, int) {}

// Entry records one reported diagnostic for later rendering.
type Entry struct {
	Message  string
	Line     int
	HasLine  bool
	Severity Severity
}

// Severity distinguishes errors from warnings, per spec §7's taxonomy.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Collector is the concrete Sink used by the CLI driver: it renders each
// diagnostic with source-line-and-caret context (grounded on the teacher's
// internal/errors.CompilerError.Format) and keeps running error/warning
// counts, mirroring original_source/src/errhandler.cpp's reportError/
// reportWarning counters.
type Collector struct {
	Source string // full program text, for source-line extraction
	Color  bool

	entries  []Entry
	errors   int
	warnings int
	log      *logrus.Logger
}

// NewCollector creates a Collector over source text. log may be nil, in
// which case a logger that discards everything is used — diagnostics are
// still recorded and rendered via Report/Format regardless of logging.
func NewCollector(source string, color bool, log *logrus.Logger) *Collector {
	if log == nil {
		log = logrus.New()
		log.SetOutput(discardWriter{})
	}
	return &Collector{Source: source, Color: color, log: log}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func (c *Collector) ReportError(message string, line int) {
	c.errors++
	c.entries = append(c.entries, Entry{Message: message, Line: line, HasLine: line > 0, Severity: SeverityError})
	c.log.WithFields(logrus.Fields{"line": line, "severity": "error"}).Debug(message)
}

func (c *Collector) ReportWarning(message string, line int) {
	c.warnings++
	c.entries = append(c.entries, Entry{Message: message, Line: line, HasLine: line > 0, Severity: SeverityWarning})
	c.log.WithFields(logrus.Fields{"line": line, "severity": "warning"}).Debug(message)
}

// ErrorCount and WarningCount expose the running totals spec §6.4 requires.
func (c *Collector) ErrorCount() int   { return c.errors }
func (c *Collector) WarningCount() int { return c.warnings }
func (c *Collector) HasErrors() bool   { return c.errors > 0 }
func (c *Collector) Entries() []Entry  { return c.entries }

// sourceLine extracts the 1-indexed line from c.Source, or "" if out of
// range (e.g. a pre-token error with no line yet).
func (c *Collector) sourceLine(n int) string {
	if c.Source == "" || n < 1 {
		return ""
	}
	lines := strings.Split(c.Source, "\n")
	if n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// Format renders one diagnostic the way internal/errors.CompilerError.Format
// did in the teacher: a header line, the offending source line, and a caret.
// Since this language does not track columns (spec §1 Non-goals), the caret
// always points at the start of the line.
func (e Entry) Format(c *Collector) string {
	var b strings.Builder
	label := strings.ToUpper(e.Severity.String()[:1]) + e.Severity.String()[1:]
	if e.HasLine {
		fmt.Fprintf(&b, "%s at line %d\n", label, e.Line)
	} else {
		fmt.Fprintf(&b, "%s\n", label)
	}

	if src := c.sourceLine(e.Line); src != "" {
		prefix := fmt.Sprintf("%4d | ", e.Line)
		b.WriteString(prefix)
		b.WriteString(src)
		b.WriteString("\n")
		b.WriteString(strings.Repeat(" ", len(prefix)))
		if c.Color {
			b.WriteString("\033[1;31m")
		}
		b.WriteString("^")
		if c.Color {
			b.WriteString("\033[0m")
		}
		b.WriteString("\n")
	}

	if c.Color {
		b.WriteString("\033[1m")
	}
	b.WriteString(e.Message)
	if c.Color {
		b.WriteString("\033[0m")
	}
	return b.String()
}

// FormatAll renders every recorded diagnostic as a multi-error report: a
// header line with the error and warning totals, then each entry numbered
// "[N of M]". A single diagnostic is rendered alone, without that framing.
func (c *Collector) FormatAll() string {
	if len(c.entries) == 0 {
		return ""
	}
	if len(c.entries) == 1 {
		return c.entries[0].Format(c)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "compilation produced %d error(s) and %d warning(s):\n\n", c.errors, c.warnings)
	for i, e := range c.entries {
		fmt.Fprintf(&b, "[%d of %d]\n", i+1, len(c.entries))
		b.WriteString(e.Format(c))
		if i < len(c.entries)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}
