package extract

import (
	"fmt"
	"log/slog"

	"github.com/dejo1307/swiftdecl/internal/syntax"
)

// ContractViolation is the panic value raised when an extractor is driven
// with a subtree it was not built for: a root of the wrong kind, a second
// top-level declaration, or a reused instance. It signals a bug in the
// caller, never malformed source, and library code does not recover it.
type ContractViolation struct {
	Expected string      // Kind the extractor was built for
	Found    syntax.Kind // Node kind that triggered the violation
	Name     string      // Declaration name, when known
	Line     int
	Reason   string
}

func (v *ContractViolation) Error() string {
	msg := fmt.Sprintf("extract: usage contract violation: %s (extractor for %s, found %s", v.Reason, v.Expected, v.Found)
	if v.Name != "" {
		msg += fmt.Sprintf(" %q", v.Name)
	}
	if v.Line > 0 {
		msg += fmt.Sprintf(" at line %d", v.Line)
	}
	return msg + ")"
}

// ConsistencyViolation describes a syntax shape that a correct front end
// should never produce, such as a property with both an initializer and an
// accessor requirement. Extraction continues with a best-effort record.
type ConsistencyViolation struct {
	Subject string // Name of the affected declaration
	Line    int
	Reason  string
	Text    string // Source text of the offending node
}

func (v *ConsistencyViolation) Error() string {
	return fmt.Sprintf("extract: consistency violation in %q at line %d: %s", v.Subject, v.Line, v.Reason)
}

// Reporter receives consistency violations.
type Reporter func(*ConsistencyViolation)

// LogReporter returns a Reporter that logs each violation as a warning.
func LogReporter(logger *slog.Logger) Reporter {
	return func(v *ConsistencyViolation) {
		logger.Warn("consistency violation",
			"subject", v.Subject,
			"line", v.Line,
			"reason", v.Reason,
		)
	}
}

// Collector accumulates violations; useful in tests and for attaching
// violations to a file's diagnostics.
type Collector struct {
	Violations []*ConsistencyViolation
}

// Report implements Reporter.
func (c *Collector) Report(v *ConsistencyViolation) {
	c.Violations = append(c.Violations, v)
}

type options struct {
	reporter Reporter
	file     string
}

// Option configures an extractor.
type Option func(*options)

// WithReporter sets the consistency-violation callback. The default logs to
// slog.Default.
func WithReporter(r Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

// WithFile records the source path on every declaration.
func WithFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.reporter == nil {
		o.reporter = LogReporter(slog.Default().With("component", "extract"))
	}
	return o
}
