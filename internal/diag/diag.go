// Package diag collects and formats compile diagnostics. Every incident
// is reported as a single line, "error:<line>: <message>", and the
// aggregate count decides whether the compiler's output file is written
// at all.
package diag

import "fmt"

// Sink accumulates diagnostics for one compilation.
type Sink struct {
	errs []error
}

// NewSink creates an empty Sink.
func NewSink() *Sink { return &Sink{} }

// Errorf records a diagnostic at the given source line.
func (s *Sink) Errorf(line int, format string, args ...interface{}) {
	s.errs = append(s.errs, fmt.Errorf("error:%d: %s", line, fmt.Sprintf(format, args...)))
}

// Count returns the number of diagnostics recorded so far.
func (s *Sink) Count() int { return len(s.errs) }

// Lines renders each diagnostic as its own "error:<line>: <message>"
// line, in the order they were recorded.
func (s *Sink) Lines() []string {
	lines := make([]string, len(s.errs))
	for i, e := range s.errs {
		lines[i] = e.Error()
	}
	return lines
}

// Summary renders the aggregate "<N> error(s) generated" line. It is
// meaningless (and not printed) when Count() == 0.
func (s *Sink) Summary() string {
	return fmt.Sprintf("%d error(s) generated", s.Count())
}
