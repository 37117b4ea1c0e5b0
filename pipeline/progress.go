package pipeline

import (
	"fmt"
	"io"
	"os"
)

// Progress prints the fixed stdout markers downstream tooling parses.
// Informational logs go to stderr through the logging package; stdout
// carries only these markers and the final JSON summary line.
type Progress struct {
	out io.Writer
}

// NewProgress reports to stdout.
func NewProgress() *Progress {
	return &Progress{out: os.Stdout}
}

// NewProgressTo reports to the given writer, for tests.
func NewProgressTo(w io.Writer) *Progress {
	return &Progress{out: w}
}

// Step reports a step with its completion percentage.
func (p *Progress) Step(step string, pct int) {
	fmt.Fprintf(p.out, "📊 %s... (%d%%)\n", step, pct)
}

// Done reports a completed milestone.
func (p *Progress) Done(msg string) {
	fmt.Fprintf(p.out, "✅ %s\n", msg)
}

// Failed reports a failed step with its reason.
func (p *Progress) Failed(step, reason string) {
	fmt.Fprintf(p.out, "❌ %s failed: %s\n", step, reason)
}

// Final prints the final JSON summary line.
func (p *Progress) Final(jsonLine []byte) {
	fmt.Fprintln(p.out, string(jsonLine))
}
