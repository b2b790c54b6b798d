package report

import (
	"architect/internal/core/ports"
	"architect/internal/engine/graph"
	"architect/internal/engine/parser"
	"architect/internal/engine/rules"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Reporter renders diagnostics to a writer. Each block is written with a
// single Write under a lock, so blocks from concurrent workers never
// interleave mid-block.
type Reporter struct {
	mu     sync.Mutex
	out    io.Writer
	styles styles
}

var _ ports.Reporter = (*Reporter)(nil)

func New(out io.Writer) *Reporter {
	return &Reporter{out: out, styles: newStyles(out)}
}

func (r *Reporter) write(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(r.out, s)
}

func (r *Reporter) Violation(v rules.Violation) {
	label := v.Message
	if v.Kind == rules.KindMethodTooLong && v.MethodName != "" {
		label = fmt.Sprintf("%s: %s.%s", v.Message, v.ClassName, v.MethodName)
	}
	r.write(r.block("architect::"+string(v.Kind), v.Location, v.Path, v.Snippet, v.Span.Len(), label))
}

func (r *Reporter) ParseFailure(path string, err error) {
	var perr *parser.ParseError
	if errors.As(err, &perr) {
		r.write(r.block("architect::parse_failure", perr.Location, path, perr.Snippet, perr.Span.Len(), perr.Reason))
		return
	}
	r.write(r.block("architect::parse_failure", parser.Location{}, path, "", 0, err.Error()))
}

func (r *Reporter) Warning(path string, err error) {
	r.write(fmt.Sprintf("%s %s: imports skipped for the dependency graph (%v)\n",
		r.styles.warning.Render("warning:"), path, err))
}

// block renders one located diagnostic with a caret underline beneath the
// offending source line.
func (r *Reporter) block(code string, loc parser.Location, path, snippet string, spanLen int, label string) string {
	var b strings.Builder
	s := r.styles

	fmt.Fprintf(&b, "%s %s\n", s.error.Render("✖"), s.title.Render(code))

	where := loc.String()
	if loc.File == "" {
		where = path
	}
	fmt.Fprintf(&b, "  %s %s\n", s.gutter.Render("-->"), s.path.Render(where))

	if snippet == "" || loc.Line == 0 {
		fmt.Fprintf(&b, "  %s %s\n\n", s.gutter.Render("="), label)
		return b.String()
	}

	lineNo := strconv.Itoa(loc.Line)
	pad := strings.Repeat(" ", len(lineNo))
	line := strings.ReplaceAll(strings.TrimRight(snippet, "\r\n"), "\t", " ")

	col := loc.Column - 1
	if col < 0 || col > len(line) {
		col = 0
	}
	width := spanLen
	if width <= 0 || col+width > len(line) {
		width = len(line) - col
	}
	if width <= 0 {
		width = 1
	}

	fmt.Fprintf(&b, "  %s %s\n", pad, s.gutter.Render("|"))
	fmt.Fprintf(&b, "  %s %s %s\n", s.gutter.Render(lineNo), s.gutter.Render("|"), line)
	fmt.Fprintf(&b, "  %s %s %s%s %s\n", pad, s.gutter.Render("|"),
		strings.Repeat(" ", col), s.caret.Render(strings.Repeat("^", width)), label)
	fmt.Fprintf(&b, "  %s %s\n\n", pad, s.gutter.Render("|"))
	return b.String()
}

var remediationHints = []string{
	"Inject the dependency instead of importing it directly",
	"Extract the shared logic into a third module",
	"Use events or observers instead of direct calls",
	"Depend on abstractions (dependency inversion principle)",
}

func (r *Reporter) Cycles(cycles []graph.Cycle) {
	s := r.styles
	var b strings.Builder

	if len(cycles) == 0 {
		fmt.Fprintf(&b, "%s No circular dependencies detected.\n", s.success.Render("✔"))
		r.write(b.String())
		return
	}

	fmt.Fprintf(&b, "\n%s\n", s.error.Render("CIRCULAR DEPENDENCIES DETECTED"))
	fmt.Fprintf(&b, "Found %d cycle(s):\n\n", len(cycles))
	rule := strings.Repeat("━", 36)
	for i, c := range cycles {
		fmt.Fprintf(&b, "%s\n%s\n%s\n", s.gutter.Render(rule), s.title.Render(fmt.Sprintf("Cycle #%d", i+1)), s.gutter.Render(rule))
		for j, node := range c.Path {
			if j == len(c.Path)-1 {
				fmt.Fprintf(&b, "  %s ↑ (closes the cycle)\n", s.path.Render(node))
			} else {
				fmt.Fprintf(&b, "  %s →\n", s.path.Render(node))
			}
		}
		fmt.Fprintf(&b, "\n%s\n", c.Description)
	}

	b.WriteString(s.title.Render("Suggested fixes:") + "\n")
	for i, hint := range remediationHints {
		fmt.Fprintf(&b, "  %s\n", s.hint.Render(fmt.Sprintf("%d. %s", i+1, hint)))
	}
	b.WriteString("\n")
	r.write(b.String())
}

func (r *Reporter) Summary(sum ports.Summary) {
	s := r.styles
	if sum.Files == 0 {
		r.write(fmt.Sprintf("%s No source files found; nothing to check.\n", s.success.Render("✔")))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d files checked in %s: %d violation(s)", sum.Files, sum.Duration.Round(time.Millisecond), sum.Violations)
	if sum.ParseFailures > 0 {
		fmt.Fprintf(&b, " (%d parse failure(s))", sum.ParseFailures)
	}
	fmt.Fprintf(&b, ", %d cycle(s)", sum.Cycles)
	if sum.Warnings > 0 {
		fmt.Fprintf(&b, ", %d warning(s)", sum.Warnings)
	}
	b.WriteString("\n")

	if sum.Passed {
		fmt.Fprintf(&b, "%s\n", s.success.Render("✔ Architecture checks passed"))
	} else {
		fmt.Fprintf(&b, "%s\n", s.error.Render("✖ Architecture checks failed"))
	}
	r.write(b.String())
}
