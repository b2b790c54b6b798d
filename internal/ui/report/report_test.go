package report

import (
	"architect/internal/core/errors"
	"architect/internal/core/ports"
	"architect/internal/engine/graph"
	"architect/internal/engine/parser"
	"architect/internal/engine/rules"
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func countBlocks(out string) int {
	return strings.Count(out, "✖ architect::")
}

func TestReporter_ViolationBlock(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.Violation(rules.Violation{
		Kind:     rules.KindForbiddenImport,
		Path:     "src/user.controller.ts",
		Location: parser.Location{File: "src/user.controller.ts", Line: 3, Column: 19},
		Span:     parser.Span{Start: 40, End: 59},
		Snippet:  "import { Repo } from './user.repository';",
		Message:  "MVC: repositories may not be imported in controllers",
	})

	out := buf.String()
	assert.Equal(t, 1, countBlocks(out))
	assert.Contains(t, out, "architect::forbidden_import")
	assert.Contains(t, out, "src/user.controller.ts:3:19")
	assert.Contains(t, out, "3 | import { Repo } from './user.repository';")
	assert.Contains(t, out, strings.Repeat(" ", 18)+strings.Repeat("^", 19)+" MVC: repositories")
}

func TestReporter_CaretClampedToLine(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.Violation(rules.Violation{
		Kind:       rules.KindMethodTooLong,
		Location:   parser.Location{File: "a.ts", Line: 10, Column: 3},
		Span:       parser.Span{Start: 0, End: 5000},
		Snippet:    "  run() {",
		Message:    "method too long (80 lines), maximum 40",
		MethodName: "run",
		ClassName:  "Job",
	})

	out := buf.String()
	assert.Contains(t, out, "  ^^^^^^^ method too long (80 lines), maximum 40: Job.run")
}

func TestReporter_ParseFailure(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	located := errors.Wrap(&parser.ParseError{
		Path:     "b.ts",
		Location: parser.Location{File: "b.ts", Line: 2, Column: 7},
		Span:     parser.Span{Start: 10, End: 11},
		Snippet:  "const = ;",
		Reason:   "syntax error",
	}, errors.CodeParseFailure, "syntax error")
	r.ParseFailure("b.ts", located)
	r.ParseFailure("c.ts", fmt.Errorf("permission denied"))

	out := buf.String()
	assert.Equal(t, 2, countBlocks(out))
	assert.Contains(t, out, "b.ts:2:7")
	assert.Contains(t, out, "      ^ syntax error")
	assert.Contains(t, out, "--> c.ts")
	assert.Contains(t, out, "= permission denied")
}

func TestReporter_Cycles(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	path := []string{"a.ts", "b.ts", "a.ts"}
	r.Cycles([]graph.Cycle{{Path: path, Description: graph.FormatCycleDescription(path)}})

	out := buf.String()
	assert.Contains(t, out, "Found 1 cycle(s)")
	assert.Contains(t, out, "Cycle #1")
	assert.Contains(t, out, "a.ts ↑ (closes the cycle)")
	assert.Contains(t, out, "a.ts → b.ts")
	assert.Contains(t, out, "Suggested fixes:")

	buf.Reset()
	r.Cycles(nil)
	assert.Contains(t, buf.String(), "No circular dependencies detected.")
}

func TestReporter_Summary(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.Summary(ports.Summary{Files: 12, Violations: 2, ParseFailures: 1, Cycles: 1, Warnings: 1, Duration: 1500 * time.Millisecond})
	out := buf.String()
	assert.Contains(t, out, "12 files checked in 1.5s: 2 violation(s) (1 parse failure(s)), 1 cycle(s), 1 warning(s)")
	assert.Contains(t, out, "Architecture checks failed")
	assert.Equal(t, 0, countBlocks(out))

	buf.Reset()
	r.Summary(ports.Summary{Files: 3, Passed: true})
	assert.Contains(t, buf.String(), "Architecture checks passed")

	buf.Reset()
	r.Summary(ports.Summary{Passed: true})
	assert.Contains(t, buf.String(), "No source files found")
}

func TestReporter_ConcurrentBlocksDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Violation(rules.Violation{
				Kind:     rules.KindForbiddenImport,
				Location: parser.Location{File: fmt.Sprintf("f%d.ts", i), Line: 1, Column: 1},
				Snippet:  "import x from './x';",
				Message:  "forbidden",
			})
		}(i)
	}
	wg.Wait()

	blocks := strings.Split(strings.TrimSpace(buf.String()), "\n\n")
	assert.Len(t, blocks, 50)
	for _, b := range blocks {
		assert.True(t, strings.HasPrefix(b, "✖ architect::forbidden_import"), "block %q", b)
	}
}
