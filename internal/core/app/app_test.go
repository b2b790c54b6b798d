package app

import (
	"architect/internal/core/errors"
	"architect/internal/core/ports"
	"architect/internal/engine/discovery"
	"architect/internal/engine/graph"
	"architect/internal/engine/parser"
	"architect/internal/engine/rules"
	"architect/internal/ui/report"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func newScanner(t *testing.T) *discovery.Scanner {
	t.Helper()
	s, err := discovery.NewScanner(parser.NewParser(nil).SupportedExtensions(), discovery.DefaultExcludeDirs, nil)
	require.NoError(t, err)
	return s
}

type countingProgress struct {
	total     int
	increment atomic.Int64
	finished  bool
}

func (p *countingProgress) Start(total int) { p.total = total }
func (p *countingProgress) Increment()      { p.increment.Add(1) }
func (p *countingProgress) Finish()         { p.finished = true }

type memoryHistory struct {
	mu   sync.Mutex
	runs []ports.RunRecord
}

func (m *memoryHistory) SaveRun(_ context.Context, run ports.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryHistory) ListRuns(_ context.Context, _ string, _ int) ([]ports.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.RunRecord(nil), m.runs...), nil
}

func newApp(t *testing.T, root string, ctx *rules.Context, out *bytes.Buffer, extra func(*Options)) *App {
	t.Helper()
	opts := Options{
		Root:       root,
		Rules:      ctx,
		Extractor:  parser.NewParser(nil),
		Discoverer: newScanner(t),
		Reporter:   report.New(out),
		Workers:    4,
	}
	if extra != nil {
		extra(&opts)
	}
	a, err := New(opts)
	require.NoError(t, err)
	return a
}

func countBlocks(out string) int {
	return strings.Count(out, "✖ architect::")
}

func TestRun_CleanProjectPasses(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/app.ts":          "import { UserService } from './user.service';\nexport class App {}\n",
		"src/user.service.ts": "export class UserService {\n  find() {\n    return 1;\n  }\n}\n",
		"package.json":        `{"dependencies": {}}`,
	})

	var out bytes.Buffer
	history := &memoryHistory{}
	progress := &countingProgress{}
	a := newApp(t, root, rules.NewContext(40, nil, rules.FirstOnly), &out, func(o *Options) {
		o.History = history
		o.Progress = progress
		o.Project = "demo"
	})

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode())
	assert.Equal(t, 2, result.Files)
	assert.Equal(t, 0, countBlocks(out.String()))
	assert.Contains(t, out.String(), "Architecture checks passed")

	assert.Equal(t, 2, progress.total)
	assert.EqualValues(t, 2, progress.increment.Load())
	assert.True(t, progress.finished)

	require.Len(t, history.runs, 1)
	assert.Equal(t, "demo", history.runs[0].Project)
	assert.True(t, history.runs[0].Passed)
	assert.NotEmpty(t, history.runs[0].ID)
}

func TestRun_OneForbiddenImportFails(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/user.controller.ts": "import { UserRepository } from './user.repository';\nexport class UserController {}\n",
		"src/user.repository.ts": "export class UserRepository {}\n",
	})

	var out bytes.Buffer
	a := newApp(t, root, rules.NewContext(40, nil, rules.FirstOnly), &out, nil)

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExitCode())
	assert.Equal(t, 1, result.Violations)
	assert.Empty(t, result.Cycles)
	assert.Equal(t, 1, countBlocks(out.String()))
	assert.Contains(t, out.String(), "MVC: repositories may not be imported in controllers")
}

func TestRun_CycleFails(t *testing.T) {
	root := writeProject(t, map[string]string{
		"a.ts": "import { B } from './b';\nexport class A {}\n",
		"b.ts": "import { C } from './c';\nexport class B {}\n",
		"c.ts": "import { A } from './a';\nexport class C {}\n",
	})

	var out bytes.Buffer
	a := newApp(t, root, rules.NewContext(40, nil, rules.FirstOnly), &out, nil)

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Violations)
	require.NotEmpty(t, result.Cycles)
	assert.Equal(t, 1, result.ExitCode())

	want := [][2]string{{"a.ts", "b.ts"}, {"b.ts", "c.ts"}, {"c.ts", "a.ts"}}
	assert.ElementsMatch(t, want, result.Cycles[0].Edges())
	assert.Contains(t, out.String(), "CIRCULAR DEPENDENCIES DETECTED")

	require.NotNil(t, result.Graph)
	assert.Equal(t, 3, result.Graph.NodeCount())
	assert.Equal(t, 3, result.Graph.EdgeCount())
}

func TestRun_ParseFailureCountsAndWarns(t *testing.T) {
	root := writeProject(t, map[string]string{
		"ok.ts":     "import { X } from './broken';\nexport class Ok {}\n",
		"broken.ts": "export class {\n  const = ;\n",
	})

	var out bytes.Buffer
	a := newApp(t, root, rules.NewContext(40, nil, rules.FirstOnly), &out, nil)

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Violations)
	assert.Equal(t, 1, result.ParseFailures)
	require.Len(t, result.Warnings, 1)
	assert.True(t, errors.IsCode(result.Warnings[0].Err, errors.CodeGraphBuildWarning))
	assert.Equal(t, 1, result.ExitCode())
	assert.Contains(t, out.String(), "architect::parse_failure")
	assert.Contains(t, out.String(), "warning:")
}

func TestRun_EmptyProjectPasses(t *testing.T) {
	root := writeProject(t, map[string]string{"README.md": "# nothing"})

	var out bytes.Buffer
	a := newApp(t, root, rules.NewContext(40, nil, rules.FirstOnly), &out, nil)

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode())
	assert.Contains(t, out.String(), "No source files found")
}

func TestRun_DiscoveryErrorIsReturned(t *testing.T) {
	var out bytes.Buffer
	a := newApp(t, filepath.Join(t.TempDir(), "missing"), rules.NewContext(40, nil, rules.FirstOnly), &out, nil)

	_, err := a.Run(context.Background())
	assert.Error(t, err)
}

func longMethod(name string, lines int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s() {\n", name)
	for i := 0; i < lines-1; i++ {
		b.WriteString("    console.log(1);\n")
	}
	b.WriteString("  }\n")
	return b.String()
}

func TestAnalyze_PolicyControlsCount(t *testing.T) {
	src := "import { R } from './x.repository';\nclass Big {\n" +
		longMethod("a", 10) + longMethod("b", 10) + "}\n"
	root := writeProject(t, map[string]string{
		"src/big.controller.ts": src,
		"src/x.repository.ts":   "export class R {}\n",
	})
	files, err := newScanner(t).Discover(root)
	require.NoError(t, err)

	var first bytes.Buffer
	res := newApp(t, root, rules.NewContext(5, nil, rules.FirstOnly), &first, nil).Analyze(context.Background(), files)
	assert.Equal(t, 1, res.Violations)
	assert.Equal(t, 1, countBlocks(first.String()))

	var all bytes.Buffer
	res = newApp(t, root, rules.NewContext(5, nil, rules.Exhaustive), &all, nil).Analyze(context.Background(), files)
	assert.Equal(t, 3, res.Violations)
	assert.Equal(t, 3, countBlocks(all.String()))
}

func TestAnalyze_ManyFilesInParallel(t *testing.T) {
	files := make(map[string]string)
	for i := 0; i < 200; i++ {
		content := "export class Ok {}\n"
		if i%10 == 0 {
			content = "import { D } from '../infrastructure/db';\nexport class P {}\n"
		}
		files[fmt.Sprintf("src/presentation/p%03d.ts", i)] = content
	}
	files["src/infrastructure/db.ts"] = "export class D {}\n"
	root := writeProject(t, files)

	ctx := rules.NewContext(40, []rules.ForbiddenRule{{From: "presentation", To: "infrastructure"}}, rules.FirstOnly)
	var out bytes.Buffer
	a := newApp(t, root, ctx, &out, func(o *Options) { o.Workers = 8 })

	result, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 201, result.Files)
	assert.Equal(t, 20, result.Violations)
	assert.Equal(t, 20, countBlocks(out.String()))
	assert.Empty(t, result.Cycles)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root")
	assert.Contains(t, err.Error(), "reporter")
}

func TestResult_Passed(t *testing.T) {
	assert.True(t, Result{}.Passed())
	assert.False(t, Result{Violations: 1}.Passed())
	assert.False(t, Result{Cycles: []graph.Cycle{{Path: []string{"a", "a"}}}}.Passed())
	assert.Equal(t, 1, Result{Violations: 1}.ExitCode())
}
