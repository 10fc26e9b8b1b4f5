package extractor

import (
	"testing"

	"github.com/condkit/cond/internal/dispatch"
	"github.com/condkit/cond/internal/scanner"
)

func parse(t *testing.T, src string) scanner.FileUnit {
	t.Helper()
	u, err := scanner.UnitFromSource("demo.go", "demo.go", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return u
}

func extract(t *testing.T, src string) []*dispatch.FileNode {
	t.Helper()
	return NewASTExtractor().Extract([]scanner.FileUnit{parse(t, src)})
}

func TestExtractDispatchSite(t *testing.T) {
	files := extract(t, `package demo

import "github.com/condkit/cond"

func classify(a, b int) string {
	return cond.Dispatch(
		cond.When(func() bool { return a < b }, func() string { return "less" }),
		cond.When(func() bool { return a > b }, func() string { return "greater" }),
		cond.Default(func() string { return "equal" }),
	)
}
`)
	if len(files) != 1 {
		t.Fatalf("got %d files with sites, want 1", len(files))
	}
	sites := files[0].Sites
	if len(sites) != 1 {
		t.Fatalf("got %d sites, want 1", len(sites))
	}
	s := sites[0]
	if s.Kind != dispatch.KindValued {
		t.Errorf("Kind = %q, want %q", s.Kind, dispatch.KindValued)
	}
	if len(s.Clauses) != 3 {
		t.Fatalf("got %d clauses, want 3", len(s.Clauses))
	}
	for i, c := range s.Clauses[:2] {
		if c.Default || c.Cond == nil {
			t.Errorf("clause %d: want conditional clause", i)
		}
	}
	if !s.Clauses[2].Default {
		t.Error("clause 2: want default clause")
	}
	if len(s.Bad) != 0 {
		t.Errorf("unexpected bad args: %v", s.Bad)
	}
}

func TestExtractHonorsImportAlias(t *testing.T) {
	files := extract(t, `package demo

import cc "github.com/condkit/cond"

func f(a int) int {
	return cc.Dispatch(
		cc.When(func() bool { return a > 0 }, func() int { return 1 }),
		cc.Default(func() int { return 0 }),
	)
}
`)
	if len(files) != 1 || len(files[0].Sites) != 1 {
		t.Fatalf("aliased import: site not found")
	}
}

func TestExtractIgnoresUnrelatedPackages(t *testing.T) {
	files := extract(t, `package demo

import "example.com/other/cond"

func f(a int) int {
	return cond.Dispatch(cond.When(nil, nil))
}
`)
	if len(files) != 0 {
		t.Fatalf("matched a foreign cond package")
	}
}

func TestExtractDoStatementPosition(t *testing.T) {
	files := extract(t, `package demo

import "github.com/condkit/cond"

func act(a int) {
	cond.Do(
		cond.If(func() bool { return a > 0 }, func() { println("pos") }),
		cond.Otherwise(func() { println("non-pos") }),
	)
	defer cond.Do(
		cond.If(func() bool { return a < 0 }, func() { println("neg") }),
	)
}
`)
	if len(files) != 1 {
		t.Fatal("no sites found")
	}
	sites := files[0].Sites
	if len(sites) != 2 {
		t.Fatalf("got %d sites, want 2", len(sites))
	}
	if !sites[0].StmtPos {
		t.Error("bare Do call: want StmtPos=true")
	}
	if sites[1].StmtPos {
		t.Error("deferred Do call: want StmtPos=false")
	}
	for _, s := range sites {
		if s.Kind != dispatch.KindUnit {
			t.Errorf("Kind = %q, want %q", s.Kind, dispatch.KindUnit)
		}
	}
}

// Only the outermost of nested sites is reported; the inner one belongs to
// the next expansion pass.
func TestExtractSkipsNestedSites(t *testing.T) {
	files := extract(t, `package demo

import "github.com/condkit/cond"

func f(a int) string {
	return cond.Dispatch(
		cond.When(func() bool { return a > 0 }, func() string {
			return cond.Dispatch(
				cond.When(func() bool { return a > 10 }, func() string { return "big" }),
				cond.Default(func() string { return "small" }),
			)
		}),
		cond.Default(func() string { return "non-pos" }),
	)
}
`)
	if len(files) != 1 || len(files[0].Sites) != 1 {
		t.Fatalf("want exactly the outermost site")
	}
}

func TestExtractVariadicSite(t *testing.T) {
	files := extract(t, `package demo

import "github.com/condkit/cond"

func f(cs []cond.Clause[int]) int {
	return cond.Dispatch(cs...)
}
`)
	if len(files) != 1 || len(files[0].Sites) != 1 {
		t.Fatal("variadic site not found")
	}
	if !files[0].Sites[0].Variadic {
		t.Error("want Variadic=true")
	}
}

func TestExtractExplicitTypeArgument(t *testing.T) {
	files := extract(t, `package demo

import "github.com/condkit/cond"

func f(a int) string {
	return cond.Dispatch[string](
		cond.When(func() bool { return a > 0 }, mkResult),
		cond.Default(mkDefault),
	)
}
`)
	if len(files) != 1 || len(files[0].Sites) != 1 {
		t.Fatal("instantiated site not found")
	}
	if files[0].Sites[0].TypeArg == nil {
		t.Error("want TypeArg recorded")
	}
}

func TestExtractBadArgs(t *testing.T) {
	tests := []struct {
		name string
		call string
	}{
		{"non-clause argument", `cond.Dispatch(42, cond.Default(func() int { return 0 }))`},
		{"wrong constructor", `cond.Dispatch(cond.If(nil, nil), cond.Default(func() int { return 0 }))`},
		{"when arity", `cond.Dispatch(cond.When(func() bool { return true }), cond.Default(func() int { return 0 }))`},
		{"default arity", `cond.Dispatch(cond.When(func() bool { return true }, func() int { return 1 }), cond.Default())`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := extract(t, `package demo

import "github.com/condkit/cond"

func f() int {
	return `+tt.call+`
}
`)
			if len(files) != 1 || len(files[0].Sites) != 1 {
				t.Fatal("site not found")
			}
			if len(files[0].Sites[0].Bad) == 0 {
				t.Error("want at least one bad arg")
			}
		})
	}
}

func TestExtractSkipsGeneratedFiles(t *testing.T) {
	files := extract(t, `// Code generated by condgen. DO NOT EDIT.

package demo

import "github.com/condkit/cond"

func f(a int) {
	cond.Do(cond.If(func() bool { return a > 0 }, func() {}))
}
`)
	if len(files) != 0 {
		t.Fatal("generated file should be skipped")
	}
}
