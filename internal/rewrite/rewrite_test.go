package rewrite

import (
	"context"
	"strings"
	"testing"

	"github.com/condkit/cond/internal/dispatch"
	"github.com/condkit/cond/internal/expand"
	"github.com/condkit/cond/internal/extractor"
	"github.com/condkit/cond/internal/scanner"
	"github.com/condkit/cond/internal/validate"
)

const condPath = extractor.CondImportPath

// expandAll runs the extract-validate-expand-apply path over one file.
func expandAll(t *testing.T, src string) string {
	t.Helper()
	u, err := scanner.UnitFromSource("demo.go", "demo.go", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	files := extractor.NewASTExtractor().Extract([]scanner.FileUnit{u})
	if len(files) != 1 {
		t.Fatalf("fixture has no sites")
	}
	repo := &dispatch.RepoNode{Root: ".", Files: files}
	if ds := validate.Run(context.Background(), validate.DefaultPasses(), repo); len(ds) != 0 {
		t.Fatalf("fixture does not validate: %v", ds)
	}

	texts := make(map[*dispatch.SiteNode]string)
	for _, s := range files[0].Sites {
		if s.Variadic {
			continue
		}
		texts[s] = expand.Site(u, s)
	}
	out, err := Apply(u, files[0].Sites, texts, condPath)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return out
}

func TestApplyRewritesAndPrunesImport(t *testing.T) {
	out := expandAll(t, `package demo

import "github.com/condkit/cond"

func classify(a, b int) string {
	return cond.Dispatch(
		cond.When(func() bool { return a < b }, func() string { return "less" }),
		cond.When(func() bool { return a > b }, func() string { return "greater" }),
		cond.Default(func() string { return "equal" }),
	)
}
`)
	if strings.Contains(out, "cond.Dispatch") {
		t.Errorf("directive call survived the rewrite:\n%s", out)
	}
	if strings.Contains(out, condPath) {
		t.Errorf("unused cond import not pruned:\n%s", out)
	}
	for _, want := range []string{"if a < b", `return "less"`, `return "equal"`} {
		if !strings.Contains(out, want) {
			t.Errorf("rewritten file missing %q:\n%s", want, out)
		}
	}
}

// A second scan over the rewritten source must find nothing: expansion is
// idempotent.
func TestApplyIdempotent(t *testing.T) {
	out := expandAll(t, `package demo

import "github.com/condkit/cond"

func act(a int) {
	cond.Do(
		cond.If(func() bool { return a > 0 }, func() { println("pos") }),
		cond.Otherwise(func() { println("non-pos") }),
	)
}
`)
	u, err := scanner.UnitFromSource("demo.go", "demo.go", out)
	if err != nil {
		t.Fatalf("rewritten source does not parse: %v\n%s", err, out)
	}
	if files := extractor.NewASTExtractor().Extract([]scanner.FileUnit{u}); len(files) != 0 {
		t.Errorf("rewritten source still has %d site-bearing file(s):\n%s", len(files), out)
	}
}

// Variadic sites stay on the runtime path, so the import must survive.
func TestApplyKeepsImportForRuntimeSites(t *testing.T) {
	out := expandAll(t, `package demo

import "github.com/condkit/cond"

func f(a int, cs []cond.Clause[int]) int {
	if a > 0 {
		return cond.Dispatch(cs...)
	}
	return cond.Dispatch(
		cond.When(func() bool { return a < 0 }, func() int { return -1 }),
		cond.Default(func() int { return 0 }),
	)
}
`)
	if !strings.Contains(out, condPath) {
		t.Errorf("import needed by the variadic site was pruned:\n%s", out)
	}
	if !strings.Contains(out, "cond.Dispatch(cs...)") {
		t.Errorf("variadic site should be untouched:\n%s", out)
	}
	if strings.Contains(out, "cond.When") {
		t.Errorf("static site should be expanded:\n%s", out)
	}
}

func TestApplyPreservesSurroundingCode(t *testing.T) {
	out := expandAll(t, `package demo

import (
	"fmt"

	"github.com/condkit/cond"
)

// classify compares a and b.
func classify(a, b int) string {
	fmt.Println("comparing")
	return cond.Dispatch(
		cond.When(func() bool { return a < b }, func() string { return "less" }),
		cond.Default(func() string { return "other" }),
	)
}
`)
	for _, want := range []string{`"fmt"`, `fmt.Println("comparing")`, "// classify compares a and b."} {
		if !strings.Contains(out, want) {
			t.Errorf("rewrite lost surrounding code %q:\n%s", want, out)
		}
	}
}
