package scanner

import (
	"go/ast"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const crlfSource = "package demo\r\n\r\nfunc f() int {\r\n\treturn 1\r\n}\r\n"

func sliceFuncDecl(t *testing.T, u FileUnit) string {
	t.Helper()
	var fd *ast.FuncDecl
	ast.Inspect(u.File, func(n ast.Node) bool {
		if d, ok := n.(*ast.FuncDecl); ok {
			fd = d
			return false
		}
		return true
	})
	if fd == nil {
		t.Fatal("no func decl in fixture")
	}
	return u.Slice(fd.Pos(), fd.End())
}

// Slice must return the exact decl text even on CRLF files: Src and the
// fset's offsets have to index the same bytes.
func TestListKeepsSourceOffsetsAligned(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module demo\n\ngo 1.21\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "demo.go"), []byte(crlfSource), 0o644); err != nil {
		t.Fatal(err)
	}

	units, err := NewGoPackagesReader(dir, "", false).List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var unit *FileUnit
	for i := range units {
		if units[i].RelPath == "demo.go" {
			unit = &units[i]
		}
	}
	if unit == nil {
		t.Fatalf("demo.go not listed, got %d unit(s)", len(units))
	}

	got := sliceFuncDecl(t, *unit)
	if !strings.HasPrefix(got, "func f() int") {
		t.Errorf("Slice start misaligned: %q", got)
	}
	if !strings.Contains(got, "return 1") {
		t.Errorf("Slice body misaligned: %q", got)
	}
}

func TestUnitFromSourceOffsetsAligned(t *testing.T) {
	u, err := UnitFromSource("demo.go", "demo.go", crlfSource)
	if err != nil {
		t.Fatalf("UnitFromSource: %v", err)
	}
	got := sliceFuncDecl(t, u)
	if !strings.HasPrefix(got, "func f() int") || !strings.Contains(got, "return 1") {
		t.Errorf("Slice misaligned: %q", got)
	}
}
