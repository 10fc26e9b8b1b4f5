// Package rewrite splices expansions back into source files.
package rewrite

import (
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/condkit/cond/internal/dispatch"
	"github.com/condkit/cond/internal/scanner"
)

// Apply replaces every expanded site in the unit's source and returns the
// formatted result. texts maps a site to its replacement; sites missing from
// the map (variadic, left to the runtime path) keep their original text.
// When no directive reference remains, the cond import is dropped.
func Apply(u scanner.FileUnit, sites []*dispatch.SiteNode, texts map[*dispatch.SiteNode]string, importPath string) (string, error) {
	spliced := splice(u, sites, texts)
	return tidy(u.Filename, spliced, importPath)
}

func splice(u scanner.FileUnit, sites []*dispatch.SiteNode, texts map[*dispatch.SiteNode]string) string {
	// back to front so earlier offsets stay valid
	ordered := make([]*dispatch.SiteNode, 0, len(sites))
	for _, s := range sites {
		if _, ok := texts[s]; ok {
			ordered = append(ordered, s)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Call.Pos() > ordered[j].Call.Pos()
	})

	src := u.Src
	for _, s := range ordered {
		start := u.Offset(s.Call.Pos())
		end := u.Offset(s.Call.End())
		src = src[:start] + texts[s] + src[end:]
	}
	return src
}

// tidy formats the spliced source and removes the cond import when nothing
// uses it anymore.
func tidy(filename, src, importPath string) (string, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return "", fmt.Errorf("expansion produced invalid Go: %w", err)
	}

	if !astutil.UsesImport(f, importPath) && hasImport(f, importPath) {
		astutil.DeleteImport(fset, f, importPath)
		var b strings.Builder
		if err := format.Node(&b, fset, f); err != nil {
			return "", err
		}
		return b.String(), nil
	}

	out, err := format.Source([]byte(src))
	if err != nil {
		return "", fmt.Errorf("formatting expanded source: %w", err)
	}
	return string(out), nil
}

func hasImport(f *ast.File, path string) bool {
	for _, imp := range f.Imports {
		if p, err := strconv.Unquote(imp.Path.Value); err == nil && p == path {
			return true
		}
	}
	return false
}
