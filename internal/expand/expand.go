// Package expand holds the rewrite rule: one directive call site becomes an
// equivalent first-match conditional ladder. Clause order is preserved
// exactly, each condition appears once, and skipped clauses never reach the
// generated code path.
package expand

import (
	"go/ast"
	"strings"

	"github.com/condkit/cond/internal/dispatch"
	"github.com/condkit/cond/internal/scanner"
)

// Site renders the Go source replacing the directive call.
//
// A valued site becomes an immediately invoked func literal:
//
//	func() T {
//		if c1 {
//			return r1
//		}
//		return rDefault
//	}()
//
// A unit site in statement position becomes a bare if/else-if ladder; in any
// other position (defer, go) it becomes an immediately invoked func literal
// around the same ladder. The output is unindented; the caller formats the
// whole file after splicing.
//
// The site must have passed validation: a valued site carries a default
// clause and a resolved result type.
func Site(u scanner.FileUnit, s *dispatch.SiteNode) string {
	if s.Kind == dispatch.KindValued {
		return valued(u, s)
	}
	if s.StmtPos {
		return unitLadder(u, s)
	}
	body := unitLadder(u, s)
	if body == "" {
		return "func() {}()"
	}
	return "func() {\n" + body + "\n}()"
}

func valued(u scanner.FileUnit, s *dispatch.SiteNode) string {
	var b strings.Builder
	b.WriteString("func() ")
	b.WriteString(s.ResultType)
	b.WriteString(" {\n")
	for _, c := range s.Conditionals() {
		b.WriteString("if ")
		b.WriteString(condText(u, c.Cond))
		b.WriteString(" {\n")
		b.WriteString(valuedBranch(u, c.Result))
		b.WriteString("\n}\n")
	}
	def := s.DefaultClause()
	b.WriteString(valuedBranch(u, def.Result))
	b.WriteString("\n}()")
	return b.String()
}

func unitLadder(u scanner.FileUnit, s *dispatch.SiteNode) string {
	conds := s.Conditionals()
	def := s.DefaultClause()

	if len(conds) == 0 {
		if def == nil {
			return ""
		}
		return "{\n" + unitBranch(u, def.Result) + "\n}"
	}

	var b strings.Builder
	for i, c := range conds {
		if i > 0 {
			b.WriteString(" else ")
		}
		b.WriteString("if ")
		b.WriteString(condText(u, c.Cond))
		b.WriteString(" {\n")
		b.WriteString(unitBranch(u, c.Result))
		b.WriteString("\n}")
	}
	if def != nil {
		b.WriteString(" else {\n")
		b.WriteString(unitBranch(u, def.Result))
		b.WriteString("\n}")
	}
	return b.String()
}

// condText inlines a condition thunk. A single-return func literal collapses
// to its bare expression; anything else stays a callable and gets invoked.
func condText(u scanner.FileUnit, e ast.Expr) string {
	var txt string
	if ret, ok := singleReturn(e); ok {
		txt = u.Slice(ret.Pos(), ret.End())
	} else {
		txt = u.Slice(e.Pos(), e.End()) + "()"
	}
	// a composite literal at the top level of an if-condition is a parse
	// error; parenthesize whenever braces appear
	if strings.Contains(txt, "{") {
		return "(" + txt + ")"
	}
	return txt
}

// valuedBranch renders the statements of one value-producing branch.
func valuedBranch(u scanner.FileUnit, e ast.Expr) string {
	if ret, ok := singleReturn(e); ok {
		return "return " + u.Slice(ret.Pos(), ret.End())
	}
	if fl, ok := e.(*ast.FuncLit); ok {
		// returns inside the body leave the generated func literal, exactly
		// as they left the thunk
		return blockText(u, fl)
	}
	return "return " + u.Slice(e.Pos(), e.End()) + "()"
}

// unitBranch renders the statements of one side-effect branch. Thunk bodies
// inline only when hoisting them cannot change meaning: a return or defer
// inside the body is scoped to the thunk and must keep its closure.
func unitBranch(u scanner.FileUnit, e ast.Expr) string {
	if fl, ok := e.(*ast.FuncLit); ok && safeToHoist(fl) {
		body := blockText(u, fl)
		if body == "" {
			// empty thunk, nothing to run
			return ""
		}
		return body
	}
	return u.Slice(e.Pos(), e.End()) + "()"
}

// singleReturn matches func literals of the form func() T { return expr }.
func singleReturn(e ast.Expr) (ast.Expr, bool) {
	fl, ok := e.(*ast.FuncLit)
	if !ok || len(fl.Body.List) != 1 {
		return nil, false
	}
	ret, ok := fl.Body.List[0].(*ast.ReturnStmt)
	if !ok || len(ret.Results) != 1 {
		return nil, false
	}
	return ret.Results[0], true
}

// blockText slices a func literal's body without its braces.
func blockText(u scanner.FileUnit, fl *ast.FuncLit) string {
	inner := u.Slice(fl.Body.Lbrace+1, fl.Body.Rbrace)
	return strings.TrimSpace(inner)
}

// safeToHoist reports whether a thunk body can be inlined into the enclosing
// function: no return or defer at its own level (nested func literals keep
// theirs and do not count).
func safeToHoist(fl *ast.FuncLit) bool {
	safe := true
	ast.Inspect(fl.Body, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.ReturnStmt, *ast.DeferStmt:
			safe = false
			return false
		}
		return safe
	})
	return safe
}
