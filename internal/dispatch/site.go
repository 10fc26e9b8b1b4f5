package dispatch

import (
	"go/ast"
	"go/token"

	"github.com/condkit/cond/internal/scanner"
)

// Kind identifies which directive a site invokes.
type Kind string

const (
	KindValued Kind = "dispatch" // cond.Dispatch: value-producing, default required
	KindUnit   Kind = "do"       // cond.Do: statement-shaped, default optional
)

// Clause is one parsed directive argument: cond.When / cond.If carry a
// condition and a result thunk, cond.Default / cond.Otherwise only a result.
type Clause struct {
	Cond    ast.Expr // nil for a default clause
	Result  ast.Expr
	Default bool
	Pos     token.Pos
}

type RepoNode struct {
	Root  string
	Files []*FileNode
}

type FileNode struct {
	RelPath string
	Unit    scanner.FileUnit
	Sites   []*SiteNode
}

// BadArg is a directive argument that is not a recognizable clause.
type BadArg struct {
	Pos token.Pos
	Msg string
}

// SiteNode is a single directive call site awaiting expansion.
type SiteNode struct {
	Kind    Kind
	Call    *ast.CallExpr
	Clauses []Clause
	Bad     []BadArg

	// TypeArg is the explicit instantiation type of cond.Dispatch[T], if the
	// call spells one out.
	TypeArg ast.Expr

	// StmtPos reports whether the call is its own statement; a unit site in
	// statement position expands to a bare if-ladder instead of a func literal.
	StmtPos bool

	// Variadic marks `clauses...` spread calls, which cannot be expanded
	// statically and are left to the runtime path.
	Variadic bool

	StartLine int
	EndLine   int

	// ResultType is the rendered Go type of the ladder, set by the
	// type-resolution pass for valued sites.
	ResultType string
}

// DefaultClause returns the site's default clause, if any.
func (s *SiteNode) DefaultClause() *Clause {
	for i := range s.Clauses {
		if s.Clauses[i].Default {
			return &s.Clauses[i]
		}
	}
	return nil
}

// Conditionals returns the non-default clauses in source order.
func (s *SiteNode) Conditionals() []Clause {
	out := make([]Clause, 0, len(s.Clauses))
	for _, c := range s.Clauses {
		if !c.Default {
			out = append(out, c)
		}
	}
	return out
}
