// Package validate holds the ordered checks a clause list must pass before
// expansion. Failures are compile-time rejections: the pipeline prints them
// and exits without touching any file.
package validate

import (
	"context"
	"go/token"

	"github.com/condkit/cond/internal/diag"
	"github.com/condkit/cond/internal/dispatch"
)

type Pass interface {
	Name() string
	Check(ctx context.Context, repo *dispatch.RepoNode) []diag.Diagnostic
}

// DefaultPasses returns the standard pass sequence in checking order.
func DefaultPasses() []Pass {
	return []Pass{
		ShapePass{},
		DefaultPlacementPass{},
		TotalityPass{},
		TypePass{},
	}
}

// Run executes passes in order and collects every diagnostic.
func Run(ctx context.Context, passes []Pass, repo *dispatch.RepoNode) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, p := range passes {
		out = append(out, p.Check(ctx, repo)...)
	}
	return out
}

func at(f *dispatch.FileNode, pos token.Pos, msg string) diag.Diagnostic {
	p := f.Unit.Fset.PositionFor(pos, true)
	return diag.Diagnostic{Path: f.RelPath, Line: p.Line, Col: p.Column, Msg: msg}
}

// ShapePass surfaces arguments the extractor could not parse as clauses.
type ShapePass struct{}

func (ShapePass) Name() string { return "shape" }

func (ShapePass) Check(_ context.Context, repo *dispatch.RepoNode) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range repo.Files {
		for _, s := range f.Sites {
			for _, b := range s.Bad {
				out = append(out, at(f, b.Pos, b.Msg))
			}
		}
	}
	return out
}

// DefaultPlacementPass rejects a second default clause and a default that is
// not the last clause.
type DefaultPlacementPass struct{}

func (DefaultPlacementPass) Name() string { return "default-placement" }

func (DefaultPlacementPass) Check(_ context.Context, repo *dispatch.RepoNode) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range repo.Files {
		for _, s := range f.Sites {
			seen := false
			for i, c := range s.Clauses {
				if !c.Default {
					continue
				}
				if seen {
					out = append(out, at(f, c.Pos, "duplicate default clause"))
					continue
				}
				seen = true
				if i != len(s.Clauses)-1 {
					out = append(out, at(f, c.Pos, "default clause must be last"))
				}
			}
		}
	}
	return out
}

// TotalityPass requires a default on every value-producing Dispatch. The
// runtime form falls back to the zero value, but generated code must cover
// the no-match case explicitly.
type TotalityPass struct{}

func (TotalityPass) Name() string { return "totality" }

func (TotalityPass) Check(_ context.Context, repo *dispatch.RepoNode) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range repo.Files {
		for _, s := range f.Sites {
			if s.Kind != dispatch.KindValued || s.Variadic {
				continue
			}
			if s.DefaultClause() == nil {
				out = append(out, at(f, s.Call.Pos(), "value-producing Dispatch needs a Default clause"))
			}
		}
	}
	return out
}
