package validate

import (
	"context"
	"go/ast"
	"go/types"
	"strconv"

	"github.com/condkit/cond/internal/diag"
	"github.com/condkit/cond/internal/dispatch"
)

// TypePass resolves the rendered Go type the expanded ladder returns, for
// valued sites. Resolution order:
//
//  1. an explicit type argument, cond.Dispatch[T](...), copied verbatim;
//  2. the declared return type of any result func literal in the clause list;
//  3. go/types info from the initial package load.
//
// A site whose type cannot be named in its own file is rejected.
type TypePass struct{}

func (TypePass) Name() string { return "result-type" }

func (TypePass) Check(_ context.Context, repo *dispatch.RepoNode) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range repo.Files {
		for _, s := range f.Sites {
			if s.Kind != dispatch.KindValued || s.Variadic {
				continue
			}

			if s.TypeArg != nil {
				s.ResultType = f.Unit.Slice(s.TypeArg.Pos(), s.TypeArg.End())
				continue
			}
			if t := literalResultType(f, s); t != "" {
				s.ResultType = t
				continue
			}
			if t := checkedResultType(f, s); t != "" {
				s.ResultType = t
				continue
			}
			msg := "cannot determine the Dispatch result type; add an explicit type argument: Dispatch[T](...)"
			if f.Unit.TypesInfo == nil {
				msg = "cannot determine the Dispatch result type; nested sites are rescanned without type information, so spell a result thunk as a func literal or add an explicit type argument: Dispatch[T](...)"
			}
			out = append(out, at(f, s.Call.Pos(), msg))
		}
	}
	return out
}

// literalResultType reads the return type off the first result thunk written
// as a func literal. The host type checker guarantees all thunks agree.
func literalResultType(f *dispatch.FileNode, s *dispatch.SiteNode) string {
	for _, c := range s.Clauses {
		fl, ok := c.Result.(*ast.FuncLit)
		if !ok {
			continue
		}
		res := fl.Type.Results
		if res == nil || len(res.List) != 1 {
			continue
		}
		return f.Unit.Slice(res.List[0].Type.Pos(), res.List[0].Type.End())
	}
	return ""
}

// checkedResultType names the call's type via go/types, qualified with the
// file's own import names. Empty when types info is absent or the type is
// not nameable in this file.
func checkedResultType(f *dispatch.FileNode, s *dispatch.SiteNode) string {
	info := f.Unit.TypesInfo
	if info == nil {
		return ""
	}
	tv, ok := info.Types[ast.Expr(s.Call)]
	if !ok || tv.Type == nil {
		return ""
	}

	names := importNames(f.Unit.File)
	nameable := true
	qual := func(p *types.Package) string {
		if f.Unit.Pkg != nil && p == f.Unit.Pkg {
			return ""
		}
		if n, ok := names[p.Path()]; ok {
			return n
		}
		nameable = false
		return p.Name()
	}
	t := types.TypeString(tv.Type, qual)
	if !nameable {
		return ""
	}
	return t
}

func importNames(f *ast.File) map[string]string {
	out := make(map[string]string, len(f.Imports))
	for _, imp := range f.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		if imp.Name != nil {
			out[p] = imp.Name.Name
			continue
		}
		out[p] = pathBase(p)
	}
	return out
}

func pathBase(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}
