package extractor

import (
	"go/ast"
	"regexp"
	"strconv"
	"strings"

	"github.com/condkit/cond/internal/dispatch"
	"github.com/condkit/cond/internal/scanner"
	"github.com/condkit/cond/internal/utils"
)

// CondImportPath is the package whose Dispatch/Do calls get expanded.
const CondImportPath = "github.com/condkit/cond"

var genCodeRe = regexp.MustCompile(`(?i)^\s*//\s*Code generated`)

type Extractor interface {
	Extract(units []scanner.FileUnit) []*dispatch.FileNode
}

// ASTExtractor locates directive call sites in parsed files. Only the
// outermost site of any nesting is reported; inner sites surface on the next
// expansion pass, after the outer call has been rewritten.
type ASTExtractor struct {
	ImportPath string
}

func NewASTExtractor() *ASTExtractor {
	return &ASTExtractor{ImportPath: CondImportPath}
}

func (e *ASTExtractor) Extract(units []scanner.FileUnit) []*dispatch.FileNode {
	out := make([]*dispatch.FileNode, 0, len(units))
	for _, fu := range units {
		sites := e.extractSites(fu)
		if len(sites) == 0 {
			continue
		}
		out = append(out, &dispatch.FileNode{
			RelPath: fu.RelPath,
			Unit:    fu,
			Sites:   sites,
		})
	}
	return out
}

func (e *ASTExtractor) extractSites(u scanner.FileUnit) (out []*dispatch.SiteNode) {
	// Skip generated (first 5 lines)
	headLines := strings.Split(u.Src, "\n")
	head := strings.Join(headLines[:utils.Min(5, len(headLines))], "\n")
	if genCodeRe.MatchString(head) {
		return nil
	}

	pkgName, ok := localImportName(u.File, e.ImportPath)
	if !ok {
		return nil
	}

	stmtCalls := statementCalls(u.File)

	ast.Inspect(u.File, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		kind, typeArg, ok := directiveKind(call, pkgName)
		if !ok {
			return true
		}

		site := &dispatch.SiteNode{
			Kind:      kind,
			Call:      call,
			TypeArg:   typeArg,
			StmtPos:   stmtCalls[call],
			Variadic:  call.Ellipsis.IsValid(),
			StartLine: u.Line(call.Pos()),
			EndLine:   u.Line(call.End()),
		}
		if !site.Variadic {
			parseClauses(site, call, pkgName)
		}
		out = append(out, site)

		// do not descend: nested sites belong to a later pass
		return false
	})
	return out
}

// directiveKind matches cond.Dispatch / cond.Do, unwrapping an explicit
// instantiation like cond.Dispatch[string].
func directiveKind(call *ast.CallExpr, pkgName string) (dispatch.Kind, ast.Expr, bool) {
	fun := call.Fun
	var typeArg ast.Expr
	if ix, ok := fun.(*ast.IndexExpr); ok {
		fun = ix.X
		typeArg = ix.Index
	}
	sel, ok := fun.(*ast.SelectorExpr)
	if !ok {
		return "", nil, false
	}
	id, ok := sel.X.(*ast.Ident)
	if !ok || id.Name != pkgName {
		return "", nil, false
	}
	switch sel.Sel.Name {
	case "Dispatch":
		return dispatch.KindValued, typeArg, true
	case "Do":
		return dispatch.KindUnit, typeArg, true
	}
	return "", nil, false
}

func parseClauses(site *dispatch.SiteNode, call *ast.CallExpr, pkgName string) {
	when, deflt := "When", "Default"
	if site.Kind == dispatch.KindUnit {
		when, deflt = "If", "Otherwise"
	}

	for _, arg := range call.Args {
		cc, ok := arg.(*ast.CallExpr)
		if !ok {
			site.Bad = append(site.Bad, dispatch.BadArg{
				Pos: arg.Pos(),
				Msg: "clause must be " + pkgName + "." + when + "(...) or " + pkgName + "." + deflt + "(...)",
			})
			continue
		}
		name, ok := clauseName(cc, pkgName)
		if !ok {
			site.Bad = append(site.Bad, dispatch.BadArg{
				Pos: arg.Pos(),
				Msg: "clause must be " + pkgName + "." + when + "(...) or " + pkgName + "." + deflt + "(...)",
			})
			continue
		}
		switch name {
		case when:
			if len(cc.Args) != 2 {
				site.Bad = append(site.Bad, dispatch.BadArg{
					Pos: cc.Pos(),
					Msg: pkgName + "." + when + " needs a condition and a result, got " + strconv.Itoa(len(cc.Args)) + " argument(s)",
				})
				continue
			}
			site.Clauses = append(site.Clauses, dispatch.Clause{
				Cond:   cc.Args[0],
				Result: cc.Args[1],
				Pos:    cc.Pos(),
			})
		case deflt:
			if len(cc.Args) != 1 {
				site.Bad = append(site.Bad, dispatch.BadArg{
					Pos: cc.Pos(),
					Msg: pkgName + "." + deflt + " takes exactly one result, got " + strconv.Itoa(len(cc.Args)) + " argument(s)",
				})
				continue
			}
			site.Clauses = append(site.Clauses, dispatch.Clause{
				Result:  cc.Args[0],
				Default: true,
				Pos:     cc.Pos(),
			})
		default:
			site.Bad = append(site.Bad, dispatch.BadArg{
				Pos: cc.Pos(),
				Msg: pkgName + "." + name + " is not a clause; expected " + when + " or " + deflt,
			})
		}
	}
}

func clauseName(call *ast.CallExpr, pkgName string) (string, bool) {
	fun := call.Fun
	if ix, ok := fun.(*ast.IndexExpr); ok {
		fun = ix.X
	}
	sel, ok := fun.(*ast.SelectorExpr)
	if !ok {
		return "", false
	}
	id, ok := sel.X.(*ast.Ident)
	if !ok || id.Name != pkgName {
		return "", false
	}
	return sel.Sel.Name, true
}

// localImportName resolves what the file calls the cond package.
func localImportName(f *ast.File, path string) (string, bool) {
	for _, imp := range f.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil || p != path {
			continue
		}
		if imp.Name != nil {
			if imp.Name.Name == "_" || imp.Name.Name == "." {
				return "", false
			}
			return imp.Name.Name, true
		}
		return "cond", true
	}
	return "", false
}

// statementCalls collects calls that form a statement on their own; a unit
// site in that position expands to a bare if-ladder.
func statementCalls(f *ast.File) map[*ast.CallExpr]bool {
	out := make(map[*ast.CallExpr]bool)
	ast.Inspect(f, func(n ast.Node) bool {
		if es, ok := n.(*ast.ExprStmt); ok {
			if call, ok := es.X.(*ast.CallExpr); ok {
				out[call] = true
			}
		}
		return true
	})
	return out
}
