package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/condkit/cond/internal/diag"
	"github.com/condkit/cond/internal/dispatch"
	"github.com/condkit/cond/internal/expand"
	"github.com/condkit/cond/internal/extractor"
	"github.com/condkit/cond/internal/rewrite"
	"github.com/condkit/cond/internal/scanner"
	"github.com/condkit/cond/internal/stream"
	"github.com/condkit/cond/internal/validate"
)

// maxExpandPasses bounds nested-directive expansion; each pass rewrites the
// outermost sites and rescans for the ones they contained.
const maxExpandPasses = 10

type Options struct {
	RepoRoot   string
	ReportPath string
	RepoName   string
	CommitHash string
	Check      bool
	Debug      bool
}

type Pipeline struct {
	Reader    scanner.SourceReader
	Extractor *extractor.ASTExtractor
	Passes    []validate.Pass
	Writer    *rewrite.Writer
	Diag      *diag.Printer
}

func New(reader scanner.SourceReader, ex *extractor.ASTExtractor, passes []validate.Pass, w *rewrite.Writer, dp *diag.Printer) *Pipeline {
	return &Pipeline{Reader: reader, Extractor: ex, Passes: passes, Writer: w, Diag: dp}
}

func (p *Pipeline) Run(ctx context.Context, opts Options) error {
	// list & build in-memory tree
	units, err := p.Reader.List()
	if err != nil {
		return err
	}
	repo := &dispatch.RepoNode{
		Root:  opts.RepoRoot,
		Files: p.Extractor.Extract(units),
	}

	// validation passes: any diagnostic rejects the whole run
	if ds := validate.Run(ctx, p.Passes, repo); len(ds) > 0 {
		p.Diag.Print(ds)
		return fmt.Errorf("%d diagnostic(s)", len(ds))
	}

	recs := dispatch.ToRecords(repo, opts.RepoName, opts.CommitHash, func(f *dispatch.FileNode, s *dispatch.SiteNode) string {
		return f.Unit.Slice(s.Call.Pos(), s.Call.End())
	})

	if opts.Check {
		return p.check(opts.ReportPath, recs)
	}

	// expand every file before writing any: a diagnostic surfacing late
	// (nested sites included) must leave the whole tree untouched
	type expanded struct {
		f       *dispatch.FileNode
		src     string
		changed bool
	}
	results := make([]expanded, 0, len(repo.Files))
	for _, f := range repo.Files {
		src, changed, err := p.expandFile(ctx, f, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", f.RelPath, err)
		}
		results = append(results, expanded{f, src, changed})
	}
	for _, r := range results {
		if err := p.Writer.Output(r.f.Unit.Filename, r.f.RelPath, r.src, r.changed); err != nil {
			return err
		}
	}

	if opts.ReportPath != "" {
		je := stream.NewJSONLEmitter[dispatch.Record](opts.ReportPath, nil, true)
		if err := je.Emit(recs); err != nil {
			return err
		}
		if opts.Debug {
			log.Printf("report: %d site(s), run %s", len(recs), je.RunID())
		}
	}
	return nil
}

// expandFile rewrites one file to a fixed point: expand the outermost sites,
// rescan the result, repeat while nested sites keep surfacing.
func (p *Pipeline) expandFile(ctx context.Context, f *dispatch.FileNode, opts Options) (string, bool, error) {
	unit := f.Unit
	sites := f.Sites
	changed := false

	for pass := 0; pass < maxExpandPasses; pass++ {
		texts := make(map[*dispatch.SiteNode]string, len(sites))
		for _, s := range sites {
			if s.Variadic {
				if opts.Debug {
					log.Printf("%s:%d: dynamic clause list, left to the runtime path", f.RelPath, s.StartLine)
				}
				continue
			}
			texts[s] = expand.Site(unit, s)
		}
		if len(texts) == 0 {
			return unit.Src, changed, nil
		}

		src, err := rewrite.Apply(unit, sites, texts, p.Extractor.ImportPath)
		if err != nil {
			return "", false, err
		}
		changed = true

		unit, err = scanner.UnitFromSource(unit.Filename, f.RelPath, src)
		if err != nil {
			return "", false, err
		}

		nested := p.Extractor.Extract([]scanner.FileUnit{unit})
		if len(nested) == 0 {
			return unit.Src, changed, nil
		}
		// nested sites went through no pass yet
		mini := &dispatch.RepoNode{Root: opts.RepoRoot, Files: nested}
		if ds := validate.Run(ctx, p.Passes, mini); len(ds) > 0 {
			p.Diag.Print(ds)
			return "", false, fmt.Errorf("%d diagnostic(s) in nested clauses", len(ds))
		}
		sites = nested[0].Sites
	}
	return "", false, errors.New("directive nesting too deep")
}

// check compares the current tree against a previous report and fails on any
// drift: a site that moved, changed, appeared, or disappeared.
func (p *Pipeline) check(reportPath string, current []dispatch.Record) error {
	if reportPath == "" {
		return errors.New("-check needs -report")
	}
	jr, err := stream.NewJSONLReader[dispatch.Record](reportPath, nil)
	if err != nil {
		return err
	}
	defer jr.Close()

	prior, err := jr.ReadAll()
	if err != nil {
		return err
	}

	// multiset keyed by path+line+digest: identical call text in two places
	// is two distinct sites
	key := func(r dispatch.Record) string {
		return fmt.Sprintf("%s:%d:%s", r.Path, r.Line, r.Digest)
	}
	seen := make(map[string]int, len(prior))
	for _, r := range prior {
		seen[key(r)]++
	}
	var drift []string
	for _, r := range current {
		k := key(r)
		if seen[k] == 0 {
			drift = append(drift, fmt.Sprintf("%s:%d: site not in report", r.Path, r.Line))
			continue
		}
		seen[k]--
	}
	for _, r := range prior {
		if k := key(r); seen[k] > 0 {
			seen[k]--
			drift = append(drift, fmt.Sprintf("%s:%d: reported site no longer present", r.Path, r.Line))
		}
	}
	if len(drift) > 0 {
		for _, d := range drift {
			log.Println(d)
		}
		return fmt.Errorf("report drift: %d difference(s)", len(drift))
	}
	return nil
}
