// Command condgen expands cond.Dispatch / cond.Do call sites into plain
// conditional ladders, ahead of compilation. Like gofmt it prints rewritten
// files to stdout unless -w or -l is given.
//
// Typical use, from a go:generate line or CI:
//
//	condgen -repo . -report condgen.jsonl > /dev/null  # snapshot directive sites
//	condgen -repo . -check -report condgen.jsonl       # CI: fail if sites drifted
//	condgen -repo . -w                                 # expand in place
//
// -check compares the directives still present in the source against the
// snapshot, so it pairs with the non-write flow; after -w the sites are gone
// and there is nothing left to compare.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/condkit/cond/internal/config"
	"github.com/condkit/cond/internal/diag"
	"github.com/condkit/cond/internal/extractor"
	"github.com/condkit/cond/internal/gitutil"
	"github.com/condkit/cond/internal/pipeline"
	"github.com/condkit/cond/internal/rewrite"
	"github.com/condkit/cond/internal/scanner"
	"github.com/condkit/cond/internal/utils"
	"github.com/condkit/cond/internal/validate"
)

func main() {
	var (
		repoRoot   = flag.String("repo", "", "Path to repo root (default \".\", or the config file's repo)")
		excludeCSV = flag.String("exclude", "", "Comma-separated regex to exclude paths (overrides config)")
		commitRef  = flag.String("commit", "", "Commit hash/ref (report metadata only)")

		write = flag.Bool("w", false, "Write expanded files in place instead of printing to stdout")
		list  = flag.Bool("l", false, "List files whose expansion differs from the source")

		reportPath = flag.String("report", "", "Path to JSONL expansion report (optional)")
		check      = flag.Bool("check", false, "Compare sites against an existing -report and fail on drift")

		configPath = flag.String("config", "", "Path to YAML config file (optional)")
		debug      = flag.Bool("debug", false, "Verbose logging")
	)
	flag.Parse()

	log.SetFlags(0)
	if *debug {
		log.SetPrefix("[DEBUG] ")
	}

	cfg, err := config.Load(*configPath)
	utils.MustNotErr(err)
	if *repoRoot == "" {
		*repoRoot = cfg.Repo
	}
	if *excludeCSV == "" {
		*excludeCSV = cfg.ExcludeCSV()
	}
	if *reportPath == "" {
		*reportPath = cfg.Report
	}
	if cfg.Write && !*list {
		*write = true
	}

	reader := scanner.NewGoPackagesReader(*repoRoot, *excludeCSV, *debug)

	pl := pipeline.New(
		reader,
		extractor.NewASTExtractor(),
		validate.DefaultPasses(),
		rewrite.NewWriter(*write, *list),
		diag.NewPrinter(os.Stderr),
	)

	opts := pipeline.Options{
		RepoRoot:   *repoRoot,
		ReportPath: *reportPath,
		RepoName:   gitutil.InferRepoName(*repoRoot),
		CommitHash: gitutil.ResolveCommit(*repoRoot, *commitRef),
		Check:      *check,
		Debug:      *debug,
	}

	if err := pl.Run(context.Background(), opts); err != nil {
		log.Fatalf("condgen: %v", err)
	}
}
