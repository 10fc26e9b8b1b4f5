package dispatch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Record is one expansion site in the JSONL report.
type Record struct {
	Repo       string `json:"repo"`
	Commit     string `json:"commit"`
	Path       string `json:"path"`
	Line       int    `json:"line"`
	Kind       Kind   `json:"kind"`
	Clauses    int    `json:"clauses"`
	HasDefault bool   `json:"default"`
	Digest     string `json:"digest"`
}

func (r Record) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// Digest fingerprints a site's original call text for drift detection.
func Digest(callText string) string {
	sum := sha256.Sum256([]byte(callText))
	return hex.EncodeToString(sum[:])[:12]
}

// ToRecords flattens a repo tree into report records.
// callText maps each site to its original source slice.
func ToRecords(repo *RepoNode, repoName, commitHash string, callText func(*FileNode, *SiteNode) string) []Record {
	var out []Record
	for _, f := range repo.Files {
		for _, s := range f.Sites {
			out = append(out, Record{
				Repo:       repoName,
				Commit:     commitHash,
				Path:       f.RelPath,
				Line:       s.StartLine,
				Kind:       s.Kind,
				Clauses:    len(s.Clauses),
				HasDefault: s.DefaultClause() != nil,
				Digest:     Digest(callText(f, s)),
			})
		}
	}

	// Stable order: path asc, line asc
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path == out[j].Path {
			return out[i].Line < out[j].Line
		}
		return out[i].Path < out[j].Path
	})
	return out
}
