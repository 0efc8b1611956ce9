// Package audit judges generated scripts against their content
// policies and keeps a durable verdict history on disk.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"aircheck/internal/content"
	"aircheck/internal/fileutil"
	"aircheck/internal/paths"
)

// Issue is one specific problem found in a script. The problem text is
// fed back into the prompt when the script is rewritten.
type Issue struct {
	Criterion string `json:"criterion"`
	Problem   string `json:"problem"`
}

// Verdict is the outcome of judging one script version.
type Verdict struct {
	Passed bool    `json:"passed"`
	Score  float64 `json:"score"`
	Issues []Issue `json:"issues,omitempty"`
	Notes  string  `json:"notes,omitempty"`
}

// Feedback flattens the verdict's issues into prompt-ready notes.
func (v Verdict) Feedback() []string {
	notes := make([]string, 0, len(v.Issues))
	for _, issue := range v.Issues {
		if issue.Criterion != "" {
			notes = append(notes, fmt.Sprintf("%s: %s", issue.Criterion, issue.Problem))
		} else {
			notes = append(notes, issue.Problem)
		}
	}
	return notes
}

// StoredVerdict is the on-disk verdict document. One file is written
// per judged version and never overwritten, so the full audit history
// of an item survives regeneration.
type StoredVerdict struct {
	Item        string    `json:"item"`
	ContentType string    `json:"content_type"`
	DJ          string    `json:"dj"`
	Version     int       `json:"version"`
	Passed      bool      `json:"passed"`
	Score       float64   `json:"score"`
	Issues      []Issue   `json:"issues,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// WriteVerdict files a verdict under the passed or failed bucket. An
// existing file for the same version is left untouched.
func WriteVerdict(resolver *paths.Resolver, item content.WorkItem, version int, verdict Verdict) error {
	path := resolver.AuditPath(item, version, verdict.Passed)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	stored := StoredVerdict{
		Item:        item.Key(),
		ContentType: string(item.Type),
		DJ:          item.DJ,
		Version:     version,
		Passed:      verdict.Passed,
		Score:       verdict.Score,
		Issues:      verdict.Issues,
		Notes:       verdict.Notes,
		CreatedAt:   time.Now().UTC(),
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding verdict: %w", err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

// History returns every stored verdict for an item, ascending by
// version. Versions judged more than once keep the passing record.
func History(resolver *paths.Resolver, item content.WorkItem) ([]StoredVerdict, error) {
	byVersion := map[int]StoredVerdict{}
	for _, passed := range []bool{false, true} {
		dir := filepath.Dir(resolver.AuditPath(item, 0, passed))
		prefix := fmt.Sprintf("%s_%s_v", item.Folder(), item.DJ)
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", dir, err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
				continue
			}
			version, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json"))
			if err != nil {
				continue
			}
			data, err := os.ReadFile(resolver.AuditPath(item, version, passed))
			if err != nil {
				return nil, fmt.Errorf("reading verdict %s: %w", name, err)
			}
			var stored StoredVerdict
			if err := json.Unmarshal(data, &stored); err != nil {
				return nil, fmt.Errorf("decoding verdict %s: %w", name, err)
			}
			if existing, ok := byVersion[version]; ok && existing.Passed {
				continue
			}
			byVersion[version] = stored
		}
	}
	verdicts := make([]StoredVerdict, 0, len(byVersion))
	for _, stored := range byVersion {
		verdicts = append(verdicts, stored)
	}
	sort.Slice(verdicts, func(i, j int) bool { return verdicts[i].Version < verdicts[j].Version })
	return verdicts, nil
}

// Canonical picks the version audio should be rendered from: the
// latest passing version, or the latest judged version when none
// passed. The boolean reports whether the canonical version passed.
func Canonical(resolver *paths.Resolver, item content.WorkItem) (int, bool, error) {
	verdicts, err := History(resolver, item)
	if err != nil {
		return -1, false, err
	}
	if len(verdicts) == 0 {
		return -1, false, nil
	}
	for i := len(verdicts) - 1; i >= 0; i-- {
		if verdicts[i].Passed {
			return verdicts[i].Version, true, nil
		}
	}
	return verdicts[len(verdicts)-1].Version, false, nil
}
