package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"aircheck/internal/content"
	"aircheck/internal/fileutil"
	"aircheck/internal/paths"
)

// Counts tallies pass/fail outcomes for one grouping.
type Counts struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Summary aggregates the canonical audit state of a batch. It is
// recomputed from the verdict files on disk, so rerunning after a
// partial batch always reflects reality rather than stale totals.
type Summary struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Audited     int                `json:"audited"`
	Passed      int                `json:"passed"`
	Failed      int                `json:"failed"`
	ByType      map[string]*Counts `json:"by_type"`
	ByDJ        map[string]*Counts `json:"by_dj"`
	// TopIssues counts flagged criteria across every verdict, so a
	// recurring problem (say, scripts running long) stands out.
	TopIssues map[string]int `json:"top_issues,omitempty"`
	Failing   []string       `json:"failing,omitempty"`
}

// BuildSummary walks the verdict history of every item and tallies
// canonical outcomes. Items with no verdicts yet are not counted.
func BuildSummary(resolver *paths.Resolver, items []content.WorkItem) (Summary, error) {
	summary := Summary{
		GeneratedAt: time.Now().UTC(),
		ByType:      map[string]*Counts{},
		ByDJ:        map[string]*Counts{},
	}
	for _, item := range items {
		verdicts, err := History(resolver, item)
		if err != nil {
			return Summary{}, fmt.Errorf("summarizing %s: %w", item.Key(), err)
		}
		if len(verdicts) == 0 {
			continue
		}
		passed := false
		for _, verdict := range verdicts {
			if verdict.Passed {
				passed = true
			}
			for _, issue := range verdict.Issues {
				if summary.TopIssues == nil {
					summary.TopIssues = map[string]int{}
				}
				summary.TopIssues[issue.Criterion]++
			}
		}
		summary.Audited++
		typeCounts := counts(summary.ByType, string(item.Type))
		djCounts := counts(summary.ByDJ, item.DJ)
		if passed {
			summary.Passed++
			typeCounts.Passed++
			djCounts.Passed++
		} else {
			summary.Failed++
			typeCounts.Failed++
			djCounts.Failed++
			summary.Failing = append(summary.Failing, item.Key())
		}
	}
	return summary, nil
}

// WriteSummary persists the summary next to the verdict tree.
func WriteSummary(resolver *paths.Resolver, summary Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return fileutil.WriteFileAtomic(resolver.SummaryPath(), data, 0o644)
}

func counts(m map[string]*Counts, key string) *Counts {
	if c, ok := m[key]; ok {
		return c
	}
	c := &Counts{}
	m[key] = c
	return c
}
