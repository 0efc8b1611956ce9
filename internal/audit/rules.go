package audit

import (
	"context"
	"fmt"
	"strings"

	"aircheck/internal/content"
	"aircheck/internal/script"
)

// RuleEvaluator judges scripts with deterministic checks only. It
// covers the mechanical criteria (length, references, accuracy) and
// lets stylistic ones pass; it exists so the pipeline runs end to end
// without a judge model.
type RuleEvaluator struct {
	policies content.PolicySet
}

func NewRuleEvaluator(policies content.PolicySet) *RuleEvaluator {
	return &RuleEvaluator{policies: policies}
}

func (e *RuleEvaluator) Evaluate(_ context.Context, item content.WorkItem, text string) (Verdict, error) {
	policy := e.policies.Get(item.Type)
	lower := strings.ToLower(text)
	var issues []Issue

	if res := script.Validate(text, policy); !res.OK {
		for _, violation := range res.Violations {
			issues = append(issues, Issue{Criterion: "length", Problem: violation})
		}
	}

	for _, criterion := range policy.Criteria {
		switch criterion {
		case "song_reference":
			if item.Type.IsSongType() && !mentionsSong(lower, item.Song) {
				issues = append(issues, Issue{
					Criterion: criterion,
					Problem:   fmt.Sprintf("neither the title %q nor the artist %q is mentioned", item.Song.Title, item.Song.Artist),
				})
			}
		case "past_tense":
			if !strings.Contains(lower, "was ") && !strings.Contains(lower, "that was") &&
				!strings.Contains(lower, "just heard") && !strings.Contains(lower, "you heard") {
				issues = append(issues, Issue{
					Criterion: criterion,
					Problem:   "an outro should refer to the song in past tense, after it has played",
				})
			}
		case "time_accuracy":
			if item.Type == content.TypeTime && !mentionsTime(lower, item.Slot) {
				issues = append(issues, Issue{
					Criterion: criterion,
					Problem:   fmt.Sprintf("the announced time %02d:%02d does not appear in the script", item.Slot.Hour, item.Slot.Minute),
				})
			}
		case "condition_match":
			if item.Type == content.TypeWeather && !strings.Contains(lower, strings.ToLower(item.Weather.Condition)) {
				issues = append(issues, Issue{
					Criterion: criterion,
					Problem:   fmt.Sprintf("the forecast condition %q is never mentioned", item.Weather.Condition),
				})
			}
		}
	}

	score := 10.0 - 2.5*float64(len(issues))
	if score < 0 {
		score = 0
	}
	return Verdict{Passed: len(issues) == 0, Score: score, Issues: issues}, nil
}

func mentionsSong(lower string, song content.SongKey) bool {
	title := strings.ToLower(song.Title)
	artist := strings.ToLower(song.Artist)
	return (title != "" && strings.Contains(lower, title)) ||
		(artist != "" && strings.Contains(lower, artist))
}

// mentionsTime accepts either spoken 12-hour phrasing or digits.
func mentionsTime(lower string, slot content.TimeKey) bool {
	display := slot.Hour % 12
	if display == 0 {
		display = 12
	}
	if slot.Minute == 0 {
		if strings.Contains(lower, fmt.Sprintf("%d o'clock", display)) {
			return true
		}
		return strings.Contains(lower, fmt.Sprintf("%d:00", display))
	}
	if strings.Contains(lower, fmt.Sprintf("%d:%02d", display, slot.Minute)) {
		return true
	}
	if slot.Minute == 30 && strings.Contains(lower, fmt.Sprintf("half past %d", display)) {
		return true
	}
	return false
}
