// Package prompt assembles the chat messages sent to the text backend
// for each piece of announcer copy.
package prompt

import (
	"fmt"
	"strings"

	"aircheck/internal/content"
)

// DJProfile is the on-air persona woven into every prompt.
type DJProfile struct {
	Name  string
	Style string
}

// Builder renders system and user prompts for work items.
type Builder struct {
	station  string
	policies content.PolicySet
}

func NewBuilder(station string, policies content.PolicySet) *Builder {
	return &Builder{station: station, policies: policies}
}

// System returns the persona prompt for a DJ.
func (b *Builder) System(dj DJProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s, a radio DJ on %s. %s\n", dj.Name, b.station, dj.Style)
	sb.WriteString("You write short spoken announcements exactly as they should be read on air. ")
	sb.WriteString("Respond with the announcement text only: no stage directions, no markdown, ")
	sb.WriteString("no brackets, no quotation marks around the whole line.")
	return sb.String()
}

// User returns the task prompt for one work item. Feedback from a
// failed audit, when present, is appended so the next attempt fixes
// what the last one got wrong.
func (b *Builder) User(item content.WorkItem, feedback []string) string {
	policy := b.policies.Get(item.Type)

	var sb strings.Builder
	switch item.Type {
	case content.TypeIntro:
		fmt.Fprintf(&sb, "Introduce the song %q by %s, which is about to play.\n",
			item.Song.Title, item.Song.Artist)
	case content.TypeOutro:
		fmt.Fprintf(&sb, "The song %q by %s just finished playing. Send it off in past tense.\n",
			item.Song.Title, item.Song.Artist)
	case content.TypeTime:
		fmt.Fprintf(&sb, "Announce the current time: %s.\n", clockPhrase(item.Slot.Hour, item.Slot.Minute))
	case content.TypeWeather:
		fmt.Fprintf(&sb, "Give a quick weather update: %s around %s.\n",
			item.Weather.Condition, hourPhrase(item.Weather.Hour))
	}

	fmt.Fprintf(&sb, "Keep it between %d and %d words.\n", policy.MinWords, policy.MaxWords)
	if len(policy.Criteria) > 0 {
		fmt.Fprintf(&sb, "It will be judged on: %s.\n", strings.Join(policy.Criteria, ", "))
	}
	if len(feedback) > 0 {
		sb.WriteString("Your previous attempt was rejected. Fix these problems:\n")
		for _, note := range feedback {
			fmt.Fprintf(&sb, "- %s\n", note)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// clockPhrase spells a slot as spoken 12-hour time.
func clockPhrase(hour, minute int) string {
	suffix := "in the morning"
	switch {
	case hour == 0:
		suffix = "at night"
	case hour == 12:
		suffix = "in the afternoon"
	case hour >= 12 && hour < 18:
		suffix = "in the afternoon"
	case hour >= 18:
		suffix = "in the evening"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	if minute == 0 {
		return fmt.Sprintf("%d o'clock %s", display, suffix)
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, suffix)
}

func hourPhrase(hour int) string {
	display := hour % 12
	if display == 0 {
		display = 12
	}
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	return fmt.Sprintf("%d %s", display, period)
}
