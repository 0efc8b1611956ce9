package prompt_test

import (
	"strings"
	"testing"

	"aircheck/internal/content"
	"aircheck/internal/prompt"
)

func builder() *prompt.Builder {
	return prompt.NewBuilder("KAIR 88.1", content.DefaultPolicies())
}

func TestSystemPromptCarriesPersona(t *testing.T) {
	got := builder().System(prompt.DJProfile{Name: "Julie", Style: "Warm swing-era hostess."})
	for _, want := range []string{"Julie", "KAIR 88.1", "Warm swing-era hostess."} {
		if !strings.Contains(got, want) {
			t.Errorf("system prompt missing %q: %s", want, got)
		}
	}
}

func TestUserPromptPerType(t *testing.T) {
	b := builder()

	intro := b.User(content.WorkItem{
		Type: content.TypeIntro, DJ: "julie",
		Song: content.SongKey{ID: "1", Artist: "Cass Daley", Title: "A Good Man Is Hard to Find"},
	}, nil)
	if !strings.Contains(intro, "Cass Daley") || !strings.Contains(intro, "about to play") {
		t.Errorf("intro prompt: %s", intro)
	}

	outro := b.User(content.WorkItem{
		Type: content.TypeOutro, DJ: "julie",
		Song: content.SongKey{ID: "1", Artist: "Cass Daley", Title: "A Good Man Is Hard to Find"},
	}, nil)
	if !strings.Contains(outro, "just finished") || !strings.Contains(outro, "past tense") {
		t.Errorf("outro prompt: %s", outro)
	}

	clock := b.User(content.WorkItem{
		Type: content.TypeTime, DJ: "max",
		Slot: content.TimeKey{Hour: 14, Minute: 30},
	}, nil)
	if !strings.Contains(clock, "2:30 in the afternoon") {
		t.Errorf("time prompt: %s", clock)
	}

	midnight := b.User(content.WorkItem{
		Type: content.TypeTime, DJ: "max",
		Slot: content.TimeKey{Hour: 0, Minute: 0},
	}, nil)
	if !strings.Contains(midnight, "12 o'clock at night") {
		t.Errorf("midnight prompt: %s", midnight)
	}

	weather := b.User(content.WorkItem{
		Type: content.TypeWeather, DJ: "max",
		Weather: content.WeatherKey{Hour: 6, Condition: "rain"},
	}, nil)
	if !strings.Contains(weather, "rain") || !strings.Contains(weather, "6 AM") {
		t.Errorf("weather prompt: %s", weather)
	}
}

func TestUserPromptIncludesFeedback(t *testing.T) {
	item := content.WorkItem{
		Type: content.TypeIntro, DJ: "julie",
		Song: content.SongKey{ID: "1", Artist: "Cass Daley", Title: "A Good Man Is Hard to Find"},
	}
	got := builder().User(item, []string{"too long: 70 words", "mentions the wrong decade"})
	if !strings.Contains(got, "previous attempt was rejected") {
		t.Errorf("feedback header missing: %s", got)
	}
	if !strings.Contains(got, "mentions the wrong decade") {
		t.Errorf("feedback items missing: %s", got)
	}

	clean := builder().User(item, nil)
	if strings.Contains(clean, "rejected") {
		t.Errorf("feedback section must be absent on first attempt: %s", clean)
	}
}
