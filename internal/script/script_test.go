package script_test

import (
	"testing"

	"aircheck/internal/content"
	"aircheck/internal/script"
)

func TestSanitizeStripsArtifacts(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"stage directions",
			"[warm chuckle] Here's a classic for you. [fades]",
			"Here's a classic for you.",
		},
		{
			"starred cues",
			"*clears throat* Coming up next, Glenn Miller!",
			"Coming up next, Glenn Miller!",
		},
		{
			"markdown",
			"# Intro\n> That was *In the Mood*, folks.",
			"That was In the Mood, folks.",
		},
		{
			"smart quotes",
			"It’s half past two — stay tuned…",
			"It's half past two - stay tuned...",
		},
		{
			"emoji",
			"Sunny skies ahead \U0001F31E all afternoon!",
			"Sunny skies ahead all afternoon!",
		},
		{
			"whitespace",
			"  That was\n\n  Cass Daley.  ",
			"That was Cass Daley.",
		},
	}
	for _, tc := range cases {
		if got := script.Sanitize(tc.in); got != tc.want {
			t.Errorf("%s: Sanitize(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"[laughs] That was *swell*, wasn't it? — KAIR time check \U0001F557",
		"Plain copy that needs no cleaning at all.",
		"It's 5 o'clock somewhere, folks (and right here too).",
	}
	for _, in := range inputs {
		once := script.Sanitize(in)
		twice := script.Sanitize(once)
		if once != twice {
			t.Errorf("not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestValidateWordBounds(t *testing.T) {
	policy := content.Policy{MinWords: 3, MaxWords: 6}

	if res := script.Validate("That was Cass Daley tonight", policy); !res.OK {
		t.Errorf("in-range script rejected: %+v", res)
	}
	if res := script.Validate("Too short", policy); res.OK || len(res.Violations) != 1 {
		t.Errorf("short script accepted: %+v", res)
	}
	if res := script.Validate("This one rambles on far past the maximum word limit", policy); res.OK {
		t.Errorf("long script accepted: %+v", res)
	}
	if res := script.Validate("   ", policy); res.OK || res.WordCount != 0 {
		t.Errorf("empty script accepted: %+v", res)
	}
}

func TestValidateCatchesLeftoverMarkup(t *testing.T) {
	policy := content.Policy{MinWords: 1, MaxWords: 20}
	res := script.Validate("Here is [something] odd", policy)
	if res.OK {
		t.Errorf("markup accepted: %+v", res)
	}
}
