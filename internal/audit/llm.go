package audit

import (
	"context"
	"fmt"
	"strings"

	"aircheck/internal/content"
	"aircheck/internal/services"
	"aircheck/internal/services/llm"
)

// Evaluator judges one sanitized script against its policy.
type Evaluator interface {
	Evaluate(ctx context.Context, item content.WorkItem, text string) (Verdict, error)
}

// JSONClient is the completion surface the LLM judge needs.
type JSONClient interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LLMEvaluator asks a model to judge scripts, using a separate
// low-temperature JSON completion so verdicts stay machine-readable.
type LLMEvaluator struct {
	client        JSONClient
	policies      content.PolicySet
	passThreshold float64
}

func NewLLMEvaluator(client JSONClient, policies content.PolicySet, passThreshold float64) *LLMEvaluator {
	return &LLMEvaluator{client: client, policies: policies, passThreshold: passThreshold}
}

const judgeSystemPrompt = `You are a strict quality reviewer for spoken radio announcements.
Judge the script you are given against the listed criteria.
Respond with JSON only, in exactly this shape:
{"score": <0-10>, "issues": [{"criterion": "<name>", "problem": "<what is wrong and how to fix it>"}], "notes": "<optional overall remark>"}
Report an issue for every criterion the script fails. An empty issues list means the script is good.`

func (e *LLMEvaluator) Evaluate(ctx context.Context, item content.WorkItem, text string) (Verdict, error) {
	policy := e.policies.Get(item.Type)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Content type: %s\n", item.Type)
	switch item.Type {
	case content.TypeIntro, content.TypeOutro:
		fmt.Fprintf(&sb, "Song: %q by %s\n", item.Song.Title, item.Song.Artist)
	case content.TypeTime:
		fmt.Fprintf(&sb, "Announced time: %02d:%02d\n", item.Slot.Hour, item.Slot.Minute)
	case content.TypeWeather:
		fmt.Fprintf(&sb, "Forecast: %s at hour %d\n", item.Weather.Condition, item.Weather.Hour)
	}
	fmt.Fprintf(&sb, "Criteria: %s\n", strings.Join(policy.Criteria, ", "))
	fmt.Fprintf(&sb, "Word limits: %d to %d\n\nScript:\n%s", policy.MinWords, policy.MaxWords, text)

	payload, err := e.client.CompleteJSON(ctx, judgeSystemPrompt, sb.String())
	if err != nil {
		return Verdict{}, services.Wrap(services.ErrTransient, "audit", "evaluate",
			"judge request failed", err)
	}

	var parsed struct {
		Score  float64 `json:"score"`
		Issues []Issue `json:"issues"`
		Notes  string  `json:"notes"`
	}
	if err := llm.DecodeJSON(payload, &parsed); err != nil {
		return Verdict{}, services.Wrap(services.ErrMalformed, "audit", "evaluate",
			"unparseable judge response", err)
	}
	if parsed.Score < 0 {
		parsed.Score = 0
	}
	if parsed.Score > 10 {
		parsed.Score = 10
	}
	return Verdict{
		Passed: parsed.Score >= e.passThreshold && len(parsed.Issues) == 0,
		Score:  parsed.Score,
		Issues: parsed.Issues,
		Notes:  strings.TrimSpace(parsed.Notes),
	}, nil
}
