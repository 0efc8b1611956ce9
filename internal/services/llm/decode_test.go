package llm

import (
	"strings"
	"testing"
)

type verdictPayload struct {
	Passed bool    `json:"passed"`
	Score  float64 `json:"score"`
}

func TestDecodeJSONDirect(t *testing.T) {
	var v verdictPayload
	if err := DecodeJSON(`{"passed":true,"score":8.5}`, &v); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if !v.Passed || v.Score != 8.5 {
		t.Errorf("decoded = %+v", v)
	}
}

func TestDecodeJSONStripsCodeFence(t *testing.T) {
	payloads := []string{
		"```json\n{\"passed\":false,\"score\":3}\n```",
		"```\n{\"passed\":false,\"score\":3}\n```",
		"Here is my verdict:\n{\"passed\":false,\"score\":3}\nHope that helps!",
	}
	for _, payload := range payloads {
		var v verdictPayload
		if err := DecodeJSON(payload, &v); err != nil {
			t.Errorf("DecodeJSON(%q): %v", payload, err)
			continue
		}
		if v.Passed || v.Score != 3 {
			t.Errorf("DecodeJSON(%q) = %+v", payload, v)
		}
	}
}

func TestDecodeJSONRejectsGarbage(t *testing.T) {
	var v verdictPayload
	if err := DecodeJSON("", &v); err == nil {
		t.Error("empty payload must fail")
	}
	err := DecodeJSON("the script is fine I guess", &v)
	if err == nil {
		t.Fatal("prose payload must fail")
	}
	if !strings.Contains(err.Error(), "payload snippet") {
		t.Errorf("error should carry a snippet: %v", err)
	}
}

func TestPayloadSnippetTruncates(t *testing.T) {
	long := strings.Repeat("word ", 100)
	snippet := payloadSnippet(long)
	if len(snippet) > 170 || !strings.HasSuffix(snippet, "...") {
		t.Errorf("snippet = %q", snippet)
	}
}
