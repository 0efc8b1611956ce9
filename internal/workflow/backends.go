package workflow

import (
	"time"

	"aircheck/internal/audit"
	"aircheck/internal/config"
	"aircheck/internal/services/llm"
	"aircheck/internal/services/tts"
)

// NewBackends wires the production services from configuration.
func NewBackends(cfg *config.Config) (Backends, error) {
	var backends Backends

	text, err := llm.NewOpenAIClient(toLLMConfig(cfg.GetLLM()))
	if err != nil {
		return backends, err
	}
	backends.Text = text

	policies := cfg.Policies()
	if cfg.Audit.Backend == "llm" {
		judge, err := llm.NewOpenAIClient(toLLMConfig(cfg.AuditLLM()))
		if err != nil {
			return backends, err
		}
		backends.Judge = audit.NewLLMEvaluator(judge, policies, cfg.Audit.PassThreshold)
	} else {
		backends.Judge = audit.NewRuleEvaluator(policies)
	}

	backends.Synth = tts.NewClient(cfg.TTS.BaseURL, time.Duration(cfg.TTS.TimeoutSeconds)*time.Second)
	return backends, nil
}

func toLLMConfig(cfg config.LLMConfig) llm.Config {
	return llm.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		TimeoutSeconds: cfg.TimeoutSeconds,
		Temperature:    cfg.Temperature,
	}
}
