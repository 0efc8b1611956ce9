package config

const (
	defaultRootDir        = "~/.local/share/aircheck/output"
	defaultCatalogDB      = "~/.local/share/aircheck/catalog.db"
	defaultLogDir         = "~/.local/share/aircheck/logs"
	defaultLLMBaseURL     = "https://openrouter.ai/api/v1"
	defaultLLMModel       = "openai/gpt-4o-mini"
	defaultLLMTimeout     = 60
	defaultLLMTemperature = 0.9
	defaultAuditBackend   = "rules"
	defaultAuditMaxRounds = 2
	defaultPassThreshold  = 6.0
	defaultTTSBaseURL     = "http://127.0.0.1:8000"
	defaultTTSTimeout     = 120
	defaultTTSTemperature = 0.75
	defaultTTSLanguage    = "en"
	defaultStationName    = "KAIR 88.1"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultMinFreeGiB     = 2
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RootDir:   defaultRootDir,
			CatalogDB: defaultCatalogDB,
			LogDir:    defaultLogDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeout,
			Temperature:    defaultLLMTemperature,
		},
		Audit: Audit{
			Backend:       defaultAuditBackend,
			MaxRounds:     defaultAuditMaxRounds,
			PassThreshold: defaultPassThreshold,
		},
		TTS: TTS{
			BaseURL:        defaultTTSBaseURL,
			TimeoutSeconds: defaultTTSTimeout,
			Temperature:    defaultTTSTemperature,
			Language:       defaultTTSLanguage,
		},
		Station: Station{
			Name: defaultStationName,
			DJs: []DJ{
				{
					ID:       "julie",
					Name:     "Julie",
					VoiceRef: "voices/julie.wav",
					Style:    "Warm, upbeat swing-era hostess; playful and familiar with her listeners.",
				},
				{
					ID:       "max",
					Name:     "Max",
					VoiceRef: "voices/max.wav",
					Style:    "Laid-back late-night crooner with a dry wit; keeps it short and smooth.",
				},
			},
		},
		Schedule: Schedule{
			TimeMinutes:       []int{0, 30},
			WeatherHours:      []int{0, 3, 6, 9, 12, 15, 18, 21},
			WeatherConditions: []string{"sunny", "cloudy", "rain", "storm", "snow", "fog"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Preflight: Preflight{
			MinFreeGiB: defaultMinFreeGiB,
		},
	}
}
