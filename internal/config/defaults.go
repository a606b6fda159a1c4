package config

const (
	defaultConfigPath             = "~/.config/cinemind/config.toml"
	defaultDataDir                = "~/.local/share/cinemind"
	defaultLogDir                 = "~/.local/share/cinemind/logs"
	defaultDatabaseName           = "cinemind.db"
	defaultMoviesFileName         = "movies.csv"
	defaultSimilarityFileName     = "similarity.csv"
	defaultServerBind             = "127.0.0.1:7488"
	defaultSessionIdleMinutes     = 120
	defaultOMDbBaseURL            = "https://www.omdbapi.com/"
	defaultOMDbTimeoutSeconds     = 5
	defaultPlaceholderPoster      = "https://upload.wikimedia.org/wikipedia/commons/6/65/No-Image-Placeholder.svg"
	defaultOMDbRequestsPerSecond  = 2
	defaultOMDbBurst              = 4
	defaultBreakerFailures        = 5
	defaultBreakerCooldownSeconds = 30
	defaultSimilarLimit           = 5
	defaultHybridLimit            = 10
	defaultMoodLimit              = 10
	defaultChartLimit             = 10
	defaultSelfExclusion          = "seed"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Server: Server{
			Bind:               defaultServerBind,
			SessionIdleMinutes: defaultSessionIdleMinutes,
		},
		OMDb: OMDb{
			BaseURL:                defaultOMDbBaseURL,
			TimeoutSeconds:         defaultOMDbTimeoutSeconds,
			PlaceholderPoster:      defaultPlaceholderPoster,
			RequestsPerSecond:      defaultOMDbRequestsPerSecond,
			Burst:                  defaultOMDbBurst,
			BreakerFailures:        defaultBreakerFailures,
			BreakerCooldownSeconds: defaultBreakerCooldownSeconds,
			PersistCache:           true,
		},
		Ranking: Ranking{
			SimilarLimit:  defaultSimilarLimit,
			HybridLimit:   defaultHybridLimit,
			MoodLimit:     defaultMoodLimit,
			ChartLimit:    defaultChartLimit,
			SelfExclusion: defaultSelfExclusion,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
