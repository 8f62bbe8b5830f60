package dealbot

import "time"

type Config struct {
	// Logging all engine transitions at debug level
	Debug bool `envconfig:"DEAL_DEBUG" default:"false"`

	// Port serving /ws, /health and /qr
	Port string `envconfig:"PORT" default:"3000"`

	// pprof listener; empty disables it
	ProfPort string `envconfig:"DEAL_PROF_PORT" default:""`

	// Comma-separated allowed origins, * for any
	CorsOrigins string `envconfig:"CORS_ORIGINS" default:"*"`

	// Base URL used in the /qr join link
	PublicURL string `envconfig:"DEAL_PUBLIC_URL" default:"http://localhost:3000"`

	// Sweep cadence and room TTLs, in milliseconds
	CleanupIntervalMs int64 `envconfig:"ROOM_CLEANUP_INTERVAL_MS" default:"600000"`
	WaitingTTLMs      int64 `envconfig:"ROOM_WAITING_TTL_MS" default:"43200000"`
	SelectionTTLMs    int64 `envconfig:"ROOM_SELECTION_TTL_MS" default:"43200000"`
	FinishedTTLMs     int64 `envconfig:"ROOM_FINISHED_TTL_MS" default:"7200000"`

	// Deadlines; lowered in tests
	TurnTimeoutMs  int64 `envconfig:"DEAL_TURN_TIMEOUT_MS" default:"20000"`
	OfferTimeoutMs int64 `envconfig:"DEAL_OFFER_TIMEOUT_MS" default:"20000"`
	RevealDelayMs  int64 `envconfig:"DEAL_OFFER_REVEAL_DELAY_MS" default:"1500"`

	// Bounded size of the process-lifetime leaderboard cache
	LeaderboardCacheSize int `envconfig:"DEAL_LEADERBOARD_CACHE_SIZE" default:"4096"`
}

func (c *Config) CleanupInterval() time.Duration { return time.Duration(c.CleanupIntervalMs) * time.Millisecond }
func (c *Config) WaitingTTL() time.Duration     { return time.Duration(c.WaitingTTLMs) * time.Millisecond }
func (c *Config) SelectionTTL() time.Duration   { return time.Duration(c.SelectionTTLMs) * time.Millisecond }
func (c *Config) FinishedTTL() time.Duration    { return time.Duration(c.FinishedTTLMs) * time.Millisecond }
func (c *Config) TurnTimeout() time.Duration    { return time.Duration(c.TurnTimeoutMs) * time.Millisecond }
func (c *Config) OfferTimeout() time.Duration   { return time.Duration(c.OfferTimeoutMs) * time.Millisecond }
func (c *Config) RevealDelay() time.Duration    { return time.Duration(c.RevealDelayMs) * time.Millisecond }
