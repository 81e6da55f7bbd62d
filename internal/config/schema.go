// Package config defines the configuration schema for concierge.
//
// Configuration lives in ~/.concierge/config.json (or config.yaml); secrets
// may be supplied or overridden through environment variables so the file
// never has to contain credentials.
package config

import (
	"os"
	"strconv"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `json:"port" yaml:"port"`
}

// OpenAIConfig holds completion-provider settings. Any OpenAI-compatible
// chat-completions endpoint works via APIBase.
type OpenAIConfig struct {
	APIKey      string  `json:"apiKey" yaml:"apiKey"`
	APIBase     string  `json:"apiBase,omitempty" yaml:"apiBase,omitempty"`
	Model       string  `json:"model" yaml:"model"`
	MaxTokens   int     `json:"maxTokens" yaml:"maxTokens"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// WeatherConfig holds OpenWeatherMap settings.
type WeatherConfig struct {
	APIKey  string `json:"apiKey" yaml:"apiKey"`
	APIBase string `json:"apiBase,omitempty" yaml:"apiBase,omitempty"`
}

// GeocodeConfig holds Nominatim settings.
type GeocodeConfig struct {
	APIBase string `json:"apiBase,omitempty" yaml:"apiBase,omitempty"`
}

// DatabaseConfig selects the persistence backend.
// An empty URL means a local sqlite file under the data directory;
// a postgres:// URL switches to PostgreSQL.
type DatabaseConfig struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// TelegramConfig configures the Telegram appointment notifier.
type TelegramConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Token   string `json:"token,omitempty" yaml:"token,omitempty"`
	ChatID  int64  `json:"chatId,omitempty" yaml:"chatId,omitempty"`
}

// SlackConfig configures the Slack webhook appointment notifier.
type SlackConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	WebhookURL string `json:"webhookUrl,omitempty" yaml:"webhookUrl,omitempty"`
}

// NotificationsConfig groups the outbound notifiers.
type NotificationsConfig struct {
	Telegram TelegramConfig `json:"telegram" yaml:"telegram"`
	Slack    SlackConfig    `json:"slack" yaml:"slack"`
}

// SweeperConfig configures the background appointment sweeper.
// Schedule is a robfig/cron spec, e.g. "@every 1m".
type SweeperConfig struct {
	Enabled             bool   `json:"enabled" yaml:"enabled"`
	Schedule            string `json:"schedule" yaml:"schedule"`
	ReminderLeadMinutes int    `json:"reminderLeadMinutes" yaml:"reminderLeadMinutes"`
}

// Config is the root configuration object.
type Config struct {
	Server         ServerConfig        `json:"server" yaml:"server"`
	OpenAI         OpenAIConfig        `json:"openai" yaml:"openai"`
	OpenWeatherMap WeatherConfig       `json:"openWeatherMap" yaml:"openWeatherMap"`
	Geocode        GeocodeConfig       `json:"geocode" yaml:"geocode"`
	Database       DatabaseConfig      `json:"database" yaml:"database"`
	Notifications  NotificationsConfig `json:"notifications" yaml:"notifications"`
	Sweeper        SweeperConfig       `json:"sweeper" yaml:"sweeper"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Port: 5000},
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o-mini",
			MaxTokens:   1000,
			Temperature: 0.7,
		},
		Sweeper: SweeperConfig{
			Enabled:             true,
			Schedule:            "@every 1m",
			ReminderLeadMinutes: 60,
		},
	}
}

// ApplyEnv overlays environment variables onto cfg. Variables take
// precedence over file values so deployments can inject secrets.
func (cfg *Config) ApplyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_BASE"); v != "" {
		cfg.OpenAI.APIBase = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.OpenAI.Model = v
	}
	if v := os.Getenv("MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.OpenAI.MaxTokens = n
		}
	}
	if v := os.Getenv("TEMPERATURE"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.OpenAI.Temperature = t
		}
	}
	if v := os.Getenv("OPENWEATHERMAP_API_KEY"); v != "" {
		cfg.OpenWeatherMap.APIKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
}
