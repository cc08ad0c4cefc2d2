package config

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// BilibiliConfig controls the upstream Bilibili API and per-account cookies.
type BilibiliConfig struct {
	// APIBaseURL serves the dynamic feed endpoints (api.vc.bilibili.com).
	APIBaseURL string `mapstructure:"api_base_url"`
	// WebAPIBaseURL serves account metadata (api.bilibili.com).
	WebAPIBaseURL string `mapstructure:"web_api_base_url"`
	// WebBaseURL serves article pages (www.bilibili.com).
	WebBaseURL   string `mapstructure:"web_base_url"`
	FetchTimeout string `mapstructure:"fetch_timeout"` // duration string, e.g., "10s"
	// Cookies maps an account uid to a logged-in session cookie. The feed
	// endpoints refuse anonymous requests, so every served uid needs one.
	Cookies map[string]string `mapstructure:"cookies"`
	// NameRefreshInterval controls the display-name cache warmer.
	NameRefreshInterval string `mapstructure:"name_refresh_interval"`
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Bilibili BilibiliConfig `mapstructure:"bilibili"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Bilibili.APIBaseURL == "" {
		c.Bilibili.APIBaseURL = "https://api.vc.bilibili.com"
	}
	if c.Bilibili.WebAPIBaseURL == "" {
		c.Bilibili.WebAPIBaseURL = "https://api.bilibili.com"
	}
	if c.Bilibili.WebBaseURL == "" {
		c.Bilibili.WebBaseURL = "https://www.bilibili.com"
	}
	if c.Bilibili.FetchTimeout == "" {
		c.Bilibili.FetchTimeout = "10s"
	}
	if c.Bilibili.NameRefreshInterval == "" {
		c.Bilibili.NameRefreshInterval = "12h"
	}
}
