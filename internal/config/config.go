package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Bot      Bot      `yaml:"bot"`
	Price    Price    `yaml:"price"`
	Twitter  Twitter  `yaml:"twitter"`
	News     News     `yaml:"news"`
	Analysis Analysis `yaml:"analysis"`
	Output   Output   `yaml:"output"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
}

type Bot struct {
	Hashtags    string `yaml:"hashtags"`
	ContentType string `yaml:"content_type"` // "quote", "joke" or "random"
}

type Price struct {
	APIURL   string `yaml:"api_url"`
	Currency string `yaml:"currency"`
}

type Twitter struct {
	Enabled bool `yaml:"enabled"`
	// App-only token for search and metrics lookups.
	BearerTokenEnv string `yaml:"bearer_token_env"`
	// User-context token for posting tweets.
	AccessTokenEnv string `yaml:"access_token_env"`
}

type News struct {
	Query      string `yaml:"query"`
	MaxResults int    `yaml:"max_results"`
	Feeds      []Feed `yaml:"feeds"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type Analysis struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	OllamaURL   string `yaml:"ollama_url"`
	OpenAIModel string `yaml:"openai_model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	MaxTokens   int    `yaml:"max_tokens"`
	BatchSize   int    `yaml:"batch_size"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
	// Admin login: the username is plain config, the bcrypt hash and the
	// session signing secret come from the environment.
	AdminUsername    string `yaml:"admin_username"`
	AdminHashEnv     string `yaml:"admin_hash_env"`
	SessionSecretEnv string `yaml:"session_secret_env"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for btcbuzzbot.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "btcbuzzbot")
}

// DataDir returns the XDG data directory for btcbuzzbot.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "btcbuzzbot")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/btcbuzzbot/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'btcbuzzbot init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Bot: Bot{
			Hashtags:    "#Bitcoin #BTC",
			ContentType: "random",
		},
		Price: Price{
			APIURL:   "https://api.coingecko.com/api/v3",
			Currency: "usd",
		},
		Twitter: Twitter{
			Enabled:        true,
			BearerTokenEnv: "TWITTER_BEARER_TOKEN",
			AccessTokenEnv: "TWITTER_ACCESS_TOKEN",
		},
		News: News{
			Query:      "bitcoin OR btc -is:retweet lang:en",
			MaxResults: 10,
		},
		Analysis: Analysis{
			Provider:    "ollama",
			Model:       "qwen2.5:7b",
			OllamaURL:   "http://localhost:11434",
			OpenAIModel: "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			MaxTokens:   512,
			BatchSize:   10,
		},
		Server: Server{
			Port:             8000,
			AdminUsername:    "admin",
			AdminHashEnv:     "BTCBUZZBOT_ADMIN_HASH",
			SessionSecretEnv: "BTCBUZZBOT_SESSION_SECRET",
		},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// DatabasePath returns the SQLite file path inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.GetDataDir(), "btcbuzzbot.db")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
