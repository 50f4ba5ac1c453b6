package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the client configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Endpoints   EndpointConfig `toml:"endpoints"`
	Auth        AuthConfig     `toml:"auth"`
	AI          AIConfig       `toml:"ai"`
	Upload      UploadConfig   `toml:"upload"`
	Storage     StorageConfig  `toml:"storage"`
	History     HistoryConfig  `toml:"history"`
	Logging     LoggingConfig  `toml:"logging"`
}

// EndpointConfig holds the two known backend base URLs. Exactly one is
// active at a time; the selector toggles between them at runtime.
type EndpointConfig struct {
	Local  string `toml:"local" validate:"required,url"`
	Hosted string `toml:"hosted" validate:"required,url"`
	Active string `toml:"active" validate:"oneof=local hosted"` // which base URL starts active
}

// AuthConfig holds the identity provider configuration
type AuthConfig struct {
	APIKey   string `toml:"api_key"`   // identity provider web API key
	AuthURL  string `toml:"auth_url"`  // account endpoints (sign-in/sign-up)
	TokenURL string `toml:"token_url"` // secure-token refresh endpoint
}

// AIConfig holds defaults for AI request composition
type AIConfig struct {
	DefaultProvider   string `toml:"default_provider" validate:"oneof=openai claude custom"`
	MaxTokens         int    `toml:"max_tokens" validate:"gte=0"`          // 0 = let the server decide
	RequestsPerMinute int    `toml:"requests_per_minute" validate:"gte=0"` // 0 = no client-side limit
}

// UploadConfig holds upload pipeline configuration
type UploadConfig struct {
	// File extensions offered to the user as a filter hint. The server is
	// the authority on what it will extract.
	AllowedExtensions []string `toml:"allowed_extensions"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path string `toml:"path"` // Database directory path
}

// HistoryConfig controls the local AI exchange history
type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
	Limit   int  `toml:"limit" validate:"gte=0"` // default entries shown by `docai history`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig returns the configuration defaults. File and environment
// values are layered on top.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Endpoints: EndpointConfig{
			Local:  "http://localhost:5000",
			Hosted: "https://docai-backend.onrender.com",
			Active: "local",
		},
		Auth: AuthConfig{
			AuthURL:  "https://identitytoolkit.googleapis.com",
			TokenURL: "https://securetoken.googleapis.com",
		},
		AI: AIConfig{
			DefaultProvider:   "openai",
			MaxTokens:         0,
			RequestsPerMinute: 30,
		},
		Upload: UploadConfig{
			AllowedExtensions: []string{".pdf", ".docx", ".xlsx"},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{Path: "./data/docai"},
		},
		History: HistoryConfig{
			Enabled: true,
			Limit:   20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration from defaults, then the given files in
// order (later files override earlier ones), then environment variables.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: DOCAI_ENV, fallback: GO_ENV)
	if env := os.Getenv("DOCAI_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Endpoint configuration
	if local := os.Getenv("DOCAI_ENDPOINT_LOCAL"); local != "" {
		config.Endpoints.Local = local
	}
	if hosted := os.Getenv("DOCAI_ENDPOINT_HOSTED"); hosted != "" {
		config.Endpoints.Hosted = hosted
	}
	if active := os.Getenv("DOCAI_ENDPOINT_ACTIVE"); active != "" {
		config.Endpoints.Active = active
	}

	// Identity provider configuration
	if key := os.Getenv("DOCAI_AUTH_API_KEY"); key != "" {
		config.Auth.APIKey = key
	}
	if authURL := os.Getenv("DOCAI_AUTH_URL"); authURL != "" {
		config.Auth.AuthURL = authURL
	}
	if tokenURL := os.Getenv("DOCAI_AUTH_TOKEN_URL"); tokenURL != "" {
		config.Auth.TokenURL = tokenURL
	}

	// AI configuration
	if provider := os.Getenv("DOCAI_AI_PROVIDER"); provider != "" {
		config.AI.DefaultProvider = provider
	}
	if maxTokens := os.Getenv("DOCAI_AI_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.AI.MaxTokens = mt
		}
	}
	if rpm := os.Getenv("DOCAI_AI_REQUESTS_PER_MINUTE"); rpm != "" {
		if r, err := strconv.Atoi(rpm); err == nil {
			config.AI.RequestsPerMinute = r
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("DOCAI_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("DOCAI_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("DOCAI_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// Validate checks the configuration using go-playground/validator tags.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsProduction returns true when running against production settings
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
