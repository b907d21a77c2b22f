package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joestump/promptpad/internal/prompt"
)

// ModelConfig describes one selectable inference model.
type ModelConfig struct {
	ID                string `mapstructure:"id"`
	Label             string `mapstructure:"label"`
	SuppressReasoning bool   `mapstructure:"suppress_reasoning"`
}

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	OIDC struct {
		Issuer       string
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}
	LLM struct {
		Provider     string
		Endpoint     string
		APIKey       string
		Timeout      time.Duration
		DefaultModel string
		Models       []ModelConfig
	}
	Log struct {
		Level       string
		Development bool
	}
	Library struct {
		SeedFile string
	}
	// Conversation bounds the in-memory conversations. Zero disables a bound.
	Conversation struct {
		Max         int
		IdleTimeout time.Duration
	}
	SessionLifetime time.Duration
	InsecureCookies bool
}

// OIDCEnabled reports whether login is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDC.Issuer != ""
}

// ModelCatalog builds the selectable model list. Without llm.models the
// built-in models are offered.
func (c *Config) ModelCatalog() (*prompt.Catalog, error) {
	models := []prompt.Model{prompt.DeepSeekR1, prompt.Llama32}
	if len(c.LLM.Models) > 0 {
		models = make([]prompt.Model, 0, len(c.LLM.Models))
		for _, m := range c.LLM.Models {
			models = append(models, prompt.Model{ID: m.ID, Label: m.Label, SuppressReasoning: m.SuppressReasoning})
		}
	}
	return prompt.NewCatalog(models, c.LLM.DefaultModel)
}

// Load reads config from environment (PROMPTPAD_ prefix) and optional promptpad.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PROMPTPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("promptpad")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "promptpad.db")
	v.SetDefault("session.lifetime", "720h")
	v.SetDefault("insecure_cookies", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("llm.provider", "invoke")
	v.SetDefault("llm.endpoint", "http://localhost:8000/model/{model}/invoke")
	v.SetDefault("llm.timeout", "120s")
	v.SetDefault("llm.default_model", "deepseek-r1")
	v.SetDefault("conversation.max", 10000)
	v.SetDefault("conversation.idle_timeout", "24h")
}

func fromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.OIDC.Issuer = v.GetString("oidc.issuer")
	cfg.OIDC.ClientID = v.GetString("oidc.client_id")
	cfg.OIDC.ClientSecret = v.GetString("oidc.client_secret")
	cfg.OIDC.RedirectURL = v.GetString("oidc.redirect_url")
	cfg.LLM.Provider = v.GetString("llm.provider")
	cfg.LLM.Endpoint = v.GetString("llm.endpoint")
	cfg.LLM.APIKey = v.GetString("llm.api_key")
	cfg.LLM.DefaultModel = v.GetString("llm.default_model")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Development = v.GetBool("log.development")
	cfg.Library.SeedFile = v.GetString("library.seed_file")
	cfg.InsecureCookies = v.GetBool("insecure_cookies")

	if err := v.UnmarshalKey("llm.models", &cfg.LLM.Models); err != nil {
		return nil, fmt.Errorf("invalid llm.models: %w", err)
	}

	lifetime, err := time.ParseDuration(v.GetString("session.lifetime"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROMPTPAD_SESSION_LIFETIME: %w", err)
	}
	cfg.SessionLifetime = lifetime

	timeout, err := time.ParseDuration(v.GetString("llm.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROMPTPAD_LLM_TIMEOUT: %w", err)
	}
	cfg.LLM.Timeout = timeout

	cfg.Conversation.Max = v.GetInt("conversation.max")
	if cfg.Conversation.Max < 0 {
		return nil, fmt.Errorf("PROMPTPAD_CONVERSATION_MAX must not be negative (got %d)", cfg.Conversation.Max)
	}
	idle, err := time.ParseDuration(v.GetString("conversation.idle_timeout"))
	if err != nil || idle < 0 {
		return nil, fmt.Errorf("invalid PROMPTPAD_CONVERSATION_IDLE_TIMEOUT: %q", v.GetString("conversation.idle_timeout"))
	}
	cfg.Conversation.IdleTimeout = idle

	switch cfg.DB.Driver {
	case "sqlite3", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("PROMPTPAD_DB_DRIVER must be sqlite3, mysql, or postgres (got %q)", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("PROMPTPAD_DB_DSN is required")
	}

	switch cfg.LLM.Provider {
	case "invoke", "openai-compatible", "simulated":
	default:
		return nil, fmt.Errorf("PROMPTPAD_LLM_PROVIDER must be invoke, openai-compatible, or simulated (got %q)", cfg.LLM.Provider)
	}
	if cfg.LLM.Provider != "simulated" && cfg.LLM.Endpoint == "" {
		return nil, fmt.Errorf("PROMPTPAD_LLM_ENDPOINT is required")
	}

	if _, err := cfg.ModelCatalog(); err != nil {
		return nil, fmt.Errorf("invalid PROMPTPAD_LLM_DEFAULT_MODEL: %w", err)
	}

	if cfg.OIDCEnabled() {
		if cfg.OIDC.ClientID == "" {
			return nil, fmt.Errorf("PROMPTPAD_OIDC_CLIENT_ID is required when PROMPTPAD_OIDC_ISSUER is set")
		}
		if cfg.OIDC.ClientSecret == "" {
			return nil, fmt.Errorf("PROMPTPAD_OIDC_CLIENT_SECRET is required when PROMPTPAD_OIDC_ISSUER is set")
		}
		if cfg.OIDC.RedirectURL == "" {
			return nil, fmt.Errorf("PROMPTPAD_OIDC_REDIRECT_URL is required when PROMPTPAD_OIDC_ISSUER is set")
		}
	}

	return cfg, nil
}
