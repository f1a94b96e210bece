package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	AuthProviderIdentityToolkit = "identitytoolkit"
	AuthProviderStatic          = "static"
)

type Config struct {
	Debug bool   `env:"DEBUG" envDefault:"false"`
	Addr  string `env:"ADDR" envDefault:":8080"`

	LlmTimeout    time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	OpenaiBaseURL string        `env:"OPENAI_BASE_URL"`
	SchemaCheck   bool          `env:"SCHEMA_CHECK" envDefault:"true"`

	AuthProvider       string `env:"AUTH_PROVIDER" envDefault:"identitytoolkit"`
	FirebaseWebAPIKey  string `env:"FIREBASE_WEB_API_KEY"`
	IdentityToolkitURL string `env:"IDENTITY_TOOLKIT_URL" envDefault:"https://identitytoolkit.googleapis.com"`
	AuthStaticTokens   string `env:"AUTH_STATIC_TOKENS"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	switch cfg.AuthProvider {
	case AuthProviderIdentityToolkit:
		if cfg.FirebaseWebAPIKey == "" {
			return nil, fmt.Errorf("FIREBASE_WEB_API_KEY is required when AUTH_PROVIDER=%s", AuthProviderIdentityToolkit)
		}
	case AuthProviderStatic:
		if cfg.AuthStaticTokens == "" {
			return nil, fmt.Errorf("AUTH_STATIC_TOKENS is required when AUTH_PROVIDER=%s", AuthProviderStatic)
		}
	default:
		return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.AuthProvider)
	}
	return &cfg, nil
}

// providerKey is parsed on its own so the key is only read when the
// credential holder first needs it.
type providerKey struct {
	OpenaiKey string `env:"OPENAI_API_KEY"`
}

// OpenAIKey reads OPENAI_API_KEY from the environment. It returns an empty
// string when the variable is unset.
func OpenAIKey() (string, error) {
	var k providerKey
	if err := env.Parse(&k); err != nil {
		return "", err
	}
	return k.OpenaiKey, nil
}
