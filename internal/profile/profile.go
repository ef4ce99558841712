package profile

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Profile is the runtime configuration for the service.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Driver is the vector index driver ("memory" or "postgres")
	Driver string
	// DSN points to the postgres database when Driver is "postgres"
	DSN string
	// Version is the current version of the service
	Version string

	// Embedding configuration
	EmbeddingProvider   string // VIRALRAG_EMBEDDING_PROVIDER (default: openai)
	EmbeddingModel      string // VIRALRAG_EMBEDDING_MODEL (default: text-embedding-3-small)
	EmbeddingDimensions int    // VIRALRAG_EMBEDDING_DIMENSIONS (default: 1536)
	EmbeddingAPIKey     string // VIRALRAG_EMBEDDING_API_KEY
	EmbeddingBaseURL    string // VIRALRAG_EMBEDDING_BASE_URL
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// Validate checks that the profile is usable and normalizes defaults.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	switch p.Driver {
	case "memory", "postgres":
	case "":
		p.Driver = "memory"
	default:
		return errors.Errorf("unsupported driver %q, expect memory or postgres", p.Driver)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required when driver is postgres")
	}
	if p.EmbeddingDimensions <= 0 {
		return errors.Errorf("invalid embedding dimensions %d", p.EmbeddingDimensions)
	}
	return nil
}

// FromEnv loads the profile from environment variables.
func FromEnv(version string) (*Profile, error) {
	v := viper.New()
	v.SetEnvPrefix("viralrag")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "demo")
	v.SetDefault("driver", "memory")
	v.SetDefault("dsn", "")
	v.SetDefault("embedding_provider", "openai")
	v.SetDefault("embedding_model", "text-embedding-3-small")
	v.SetDefault("embedding_dimensions", 1536)
	v.SetDefault("embedding_base_url", "")
	v.SetDefault("embedding_api_key", "")

	p := &Profile{
		Mode:                v.GetString("mode"),
		Driver:              v.GetString("driver"),
		DSN:                 v.GetString("dsn"),
		Version:             version,
		EmbeddingProvider:   v.GetString("embedding_provider"),
		EmbeddingModel:      v.GetString("embedding_model"),
		EmbeddingDimensions: v.GetInt("embedding_dimensions"),
		EmbeddingAPIKey:     v.GetString("embedding_api_key"),
		EmbeddingBaseURL:    v.GetString("embedding_base_url"),
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid profile")
	}
	return p, nil
}

func (p *Profile) String() string {
	return fmt.Sprintf("mode=%s driver=%s provider=%s model=%s dim=%d",
		p.Mode, p.Driver, p.EmbeddingProvider, p.EmbeddingModel, p.EmbeddingDimensions)
}
