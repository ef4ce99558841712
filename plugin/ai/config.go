package ai

import (
	"github.com/creatorlab/viralrag/internal/profile"
)

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Provider   string // openai, siliconflow
	Model      string // e.g. text-embedding-3-small, BAAI/bge-m3
	Dimensions int
	APIKey     string
	BaseURL    string
}

// NewEmbeddingConfigFromProfile creates embedding config from the profile.
func NewEmbeddingConfigFromProfile(p *profile.Profile) *EmbeddingConfig {
	return &EmbeddingConfig{
		Provider:   p.EmbeddingProvider,
		Model:      p.EmbeddingModel,
		Dimensions: p.EmbeddingDimensions,
		APIKey:     p.EmbeddingAPIKey,
		BaseURL:    p.EmbeddingBaseURL,
	}
}
