package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/creatorlab/viralrag/internal/profile"
	"github.com/creatorlab/viralrag/plugin/ai"
	"github.com/creatorlab/viralrag/plugin/ai/cache"
	"github.com/creatorlab/viralrag/server/detector"
	"github.com/creatorlab/viralrag/server/persona"
	"github.com/creatorlab/viralrag/store"
	"github.com/creatorlab/viralrag/store/db"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "viralrag",
	Short: "Viral snippet detection over a scoped vector store",
	Long: `viralrag segments interview transcripts, ranks the segments against a
corpus of reference posts by embedding similarity, and manages the persistent
store of posts, guidance and personas the ranking draws from.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// app holds the wired components shared by all subcommands.
type app struct {
	profile  *profile.Profile
	store    *store.Store
	detector *detector.Detector
}

func (a *app) Close() error {
	return a.store.Close()
}

// bootstrap builds the full pipeline from the environment profile and seeds
// the default corpus and persona.
func bootstrap(ctx context.Context) (*app, error) {
	p, err := profile.FromEnv(version)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	embedder, err := ai.NewEmbeddingService(ai.NewEmbeddingConfigFromProfile(p))
	if err != nil {
		return nil, fmt.Errorf("embedding service: %w", err)
	}
	embedder = ai.NewCachedEmbeddingService(embedder, cache.DefaultCapacity, cache.DefaultTTL)

	driver, err := db.NewDriver(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("store driver: %w", err)
	}
	s := store.New(driver, embedder)

	d := detector.New(embedder)
	if err := d.LoadCorpus(ctx, detector.DefaultCorpus()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	personaID, err := persona.EnsureDefault(ctx, s)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("seed persona: %w", err)
	}

	slog.Info("viralrag ready",
		"version", version,
		"driver", p.Driver,
		"embedding_model", p.EmbeddingModel,
		"corpus_size", d.Size(),
		"default_persona", personaID)
	return &app{profile: p, store: s, detector: d}, nil
}
