package db

import (
	"context"

	"github.com/pkg/errors"

	"github.com/creatorlab/viralrag/internal/profile"
	"github.com/creatorlab/viralrag/store"
	"github.com/creatorlab/viralrag/store/db/memory"
	"github.com/creatorlab/viralrag/store/db/postgres"
)

// NewDriver creates a vector index driver based on the profile.
//
// postgres: production path, requires the pgvector extension.
// memory: development and tests, everything is lost on shutdown.
func NewDriver(ctx context.Context, profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "memory":
		return memory.New(), nil
	case "postgres":
		driver, err := postgres.NewDB(ctx, profile)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create postgres driver")
		}
		return driver, nil
	default:
		return nil, errors.Errorf("unknown driver: %s, only 'postgres' and 'memory' are supported", profile.Driver)
	}
}
