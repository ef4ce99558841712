package persona_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorlab/viralrag/plugin/ai"
	"github.com/creatorlab/viralrag/server/persona"
	"github.com/creatorlab/viralrag/store"
	"github.com/creatorlab/viralrag/store/db/memory"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(memory.New(), ai.NewMockEmbeddingService(16))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEnsureDefaultSeedsOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := persona.EnsureDefault(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, persona.DefaultID, id)

	// Second call finds the existing default instead of writing again.
	again, err := persona.EnsureDefault(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	items, err := s.ListAll(ctx, store.KindPersona, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestEnsureDefaultRespectsExistingDefault(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	custom := &persona.Persona{
		ID:        "persona-custom",
		Name:      "Custom Voice",
		Tone:      "dry and technical",
		IsDefault: true,
		IsActive:  true,
	}
	_, err := s.Put(ctx, custom.ToItem())
	require.NoError(t, err)

	id, err := persona.EnsureDefault(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "persona-custom", id)
}

func TestItemRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	original := persona.Default()
	_, err := s.Put(ctx, original.ToItem())
	require.NoError(t, err)

	got, err := persona.Get(ctx, s, persona.DefaultID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, original.Name, got.Name)
	assert.Equal(t, original.Tone, got.Tone)
	assert.Equal(t, original.Specializations, got.Specializations)
	assert.Equal(t, original.ExampleOpeners, got.ExampleOpeners)
	assert.True(t, got.IsDefault)
	assert.True(t, got.IsActive)
}

func TestGetUnknownID(t *testing.T) {
	s := newTestStore(t)

	got, err := persona.Get(context.Background(), s, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestActiveFiltersInactive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	active := &persona.Persona{ID: "p-active", Name: "Active", IsActive: true}
	inactive := &persona.Persona{ID: "p-retired", Name: "Retired", IsActive: false}
	for _, p := range []*persona.Persona{active, inactive} {
		_, err := s.Put(ctx, p.ToItem())
		require.NoError(t, err)
	}

	personas, err := persona.Active(ctx, s)
	require.NoError(t, err)
	require.Len(t, personas, 1)
	assert.Equal(t, "p-active", personas[0].ID)
}
