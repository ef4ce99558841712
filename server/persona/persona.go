// Package persona manages writing personas stored as PERSONA items. A persona
// captures the voice a generated post should be written in; posts and guidance
// scoped to a persona ID surface only when generation runs under that persona.
package persona

import (
	"context"
	"log/slog"
	"strings"

	"github.com/creatorlab/viralrag/store"
)

// DefaultID is the stable ID of the built-in persona, so repeated seeding
// never creates duplicates.
const DefaultID = "persona-gary-lin"

// Persona is the typed view over a PERSONA stored item.
type Persona struct {
	ID              string
	Name            string
	Description     string
	Tone            string
	Specializations []string
	StyleRules      string
	ExampleOpeners  []string
	IsDefault       bool
	IsActive        bool
}

// Default returns the built-in startup-founder persona.
func Default() *Persona {
	return &Persona{
		ID:   DefaultID,
		Name: "Gary Lin - Startup Founder",
		Description: "Co-founder writing LinkedIn posts that inspire and help " +
			"other founders and professionals in the startup ecosystem.",
		Tone: "Bold, humorous, community-minded. Confident but not arrogant, " +
			"smart but not dry. People-first, empathetic, encouraging. Genuine, " +
			"witty, vulnerable, raw, relatable. A bit provocative without being " +
			"negative. Punchy, honest, warm, with a clear point of view.",
		Specializations: []string{
			"Founder's Personal Story & Journey",
			"Internal Company Management & Culture",
			"Streamlining Data Delivery",
			"Analytics Trends & Insights",
			"Building a SaaS/AI Company",
		},
		StyleRules: "Start with a compelling hook. Use short paragraphs of one " +
			"to three sentences. Include personal anecdotes or specific examples. " +
			"Share actionable insights or lessons learned. Use line breaks for " +
			"readability. End with a question or call to action. Add one to " +
			"three strategic hashtags at the end.",
		ExampleOpeners: []string{
			"Here's the thing nobody tells you about raising Series A...",
			"I used to think [X]. I was wrong. Here's what I learned...",
			"Unpopular opinion: [contrarian take]",
			"3 years ago, we almost shut down the company. Today...",
			"The best advice I ever got came from...",
		},
		IsDefault: true,
		IsActive:  true,
	}
}

// ToItem converts the persona to its stored representation. The primary text
// concatenates the voice description so persona lookup by similarity works.
func (p *Persona) ToItem() *store.StoredItem {
	return &store.StoredItem{
		ID:          p.ID,
		Kind:        store.KindPersona,
		PrimaryText: p.primaryText(),
		Metadata: store.PersonaMetadata{
			Name:            p.Name,
			Tone:            p.Tone,
			Specializations: p.Specializations,
			StyleRules:      p.StyleRules,
			ExampleOpeners:  p.ExampleOpeners,
			IsDefault:       p.IsDefault,
			IsActive:        p.IsActive,
		}.ToMetadata(),
		Scope: store.ScopeAll(),
	}
}

// FromItem builds the typed view from a stored PERSONA item.
func FromItem(item *store.StoredItem) *Persona {
	meta := store.PersonaMetadataFrom(item.Metadata)
	return &Persona{
		ID:              item.ID,
		Name:            meta.Name,
		Description:     item.PrimaryText,
		Tone:            meta.Tone,
		Specializations: meta.Specializations,
		StyleRules:      meta.StyleRules,
		ExampleOpeners:  meta.ExampleOpeners,
		IsDefault:       meta.IsDefault,
		IsActive:        meta.IsActive,
	}
}

func (p *Persona) primaryText() string {
	parts := []string{p.Name, p.Description, p.Tone}
	if len(p.Specializations) > 0 {
		parts = append(parts, strings.Join(p.Specializations, ", "))
	}
	return strings.Join(parts, ". ")
}

// EnsureDefault seeds the built-in persona when no default persona exists yet.
// Returns the default persona's ID. Safe to call on every startup.
func EnsureDefault(ctx context.Context, s *store.Store) (string, error) {
	items, err := s.ListAll(ctx, store.KindPersona, 0)
	if err != nil {
		return "", err
	}
	for _, item := range items {
		if store.MetaBool(item.Metadata, store.MetaIsDefault) {
			return item.ID, nil
		}
	}

	id, err := s.Put(ctx, Default().ToItem())
	if err != nil {
		return "", err
	}
	slog.Info("default persona seeded", "id", id)
	return id, nil
}

// Active lists active personas in insertion order.
func Active(ctx context.Context, s *store.Store) ([]*Persona, error) {
	items, err := s.ListAll(ctx, store.KindPersona, 0)
	if err != nil {
		return nil, err
	}

	personas := make([]*Persona, 0, len(items))
	for _, item := range items {
		if store.MetaBool(item.Metadata, store.MetaIsActive) {
			personas = append(personas, FromItem(item))
		}
	}
	return personas, nil
}

// Get returns the persona, or nil when the ID is unknown.
func Get(ctx context.Context, s *store.Store, id string) (*Persona, error) {
	item, err := s.Get(ctx, store.KindPersona, id)
	if err != nil || item == nil {
		return nil, err
	}
	return FromItem(item), nil
}
