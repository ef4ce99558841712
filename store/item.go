package store

import (
	"fmt"
	"slices"
	"sort"
)

// Kind is the logical partition a stored item belongs to. Each kind is an
// independent collection with its own embedding dimension.
type Kind string

const (
	KindPost     Kind = "POST"
	KindGuidance Kind = "GUIDANCE"
	KindPersona  Kind = "PERSONA"
)

// Validate reports whether the kind names a known collection.
func (k Kind) Validate() error {
	switch k {
	case KindPost, KindGuidance, KindPersona:
		return nil
	}
	return fmt.Errorf("unknown item kind %q", string(k))
}

// mustKind fails fast on an unknown kind. A bad kind is a programmer error,
// not a recoverable condition.
func mustKind(k Kind) {
	if err := k.Validate(); err != nil {
		panic(err)
	}
}

// Scope restricts which queries can retrieve an item. The zero value is
// "applies to all"; use ScopeRestrictedTo to limit visibility to given tags.
type Scope struct {
	tags []string
}

// ScopeAll returns the scope visible to every query.
func ScopeAll() Scope {
	return Scope{}
}

// ScopeRestrictedTo returns a scope visible only to queries filtering on one
// of the given tags. No tags means ScopeAll.
func ScopeRestrictedTo(tags ...string) Scope {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag != "" && !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return Scope{tags: out}
}

// IsAll reports whether the item is visible to every scope filter.
func (s Scope) IsAll() bool {
	return len(s.tags) == 0
}

// Tags returns a copy of the restricting tags, empty for ScopeAll.
func (s Scope) Tags() []string {
	return slices.Clone(s.tags)
}

// Visible reports whether an item with this scope passes the given filter.
// An empty filter and an unrestricted scope both pass unconditionally.
func (s Scope) Visible(filter string) bool {
	if filter == "" || s.IsAll() {
		return true
	}
	return slices.Contains(s.tags, filter)
}

// StoredItem is a persisted, embedded text item.
type StoredItem struct {
	ID               string
	Kind             Kind
	PrimaryText      string
	Embedding        []float32
	Metadata         map[string]any
	Scope            Scope
	CreatedTs        int64
	IsReferenceGrade bool
}

// Clone returns a deep copy, safe to hold across store mutations.
func (i *StoredItem) Clone() *StoredItem {
	clone := *i
	clone.Embedding = slices.Clone(i.Embedding)
	clone.Scope = Scope{tags: slices.Clone(i.Scope.tags)}
	if i.Metadata != nil {
		clone.Metadata = make(map[string]any, len(i.Metadata))
		for k, v := range i.Metadata {
			clone.Metadata[k] = v
		}
	}
	return &clone
}

// Engagement returns the combined likes and comments counters.
func (i *StoredItem) Engagement() int64 {
	return MetaInt(i.Metadata, MetaLikes) + MetaInt(i.Metadata, MetaComments)
}

// Metadata keys shared between the typed shapes below. The store itself never
// interprets metadata; these are conventions between writers and readers.
const (
	MetaTitle                  = "title"
	MetaAuthor                 = "author"
	MetaKeywords               = "keywords"
	MetaCategory               = "category"
	MetaLikes                  = "likes"
	MetaComments               = "comments"
	MetaLastEngagementUpdateTs = "last_engagement_update_ts"
	MetaSourceSnippet          = "source_snippet"
	MetaPriority               = "priority"
	MetaSection                = "section"
	MetaName                   = "name"
	MetaTone                   = "tone"
	MetaSpecializations        = "specializations"
	MetaStyleRules             = "style_rules"
	MetaExampleOpeners         = "example_openers"
	MetaIsDefault              = "is_default"
	MetaIsActive               = "is_active"
)

// PostMetadata is the metadata shape for KindPost items.
type PostMetadata struct {
	Title                  string
	Author                 string
	Keywords               []string
	Category               string
	Likes                  int64
	Comments               int64
	LastEngagementUpdateTs int64
	SourceSnippet          string
}

func (m PostMetadata) ToMetadata() map[string]any {
	return map[string]any{
		MetaTitle:                  m.Title,
		MetaAuthor:                 m.Author,
		MetaKeywords:               toAnySlice(m.Keywords),
		MetaCategory:               m.Category,
		MetaLikes:                  m.Likes,
		MetaComments:               m.Comments,
		MetaLastEngagementUpdateTs: m.LastEngagementUpdateTs,
		MetaSourceSnippet:          m.SourceSnippet,
	}
}

func PostMetadataFrom(meta map[string]any) PostMetadata {
	return PostMetadata{
		Title:                  MetaString(meta, MetaTitle),
		Author:                 MetaString(meta, MetaAuthor),
		Keywords:               MetaStrings(meta, MetaKeywords),
		Category:               MetaString(meta, MetaCategory),
		Likes:                  MetaInt(meta, MetaLikes),
		Comments:               MetaInt(meta, MetaComments),
		LastEngagementUpdateTs: MetaInt(meta, MetaLastEngagementUpdateTs),
		SourceSnippet:          MetaString(meta, MetaSourceSnippet),
	}
}

// GuidanceMetadata is the metadata shape for KindGuidance items. Priority is
// a display/selection tie-break only and never affects similarity scoring.
type GuidanceMetadata struct {
	Title    string
	Category string
	Priority int64
	Section  string
}

func (m GuidanceMetadata) ToMetadata() map[string]any {
	return map[string]any{
		MetaTitle:    m.Title,
		MetaCategory: m.Category,
		MetaPriority: m.Priority,
		MetaSection:  m.Section,
	}
}

func GuidanceMetadataFrom(meta map[string]any) GuidanceMetadata {
	return GuidanceMetadata{
		Title:    MetaString(meta, MetaTitle),
		Category: MetaString(meta, MetaCategory),
		Priority: MetaInt(meta, MetaPriority),
		Section:  MetaString(meta, MetaSection),
	}
}

// PersonaMetadata is the metadata shape for KindPersona items.
type PersonaMetadata struct {
	Name            string
	Tone            string
	Specializations []string
	StyleRules      string
	ExampleOpeners  []string
	IsDefault       bool
	IsActive        bool
}

func (m PersonaMetadata) ToMetadata() map[string]any {
	return map[string]any{
		MetaName:            m.Name,
		MetaTone:            m.Tone,
		MetaSpecializations: toAnySlice(m.Specializations),
		MetaStyleRules:      m.StyleRules,
		MetaExampleOpeners:  toAnySlice(m.ExampleOpeners),
		MetaIsDefault:       m.IsDefault,
		MetaIsActive:        m.IsActive,
	}
}

func PersonaMetadataFrom(meta map[string]any) PersonaMetadata {
	return PersonaMetadata{
		Name:            MetaString(meta, MetaName),
		Tone:            MetaString(meta, MetaTone),
		Specializations: MetaStrings(meta, MetaSpecializations),
		StyleRules:      MetaString(meta, MetaStyleRules),
		ExampleOpeners:  MetaStrings(meta, MetaExampleOpeners),
		IsDefault:       MetaBool(meta, MetaIsDefault),
		IsActive:        MetaBool(meta, MetaIsActive),
	}
}

// SortGuidanceByPriority orders guidance items by descending priority,
// keeping the incoming (similarity) order for equal priorities.
func SortGuidanceByPriority(items []*StoredItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return MetaInt(items[i].Metadata, MetaPriority) > MetaInt(items[j].Metadata, MetaPriority)
	})
}

// MetaString reads a string metadata field, tolerating absence.
func MetaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

// MetaInt reads an integer metadata field. JSON decoding turns integers into
// float64, so both representations are accepted.
func MetaInt(meta map[string]any, key string) int64 {
	switch v := meta[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// MetaBool reads a boolean metadata field, tolerating absence.
func MetaBool(meta map[string]any, key string) bool {
	if v, ok := meta[key].(bool); ok {
		return v
	}
	return false
}

// MetaStrings reads a string-list metadata field in either []string or
// []any (post-JSON) representation.
func MetaStrings(meta map[string]any, key string) []string {
	switch v := meta[key].(type) {
	case []string:
		return slices.Clone(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
