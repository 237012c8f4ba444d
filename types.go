package lingocache

import (
	"context"

	"github.com/ZaguanLabs/lingocache/store"
)

// Partition identifies one isolated cache and batching domain.
// This is an alias to the store package type for convenience.
type Partition = store.Partition

// Generator is the external collaborator that produces translations for a
// batch of distinct source texts. It may return a subset of the requested
// texts; the core treats each omission as a per-text failure, not a batch
// failure.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (map[string]string, error)
}

// GenerateRequest contains the parameters for one generator invocation.
type GenerateRequest struct {
	Texts      []string          // Distinct source texts, order not significant
	TargetLang string            // Target language code (e.g., "fr_FR")
	SourceLang string            // Source language code (default: "en")
	Context    string            // Partition context name, used as a tone hint
	Examples   map[string]string // Previously accepted source→translation pairs
}

// ContentProcessor is the interface for content processing front ends.
type ContentProcessor interface {
	// Extract parses content and returns an opaque parsed form plus the
	// distinct translatable texts found in it.
	Extract(content string) (interface{}, []string, error)

	// Apply substitutes translations back into the parsed form.
	Apply(parsed interface{}, translations map[string]string) (string, error)

	// ContentType identifies the content kind (e.g., "html").
	ContentType() string
}

// ProcessedContent is the result of translating a whole document.
type ProcessedContent struct {
	Content         string // Translated content
	TranslatedCount int    // Number of texts resolved by the generator
	CachedCount     int    // Number of texts served from the cache
	TotalTexts      int    // Total distinct translatable texts found
}

// IgnoredTags contains HTML tags whose content should not be translated.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}
