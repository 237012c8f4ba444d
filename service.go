package lingocache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/lingocache/cache"
	"github.com/ZaguanLabs/lingocache/store"
)

// Defaults for batching behavior.
const (
	DefaultBatchSize   = 20
	DefaultBatchDelay  = 50 * time.Millisecond
	DefaultMaxExamples = 5
	DefaultContext     = "default"
)

// Service is the main translation cache engine.
type Service struct {
	root        string
	sourceLang  string
	contextName string
	batchSize   int
	batchDelay  time.Duration
	maxExamples int
	store       store.Store
	processors  map[string]ContentProcessor

	cache   *cache.Cache
	batcher *batcher
}

// Option is a functional option for configuring the Service.
type Option func(*Service)

// WithSourceLang sets the source language.
func WithSourceLang(lang string) Option {
	return func(s *Service) {
		s.sourceLang = lang
	}
}

// WithContext sets the default context name used by Translate.
func WithContext(name string) Option {
	return func(s *Service) {
		s.contextName = name
	}
}

// WithBatchSize sets the distinct-text count that triggers an immediate flush.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithBatchDelay sets the quiescence window before a timed flush.
func WithBatchDelay(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.batchDelay = d
		}
	}
}

// WithMaxExamples bounds how many cached pairs are passed to the generator.
func WithMaxExamples(n int) Option {
	return func(s *Service) {
		s.maxExamples = n
	}
}

// WithStore sets the durable backend (default: filesystem).
func WithStore(st store.Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithProcessor registers a content processor.
func WithProcessor(p ContentProcessor) Option {
	return func(s *Service) {
		s.processors[p.ContentType()] = p
	}
}

// New creates a Service rooted at the given storage path, using gen for
// cache misses.
func New(root string, gen Generator, opts ...Option) *Service {
	s := &Service{
		root:        root,
		sourceLang:  "en",
		contextName: DefaultContext,
		batchSize:   DefaultBatchSize,
		batchDelay:  DefaultBatchDelay,
		maxExamples: DefaultMaxExamples,
		processors:  make(map[string]ContentProcessor),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = store.NewFileStore()
	}
	s.cache = cache.New(s.store)
	s.batcher = newBatcher(gen, s.cache, s.batchSize, s.batchDelay, s.maxExamples, s.sourceLang)

	return s
}

// Translate returns the translation of text into lang under the default
// context, consulting the cache first and batching the miss otherwise.
func (s *Service) Translate(ctx context.Context, lang, text string) (string, error) {
	return s.TranslateIn(ctx, lang, s.contextName, text)
}

// TranslateIn is Translate scoped to an explicit context name. Contexts
// isolate partitions, so the same source text may resolve differently per
// context.
func (s *Service) TranslateIn(ctx context.Context, lang, contextName, text string) (string, error) {
	value, _, err := s.translate(ctx, lang, contextName, text)
	return value, err
}

// translate reports whether the value came from the cache.
func (s *Service) translate(ctx context.Context, lang, contextName, text string) (string, bool, error) {
	if normalizeBaseLang(lang) == normalizeBaseLang(s.sourceLang) {
		return text, true, nil
	}

	p := Partition{Root: s.root, Lang: lang, Context: contextName}
	if value, ok, err := s.cache.Get(ctx, p, text); err != nil {
		return "", false, err
	} else if ok {
		return value, true, nil
	}

	value, err := s.batcher.request(ctx, p, text)
	return value, false, err
}

// TranslateAll translates texts concurrently through the coalescing queue,
// so distinct texts issued together land in the same generator call. It
// returns every successful translation; the error, if any, is the first
// failure observed.
func (s *Service) TranslateAll(ctx context.Context, lang string, texts []string) (map[string]string, error) {
	translations := make(map[string]string, len(texts))
	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error

	for _, text := range texts {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			value, err := s.Translate(ctx, lang, text)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			translations[text] = value
		}(text)
	}
	wg.Wait()

	return translations, firstErr
}

// Cached returns a defensive copy of the partition for lang under the
// default context.
func (s *Service) Cached(ctx context.Context, lang string) (map[string]string, error) {
	p := Partition{Root: s.root, Lang: lang, Context: s.contextName}
	return s.cache.GetAll(ctx, p)
}

// Process translates content of the specified type through the cache.
func (s *Service) Process(ctx context.Context, lang, content, contentType string) (*ProcessedContent, error) {
	if normalizeBaseLang(lang) == normalizeBaseLang(s.sourceLang) {
		return &ProcessedContent{Content: content}, nil
	}

	processor, ok := s.processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}

	parsed, texts, err := processor.Extract(content)
	if err != nil {
		return nil, err
	}

	if len(texts) == 0 {
		return &ProcessedContent{Content: content}, nil
	}

	// Fan the texts out concurrently; the coalescing queue turns them
	// into a bounded number of generator calls.
	translations := make(map[string]string, len(texts))
	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error
	cachedCount := 0

	for _, text := range texts {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			value, cached, err := s.translate(ctx, lang, s.contextName, text)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			translations[text] = value
			if cached {
				cachedCount++
			}
		}(text)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	result, err := processor.Apply(parsed, translations)
	if err != nil {
		return nil, err
	}

	if contentType == "html" {
		result = s.setHTMLAttributes(result, lang)
	}

	return &ProcessedContent{
		Content:         result,
		TranslatedCount: len(texts) - cachedCount,
		CachedCount:     cachedCount,
		TotalTexts:      len(texts),
	}, nil
}

// ProcessHTML is a convenience method for processing HTML content.
func (s *Service) ProcessHTML(ctx context.Context, lang, html string) (*ProcessedContent, error) {
	return s.Process(ctx, lang, html, "html")
}

// SourceLang returns the source language.
func (s *Service) SourceLang() string {
	return s.sourceLang
}

// Context returns the default context name.
func (s *Service) Context() string {
	return s.contextName
}

// setHTMLAttributes sets lang and dir attributes on the <html> tag.
func (s *Service) setHTMLAttributes(html, lang string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	htmlTag := doc.Find("html")
	if htmlTag.Length() > 0 {
		htmlTag.SetAttr("lang", ToHTMLLang(lang))
		htmlTag.SetAttr("dir", GetDirection(lang))
	}

	result, err := doc.Html()
	if err != nil {
		return html
	}

	return result
}

// normalizeBaseLang extracts the base language code (e.g., "en" from "en_US").
func normalizeBaseLang(lang string) string {
	parts := strings.Split(lang, "_")
	if len(parts) > 0 {
		return strings.ToLower(parts[0])
	}
	return strings.ToLower(lang)
}
