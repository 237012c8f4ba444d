// Command lingocache translates text lines or HTML files using AI, backed
// by a persistent per-language translation cache.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ZaguanLabs/lingocache"
	"github.com/ZaguanLabs/lingocache/processor"
	"github.com/ZaguanLabs/lingocache/provider"
	"github.com/ZaguanLabs/lingocache/store"
)

// Build-time variables (can be overridden with ldflags)
var (
	version = lingocache.Version
	commit  = lingocache.GitCommit
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("lingocache", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Flags
	targetLang := fs.String("lang", "", "Target language code (e.g., fr_FR, ja_JP)")
	sourceLang := fs.String("source", "en", "Source language code")
	contextName := fs.String("context", "default", "Partition context name")
	cacheRoot := fs.String("root", "./locales", "Cache storage root directory")
	batchSize := fs.Int("batch-size", lingocache.DefaultBatchSize, "Distinct texts per flush")
	batchDelay := fs.Duration("batch-delay", lingocache.DefaultBatchDelay, "Quiescence window before a timed flush")
	maxExamples := fs.Int("max-examples", lingocache.DefaultMaxExamples, "Maximum cached pairs passed to the generator")
	apiKey := fs.String("api-key", "", "OpenAI API key (default: OPENAI_API_KEY env)")
	model := fs.String("model", "gpt-4o-mini", "OpenAI model to use")
	redisURL := fs.String("redis", "", "Use Redis as the durable store (e.g., redis://localhost:6379)")
	htmlMode := fs.Bool("html", false, "Treat input as an HTML document")
	output := fs.String("output", "", "Output file (default: stdout)")
	outputShort := fs.String("o", "", "Output file (short for --output)")
	jsonOutput := fs.Bool("json", false, "Output source→translation pairs as JSON")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	showVersion := fs.Bool("version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", lingocache.Name, version)
		if commit != "unknown" && commit != "" {
			fmt.Fprintf(stdout, "  commit: %s\n", commit)
		}
		return nil
	}

	// Handle -o alias for --output
	if *outputShort != "" && *output == "" {
		*output = *outputShort
	}

	if *targetLang == "" {
		fs.Usage()
		return fmt.Errorf("--lang is required")
	}

	// Get input
	var input string
	if fs.NArg() == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		input = string(data)
	} else {
		data, err := os.ReadFile(fs.Arg(0)) // #nosec G304 - CLI tool reads user-specified files
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		input = string(data)
	}

	// Get API key
	key := *apiKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return fmt.Errorf("OpenAI API key required (--api-key or OPENAI_API_KEY env)")
	}

	gen := provider.NewOpenAIGenerator(provider.OpenAIConfig{
		APIKey: key,
		Model:  *model,
	})

	// Retry policy stays on the generator side; the cache core never retries.
	retryable := provider.NewRetryableGenerator(gen, provider.DefaultRetryConfig())

	opts := []lingocache.Option{
		lingocache.WithSourceLang(*sourceLang),
		lingocache.WithContext(*contextName),
		lingocache.WithBatchSize(*batchSize),
		lingocache.WithBatchDelay(*batchDelay),
		lingocache.WithMaxExamples(*maxExamples),
		lingocache.WithProcessor(processor.NewHTMLProcessor()),
	}

	if *redisURL != "" {
		rs, err := store.NewRedisStore(store.RedisConfig{URL: *redisURL})
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rs.Close()
		opts = append(opts, lingocache.WithStore(rs))
	}

	svc := lingocache.New(*cacheRoot, retryable, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	out := stdout
	if *output != "" {
		f, err := os.Create(*output) // #nosec G304 - path is intentionally user-provided
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if *htmlMode {
		return runHTML(ctx, svc, input, *targetLang, out, stderr, *quiet)
	}
	return runLines(ctx, svc, input, *targetLang, out, stderr, *quiet, *jsonOutput)
}

// runLines translates each non-empty input line through the cache.
func runLines(ctx context.Context, svc *lingocache.Service, input, lang string, out, stderr io.Writer, quiet, jsonOutput bool) error {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	if !quiet {
		fmt.Fprintf(stderr, "Translating %d lines to %s...\n", len(lines), lang)
	}

	translations, err := svc.TranslateAll(ctx, lang, lines)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(translations)
	}

	for _, line := range lines {
		fmt.Fprintln(out, translations[line])
	}
	return nil
}

// runHTML translates an HTML document, stamping lang/dir attributes.
func runHTML(ctx context.Context, svc *lingocache.Service, input, lang string, out, stderr io.Writer, quiet bool) error {
	if !quiet {
		fmt.Fprintf(stderr, "Translating HTML to %s...\n", lang)
	}

	result, err := svc.ProcessHTML(ctx, lang, input)
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(stderr, "Done: %d translated, %d cached (%d texts)\n",
			result.TranslatedCount, result.CachedCount, result.TotalTexts)
	}

	_, werr := io.WriteString(out, result.Content)
	return werr
}
