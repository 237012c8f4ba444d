package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/lingocache"
	"github.com/sashabaranov/go-openai"
)

// OpenAIGenerator implements Generator using OpenAI's API.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI generator.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIGenerator creates a new OpenAI generator.
func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Generate translates a batch of texts using OpenAI. The response is keyed
// by source text, so a partial response maps cleanly onto per-text results.
func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerateRequest) (map[string]string, error) {
	if len(req.Texts) == 0 {
		return map[string]string{}, nil
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: g.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: g.buildUserMessage(req)},
		},
		Temperature: g.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &lingocache.GeneratorError{
			Message: "OpenAI API call failed",
			Cause:   err,
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &lingocache.GeneratorError{
			Message: "no response from OpenAI",
		}
	}

	return g.parseResponse(resp.Choices[0].Message.Content)
}

func (g *OpenAIGenerator) buildSystemPrompt(req GenerateRequest) string {
	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = "en"
	}

	targetName := lingocache.GetLanguageName(req.TargetLang)
	sourceName := lingocache.GetLanguageName(sourceLang)
	localeHint := lingocache.GetLocaleClarification(req.TargetLang)

	contextText := "The content is general application copy."
	if req.Context != "" && req.Context != "default" {
		contextText = fmt.Sprintf("The content is for: %s. Adapt the tone to be appropriate for this context.", req.Context)
	}

	prompt := fmt.Sprintf(`# Role
You are an expert native translator. You translate %s content to %s with the fluency and nuance of a highly educated native speaker.

# Context
%s

# Task
Translate each provided text into idiomatic %s.

# Style Guide
- **Natural Flow**: Avoid literal translations. Rephrase sentences to sound completely natural to a native speaker.
- **Idioms**: Never translate idioms literally. Replace them with natural %s equivalents.
- **Interpolation**: Do NOT translate variables or placeholders (e.g., {{name}}, {count}, %%s, $1).
- **Formatting**: Preserve meaningful whitespace and use idiomatic punctuation for the target language.`,
		sourceName, targetName, contextText, targetName, targetName)

	if localeHint != "" {
		prompt += fmt.Sprintf("\n- **Locale**: %s", localeHint)
	}

	if len(req.Examples) > 0 {
		prompt += "\n\n# Examples\nThese pairs were previously accepted for this content. Stay consistent with their terminology and tone:"
		for source, target := range req.Examples {
			prompt += fmt.Sprintf("\n- %q → %q", source, target)
		}
	}

	prompt += `

# Format
Return a valid JSON object mapping each input text, exactly as given, to its translation.
Example: { "Hello": "Bonjour", "Goodbye": "Au revoir" }
- Do NOT wrap in Markdown code blocks.
- Do NOT add keys that were not in the input.`

	return prompt
}

func (g *OpenAIGenerator) buildUserMessage(req GenerateRequest) string {
	data, _ := json.Marshal(req.Texts)
	return string(data)
}

func (g *OpenAIGenerator) parseResponse(content string) (map[string]string, error) {
	content = strings.TrimSpace(content)

	var result map[string]string
	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return result, nil
	}

	// Some models nest the mapping under a single wrapper key.
	var wrapped map[string]map[string]string
	if err := json.Unmarshal([]byte(content), &wrapped); err == nil && len(wrapped) == 1 {
		for _, inner := range wrapped {
			return inner, nil
		}
	}

	return nil, &lingocache.GeneratorError{
		Message: "invalid response format from OpenAI",
	}
}

// Verify OpenAIGenerator implements Generator.
var _ Generator = (*OpenAIGenerator)(nil)
