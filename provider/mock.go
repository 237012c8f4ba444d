package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockGenerator is a mock generator for testing.
type MockGenerator struct {
	mu           sync.Mutex
	Translations map[string]string // Map of source text to translation
	Err          error             // Error to return from every call, if set
	Omit         map[string]bool   // Texts to leave out of the response

	CallCount   int               // Number of times Generate was called
	LastRequest *GenerateRequest  // Last request received
	Requests    []GenerateRequest // Every request received
}

// NewMockGenerator creates a new mock generator with default translations.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Translations: map[string]string{
			"Hello":   "Hola",
			"World":   "Mundo",
			"Goodbye": "Adiós",
			"Welcome": "Bienvenido",
		},
	}
}

// Generate returns mock translations. Unknown texts translate to
// "[<lang>] <text>" so tests can assert on deterministic output.
func (m *MockGenerator) Generate(ctx context.Context, req GenerateRequest) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	reqCopy := req
	m.LastRequest = &reqCopy
	m.Requests = append(m.Requests, reqCopy)

	if m.Err != nil {
		return nil, m.Err
	}

	result := make(map[string]string, len(req.Texts))
	for _, text := range req.Texts {
		if m.Omit[text] {
			continue
		}
		if translation, ok := m.Translations[text]; ok {
			result[text] = translation
		} else {
			result[text] = fmt.Sprintf("[%s] %s", req.TargetLang, text)
		}
	}

	return result, nil
}

// Calls returns the number of Generate invocations so far.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// Reset clears the recorded calls.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastRequest = nil
	m.Requests = nil
}

// Verify MockGenerator implements Generator.
var _ Generator = (*MockGenerator)(nil)
