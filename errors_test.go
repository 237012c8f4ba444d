package lingocache

import (
	"errors"
	"testing"
)

func TestGeneratorError(t *testing.T) {
	cause := errors.New("underlying error")
	err := &GeneratorError{Message: "call failed", Cause: cause}

	if err.Error() != "generator error: call failed: underlying error" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap() should expose the cause")
	}

	// Without cause
	err2 := &GeneratorError{Message: "no response"}
	if err2.Error() != "generator error: no response" {
		t.Errorf("unexpected error message: %s", err2.Error())
	}
}

func TestMissingTranslationError(t *testing.T) {
	err := &MissingTranslationError{Text: "Hello", Lang: "fr_FR"}

	want := `no translation returned for "Hello" (fr_FR)`
	if err.Error() != want {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestProcessorError(t *testing.T) {
	err := &ProcessorError{Message: "parse failed", ContentType: "html"}

	if err.Error() != "processor error (html): parse failed" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	cause := errors.New("bad markup")
	err2 := &ProcessorError{Message: "parse failed", Cause: cause, ContentType: "html"}
	if !errors.Is(err2, cause) {
		t.Error("Unwrap() should expose the cause")
	}
}
