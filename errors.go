package lingocache

import "fmt"

// GeneratorError indicates the generator call itself failed (API error,
// unparseable response, etc.). Every waiter in the affected batch is
// rejected with the same error.
type GeneratorError struct {
	Message string
	Cause   error
}

func (e *GeneratorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generator error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("generator error: %s", e.Message)
}

func (e *GeneratorError) Unwrap() error {
	return e.Cause
}

// MissingTranslationError indicates the generator succeeded but omitted a
// specific requested text. Only that text's waiters are rejected; the rest
// of the batch still succeeds.
type MissingTranslationError struct {
	Text string
	Lang string
}

func (e *MissingTranslationError) Error() string {
	return fmt.Sprintf("no translation returned for %q (%s)", e.Text, e.Lang)
}

// ProcessorError indicates a content processing failure (parse error, etc.).
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string // The type of content that failed to process
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.ContentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.ContentType, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}
