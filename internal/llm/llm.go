package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/aae42/clippy-clippy/internal/imaging"
)

// Mode selects which of the two fixed user-instruction templates accompanies
// the image. A closed enum keeps the two phrasings from drifting apart.
type Mode int

const (
	ModePlain Mode = iota
	ModeMarkdown
)

const (
	plainInstruction = "Extract all text content from this image accurately. Output *only* the extracted text and nothing else. Do not include any introductory phrases."

	markdownInstruction = "Extract all text from this image accurately. If the image contains tabular data, a list, code, or other structured content, format the output as GitHub Flavored Markdown. Pay attention to formatting details like spacing in tables. Don't use any image related markdown. Otherwise, return the plain text. Output *only* the extracted text or markdown content and nothing else. Do not include any introductory phrases or explanations. For bullet points, use hyphens instead of bullet characters, like a normal markdown."
)

// Instruction returns the user instruction text embedded in the request.
func (m Mode) Instruction() string {
	if m == ModeMarkdown {
		return markdownInstruction
	}
	return plainInstruction
}

func (m Mode) String() string {
	if m == ModeMarkdown {
		return "markdown"
	}
	return "plain"
}

// Client defines the capability to transcribe an encoded image into text.
type Client interface {
	Transcribe(ctx context.Context, img *imaging.Encoded, mode Mode) (string, error)
}

// ErrMalformedResponse is returned when the API answered with a success
// status but no usable completion. Silently emitting an empty transcription
// would mislead the user, so this is fatal.
var ErrMalformedResponse = errors.New("response contained no usable completion")

// TransportError wraps a failure to exchange the request at all
// (connection refused, timeout, DNS).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "transport: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError reports a non-success HTTP status from the API, carrying the
// structured API error message when one was supplied, otherwise a snippet of
// the raw body for quota/auth diagnostics.
type StatusError struct {
	StatusCode int
	Body       string
	APIMessage string
}

func (e *StatusError) Error() string {
	detail := e.APIMessage
	if detail == "" {
		detail = e.Body
	}
	return fmt.Sprintf("api rejected request with status %d: %s", e.StatusCode, detail)
}
