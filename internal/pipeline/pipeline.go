package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/aae42/clippy-clippy/internal/clipboard"
	"github.com/aae42/clippy-clippy/internal/imaging"
	"github.com/aae42/clippy-clippy/internal/llm"
)

// Runner drives one clipboard-to-transcription pass. The clipboard source
// and the LLM client are injected so tests can supply fakes.
type Runner struct {
	Log    *log.Logger
	Source clipboard.Source
	LLM    llm.Client
	Out    io.Writer
}

// Run reads the clipboard image, encodes it, asks the model for a
// transcription, and writes it to Out with a trailing newline. Nothing is
// written to Out unless a transcription was actually obtained.
func (r *Runner) Run(ctx context.Context, mode llm.Mode) error {
	img, err := r.Source.Read()
	if err != nil {
		if errors.Is(err, clipboard.ErrNoImage) {
			return err
		}
		return fmt.Errorf("read clipboard: %w", err)
	}
	r.Log.Debug("clipboard image", "width", img.Width, "height", img.Height)

	enc, err := imaging.Encode(img)
	if err != nil {
		return fmt.Errorf("encode clipboard image: %w", err)
	}
	r.Log.Debug("image encoded", "png_bytes", len(enc.PNG))

	text, err := r.LLM.Transcribe(ctx, enc, mode)
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}

	if _, err := fmt.Fprintln(r.Out, text); err != nil {
		return fmt.Errorf("write transcription: %w", err)
	}
	return nil
}
