package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/aae42/clippy-clippy/internal/clipboard"
	"github.com/aae42/clippy-clippy/internal/common"
)

// Encoded is an immutable PNG rendition of a clipboard image together with
// its base64 text form. The base64 uses the standard padded alphabet, so
// any compliant decoder on the API side reproduces the PNG bytes exactly.
type Encoded struct {
	PNG    []byte
	Base64 string
}

// DataURL returns the data URI embedded into the chat request.
func (e *Encoded) DataURL() string {
	return "data:" + common.MimeImagePNG + ";base64," + e.Base64
}

// EncodeError reports a pixel buffer that violates the image invariants.
// Not expected in normal operation; fatal for the run.
type EncodeError struct {
	Reason string
}

func (e *EncodeError) Error() string { return "encode image: " + e.Reason }

// Encode converts raw RGBA pixels into a lossless PNG plus its base64 form.
// PNG is deliberate: lossy compression could destroy the fine text detail
// the model has to transcribe.
func Encode(img *clipboard.Image) (*Encoded, error) {
	if img == nil {
		return nil, &EncodeError{Reason: "nil image"}
	}
	if !img.Valid() {
		return nil, &EncodeError{
			Reason: fmt.Sprintf("buffer length %d does not match %dx%d RGBA", len(img.Pix), img.Width, img.Height),
		}
	}

	rgba := &image.RGBA{
		Pix:    img.Pix,
		Stride: 4 * img.Width,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, &EncodeError{Reason: err.Error()}
	}

	return &Encoded{
		PNG:    buf.Bytes(),
		Base64: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}
