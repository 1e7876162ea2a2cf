package clipboard

import "errors"

const bytesPerPixel = 4 // 8-bit RGBA

// Image is a decoded clipboard image: tightly packed 8-bit RGBA pixels.
type Image struct {
	Pix    []byte
	Width  int
	Height int
}

// Valid reports whether the pixel buffer matches the declared dimensions.
// Invalid images are rejected before encoding.
func (img *Image) Valid() bool {
	return img.Width > 0 && img.Height > 0 && len(img.Pix) == img.Width*img.Height*bytesPerPixel
}

// ErrNoImage is returned when the clipboard holds no image content
// (empty, plain text, file lists, ...).
var ErrNoImage = errors.New("no image on the clipboard")

// AccessError wraps an OS-level failure to reach the clipboard at all,
// e.g. no graphical session or the clipboard held by another process.
type AccessError struct {
	Err error
}

func (e *AccessError) Error() string { return "clipboard access: " + e.Err.Error() }

func (e *AccessError) Unwrap() error { return e.Err }

// Source yields the current clipboard image. Implementations must return
// ErrNoImage for non-image content rather than coercing it, and never
// mutate the clipboard.
type Source interface {
	Read() (*Image, error)
}
