package clipboard

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"

	xclip "golang.design/x/clipboard"
)

// System reads the OS clipboard. The platform layer hands image content
// back as PNG bytes, which are decoded to raw RGBA here so the rest of the
// pipeline can validate dimensions against the buffer.
type System struct{}

var _ Source = (*System)(nil)

// NewSystem initializes the OS clipboard. Initialization fails in
// environments without a graphical session, which surfaces as AccessError.
func NewSystem() (*System, error) {
	if err := xclip.Init(); err != nil {
		return nil, &AccessError{Err: err}
	}
	return &System{}, nil
}

// Read returns the clipboard image, or ErrNoImage when the clipboard holds
// anything other than an image.
func (s *System) Read() (*Image, error) {
	data := xclip.Read(xclip.FmtImage)
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	return decodePNG(data)
}

func decodePNG(data []byte) (*Image, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		// The platform advertised image content it cannot actually deliver.
		return nil, ErrNoImage
	}
	bounds := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	return &Image{
		Pix:    rgba.Pix,
		Width:  rgba.Rect.Dx(),
		Height: rgba.Rect.Dy(),
	}, nil
}
