package clipboard

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestImage_Valid(t *testing.T) {
	cases := []struct {
		name string
		img  Image
		want bool
	}{
		{"ok", Image{Pix: make([]byte, 2*3*4), Width: 2, Height: 3}, true},
		{"short buffer", Image{Pix: make([]byte, 10), Width: 2, Height: 3}, false},
		{"long buffer", Image{Pix: make([]byte, 100), Width: 2, Height: 3}, false},
		{"zero width", Image{Pix: nil, Width: 0, Height: 3}, false},
		{"zero height", Image{Pix: nil, Width: 2, Height: 0}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.img.Valid(); got != c.want {
				t.Fatalf("Valid() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestDecodePNG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 3))
	src.Set(1, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	img, err := decodePNG(buf.Bytes())
	if err != nil {
		t.Fatalf("decodePNG error: %v", err)
	}
	if img.Width != 4 || img.Height != 3 {
		t.Fatalf("size %dx%d, want 4x3", img.Width, img.Height)
	}
	if !img.Valid() {
		t.Fatalf("decoded image violates buffer invariant: %d bytes for %dx%d", len(img.Pix), img.Width, img.Height)
	}
	i := (2*img.Width + 1) * 4
	if img.Pix[i] != 10 || img.Pix[i+1] != 20 || img.Pix[i+2] != 30 || img.Pix[i+3] != 255 {
		t.Fatalf("pixel (1,2) = %v", img.Pix[i:i+4])
	}
}

func TestDecodePNG_NonImageContent(t *testing.T) {
	// Text or garbage posing as image content must map to ErrNoImage,
	// never to a corrupt Image.
	for _, data := range [][]byte{
		[]byte("just some clipboard text"),
		{0x89, 0x50, 0x4e}, // truncated PNG signature
	} {
		img, err := decodePNG(data)
		if !errors.Is(err, ErrNoImage) {
			t.Fatalf("decodePNG(%q) err = %v, want ErrNoImage", data, err)
		}
		if img != nil {
			t.Fatalf("decodePNG returned image %+v alongside error", img)
		}
	}
}

func TestAccessError_Unwrap(t *testing.T) {
	inner := errors.New("display not available")
	err := &AccessError{Err: inner}
	if !errors.Is(err, inner) {
		t.Fatal("AccessError must unwrap to the underlying cause")
	}
}
