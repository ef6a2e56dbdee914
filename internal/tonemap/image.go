package tonemap

import "fmt"

// Levels is the number of intensity levels in an 8-bit channel.
const Levels = 256

// Channels is the number of samples stored per pixel.
type Channels int

const (
	// Gray images carry one intensity sample per pixel.
	Gray Channels = 1
	// RGB images carry red, green and blue samples, in that order.
	RGB Channels = 3
)

// Valid reports whether c is one of the supported layouts.
func (c Channels) Valid() bool {
	switch c {
	case Gray, RGB:
		return true
	default:
		return false
	}
}

func (c Channels) String() string {
	switch c {
	case Gray:
		return "gray"
	case RGB:
		return "rgb"
	default:
		return fmt.Sprintf("Channels(%d)", int(c))
	}
}

// Image is a rectangular 8-bit raster stored as a flat sample buffer.
//
// The sample for pixel (x, y) and channel c is Pix[(y*Width+x)*Channels+c].
// The image is owned by its caller; functions in this package never retain it
// after they return.
type Image struct {
	Width    int
	Height   int
	Channels Channels
	Pix      []uint8
}

// NewImage allocates a zeroed image with the given shape.
func NewImage(width, height int, channels Channels) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d must be positive", ErrInvalidInput, width, height)
	}
	if !channels.Valid() {
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrInvalidInput, int(channels))
	}
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*int(channels)),
	}, nil
}

// Validate checks the shape invariants of img.
func (img *Image) Validate() error {
	if img == nil {
		return fmt.Errorf("%w: image is nil", ErrInvalidInput)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: image size %dx%d must be positive", ErrInvalidInput, img.Width, img.Height)
	}
	if !img.Channels.Valid() {
		return fmt.Errorf("%w: unsupported channel count %d", ErrInvalidInput, int(img.Channels))
	}
	if want := img.Width * img.Height * int(img.Channels); len(img.Pix) != want {
		return fmt.Errorf("%w: pixel buffer has %d samples, want %d", ErrInvalidInput, len(img.Pix), want)
	}
	return nil
}

// PixelCount returns Width*Height.
func (img *Image) PixelCount() int {
	return img.Width * img.Height
}

// Offset returns the index of channel c of pixel (x, y) in Pix.
func (img *Image) Offset(x, y, c int) int {
	return (y*img.Width+x)*int(img.Channels) + c
}

// Clone returns a deep copy of img.
func (img *Image) Clone() *Image {
	pix := make([]uint8, len(img.Pix))
	copy(pix, img.Pix)
	return &Image{
		Width:    img.Width,
		Height:   img.Height,
		Channels: img.Channels,
		Pix:      pix,
	}
}
