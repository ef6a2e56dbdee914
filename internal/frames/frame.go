// Package frames averages sequences of equally sized images.
//
// Images are widened into Frames, whose float64 samples can be summed over
// long sequences without overflow or truncation. OverallAverage reduces a
// whole sequence to one frame; MovingAverage and MovingWindow produce the
// trailing sliding-window average used to build moving-average videos.
//
// Frame sequences are plain caller-owned slices. Nothing in this package
// keeps state between calls except a MovingWindow, which the caller owns.
package frames

import (
	"fmt"
	"math"

	"github.com/ironsheep/image-tone-mcp/internal/tonemap"
)

// Frame is an image widened to float64 samples, laid out exactly like the
// tonemap.Image it came from.
type Frame struct {
	Width    int
	Height   int
	Channels tonemap.Channels
	Data     []float64
}

// NewFrame allocates a zeroed frame.
func NewFrame(width, height int, channels tonemap.Channels) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: frame size %dx%d must be positive", tonemap.ErrInvalidInput, width, height)
	}
	if !channels.Valid() {
		return nil, fmt.Errorf("%w: unsupported channel count %d", tonemap.ErrInvalidInput, int(channels))
	}
	return &Frame{
		Width:    width,
		Height:   height,
		Channels: channels,
		Data:     make([]float64, width*height*int(channels)),
	}, nil
}

// FromImage widens img into a new Frame.
func FromImage(img *tonemap.Image) (*Frame, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	f := &Frame{
		Width:    img.Width,
		Height:   img.Height,
		Channels: img.Channels,
		Data:     make([]float64, len(img.Pix)),
	}
	for i, v := range img.Pix {
		f.Data[i] = float64(v)
	}
	return f, nil
}

// ToImage narrows f back to 8-bit samples, rounding half up and clamping to
// [0, 255].
func (f *Frame) ToImage() (*tonemap.Image, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	img := &tonemap.Image{
		Width:    f.Width,
		Height:   f.Height,
		Channels: f.Channels,
		Pix:      make([]uint8, len(f.Data)),
	}
	for i, v := range f.Data {
		r := math.Floor(v + 0.5)
		switch {
		case math.IsNaN(r) || r < 0:
			img.Pix[i] = 0
		case r > 255:
			img.Pix[i] = 255
		default:
			img.Pix[i] = uint8(r)
		}
	}
	return img, nil
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() *Frame {
	data := make([]float64, len(f.Data))
	copy(data, f.Data)
	return &Frame{Width: f.Width, Height: f.Height, Channels: f.Channels, Data: data}
}

func (f *Frame) validate() error {
	if f == nil {
		return fmt.Errorf("%w: frame is nil", tonemap.ErrInvalidInput)
	}
	if f.Width <= 0 || f.Height <= 0 || !f.Channels.Valid() {
		return fmt.Errorf("%w: frame shape %dx%dx%d is invalid", tonemap.ErrInvalidInput, f.Width, f.Height, int(f.Channels))
	}
	if want := f.Width * f.Height * int(f.Channels); len(f.Data) != want {
		return fmt.Errorf("%w: frame has %d samples, want %d", tonemap.ErrInvalidInput, len(f.Data), want)
	}
	return nil
}

func (f *Frame) sameShape(o *Frame) bool {
	return f.Width == o.Width && f.Height == o.Height && f.Channels == o.Channels
}

// add accumulates o into f.
func (f *Frame) add(o *Frame) {
	for i, v := range o.Data {
		f.Data[i] += v
	}
}

// sub removes o from f.
func (f *Frame) sub(o *Frame) {
	for i, v := range o.Data {
		f.Data[i] -= v
	}
}

// scaled returns a new frame holding f divided by n.
func (f *Frame) scaled(n int) *Frame {
	out := &Frame{Width: f.Width, Height: f.Height, Channels: f.Channels, Data: make([]float64, len(f.Data))}
	d := float64(n)
	for i, v := range f.Data {
		out.Data[i] = v / d
	}
	return out
}

// checkSequence validates every frame and requires all of them to share the
// shape of the first.
func checkSequence(frames []*Frame) error {
	for i, f := range frames {
		if err := f.validate(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if !f.sameShape(frames[0]) {
			return fmt.Errorf("%w: frame %d is %dx%dx%d, frame 0 is %dx%dx%d", tonemap.ErrDimensionMismatch,
				i, f.Width, f.Height, int(f.Channels),
				frames[0].Width, frames[0].Height, int(frames[0].Channels))
		}
	}
	return nil
}
