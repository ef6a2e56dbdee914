package frames

import (
	"fmt"

	"github.com/ironsheep/image-tone-mcp/internal/tonemap"
)

// OverallAverage returns the element-wise mean of all frames.
//
// At least one frame is required, and every frame must share the width,
// height and channel count of the first.
func OverallAverage(frames []*Frame) (*Frame, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: overall average needs at least one frame", tonemap.ErrEmptyInput)
	}
	if err := checkSequence(frames); err != nil {
		return nil, err
	}

	sum := &Frame{
		Width:    frames[0].Width,
		Height:   frames[0].Height,
		Channels: frames[0].Channels,
		Data:     make([]float64, len(frames[0].Data)),
	}
	for _, f := range frames {
		sum.add(f)
	}
	return sum.scaled(len(frames)), nil
}

// MovingAverage returns the trailing moving average of frames over
// windowSize frames.
//
// Output k is the mean of frames[k : k+windowSize], so the result holds
// max(0, len(frames)-windowSize+1) frames in input order. An empty input
// yields an empty result.
func MovingAverage(frames []*Frame, windowSize int) ([]*Frame, error) {
	w, err := NewMovingWindow(windowSize)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return []*Frame{}, nil
	}
	if err := checkSequence(frames); err != nil {
		return nil, err
	}

	n := len(frames) - windowSize + 1
	if n < 0 {
		n = 0
	}
	out := make([]*Frame, 0, n)
	for _, f := range frames {
		avg, ok, err := w.Push(f)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, avg)
		}
	}
	return out, nil
}

// MovingWindow computes a trailing moving average one frame at a time.
//
// It keeps a running sum of the frames currently inside the window. Once the
// window is full each Push emits sum/size and then removes the oldest frame
// from the sum, so a caller can stop between frames and resume later with
// the same window. The window holds references to at most size-1 caller
// frames between calls; those frames must not be modified until they leave
// the window.
//
// A MovingWindow is not safe for concurrent use.
type MovingWindow struct {
	size    int
	pending []*Frame
	sum     *Frame
}

// NewMovingWindow returns an empty window averaging size frames.
func NewMovingWindow(size int) (*MovingWindow, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: window size %d must be at least 1", tonemap.ErrInvalidInput, size)
	}
	return &MovingWindow{size: size}, nil
}

// Size returns the number of frames averaged per output.
func (w *MovingWindow) Size() int {
	return w.size
}

// Push adds f at the leading edge of the window. Once the window is full it
// returns the average of the last Size frames and true; before that it
// returns nil and false.
func (w *MovingWindow) Push(f *Frame) (*Frame, bool, error) {
	if err := f.validate(); err != nil {
		return nil, false, err
	}
	if w.sum == nil {
		w.sum = &Frame{Width: f.Width, Height: f.Height, Channels: f.Channels, Data: make([]float64, len(f.Data))}
	} else if !w.sum.sameShape(f) {
		return nil, false, fmt.Errorf("%w: frame is %dx%dx%d, window holds %dx%dx%d", tonemap.ErrDimensionMismatch,
			f.Width, f.Height, int(f.Channels), w.sum.Width, w.sum.Height, int(w.sum.Channels))
	}

	w.sum.add(f)
	w.pending = append(w.pending, f)
	if len(w.pending) < w.size {
		return nil, false, nil
	}

	avg := w.sum.scaled(w.size)
	w.sum.sub(w.pending[0])
	w.pending[0] = nil
	w.pending = w.pending[1:]
	return avg, true, nil
}

// Reset empties the window so it can start a new sequence.
func (w *MovingWindow) Reset() {
	w.pending = nil
	w.sum = nil
}
