package tonemap

import "fmt"

// Histogram counts samples per intensity level. Index is the level (0-255),
// value is the number of samples at that level.
type Histogram [Levels]int

// Total returns the number of samples counted by h.
func (h *Histogram) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// Cumulative returns the running sum of h, so that c[i] is the number of
// samples at or below level i.
func (h *Histogram) Cumulative() [Levels]int {
	var c [Levels]int
	c[0] = h[0]
	for i := 1; i < Levels; i++ {
		c[i] = c[i-1] + h[i]
	}
	return c
}

// BuildOverallHistogram counts the overall intensity of every pixel in img.
//
// Grayscale pixels contribute their single sample. RGB pixels contribute the
// unweighted mean (R+G+B)/3, truncated by integer division. The result sums
// to img.PixelCount().
func BuildOverallHistogram(img *Image) (Histogram, error) {
	var h Histogram
	if err := img.Validate(); err != nil {
		return h, err
	}

	switch img.Channels {
	case Gray:
		for _, v := range img.Pix {
			h[v]++
		}
	case RGB:
		for i := 0; i < len(img.Pix); i += 3 {
			sum := int(img.Pix[i]) + int(img.Pix[i+1]) + int(img.Pix[i+2])
			h[sum/3]++
		}
	}
	return h, nil
}

// BuildColorHistograms counts each of the R, G and B channels of img
// independently. Each histogram sums to img.PixelCount().
//
// Grayscale images have no colour planes and are rejected with
// ErrInvalidInput.
func BuildColorHistograms(img *Image) ([3]Histogram, error) {
	var hs [3]Histogram
	if err := img.Validate(); err != nil {
		return hs, err
	}
	if img.Channels != RGB {
		return hs, fmt.Errorf("%w: colour histograms need an rgb image, got %s", ErrInvalidInput, img.Channels)
	}

	for i := 0; i < len(img.Pix); i += 3 {
		hs[0][img.Pix[i]]++
		hs[1][img.Pix[i+1]]++
		hs[2][img.Pix[i+2]]++
	}
	return hs, nil
}
