package tonemap

import (
	"fmt"
	"math"
	"strings"
)

// LUT maps an input intensity (the index) to an output intensity.
// Every entry is defined; monotonicity is not required.
type LUT [Levels]uint8

// IdentityLUT returns the table that maps every level to itself.
func IdentityLUT() LUT {
	var lut LUT
	for i := range lut {
		lut[i] = uint8(i)
	}
	return lut
}

// Table renders lut as one "input -> output" line per level, for display.
func (lut LUT) Table() string {
	var b strings.Builder
	b.Grow(Levels * 12)
	for i, v := range lut {
		fmt.Fprintf(&b, "%3d -> %3d\n", i, v)
	}
	return b.String()
}

// LUTKind selects one of the table constructions below.
type LUTKind int

const (
	Equalization LUTKind = iota
	ClippedStretch
	ManualRangeStretch
)

var lutKindNames = map[LUTKind]string{
	Equalization:       "equalize",
	ClippedStretch:     "clip_stretch",
	ManualRangeStretch: "range_stretch",
}

func (k LUTKind) String() string {
	if name, ok := lutKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("LUTKind(%d)", int(k))
}

// ParseLUTKind returns the kind named by s ("equalize", "clip_stretch" or
// "range_stretch").
func ParseLUTKind(s string) (LUTKind, error) {
	for kind, name := range lutKindNames {
		if name == s {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown lut kind %q", ErrInvalidInput, s)
}

// BuildEqualizationLUT derives a histogram-equalization table.
//
// With cdf[i] the fraction of totalSamples at or below level i and
// d0 = cdf[0], the table is:
//
//	lut[i] = floor((cdf[i] - d0) / (1 - d0) * 255)
//
// The ratio is evaluated on integer counts so a flat histogram maps exactly
// onto the identity. When all mass sits at level 0 (d0 == 1) the table is
// all zeros, which leaves such an image unchanged.
func BuildEqualizationLUT(h Histogram, totalSamples int) (LUT, error) {
	var lut LUT
	if totalSamples <= 0 {
		return lut, fmt.Errorf("%w: total samples %d must be positive", ErrInvalidInput, totalSamples)
	}

	cum := h.Cumulative()
	denom := totalSamples - h[0]
	if denom <= 0 {
		return lut, nil
	}
	for i := range lut {
		v := (cum[i] - h[0]) * 255 / denom
		lut[i] = clampLevel(v)
	}
	return lut, nil
}

// BuildClippedStretchLUT derives a linear contrast stretch that ignores
// floor(totalSamples*clipFraction) samples at each end of the histogram.
//
// The lower bound is the first level at which the count from the dark end
// reaches the clip count; the upper bound is the last level at which the
// count from the bright end reaches it. Levels below the lower bound map to
// 0, above the upper bound to 255, and in between linearly (rounded). If the
// bounds collapse (upper <= lower) the identity table is returned.
func BuildClippedStretchLUT(h Histogram, totalSamples int, clipFraction float64) (LUT, error) {
	if totalSamples <= 0 {
		return LUT{}, fmt.Errorf("%w: total samples %d must be positive", ErrInvalidInput, totalSamples)
	}
	if math.IsNaN(clipFraction) || clipFraction < 0 || clipFraction > 1 {
		return LUT{}, fmt.Errorf("%w: clip fraction %v must be within [0, 1]", ErrInvalidRange, clipFraction)
	}

	lower, upper := clipBounds(h, int(math.Floor(float64(totalSamples)*clipFraction)))
	if upper <= lower {
		return IdentityLUT(), nil
	}

	var lut LUT
	span := upper - lower
	for i := range lut {
		switch {
		case i < lower:
			lut[i] = 0
		case i > upper:
			lut[i] = 255
		default:
			// round half up on integers: (2*n*255 + span) / (2*span)
			lut[i] = clampLevel((2*(i-lower)*255 + span) / (2 * span))
		}
	}
	return lut, nil
}

// clipBounds finds the stretch bounds for BuildClippedStretchLUT. Defaults
// are 0 and 255 when the clip count is never reached.
func clipBounds(h Histogram, clipCount int) (lower, upper int) {
	lower, upper = 0, Levels-1

	sum := 0
	for i := 0; i < Levels; i++ {
		sum += h[i]
		if sum >= clipCount {
			lower = i
			break
		}
	}

	sum = 0
	for i := Levels - 1; i >= 0; i-- {
		sum += h[i]
		if sum >= clipCount {
			upper = i
			break
		}
	}
	return lower, upper
}

// BuildRangeStretchLUT maps the source range [p1, p2] onto the target range
// [q3, q4]. Levels at or below p1 map to q3, at or above p2 to q4, and levels
// in between are interpolated linearly and truncated.
//
// Both ranges must be non-empty and within [0, 255].
func BuildRangeStretchLUT(p1, p2, q3, q4 int) (LUT, error) {
	var lut LUT
	if p1 < 0 || p2 > 255 || p1 >= p2 {
		return lut, fmt.Errorf("%w: source range [%d, %d] must satisfy 0 <= p1 < p2 <= 255", ErrInvalidRange, p1, p2)
	}
	if q3 < 0 || q4 > 255 || q3 >= q4 {
		return lut, fmt.Errorf("%w: target range [%d, %d] must satisfy 0 <= q3 < q4 <= 255", ErrInvalidRange, q3, q4)
	}

	for i := range lut {
		switch {
		case i <= p1:
			lut[i] = uint8(q3)
		case i >= p2:
			lut[i] = uint8(q4)
		default:
			lut[i] = uint8(q3 + (i-p1)*(q4-q3)/(p2-p1))
		}
	}
	return lut, nil
}

func clampLevel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
