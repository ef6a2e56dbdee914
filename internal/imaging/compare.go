package imaging

import (
	"fmt"
	"math"

	"github.com/ironsheep/image-tone-mcp/internal/tonemap"
)

// DefaultDiffThreshold is the mean per-channel difference above which two
// pixels count as different.
const DefaultDiffThreshold = 10

// Size is a width and height in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ToneComparison describes how two rasters differ in tone.
type ToneComparison struct {
	SimilarityScore float64 `json:"similarity_score"`
	PixelsDifferent int     `json:"pixels_different"`
	TotalPixels     int     `json:"total_pixels"`
	SameSize        bool    `json:"same_size"`
	Size1           Size    `json:"size1"`
	Size2           Size    `json:"size2"`
	MeanAbsDiff     float64 `json:"mean_abs_diff"`

	// MeanShift is the overall mean of the second raster minus that of the
	// first; positive means the second is brighter.
	MeanShift float64 `json:"mean_shift"`

	// ContrastRatio is the ratio of overall standard deviations (second over
	// first), 0 when the first raster is flat.
	ContrastRatio float64 `json:"contrast_ratio"`
}

// CompareRasters compares a and b pixel by pixel over their overlapping
// top-left area and compares their overall histogram statistics.
//
// A pixel differs when the mean absolute difference of its channels exceeds
// threshold. Both rasters must have the same channel layout.
func CompareRasters(a, b *tonemap.Image, threshold int) (*ToneComparison, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if threshold < 0 || threshold >= tonemap.Levels {
		return nil, fmt.Errorf("%w: threshold %d outside [0,%d]", tonemap.ErrInvalidRange, threshold, tonemap.Levels-1)
	}
	if a.Channels != b.Channels {
		return nil, fmt.Errorf("%w: cannot compare %s with %s", tonemap.ErrDimensionMismatch, a.Channels, b.Channels)
	}

	// For comparison, use the smaller dimensions
	minW := min(a.Width, b.Width)
	minH := min(a.Height, b.Height)
	ch := int(a.Channels)

	totalPixels := minW * minH
	pixelsDifferent := 0
	var totalDiff float64

	for y := 0; y < minH; y++ {
		for x := 0; x < minW; x++ {
			ia, ib := a.Offset(x, y, 0), b.Offset(x, y, 0)
			sum := 0
			for c := 0; c < ch; c++ {
				sum += absDiff(a.Pix[ia+c], b.Pix[ib+c])
			}
			diff := float64(sum) / float64(ch)
			totalDiff += diff
			if diff > float64(threshold) {
				pixelsDifferent++
			}
		}
	}

	ha, err := tonemap.BuildOverallHistogram(a)
	if err != nil {
		return nil, err
	}
	hb, err := tonemap.BuildOverallHistogram(b)
	if err != nil {
		return nil, err
	}
	sa, sb := tonemap.ComputeStatistics(ha), tonemap.ComputeStatistics(hb)

	contrast := 0.0
	if sa.StdDev > 0 {
		contrast = sb.StdDev / sa.StdDev
	}

	similarity := 1.0 - float64(pixelsDifferent)/float64(totalPixels)
	return &ToneComparison{
		SimilarityScore: math.Round(similarity*1000) / 1000,
		PixelsDifferent: pixelsDifferent,
		TotalPixels:     totalPixels,
		SameSize:        a.Width == b.Width && a.Height == b.Height,
		Size1:           Size{a.Width, a.Height},
		Size2:           Size{b.Width, b.Height},
		MeanAbsDiff:     math.Round(totalDiff/float64(totalPixels)*100) / 100,
		MeanShift:       math.Round((sb.Mean-sa.Mean)*100) / 100,
		ContrastRatio:   math.Round(contrast*1000) / 1000,
	}, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
