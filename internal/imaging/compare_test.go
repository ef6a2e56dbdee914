package imaging

import (
	"errors"
	"math"
	"testing"

	"github.com/ironsheep/image-tone-mcp/internal/tonemap"
)

func grayRaster(t *testing.T, w, h int, pix ...uint8) *tonemap.Image {
	t.Helper()
	r, err := tonemap.NewImage(w, h, tonemap.Gray)
	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}
	copy(r.Pix, pix)
	return r
}

func TestCompareRasters_Identical(t *testing.T) {
	a := grayRaster(t, 2, 2, 10, 20, 30, 40)

	result, err := CompareRasters(a, a.Clone(), DefaultDiffThreshold)
	if err != nil {
		t.Fatalf("CompareRasters failed: %v", err)
	}
	if result.SimilarityScore != 1 || result.PixelsDifferent != 0 || result.MeanAbsDiff != 0 {
		t.Errorf("identical rasters: got %+v", result)
	}
	if !result.SameSize || result.TotalPixels != 4 {
		t.Errorf("size: got %+v", result)
	}
	if result.MeanShift != 0 || result.ContrastRatio != 1 {
		t.Errorf("statistics: shift %v contrast %v, want 0 and 1", result.MeanShift, result.ContrastRatio)
	}
}

func TestCompareRasters_BrightenedAndStretched(t *testing.T) {
	a := grayRaster(t, 4, 1, 100, 100, 110, 110)
	b := grayRaster(t, 4, 1, 100, 105, 140, 160)

	result, err := CompareRasters(a, b, DefaultDiffThreshold)
	if err != nil {
		t.Fatalf("CompareRasters failed: %v", err)
	}

	// diffs 0, 5, 30, 50
	if result.PixelsDifferent != 2 {
		t.Errorf("PixelsDifferent: got %d, want 2", result.PixelsDifferent)
	}
	if result.SimilarityScore != 0.5 {
		t.Errorf("SimilarityScore: got %v, want 0.5", result.SimilarityScore)
	}
	if result.MeanAbsDiff != 21.25 {
		t.Errorf("MeanAbsDiff: got %v, want 21.25", result.MeanAbsDiff)
	}
	// means 105 and 126.25
	if result.MeanShift != 21.25 {
		t.Errorf("MeanShift: got %v, want 21.25", result.MeanShift)
	}
	if result.ContrastRatio <= 1 {
		t.Errorf("ContrastRatio: got %v, want > 1", result.ContrastRatio)
	}
}

func TestCompareRasters_RGBAveragesChannels(t *testing.T) {
	a, _ := tonemap.NewImage(1, 1, tonemap.RGB)
	b, _ := tonemap.NewImage(1, 1, tonemap.RGB)
	copy(b.Pix, []uint8{30, 0, 0})

	result, err := CompareRasters(a, b, DefaultDiffThreshold)
	if err != nil {
		t.Fatalf("CompareRasters failed: %v", err)
	}
	if result.MeanAbsDiff != 10 || result.PixelsDifferent != 0 {
		t.Errorf("got %+v, want mean diff 10 and no different pixels", result)
	}
}

func TestCompareRasters_DifferentSizes(t *testing.T) {
	a := grayRaster(t, 3, 1, 1, 2, 3)
	b := grayRaster(t, 2, 2, 1, 2, 9, 9)

	result, err := CompareRasters(a, b, DefaultDiffThreshold)
	if err != nil {
		t.Fatalf("CompareRasters failed: %v", err)
	}
	if result.SameSize || result.TotalPixels != 2 {
		t.Errorf("got %+v, want overlap of 2 pixels", result)
	}
	if result.Size1 != (Size{3, 1}) || result.Size2 != (Size{2, 2}) {
		t.Errorf("sizes: got %v and %v", result.Size1, result.Size2)
	}
}

func TestCompareRasters_FlatFirst(t *testing.T) {
	a := grayRaster(t, 2, 1, 50, 50)
	b := grayRaster(t, 2, 1, 0, 255)

	result, err := CompareRasters(a, b, DefaultDiffThreshold)
	if err != nil {
		t.Fatalf("CompareRasters failed: %v", err)
	}
	if result.ContrastRatio != 0 || math.IsNaN(result.ContrastRatio) {
		t.Errorf("ContrastRatio: got %v, want 0", result.ContrastRatio)
	}
}

func TestCompareRasters_ChannelMismatch(t *testing.T) {
	a := grayRaster(t, 1, 1, 0)
	b, _ := tonemap.NewImage(1, 1, tonemap.RGB)

	if _, err := CompareRasters(a, b, DefaultDiffThreshold); !errors.Is(err, tonemap.ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
	if _, err := CompareRasters(a, a, 256); !errors.Is(err, tonemap.ErrInvalidRange) {
		t.Errorf("threshold 256: got %v, want ErrInvalidRange", err)
	}
	if _, err := CompareRasters(nil, b, DefaultDiffThreshold); !errors.Is(err, tonemap.ErrInvalidInput) {
		t.Errorf("nil raster: got %v, want ErrInvalidInput", err)
	}
}
