package imaging

import (
	"errors"
	"testing"

	"github.com/ironsheep/image-tone-mcp/internal/tonemap"
)

func TestRenderHistogram(t *testing.T) {
	var h tonemap.Histogram
	h[0], h[128], h[255] = 10, 40, 20

	img, err := RenderHistogram(h, nil, 256, 100)
	if err != nil {
		t.Fatalf("RenderHistogram failed: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 256 || b.Dy() != 100 {
		t.Fatalf("dimensions: got %dx%d, want 256x100", b.Dx(), b.Dy())
	}

	// Background stays white above the bars
	r, g, bl, _ := img.At(64, 10).RGBA()
	if r>>8 != 255 || g>>8 != 255 || bl>>8 != 255 {
		t.Errorf("background: got (%d,%d,%d), want white", r>>8, g>>8, bl>>8)
	}

	// The tallest bar (level 128) reaches close to the top margin
	barX := 128.5 * (248.0 / 256.0)
	x := 4 + int(barX)
	r, g, bl, _ = img.At(x, 10).RGBA()
	if r>>8 == 255 && g>>8 == 255 && bl>>8 == 255 {
		t.Errorf("tallest bar missing at (%d,10)", x)
	}
}

func TestRenderHistogram_WithChannels(t *testing.T) {
	var h tonemap.Histogram
	h[10] = 5
	channels := [3]tonemap.Histogram{}
	channels[0][10] = 5
	channels[1][20] = 5
	channels[2][30] = 5

	img, err := RenderHistogram(h, &channels, 128, 64)
	if err != nil {
		t.Fatalf("RenderHistogram failed: %v", err)
	}
	if img.Bounds().Dx() != 128 || img.Bounds().Dy() != 64 {
		t.Errorf("dimensions: got %v", img.Bounds())
	}
}

func TestRenderHistogram_EmptyHistogram(t *testing.T) {
	if _, err := RenderHistogram(tonemap.Histogram{}, nil, 256, 64); err != nil {
		t.Errorf("empty histogram should still render: %v", err)
	}
}

func TestRenderHistogram_TooSmall(t *testing.T) {
	_, err := RenderHistogram(tonemap.Histogram{}, nil, 10, 10)
	if !errors.Is(err, tonemap.ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}
