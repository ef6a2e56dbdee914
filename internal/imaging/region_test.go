package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCropRegion(t *testing.T) {
	img := createPatternImage(100, 100)

	cropped, err := CropRegion(img, Region{X1: 0, Y1: 0, X2: 50, Y2: 40})
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}

	b := cropped.Bounds()
	if b.Dx() != 50 || b.Dy() != 40 {
		t.Errorf("dimensions: got %dx%d, want 50x40", b.Dx(), b.Dy())
	}

	// Top-left quadrant is entirely red
	r, g, bl, _ := cropped.At(b.Min.X+25, b.Min.Y+20).RGBA()
	if uint8(r>>8) != 255 || uint8(g>>8) != 0 || uint8(bl>>8) != 0 {
		t.Errorf("cropped color: got (%d,%d,%d), want (255,0,0)", r>>8, g>>8, bl>>8)
	}
}

func TestCropRegion_GrayStaysGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	img.SetGray(6, 6, color.Gray{Y: 99})

	cropped, err := CropRegion(img, Region{X1: 5, Y1: 5, X2: 8, Y2: 8})
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}
	if cropped.ColorModel() != color.GrayModel {
		t.Errorf("color model changed to %v", cropped.ColorModel())
	}
	r, err := ToRaster(cropped)
	if err != nil {
		t.Fatalf("ToRaster failed: %v", err)
	}
	if r.Width != 3 || r.Height != 3 || r.Pix[r.Offset(1, 1, 0)] != 99 {
		t.Errorf("cropped raster: %dx%d pix %v", r.Width, r.Height, r.Pix)
	}
}

func TestCropRegion_OutOfBounds(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name string
		r    Region
	}{
		{"x1 negative", Region{-1, 0, 50, 50}},
		{"y1 negative", Region{0, -1, 50, 50}},
		{"x2 too large", Region{0, 0, 101, 50}},
		{"y2 too large", Region{0, 0, 50, 101}},
		{"all out of bounds", Region{-1, -1, 200, 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CropRegion(img, tt.r); err == nil {
				t.Error("CropRegion should fail for out-of-bounds coordinates")
			}
		})
	}
}

func TestCropRegion_InvalidRegion(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name string
		r    Region
	}{
		{"x1 >= x2", Region{50, 0, 50, 50}},
		{"x1 > x2", Region{60, 0, 50, 50}},
		{"y1 >= y2", Region{0, 50, 50, 50}},
		{"zero area", Region{50, 50, 50, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CropRegion(img, tt.r); err == nil {
				t.Error("CropRegion should fail for invalid region")
			}
		})
	}
}

func TestEncodePNG(t *testing.T) {
	img := createPatternImage(40, 20)

	result, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if result.Width != 40 || result.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 40x20", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	back, err := png.Decode(bytes.NewReader(decoded))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	r, g, b, _ := back.At(35, 15).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("bottom-right color: got (%d,%d,%d), want white", r>>8, g>>8, b>>8)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")

	if err := Save(createInMemoryImage(10, 10, color.RGBA{1, 2, 3, 255}), path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("saved file missing: %v", err)
	}

	if err := Save(createInMemoryImage(10, 10, color.Black), filepath.Join(dir, "out.unknownext")); err == nil {
		t.Error("Save should fail for an unsupported extension")
	}
}

func TestIsWritableFormat(t *testing.T) {
	for ext, want := range map[string]bool{
		"png":  true,
		".jpg": true,
		"TIFF": true,
		"bmp":  true,
		"webp": false,
		"":     false,
	} {
		if got := IsWritableFormat(ext); got != want {
			t.Errorf("IsWritableFormat(%q) = %v, want %v", ext, got, want)
		}
	}
}
