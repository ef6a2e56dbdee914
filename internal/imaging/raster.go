package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-tone-mcp/internal/tonemap"
)

// channelsOf reports the tone layout an image converts to: grayscale models
// become Gray, everything else RGB.
func channelsOf(img image.Image) tonemap.Channels {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return tonemap.Gray
	default:
		return tonemap.RGB
	}
}

// ToRaster converts a decoded image into an 8-bit tone raster.
//
// Grayscale images (image.Gray, image.Gray16) become single-channel rasters;
// 16-bit samples keep their high byte. All other images are converted to
// non-premultiplied RGBA and become three-channel rasters. Alpha is dropped.
//
// The returned raster is a copy; img is never modified.
func ToRaster(img image.Image) (*tonemap.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: image is nil", tonemap.ErrInvalidInput)
	}
	bounds := img.Bounds()
	out, err := tonemap.NewImage(bounds.Dx(), bounds.Dy(), channelsOf(img))
	if err != nil {
		return nil, err
	}

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < out.Height; y++ {
			row := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			copy(out.Pix[y*out.Width:(y+1)*out.Width], row[:out.Width])
		}
		return out, nil
	case *image.Gray16:
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				out.Pix[y*out.Width+x] = uint8(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y >> 8)
			}
		}
		return out, nil
	}

	if out.Channels == tonemap.Gray {
		// other grayscale implementations
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				g := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
				out.Pix[y*out.Width+x] = g.Y
			}
		}
		return out, nil
	}

	// imaging.Clone always returns an NRGBA image anchored at (0, 0).
	nrgba := imaging.Clone(img)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			i := nrgba.PixOffset(x, y)
			o := out.Offset(x, y, 0)
			out.Pix[o] = nrgba.Pix[i]
			out.Pix[o+1] = nrgba.Pix[i+1]
			out.Pix[o+2] = nrgba.Pix[i+2]
		}
	}
	return out, nil
}

// FromRaster converts a tone raster back into a standard image: an
// *image.Gray for single-channel rasters and an opaque *image.NRGBA for RGB
// rasters. The pixel data is copied.
func FromRaster(r *tonemap.Image) (image.Image, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, r.Width, r.Height)

	switch r.Channels {
	case tonemap.Gray:
		g := image.NewGray(rect)
		copy(g.Pix, r.Pix)
		return g, nil
	case tonemap.RGB:
		n := image.NewNRGBA(rect)
		for p := 0; p < r.PixelCount(); p++ {
			n.Pix[p*4] = r.Pix[p*3]
			n.Pix[p*4+1] = r.Pix[p*3+1]
			n.Pix[p*4+2] = r.Pix[p*3+2]
			n.Pix[p*4+3] = 0xff
		}
		return n, nil
	default:
		return nil, fmt.Errorf("%w: unsupported channel count %d", tonemap.ErrInvalidInput, int(r.Channels))
	}
}
