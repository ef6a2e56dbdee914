package imaging

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"github.com/ironsheep/image-tone-mcp/internal/tonemap"
)

// Minimum plot dimensions; anything smaller cannot show 256 levels legibly.
const (
	MinPlotWidth  = 64
	MinPlotHeight = 32
)

// channelColors are the stroke colors for the R, G and B channel curves.
var channelColors = [3][3]float64{
	{0.85, 0.1, 0.1},
	{0.1, 0.65, 0.1},
	{0.1, 0.2, 0.85},
}

// RenderHistogram draws the overall histogram as gray bars on a white
// background and, if channels is non-nil, overlays the R, G and B
// histograms as colored curves. All series share one vertical scale, the
// largest count across them.
func RenderHistogram(overall tonemap.Histogram, channels *[3]tonemap.Histogram, width, height int) (image.Image, error) {
	if width < MinPlotWidth || height < MinPlotHeight {
		return nil, fmt.Errorf("%w: plot size %dx%d is below the minimum %dx%d",
			tonemap.ErrInvalidInput, width, height, MinPlotWidth, MinPlotHeight)
	}

	peak := maxCount(overall)
	if channels != nil {
		for _, h := range channels {
			if m := maxCount(h); m > peak {
				peak = m
			}
		}
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	const margin = 4.0
	plotW := float64(width) - 2*margin
	plotH := float64(height) - 2*margin
	barW := plotW / tonemap.Levels
	baseline := float64(height) - margin

	scale := func(n int) float64 {
		if peak == 0 {
			return 0
		}
		return float64(n) / float64(peak) * plotH
	}

	dc.SetRGB(0.45, 0.45, 0.45)
	for i, n := range overall {
		if n == 0 {
			continue
		}
		h := scale(n)
		dc.DrawRectangle(margin+float64(i)*barW, baseline-h, barW, h)
	}
	dc.Fill()

	if channels != nil {
		dc.SetLineWidth(1)
		for c, h := range channels {
			dc.SetRGB(channelColors[c][0], channelColors[c][1], channelColors[c][2])
			for i, n := range h {
				x := margin + (float64(i)+0.5)*barW
				y := baseline - scale(n)
				if i == 0 {
					dc.MoveTo(x, y)
				} else {
					dc.LineTo(x, y)
				}
			}
			dc.Stroke()
		}
	}

	dc.SetRGB(0, 0, 0)
	dc.DrawLine(margin, baseline, margin+plotW, baseline)
	dc.Stroke()

	return dc.Image(), nil
}

func maxCount(h tonemap.Histogram) int {
	m := 0
	for _, n := range h {
		if n > m {
			m = n
		}
	}
	return m
}
