package tonemap

// ApplyLUT returns a new image in which every sample v of img is replaced by
// lut[v]. Colour images use the same table for R, G and B. img is not
// modified.
func ApplyLUT(img *Image, lut LUT) (*Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	out := &Image{
		Width:    img.Width,
		Height:   img.Height,
		Channels: img.Channels,
		Pix:      make([]uint8, len(img.Pix)),
	}
	for i, v := range img.Pix {
		out.Pix[i] = lut[v]
	}
	return out, nil
}

// ApplyLUTInPlace replaces every sample v of img with lut[v].
func ApplyLUTInPlace(img *Image, lut LUT) error {
	if err := img.Validate(); err != nil {
		return err
	}
	for i, v := range img.Pix {
		img.Pix[i] = lut[v]
	}
	return nil
}

// Equalize equalizes img using its overall histogram and returns the result
// together with the table that was applied.
func Equalize(img *Image) (*Image, LUT, error) {
	hist, err := BuildOverallHistogram(img)
	if err != nil {
		return nil, LUT{}, err
	}
	lut, err := BuildEqualizationLUT(hist, img.PixelCount())
	if err != nil {
		return nil, LUT{}, err
	}
	out, err := ApplyLUT(img, lut)
	return out, lut, err
}

// ClipStretch linearly stretches img after clipping clipFraction of the
// pixels at each end of its overall histogram.
func ClipStretch(img *Image, clipFraction float64) (*Image, LUT, error) {
	hist, err := BuildOverallHistogram(img)
	if err != nil {
		return nil, LUT{}, err
	}
	lut, err := BuildClippedStretchLUT(hist, img.PixelCount(), clipFraction)
	if err != nil {
		return nil, LUT{}, err
	}
	out, err := ApplyLUT(img, lut)
	return out, lut, err
}

// RangeStretch maps the intensities of img from [p1, p2] onto [q3, q4].
func RangeStretch(img *Image, p1, p2, q3, q4 int) (*Image, LUT, error) {
	if err := img.Validate(); err != nil {
		return nil, LUT{}, err
	}
	lut, err := BuildRangeStretchLUT(p1, p2, q3, q4)
	if err != nil {
		return nil, LUT{}, err
	}
	out, err := ApplyLUT(img, lut)
	return out, lut, err
}
