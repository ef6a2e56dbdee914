// Package tonemap implements histogram-based tone mapping on flat 8-bit
// pixel buffers.
//
// The package is the pure core of the tone tools: it builds intensity
// histograms, derives 256-entry lookup tables (LUTs) from them, applies those
// tables to images and summarises histograms with basic statistics. It never
// performs file I/O; decoding and encoding are handled by the imaging package.
//
// # Pixel Layout
//
// An Image stores its samples in a single slice. The sample for pixel (x, y)
// and channel c lives at index:
//
//	(y*Width + x)*Channels + c
//
// Channels is either Gray (one sample per pixel) or RGB (three samples per
// pixel, in R, G, B order). Every sample is an intensity in [0, 255].
//
// # Pipelines
//
// The usual flow is histogram -> LUT -> apply:
//
//	hist, err := tonemap.BuildOverallHistogram(img)
//	lut, err := tonemap.BuildEqualizationLUT(hist, hist.Total())
//	out, err := tonemap.ApplyLUT(img, lut)
//
// Equalize, ClipStretch and RangeStretch wrap these steps.
//
// # Overall Intensity
//
// For RGB images the overall histogram counts the unweighted channel mean
// (R+G+B)/3 using integer division. This is not a luma formula.
//
// # Error Handling
//
// Failures wrap one of ErrInvalidInput, ErrInvalidRange, ErrDimensionMismatch
// or ErrEmptyInput and name the violated precondition. Use errors.Is to
// classify them. Degenerate numeric cases (a histogram with all of its mass at
// one end, collapsed stretch bounds) are not errors; they produce a defined
// mapping instead of dividing by zero.
//
// # Thread Safety
//
// All functions are stateless. They may be called concurrently as long as
// callers do not share a mutable Image across goroutines.
package tonemap
