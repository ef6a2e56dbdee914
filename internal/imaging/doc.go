// Package imaging connects image files to the tone engine.
//
// The tonemap and frames packages work on flat in-memory rasters and never
// touch the filesystem. This package supplies everything around them:
// decoding files (with a shared ImageCache), converting decoded images to and
// from tonemap.Image rasters, cropping regions of interest, comparing
// rasters, rendering histogram plots, discovering and decoding ordered frame
// sequences, and encoding results as files or base64 PNG.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Raster Conversion
//
// ToRaster maps grayscale images to single-channel rasters and every other
// color model to three-channel RGB rasters with 8 bits per channel. Alpha is
// dropped and 16-bit sources keep their high byte. FromRaster produces
// *image.Gray or opaque *image.NRGBA images.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. LoadSequence decodes files
// concurrently but returns rasters in input order. Every other function is
// stateless.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Regions outside image bounds or with x1 >= x2 or y1 >= y2
//   - File I/O errors during image loading and saving
//   - Encoding errors during image output
//
// Errors caused by an invalid raster wrap tonemap.ErrInvalidInput.
package imaging
