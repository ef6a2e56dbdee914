package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/image-tone-mcp/internal/frames"
	"github.com/ironsheep/image-tone-mcp/internal/imaging"
	"github.com/ironsheep/image-tone-mcp/internal/tonemap"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "tone_equalize").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	log := zerolog.Ctx(ctx).With().Str("tool", params.Name).Logger()
	start := time.Now()

	result, err := s.executeTool(log.WithContext(ctx), params.Name, params.Arguments)
	if err != nil {
		ev := log.Warn()
		if isUserError(err) {
			ev = log.Info()
		}
		ev.Err(err).Dur("elapsed", time.Since(start)).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("tool finished")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies configured defaults for optional parameters
//  3. Loads images through the cache as needed
//  4. Calls the tonemap, frames or imaging functions
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)

	// Histograms and statistics
	case "tone_histogram":
		return s.handleToneHistogram(args)
	case "tone_statistics":
		return s.handleToneStatistics(args)
	case "tone_histogram_plot":
		return s.handleToneHistogramPlot(args)
	case "tone_compare":
		return s.handleToneCompare(args)

	// Lookup tables and tone mapping
	case "tone_lut":
		return s.handleToneLUT(args)
	case "tone_equalize":
		return s.handleToneEqualize(args)
	case "tone_clip_stretch":
		return s.handleToneClipStretch(args)
	case "tone_range_stretch":
		return s.handleToneRangeStretch(args)

	// Frame averaging
	case "frames_average":
		return s.handleFramesAverage(ctx, args)
	case "frames_moving_average":
		return s.handleFramesMovingAverage(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// loadRaster loads path through the cache, crops it to region when one is
// given and converts the result to a tone raster.
func (s *Server) loadRaster(path string, region *imaging.Region) (*tonemap.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: path is required", tonemap.ErrInvalidInput)
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	if region != nil {
		if img, err = imaging.CropRegion(img, *region); err != nil {
			return nil, err
		}
	}
	return imaging.ToRaster(img)
}

// imageOutput is the shared result of tools that produce an image: either
// the path it was written to or the image itself as base64 PNG.
type imageOutput struct {
	Output string                `json:"output,omitempty"`
	Image  *imaging.EncodedImage `json:"image,omitempty"`
}

func writeOrEncode(r *tonemap.Image, output string) (imageOutput, error) {
	if output != "" {
		if err := imaging.SaveRaster(r, output); err != nil {
			return imageOutput{}, err
		}
		return imageOutput{Output: output}, nil
	}
	img, err := imaging.FromRaster(r)
	if err != nil {
		return imageOutput{}, err
	}
	enc, err := imaging.EncodePNG(img)
	if err != nil {
		return imageOutput{}, err
	}
	return imageOutput{Image: enc}, nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Histogram and Statistics Handlers ===

type regionArgs struct {
	Path   string          `json:"path"`
	Region *imaging.Region `json:"region"`
}

type histogramResult struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Channels string `json:"channels"`
	Total    int    `json:"total"`
	Overall  []int  `json:"overall"`
	Red      []int  `json:"red,omitempty"`
	Green    []int  `json:"green,omitempty"`
	Blue     []int  `json:"blue,omitempty"`
}

func (s *Server) handleToneHistogram(args json.RawMessage) (interface{}, error) {
	var a regionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadRaster(a.Path, a.Region)
	if err != nil {
		return nil, err
	}

	overall, err := tonemap.BuildOverallHistogram(img)
	if err != nil {
		return nil, err
	}
	result := &histogramResult{
		Width:    img.Width,
		Height:   img.Height,
		Channels: img.Channels.String(),
		Total:    overall.Total(),
		Overall:  overall[:],
	}

	if img.Channels == tonemap.RGB {
		rgb, err := tonemap.BuildColorHistograms(img)
		if err != nil {
			return nil, err
		}
		result.Red, result.Green, result.Blue = rgb[0][:], rgb[1][:], rgb[2][:]
	}
	return result, nil
}

type statisticsResult struct {
	Channels  string              `json:"channels"`
	Samples   int                 `json:"samples"`
	Overall   tonemap.Statistics  `json:"overall"`
	Red       *tonemap.Statistics `json:"red,omitempty"`
	Green     *tonemap.Statistics `json:"green,omitempty"`
	Blue      *tonemap.Statistics `json:"blue,omitempty"`
	MeanColor imaging.ColorResult `json:"mean_color"`
}

func (s *Server) handleToneStatistics(args json.RawMessage) (interface{}, error) {
	var a regionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadRaster(a.Path, a.Region)
	if err != nil {
		return nil, err
	}
	return statisticsOf(img)
}

// statisticsOf summarises img: overall statistics always, per-channel
// statistics for color images, and the mean color.
func statisticsOf(img *tonemap.Image) (*statisticsResult, error) {
	overall, err := tonemap.BuildOverallHistogram(img)
	if err != nil {
		return nil, err
	}
	result := &statisticsResult{
		Channels: img.Channels.String(),
		Samples:  overall.Total(),
		Overall:  tonemap.ComputeStatistics(overall),
	}

	if img.Channels != tonemap.RGB {
		m := result.Overall.Mean
		result.MeanColor = imaging.MeanColor(m, m, m)
		return result, nil
	}

	rgb, err := tonemap.BuildColorHistograms(img)
	if err != nil {
		return nil, err
	}
	r := tonemap.ComputeStatistics(rgb[0])
	g := tonemap.ComputeStatistics(rgb[1])
	b := tonemap.ComputeStatistics(rgb[2])
	result.Red, result.Green, result.Blue = &r, &g, &b
	result.MeanColor = imaging.MeanColor(r.Mean, g.Mean, b.Mean)
	return result, nil
}

type histogramPlotArgs struct {
	Path   string          `json:"path"`
	Region *imaging.Region `json:"region"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
}

func (s *Server) handleToneHistogramPlot(args json.RawMessage) (interface{}, error) {
	var a histogramPlotArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Width == 0 {
		a.Width = 512
	}
	if a.Height == 0 {
		a.Height = 256
	}

	img, err := s.loadRaster(a.Path, a.Region)
	if err != nil {
		return nil, err
	}
	overall, err := tonemap.BuildOverallHistogram(img)
	if err != nil {
		return nil, err
	}

	var channels *[3]tonemap.Histogram
	if img.Channels == tonemap.RGB {
		rgb, err := tonemap.BuildColorHistograms(img)
		if err != nil {
			return nil, err
		}
		channels = &rgb
	}

	plot, err := imaging.RenderHistogram(overall, channels, a.Width, a.Height)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(plot)
}

// === Lookup Table and Tone Mapping Handlers ===

type levelArgs struct {
	P1 *int `json:"p1"`
	P2 *int `json:"p2"`
	Q3 *int `json:"q3"`
	Q4 *int `json:"q4"`
}

// values returns the four levels, failing when any is missing.
func (l levelArgs) values() (p1, p2, q3, q4 int, err error) {
	if l.P1 == nil || l.P2 == nil || l.Q3 == nil || l.Q4 == nil {
		return 0, 0, 0, 0, fmt.Errorf("%w: p1, p2, q3 and q4 are required", tonemap.ErrInvalidInput)
	}
	return *l.P1, *l.P2, *l.Q3, *l.Q4, nil
}

type toneLUTArgs struct {
	levelArgs
	Kind         string   `json:"kind"`
	Path         string   `json:"path"`
	ClipFraction *float64 `json:"clip_fraction"`
}

type lutResult struct {
	Kind  string `json:"kind"`
	LUT   []int  `json:"lut"`
	Table string `json:"table"`
}

func (s *Server) handleToneLUT(args json.RawMessage) (interface{}, error) {
	var a toneLUTArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	kind, err := tonemap.ParseLUTKind(a.Kind)
	if err != nil {
		return nil, err
	}

	var lut tonemap.LUT
	switch kind {
	case tonemap.ManualRangeStretch:
		p1, p2, q3, q4, err := a.values()
		if err != nil {
			return nil, err
		}
		if lut, err = tonemap.BuildRangeStretchLUT(p1, p2, q3, q4); err != nil {
			return nil, err
		}
	default:
		img, err := s.loadRaster(a.Path, nil)
		if err != nil {
			return nil, err
		}
		h, err := tonemap.BuildOverallHistogram(img)
		if err != nil {
			return nil, err
		}
		if kind == tonemap.Equalization {
			lut, err = tonemap.BuildEqualizationLUT(h, h.Total())
		} else {
			lut, err = tonemap.BuildClippedStretchLUT(h, h.Total(), s.clipFraction(a.ClipFraction))
		}
		if err != nil {
			return nil, err
		}
	}

	values := make([]int, tonemap.Levels)
	for i, v := range lut {
		values[i] = int(v)
	}
	return &lutResult{Kind: kind.String(), LUT: values, Table: lut.Table()}, nil
}

// clipFraction returns the requested fraction or the configured default.
func (s *Server) clipFraction(requested *float64) float64 {
	if requested != nil {
		return *requested
	}
	return s.cfg.Tone.ClipFraction
}

type toneResult struct {
	imageOutput
	Width    int                `json:"width"`
	Height   int                `json:"height"`
	Channels string             `json:"channels"`
	Before   tonemap.Statistics `json:"before"`
	After    tonemap.Statistics `json:"after"`
}

// toneOutput reports the result of a tone operation: overall statistics of
// the source and the mapped image, plus the mapped image itself.
func toneOutput(src, dst *tonemap.Image, output string) (*toneResult, error) {
	before, err := tonemap.BuildOverallHistogram(src)
	if err != nil {
		return nil, err
	}
	after, err := tonemap.BuildOverallHistogram(dst)
	if err != nil {
		return nil, err
	}
	out, err := writeOrEncode(dst, output)
	if err != nil {
		return nil, err
	}
	return &toneResult{
		imageOutput: out,
		Width:       dst.Width,
		Height:      dst.Height,
		Channels:    dst.Channels.String(),
		Before:      tonemap.ComputeStatistics(before),
		After:       tonemap.ComputeStatistics(after),
	}, nil
}

type toneEqualizeArgs struct {
	Path   string `json:"path"`
	Output string `json:"output"`
}

func (s *Server) handleToneEqualize(args json.RawMessage) (interface{}, error) {
	var a toneEqualizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadRaster(a.Path, nil)
	if err != nil {
		return nil, err
	}
	out, _, err := tonemap.Equalize(img)
	if err != nil {
		return nil, err
	}
	return toneOutput(img, out, a.Output)
}

type toneClipStretchArgs struct {
	Path         string   `json:"path"`
	Output       string   `json:"output"`
	ClipFraction *float64 `json:"clip_fraction"`
}

func (s *Server) handleToneClipStretch(args json.RawMessage) (interface{}, error) {
	var a toneClipStretchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadRaster(a.Path, nil)
	if err != nil {
		return nil, err
	}
	out, _, err := tonemap.ClipStretch(img, s.clipFraction(a.ClipFraction))
	if err != nil {
		return nil, err
	}
	return toneOutput(img, out, a.Output)
}

type toneRangeStretchArgs struct {
	levelArgs
	Path   string `json:"path"`
	Output string `json:"output"`
}

func (s *Server) handleToneRangeStretch(args json.RawMessage) (interface{}, error) {
	var a toneRangeStretchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p1, p2, q3, q4, err := a.values()
	if err != nil {
		return nil, err
	}
	img, err := s.loadRaster(a.Path, nil)
	if err != nil {
		return nil, err
	}
	out, _, err := tonemap.RangeStretch(img, p1, p2, q3, q4)
	if err != nil {
		return nil, err
	}
	return toneOutput(img, out, a.Output)
}

// === Comparison Handlers ===

type toneCompareArgs struct {
	Path        string          `json:"path"`
	Region      *imaging.Region `json:"region"`
	OtherPath   string          `json:"other_path"`
	OtherRegion *imaging.Region `json:"other_region"`
	Threshold   *int            `json:"threshold"`
}

func (s *Server) handleToneCompare(args json.RawMessage) (interface{}, error) {
	var a toneCompareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OtherPath == "" {
		a.OtherPath = a.Path
	}
	if a.OtherPath == a.Path && a.OtherRegion == nil && a.Region == nil {
		return nil, fmt.Errorf("%w: give other_path or a region to compare against", tonemap.ErrInvalidInput)
	}

	threshold := imaging.DefaultDiffThreshold
	if a.Threshold != nil {
		threshold = *a.Threshold
	}

	first, err := s.loadRaster(a.Path, a.Region)
	if err != nil {
		return nil, err
	}
	second, err := s.loadRaster(a.OtherPath, a.OtherRegion)
	if err != nil {
		return nil, err
	}
	return imaging.CompareRasters(first, second, threshold)
}

// === Frame Averaging Handlers ===

type frameSourceArgs struct {
	Paths []string `json:"paths"`
	Dir   string   `json:"dir"`
	Order string   `json:"order"`
}

// resolve returns the ordered frame paths named by the arguments.
func (s *Server) resolve(a frameSourceArgs) ([]string, error) {
	name := a.Order
	if name == "" {
		name = s.cfg.Frames.Order
	}
	order, err := imaging.ParseSequenceOrder(name)
	if err != nil {
		return nil, err
	}
	return imaging.ResolveSequence(a.Paths, a.Dir, order)
}

type framesAverageArgs struct {
	frameSourceArgs
	Output string `json:"output"`
}

type framesAverageResult struct {
	imageOutput
	Frames     int                `json:"frames"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Channels   string             `json:"channels"`
	Statistics tonemap.Statistics `json:"statistics"`
}

func (s *Server) handleFramesAverage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a framesAverageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	paths, err := s.resolve(a.frameSourceArgs)
	if err != nil {
		return nil, err
	}
	seq, err := imaging.LoadFrames(ctx, paths, s.cfg.Frames.Workers)
	if err != nil {
		return nil, err
	}

	avg, err := frames.OverallAverage(seq)
	if err != nil {
		return nil, err
	}
	img, err := avg.ToImage()
	if err != nil {
		return nil, err
	}
	h, err := tonemap.BuildOverallHistogram(img)
	if err != nil {
		return nil, err
	}
	out, err := writeOrEncode(img, a.Output)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Int("frames", len(seq)).Msg("sequence averaged")
	return &framesAverageResult{
		imageOutput: out,
		Frames:      len(seq),
		Width:       img.Width,
		Height:      img.Height,
		Channels:    img.Channels.String(),
		Statistics:  tonemap.ComputeStatistics(h),
	}, nil
}

type framesMovingAverageArgs struct {
	frameSourceArgs
	Window    int    `json:"window"`
	OutputDir string `json:"output_dir"`
	Format    string `json:"format"`
}

type framesMovingAverageResult struct {
	InputFrames  int      `json:"input_frames"`
	Window       int      `json:"window"`
	OutputFrames int      `json:"output_frames"`
	Outputs      []string `json:"outputs"`
}

func (s *Server) handleFramesMovingAverage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a framesMovingAverageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputDir == "" {
		return nil, fmt.Errorf("%w: output_dir is required", tonemap.ErrInvalidInput)
	}
	if a.Window == 0 {
		a.Window = s.cfg.Frames.WindowSize
	}
	if a.Format == "" {
		a.Format = s.cfg.Frames.OutputFormat
	}
	if !imaging.IsWritableFormat(a.Format) {
		return nil, fmt.Errorf("%w: cannot write %q frames", tonemap.ErrInvalidInput, a.Format)
	}

	window, err := frames.NewMovingWindow(a.Window)
	if err != nil {
		return nil, err
	}
	paths, err := s.resolve(a.frameSourceArgs)
	if err != nil {
		return nil, err
	}
	seq, err := imaging.LoadFrames(ctx, paths, s.cfg.Frames.Workers)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(a.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	outputs, err := imaging.SaveMovingAverage(ctx, window, seq, a.OutputDir, a.Format)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Int("frames", len(seq)).Int("window", a.Window).
		Int("outputs", len(outputs)).Msg("moving average written")
	return &framesMovingAverageResult{
		InputFrames:  len(seq),
		Window:       a.Window,
		OutputFrames: len(outputs),
		Outputs:      outputs,
	}, nil
}

// isUserError reports whether err was caused by bad tool arguments rather
// than by the environment.
func isUserError(err error) bool {
	return errors.Is(err, tonemap.ErrInvalidInput) || errors.Is(err, tonemap.ErrInvalidRange) ||
		errors.Is(err, tonemap.ErrDimensionMismatch) || errors.Is(err, tonemap.ErrEmptyInput)
}
