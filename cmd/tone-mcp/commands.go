package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-tone-mcp/internal/frames"
	"github.com/ironsheep/image-tone-mcp/internal/imaging"
	"github.com/ironsheep/image-tone-mcp/internal/server"
	"github.com/ironsheep/image-tone-mcp/internal/tonemap"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// no config or logger needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tone-mcp %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the tone tools over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.log.Info().Str("version", Version).Str("commit", GitCommit).Msg("starting MCP server")
			err := server.New(a.cfg, a.log, Version).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

// openRaster decodes path, optionally crops it to the x1,y1,x2,y2 values in
// region, and converts it to a tone raster.
func openRaster(path string, region []int) (*tonemap.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	if len(region) > 0 {
		if len(region) != 4 {
			return nil, fmt.Errorf("%w: --region needs x1,y1,x2,y2", tonemap.ErrInvalidInput)
		}
		r := imaging.Region{X1: region[0], Y1: region[1], X2: region[2], Y2: region[3]}
		if img, err = imaging.CropRegion(img, r); err != nil {
			return nil, err
		}
	}
	return imaging.ToRaster(img)
}

func (a *app) statsCmd() *cobra.Command {
	var (
		region []int
		plot   string
	)
	cmd := &cobra.Command{
		Use:   "stats IMAGE",
		Short: "Print histogram statistics of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openRaster(args[0], region)
			if err != nil {
				return err
			}
			overall, err := tonemap.BuildOverallHistogram(img)
			if err != nil {
				return err
			}

			rows := []statsRow{{"overall", tonemap.ComputeStatistics(overall)}}
			var channels *[3]tonemap.Histogram
			if img.Channels == tonemap.RGB {
				rgb, err := tonemap.BuildColorHistograms(img)
				if err != nil {
					return err
				}
				channels = &rgb
				for i, name := range []string{"red", "green", "blue"} {
					rows = append(rows, statsRow{name, tonemap.ComputeStatistics(rgb[i])})
				}
			}
			if err := printStats(cmd.OutOrStdout(), img, rows); err != nil {
				return err
			}

			if plot == "" {
				return nil
			}
			chart, err := imaging.RenderHistogram(overall, channels, 512, 256)
			if err != nil {
				return err
			}
			if err := imaging.Save(chart, plot); err != nil {
				return err
			}
			a.log.Info().Str("plot", plot).Msg("histogram plot written")
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&region, "region", nil, "restrict to region x1,y1,x2,y2")
	cmd.Flags().StringVar(&plot, "plot", "", "also write a histogram plot to this file")
	return cmd
}

type statsRow struct {
	name  string
	stats tonemap.Statistics
}

func printStats(w io.Writer, img *tonemap.Image, rows []statsRow) error {
	fmt.Fprintf(w, "%dx%d %s, %d pixels\n", img.Width, img.Height, img.Channels, img.PixelCount())
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHANNEL\tMEAN\tSTDDEV\tMEDIAN\tMODE\tMIN\tMAX")
	for _, r := range rows {
		s := r.stats
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%d\t%d\t%d\t%d\n", r.name, s.Mean, s.StdDev, s.Median, s.Mode, s.Min, s.Max)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(rows) == 4 {
		mc := imaging.MeanColor(rows[1].stats.Mean, rows[2].stats.Mean, rows[3].stats.Mean)
		fmt.Fprintf(w, "mean color %s hsl(%d, %d%%, %d%%)\n", mc.Hex, mc.HSL.H, mc.HSL.S, mc.HSL.L)
	}
	return nil
}

func compareCmd() *cobra.Command {
	var (
		region, otherRegion []int
		threshold           int
	)
	cmd := &cobra.Command{
		Use:   "compare IMAGE OTHER",
		Short: "Compare the tone of two images",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, err := openRaster(args[0], region)
			if err != nil {
				return err
			}
			second, err := openRaster(args[1], otherRegion)
			if err != nil {
				return err
			}
			c, err := imaging.CompareRasters(first, second, threshold)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "similarity %.3f (%d of %d pixels differ)\n", c.SimilarityScore, c.PixelsDifferent, c.TotalPixels)
			fmt.Fprintf(w, "mean abs diff %.2f\n", c.MeanAbsDiff)
			fmt.Fprintf(w, "mean shift %+.2f\n", c.MeanShift)
			fmt.Fprintf(w, "contrast ratio %.3f\n", c.ContrastRatio)
			if !c.SameSize {
				fmt.Fprintf(w, "sizes differ: %dx%d vs %dx%d\n", c.Size1.Width, c.Size1.Height, c.Size2.Width, c.Size2.Height)
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&region, "region", nil, "restrict IMAGE to region x1,y1,x2,y2")
	cmd.Flags().IntSliceVar(&otherRegion, "other-region", nil, "restrict OTHER to region x1,y1,x2,y2")
	cmd.Flags().IntVar(&threshold, "threshold", imaging.DefaultDiffThreshold, "mean channel difference above which a pixel differs")
	return cmd
}

// levelFlags holds the --p1 --p2 --q3 --q4 range stretch levels.
type levelFlags struct {
	p1, p2, q3, q4 int
}

func (l *levelFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&l.p1, "p1", 0, "lower input level")
	cmd.Flags().IntVar(&l.p2, "p2", 255, "upper input level")
	cmd.Flags().IntVar(&l.q3, "q3", 0, "lower output level")
	cmd.Flags().IntVar(&l.q4, "q4", 255, "upper output level")
}

func (a *app) lutCmd() *cobra.Command {
	var (
		kind      string
		imagePath string
		clip      float64
		levels    levelFlags
	)
	cmd := &cobra.Command{
		Use:   "lut",
		Short: "Print a lookup table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := tonemap.ParseLUTKind(kind)
			if err != nil {
				return err
			}

			var lut tonemap.LUT
			if k == tonemap.ManualRangeStretch {
				lut, err = tonemap.BuildRangeStretchLUT(levels.p1, levels.p2, levels.q3, levels.q4)
			} else {
				lut, err = a.histogramLUT(k, imagePath, a.clip(cmd, clip))
			}
			if err != nil {
				return err
			}

			_, err = io.WriteString(cmd.OutOrStdout(), lut.Table())
			return err
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "equalize, clip_stretch or range_stretch")
	cmd.Flags().StringVar(&imagePath, "image", "", "image whose histogram drives equalize and clip_stretch")
	cmd.Flags().Float64Var(&clip, "clip", 0, "clip fraction for clip_stretch (default from config)")
	levels.register(cmd)
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

// histogramLUT builds an equalization or clipped-stretch table from the
// overall histogram of the image at path.
func (a *app) histogramLUT(k tonemap.LUTKind, path string, clip float64) (tonemap.LUT, error) {
	if path == "" {
		return tonemap.LUT{}, fmt.Errorf("%w: --image is required for %s", tonemap.ErrInvalidInput, k)
	}
	img, err := openRaster(path, nil)
	if err != nil {
		return tonemap.LUT{}, err
	}
	h, err := tonemap.BuildOverallHistogram(img)
	if err != nil {
		return tonemap.LUT{}, err
	}
	if k == tonemap.Equalization {
		return tonemap.BuildEqualizationLUT(h, h.Total())
	}
	return tonemap.BuildClippedStretchLUT(h, h.Total(), clip)
}

// clip returns the --clip value when set, else the configured default.
func (a *app) clip(cmd *cobra.Command, flagValue float64) float64 {
	if cmd.Flags().Changed("clip") {
		return flagValue
	}
	return a.cfg.Tone.ClipFraction
}

// toneCmd builds a subcommand that reads IN, maps it with fn and writes OUT.
func (a *app) toneCmd(use, short string, fn func(cmd *cobra.Command, img *tonemap.Image) (*tonemap.Image, tonemap.LUT, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " IN OUT",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openRaster(args[0], nil)
			if err != nil {
				return err
			}
			out, _, err := fn(cmd, img)
			if err != nil {
				return err
			}
			if err := imaging.SaveRaster(out, args[1]); err != nil {
				return err
			}
			a.log.Info().Str("op", use).Str("in", args[0]).Str("out", args[1]).Msg("image written")
			return nil
		},
	}
}

func (a *app) equalizeCmd() *cobra.Command {
	return a.toneCmd("equalize", "Equalize the histogram of an image",
		func(_ *cobra.Command, img *tonemap.Image) (*tonemap.Image, tonemap.LUT, error) {
			return tonemap.Equalize(img)
		})
}

func (a *app) stretchCmd() *cobra.Command {
	var clip float64
	cmd := a.toneCmd("stretch", "Clip both histogram tails and stretch the rest to 0-255",
		func(cmd *cobra.Command, img *tonemap.Image) (*tonemap.Image, tonemap.LUT, error) {
			return tonemap.ClipStretch(img, a.clip(cmd, clip))
		})
	cmd.Flags().Float64Var(&clip, "clip", 0, "fraction of samples clipped from each tail (default from config)")
	return cmd
}

func (a *app) rangeCmd() *cobra.Command {
	var levels levelFlags
	cmd := a.toneCmd("range", "Map input levels [p1,p2] onto output levels [q3,q4]",
		func(_ *cobra.Command, img *tonemap.Image) (*tonemap.Image, tonemap.LUT, error) {
			return tonemap.RangeStretch(img, levels.p1, levels.p2, levels.q3, levels.q4)
		})
	levels.register(cmd)
	for _, f := range []string{"p1", "p2", "q3", "q4"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

// sequenceFlags selects the frames of a sequence: positional paths or --dir.
type sequenceFlags struct {
	dir   string
	order string
}

func (s *sequenceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.dir, "dir", "", "directory holding the frames")
	cmd.Flags().StringVar(&s.order, "order", "", "frame order for --dir: name or capture_time (default from config)")
}

func (a *app) loadSequence(ctx context.Context, s sequenceFlags, paths []string) ([]*frames.Frame, error) {
	name := s.order
	if name == "" {
		name = a.cfg.Frames.Order
	}
	order, err := imaging.ParseSequenceOrder(name)
	if err != nil {
		return nil, err
	}
	paths, err = imaging.ResolveSequence(paths, s.dir, order)
	if err != nil {
		return nil, err
	}
	a.log.Debug().Int("frames", len(paths)).Msg("loading sequence")
	return imaging.LoadFrames(ctx, paths, a.cfg.Frames.Workers)
}

func (a *app) averageCmd() *cobra.Command {
	var seq sequenceFlags
	cmd := &cobra.Command{
		Use:   "average OUT [FRAME...]",
		Short: "Average a frame sequence into one image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := a.loadSequence(cmd.Context(), seq, args[1:])
			if err != nil {
				return err
			}
			avg, err := frames.OverallAverage(fs)
			if err != nil {
				return err
			}
			img, err := avg.ToImage()
			if err != nil {
				return err
			}
			if err := imaging.SaveRaster(img, args[0]); err != nil {
				return err
			}
			a.log.Info().Int("frames", len(fs)).Str("out", args[0]).Msg("sequence averaged")
			return nil
		},
	}
	seq.register(cmd)
	return cmd
}

func (a *app) movingAverageCmd() *cobra.Command {
	var (
		seq    sequenceFlags
		window int
		outDir string
		format string
	)
	cmd := &cobra.Command{
		Use:   "moving-average [FRAME...]",
		Short: "Write the trailing moving average of a frame sequence as numbered frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("window") {
				window = a.cfg.Frames.WindowSize
			}
			if format == "" {
				format = a.cfg.Frames.OutputFormat
			}
			if !imaging.IsWritableFormat(format) {
				return fmt.Errorf("%w: cannot write %q frames", tonemap.ErrInvalidInput, format)
			}
			w, err := frames.NewMovingWindow(window)
			if err != nil {
				return err
			}

			fs, err := a.loadSequence(cmd.Context(), seq, args)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			written, err := imaging.SaveMovingAverage(ctx, w, fs, outDir, format)
			if err != nil {
				return err
			}
			a.log.Info().Int("frames", len(fs)).Int("window", window).Int("outputs", len(written)).
				Str("dir", outDir).Msg("moving average written")
			fmt.Fprintf(cmd.OutOrStdout(), "%d frames written to %s\n", len(written), outDir)
			return nil
		},
	}
	seq.register(cmd)
	cmd.Flags().IntVar(&window, "window", 0, "frames per average (default from config)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for the averaged frames")
	cmd.Flags().StringVar(&format, "format", "", "output file extension (default from config)")
	_ = cmd.MarkFlagRequired("out-dir")
	return cmd
}
