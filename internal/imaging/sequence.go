package imaging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-tone-mcp/internal/frames"
	"github.com/ironsheep/image-tone-mcp/internal/tonemap"
)

// SequenceOrder decides how the files of a frame directory are ordered.
type SequenceOrder int

const (
	// OrderByName sorts files by their base name.
	OrderByName SequenceOrder = iota
	// OrderByCaptureTime sorts files by EXIF DateTimeOriginal, falling back
	// to the file modification time when a file has no usable EXIF data.
	OrderByCaptureTime
)

func (o SequenceOrder) String() string {
	switch o {
	case OrderByName:
		return "name"
	case OrderByCaptureTime:
		return "capture_time"
	default:
		return fmt.Sprintf("SequenceOrder(%d)", int(o))
	}
}

// ParseSequenceOrder accepts "name" (or "") and "capture_time".
func ParseSequenceOrder(s string) (SequenceOrder, error) {
	switch s {
	case "", "name":
		return OrderByName, nil
	case "capture_time":
		return OrderByCaptureTime, nil
	default:
		return 0, fmt.Errorf("%w: unknown sequence order %q", tonemap.ErrInvalidInput, s)
	}
}

// DiscoverSequence lists the decodable image files directly inside dir,
// ordered by order. Subdirectories and files with unsupported extensions are
// skipped.
func DiscoverSequence(dir string, order SequenceOrder) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	images := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		return !e.IsDir() && FormatForPath(e.Name()) != "unknown"
	})
	paths := lo.Map(images, func(e os.DirEntry, _ int) string {
		return filepath.Join(dir, e.Name())
	})
	sort.Strings(paths)

	switch order {
	case OrderByName:
		return paths, nil
	case OrderByCaptureTime:
		times := make(map[string]time.Time, len(paths))
		for _, p := range paths {
			times[p] = captureTime(p)
		}
		sort.SliceStable(paths, func(i, j int) bool {
			return times[paths[i]].Before(times[paths[j]])
		})
		return paths, nil
	default:
		return nil, fmt.Errorf("%w: unknown sequence order %d", tonemap.ErrInvalidInput, int(order))
	}
}

// ResolveSequence returns the frame paths of a sequence given either as an
// explicit list (kept in the given order) or as a directory (discovered and
// sorted by order). Exactly one of paths and dir must be set.
func ResolveSequence(paths []string, dir string, order SequenceOrder) ([]string, error) {
	switch {
	case len(paths) > 0 && dir != "":
		return nil, fmt.Errorf("%w: give either frame paths or a directory, not both", tonemap.ErrInvalidInput)
	case len(paths) > 0:
		return paths, nil
	case dir != "":
		found, err := DiscoverSequence(dir, order)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("%w: no image files in %s", tonemap.ErrEmptyInput, dir)
		}
		return found, nil
	default:
		return nil, fmt.Errorf("%w: no frames given", tonemap.ErrEmptyInput)
	}
}

// captureTime returns the EXIF capture time of path, or its modification
// time when EXIF data is missing. Unreadable files sort first.
func captureTime(path string) time.Time {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}
	}
	defer f.Close()

	if x, err := exif.Decode(f); err == nil {
		if t, err := x.DateTime(); err == nil {
			return t
		}
	}

	if st, err := f.Stat(); err == nil {
		return st.ModTime()
	}
	return time.Time{}
}

// LoadSequence decodes paths into tone rasters, preserving their order.
//
// Up to workers files are decoded concurrently (workers < 1 means one). The
// first failure cancels the remaining work and is returned. A logger stored
// in ctx with zerolog's WithContext receives per-file debug events.
func LoadSequence(ctx context.Context, paths []string, workers int) ([]*tonemap.Image, error) {
	if workers < 1 {
		workers = 1
	}
	log := zerolog.Ctx(ctx)

	out := make([]*tonemap.Image, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := Open(p)
			if err != nil {
				return fmt.Errorf("frame %d (%s): %w", i, p, err)
			}
			r, err := ToRaster(img)
			if err != nil {
				return fmt.Errorf("frame %d (%s): %w", i, p, err)
			}
			out[i] = r
			log.Debug().Str("path", p).Int("index", i).Msg("frame decoded")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FramePath returns the output path of frame index inside dir, for example
// dir/frame_00012.png.
func FramePath(dir string, index int, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%05d.%s", index, ext))
}

// SaveRaster converts r to a standard image and writes it to path.
func SaveRaster(r *tonemap.Image, path string) error {
	img, err := FromRaster(r)
	if err != nil {
		return err
	}
	return Save(img, path)
}

// SaveMovingAverage pushes seq through window and writes every emitted
// average to dir as a numbered frame (see FramePath) with extension ext. The
// written paths are returned in order. ctx is checked before each frame;
// frames already written stay on disk when it is cancelled.
func SaveMovingAverage(ctx context.Context, window *frames.MovingWindow, seq []*frames.Frame, dir, ext string) ([]string, error) {
	outputs := make([]string, 0, max(0, len(seq)-window.Size()+1))
	for i, f := range seq {
		if err := ctx.Err(); err != nil {
			return outputs, fmt.Errorf("stopped after %d frames: %w", len(outputs), err)
		}
		avg, ok, err := window.Push(f)
		if err != nil {
			return outputs, fmt.Errorf("frame %d: %w", i, err)
		}
		if !ok {
			continue
		}
		img, err := avg.ToImage()
		if err != nil {
			return outputs, err
		}
		path := FramePath(dir, len(outputs), ext)
		if err := SaveRaster(img, path); err != nil {
			return outputs, err
		}
		outputs = append(outputs, path)
	}
	zerolog.Ctx(ctx).Debug().Int("outputs", len(outputs)).Str("dir", dir).Msg("moving average saved")
	return outputs, nil
}

// LoadFrames decodes paths like LoadSequence and converts the rasters to
// averaging frames.
func LoadFrames(ctx context.Context, paths []string, workers int) ([]*frames.Frame, error) {
	rasters, err := LoadSequence(ctx, paths, workers)
	if err != nil {
		return nil, err
	}
	out := make([]*frames.Frame, len(rasters))
	for i, r := range rasters {
		if out[i], err = frames.FromImage(r); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return out, nil
}
