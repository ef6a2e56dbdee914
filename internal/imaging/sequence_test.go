package imaging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-tone-mcp/internal/frames"
	"github.com/ironsheep/image-tone-mcp/internal/tonemap"
)

// writeGrayFrame writes a uniform grayscale PNG of the given value.
func writeGrayFrame(t *testing.T, path string, value uint8) {
	t.Helper()
	r, err := tonemap.NewImage(4, 3, tonemap.Gray)
	require.NoError(t, err)
	for i := range r.Pix {
		r.Pix[i] = value
	}
	require.NoError(t, SaveRaster(r, path))
}

func TestParseSequenceOrder(t *testing.T) {
	for in, want := range map[string]SequenceOrder{
		"":             OrderByName,
		"name":         OrderByName,
		"capture_time": OrderByCaptureTime,
	} {
		got, err := ParseSequenceOrder(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSequenceOrder("random")
	assert.ErrorIs(t, err, tonemap.ErrInvalidInput)
}

func TestDiscoverSequence_ByName(t *testing.T) {
	dir := t.TempDir()
	writeGrayFrame(t, filepath.Join(dir, "b.png"), 20)
	writeGrayFrame(t, filepath.Join(dir, "a.png"), 10)
	writeGrayFrame(t, filepath.Join(dir, "c.png"), 30)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	paths, err := DiscoverSequence(dir, OrderByName)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.png"),
	}, paths)
}

func TestDiscoverSequence_ByCaptureTimeFallsBackToModTime(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"c.png", "a.png", "b.png"} {
		p := filepath.Join(dir, name)
		writeGrayFrame(t, p, uint8(i))
		mt := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(p, mt, mt))
	}

	paths, err := DiscoverSequence(dir, OrderByCaptureTime)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "c.png"),
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.png"),
	}, paths)
}

func TestDiscoverSequence_Errors(t *testing.T) {
	_, err := DiscoverSequence(filepath.Join(t.TempDir(), "missing"), OrderByName)
	assert.Error(t, err)

	_, err = DiscoverSequence(t.TempDir(), SequenceOrder(9))
	assert.ErrorIs(t, err, tonemap.ErrInvalidInput)
}

func TestLoadSequence_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 6; i++ {
		p := FramePath(dir, i, "png")
		writeGrayFrame(t, p, uint8(i*40))
		paths = append(paths, p)
	}

	frames, err := LoadSequence(context.Background(), paths, 3)
	require.NoError(t, err)
	require.Len(t, frames, 6)
	for i, f := range frames {
		assert.Equal(t, tonemap.Gray, f.Channels)
		assert.Equal(t, uint8(i*40), f.Pix[0], "frame %d", i)
	}
}

func TestLoadSequence_MissingFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writeGrayFrame(t, good, 1)

	_, err := LoadSequence(context.Background(), []string{good, filepath.Join(dir, "gone.png")}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame 1")
}

func TestLoadSequence_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.png")
	writeGrayFrame(t, p, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadSequence(ctx, []string{p}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFramePath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "frame_00012.png"), FramePath("out", 12, "png"))
	assert.Equal(t, filepath.Join("out", "frame_00000.jpg"), FramePath("out", 0, "jpg"))
}

func TestSaveRaster_RGB(t *testing.T) {
	r, err := tonemap.NewImage(2, 2, tonemap.RGB)
	require.NoError(t, err)
	copy(r.Pix, []uint8{255, 0, 0, 0, 255, 0, 0, 0, 255, 9, 9, 9})

	path := filepath.Join(t.TempDir(), "rgb.png")
	require.NoError(t, SaveRaster(r, path))

	back, err := Open(path)
	require.NoError(t, err)
	got, err := ToRaster(back)
	require.NoError(t, err)
	assert.Equal(t, r.Pix, got.Pix)
}

func TestResolveSequence(t *testing.T) {
	dir := t.TempDir()
	writeGrayFrame(t, filepath.Join(dir, "b.png"), 1)
	writeGrayFrame(t, filepath.Join(dir, "a.png"), 2)

	got, err := ResolveSequence([]string{"z.png", "y.png"}, "", OrderByName)
	require.NoError(t, err)
	assert.Equal(t, []string{"z.png", "y.png"}, got, "explicit lists keep their order")

	got, err = ResolveSequence(nil, dir, OrderByName)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")}, got)

	_, err = ResolveSequence([]string{"a.png"}, dir, OrderByName)
	assert.ErrorIs(t, err, tonemap.ErrInvalidInput)

	_, err = ResolveSequence(nil, "", OrderByName)
	assert.ErrorIs(t, err, tonemap.ErrEmptyInput)

	_, err = ResolveSequence(nil, t.TempDir(), OrderByName)
	assert.ErrorIs(t, err, tonemap.ErrEmptyInput)
}

func TestSaveMovingAverage(t *testing.T) {
	in := t.TempDir()
	var paths []string
	for i, v := range []uint8{10, 30, 50, 70, 90} {
		p := FramePath(in, i, "png")
		writeGrayFrame(t, p, v)
		paths = append(paths, p)
	}
	seq, err := LoadFrames(context.Background(), paths, 2)
	require.NoError(t, err)

	window, err := frames.NewMovingWindow(3)
	require.NoError(t, err)

	out := t.TempDir()
	written, err := SaveMovingAverage(context.Background(), window, seq, out, "png")
	require.NoError(t, err)
	require.Len(t, written, 3)

	for i, want := range []uint8{30, 50, 70} {
		assert.Equal(t, FramePath(out, i, "png"), written[i])
		img, err := Open(written[i])
		require.NoError(t, err)
		r, err := ToRaster(img)
		require.NoError(t, err)
		assert.Equal(t, want, r.Pix[0], "output %d", i)
	}
}

func TestSaveMovingAverage_Cancelled(t *testing.T) {
	window, err := frames.NewMovingWindow(1)
	require.NoError(t, err)
	f, err := frames.NewFrame(2, 2, tonemap.Gray)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	written, err := SaveMovingAverage(ctx, window, []*frames.Frame{f, f}, t.TempDir(), "png")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, written)
}
