package video

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/cuesheet/internal/clock"
	"github.com/ivlev/cuesheet/internal/config"
	"github.com/ivlev/cuesheet/internal/director"
	"github.com/ivlev/cuesheet/internal/effects"
	"github.com/ivlev/cuesheet/internal/engine"
	"github.com/ivlev/cuesheet/internal/state"
)

type recordingEncoder struct {
	frames int
	err    error
}

func (r *recordingEncoder) Encode(ctx context.Context, params config.ExportParams, frames <-chan *image.RGBA) error {
	for range frames {
		r.frames++
		if r.err != nil {
			return r.err
		}
	}
	return nil
}

type visualPainter struct {
	seen []string
}

func (p *visualPainter) Bounds() image.Rectangle { return image.Rect(0, 0, 4, 2) }

func (p *visualPainter) Render(dst *image.RGBA, snap state.Snapshot) error {
	if n := len(p.seen); n == 0 || p.seen[n-1] != snap.VisualID {
		p.seen = append(p.seen, snap.VisualID)
	}
	return nil
}

func newManualEngine(t *testing.T) (*engine.Engine, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(0)
	eng, err := engine.New(director.DefaultScenario(), clk, engine.Options{
		Manual: true,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	return eng, clk
}

func TestExportStepsEveryFrame(t *testing.T) {
	eng, clk := newManualEngine(t)
	enc := &recordingEncoder{}
	painter := &visualPainter{}

	var last int
	params := config.ExportParams{Width: 4, Height: 2, FPS: 2, Duration: 70}
	err := Export(context.Background(), eng, clk, painter, enc, params, func(frame, total int) { last = frame })
	require.NoError(t, err)

	assert.Equal(t, 140, enc.frames)
	assert.Equal(t, 140, last)
	assert.Equal(t, uint64(140), eng.Stats().Ticks)
	assert.Equal(t, []string{"cube", "grid", "sphere"}, painter.seen)
	assert.InDelta(t, 69.5, clk.Seconds(), 1e-9)
}

func TestExportStopsOnEncoderError(t *testing.T) {
	eng, clk := newManualEngine(t)
	boom := errors.New("disk full")
	enc := &recordingEncoder{err: boom}

	params := config.ExportParams{Width: 4, Height: 2, FPS: 30, Duration: 60}
	err := Export(context.Background(), eng, clk, &visualPainter{}, enc, params, nil)
	assert.ErrorIs(t, err, boom)
	assert.Less(t, eng.Stats().Ticks, uint64(1800))
}

func TestExportRejectsBadParams(t *testing.T) {
	eng, clk := newManualEngine(t)
	assert.Error(t, Export(context.Background(), eng, clk, &visualPainter{}, &recordingEncoder{}, config.ExportParams{FPS: 0, Duration: 1}, nil))
	assert.Error(t, Export(context.Background(), eng, clk, &visualPainter{}, &recordingEncoder{}, config.ExportParams{FPS: 30}, nil))
}

func TestFrameCount(t *testing.T) {
	assert.Equal(t, 300, FrameCount(10, 30))
	assert.Equal(t, 301, FrameCount(10.01, 30))
}

func TestBuildArgs(t *testing.T) {
	args := buildArgs(config.ExportParams{
		Width: 1280, Height: 720, FPS: 30, Duration: 12.5,
		AudioPath: "song.mp3", Output: "out.mp4",
	})
	assert.Equal(t, []string{
		"-y", "-f", "rawvideo", "-pixel_format", "rgba", "-video_size", "1280x720", "-framerate", "30", "-i", "-",
		"-i", "song.mp3", "-map", "0:v", "-map", "1:a", "-c:a", "aac", "-shortest",
		"-t", "12.500", "-pix_fmt", "yuv420p", "-c:v", "libx264", "-crf", "23", "-preset", "medium",
		"out.mp4",
	}, args)

	args = buildArgs(config.ExportParams{Width: 2, Height: 2, FPS: 1, Duration: 1, Encoder: "h264_videotoolbox", Output: "o.mp4"})
	assert.Contains(t, args, "7500k")
	assert.NotContains(t, args, "-shortest")
	assert.NotContains(t, args, "-vf")

	args = buildArgs(config.ExportParams{
		Width: 2, Height: 2, FPS: 1, Duration: 10, AudioPath: "a.mp3", Output: "o.mp4",
		Fade: effects.Fade{Out: 2},
	})
	assert.Contains(t, args, "afade=t=out:st=8.000:d=2.000")
	assert.Contains(t, args, "fade=t=out:st=8.000:d=2.000")
}

func TestWriteRawRGBAHandlesSubImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)

	var buf bytes.Buffer
	require.NoError(t, writeRawRGBA(&buf, sub))
	assert.Equal(t, 2*2*4, buf.Len())
	assert.Equal(t, byte(20), buf.Bytes()[0])
}
