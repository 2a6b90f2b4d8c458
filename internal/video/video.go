// Package video renders a presentation offline: the engine is stepped with a
// manual clock at a fixed frame rate and the frames are encoded by ffmpeg
// together with the audio track.
package video

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"os/exec"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/cuesheet/internal/clock"
	"github.com/ivlev/cuesheet/internal/config"
	"github.com/ivlev/cuesheet/internal/state"
	"github.com/ivlev/cuesheet/internal/system"
)

// Encoder consumes frames until the channel is closed.
type Encoder interface {
	Encode(ctx context.Context, params config.ExportParams, frames <-chan *image.RGBA) error
}

// Stepper is the part of the engine an export drives.
type Stepper interface {
	Step() float64
	View() state.View
}

// Painter draws a snapshot into a frame.
type Painter interface {
	Bounds() image.Rectangle
	Render(dst *image.RGBA, snap state.Snapshot) error
}

// Progress is called every few seconds of rendered output.
type Progress func(frame, total int)

// Export renders params.Duration seconds at params.FPS. The clock must be the
// one the stepper reads.
func Export(ctx context.Context, eng Stepper, clk *clock.Manual, painter Painter, enc Encoder, params config.ExportParams, progress Progress) error {
	if params.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", params.FPS)
	}
	if params.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", params.Duration)
	}
	total := FrameCount(params.Duration, params.FPS)

	frames := make(chan *image.RGBA, 8)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return enc.Encode(ctx, params, frames)
	})

	g.Go(func() error {
		defer close(frames)
		for i := 0; i < total; i++ {
			clk.Set(float64(i) / float64(params.FPS))
			eng.Step()

			img := system.GetImage(painter.Bounds())
			if err := painter.Render(img, eng.View().Snapshot()); err != nil {
				system.PutImage(img)
				return fmt.Errorf("render frame %d: %w", i, err)
			}

			select {
			case frames <- img:
			case <-ctx.Done():
				system.PutImage(img)
				return ctx.Err()
			}

			if progress != nil && (i%(params.FPS*10) == 0 || i == total-1) {
				progress(i+1, total)
			}
		}
		return nil
	})

	return g.Wait()
}

// FrameCount is the number of frames covering duration seconds.
func FrameCount(duration float64, fps int) int {
	return int(math.Ceil(duration * float64(fps)))
}

// FFmpegEncoder pipes raw RGBA frames into ffmpeg.
type FFmpegEncoder struct {
	Log *slog.Logger
}

func (e *FFmpegEncoder) Encode(ctx context.Context, params config.ExportParams, frames <-chan *image.RGBA) error {
	args := buildArgs(params)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}
	if e.Log != nil {
		e.Log.Debug("ffmpeg started", "args", args)
	}

	writeErr := writeFrames(stdin, frames)
	stdin.Close()
	waitErr := cmd.Wait()

	if writeErr != nil {
		return fmt.Errorf("write raw error: %w", writeErr)
	}
	if waitErr != nil {
		return fmt.Errorf("ffmpeg wait error: %w", waitErr)
	}
	return nil
}

// writeFrames copies every frame and recycles its buffer. After a write
// error the remaining frames are drained so the producer never blocks.
func writeFrames(w io.Writer, frames <-chan *image.RGBA) error {
	var firstErr error
	for img := range frames {
		if firstErr == nil {
			firstErr = writeRawRGBA(w, img)
		}
		system.PutImage(img)
	}
	return firstErr
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	width := img.Rect.Dx() * 4
	if img.Stride == width {
		_, err := w.Write(img.Pix[:width*img.Rect.Dy()])
		return err
	}
	for y := 0; y < img.Rect.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width]
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func buildArgs(params config.ExportParams) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"-framerate", strconv.Itoa(params.FPS),
		"-i", "-",
	}
	if params.AudioPath != "" {
		args = append(args, "-i", params.AudioPath, "-map", "0:v", "-map", "1:a", "-c:a", "aac", "-shortest")
		if af := params.Fade.AudioFilter(params.Duration); af != "" {
			args = append(args, "-af", af)
		}
	}
	if vf := params.Fade.VideoFilter(params.Duration); vf != "" {
		args = append(args, "-vf", vf)
	}

	encoder := params.Encoder
	if encoder == "" {
		encoder = "libx264"
	}
	quality := params.Quality
	if quality == 0 {
		quality = system.DefaultQuality(encoder)
	}

	args = append(args,
		"-t", strconv.FormatFloat(params.Duration, 'f', 3, 64),
		"-pix_fmt", "yuv420p",
		"-c:v", encoder,
	)

	switch encoder {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", strconv.Itoa(quality))
	default:
		args = append(args, "-crf", strconv.Itoa(quality), "-preset", "medium")
	}

	return append(args, params.Output)
}
