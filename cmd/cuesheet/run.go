package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/cuesheet/internal/clock"
	"github.com/ivlev/cuesheet/internal/config"
	"github.com/ivlev/cuesheet/internal/director"
	"github.com/ivlev/cuesheet/internal/engine"
	"github.com/ivlev/cuesheet/internal/interaction"
	"github.com/ivlev/cuesheet/internal/renderer"
	"github.com/ivlev/cuesheet/internal/reveal"
	"github.com/ivlev/cuesheet/internal/source"
	"github.com/ivlev/cuesheet/internal/system"
	"github.com/ivlev/cuesheet/internal/transport"
	"github.com/ivlev/cuesheet/internal/video"
)

const discoveryInterval = 250 * time.Millisecond

var errQuit = errors.New("quit")

func play(ctx context.Context, cfg *config.Config, scenario *director.Scenario, mode reveal.Mode, duration float64, simulate bool, logger *slog.Logger) error {
	var tr transport.Transport
	var err error
	if cfg.AudioPath == "" || simulate {
		tr = transport.NewSimulated(duration)
		fmt.Println("[*] No audio playback, using the wall clock")
	} else if tr, err = transport.NewProcess(cfg.AudioPath, duration, logger); err != nil {
		return err
	}
	if err := tr.SetVolume(cfg.Volume); err != nil {
		return err
	}

	attach := clock.NewAttachable()
	eng, err := engine.New(scenario, attach, engine.Options{
		Period:        cfg.SamplePeriod,
		RevealMode:    mode,
		TrackDuration: duration,
		Ended:         tr.Ended,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	vp := interaction.Viewport{W: float64(cfg.Width), H: float64(cfg.Height)}
	dodger := interaction.NewDodger(eng.Store(), vp, acceptButton(vp), interaction.WithLogger(logger))

	fmt.Printf("--- [CUESHEET %s | session %s] ---\n", cfg.BuildVersion, eng.Session())
	fmt.Println("[*] Controls: p play/pause, s <sec> seek, v <0-1> volume, h hover, c click, t touch, r <w> <h> resize, q quit")

	commands := make(chan string)
	go scanLines(os.Stdin, commands)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return clock.AttachWhenReady(ctx, attach, playerReady(tr), discoveryInterval)
	})
	g.Go(func() error {
		return renderer.NewConsole(os.Stdout, eng.View(), eng.Elapsed).Run(ctx)
	})
	g.Go(func() error {
		return eng.Run(ctx)
	})
	g.Go(func() error {
		if err := tr.Play(); err != nil {
			return err
		}
		<-ctx.Done()
		return tr.Close()
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case line, ok := <-commands:
				if !ok {
					<-ctx.Done()
					return nil
				}
				msg, err := control(line, tr, dodger)
				if err != nil {
					return err
				}
				if msg != "" {
					fmt.Println(msg)
				}
			}
		}
	})

	err = g.Wait()
	eng.Close()
	if cfg.ShowStats {
		printStats(eng.Stats())
	}
	return err
}

// playerReady reports the transport as a clock once it has started playing.
func playerReady(tr transport.Transport) func() (clock.Positioner, bool) {
	return func() (clock.Positioner, bool) {
		return tr, !tr.Paused()
	}
}

// acceptButton is the accept button centred in the viewport.
func acceptButton(vp interaction.Viewport) *interaction.Rect {
	return &interaction.Rect{X: vp.W/2 - 60, Y: vp.H/2 - 25, W: 120, H: 50}
}

func scanLines(r io.Reader, out chan<- string) {
	defer close(out)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		out <- sc.Text()
	}
}

// control applies one console command. It returns errQuit for q.
func control(line string, tr transport.Transport, dodger *interaction.Dodger) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	switch fields[0] {
	case "q", "quit":
		return "", errQuit
	case "p", "pause", "play":
		if err := transport.Toggle(tr); err != nil {
			return "", err
		}
		if tr.Paused() {
			return fmt.Sprintf("[*] Paused at %s", transport.FormatTime(tr.Position())), nil
		}
		return fmt.Sprintf("[*] Playing from %s", transport.FormatTime(tr.Position())), nil
	case "s", "seek":
		v, err := argFloat(fields)
		if err != nil {
			return fmt.Sprintf("[!] %v", err), nil
		}
		if err := tr.Seek(v); err != nil {
			return fmt.Sprintf("[!] %v", err), nil
		}
		return fmt.Sprintf("[*] Seek %s / %s", transport.FormatTime(tr.Position()), transport.FormatTime(tr.Duration())), nil
	case "v", "volume":
		v, err := argFloat(fields)
		if err != nil {
			return fmt.Sprintf("[!] %v", err), nil
		}
		if err := tr.SetVolume(v); err != nil {
			return fmt.Sprintf("[!] %v", err), nil
		}
		return fmt.Sprintf("[*] Volume %.0f%%", tr.Volume()*100), nil
	case "h", "hover":
		p, n := dodger.Hover()
		return fmt.Sprintf("[*] Button at (%.0f, %.0f), attempts %d", p.X, p.Y, n), nil
	case "c", "click":
		p, n := dodger.Click()
		return fmt.Sprintf("[*] Button at (%.0f, %.0f), attempts %d", p.X, p.Y, n), nil
	case "t", "touch":
		p, n := dodger.Touch()
		return fmt.Sprintf("[*] Button at (%.0f, %.0f), attempts %d", p.X, p.Y, n), nil
	case "r", "resize":
		if len(fields) < 3 {
			return "[!] resize needs a width and a height", nil
		}
		w, errW := strconv.ParseFloat(fields[1], 64)
		h, errH := strconv.ParseFloat(fields[2], 64)
		if errW != nil || errH != nil || w <= 0 || h <= 0 {
			return fmt.Sprintf("[!] invalid size %s x %s", fields[1], fields[2]), nil
		}
		vp := interaction.Viewport{W: w, H: h}
		p := dodger.Resize(vp, acceptButton(vp))
		return fmt.Sprintf("[*] Viewport %.0fx%.0f, button at (%.0f, %.0f)", w, h, p.X, p.Y), nil
	default:
		return fmt.Sprintf("[!] Unknown command %q", fields[0]), nil
	}
}

func argFloat(fields []string) (float64, error) {
	if len(fields) < 2 {
		return 0, fmt.Errorf("%s needs a value", fields[0])
	}
	return strconv.ParseFloat(fields[1], 64)
}

func export(ctx context.Context, cfg *config.Config, scenario *director.Scenario, mode reveal.Mode, duration float64, logger *slog.Logger) error {
	if duration <= 0 {
		return fmt.Errorf("unknown length: pass -audio or -duration")
	}

	clk := clock.NewManual(0)
	eng, err := engine.New(scenario, clk, engine.Options{
		RevealMode:    mode,
		TrackDuration: duration,
		Logger:        logger,
		Manual:        true,
	})
	if err != nil {
		return err
	}
	defer eng.Close()
	if err := eng.Begin(); err != nil {
		return err
	}

	var backdrop renderer.BackdropFunc
	deck := cfg.DeckPath
	if deck == "" {
		if latest, err := system.FindLatest("input/deck", ".pdf"); err == nil {
			deck = latest
		}
	}
	if deck != "" {
		src, err := source.Open(deck)
		if err != nil {
			return fmt.Errorf("backdrops: %w", err)
		}
		defer src.Close()
		backdrop = source.NewBackdrops(src, scenario.Schedule, cfg.DPI).For
		fmt.Printf("[*] Backdrops: %s (%d pages)\n", deck, src.PageCount())
	}

	painter, err := renderer.NewFrame(cfg.Width, cfg.Height, scenario.Reveals, backdrop, logger)
	if err != nil {
		return err
	}

	if cfg.VideoEncoder == "" {
		cfg.VideoEncoder = system.BestH264Encoder(ctx)
		if cfg.VideoEncoder != "libx264" {
			fmt.Printf("[*] Hardware encoder: %s\n", cfg.VideoEncoder)
		}
	}
	cfg.OutputVideo = exportPath(cfg)

	params := cfg.Export(duration)
	fmt.Println("--- [CUESHEET EXPORT] ---")
	fmt.Printf("[*] %dx%d @ %d FPS | %s | %d frames\n", params.Width, params.Height, params.FPS, transport.FormatTime(duration), video.FrameCount(duration, params.FPS))
	fmt.Println("-------------------------")

	start := time.Now()
	err = video.Export(ctx, eng, clk, painter, &video.FFmpegEncoder{Log: logger}, params, func(frame, total int) {
		fmt.Printf("\r[*] Rendering: %d/%d (%.0f%%)", frame, total, float64(frame)*100/float64(total))
	})
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("[+++] Done in %s: %s\n", time.Since(start).Round(time.Millisecond), params.Output)
	if cfg.ShowStats {
		printStats(eng.Stats())
	}
	return nil
}

func printStats(st engine.Stats) {
	fmt.Println("--- [STATS] ---")
	fmt.Printf("[*] Session: %s | phase: %s\n", st.Session, st.Phase)
	fmt.Printf("[*] Ticks: %d (stale %d) | state writes: %d | last elapsed: %s\n",
		st.Ticks, st.StaleTicks, st.Writes, transport.FormatTime(st.Elapsed))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	usage, err := system.ProcessUsage(ctx)
	if err != nil {
		fmt.Printf("[!] Process stats unavailable: %v\n", err)
		return
	}
	fmt.Printf("[*] Process: %s\n", usage)
}
