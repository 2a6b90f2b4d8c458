package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ivlev/cuesheet/internal/config"
	"github.com/ivlev/cuesheet/internal/director"
	"github.com/ivlev/cuesheet/internal/reveal"
	"github.com/ivlev/cuesheet/internal/system"
)

var version = "dev"

func main() {
	dirs := []string{"input/audio", "input/deck", director.ScenariosDir, "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	cfg := config.Default()
	if err := config.ParseEnv(cfg); err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}
	cfg.BuildVersion = version

	scenarioPtr := flag.String("scenario", cfg.ScenarioPath, "Scenario YAML (default: newest file in scenarios/, else the built-in show)")
	audioPtr := flag.String("audio", cfg.AudioPath, "Audio track (default: newest file in input/audio/)")
	deckPtr := flag.String("deck", cfg.DeckPath, "PDF or image folder with one backdrop per cue (export only)")
	outputPtr := flag.String("output", cfg.OutputVideo, "Export path (generated in output/ if empty)")
	periodPtr := flag.Duration("period", cfg.SamplePeriod, "Clock sampling period")
	revealPtr := flag.String("reveal-mode", cfg.RevealMode, "Reveal animation: stepped, direct")
	volumePtr := flag.Float64("volume", cfg.Volume, "Playback volume 0..1")
	widthPtr := flag.Int("width", cfg.Width, "Width")
	heightPtr := flag.Int("height", cfg.Height, "Height")
	fpsPtr := flag.Int("fps", cfg.FPS, "FPS (export)")
	dpiPtr := flag.Int("dpi", cfg.DPI, "DPI for PDF backdrops")
	presetPtr := flag.String("preset", cfg.Preset, "Format preset: 16:9, 9:16, 4:5")
	encoderPtr := flag.String("encoder", cfg.VideoEncoder, "H.264 encoder (auto-detected if empty)")
	qualityPtr := flag.Int("quality", cfg.Quality, "Video quality (0 - auto, x264: CRF 1-51, VideoToolbox: bitrate = Q*100 kbit/s)")
	fadeInPtr := flag.Float64("fade-in", cfg.FadeIn, "Export fade-in (sec)")
	fadeOutPtr := flag.Float64("fade-out", cfg.FadeOut, "Export fade-out (sec)")
	statsPtr := flag.Bool("stats", cfg.ShowStats, "Print tick, write and process stats on exit")
	logLevelPtr := flag.String("log-level", cfg.LogLevel.String(), "Log level: debug, info, warn, error")
	durationPtr := flag.Float64("duration", 0, "Track length in seconds when there is no audio (0: until interrupted)")
	simulatePtr := flag.Bool("simulate", false, "Do not play audio, advance the clock with the wall clock")
	exportPtr := flag.Bool("export", false, "Render the show to a video file instead of playing it")
	generatePtr := flag.Bool("generate-scenario", false, "Write a scenario spreading -visuals across the track and exit")
	visualsPtr := flag.String("visuals", "", "Comma-separated visual ids for -generate-scenario (default: the built-in ones)")

	flag.Parse()

	cfg.ScenarioPath = *scenarioPtr
	cfg.AudioPath = *audioPtr
	cfg.DeckPath = *deckPtr
	cfg.OutputVideo = *outputPtr
	cfg.SamplePeriod = *periodPtr
	cfg.RevealMode = *revealPtr
	cfg.Volume = *volumePtr
	cfg.Width, cfg.Height = *widthPtr, *heightPtr
	cfg.FPS = *fpsPtr
	cfg.DPI = *dpiPtr
	cfg.Preset = *presetPtr
	cfg.VideoEncoder = *encoderPtr
	cfg.Quality = *qualityPtr
	cfg.FadeIn, cfg.FadeOut = *fadeInPtr, *fadeOutPtr
	cfg.ShowStats = *statsPtr
	if err := cfg.LogLevel.UnmarshalText([]byte(*logLevelPtr)); err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}
	cfg.ApplyPreset()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AudioPath == "" {
		if latest, err := system.FindLatestAudio("input/audio"); err == nil {
			cfg.AudioPath = latest
			fmt.Printf("[*] Audio: %s\n", cfg.AudioPath)
		}
	}

	if *generatePtr {
		if err := generate(ctx, cfg, *visualsPtr, *durationPtr); err != nil {
			log.Fatalf("[-] Scenario generation failed: %v", err)
		}
		return
	}

	scenario, from, err := director.LoadScenario(cfg.ScenarioPath)
	if err != nil {
		log.Fatalf("[-] Scenario error: %v", err)
	}
	fmt.Printf("[*] Scenario: %s (%d cues, %d reveals)\n", from, len(scenario.Schedule), len(scenario.Reveals))
	if cfg.AudioPath == "" && scenario.Audio != "" {
		cfg.AudioPath = scenario.Audio
		fmt.Printf("[*] Audio from scenario: %s\n", cfg.AudioPath)
	}

	duration := trackDuration(ctx, cfg.AudioPath, *durationPtr)
	mode, err := reveal.ParseMode(cfg.RevealMode)
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}

	if *exportPtr {
		if err := export(ctx, cfg, scenario, mode, duration, logger); err != nil {
			log.Fatalf("[-] Export failed: %v", err)
		}
		return
	}

	if err := play(ctx, cfg, scenario, mode, duration, *simulatePtr, logger); err != nil && !errors.Is(err, errQuit) {
		log.Fatalf("[-] %v", err)
	}
}

func trackDuration(ctx context.Context, audio string, fallback float64) float64 {
	if audio == "" {
		return fallback
	}
	d, err := system.AudioDuration(ctx, audio)
	if err != nil {
		log.Printf("[!] Could not read audio duration: %v", err)
		return fallback
	}
	fmt.Printf("[*] Track length: %.2fs\n", d)
	return d
}

func generate(ctx context.Context, cfg *config.Config, visuals string, fallback float64) error {
	ids := director.DefaultScenario().VisualIDs()
	if visuals != "" {
		ids = nil
		for _, id := range strings.Split(visuals, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	duration := trackDuration(ctx, cfg.AudioPath, fallback)
	scenario, err := director.NewDirector().GenerateScenario(ids, cfg.AudioPath, duration)
	if err != nil {
		return err
	}

	path := cfg.ScenarioPath
	if path == "" {
		path = director.GenerateScenarioPath()
	}
	if err := director.WriteScenario(scenario, path); err != nil {
		return err
	}
	fmt.Printf("[+++] Scenario written: %s (%d cues over %.2fs)\n", path, len(scenario.Schedule), duration)
	return nil
}

func exportPath(cfg *config.Config) string {
	if cfg.OutputVideo != "" {
		return cfg.OutputVideo
	}
	name := "cuesheet"
	if cfg.AudioPath != "" {
		base := filepath.Base(cfg.AudioPath)
		name = strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), " ", "_")
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join("output", fmt.Sprintf("%s_%s.mp4", name, timestamp))
}
