package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AudioExtensions are the track formats ffplay and ffmpeg are asked to read.
var AudioExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"}

// FindLatest returns the most recently modified file in dir with one of the
// given extensions.
func FindLatest(dir string, extensions ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), extensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files in %s", strings.Join(extensions, "/"), dir)
	}
	return latestFile, nil
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func FindLatestAudio(dir string) (string, error) {
	return FindLatest(dir, AudioExtensions...)
}

// AudioDuration asks ffprobe for the length of a media file in seconds.
func AudioDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseDuration(out)
}

func parseDuration(out []byte) (float64, error) {
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration: %w", err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("negative duration %v", duration)
	}
	return duration, nil
}

// BestH264Encoder prefers hardware encoders ffmpeg reports, in order:
// VideoToolbox (macOS), NVENC (NVIDIA), then libx264.
func BestH264Encoder(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(listing string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(listing, name) {
			return name
		}
	}
	return "libx264"
}

// DefaultQuality is the quality setting used when none is given:
// a bitrate factor for VideoToolbox, CQ for NVENC and CRF for x264.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28
	default:
		return 23
	}
}
