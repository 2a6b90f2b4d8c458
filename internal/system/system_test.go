package system

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestFindLatestAudio(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	touch(t, filepath.Join(dir, "old.mp3"), now.Add(-time.Hour))
	touch(t, filepath.Join(dir, "new.FLAC"), now)
	touch(t, filepath.Join(dir, "newest.txt"), now.Add(time.Hour))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.mp3"), 0o755))

	got, err := FindLatestAudio(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "new.FLAC"), got)
}

func TestFindLatestEmpty(t *testing.T) {
	_, err := FindLatest(t.TempDir(), ".pdf")
	assert.ErrorContains(t, err, ".pdf")

	_, err = FindLatest(filepath.Join(t.TempDir(), "missing"), ".pdf")
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration([]byte("271.430000\n"))
	require.NoError(t, err)
	assert.InDelta(t, 271.43, d, 1e-9)

	_, err = parseDuration([]byte("N/A"))
	assert.Error(t, err)
}

func TestPickEncoder(t *testing.T) {
	assert.Equal(t, "h264_nvenc", pickEncoder(" V....D h264_nvenc  NVIDIA NVENC H.264 encoder"))
	assert.Equal(t, "h264_videotoolbox", pickEncoder("h264_nvenc\nh264_videotoolbox"))
	assert.Equal(t, "libx264", pickEncoder(""))
	assert.Equal(t, 23, DefaultQuality("libx264"))
	assert.Equal(t, 75, DefaultQuality("h264_videotoolbox"))
}

func TestImagePoolReusesBySize(t *testing.T) {
	p := NewImagePool()
	r := image.Rect(0, 0, 8, 4)

	img := p.Get(r)
	assert.Equal(t, r, img.Rect)
	p.Put(img)
	p.Put(image.NewRGBA(image.Rect(0, 0, 3, 3)))
	p.Put(nil)

	again := p.Get(r)
	assert.Equal(t, r, again.Rect)
}

func TestProcessUsage(t *testing.T) {
	u, err := ProcessUsage(context.Background())
	require.NoError(t, err)
	assert.Positive(t, u.RSS)
	assert.Positive(t, u.Threads)
	assert.Contains(t, u.String(), "rss")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "3.0 MiB", FormatBytes(3<<20))
}
