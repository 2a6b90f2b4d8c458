package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ImageDeck is a folder of images in name order, or a single image.
type ImageDeck struct {
	paths []string
}

func NewImageDeck(path string) (*ImageDeck, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !fi.IsDir() {
		return &ImageDeck{paths: []string{path}}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(paths)
	return &ImageDeck{paths: paths}, nil
}

func (d *ImageDeck) PageCount() int {
	return len(d.paths)
}

// RenderPage decodes the image; dpi is ignored.
func (d *ImageDeck) RenderPage(index int, dpi int) (image.Image, error) {
	if index < 0 || index >= len(d.paths) {
		return nil, fmt.Errorf("page %d out of range [0,%d)", index, len(d.paths))
	}
	return LoadImage(d.paths[index])
}

func (d *ImageDeck) Close() error {
	return nil
}

// LoadImage decodes a PNG or JPEG file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
