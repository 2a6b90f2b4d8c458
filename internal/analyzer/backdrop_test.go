package analyzer

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func filled(w, h int, c color.Gray) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = c.Y
	}
	return img
}

func TestAnalyzeBlack(t *testing.T) {
	r := New().Analyze(filled(100, 50, color.Gray{Y: 0}))
	assert.Zero(t, r.Luminance)
	assert.Zero(t, r.EdgeDensity)
	assert.Equal(t, uint8(96), r.VeilAlpha())
}

func TestAnalyzeWhite(t *testing.T) {
	r := New().Analyze(filled(100, 50, color.Gray{Y: 255}))
	assert.InDelta(t, 1.0, r.Luminance, 1e-9)
	assert.Zero(t, r.EdgeDensity)
	assert.Equal(t, uint8(192), r.VeilAlpha())
}

func TestAnalyzeFindsEdges(t *testing.T) {
	// White rectangle on black, like a text block on a slide.
	img := filled(200, 200, color.Gray{Y: 0})
	for y := 50; y < 150; y++ {
		for x := 50; x < 150; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	r := New().Analyze(img)
	assert.Greater(t, r.EdgeDensity, 0.0)
	assert.Less(t, r.EdgeDensity, 0.1)
	assert.InDelta(t, 0.25, r.Luminance, 0.01)
	assert.Greater(t, r.VeilAlpha(), uint8(96))
}

func TestAnalyzeDownsamplesWideImages(t *testing.T) {
	a := New()
	gray := a.toGrayscale(filled(1280, 720, color.Gray{Y: 128}))
	assert.Equal(t, image.Rect(0, 0, 320, 180), gray.Bounds())

	r := a.Analyze(filled(1280, 720, color.Gray{Y: 128}))
	assert.InDelta(t, 128.0/255, r.Luminance, 0.01)
}

func TestAnalyzeEmpty(t *testing.T) {
	assert.Equal(t, Report{}, New().Analyze(image.NewGray(image.Rectangle{})))
}

func TestVeilAlphaIsCapped(t *testing.T) {
	assert.Equal(t, uint8(224), Report{Luminance: 1, EdgeDensity: 1}.VeilAlpha())
}
