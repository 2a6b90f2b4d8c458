// Package analyzer measures how much a backdrop competes with text drawn on
// top of it.
package analyzer

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Report summarises a backdrop.
type Report struct {
	Luminance   float64 // Mean brightness, 0..1
	EdgeDensity float64 // Share of pixels on a Sobel edge, 0..1
}

// Analyzer downsamples a backdrop and runs a Sobel pass over it.
type Analyzer struct {
	EdgeThreshold float64 // Gradient magnitude threshold
	MaxWidth      int     // Images are shrunk to this width before analysis
}

// New returns an analyzer with defaults tuned for slide decks.
func New() *Analyzer {
	return &Analyzer{
		EdgeThreshold: 30.0,
		MaxWidth:      320,
	}
}

// Analyze reports brightness and busyness of img.
func (a *Analyzer) Analyze(img image.Image) Report {
	gray := a.toGrayscale(img)
	b := gray.Bounds()
	if b.Empty() {
		return Report{}
	}

	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += float64(gray.GrayAt(x, y).Y)
		}
	}
	pixels := float64(b.Dx() * b.Dy())

	return Report{
		Luminance:   sum / pixels / 255,
		EdgeDensity: float64(sobelEdges(gray, a.EdgeThreshold)) / pixels,
	}
}

// VeilAlpha is the opacity of the palette-coloured layer laid over the
// backdrop so text stays legible: stronger for bright or busy images.
func (r Report) VeilAlpha() uint8 {
	alpha := 96 + 96*r.Luminance + 256*r.EdgeDensity
	return uint8(math.Min(224, math.Max(96, alpha)))
}

func (a *Analyzer) toGrayscale(img image.Image) *image.Gray {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if a.MaxWidth > 0 && w > a.MaxWidth {
		h = max(1, h*a.MaxWidth/w)
		w = a.MaxWidth
	}

	gray := image.NewGray(image.Rect(0, 0, w, h))
	if w == src.Dx() && h == src.Dy() {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				gray.Set(x, y, color.GrayModel.Convert(img.At(src.Min.X+x, src.Min.Y+y)))
			}
		}
		return gray
	}
	xdraw.ApproxBiLinear.Scale(gray, gray.Rect, img, src, xdraw.Src, nil)
	return gray
}

// sobelEdges counts interior pixels whose gradient magnitude exceeds
// threshold.
func sobelEdges(gray *image.Gray, threshold float64) int {
	b := gray.Bounds()

	gx := [3][3]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	gy := [3][3]int{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	edges := 0
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			var sumX, sumY float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					pixel := float64(gray.GrayAt(x+kx, y+ky).Y)
					sumX += pixel * float64(gx[ky+1][kx+1])
					sumY += pixel * float64(gy[ky+1][kx+1])
				}
			}
			if math.Sqrt(sumX*sumX+sumY*sumY) > threshold {
				edges++
			}
		}
	}
	return edges
}
