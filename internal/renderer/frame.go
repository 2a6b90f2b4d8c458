package renderer

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/cuesheet/internal/analyzer"
	"github.com/ivlev/cuesheet/internal/director"
	"github.com/ivlev/cuesheet/internal/interaction"
	"github.com/ivlev/cuesheet/internal/source"
	"github.com/ivlev/cuesheet/internal/state"
)

// BackdropFunc returns the backdrop of a visual, or nil for none.
type BackdropFunc func(visualID string) (image.Image, error)

const (
	qrSize   = 192
	blockGap = 24
)

// Frame draws a state snapshot into an RGBA image.
type Frame struct {
	width, height int
	face          font.Face
	scale         int
	backdrop      BackdropFunc
	images        map[string]image.Image // Reveal block name -> image
	analyzer      *analyzer.Analyzer
	veils         map[string]uint8 // Visual id -> veil opacity over its backdrop
	log           *slog.Logger
}

// NewFrame prepares a renderer for width x height frames. Image reveals are
// loaded up front: from Path when set, otherwise as a QR code of QR.
func NewFrame(width, height int, reveals []director.Reveal, backdrop BackdropFunc, logger *slog.Logger) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if logger == nil {
		logger = slog.Default()
	}

	f := &Frame{
		width:    width,
		height:   height,
		face:     basicfont.Face7x13,
		scale:    max(1, height/240),
		backdrop: backdrop,
		images:   make(map[string]image.Image),
		analyzer: analyzer.New(),
		veils:    make(map[string]uint8),
		log:      logger.With("component", "renderer"),
	}

	for _, r := range reveals {
		if r.Image == nil {
			continue
		}
		img, err := loadRevealImage(r.Image)
		if err != nil {
			return nil, fmt.Errorf("reveal %q: %w", r.Name, err)
		}
		if img != nil {
			f.images[r.Name] = img
		}
	}
	return f, nil
}

func loadRevealImage(img *director.Image) (image.Image, error) {
	if img.Path != "" {
		return source.LoadImage(img.Path)
	}
	if img.QR == "" {
		return nil, nil
	}
	q, err := qrcode.New(img.QR, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}
	return q.Image(qrSize), nil
}

// Bounds is the frame rectangle.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.width, f.height)
}

// Render paints snap into dst, which must have the frame's bounds.
func (f *Frame) Render(dst *image.RGBA, snap state.Snapshot) error {
	if dst.Rect != f.Bounds() {
		return fmt.Errorf("frame is %v, want %v", dst.Rect, f.Bounds())
	}
	theme := ThemeFor(snap.Palette)

	xdraw.Draw(dst, dst.Rect, image.NewUniform(theme.Background), image.Point{}, xdraw.Src)

	if f.backdrop != nil && snap.VisualID != "" {
		bg, err := f.backdrop(snap.VisualID)
		if err != nil {
			return err
		}
		if bg != nil {
			xdraw.ApproxBiLinear.Scale(dst, fit(bg.Bounds(), dst.Rect), bg, bg.Bounds(), xdraw.Over, nil)
			veil := color.NRGBA{R: theme.Background.R, G: theme.Background.G, B: theme.Background.B, A: f.veil(snap.VisualID, bg)}
			xdraw.Draw(dst, dst.Rect, image.NewUniform(veil), image.Point{}, xdraw.Over)
		}
	}

	f.text(dst, snap.VisualID, image.Pt(12, 12), theme.Accent, 1)

	y := f.height / 3
	for _, b := range snap.Blocks {
		if !b.Visible {
			continue
		}
		line := b.RevealedText()
		w, h := f.measure(line, f.scale)
		f.text(dst, line, image.Pt((f.width-w)/2, y), theme.Text, f.scale)
		y += h + blockGap

		if img, ok := f.images[b.Name]; ok && b.ImageVisible {
			ib := img.Bounds()
			at := image.Pt((f.width-ib.Dx())/2, y)
			xdraw.Draw(dst, ib.Sub(ib.Min).Add(at), img, ib.Min, xdraw.Over)
			y += ib.Dy() + blockGap
		}
	}

	f.button(dst, snap, theme)
	return nil
}

// veil returns the backdrop veil opacity, analysing each visual's backdrop
// once.
func (f *Frame) veil(visualID string, bg image.Image) uint8 {
	if a, ok := f.veils[visualID]; ok {
		return a
	}
	report := f.analyzer.Analyze(bg)
	a := report.VeilAlpha()
	f.veils[visualID] = a
	f.log.Debug("backdrop analysed", "visual", visualID, "luminance", report.Luminance, "edges", report.EdgeDensity, "veil", a)
	return a
}

func (f *Frame) button(dst *image.RGBA, snap state.Snapshot, theme Theme) {
	r := image.Rect(0, 0, int(interaction.ButtonWidth), int(interaction.ButtonHeight)).
		Add(image.Pt(int(snap.Button.X), int(snap.Button.Y)))
	if r.Empty() || !r.Overlaps(dst.Rect) {
		return
	}
	xdraw.Draw(dst, r, image.NewUniform(theme.Accent), image.Point{}, xdraw.Src)

	w, h := f.measure("No", 1)
	f.text(dst, "No", image.Pt(r.Min.X+(r.Dx()-w)/2, r.Min.Y+(r.Dy()-h)/2), theme.Background, 1)
	if snap.Attempts > 0 {
		f.text(dst, fmt.Sprintf("x%d", snap.Attempts), image.Pt(r.Min.X, r.Max.Y+4), theme.Accent, 1)
	}
}

func (f *Frame) measure(s string, scale int) (int, int) {
	w := font.MeasureString(f.face, s).Ceil()
	h := f.face.Metrics().Height.Ceil()
	return w * scale, h * scale
}

// text draws s with its top-left corner at p. Scaled text is drawn at 1x
// and enlarged with nearest-neighbour to keep the bitmap font crisp.
func (f *Frame) text(dst *image.RGBA, s string, p image.Point, c color.Color, scale int) {
	if s == "" {
		return
	}
	w, h := f.measure(s, 1)
	glyphs := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(c),
		Face: f.face,
		Dot:  fixed.Point26_6{X: 0, Y: f.face.Metrics().Ascent},
	}
	d.DrawString(s)

	target := image.Rect(0, 0, w*scale, h*scale).Add(p)
	xdraw.NearestNeighbor.Scale(dst, target, glyphs, glyphs.Rect, xdraw.Over, nil)
}

// fit returns the largest rectangle with src's aspect ratio centred in dst.
func fit(src, dst image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if sw == 0 || sh == 0 {
		return dst
	}
	w, h := dst.Dx(), dst.Dy()
	if w*sh > h*sw {
		w = h * sw / sh
	} else {
		h = w * sh / sw
	}
	origin := dst.Min.Add(image.Pt((dst.Dx()-w)/2, (dst.Dy()-h)/2))
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}
}
