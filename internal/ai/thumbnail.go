package ai

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/reelhub/backend/internal/apperr"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	thumbWidth  = 1280
	thumbHeight = 720

	labelFontSize = 48
	labelMaxRunes = 20
	labelKeep     = 17
	defaultLabel  = "New Video"

	iconSize   = 100
	iconOffset = 100 // below the label baseline
)

var (
	gradientFrom = color.RGBA{R: 25, G: 118, B: 210, A: 255}
	gradientTo   = color.RGBA{R: 66, G: 165, B: 245, A: 255}
	iconFill     = color.NRGBA{R: 255, G: 255, B: 255, A: 180}
)

// ThumbnailLabel is the text drawn on a thumbnail: the filename, cut to 17
// characters plus "..." when longer than 20.
func ThumbnailLabel(filename string) string {
	if filename == "" {
		return defaultLabel
	}
	r := []rune(filename)
	if len(r) > labelMaxRunes {
		return string(r[:labelKeep]) + "..."
	}
	return filename
}

// GenerateThumbnail draws a 1280x720 placeholder: a diagonal blue gradient,
// the centered filename and a play button. On encoding failure it returns an
// empty, non-nil slice and an error wrapping apperr.ErrGenerationFailed.
func (g *Generator) GenerateThumbnail(filename string) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, thumbWidth, thumbHeight))
	fillGradient(img)

	face, err := opentype.NewFace(g.font, &opentype.FaceOptions{Size: labelFontSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return []byte{}, fmt.Errorf("load font face: %v: %w", err, apperr.ErrGenerationFailed)
	}
	defer face.Close()

	label := ThumbnailLabel(filename)
	d := &font.Drawer{Dst: img, Src: image.White, Face: face}
	metrics := face.Metrics()
	x := (thumbWidth - d.MeasureString(label).Ceil()) / 2
	y := (thumbHeight-metrics.Height.Ceil())/2 + metrics.Ascent.Ceil()
	d.Dot = fixed.P(x, y)
	d.DrawString(label)

	drawPlayButton(img, (thumbWidth-iconSize)/2, y+iconOffset)

	var buf bytes.Buffer
	if err := g.encode(&buf, img); err != nil {
		g.log.WithError(err).WithField("filename", filename).Error("thumbnail encoding failed")
		return []byte{}, fmt.Errorf("encode thumbnail: %v: %w", err, apperr.ErrGenerationFailed)
	}
	return buf.Bytes(), nil
}

// fillGradient paints a linear gradient from the top-left to the
// bottom-right corner.
func fillGradient(img *image.RGBA) {
	b := img.Bounds()
	dx, dy := float64(b.Dx()), float64(b.Dy())
	norm := dx*dx + dy*dy
	for py := b.Min.Y; py < b.Max.Y; py++ {
		for px := b.Min.X; px < b.Max.X; px++ {
			t := (float64(px)*dx + float64(py)*dy) / norm
			img.SetRGBA(px, py, color.RGBA{
				R: lerp(gradientFrom.R, gradientTo.R, t),
				G: lerp(gradientFrom.G, gradientTo.G, t),
				B: lerp(gradientFrom.B, gradientTo.B, t),
				A: 255,
			})
		}
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

// drawPlayButton draws a translucent disc with a triangle inside, its
// bounding box starting at (x, y).
func drawPlayButton(dst draw.Image, x, y int) {
	b := dst.Bounds()

	// Circle from four cubic arcs.
	const k = 0.5522848
	r := float32(iconSize) / 2
	cx, cy := float32(x)+r, float32(y)+r
	disc := vector.NewRasterizer(b.Dx(), b.Dy())
	disc.MoveTo(cx+r, cy)
	disc.CubeTo(cx+r, cy+k*r, cx+k*r, cy+r, cx, cy+r)
	disc.CubeTo(cx-k*r, cy+r, cx-r, cy+k*r, cx-r, cy)
	disc.CubeTo(cx-r, cy-k*r, cx-k*r, cy-r, cx, cy-r)
	disc.CubeTo(cx+k*r, cy-r, cx+r, cy-k*r, cx+r, cy)
	disc.ClosePath()
	disc.Draw(dst, b, image.NewUniform(iconFill), image.Point{})

	q := float32(iconSize) / 4
	fx, fy := float32(x), float32(y)
	tri := vector.NewRasterizer(b.Dx(), b.Dy())
	tri.MoveTo(fx+q, fy+q)
	tri.LineTo(fx+q, fy+3*q)
	tri.LineTo(fx+3*q, fy+2*q)
	tri.ClosePath()
	tri.Draw(dst, b, image.NewUniform(gradientFrom), image.Point{})
}
