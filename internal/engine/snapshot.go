package engine

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	markColor    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	labelColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

// captureFailure writes an annotated screenshot of the failure moment and
// returns its path. Capture problems only log; the run result already
// carries the real failure.
func (in *Interpreter) captureFailure(step int) string {
	if in.opts.SnapshotDir == "" || in.p.Screens == nil {
		return ""
	}
	img, err := in.p.Screens.Capture()
	if err != nil {
		in.log.Warn("failure snapshot capture failed", zap.Error(err))
		return ""
	}

	rgba := imageToRGBA(img)
	if pt := in.lastTarget; pt != nil {
		drawCrosshair(rgba, pt.X, pt.Y)
		drawTextWithOutline(rgba, fmt.Sprintf("(%d,%d)", pt.X, pt.Y), pt.X, pt.Y-20)
	}

	if err := os.MkdirAll(in.opts.SnapshotDir, 0o755); err != nil {
		in.log.Warn("failure snapshot dir", zap.Error(err))
		return ""
	}
	name := fmt.Sprintf("failure-%s-step%d.png", time.Now().Format("20060102-150405"), step)
	path := filepath.Join(in.opts.SnapshotDir, name)
	f, err := os.Create(path)
	if err != nil {
		in.log.Warn("failure snapshot create", zap.Error(err))
		return ""
	}
	defer f.Close()
	if err := png.Encode(f, rgba); err != nil {
		in.log.Warn("failure snapshot encode", zap.Error(err))
		return ""
	}
	in.log.Info("failure snapshot written", zap.String("path", path))
	return path
}

func imageToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}

// drawCrosshair marks the last attempted pointer location.
func drawCrosshair(img *image.RGBA, x, y int) {
	const arm = 12
	bounds := img.Bounds()
	for d := -arm; d <= arm; d++ {
		if p := image.Pt(x+d, y); p.In(bounds) {
			img.Set(p.X, p.Y, markColor)
		}
		if p := image.Pt(x, y+d); p.In(bounds) {
			img.Set(p.X, p.Y, markColor)
		}
	}
}

// drawTextWithOutline centers text at (x, y) with a dark outline so it
// stays readable on any background.
func drawTextWithOutline(img *image.RGBA, text string, x, y int) {
	textWidth := len(text) * 7 // basicfont.Face7x13 advance
	offsetX := x - textWidth/2
	offsetY := y

	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			d := &font.Drawer{
				Dst:  img,
				Src:  image.NewUniform(outlineColor),
				Face: basicfont.Face7x13,
				Dot: fixed.Point26_6{
					X: fixed.Int26_6((offsetX + dx) * 64),
					Y: fixed.Int26_6((offsetY + dy) * 64),
				},
			}
			d.DrawString(text)
		}
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(offsetX * 64),
			Y: fixed.Int26_6(offsetY * 64),
		},
	}
	d.DrawString(text)
}
