package artwork

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const watermarkText = "PREVIEW - NOT FOR DISTRIBUTION"

// DeriveWatermarked stamps a tiled diagonal notice over the generated
// painting. The preview shown before purchase is this asset, never the clean
// one.
func DeriveWatermarked(data []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode artwork: %w", err)
	}

	bounds := src.Bounds()
	overlay := image.NewNRGBA(bounds)
	drawer := &font.Drawer{
		Dst:  overlay,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 110}),
		Face: basicfont.Face7x13,
	}

	textWidth := drawer.MeasureString(watermarkText).Ceil()
	stepX := textWidth + 60
	stepY := 120
	row := 0
	for y := bounds.Min.Y + stepY/2; y < bounds.Max.Y; y += stepY {
		// Offset alternate rows so the stamp reads as a diagonal pattern.
		offset := 0
		if row%2 == 1 {
			offset = stepX / 2
		}
		for x := bounds.Min.X - offset; x < bounds.Max.X; x += stepX {
			drawer.Dot = fixed.P(x, y)
			drawer.DrawString(watermarkText)
		}
		row++
	}

	marked := imaging.Overlay(src, overlay, image.Pt(bounds.Min.X, bounds.Min.Y), 1.0)
	return encodePNG(marked)
}

// DeriveFinal produces the clean deliverable from the original generation
// result. It must always start from the unmarked source, never from the
// watermarked preview.
func DeriveFinal(data []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode artwork: %w", err)
	}
	return encodePNG(imaging.Clone(src))
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode artwork: %w", err)
	}
	return buf.Bytes(), nil
}
