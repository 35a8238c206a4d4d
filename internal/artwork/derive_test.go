package artwork

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := imaging.New(400, 600, color.NRGBA{R: 30, G: 60, B: 120, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestDeriveWatermarkedChangesPixels(t *testing.T) {
	src := samplePNG(t)

	marked, err := DeriveWatermarked(src)
	require.NoError(t, err)
	require.NotEmpty(t, marked)
	require.NotEqual(t, src, marked, "watermarking must not be a passthrough")

	img, err := imaging.Decode(bytes.NewReader(marked))
	require.NoError(t, err)
	require.Equal(t, 400, img.Bounds().Dx())
	require.Equal(t, 600, img.Bounds().Dy())

	// The stamp is a translucent overlay: at least some pixels must differ
	// from the flat source color.
	base := color.NRGBAModel.Convert(color.NRGBA{R: 30, G: 60, B: 120, A: 255})
	changed := 0
	for y := 0; y < 600; y += 7 {
		for x := 0; x < 400; x += 7 {
			if color.NRGBAModel.Convert(img.At(x, y)) != base {
				changed++
			}
		}
	}
	require.Greater(t, changed, 0)
}

func TestDeriveFinalIsClean(t *testing.T) {
	src := samplePNG(t)

	final, err := DeriveFinal(src)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(final))
	require.NoError(t, err)

	// Every sampled pixel keeps the source color: no stamp on the deliverable.
	base := color.NRGBAModel.Convert(color.NRGBA{R: 30, G: 60, B: 120, A: 255})
	for y := 0; y < 600; y += 13 {
		for x := 0; x < 400; x += 13 {
			require.Equal(t, base, color.NRGBAModel.Convert(img.At(x, y)))
		}
	}
}

func TestDeriveRejectsGarbage(t *testing.T) {
	_, err := DeriveWatermarked([]byte("not an image"))
	require.Error(t, err)
	_, err = DeriveFinal([]byte("not an image"))
	require.Error(t, err)
}
