package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	appErr "github.com/listing-studio/engine/pkg/errors"
	"github.com/stretchr/testify/require"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestComposeLaysOutThreeTiles(t *testing.T) {
	red := solidPNG(t, 800, 400, color.RGBA{255, 0, 0, 255})
	green := solidPNG(t, 300, 900, color.RGBA{0, 255, 0, 255})
	blue := solidPNG(t, 366, 366, color.RGBA{0, 0, 255, 255})

	out, err := Compose([][]byte{red, green, blue})
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 1098, img.Bounds().Dx())
	require.Equal(t, 366, img.Bounds().Dy())

	r, g, b, _ := img.At(183, 183).RGBA()
	require.Greater(t, r>>8, uint32(200))
	require.Less(t, g>>8, uint32(60))
	require.Less(t, b>>8, uint32(60))

	r, g, _, _ = img.At(366+183, 183).RGBA()
	require.Less(t, r>>8, uint32(60))
	require.Greater(t, g>>8, uint32(200))
}

func TestComposeRejectsWrongCount(t *testing.T) {
	_, err := Compose([][]byte{solidPNG(t, 10, 10, color.White)})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestComposeRejectsGarbage(t *testing.T) {
	p := solidPNG(t, 10, 10, color.White)
	_, err := Compose([][]byte{p, []byte("not an image"), p})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestNormalizeProducesJPEG(t *testing.T) {
	out, err := Normalize(solidPNG(t, 64, 32, color.Black))
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	require.Equal(t, 64, cfg.Width)
}

func TestDataURLRoundTrip(t *testing.T) {
	u := DataURL(MimeJPEG, []byte{1, 2, 3})
	require.True(t, IsDataURL(u))

	mime, data, err := DecodeDataURL(u)
	require.NoError(t, err)
	require.Equal(t, MimeJPEG, mime)
	require.Equal(t, []byte{1, 2, 3}, data)

	_, _, err = DecodeDataURL("https://example.com/a.png")
	require.Error(t, err)
}
