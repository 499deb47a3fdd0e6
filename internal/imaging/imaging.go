package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"regexp"

	"github.com/disintegration/imaging"
	appErr "github.com/listing-studio/engine/pkg/errors"

	// Register decoders for formats the model and browsers hand us.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	// TileSize is the edge of every photo in the upload composite.
	TileSize = 366
	// CompositeTiles is the number of photos a composite is built from.
	CompositeTiles = 3
	// JPEGQuality applies to every JPEG this package writes.
	JPEGQuality = 85

	MimeJPEG = "image/jpeg"
)

// Compose cover-fits each photo into a square tile and lays the tiles out left to right
// on a white canvas, producing a JPEG.
func Compose(photos [][]byte) ([]byte, error) {
	if len(photos) != CompositeTiles {
		return nil, appErr.New(appErr.CodeInvalid, fmt.Sprintf("expected exactly %d images", CompositeTiles))
	}
	canvas := imaging.New(TileSize*CompositeTiles, TileSize, color.White)
	for i, raw := range photos {
		img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
		if err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInvalid, fmt.Sprintf("decode image %d failed", i+1))
		}
		tile := imaging.Fill(img, TileSize, TileSize, imaging.Center, imaging.Lanczos)
		canvas = imaging.Paste(canvas, tile, image.Pt(i*TileSize, 0))
	}
	return encodeJPEG(canvas)
}

// Normalize re-encodes an arbitrary supported image as JPEG.
func Normalize(raw []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "decode image failed")
	}
	return encodeJPEG(img)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "encode jpeg failed")
	}
	return buf.Bytes(), nil
}

// DataURL renders bytes as a base64 data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

var dataURLPattern = regexp.MustCompile(`^data:([a-zA-Z0-9.+/-]+);base64,(.*)$`)

// IsDataURL reports whether s is a base64 data URL.
func IsDataURL(s string) bool {
	return dataURLPattern.MatchString(s)
}

// DecodeDataURL returns the mime type and payload of a base64 data URL.
func DecodeDataURL(s string) (string, []byte, error) {
	m := dataURLPattern.FindStringSubmatch(s)
	if m == nil {
		return "", nil, appErr.New(appErr.CodeInvalid, "not a base64 data url")
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return "", nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid base64 payload")
	}
	return m[1], data, nil
}
