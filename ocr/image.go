package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// Extra decoders for formats Tesseract builds sometimes lack.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "image/gif"
	_ "image/jpeg"
)

// NormalizeImage decodes image data in any supported format (PNG, JPEG,
// GIF, TIFF, BMP) and re-encodes it as PNG, the format every Tesseract
// build accepts. PNG input is returned unchanged.
func NormalizeImage(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	if format == "png" {
		return data, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
