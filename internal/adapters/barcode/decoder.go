// Package barcode extracts QR-encoded redemption tokens from uploaded
// ticket images.
package barcode

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"golang.org/x/image/draw"

	"eventticketing/internal/domain"
)

// maxRasterSide bounds the raster the QR reader runs against, so decode cost
// stays bounded regardless of the uploaded image's resolution.
const maxRasterSide = 1024

type qrDecoder struct{}

// NewQRDecoder returns a TokenDecoder that reads QR codes from PNG or JPEG
// files.
func NewQRDecoder() domain.TokenDecoder {
	return &qrDecoder{}
}

func (d *qrDecoder) Decode(ctx context.Context, imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	gray := normalize(src)

	bmp, err := gozxing.NewBinaryBitmapFromImage(gray)
	if err != nil {
		return "", fmt.Errorf("build bitmap: %w", err)
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		// The reader reports NotFound/Checksum/Format exceptions for
		// images without a readable code; all of them mean the same thing
		// to the caller.
		return "", domain.ErrTokenNotDetected
	}
	return result.GetText(), nil
}

// normalize converts the image to grayscale and scales it down so its longer
// side is at most maxRasterSide. Images already within bounds are only
// converted, not resampled.
func normalize(src image.Image) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxRasterSide || h > maxRasterSide {
		if w >= h {
			h = h * maxRasterSide / w
			w = maxRasterSide
		} else {
			w = w * maxRasterSide / h
			h = maxRasterSide
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		dst := image.NewGray(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
		return dst
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	return dst
}
