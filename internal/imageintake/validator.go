// Package imageintake gates uploaded photos before they are sent for
// vision analysis.
package imageintake

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"

	"nutrivision-go/internal/apperr"
)

const (
	// MinDimension is the smallest accepted width and height in pixels.
	MinDimension = 100
	// MaxPixels bounds width*height so a small compressed file cannot
	// declare a canvas too large to decode in memory.
	MaxPixels = 40_000_000
	MIMEType     = "image/jpeg"
	jpegQuality  = 90
)

type Validator struct {
	maxBytes int64
}

// NewValidator rejects payloads larger than maxBytes; zero means no limit.
func NewValidator(maxBytes int64) *Validator {
	return &Validator{maxBytes: maxBytes}
}

// Validate decodes raw, checks its dimensions and re-encodes it as a
// three-channel JPEG.
func (v *Validator) Validate(raw []byte) ([]byte, string, error) {
	if v.maxBytes > 0 && int64(len(raw)) > v.maxBytes {
		return nil, "", errors.Wrapf(apperr.ErrTooLarge, "%d bytes exceeds %d", len(raw), v.maxBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, "", errors.Wrap(apperr.ErrInvalidFormat, "please upload a valid image")
	}
	if cfg.Width < MinDimension || cfg.Height < MinDimension {
		return nil, "", errors.Wrapf(apperr.ErrTooLowResolution, "%dx%d, please upload a higher quality image", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, "", errors.Wrapf(apperr.ErrTooLarge, "%dx%d exceeds %d pixels", cfg.Width, cfg.Height, MaxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", errors.Wrapf(apperr.ErrInvalidFormat, "decode %s", format)
	}

	rgb := image.NewRGBA(img.Bounds())
	draw.Draw(rgb, rgb.Bounds(), img, img.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", errors.Wrap(err, "encode jpeg")
	}
	return buf.Bytes(), MIMEType, nil
}
