// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalises uploaded product photos. Every upload is
// decoded, fitted inside a bounding box and re-encoded with one codec and
// quality so the storefront serves uniform images.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"

	// Registered decoders.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxWidth and MaxHeight bound the normalised image.
	MaxWidth  = 1920
	MaxHeight = 1080

	// Quality is the JPEG quality of every normalised image.
	Quality = 80

	// ContentType of every normalised image.
	ContentType = "image/jpeg"

	// Ext is the file extension matching ContentType.
	Ext = "jpg"
)

// ErrUnsupported is returned for bytes no registered decoder accepts.
var ErrUnsupported = errors.New("imaging: unsupported image format")

// Image is a normalised upload ready for storage.
type Image struct {
	Data        []byte
	Width       int
	Height      int
	Source      string // decoder name: jpeg, png, gif or webp
	ContentType string
}

// Fit returns the largest size with the aspect ratio of w×h that fits
// inside maxW×maxH. Images already inside the box keep their size.
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	// Compare w/maxW with h/maxH without floating point.
	if w*maxH >= h*maxW {
		return maxW, max(1, h*maxW/w)
	}
	return max(1, w*maxH/h), maxH
}

// Normalize decodes raw, fits it inside MaxWidth×MaxHeight using
// Catmull-Rom resampling and encodes it as JPEG at Quality. Transparent
// areas are flattened onto white.
func Normalize(raw []byte) (*Image, error) {
	src, format, err := image.Decode(bytes.NewReader(raw))
	if errors.Is(err, image.ErrFormat) {
		return nil, ErrUnsupported
	}
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}

	b := src.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), MaxWidth, MaxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("imaging: encode: %w", err)
	}

	slog.Debug("image normalised",
		"source", format,
		"from", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
		"to", fmt.Sprintf("%dx%d", w, h),
		"bytes", buf.Len(),
	)

	return &Image{
		Data:        buf.Bytes(),
		Width:       w,
		Height:      h,
		Source:      format,
		ContentType: ContentType,
	}, nil
}
