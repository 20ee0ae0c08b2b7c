// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package imagex provides image decoding, encoding and conversion
// helpers used for loading textures.
package imagex

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Formats are the supported image decoding formats
type Formats int32

// The supported image decoding formats
const (
	None Formats = iota
	PNG
	JPEG
	GIF
	TIFF
	BMP
	WebP
)

var formatNames = [...]string{"None", "PNG", "JPEG", "GIF", "TIFF", "BMP", "WebP"}

func (f Formats) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Formats(%d)", int32(f))
	}
	return formatNames[f]
}

// ErrUnknownFormat is returned when image data is not in a supported format.
var ErrUnknownFormat = errors.New("imagex: unknown image format")

// ExtToFormat returns a Format based on a filename extension,
// which can start with a . or not
func ExtToFormat(ext string) (Formats, error) {
	if len(ext) == 0 {
		return None, errors.New("ExtToFormat: ext is empty")
	}
	if ext[0] == '.' {
		ext = ext[1:]
	}
	ext = strings.ToLower(ext)
	switch ext {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "tif", "tiff":
		return TIFF, nil
	case "bmp":
		return BMP, nil
	case "webp":
		return WebP, nil
	}
	return None, fmt.Errorf("ExtToFormat: extension %q not recognized", ext)
}

// MIMEToFormat returns a Format based on a MIME type such as image/png,
// as used by glTF image references.
func MIMEToFormat(mime string) (Formats, error) {
	sub, ok := strings.CutPrefix(strings.ToLower(mime), "image/")
	if !ok {
		return None, fmt.Errorf("MIMEToFormat: %q is not an image type", mime)
	}
	return ExtToFormat(sub)
}

// Detect sniffs the format of encoded image data from its leading bytes.
func Detect(data []byte) (Formats, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return None, err
	}
	if kind == filetype.Unknown {
		return None, ErrUnknownFormat
	}
	f, err := ExtToFormat(kind.Extension)
	if err != nil {
		return None, fmt.Errorf("%w: %s", ErrUnknownFormat, kind.MIME.Value)
	}
	return f, nil
}

// ReadBytes decodes an image held in memory, such as one embedded
// in a binary glTF buffer. The format is sniffed from the data first,
// so that unsupported data fails with [ErrUnknownFormat] rather than
// a decoder error.
func ReadBytes(data []byte) (image.Image, Formats, error) {
	if len(data) == 0 {
		return nil, None, errors.New("imagex.ReadBytes: no data")
	}
	f, err := Detect(data)
	if err != nil {
		return nil, None, err
	}
	im, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, f, fmt.Errorf("imagex.ReadBytes: decoding %s: %w", f, err)
	}
	return im, f, nil
}
