// SPDX-License-Identifier: Apache-2.0

package media_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aletheiaproj/aletheia/internal/media"
)

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46, 0x00, 0x01}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}
	webpMagic = []byte{
		0x52, 0x49, 0x46, 0x46,
		0x00, 0x00, 0x00, 0x00,
		0x57, 0x45, 0x42, 0x50,
		0x56, 0x50, 0x38, 0x20,
	}
	unknown = []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B}
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		from string
		want string
	}{
		{"jpeg magic", jpegMagic, "https://example.com/image", "image/jpeg"},
		{"png magic", pngMagic, "https://example.com/image", "image/png"},
		{"webp magic", webpMagic, "https://example.com/image", "image/webp"},
		{"magic wins over extension", pngMagic, "https://example.com/photo.jpg", "image/png"},
		{"jpg extension", unknown, "https://example.com/photo.jpg", "image/jpeg"},
		{"jpeg extension", unknown, "https://example.com/photo.jpeg", "image/jpeg"},
		{"png extension", unknown, "https://example.com/photo.png", "image/png"},
		{"webp extension", unknown, "https://example.com/photo.webp", "image/webp"},
		{"uppercase extension", unknown, "https://example.com/PHOTO.PNG", "image/png"},
		{"query string ignored", unknown, "https://example.com/photo.png?w=200", "image/png"},
		{"local path", unknown, "/tmp/shots/photo.webp", "image/webp"},
		{"default to jpeg", unknown, "https://example.com/image", "image/jpeg"},
		{"empty input", nil, "", "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, media.Detect(tt.data, tt.from))
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		data     []byte
		from     string
		want     string
	}{
		{"declared image type trusted", "image/avif", jpegMagic, "x.jpg", "image/avif"},
		{"declared type normalized", "Image/PNG; charset=binary", jpegMagic, "", "image/png"},
		{"registered non-image type", "application/pdf", jpegMagic, "", "application/pdf"},
		{"octet stream sniffed", "application/octet-stream", pngMagic, "", "image/png"},
		{"form encoding sniffed", "application/x-www-form-urlencoded", jpegMagic, "", "image/jpeg"},
		{"text type sniffed", "text/plain", webpMagic, "", "image/webp"},
		{"bare prefix not trusted", "image/", pngMagic, "", "image/png"},
		{"blank falls back to name", "  ", nil, "a.webp", "image/webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, media.Resolve(tt.declared, tt.data, tt.from))
		})
	}
}

func TestKnown(t *testing.T) {
	assert.True(t, media.Known("image/jpeg"))
	assert.True(t, media.Known("video/x-matroska"))
	assert.True(t, media.Known("AUDIO/FLAC"))
	assert.True(t, media.Known("application/pdf"))
	assert.False(t, media.Known("application/x-www-form-urlencoded"))
	assert.False(t, media.Known("application/octet-stream"))
	assert.False(t, media.Known(""))
}

func TestExtension(t *testing.T) {
	ext, ok := media.Extension("video/quicktime")
	assert.True(t, ok)
	assert.Equal(t, ".mov", ext)

	_, ok = media.Extension("application/zip")
	assert.False(t, ok)
}
