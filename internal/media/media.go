// SPDX-License-Identifier: Apache-2.0

// Package media determines the media type handed to the verification
// engine.
package media

import (
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultType is assumed when neither content nor name identify the media.
const DefaultType = "image/jpeg"

// sniffedTypes are the types trusted from content sniffing.
var sniffedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// typeExtensions maps the media types the verifier understands to the file
// extension it expects on disk.
var typeExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/avif":      ".avif",
	"image/heic":      ".heic",
	"image/heif":      ".heif",
	"image/tiff":      ".tif",
	"image/gif":       ".gif",
	"image/svg+xml":   ".svg",
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"audio/mpeg":      ".mp3",
	"audio/wav":       ".wav",
	"application/pdf": ".pdf",
}

var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Detect returns the media type of data. Magic bytes decide first, then the
// extension of name (a file path or URL), then DefaultType.
func Detect(data []byte, name string) string {
	if len(data) > 0 {
		detected := mimetype.Detect(data)
		for _, t := range sniffedTypes {
			if detected.Is(t) {
				return t
			}
		}
	}
	if t, ok := fromName(name); ok {
		return t
	}
	return DefaultType
}

// Resolve returns the declared media type when it is Known, otherwise it
// detects one. Transport defaults such as application/octet-stream or
// application/x-www-form-urlencoded are never trusted.
func Resolve(declared string, data []byte, name string) string {
	if Known(declared) {
		return Base(declared)
	}
	return Detect(data, name)
}

// Base lowercases mediaType and strips any parameters.
func Base(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

// Known reports whether mediaType names content the verifier can handle:
// any image, video or audio type, or one with a registered extension.
func Known(mediaType string) bool {
	mt := Base(mediaType)
	if _, ok := typeExtensions[mt]; ok {
		return true
	}
	for _, prefix := range []string{"image/", "video/", "audio/"} {
		if strings.HasPrefix(mt, prefix) && len(mt) > len(prefix) {
			return true
		}
	}
	return false
}

// Extension returns the file extension registered for mediaType.
func Extension(mediaType string) (string, bool) {
	ext, ok := typeExtensions[Base(mediaType)]
	return ext, ok
}

func fromName(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	p := name
	if u, err := url.Parse(name); err == nil && u.Path != "" {
		p = u.Path
	}
	t, ok := extensionTypes[strings.ToLower(path.Ext(p))]
	return t, ok
}
