// SPDX-License-Identifier: Apache-2.0

package provenance

import (
	"strings"

	"github.com/aletheiaproj/aletheia/internal/tree"
)

const dataImagePrefix = "data:image"

// ExtractThumbnail returns the base64 payload of the first inline thumbnail.
// Thumbnails stored as references to external resources (data.identifier)
// are not resolved.
func ExtractThumbnail(node tree.Value) *string {
	for _, a := range assertionsOf(node) {
		if !a.is(thumbnailLabels) {
			continue
		}
		if a.data.Present() {
			if a.data.Get("identifier").Present() {
				continue
			}
			if payload, ok := a.data.AsString(); ok {
				return &payload
			}
		}
		if url, ok := a.url.AsString(); ok && strings.HasPrefix(url, dataImagePrefix) {
			if _, payload, found := strings.Cut(url, ","); found {
				return &payload
			}
		}
	}
	return nil
}
