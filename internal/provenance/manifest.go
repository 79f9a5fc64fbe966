// SPDX-License-Identifier: Apache-2.0

package provenance

import (
	"strings"

	"github.com/aletheiaproj/aletheia/internal/tree"
)

// Label fragments for the assertion kinds the extractors care about.
// Producers append version suffixes to labels (c2pa.actions.v2), so a
// label matches when it contains any fragment of the set.
var (
	creatorLabels   = []string{"creativeWork", "creator"}
	titleLabels     = []string{"creativeWork"}
	actionLabels    = []string{"actions", "c2pa.actions"}
	thumbnailLabels = []string{"thumbnail", "c2pa.thumbnail"}
)

// assertion is one labelled entry of a manifest's assertion list.
type assertion struct {
	label string
	data  tree.Value
	url   tree.Value
}

func (a assertion) is(fragments []string) bool {
	return containsAny(a.label, fragments)
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

// assertionsOf returns the assertions of node in manifest order. Entries
// without a string label are skipped.
func assertionsOf(node tree.Value) []assertion {
	entries, ok := node.Get("assertions").AsArray()
	if !ok {
		return nil
	}
	out := make([]assertion, 0, len(entries))
	for _, entry := range entries {
		label, ok := entry.Get("label").AsString()
		if !ok {
			continue
		}
		out = append(out, assertion{
			label: label,
			data:  entry.Get("data"),
			url:   entry.Get("url"),
		})
	}
	return out
}

// Locate resolves the manifest to report on. A store names its current
// manifest in active_manifest; when that id does not resolve inside
// manifests, the store itself is treated as a bare manifest.
func Locate(store tree.Value) tree.Value {
	id := store.Get("active_manifest").StringOr("")
	if node := store.Get("manifests").Get(id); node.Present() {
		return node
	}
	return store
}
