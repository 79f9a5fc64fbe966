// SPDX-License-Identifier: Apache-2.0

package provenance

import "github.com/aletheiaproj/aletheia/internal/tree"

// ExtractClaims collects creator, tool, title and date from a resolved
// manifest. It returns nil when none of them could be found.
func ExtractClaims(node tree.Value) *Claims {
	var c Claims

	c.Tool = extractTool(node)

	for _, a := range assertionsOf(node) {
		if a.is(creatorLabels) {
			author := a.data.Get("author")
			if authors, ok := author.AsArray(); ok {
				if len(authors) > 0 {
					c.Creator = authors[0].Get("name").StringPtr()
				}
			} else if name := author.Get("name"); name.Present() {
				c.Creator = name.StringPtr()
			}
		}
		if a.is(titleLabels) {
			if title := a.data.Get("name").StringPtr(); title != nil {
				c.Title = title
			}
		}
	}

	if dateTime := node.Path("metadata", "dateTime"); dateTime.Present() {
		c.Date = dateTime.StringPtr()
	}
	if c.Date == nil {
		if signed := node.Path("signature_info", "time"); signed.Present() {
			c.Date = signed.StringPtr()
		}
	}

	if c.empty() {
		return nil
	}
	return &c
}

// extractTool prefers claim_generator_info over the legacy claim_generator
// string. A version is appended only to a tool that is already known.
func extractTool(node tree.Value) *string {
	var tool *string
	if gen := node.Get("claim_generator"); gen.Present() {
		tool = gen.StringPtr()
	}

	info := node.Get("claim_generator_info")
	if name := info.Get("name"); name.Present() {
		tool = name.StringPtr()
	}
	if version := info.Get("version"); version.Present() && tool != nil {
		withVersion := *tool + " " + version.StringOr("")
		tool = &withVersion
	}
	return tool
}
