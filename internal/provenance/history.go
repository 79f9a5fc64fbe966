// SPDX-License-Identifier: Apache-2.0

package provenance

import "github.com/aletheiaproj/aletheia/internal/tree"

const (
	unknownAction = "unknown"
	unknownTool   = "Unknown"
	createdAction = "created"
)

// ExtractHistory lists the actions recorded in a manifest, in manifest
// order. When no action assertion yields an event, a single "created" event
// is synthesized from claim_generator.
func ExtractHistory(node tree.Value) []HistoryEvent {
	events := []HistoryEvent{}

	for _, a := range assertionsOf(node) {
		if !a.is(actionLabels) || !a.data.Present() {
			continue
		}
		if actions, ok := a.data.Get("actions").AsArray(); ok {
			for _, action := range actions {
				events = append(events, HistoryEvent{
					Action:    action.Get("action").StringOr(unknownAction),
					Tool:      firstString(unknownTool, action.Get("softwareAgent"), action.Get("digitalSourceType")),
					Timestamp: action.Get("when").StringOr(""),
				})
			}
		} else if a.data.Kind() == tree.Object {
			events = append(events, HistoryEvent{
				Action:    a.data.Get("action").StringOr(unknownAction),
				Tool:      a.data.Get("softwareAgent").StringOr(unknownTool),
				Timestamp: a.data.Get("when").StringOr(""),
			})
		}
	}

	if len(events) == 0 {
		if gen, ok := node.Get("claim_generator").AsString(); ok {
			events = append(events, HistoryEvent{
				Action:    createdAction,
				Tool:      gen,
				Timestamp: node.Path("metadata", "dateTime").StringOr(""),
			})
		}
	}
	return events
}

// firstString returns the first candidate holding a string, or def.
func firstString(def string, candidates ...tree.Value) string {
	for _, c := range candidates {
		if s, ok := c.AsString(); ok {
			return s
		}
	}
	return def
}
