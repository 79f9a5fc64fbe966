// SPDX-License-Identifier: Apache-2.0

package provenance

import (
	"fmt"

	"github.com/goccy/go-json"
)

// StatusCode is the overall verdict for one piece of media.
type StatusCode string

const (
	StatusValid   StatusCode = "valid"
	StatusInvalid StatusCode = "invalid"
	StatusExpired StatusCode = "expired"
	StatusNone    StatusCode = "none"
	StatusError   StatusCode = "error"
)

var statusDescriptions = map[StatusCode]string{
	StatusValid:   "Valid Content Credentials - Signature Verified",
	StatusExpired: "Credentials Found but Certificate Expired",
	StatusInvalid: "Invalid Signature - Data May Be Tampered",
	StatusNone:    "No Content Credentials Found",
	StatusError:   "Error Verifying Image",
}

// ParseStatus converts a wire string into a StatusCode.
func ParseStatus(s string) (StatusCode, error) {
	code := StatusCode(s)
	if _, ok := statusDescriptions[code]; !ok {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return code, nil
}

// Description is the human-readable text shown next to a status.
func (s StatusCode) Description() string {
	if d, ok := statusDescriptions[s]; ok {
		return d
	}
	return "Unknown Status"
}

// HasCredentials reports whether a provenance record was found, whatever
// its validity.
func (s StatusCode) HasCredentials() bool {
	switch s {
	case StatusValid, StatusInvalid, StatusExpired:
		return true
	}
	return false
}

// Claims holds the authorship and tooling claims of a manifest. Each field
// is independently optional.
type Claims struct {
	Creator *string `json:"creator,omitempty"`
	Tool    *string `json:"tool,omitempty"`
	Date    *string `json:"date,omitempty"`
	Title   *string `json:"title,omitempty"`
}

func (c Claims) empty() bool {
	return c.Creator == nil && c.Tool == nil && c.Date == nil && c.Title == nil
}

// HistoryEvent is one edit or action recorded in a manifest.
type HistoryEvent struct {
	Action    string `json:"action"`
	Tool      string `json:"tool"`
	Timestamp string `json:"timestamp"`
}

// VerificationResult is the normalized, display-ready view of a manifest.
type VerificationResult struct {
	Status      StatusCode     `json:"status"`
	Claims      *Claims        `json:"claims,omitempty"`
	History     []HistoryEvent `json:"history"`
	Thumbnail   *string        `json:"thumbnail,omitempty"`
	RawManifest *string        `json:"raw_manifest,omitempty"`
}

// fallbackErrorJSON is returned by JSON when the result cannot be encoded.
const fallbackErrorJSON = `{"status":"error","history":[]}`

// JSON encodes the result. It always returns well-formed JSON.
func (r VerificationResult) JSON() []byte {
	if r.History == nil {
		r.History = []HistoryEvent{}
	}
	out, err := json.Marshal(r)
	if err != nil {
		return []byte(fallbackErrorJSON)
	}
	return out
}

// NoProvenanceResult is returned when the media carries no provenance data.
func NoProvenanceResult() VerificationResult {
	return VerificationResult{
		Status:  StatusNone,
		History: []HistoryEvent{},
	}
}

// ErrorResult is returned when verification could not produce a manifest.
// detail is kept in RawManifest for diagnosis.
func ErrorResult(detail string) VerificationResult {
	return VerificationResult{
		Status:      StatusError,
		History:     []HistoryEvent{},
		RawManifest: &detail,
	}
}
