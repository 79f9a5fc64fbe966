// SPDX-License-Identifier: Apache-2.0

package provenance

import "github.com/aletheiaproj/aletheia/internal/tree"

// statusCodeRule maps fragments of a validation_status code to a verdict.
type statusCodeRule struct {
	fragments []string
	status    StatusCode
}

// statusCodeRules is evaluated in order for each validation_status record;
// the first match wins. Codes are dotted and namespaced, so only a fragment
// has to match.
var statusCodeRules = []statusCodeRule{
	{fragments: []string{"signingCredential.expired", "expired"}, status: StatusExpired},
	{fragments: []string{"invalid", "failed"}, status: StatusInvalid},
}

// Classify derives the status of a resolved manifest. Explicit failure
// signals take precedence over the mere presence of a claim.
func Classify(node tree.Value) StatusCode {
	if records, ok := node.Get("validation_status").AsArray(); ok {
		for _, record := range records {
			code, ok := record.Get("code").AsString()
			if !ok {
				continue
			}
			for _, rule := range statusCodeRules {
				if containsAny(code, rule.fragments) {
					return rule.status
				}
			}
		}
	}

	if validated, ok := node.Path("signature_info", "validated").AsBool(); ok && !validated {
		return StatusInvalid
	}

	if node.Get("claim_generator").Present() || node.Get("assertions").Present() {
		return StatusValid
	}
	return StatusNone
}
