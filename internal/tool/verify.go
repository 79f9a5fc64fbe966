// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aletheiaproj/aletheia/internal/media"
	"github.com/aletheiaproj/aletheia/internal/provenance"
	"github.com/aletheiaproj/aletheia/internal/verify"
)

// MetadataVerifyManifest describes the verify_manifest tool.
var MetadataVerifyManifest = &mcp.Tool{
	Name: "verify_manifest",
	Description: "Normalize a C2PA manifest store, as JSON text produced by a trust verification engine, " +
		"into a verification result. " +
		"The result carries a status (valid, invalid, expired, none or error), the creator, title, date and " +
		"tool claims, the edit history and an embedded thumbnail when the manifest has one. " +
		"Text that is not JSON yields status error with the text kept in raw_manifest.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"manifest"},
		"properties": map[string]interface{}{
			"manifest": map[string]interface{}{
				"type":        "string",
				"description": "Manifest store JSON text",
			},
		},
	},
}

// InputVerifyManifest is the input for the VerifyManifest tool.
type InputVerifyManifest struct {
	Manifest string `json:"manifest"`
}

// VerifyManifest normalizes manifest store text without running an engine.
func VerifyManifest(_ context.Context, _ *mcp.CallToolRequest, input InputVerifyManifest) (*mcp.CallToolResult, provenance.VerificationResult, error) {
	if input.Manifest == "" {
		return nil, provenance.VerificationResult{}, fmt.Errorf("manifest is required")
	}
	return nil, provenance.Normalize(input.Manifest), nil
}

// MetadataVerifyMedia describes the verify_media tool.
var MetadataVerifyMedia = &mcp.Tool{
	Name: "verify_media",
	Description: "Verify the content credentials embedded in an image. " +
		"Pass either the image bytes base64 encoded in data, or an http(s) url to fetch the image from. " +
		"The media type is detected from the bytes and the optional name or url when not given. " +
		"Returns the same verification result as verify_manifest. Images without credentials yield status none; " +
		"an image that cannot be fetched yields status error.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"data": map[string]interface{}{
				"type":        "string",
				"description": "Base64 encoded image bytes. Required unless url is given.",
			},
			"url": map[string]interface{}{
				"type":        "string",
				"description": "http or https URL of the image. Used when data is empty.",
			},
			"media_type": map[string]interface{}{
				"type":        "string",
				"description": "Optional media type such as image/jpeg. If omitted, detection is used.",
			},
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Optional file name or URL of the image, used for detection and logging.",
			},
		},
	},
}

// InputVerifyMedia is the input for the verify_media tool.
type InputVerifyMedia struct {
	Data      string `json:"data"`
	URL       string `json:"url"`
	MediaType string `json:"media_type"`
	Name      string `json:"name"`
}

// VerifyMedia returns the verify_media handler bound to svc.
func VerifyMedia(svc *verify.Service) mcp.ToolHandlerFor[InputVerifyMedia, provenance.VerificationResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input InputVerifyMedia) (*mcp.CallToolResult, provenance.VerificationResult, error) {
		if input.Data == "" {
			if input.URL == "" {
				return nil, provenance.VerificationResult{}, fmt.Errorf("data or url is required")
			}
			if !media.IsURL(input.URL) {
				return nil, provenance.VerificationResult{}, fmt.Errorf("url must be http or https: %q", input.URL)
			}
			return nil, svc.VerifyURL(ctx, input.URL, input.MediaType), nil
		}
		content, err := decodeBase64(input.Data)
		if err != nil {
			return nil, provenance.VerificationResult{}, fmt.Errorf("data is not valid base64: %w", err)
		}

		name := input.Name
		if name == "" {
			name = "inline"
		}
		return nil, svc.Verify(ctx, provenance.MediaSource{
			Content:   content,
			MediaType: input.MediaType,
			ID:        name,
		}), nil
	}
}

// decodeBase64 accepts padded and unpadded standard encodings.
func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
