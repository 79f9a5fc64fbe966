// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aletheiaproj/aletheia/internal/provenance"
)

// MetadataDescribeStatus describes the describe_status tool.
var MetadataDescribeStatus = &mcp.Tool{
	Name:        "describe_status",
	Description: "Explain a verification status code and whether it means content credentials were found.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"status"},
		"properties": map[string]interface{}{
			"status": map[string]interface{}{
				"type":        "string",
				"description": "Verification status code",
				"enum":        []string{"valid", "invalid", "expired", "none", "error"},
			},
		},
	},
}

// InputDescribeStatus is the input for the describe_status tool.
type InputDescribeStatus struct {
	Status string `json:"status"`
}

// OutputDescribeStatus is the output for the describe_status tool.
type OutputDescribeStatus struct {
	Status      string `json:"status"`
	Description string `json:"description"`
	// HasCredentials is true when a provenance record was found, whatever
	// its trust verdict.
	HasCredentials bool `json:"has_credentials"`
}

// DescribeStatus returns the human description of a status code.
func DescribeStatus(_ context.Context, _ *mcp.CallToolRequest, input InputDescribeStatus) (*mcp.CallToolResult, OutputDescribeStatus, error) {
	if input.Status == "" {
		return nil, OutputDescribeStatus{}, fmt.Errorf("status is required")
	}
	status, err := provenance.ParseStatus(input.Status)
	if err != nil {
		return nil, OutputDescribeStatus{}, err
	}
	return nil, OutputDescribeStatus{
		Status:         string(status),
		Description:    status.Description(),
		HasCredentials: status.HasCredentials(),
	}, nil
}
