// SPDX-License-Identifier: Apache-2.0

// Package mcpserver exposes verification over the Model Context Protocol.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/aletheiaproj/aletheia/internal/tool"
	"github.com/aletheiaproj/aletheia/internal/verify"
)

const instructions = "Use verify_media to check the content credentials of an image, passed as base64 data or an http(s) url, " +
	"verify_manifest when a C2PA manifest store has already been extracted, " +
	"and describe_status to explain a status code to a user."

// Server is an MCP server with the verification tools registered.
type Server struct {
	MCPServer *mcp.Server
	logger    *zap.Logger
}

// NewServer registers the verification tools backed by svc.
func NewServer(name, version string, svc *verify.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		MCPServer: mcp.NewServer(
			&mcp.Implementation{Name: name, Version: version},
			&mcp.ServerOptions{Instructions: instructions},
		),
		logger: logger,
	}

	mcp.AddTool(s.MCPServer, tool.MetadataVerifyManifest, tool.VerifyManifest)
	mcp.AddTool(s.MCPServer, tool.MetadataVerifyMedia, tool.VerifyMedia(svc))
	mcp.AddTool(s.MCPServer, tool.MetadataDescribeStatus, tool.DescribeStatus)
	return s
}

// ServeStdio serves a single client over stdin and stdout until the client
// disconnects or ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("mcp server listening on stdio")
	if err := s.MCPServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
