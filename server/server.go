// Package server wires the MCP tool surface over the thought tracker.
//
// This is the composition root: the history store, session archive,
// and critique gateway are constructed once at process start and
// injected here. No business logic lives in the handlers - they parse
// arguments, delegate to model/storage/analysis, and format results.
package server

import (
	"context"
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/richinex/seqthink/config"
	"github.com/richinex/seqthink/critique"
	"github.com/richinex/seqthink/storage"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Server holds the injected dependencies for the tool handlers.
type Server struct {
	settings config.Settings
	history  *storage.MemoryHistory
	archive  *storage.Archive
	thinker  *critique.Thinker
}

// New creates the MCP server with all tools registered.
// archive may be nil; the server then runs without durable mirroring.
// thinker may be nil or disabled; thoughts are then processed without
// critique.
func New(settings config.Settings, history *storage.MemoryHistory, archive *storage.Archive, thinker *critique.Thinker) *server.MCPServer {
	s := &Server{
		settings: settings,
		history:  history,
		archive:  archive,
		thinker:  thinker,
	}

	mcpServer := server.NewMCPServer(
		"seqthink",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	mcpServer.AddTool(processThoughtTool(), s.handleProcessThought)
	mcpServer.AddTool(generateSummaryTool(), s.handleGenerateSummary)
	mcpServer.AddTool(clearHistoryTool(), s.handleClearHistory)
	mcpServer.AddTool(exportSessionTool(), s.handleExportSession)
	mcpServer.AddTool(importSessionTool(), s.handleImportSession)

	return mcpServer
}

// ServeStdio runs the server over stdin/stdout until the client
// disconnects. Diagnostics go to stderr: stdout carries the protocol.
func ServeStdio(mcpServer *server.MCPServer) error {
	return server.ServeStdio(mcpServer)
}

// mirrorToArchive writes the current history to the session archive.
// Archive failures are logged and otherwise ignored: the in-memory
// history stays authoritative and the request already succeeded.
func (s *Server) mirrorToArchive(ctx context.Context) {
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveSession(ctx, s.history.SessionID(), s.history.All()); err != nil {
		log.Printf("WARNING: session archive write failed: %v", err)
	}
}
