// Tool definitions and handlers.
//
// Handlers return structured failure results to the caller instead of
// protocol-level errors: a validation problem is the caller's to fix
// and must not surface as an opaque fault. Critique failures never
// affect the success of process_thought.

package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/richinex/seqthink/analysis"
	"github.com/richinex/seqthink/critique"
	"github.com/richinex/seqthink/model"
)

func processThoughtTool() mcp.Tool {
	return mcp.NewTool("process_thought",
		mcp.WithDescription("Add a sequential thought with its metadata and receive structured analysis of it."),
		mcp.WithString("thought",
			mcp.Required(),
			mcp.Description("The content of the thought"),
		),
		mcp.WithNumber("thought_number",
			mcp.Required(),
			mcp.Description("The sequence number of this thought (1-based)"),
		),
		mcp.WithNumber("total_thoughts",
			mcp.Required(),
			mcp.Description("The total expected thoughts in the sequence; revisable upward as the sequence grows"),
		),
		mcp.WithBoolean("next_thought_needed",
			mcp.Required(),
			mcp.Description("Whether more thoughts are needed after this one"),
		),
		mcp.WithString("stage",
			mcp.Required(),
			mcp.Description("The thinking stage: Problem Definition, Research, Analysis, Synthesis, or Conclusion"),
		),
		mcp.WithArray("tags",
			mcp.Description("Optional keywords or categories for the thought"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("axioms_used",
			mcp.Description("Optional principles or axioms used in this thought"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("assumptions_challenged",
			mcp.Description("Optional assumptions challenged by this thought"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithBoolean("generate_critical_response",
			mcp.Description("Whether to request an external critique of the thought (default true)"),
		),
	)
}

func (s *Server) handleProcessThought(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	thought, err := request.RequireString("thought")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	number, err := request.RequireInt("thought_number")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	total, err := request.RequireInt("total_thoughts")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	next, err := request.RequireBool("next_thought_needed")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stageLabel, err := request.RequireString("stage")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Parse the stage label once at the boundary; internal code never
	// compares raw strings.
	stage, err := model.ParseStage(stageLabel)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	record := model.NewThoughtRecord(model.RecordFields{
		Content:               thought,
		Number:                number,
		TotalExpected:         total,
		ContinuationExpected:  next,
		Stage:                 stage,
		Tags:                  request.GetStringSlice("tags", nil),
		Axioms:                request.GetStringSlice("axioms_used", nil),
		AssumptionsChallenged: request.GetStringSlice("assumptions_challenged", nil),
	})

	if err := record.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Critique is attached before the record enters history. Any
	// gateway failure yields an empty critique and nothing else.
	if request.GetBool("generate_critical_response", true) && s.thinker.Enabled() {
		response := s.thinker.Generate(ctx, record.Content, critique.Context{
			Number:                record.Number,
			TotalExpected:         record.TotalExpected,
			Stage:                 record.Stage.String(),
			Tags:                  record.Tags,
			Axioms:                record.Axioms,
			AssumptionsChallenged: record.AssumptionsChallenged,
		})
		if response != "" {
			record.AttachCritique(response)
		}
	}

	s.history.Append(record)
	s.mirrorToArchive(ctx)

	result := analysis.Analyze(record, s.history.All())
	return jsonResult(result)
}

func generateSummaryTool() mcp.Tool {
	return mcp.NewTool("generate_summary",
		mcp.WithDescription("Generate a summary of the entire thinking process."),
	)
}

func (s *Server) handleGenerateSummary(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary := analysis.Summarize(s.history.All())
	return jsonResult(summary)
}

func clearHistoryTool() mcp.Tool {
	return mcp.NewTool("clear_history",
		mcp.WithDescription("Clear the thought history."),
	)
}

func (s *Server) handleClearHistory(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.history.Clear()
	s.mirrorToArchive(ctx)
	return statusResult("Thought history cleared")
}

func exportSessionTool() mcp.Tool {
	return mcp.NewTool("export_session",
		mcp.WithDescription("Export the current thinking session to a file."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to save the exported session; relative paths land in the storage directory"),
		),
	)
}

func (s *Server) handleExportSession(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolved := s.settings.ResolveSessionPath(path)
	if err := s.settings.EnsureStorageDir(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.history.ExportSession(resolved); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return statusResult(fmt.Sprintf("Session exported to %s", resolved))
}

func importSessionTool() mcp.Tool {
	return mcp.NewTool("import_session",
		mcp.WithDescription("Import a thinking session from a file, replacing the current history."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to the session file; relative paths resolve against the storage directory"),
		),
	)
}

func (s *Server) handleImportSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolved := s.settings.ResolveSessionPath(path)
	if err := s.history.ImportSession(resolved); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.mirrorToArchive(ctx)
	return statusResult(fmt.Sprintf("Session imported from %s", resolved))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func statusResult(message string) (*mcp.CallToolResult, error) {
	status := map[string]string{
		"status":  "success",
		"message": message,
	}
	return jsonResult(status)
}
