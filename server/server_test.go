package server

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/richinex/seqthink/config"
	"github.com/richinex/seqthink/critique"
	"github.com/richinex/seqthink/llm"
	"github.com/richinex/seqthink/storage"
)

// fakeProvider is a scriptable llm.Provider.
type fakeProvider struct {
	response string
	err      error
	calls    int
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-model" }

func (f *fakeProvider) Chat(_ context.Context, _ []llm.ChatMessage) (llm.LLMResponse, error) {
	f.calls++
	if f.err != nil {
		return llm.LLMResponse{}, f.err
	}
	return llm.LLMResponse{Content: f.response}, nil
}

func newTestServer(t *testing.T, provider llm.Provider) (*Server, *storage.MemoryHistory) {
	t.Helper()
	history := storage.NewMemoryHistory()
	var thinker *critique.Thinker
	if provider != nil {
		thinker = critique.NewThinker(provider, 0)
	}
	settings := config.Settings{
		Storage: config.StorageConfig{Dir: t.TempDir()},
	}
	return &Server{
		settings: settings,
		history:  history,
		thinker:  thinker,
	}, history
}

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func thoughtArgs(overrides map[string]any) map[string]any {
	args := map[string]any{
		"thought":             "Frame the question precisely",
		"thought_number":      float64(1),
		"total_thoughts":      float64(3),
		"next_thought_needed": true,
		"stage":               "Problem Definition",
	}
	for k, v := range overrides {
		args[k] = v
	}
	return args
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestProcessThought(t *testing.T) {
	s, history := newTestServer(t, nil)

	result, err := s.handleProcessThought(context.Background(), toolRequest("process_thought", thoughtArgs(nil)))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	var payload struct {
		ProgressPercent int      `json:"progressPercent"`
		Stage           string   `json:"stage"`
		IsFinal         bool     `json:"isFinal"`
		Warnings        []string `json:"warnings"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if payload.ProgressPercent != 33 {
		t.Errorf("expected 33%% progress, got %d", payload.ProgressPercent)
	}
	if payload.Stage != "Problem Definition" {
		t.Errorf("unexpected stage: %q", payload.Stage)
	}
	if payload.IsFinal {
		t.Error("first thought should not be final")
	}
	if history.Len() != 1 {
		t.Errorf("expected 1 record in history, got %d", history.Len())
	}
}

func TestProcessThoughtInvalidStage(t *testing.T) {
	s, history := newTestServer(t, nil)

	result, err := s.handleProcessThought(context.Background(),
		toolRequest("process_thought", thoughtArgs(map[string]any{"stage": "Pondering"})))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for invalid stage")
	}
	if history.Len() != 0 {
		t.Error("failed thought must not be appended")
	}
}

func TestProcessThoughtValidationFailure(t *testing.T) {
	s, history := newTestServer(t, nil)

	result, err := s.handleProcessThought(context.Background(),
		toolRequest("process_thought", thoughtArgs(map[string]any{"thought": "   "})))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for blank thought")
	}
	if !strings.Contains(resultText(t, result), "content") {
		t.Errorf("error should name the offending field: %s", resultText(t, result))
	}
	if history.Len() != 0 {
		t.Error("failed thought must not be appended")
	}
}

func TestProcessThoughtAttachesCritique(t *testing.T) {
	provider := &fakeProvider{response: "have you considered the opposite?"}
	s, history := newTestServer(t, provider)

	result, err := s.handleProcessThought(context.Background(), toolRequest("process_thought", thoughtArgs(nil)))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	var payload struct {
		CriticalResponse string `json:"criticalResponse"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.CriticalResponse != "have you considered the opposite?" {
		t.Errorf("unexpected critique: %q", payload.CriticalResponse)
	}
	if history.All()[0].Critique == "" {
		t.Error("critique not attached to stored record")
	}
}

func TestProcessThoughtCritiqueFailureIsNonFatal(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream unavailable")}
	s, history := newTestServer(t, provider)

	result, err := s.handleProcessThought(context.Background(), toolRequest("process_thought", thoughtArgs(nil)))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if result.IsError {
		t.Fatalf("critique failure must not fail the request: %s", resultText(t, result))
	}
	if history.Len() != 1 {
		t.Error("thought should still be stored")
	}
	if strings.Contains(resultText(t, result), "criticalResponse") {
		t.Error("absent critique must not appear in the result")
	}
}

func TestProcessThoughtCritiqueOptOut(t *testing.T) {
	provider := &fakeProvider{response: "unused"}
	s, _ := newTestServer(t, provider)

	_, err := s.handleProcessThought(context.Background(),
		toolRequest("process_thought", thoughtArgs(map[string]any{"generate_critical_response": false})))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("provider should not be called when critique is opted out, got %d calls", provider.calls)
	}
}

func TestGenerateSummary(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ctx := context.Background()

	for i, stage := range []string{"Problem Definition", "Research", "Conclusion"} {
		args := thoughtArgs(map[string]any{
			"thought_number": float64(i + 1),
			"stage":          stage,
			"thought":        "step " + stage,
		})
		if i == 2 {
			args["next_thought_needed"] = false
		}
		if _, err := s.handleProcessThought(ctx, toolRequest("process_thought", args)); err != nil {
			t.Fatal(err)
		}
	}

	result, err := s.handleGenerateSummary(ctx, toolRequest("generate_summary", nil))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}

	var payload struct {
		TotalThoughts     int            `json:"totalThoughts"`
		StageDistribution map[string]int `json:"stageDistribution"`
		Conclusion        string         `json:"conclusion"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.TotalThoughts != 3 {
		t.Errorf("expected 3 thoughts, got %d", payload.TotalThoughts)
	}
	if payload.StageDistribution["Conclusion"] != 1 {
		t.Errorf("unexpected distribution: %v", payload.StageDistribution)
	}
	if payload.Conclusion != "step Conclusion" {
		t.Errorf("unexpected conclusion: %q", payload.Conclusion)
	}
}

func TestClearHistory(t *testing.T) {
	s, history := newTestServer(t, nil)
	ctx := context.Background()

	if _, err := s.handleProcessThought(ctx, toolRequest("process_thought", thoughtArgs(nil))); err != nil {
		t.Fatal(err)
	}

	result, err := s.handleClearHistory(ctx, toolRequest("clear_history", nil))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	if history.Len() != 0 {
		t.Errorf("expected empty history, got %d", history.Len())
	}
}

func TestExportImportRoundTripViaTools(t *testing.T) {
	s, history := newTestServer(t, nil)
	ctx := context.Background()

	if _, err := s.handleProcessThought(ctx, toolRequest("process_thought", thoughtArgs(nil))); err != nil {
		t.Fatal(err)
	}

	exportResult, err := s.handleExportSession(ctx,
		toolRequest("export_session", map[string]any{"file_path": "session.json"}))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if exportResult.IsError {
		t.Fatalf("export failed: %s", resultText(t, exportResult))
	}

	history.Clear()

	importResult, err := s.handleImportSession(ctx,
		toolRequest("import_session", map[string]any{"file_path": "session.json"}))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if importResult.IsError {
		t.Fatalf("import failed: %s", resultText(t, importResult))
	}
	if history.Len() != 1 {
		t.Errorf("expected 1 record after import, got %d", history.Len())
	}

	// Relative paths resolve under the configured storage directory.
	expected := filepath.Join(s.settings.Storage.Dir, "session.json")
	if !strings.Contains(resultText(t, exportResult), expected) {
		t.Errorf("expected export path %q in %s", expected, resultText(t, exportResult))
	}
}

func TestImportMissingFileLeavesHistory(t *testing.T) {
	s, history := newTestServer(t, nil)
	ctx := context.Background()

	if _, err := s.handleProcessThought(ctx, toolRequest("process_thought", thoughtArgs(nil))); err != nil {
		t.Fatal(err)
	}

	result, err := s.handleImportSession(ctx,
		toolRequest("import_session", map[string]any{"file_path": "missing.json"}))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing file")
	}
	if history.Len() != 1 {
		t.Error("failed import must leave history untouched")
	}
}
