// Command execution for CLI commands.
//
// Information Hiding:
// - Server assembly hidden
// - Provider construction hidden
// - Output formatting hidden

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/richinex/seqthink/analysis"
	"github.com/richinex/seqthink/config"
	"github.com/richinex/seqthink/critique"
	"github.com/richinex/seqthink/llm"
	"github.com/richinex/seqthink/server"
	"github.com/richinex/seqthink/storage"
)

// Options holds CLI execution options.
type Options struct {
	Provider string
	Model    string
	Verbose  bool
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{}
}

// Serve assembles the server and runs it over stdio until the client
// disconnects.
func Serve(ctx context.Context, opts Options) error {
	settings, err := config.New()
	if err != nil {
		return err
	}
	if err := settings.EnsureStorageDir(); err != nil {
		return err
	}

	// The archive is a convenience mirror. A broken database path must
	// not keep the server from starting.
	archive, err := storage.OpenArchive(settings.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: session archive unavailable: %v\n", err)
		archive = nil
	}
	if archive != nil {
		defer func() { _ = archive.Close() }()
	}

	thinker := createThinker(settings, opts)

	history := storage.NewMemoryHistory()
	srv := server.New(settings, history, archive, thinker)

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "seqthink %s: storage dir %s\n", server.Version, settings.Storage.Dir)
		if thinker.Enabled() {
			fmt.Fprintln(os.Stderr, "critique gateway enabled")
		}
	}

	return server.ServeStdio(srv)
}

// Summary prints the summary of an exported session file as JSON.
func Summary(path string) error {
	settings, err := config.New()
	if err != nil {
		return err
	}

	history := storage.NewMemoryHistory()
	if err := history.ImportSession(settings.ResolveSessionPath(path)); err != nil {
		return err
	}

	return printJSON(analysis.Summarize(history.All()))
}

// Sessions lists the session IDs held in the archive, most recently
// updated first.
func Sessions(ctx context.Context) error {
	archive, settings, err := openArchive()
	if err != nil {
		return err
	}
	defer func() { _ = archive.Close() }()

	ids, err := archive.ListSessions(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Printf("No sessions in %s\n", settings.Storage.DBPath)
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

// Export writes an archived session to a session file.
func Export(ctx context.Context, sessionID, path string) error {
	archive, settings, err := openArchive()
	if err != nil {
		return err
	}
	defer func() { _ = archive.Close() }()

	records, err := archive.LoadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("session %s not found or empty", sessionID)
	}

	history := storage.NewMemoryHistory()
	history.Replace(records)

	resolved := settings.ResolveSessionPath(path)
	if err := history.ExportSession(resolved); err != nil {
		return err
	}
	fmt.Printf("Session %s exported to %s\n", sessionID, resolved)
	return nil
}

// Import loads a session file into the archive under the given session ID.
func Import(ctx context.Context, sessionID, path string) error {
	archive, settings, err := openArchive()
	if err != nil {
		return err
	}
	defer func() { _ = archive.Close() }()

	history := storage.NewMemoryHistory()
	if err := history.ImportSession(settings.ResolveSessionPath(path)); err != nil {
		return err
	}

	if err := archive.SaveSession(ctx, sessionID, history.All()); err != nil {
		return err
	}
	fmt.Printf("Imported %d thoughts into session %s\n", history.Len(), sessionID)
	return nil
}

// Clear deletes an archived session.
func Clear(ctx context.Context, sessionID string) error {
	archive, _, err := openArchive()
	if err != nil {
		return err
	}
	defer func() { _ = archive.Close() }()

	if err := archive.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	fmt.Printf("Session %s cleared\n", sessionID)
	return nil
}

func openArchive() (*storage.Archive, config.Settings, error) {
	settings, err := config.New()
	if err != nil {
		return nil, config.Settings{}, err
	}
	archive, err := storage.OpenArchive(settings.Storage.DBPath)
	if err != nil {
		return nil, config.Settings{}, err
	}
	return archive, settings, nil
}

// createThinker builds the critique gateway from settings and flags.
// A missing API key disables critique rather than failing: the tracker
// is useful without the gateway.
func createThinker(settings config.Settings, opts Options) *critique.Thinker {
	name := opts.Provider
	if name == "" {
		name = settings.Critique.Provider
	}

	providerType, err := llm.ParseProviderType(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: critique disabled: %v\n", err)
		return nil
	}

	builder := llm.NewProviderBuilder(providerType).
		MaxTokens(settings.Critique.MaxTokens).
		Temperature(float32(settings.Critique.Temperature))
	if model := firstNonEmpty(opts.Model, settings.Critique.Model); model != "" {
		builder = builder.Model(model)
	}

	provider, err := builder.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: critique disabled: %v\n", err)
		return nil
	}

	return critique.NewThinker(provider, settings.Critique.Timeout)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
