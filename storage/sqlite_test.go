package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/richinex/seqthink/model"
)

func TestArchiveSaveLoadRoundTrip(t *testing.T) {
	archive, err := NewArchiveInMemory()
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer archive.Close()

	ctx := context.Background()
	h := populatedHistory(t)

	if err := archive.SaveSession(ctx, h.SessionID(), h.All()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := archive.LoadSession(ctx, h.SessionID())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	original := h.All()
	if len(loaded) != len(original) {
		t.Fatalf("expected %d records, got %d", len(original), len(loaded))
	}
	for i := range original {
		if loaded[i].Content != original[i].Content {
			t.Errorf("record %d: content %q != %q", i, loaded[i].Content, original[i].Content)
		}
		if loaded[i].Stage != original[i].Stage {
			t.Errorf("record %d: stage mismatch", i)
		}
		if loaded[i].Critique != original[i].Critique {
			t.Errorf("record %d: critique mismatch", i)
		}
		if !loaded[i].CreatedAt.Equal(original[i].CreatedAt) {
			t.Errorf("record %d: timestamp %v != %v", i, loaded[i].CreatedAt, original[i].CreatedAt)
		}
	}
}

func TestArchiveSaveReplacesPreviousSequence(t *testing.T) {
	archive, err := NewArchiveInMemory()
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer archive.Close()

	ctx := context.Background()

	if err := archive.SaveSession(ctx, "s1", []model.ThoughtRecord{
		record("old one", 1, model.StageProblemDefinition),
		record("old two", 2, model.StageResearch),
	}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := archive.SaveSession(ctx, "s1", []model.ThoughtRecord{
		record("new", 1, model.StageAnalysis),
	}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	loaded, err := archive.LoadSession(ctx, "s1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Content != "new" {
		t.Errorf("expected replaced sequence, got %d records", len(loaded))
	}
}

func TestArchiveLoadMissingSession(t *testing.T) {
	archive, err := NewArchiveInMemory()
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer archive.Close()

	loaded, err := archive.LoadSession(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(loaded) != 0 {
		t.Errorf("expected no records, got %d", len(loaded))
	}
}

func TestArchiveListAndDeleteSessions(t *testing.T) {
	archive, err := NewArchiveInMemory()
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer archive.Close()

	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		if err := archive.SaveSession(ctx, id, []model.ThoughtRecord{
			record("x", 1, model.StageResearch),
		}); err != nil {
			t.Fatalf("save %s failed: %v", id, err)
		}
	}

	ids, err := archive.ListSessions(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(ids))
	}

	if err := archive.DeleteSession(ctx, "a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	ids, err = archive.ListSessions(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "b" {
		t.Errorf("expected only session 'b', got %v", ids)
	}

	loaded, err := archive.LoadSession(ctx, "a")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected deleted session to have no thoughts, got %d", len(loaded))
	}
}

func TestOpenArchiveCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "sessions.db")
	archive, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	archive.Close()
}
