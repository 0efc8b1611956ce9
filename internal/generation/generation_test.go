package generation_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aircheck/internal/checkpoint"
	"aircheck/internal/content"
	"aircheck/internal/generation"
	"aircheck/internal/logging"
	"aircheck/internal/paths"
	"aircheck/internal/prompt"
)

type stubBackend struct {
	responses map[string]string
	err       error
	calls     int
}

func (s *stubBackend) Complete(_ context.Context, _, user string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	for marker, response := range s.responses {
		if strings.Contains(user, marker) {
			return response, nil
		}
	}
	return "[smiling] Up next on the turntable, a swell little number you folks are going to love hearing tonight.", nil
}

func testItems() []content.WorkItem {
	return []content.WorkItem{
		{Type: content.TypeIntro, DJ: "julie", Song: content.SongKey{ID: "1", Artist: "Cass Daley", Title: "A Good Man Is Hard to Find"}},
		{Type: content.TypeIntro, DJ: "julie", Song: content.SongKey{ID: "2", Artist: "Glenn Miller", Title: "In the Mood"}},
	}
}

func newStage(t *testing.T, backend generation.TextBackend, opts generation.Options) (*generation.Stage, *paths.Resolver, *checkpoint.Store) {
	t.Helper()
	root := t.TempDir()
	resolver := paths.NewResolver(root)
	cp, err := checkpoint.Open(resolver.CheckpointPath(), logging.NewNop())
	if err != nil {
		t.Fatalf("checkpoint: %v", err)
	}
	djs := map[string]prompt.DJProfile{
		"julie": {Name: "Julie", Style: "Warm swing-era hostess."},
	}
	builder := prompt.NewBuilder("KAIR 88.1", content.DefaultPolicies())
	stg := generation.NewStage(backend, builder, resolver, cp, djs, content.DefaultPolicies(), logging.NewNop(), opts)
	return stg, resolver, cp
}

func TestRunWritesSanitizedScripts(t *testing.T) {
	backend := &stubBackend{}
	stg, resolver, cp := newStage(t, backend, generation.Options{})
	items := testItems()

	result, err := stg.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Processed != 2 || result.Failed() != 0 {
		t.Fatalf("result = %+v", result)
	}

	data, err := os.ReadFile(resolver.ScriptPath(items[0], 0))
	if err != nil {
		t.Fatalf("script missing: %v", err)
	}
	text := string(data)
	if strings.Contains(text, "[") || strings.Contains(text, "\n") {
		t.Errorf("script not sanitized: %q", text)
	}
	if !cp.IsDone(checkpoint.StageGenerate, items[0].Key()) {
		t.Error("checkpoint not marked")
	}
}

func TestRunSkipsCheckpointedItems(t *testing.T) {
	backend := &stubBackend{}
	stg, _, cp := newStage(t, backend, generation.Options{})
	items := testItems()

	if err := cp.MarkItemDone(checkpoint.StageGenerate, items[0].Key(), checkpoint.ItemState{Version: 0}); err != nil {
		t.Fatal(err)
	}

	result, err := stg.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Skipped != 1 || result.Processed != 1 {
		t.Fatalf("result = %+v", result)
	}
	if backend.calls != 1 {
		t.Errorf("backend called %d times, want 1", backend.calls)
	}
}

func TestRunOverwriteIgnoresCheckpoint(t *testing.T) {
	backend := &stubBackend{}
	stg, _, cp := newStage(t, backend, generation.Options{Overwrite: true})
	items := testItems()
	if err := cp.MarkItemDone(checkpoint.StageGenerate, items[0].Key(), checkpoint.ItemState{}); err != nil {
		t.Fatal(err)
	}

	result, err := stg.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Processed != 2 || result.Skipped != 0 {
		t.Fatalf("result = %+v", result)
	}
}

func TestRunOverwriteAppendsNextVersion(t *testing.T) {
	backend := &stubBackend{}
	stg, resolver, _ := newStage(t, backend, generation.Options{Overwrite: true})
	item := testItems()[0]
	items := []content.WorkItem{item}

	if _, err := stg.Run(context.Background(), items); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, err := os.ReadFile(resolver.ScriptPath(item, 0))
	if err != nil {
		t.Fatalf("v0 missing: %v", err)
	}

	backend.responses = map[string]string{
		"Cass Daley": "Here comes another swell record from Cass Daley that all you night owls out there will surely enjoy.",
	}
	if _, err := stg.Run(context.Background(), items); err != nil {
		t.Fatalf("overwrite run: %v", err)
	}

	// Overwrite never rewrites an existing take; it adds the next one.
	after, err := os.ReadFile(resolver.ScriptPath(item, 0))
	if err != nil || string(after) != string(first) {
		t.Errorf("v0 changed under overwrite: %v", err)
	}
	second, err := os.ReadFile(resolver.ScriptPath(item, 1))
	if err != nil {
		t.Fatalf("v1 missing after overwrite: %v", err)
	}
	if string(second) == string(first) {
		t.Error("v1 should carry the new take")
	}
}

func TestRunIsolatesItemFailures(t *testing.T) {
	backend := &stubBackend{err: errors.New("connection refused")}
	stg, _, _ := newStage(t, backend, generation.Options{})
	items := testItems()

	result, err := stg.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run must not abort on item failures: %v", err)
	}
	if result.Failed() != 2 || result.Processed != 0 {
		t.Fatalf("result = %+v", result)
	}
	if result.Failures[0].Item.Key() != items[0].Key() {
		t.Errorf("failure records wrong item: %+v", result.Failures[0])
	}
}

func TestGenerateOneRejectsShortScripts(t *testing.T) {
	backend := &stubBackend{responses: map[string]string{"Cass Daley": "Too short."}}
	stg, _, _ := newStage(t, backend, generation.Options{})
	items := testItems()

	_, err := stg.GenerateOne(context.Background(), items[0], 0, nil)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(err.Error(), "rejected") {
		t.Errorf("err = %v", err)
	}
}

func TestGenerateOneWritesRequestedVersion(t *testing.T) {
	backend := &stubBackend{}
	stg, resolver, _ := newStage(t, backend, generation.Options{})
	item := testItems()[0]

	if _, err := stg.GenerateOne(context.Background(), item, 3, []string{"too perky"}); err != nil {
		t.Fatalf("GenerateOne: %v", err)
	}
	if _, err := os.Stat(resolver.ScriptPath(item, 3)); err != nil {
		t.Errorf("version 3 missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(resolver.ScriptDir(item), "julie_0.txt")); err == nil {
		t.Error("version 0 must not exist")
	}
}

func TestGenerateOneUnknownDJIsFatalConfig(t *testing.T) {
	stg, _, _ := newStage(t, &stubBackend{}, generation.Options{})
	item := content.WorkItem{Type: content.TypeTime, DJ: "ghost", Slot: content.TimeKey{Hour: 1}}

	_, err := stg.GenerateOne(context.Background(), item, 0, nil)
	if err == nil || !strings.Contains(err.Error(), "roster") {
		t.Fatalf("err = %v", err)
	}
}
