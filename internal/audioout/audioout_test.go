package audioout_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"aircheck/internal/audioout"
	"aircheck/internal/audit"
	"aircheck/internal/checkpoint"
	"aircheck/internal/content"
	"aircheck/internal/fileutil"
	"aircheck/internal/logging"
	"aircheck/internal/paths"
	"aircheck/internal/services/tts"
)

type fakeSynth struct {
	requests []tts.Request
	err      error
}

func (f *fakeSynth) Synthesize(_ context.Context, req tts.Request) ([]byte, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("RIFF" + req.Text), nil
}

func (f *fakeSynth) HealthCheck(context.Context) error { return nil }

func introItem(id, artist, title string) content.WorkItem {
	return content.WorkItem{
		Type: content.TypeIntro, DJ: "julie",
		Song: content.SongKey{ID: id, Artist: artist, Title: title},
	}
}

func setup(t *testing.T, synth audioout.Synthesizer) (*audioout.Stage, *paths.Resolver, *checkpoint.Store) {
	t.Helper()
	resolver := paths.NewResolver(t.TempDir())
	cp, err := checkpoint.Open(resolver.CheckpointPath(), logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	voices := map[string]audioout.Voice{"julie": {RefPath: "voices/julie.wav"}}
	stg := audioout.NewStage(synth, resolver, cp, voices, logging.NewNop(),
		audioout.Options{Temperature: 0.6, Language: "en"})
	return stg, resolver, cp
}

func writeScriptAndVerdict(t *testing.T, resolver *paths.Resolver, item content.WorkItem, version int, passed bool) {
	t.Helper()
	text := "Up next, a swell number from the library for all you night owls out there."
	if err := fileutil.WriteFileAtomic(resolver.ScriptPath(item, version), []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := audit.WriteVerdict(resolver, item, version, audit.Verdict{Passed: passed, Score: 8}); err != nil {
		t.Fatal(err)
	}
}

func TestRunRendersCanonicalPassingVersion(t *testing.T) {
	synth := &fakeSynth{}
	stg, resolver, cp := setup(t, synth)
	item := introItem("1", "Cass Daley", "A Good Man Is Hard to Find")
	// v0 failed, v1 passed: audio must come from v1.
	writeScriptAndVerdict(t, resolver, item, 0, false)
	writeScriptAndVerdict(t, resolver, item, 1, true)

	result, err := stg.Run(context.Background(), []content.WorkItem{item})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Processed != 1 {
		t.Fatalf("result = %+v", result)
	}
	if _, err := os.Stat(resolver.AudioPath(item, 1)); err != nil {
		t.Errorf("audio for v1 missing: %v", err)
	}
	if _, err := os.Stat(resolver.AudioPath(item, 0)); err == nil {
		t.Error("audio for failed v0 must not exist")
	}
	if len(synth.requests) != 1 || synth.requests[0].SpeakerRefPath != "voices/julie.wav" {
		t.Errorf("requests = %+v", synth.requests)
	}
	state, ok := cp.ItemState(checkpoint.StageAudio, item.Key())
	if !ok || state.Version != 1 {
		t.Errorf("checkpoint = %+v, ok=%v", state, ok)
	}
}

func TestRunSkipsFailingItems(t *testing.T) {
	synth := &fakeSynth{}
	stg, resolver, _ := setup(t, synth)
	item := introItem("1", "Cass Daley", "A Good Man Is Hard to Find")
	writeScriptAndVerdict(t, resolver, item, 0, false)

	result, err := stg.Run(context.Background(), []content.WorkItem{item})
	if err != nil {
		t.Fatal(err)
	}
	if result.Skipped != 1 || result.Processed != 0 || len(synth.requests) != 0 {
		t.Fatalf("result = %+v, requests = %d", result, len(synth.requests))
	}
}

func TestRunSkipsCheckpointedItems(t *testing.T) {
	synth := &fakeSynth{}
	stg, resolver, cp := setup(t, synth)
	item := introItem("1", "Cass Daley", "A Good Man Is Hard to Find")
	writeScriptAndVerdict(t, resolver, item, 0, true)
	if err := cp.MarkItemDone(checkpoint.StageAudio, item.Key(), checkpoint.ItemState{Version: 0}); err != nil {
		t.Fatal(err)
	}

	result, err := stg.Run(context.Background(), []content.WorkItem{item})
	if err != nil {
		t.Fatal(err)
	}
	if result.Skipped != 1 || len(synth.requests) != 0 {
		t.Fatalf("result = %+v", result)
	}
}

func TestRunReusesExistingAudioFile(t *testing.T) {
	synth := &fakeSynth{}
	stg, resolver, cp := setup(t, synth)
	item := introItem("1", "Cass Daley", "A Good Man Is Hard to Find")
	writeScriptAndVerdict(t, resolver, item, 0, true)
	if err := fileutil.WriteFileAtomic(resolver.AudioPath(item, 0), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := stg.Run(context.Background(), []content.WorkItem{item})
	if err != nil {
		t.Fatal(err)
	}
	// The file is adopted and checkpointed without another synthesis call.
	if result.Processed != 1 || len(synth.requests) != 0 {
		t.Fatalf("result = %+v, requests = %d", result, len(synth.requests))
	}
	if !cp.IsDone(checkpoint.StageAudio, item.Key()) {
		t.Error("existing audio not checkpointed")
	}
}

func TestRunIsolatesSynthesisFailures(t *testing.T) {
	synth := &fakeSynth{err: errors.New("service down")}
	stg, resolver, _ := setup(t, synth)
	first := introItem("1", "Cass Daley", "A Good Man Is Hard to Find")
	second := introItem("2", "Glenn Miller", "In the Mood")
	writeScriptAndVerdict(t, resolver, first, 0, true)
	writeScriptAndVerdict(t, resolver, second, 0, true)

	result, err := stg.Run(context.Background(), []content.WorkItem{first, second})
	if err != nil {
		t.Fatalf("Run must not abort: %v", err)
	}
	if result.Failed() != 2 {
		t.Fatalf("result = %+v", result)
	}
}
