package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/partsim/internal/config"
	"github.com/san-kum/partsim/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Alive:      []int{2, 3},
		Births:     []int{2, 1},
		Deaths:     []int{0, 0},
		Dt:         []float32{0.01, 0.01},
		Metrics:    map[string]float64{"peak_alive": 3},
		Saturated:  1,
		FramesRun:  2,
		Final:      []float32{0, 1, 0, 1, 0.5, 0.5, 0.5, 1},
		FinalAlive: 1,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	runID, err := st.Save(RunMetadata{Preset: "fountain", Seed: 42, Dt: 0.01, Frames: 2, Emitter: cfg.Emitter}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Preset != "fountain" {
		t.Errorf("expected preset 'fountain', got '%s'", meta.Preset)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Metrics["peak_alive"] != 3 {
		t.Errorf("expected peak_alive 3, got %f", meta.Metrics["peak_alive"])
	}
	if meta.Saturated != 1 || meta.Alive != 1 {
		t.Errorf("unexpected counters: %+v", meta)
	}
	if meta.Emitter.Capacity != cfg.Emitter.Capacity {
		t.Errorf("emitter config not persisted: %+v", meta.Emitter)
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[1].Alive != 3 || frames[1].Births != 1 || frames[1].Frame != 1 {
		t.Errorf("unexpected frame record: %+v", frames[1])
	}

	snap, err := st.LoadRunSnapshot(runID)
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}
	if snap.Count != 1 || snap.Frame != 2 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := st.Save(RunMetadata{Preset: "burst"}, testResult()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Preset: "drizzle"}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, framesFile, snapshotFile} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	buf := []float32{1, 2, 3, 1, 0.1, 0.2, 0.3, 0.4, 4, 5, 6, 1, 1, 1, 1, 1}

	if err := SaveSnapshot(path, Snapshot{Preset: "burst", Frame: 9, Buffer: buf}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	snap, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if snap.Count != 2 || snap.Stride != 8 || snap.Preset != "burst" {
		t.Errorf("unexpected snapshot header: %+v", snap)
	}
	for i := range buf {
		if snap.Buffer[i] != buf[i] {
			t.Fatalf("float %d: expected %f, got %f", i, buf[i], snap.Buffer[i])
		}
	}
}

func TestLoadSnapshotRejectsRaggedBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	data := `{"frame": 1, "stride": 8, "count": 2, "buffer": [1, 2, 3]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for ragged buffer")
	}
}
