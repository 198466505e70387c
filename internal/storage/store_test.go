package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/dynamo"
	"github.com/san-kum/cradle/internal/session"
)

func recording() *session.Recording {
	return &session.Recording{
		Times: []float64{0.0, 1.0 / 60},
		Positions: [][]dynamo.Vec2{
			{{X: 300, Y: 350}, {X: 350, Y: 350}},
			{{X: 301.5, Y: 349.25}, {X: 350, Y: 350}},
		},
		Contacts: []session.ContactEvent{{Frame: 1, Collision: session.Collision{A: 1, B: 2, Speed: 700}}},
		Metrics:  map[string]float64{"energy": 1.5},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("release", *config.DefaultConfig(), recording())
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
	if meta.Scenario != "release" {
		t.Errorf("expected scenario 'release', got '%s'", meta.Scenario)
	}
	if meta.Frames != 2 || meta.Collisions != 1 {
		t.Errorf("unexpected counts %d/%d", meta.Frames, meta.Collisions)
	}
	if meta.Metrics["energy"] != 1.5 {
		t.Errorf("expected energy 1.5, got %f", meta.Metrics["energy"])
	}
	if meta.Settings.Cradle.BobCount != config.DefaultBobs {
		t.Errorf("settings not stored: %+v", meta.Settings.Cradle)
	}

	positions, times, err := st.LoadPositions(runID)
	if err != nil {
		t.Fatalf("load positions failed: %v", err)
	}
	if len(positions) != 2 || len(times) != 2 {
		t.Fatalf("expected 2 rows, got %d/%d", len(positions), len(times))
	}
	if positions[1][0] != dynamo.V(301.5, 349.25) {
		t.Errorf("unexpected position %+v", positions[1][0])
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	for range 2 {
		if _, err := st.Save("release", *config.DefaultConfig(), recording()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save("release", *config.DefaultConfig(), recording())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "positions.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestLoadRecording(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save("fused", *config.DefaultConfig(), recording())
	if err != nil {
		t.Fatal(err)
	}

	meta, rec, err := st.LoadRecording(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.ID != runID || rec.Frames() != 2 {
		t.Errorf("unexpected recording %s/%d", meta.ID, rec.Frames())
	}
	if s := rec.Series(0); len(s) != 2 || s[1] != 301.5 {
		t.Errorf("unexpected series %v", s)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, "release", *config.DefaultConfig(), recording()); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Steps != 2 || len(data.Contacts) != 1 || data.Contacts[0].Speed != 700 {
		t.Errorf("unexpected export %+v", data)
	}
}
