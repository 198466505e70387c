package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/dynamo"
	"github.com/san-kum/cradle/internal/metrics"
)

func run(t *testing.T, cfg Config) (*Experiment, *metrics.Displacement) {
	t.Helper()
	exp, err := New(cfg, NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	disp := metrics.NewDisplacement()
	if err := exp.Setup([]metrics.Metric{disp, metrics.NewCollisions()}); err != nil {
		t.Fatal(err)
	}
	if _, err := exp.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	return exp, disp
}

func TestReleaseWithGap(t *testing.T) {
	_, disp := run(t, Config{Scenario: "release", Frames: 110})

	d := disp.PerBob()
	for i := 1; i <= 3; i++ {
		if d[i] >= 10 {
			t.Errorf("bob %d moved %f px, expected near rest", i, d[i])
		}
	}
	if d[4] <= 150 {
		t.Errorf("last bob swung only %f px", d[4])
	}
}

func TestReleaseFused(t *testing.T) {
	_, disp := run(t, Config{Scenario: "fused", Frames: 110})

	d := disp.PerBob()
	for i := 1; i <= 3; i++ {
		if d[i] <= 20 {
			t.Errorf("bob %d moved only %f px, expected the row to move together", i, d[i])
		}
	}
}

func TestRunRecordsFrames(t *testing.T) {
	exp, err := New(Config{Scenario: "release", Frames: 90}, NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if err := exp.Setup(metrics.Defaults(config.DefaultGravity)); err != nil {
		t.Fatal(err)
	}
	rec, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if rec.Frames() != 90 {
		t.Errorf("expected 90 frames, got %d", rec.Frames())
	}
	if len(rec.Positions[0]) != 5 {
		t.Errorf("expected 5 bobs per frame, got %d", len(rec.Positions[0]))
	}
	if len(rec.Contacts) < 4 {
		t.Errorf("expected the cascade to be recorded, got %d contacts", len(rec.Contacts))
	}
	for _, name := range []string{"energy", "energy_drift", "momentum", "max_displacement", "collisions"} {
		if _, ok := rec.Metrics[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
}

func TestRunWithoutSetup(t *testing.T) {
	exp, err := New(Config{Scenario: "release"}, NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := exp.Run(context.Background()); err == nil {
		t.Error("expected error without setup")
	}
}

func TestUnknownScenario(t *testing.T) {
	_, err := New(Config{Scenario: "nope"}, NewRegistry())
	if !errors.Is(err, dynamo.ErrUnknownScenario) {
		t.Errorf("expected ErrUnknownScenario, got %v", err)
	}
}

func TestUnknownPreset(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Scenario{Name: "broken", Lift: 1, Preset: "missing"})
	_, err := New(Config{Scenario: "broken"}, reg)
	if !errors.Is(err, dynamo.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestLiftLeavesOneBob(t *testing.T) {
	exp, err := New(Config{Scenario: "release", Lift: 9, Frames: 1}, NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if err := exp.Setup(nil); err != nil {
		t.Fatal(err)
	}
	f := exp.Session().Frame()
	last := f.Bobs[len(f.Bobs)-1]
	if last.Position != last.Rest {
		t.Error("last bob should stay at rest")
	}
	if f.Bobs[0].Position == f.Bobs[0].Rest {
		t.Error("first bob should be lifted")
	}
}

func TestRegistryList(t *testing.T) {
	names := NewRegistry().List()
	if len(names) != 4 || names[0] != "double" {
		t.Errorf("unexpected scenarios %v", names)
	}
}

func TestSetParam(t *testing.T) {
	cfg := Config{Scenario: "release", Settings: config.GetPreset("classic")}

	if err := cfg.SetParam("angle", 45); err != nil || *cfg.Angle != 45 {
		t.Errorf("angle: got %v, %v", cfg.Angle, err)
	}
	if err := cfg.SetParam("lift", 2); err != nil || cfg.Lift != 2 {
		t.Errorf("lift: got %d, %v", cfg.Lift, err)
	}
	if err := cfg.SetParam("bobs", 7); err != nil || cfg.Settings.Cradle.BobCount != 7 {
		t.Errorf("bobs: got %d, %v", cfg.Settings.Cradle.BobCount, err)
	}
	if err := cfg.SetParam("striker_mass", 2.5); err != nil {
		t.Fatal(err)
	}
	if got := cfg.Settings.Cradle.MassRatio(0); got != 2.5 {
		t.Errorf("striker mass ratio = %f, want 2.5", got)
	}
	if err := cfg.SetParam("color", 1); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestZeroAngleLeavesBobAtRest(t *testing.T) {
	cfg := Config{Scenario: "release", Settings: config.GetPreset("classic"), Frames: 10}
	if err := cfg.SetParam("angle", 0); err != nil {
		t.Fatal(err)
	}

	exp, err := New(cfg, NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if got := *exp.Config().Angle; got != 0 {
		t.Fatalf("angle 0 became %f", got)
	}
	if err := exp.Setup(nil); err != nil {
		t.Fatal(err)
	}

	f := exp.Session().Frame()
	if d := f.Bobs[0].Position.Dist(f.Bobs[0].Rest); d > 1e-9 {
		t.Errorf("bob 0 lifted %f px off rest at angle 0", d)
	}
}

func TestDefaultAngle(t *testing.T) {
	exp, err := New(Config{Scenario: "release"}, NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if got := *exp.Config().Angle; got != DefaultAngle {
		t.Errorf("expected default angle %f, got %f", DefaultAngle, got)
	}
}
