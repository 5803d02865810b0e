package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pkt.systems/xrsession/internal/appconfig"
	"pkt.systems/xrsession/schema"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	found := map[string]bool{}
	for _, cmd := range root.Commands() {
		found[cmd.Name()] = true
	}
	for _, name := range []string{"simulate", "formats", "config", "version"} {
		if !found[name] {
			t.Fatalf("expected root command to include %s", name)
		}
	}
}

func testConfig(t *testing.T) appconfig.Config {
	t.Helper()
	cfg, err := appconfig.DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.Compositor.FramePeriodMillis = 1
	cfg.Simulation.Frames = 3
	return cfg
}

var fullLifecycle = []schema.SessionState{
	schema.SessionStateIdle,
	schema.SessionStateReady,
	schema.SessionStateSynchronized,
	schema.SessionStateVisible,
	schema.SessionStateFocused,
	schema.SessionStateVisible,
	schema.SessionStateSynchronized,
	schema.SessionStateStopping,
	schema.SessionStateIdle,
	schema.SessionStateExiting,
}

func TestSimulateWithCompositor(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.EventLog = filepath.Join(t.TempDir(), "events.jsonl")
	ctx := context.Background()
	r, err := buildRig(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("build rig: %v", err)
	}
	result, err := simulate(ctx, r, cfg.Simulation, schema.DefaultSessionConfig())
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if result.Frames != 3 || result.Rendered != 3 {
		t.Fatalf("expected 3 rendered frames, got %+v", result)
	}
	if result.Final != schema.SessionStateExiting {
		t.Fatalf("expected exiting, got %s", result.Final)
	}
	if diff := cmp.Diff(fullLifecycle, result.States); diff != "" {
		t.Fatalf("states mismatch (-want +got):\n%s", diff)
	}
	if result.Stats == nil || result.Stats.Committed != 3 || result.Stats.Layers != 6 {
		t.Fatalf("unexpected compositor stats %+v", result.Stats)
	}

	data, err := os.ReadFile(cfg.Simulation.EventLog)
	if err != nil {
		t.Fatalf("read event log: %v", err)
	}
	if got := strings.Count(string(data), "session_state"); got != len(fullLifecycle) {
		t.Fatalf("expected %d logged events, got %d:\n%s", len(fullLifecycle), got, data)
	}
	if !strings.Contains(string(data), "exiting") {
		t.Fatalf("expected exiting in event log:\n%s", data)
	}
}

func TestSimulateHeadless(t *testing.T) {
	cfg := testConfig(t)
	cfg.Compositor.Enabled = false
	ctx := context.Background()
	r, err := buildRig(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("build rig: %v", err)
	}
	result, err := simulate(ctx, r, cfg.Simulation, schema.DefaultSessionConfig())
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if result.Frames != 3 || result.Rendered != 0 {
		t.Fatalf("expected 3 unrendered frames, got %+v", result)
	}
	if result.Stats != nil {
		t.Fatalf("expected no compositor stats, got %+v", result.Stats)
	}
	if diff := cmp.Diff(fullLifecycle, result.States); diff != "" {
		t.Fatalf("states mismatch (-want +got):\n%s", diff)
	}
}

func TestSimulateCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"simulate", "-c", filepath.Join(t.TempDir(), "missing.yaml"), "-n", "2"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if !strings.Contains(out.String(), "2 frames, 2 rendered, final state exiting") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestFormatsCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"formats", "-c", filepath.Join(t.TempDir(), "missing.yaml")})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("formats: %v", err)
	}
	if got := strings.Fields(out.String()); !cmp.Equal(got, []string{"43", "50", "37"}) {
		t.Fatalf("unexpected formats %q", out.String())
	}
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	root := newRootCmd()
	root.SetArgs([]string{"config", "init", "-c", path})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := appconfig.Load(path); err != nil {
		t.Fatalf("load written config: %v", err)
	}

	root = newRootCmd()
	root.SetArgs([]string{"config", "init", "-c", path})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Fatalf("expected error when config exists")
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), " v") {
		t.Fatalf("expected a version, got %q", out.String())
	}
}
