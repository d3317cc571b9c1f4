package audit

import (
	"encoding/json"
	"path/filepath"
	"testing"
)

func TestLogEventAndRecent(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "audit", "audit.sqlite"))

	for i, typ := range []string{EventPlanRequested, EventPlanSolved, EventPlanRequested, EventPlanFailed} {
		if err := logger.LogEvent("test", typ, map[string]any{"seq": i}); err != nil {
			t.Fatalf("log event %d: %v", i, err)
		}
	}

	events, err := logger.Recent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventPlanFailed || events[1].Type != EventPlanRequested {
		t.Fatalf("expected newest first, got %s, %s", events[0].Type, events[1].Type)
	}
	var payload map[string]int
	if err := json.Unmarshal(events[0].Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["seq"] != 3 {
		t.Fatalf("expected seq 3, got %v", payload)
	}
	if events[0].TS.IsZero() || events[0].Actor != "test" {
		t.Fatalf("unexpected event %+v", events[0])
	}

	all, err := logger.Recent(0)
	if err != nil || len(all) != 4 {
		t.Fatalf("expected 4 events, got %d (%v)", len(all), err)
	}
}

func TestCountByType(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "audit.sqlite"))
	for _, typ := range []string{EventPlanRequested, EventPlanRequested, EventPlanSolved} {
		if err := logger.LogEvent("test", typ, nil); err != nil {
			t.Fatalf("log: %v", err)
		}
	}
	counts, err := logger.CountByType()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[EventPlanRequested] != 2 || counts[EventPlanSolved] != 1 || len(counts) != 2 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestEnvOverridesDefaultPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.sqlite")
	t.Setenv(EnvDBPath, path)

	var logger *Logger
	if err := logger.LogEvent("env", EventWorkspaceInit, map[string]string{"k": "v"}); err != nil {
		t.Fatalf("log: %v", err)
	}
	events, err := NewLogger(path).Recent(1)
	if err != nil || len(events) != 1 || events[0].Actor != "env" {
		t.Fatalf("expected event in env db, got %v (%v)", events, err)
	}
}

func TestRejectsUnmarshalablePayload(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "audit.sqlite"))
	if err := logger.LogEvent("test", "bad", map[string]any{"ch": make(chan int)}); err == nil {
		t.Fatalf("expected marshal error")
	}
}
