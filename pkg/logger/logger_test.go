package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"
)

func TestWithContext_AddsKnownKeys(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, "debug")
	t.Cleanup(func() { Configure(os.Stdout, "") })

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, FlowIDKey, "flow-9")
	DebugContext(ctx, "queue poll failed", "barber_id", "b1")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if line["request_id"] != "req-1" || line["flow_id"] != "flow-9" {
		t.Fatalf("missing context keys: %v", line)
	}
	if line["barber_id"] != "b1" {
		t.Fatalf("missing attribute: %v", line)
	}
}

func TestConfigure_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, "warn")
	t.Cleanup(func() { Configure(os.Stdout, "") })

	Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	Warn("kept")
	if buf.Len() == 0 {
		t.Fatal("warn should be written")
	}
}
