package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestWithLogger_FromContext(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithLogger(context.Background(), l)

	retrieved := FromContext(ctx)
	if retrieved == nil {
		t.Fatal("FromContext returned nil")
	}

	retrieved.Info("test message")
	if buf.Len() == 0 {
		t.Error("Logger from context should produce output")
	}
}

func TestFromContext_Default(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Error("FromContext should return default logger, got nil")
	}
}

func TestWithConnID(t *testing.T) {
	ctx := WithConnID(context.Background(), "01J9ZQ3K8W2Y7R4T6V5X0N1M2P")

	if got := ConnIDFromContext(ctx); got != "01J9ZQ3K8W2Y7R4T6V5X0N1M2P" {
		t.Errorf("ConnIDFromContext() = %q", got)
	}
	if got := ConnIDFromContext(context.Background()); got != "" {
		t.Errorf("ConnIDFromContext(empty) = %q, want empty", got)
	}
}

func TestL_WithConnID(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithLogger(context.Background(), l)
	ctx = WithConnID(ctx, "conn-1")

	L(ctx).Info("accepted")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if entry["conn_id"] != "conn-1" {
		t.Errorf("conn_id = %v, want %q", entry["conn_id"], "conn-1")
	}
}

func TestL_NoConnID(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	L(WithLogger(context.Background(), l)).Info("plain")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if _, ok := entry["conn_id"]; ok {
		t.Error("conn_id should be absent when not set in context")
	}
}
