package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithLoggerAndFromContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	ctx := WithLogger(context.Background(), logger)
	Info(ctx, "hello", zap.String(FieldTenantID, "acc_comp"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Message != "hello" {
		t.Errorf("unexpected message %q", entries[0].Message)
	}
	if entries[0].ContextMap()[FieldTenantID] != "acc_comp" {
		t.Errorf("tenant field not carried: %v", entries[0].ContextMap())
	}
}

func TestFromContextNoLogger(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil {
		t.Fatal("FromContext should never return nil")
	}
	// must not panic
	logger.Info("noop")
}

func TestAddFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := WithLogger(context.Background(), zap.New(core))

	ctx = AddFields(ctx, zap.String(FieldInstanceID, "inst-1"))
	Info(ctx, "with fields")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].ContextMap()[FieldInstanceID] != "inst-1" {
		t.Errorf("instance field missing: %v", entries[0].ContextMap())
	}
}
