package services_test

import (
	"context"
	"testing"

	"mediascribe/internal/services"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id on empty context")
	}
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithFile(ctx, "/tmp/a.mp3")
	ctx = services.WithStage(ctx, "convert")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id %q (ok=%v)", id, ok)
	}
	if file, ok := services.FileFromContext(ctx); !ok || file != "/tmp/a.mp3" {
		t.Fatalf("unexpected file %q (ok=%v)", file, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "convert" {
		t.Fatalf("unexpected stage %q (ok=%v)", stage, ok)
	}
}

func TestContextIgnoresEmptyValues(t *testing.T) {
	ctx := services.WithStage(context.Background(), "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected empty stage to be ignored")
	}
}
