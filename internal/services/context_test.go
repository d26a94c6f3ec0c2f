package services_test

import (
	"context"
	"testing"

	"votd/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if _, ok := services.VerbFromContext(ctx); ok {
		t.Fatal("expected no verb on empty context")
	}

	ctx = services.WithVerb(ctx, "gehen")
	ctx = services.WithStage(ctx, "lookup")
	ctx = services.WithWeek(ctx, 3)

	if verb, ok := services.VerbFromContext(ctx); !ok || verb != "gehen" {
		t.Fatalf("verb = %q, %v", verb, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "lookup" {
		t.Fatalf("stage = %q, %v", stage, ok)
	}
	if week, ok := services.WeekFromContext(ctx); !ok || week != 3 {
		t.Fatalf("week = %d, %v", week, ok)
	}
}

func TestEmptyValuesLeaveContextUntouched(t *testing.T) {
	ctx := context.Background()
	if got := services.WithVerb(ctx, ""); got != ctx {
		t.Fatal("expected WithVerb to ignore empty verb")
	}
	if got := services.WithStage(ctx, ""); got != ctx {
		t.Fatal("expected WithStage to ignore empty stage")
	}
}
