package services

import "context"

type contextKey string

const (
	verbKey  contextKey = "verb"
	stageKey contextKey = "stage"
	weekKey  contextKey = "week"
)

// WithVerb annotates context with the headword currently being processed.
func WithVerb(ctx context.Context, verb string) context.Context {
	if verb == "" {
		return ctx
	}
	return context.WithValue(ctx, verbKey, verb)
}

// VerbFromContext returns the headword if present.
func VerbFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(verbKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the workflow stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithWeek annotates context with the deck week number being filled.
func WithWeek(ctx context.Context, week int) context.Context {
	return context.WithValue(ctx, weekKey, week)
}

// WeekFromContext extracts the deck week number if present.
func WeekFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(weekKey).(int)
	return v, ok
}
