package enhance

import (
	"context"
	"strings"

	"resume2portfolio/internal/shared/telemetry"
)

const (
	// Marker prefixes every enhanced summary.
	Marker = "Enhanced: "
	// DefaultSummary stands in for a missing summary.
	DefaultSummary = "Professional with diverse experience in technology and innovation."
)

// Enhancer decorates a parsed summary.
type Enhancer interface {
	Enhance(ctx context.Context, summary string) (string, error)
}

// Placeholder is the deterministic enhancer used when no backend is configured.
type Placeholder struct{}

// Enhance prefixes the summary (or the default phrase) with Marker.
func (Placeholder) Enhance(ctx context.Context, summary string) (string, error) {
	_ = ctx
	return Summary(summary), nil
}

// Summary applies the placeholder enhancement.
func Summary(summary string) string {
	if summary == "" {
		summary = DefaultSummary
	}
	return Marker + summary
}

type fallback struct {
	primary  Enhancer
	fallback Enhancer
}

// WithFallback returns an enhancer that uses next whenever primary fails.
func WithFallback(primary, next Enhancer) Enhancer {
	if primary == nil {
		return next
	}
	if next == nil {
		next = Placeholder{}
	}
	return fallback{primary: primary, fallback: next}
}

func (f fallback) Enhance(ctx context.Context, summary string) (string, error) {
	out, err := f.primary.Enhance(ctx, summary)
	if err == nil && strings.TrimSpace(out) != "" {
		return out, nil
	}
	fields := map[string]any{}
	if err != nil {
		fields["err"] = err.Error()
	}
	telemetry.Warn("enhance.fallback", fields)
	return f.fallback.Enhance(ctx, summary)
}
