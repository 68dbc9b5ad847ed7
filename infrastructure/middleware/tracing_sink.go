// Package middleware provides cross-cutting concerns for the deliberation engine.
package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FIRSTIsrael/lems-core/internal/domain"
	"github.com/FIRSTIsrael/lems-core/internal/ports"
)

var _ ports.ResultSink = (*TracingSink)(nil)

// tracerName identifies the engine's tracer in exported spans.
const tracerName = "deliberation-engine"

// TracingSink decorates a ResultSink with OpenTelemetry tracing.
// Every sink call gets a span carrying the deliberation, stage, and
// winner counts, so stage closes can be correlated with downstream
// persistence and broadcast latency.
type TracingSink struct {
	next    ports.ResultSink
	metrics ports.MetricsCollector
}

// NewTracingSink wraps next with tracing. The metrics collector is
// optional; when present, sink latency is recorded per operation.
func NewTracingSink(next ports.ResultSink, metrics ports.MetricsCollector) *TracingSink {
	return &TracingSink{next: next, metrics: metrics}
}

// StartDeliberation traces the in-progress transition signal.
func (t *TracingSink) StartDeliberation(ctx context.Context, deliberationID string) error {
	return t.traced(ctx, "StartDeliberation", deliberationID, nil, func(ctx context.Context) error {
		return t.next.StartDeliberation(ctx, deliberationID)
	})
}

// UpdatePicklist traces one picklist publication.
func (t *TracingSink) UpdatePicklist(ctx context.Context, deliberationID string, award domain.AwardName, teams []domain.TeamID) error {
	attrs := []attribute.KeyValue{
		attribute.String("deliberation.award", string(award)),
		attribute.Int("deliberation.picklist_length", len(teams)),
	}
	return t.traced(ctx, "UpdatePicklist", deliberationID, attrs, func(ctx context.Context) error {
		return t.next.UpdatePicklist(ctx, deliberationID, award, teams)
	})
}

// EndStage traces a stage close, recording the stage and how many
// awards it resolved.
func (t *TracingSink) EndStage(ctx context.Context, deliberationID string, stage domain.DeliberationStage, winners map[domain.AwardName][]domain.TeamID) error {
	attrs := []attribute.KeyValue{
		attribute.String("deliberation.stage", string(stage)),
		attribute.Int("deliberation.awards_resolved", len(winners)),
	}
	return t.traced(ctx, "EndStage", deliberationID, attrs, func(ctx context.Context) error {
		return t.next.EndStage(ctx, deliberationID, stage, winners)
	})
}

// CompleteDeliberation traces the terminal lock signal.
func (t *TracingSink) CompleteDeliberation(ctx context.Context, deliberationID string) error {
	return t.traced(ctx, "CompleteDeliberation", deliberationID, nil, func(ctx context.Context) error {
		return t.next.CompleteDeliberation(ctx, deliberationID)
	})
}

// AdvanceTeams traces the advancement publication.
func (t *TracingSink) AdvanceTeams(ctx context.Context, teamIDs []domain.TeamID) error {
	attrs := []attribute.KeyValue{
		attribute.Int("deliberation.advancing_teams", len(teamIDs)),
	}
	return t.traced(ctx, "AdvanceTeams", "", attrs, func(ctx context.Context) error {
		return t.next.AdvanceTeams(ctx, teamIDs)
	})
}

// SetAwardWinners traces the final winner commit.
func (t *TracingSink) SetAwardWinners(ctx context.Context, winners map[domain.AwardName][]domain.TeamID) error {
	attrs := []attribute.KeyValue{
		attribute.Int("deliberation.awards_committed", len(winners)),
	}
	return t.traced(ctx, "SetAwardWinners", "", attrs, func(ctx context.Context) error {
		return t.next.SetAwardWinners(ctx, winners)
	})
}

// EnableAwardsPresentation traces the ceremony unlock signal.
func (t *TracingSink) EnableAwardsPresentation(ctx context.Context) error {
	return t.traced(ctx, "EnableAwardsPresentation", "", nil, func(ctx context.Context) error {
		return t.next.EnableAwardsPresentation(ctx)
	})
}

// traced runs fn inside a span named after the sink operation and
// records its latency and outcome.
func (t *TracingSink) traced(ctx context.Context, operation, deliberationID string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "ResultSink."+operation, trace.WithAttributes(attrs...))
	defer span.End()

	if deliberationID != "" {
		span.SetAttributes(attribute.String("deliberation.id", deliberationID))
	}

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	if t.metrics != nil {
		t.metrics.RecordLatency("sink_"+operation, elapsed, map[string]string{
			"deliberation": deliberationID,
		})
	}

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
