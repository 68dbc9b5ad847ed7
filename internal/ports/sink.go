package ports

import (
	"context"

	"github.com/FIRSTIsrael/lems-core/internal/domain"
)

// ResultSink receives the engine's outputs: lifecycle signals, picklist
// updates, and resolved award winners. Implementations persist and
// broadcast them; the transport and wire format are theirs alone.
//
// Stage transitions treat the sink call and the in-memory state change
// as one logical transaction: when a sink method fails, the engine
// leaves its stage and status untouched so the caller can retry.
// Sink implementations should therefore tolerate at-least-once
// delivery of the same resolution.
type ResultSink interface {
	// StartDeliberation signals that a deliberation moved to
	// in-progress.
	StartDeliberation(ctx context.Context, deliberationID string) error

	// UpdatePicklist publishes the new order of one award's picklist
	// after a successful edit.
	UpdatePicklist(ctx context.Context, deliberationID string, award domain.AwardName, teams []domain.TeamID) error

	// EndStage commits the winners resolved while closing a stage.
	EndStage(ctx context.Context, deliberationID string, stage domain.DeliberationStage, winners map[domain.AwardName][]domain.TeamID) error

	// CompleteDeliberation signals the terminal lock of a deliberation.
	CompleteDeliberation(ctx context.Context, deliberationID string) error

	// AdvanceTeams marks teams as advancing to the next competition
	// phase.
	AdvanceTeams(ctx context.Context, teamIDs []domain.TeamID) error

	// SetAwardWinners persists final winner assignments per award.
	SetAwardWinners(ctx context.Context, winners map[domain.AwardName][]domain.TeamID) error

	// EnableAwardsPresentation unlocks the award ceremony presentation
	// after the final deliberation completes.
	EnableAwardsPresentation(ctx context.Context) error
}

// Observer receives immutable deliberation snapshots after every
// accepted mutation. Observers are read-only; a slow observer must not
// block the editing operator.
type Observer interface {
	// DeliberationUpdated delivers the post-mutation snapshot.
	DeliberationUpdated(deliberationID string, picklists map[domain.AwardName][]domain.TeamID, status domain.DeliberationStatus, stage domain.DeliberationStage)
}
