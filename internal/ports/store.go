// Package ports defines the interfaces that form the contract between
// the deliberation engine and the owning service's infrastructure.
// These interfaces enable dependency inversion and make the engine
// testable without a store or transport.
package ports

import (
	"context"

	"github.com/FIRSTIsrael/lems-core/internal/domain"
)

// DivisionReader supplies the read-only division snapshot the engine
// ranks and deliberates over. Implementations fetch from whatever
// store the owning service uses; the engine itself performs no I/O.
type DivisionReader interface {
	// Snapshot returns the current division data: roster, rubrics,
	// scoresheets, judging sessions, award definitions, the optional
	// room score table, anomalies, and advancement configuration.
	//
	// The returned value must be safe for the engine to retain: the
	// reader must not mutate it after returning.
	Snapshot(ctx context.Context, divisionID string) (*domain.Division, error)
}

// DeliberationStore loads and persists deliberation aggregates.
// The engine holds the authoritative in-memory copy while a session is
// live; the store is the system of record between sessions.
type DeliberationStore interface {
	// Load fetches the deliberation aggregate by id.
	Load(ctx context.Context, deliberationID string) (*domain.Deliberation, error)

	// Save persists the aggregate's current state.
	Save(ctx context.Context, d *domain.Deliberation) error
}
