package testutils

import (
	"context"
	"sync"

	"github.com/FIRSTIsrael/lems-core/internal/domain"
	"github.com/FIRSTIsrael/lems-core/internal/ports"
)

// StaticDivisionReader serves a fixed division snapshot.
type StaticDivisionReader struct {
	mu  sync.Mutex
	div *domain.Division

	// Err, when set, is returned by every Snapshot call.
	Err error

	// Loads counts Snapshot calls, for cache assertions.
	Loads int
}

var _ ports.DivisionReader = (*StaticDivisionReader)(nil)

// NewStaticDivisionReader wraps a division snapshot.
func NewStaticDivisionReader(div *domain.Division) *StaticDivisionReader {
	return &StaticDivisionReader{div: div}
}

// SetDivision swaps the served snapshot.
func (r *StaticDivisionReader) SetDivision(div *domain.Division) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.div = div
}

func (r *StaticDivisionReader) Snapshot(_ context.Context, _ string) (*domain.Division, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Loads++
	if r.Err != nil {
		return nil, r.Err
	}
	return r.div, nil
}

// MemoryDeliberationStore keeps deliberation aggregates in a map.
type MemoryDeliberationStore struct {
	mu    sync.Mutex
	items map[string]*domain.Deliberation

	// SaveErr, when set, is returned by every Save call.
	SaveErr error
}

var _ ports.DeliberationStore = (*MemoryDeliberationStore)(nil)

// NewMemoryDeliberationStore creates an empty store.
func NewMemoryDeliberationStore() *MemoryDeliberationStore {
	return &MemoryDeliberationStore{items: make(map[string]*domain.Deliberation)}
}

func (s *MemoryDeliberationStore) Load(_ context.Context, deliberationID string) (*domain.Deliberation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.items[deliberationID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return d, nil
}

func (s *MemoryDeliberationStore) Save(_ context.Context, d *domain.Deliberation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.items[d.ID] = d
	return nil
}

// ObservedUpdate is one snapshot delivered to a RecordingObserver.
type ObservedUpdate struct {
	DeliberationID string
	Picklists      map[domain.AwardName][]domain.TeamID
	Status         domain.DeliberationStatus
	Stage          domain.DeliberationStage
}

// RecordingObserver collects delivered snapshots and signals each
// delivery on a channel so tests can wait for asynchronous broadcasts.
type RecordingObserver struct {
	mu      sync.Mutex
	updates []ObservedUpdate

	// Delivered receives one value per update; buffered so delivery
	// never blocks.
	Delivered chan struct{}
}

var _ ports.Observer = (*RecordingObserver)(nil)

// NewRecordingObserver creates an observer with a generous buffer.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{Delivered: make(chan struct{}, 256)}
}

func (o *RecordingObserver) DeliberationUpdated(deliberationID string, picklists map[domain.AwardName][]domain.TeamID, status domain.DeliberationStatus, stage domain.DeliberationStage) {
	o.mu.Lock()
	o.updates = append(o.updates, ObservedUpdate{
		DeliberationID: deliberationID,
		Picklists:      picklists,
		Status:         status,
		Stage:          stage,
	})
	o.mu.Unlock()

	select {
	case o.Delivered <- struct{}{}:
	default:
	}
}

// Updates returns a copy of the delivered snapshots in order.
func (o *RecordingObserver) Updates() []ObservedUpdate {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]ObservedUpdate, len(o.updates))
	copy(out, o.updates)
	return out
}
