package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/FIRSTIsrael/lems-core/internal/domain"
	"github.com/FIRSTIsrael/lems-core/internal/ports"
)

// divisionStateKey is the singleflight key for snapshot derivation;
// one division per service means one key.
const divisionStateKey = "division-state"

// DeliberationService owns the live deliberations of one division.
// It serializes all mutations per deliberation, derives ranking state
// from the division snapshot on demand, publishes accepted changes to
// the result sink, and fans immutable snapshots out to observers.
type DeliberationService struct {
	divisionID string
	reader     ports.DivisionReader
	store      ports.DeliberationStore
	sink       ports.ResultSink
	cfg        *Config

	metrics ports.MetricsCollector
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session

	// stateMu guards the cached division state; flight collapses
	// concurrent snapshot loads into one reader call.
	stateMu sync.Mutex
	state   *DivisionState
	flight  singleflight.Group

	obsMu     sync.RWMutex
	observers []ports.Observer
	limiter   *rate.Limiter
}

// session pairs a deliberation aggregate with the mutex that serializes
// its mutations and the winners resolved at its closed stages.
type session struct {
	mu      sync.Mutex
	d       *domain.Deliberation
	winners map[domain.AwardName][]domain.TeamID
}

// Option configures a DeliberationService.
type Option func(*DeliberationService)

// WithMetrics wires a metrics collector; absent, metrics are dropped.
func WithMetrics(m ports.MetricsCollector) Option {
	return func(s *DeliberationService) { s.metrics = m }
}

// WithClock overrides the time source, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(s *DeliberationService) { s.now = now }
}

// WithBroadcastLimit overrides the observer broadcast rate limit.
func WithBroadcastLimit(limit rate.Limit, burst int) Option {
	return func(s *DeliberationService) { s.limiter = rate.NewLimiter(limit, burst) }
}

// NewDeliberationService creates the service for one division.
// All collaborators are required except those supplied via options.
func NewDeliberationService(divisionID string, reader ports.DivisionReader, store ports.DeliberationStore, sink ports.ResultSink, cfg *Config, opts ...Option) (*DeliberationService, error) {
	if reader == nil || store == nil || sink == nil {
		return nil, fmt.Errorf("reader, store, and sink are required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	s := &DeliberationService{
		divisionID: divisionID,
		reader:     reader,
		store:      store,
		sink:       sink,
		cfg:        cfg,
		metrics:    noopMetrics{},
		now:        time.Now,
		sessions:   make(map[string]*session),
		limiter:    rate.NewLimiter(rate.Limit(20), 5),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Subscribe registers an observer for post-mutation snapshots.
func (s *DeliberationService) Subscribe(obs ports.Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, obs)
}

// DivisionState returns the derived ranking state, loading and caching
// the division snapshot on first use. Concurrent callers share one
// load.
func (s *DeliberationService) DivisionState(ctx context.Context) (*DivisionState, error) {
	s.stateMu.Lock()
	cached := s.state
	s.stateMu.Unlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := s.flight.Do(divisionStateKey, func() (any, error) {
		div, err := s.reader.Snapshot(ctx, s.divisionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load division snapshot: %w", err)
		}
		state := NewDivisionState(div)
		s.stateMu.Lock()
		s.state = state
		s.stateMu.Unlock()
		return state, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*DivisionState), nil
}

// InvalidateDivision drops the cached state so the next read re-fetches
// the snapshot. Call it when division inputs change upstream.
func (s *DeliberationService) InvalidateDivision() {
	s.stateMu.Lock()
	s.state = nil
	s.stateMu.Unlock()
}

// CreateCategoryDeliberation creates and persists a not-started
// category deliberation whose picklist capacity follows the division's
// team count.
func (s *DeliberationService) CreateCategoryDeliberation(ctx context.Context, category domain.JudgingCategory) (*domain.Deliberation, error) {
	if !domain.IsRubricCategory(category) {
		return nil, fmt.Errorf("category %q: %w", category, domain.ErrUnknownAward)
	}

	state, err := s.DivisionState(ctx)
	if err != nil {
		return nil, err
	}

	capacity := s.cfg.CategoryPicklistCapacity(category, len(state.Division.Teams))
	d := domain.NewCategoryDeliberation(uuid.NewString(), category, capacity)
	if err := s.store.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to persist deliberation: %w", err)
	}

	s.register(d)
	return d, nil
}

// CreateFinalDeliberation creates and persists a not-started final
// deliberation with one picklist per configured award.
func (s *DeliberationService) CreateFinalDeliberation(ctx context.Context) (*domain.Deliberation, error) {
	d := domain.NewFinalDeliberation(uuid.NewString(), s.cfg.PicklistCapacities())
	if err := s.store.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to persist deliberation: %w", err)
	}

	s.register(d)
	return d, nil
}

// Start moves a deliberation to in-progress. The sink is notified
// before the transition; a sink failure leaves the deliberation
// untouched.
func (s *DeliberationService) Start(ctx context.Context, deliberationID string) error {
	sess, err := s.session(ctx, deliberationID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.d.Status != domain.StatusNotStarted {
		return domain.ErrAlreadyStarted
	}
	if err := s.sink.StartDeliberation(ctx, deliberationID); err != nil {
		return &ports.SinkError{Operation: "StartDeliberation", DeliberationID: deliberationID, Err: err}
	}
	if err := sess.d.Start(s.now()); err != nil {
		return err
	}
	if err := s.store.Save(ctx, sess.d); err != nil {
		return fmt.Errorf("failed to persist deliberation: %w", err)
	}

	s.broadcast(sess.d)
	return nil
}

// Move applies one picklist edit gesture. It reports whether state
// changed; illegal gestures are rejected without error. Accepted edits
// are published to the sink and persisted before observers see them.
func (s *DeliberationService) Move(ctx context.Context, deliberationID string, req domain.MoveRequest) (bool, error) {
	start := s.now()
	sess, err := s.session(ctx, deliberationID)
	if err != nil {
		return false, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	changed := sess.d.Apply(req)
	labels := map[string]string{"deliberation": deliberationID}
	s.metrics.RecordLatency("picklist_move", time.Since(start), labels)
	if !changed {
		s.metrics.RecordCounter("picklist_moves_rejected_total", 1, labels)
		return false, nil
	}
	s.metrics.RecordCounter("picklist_moves_applied_total", 1, labels)

	for _, award := range affectedAwards(req) {
		list := sess.d.Picklists.List(award)
		s.metrics.RecordGauge("picklist_occupancy", float64(len(list)), map[string]string{"award": string(award)})
		if err := s.sink.UpdatePicklist(ctx, deliberationID, award, list); err != nil {
			return true, &ports.SinkError{Operation: "UpdatePicklist", DeliberationID: deliberationID, Err: err}
		}
	}
	if err := s.store.Save(ctx, sess.d); err != nil {
		return true, fmt.Errorf("failed to persist deliberation: %w", err)
	}

	s.broadcast(sess.d)
	return true, nil
}

// ReplacePicklist swaps one award's picklist wholesale, preserving the
// set invariants. Rejected while the deliberation is not editable.
func (s *DeliberationService) ReplacePicklist(ctx context.Context, deliberationID string, award domain.AwardName, teams []domain.TeamID) (bool, error) {
	sess, err := s.session(ctx, deliberationID)
	if err != nil {
		return false, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.d.Editable() {
		return false, nil
	}
	if !sess.d.Picklists.Replace(award, teams) {
		return false, nil
	}

	list := sess.d.Picklists.List(award)
	if err := s.sink.UpdatePicklist(ctx, deliberationID, award, list); err != nil {
		return true, &ports.SinkError{Operation: "UpdatePicklist", DeliberationID: deliberationID, Err: err}
	}
	if err := s.store.Save(ctx, sess.d); err != nil {
		return true, fmt.Errorf("failed to persist deliberation: %w", err)
	}

	s.broadcast(sess.d)
	return true, nil
}

// EndStage resolves and closes the current final deliberation stage.
//
// Resolution and every sink commit happen before the stage advances;
// any failure returns a ResolutionError and leaves the stage and
// status untouched so the close can be retried. Closing the review
// stage additionally commits all accumulated winners and completes the
// deliberation.
func (s *DeliberationService) EndStage(ctx context.Context, deliberationID string) error {
	start := s.now()
	sess, err := s.session(ctx, deliberationID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	d := sess.d
	if d.Kind != domain.KindFinal {
		return domain.ErrNotFinal
	}
	if d.Status != domain.StatusInProgress {
		return domain.ErrNotInProgress
	}
	stage := d.Stage

	state, err := s.DivisionState(ctx)
	if err != nil {
		return domain.NewResolutionError(stage, err)
	}
	res, err := ResolveStage(state, d, s.cfg, sess.winners)
	if err != nil {
		return domain.NewResolutionError(stage, err)
	}

	if err := s.sink.EndStage(ctx, deliberationID, stage, res.Winners); err != nil {
		return domain.NewResolutionError(stage, &ports.SinkError{Operation: "EndStage", DeliberationID: deliberationID, Err: err})
	}
	if len(res.Advancing) > 0 {
		if err := s.sink.AdvanceTeams(ctx, res.Advancing); err != nil {
			return domain.NewResolutionError(stage, &ports.SinkError{Operation: "AdvanceTeams", DeliberationID: deliberationID, Err: err})
		}
	}

	if sess.winners == nil {
		sess.winners = make(map[domain.AwardName][]domain.TeamID)
	}
	for award, teams := range res.Winners {
		sess.winners[award] = teams
	}

	if stage == domain.StageReview {
		if err := s.sink.SetAwardWinners(ctx, sess.winners); err != nil {
			return domain.NewResolutionError(stage, &ports.SinkError{Operation: "SetAwardWinners", DeliberationID: deliberationID, Err: err})
		}
		if err := s.sink.EnableAwardsPresentation(ctx); err != nil {
			return domain.NewResolutionError(stage, &ports.SinkError{Operation: "EnableAwardsPresentation", DeliberationID: deliberationID, Err: err})
		}
		if err := s.sink.CompleteDeliberation(ctx, deliberationID); err != nil {
			return domain.NewResolutionError(stage, &ports.SinkError{Operation: "CompleteDeliberation", DeliberationID: deliberationID, Err: err})
		}
	}

	if err := d.AdvanceStage(); err != nil {
		return err
	}
	if d.Status != domain.StatusCompleted && d.Stage == domain.StageOptionalAwards && !s.cfg.HasOptionalAwards() {
		// Nothing to deliberate; pass straight through to review.
		if err := d.Start(s.now()); err != nil {
			return err
		}
		if err := d.SkipStage(); err != nil {
			return err
		}
	}

	s.metrics.RecordCounter("stage_transitions_total", 1, map[string]string{"from": string(stage)})
	s.metrics.RecordLatency("end_stage", time.Since(start), map[string]string{"stage": string(stage)})

	if err := s.store.Save(ctx, d); err != nil {
		return fmt.Errorf("failed to persist deliberation: %w", err)
	}

	s.broadcast(d)
	return nil
}

// CompleteCategory finishes a category deliberation, committing its
// picklist for final deliberation ranking. The sink is notified before
// the transition; a sink failure leaves the deliberation untouched.
func (s *DeliberationService) CompleteCategory(ctx context.Context, deliberationID string) error {
	sess, err := s.session(ctx, deliberationID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	d := sess.d
	if d.Kind != domain.KindCategory {
		return domain.ErrNotCategory
	}
	if d.Status != domain.StatusInProgress {
		return domain.ErrNotInProgress
	}

	if err := s.sink.CompleteDeliberation(ctx, deliberationID); err != nil {
		return &ports.SinkError{Operation: "CompleteDeliberation", DeliberationID: deliberationID, Err: err}
	}
	if err := d.Complete(); err != nil {
		return err
	}
	if err := s.store.Save(ctx, d); err != nil {
		return fmt.Errorf("failed to persist deliberation: %w", err)
	}

	// The committed picklist changes final ranks; force a re-derive.
	s.InvalidateDivision()

	s.broadcast(d)
	return nil
}

// Disqualify excludes a team from champions eligibility in a final
// deliberation. Rejected once the deliberation completes.
func (s *DeliberationService) Disqualify(ctx context.Context, deliberationID string, teamID domain.TeamID) error {
	sess, err := s.session(ctx, deliberationID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.d.Kind != domain.KindFinal {
		return domain.ErrNotFinal
	}
	if sess.d.Status == domain.StatusCompleted {
		return domain.ErrNotInProgress
	}
	sess.d.Disqualified[teamID] = true

	if err := s.store.Save(ctx, sess.d); err != nil {
		return fmt.Errorf("failed to persist deliberation: %w", err)
	}
	s.broadcast(sess.d)
	return nil
}

// GrantEligibility adds a judge-granted eligibility override for the
// given stage of a final deliberation.
func (s *DeliberationService) GrantEligibility(ctx context.Context, deliberationID string, stage domain.DeliberationStage, teamID domain.TeamID) error {
	sess, err := s.session(ctx, deliberationID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.d.Kind != domain.KindFinal {
		return domain.ErrNotFinal
	}
	if sess.d.Status == domain.StatusCompleted {
		return domain.ErrNotInProgress
	}
	for _, id := range sess.d.ManualEligibility[stage] {
		if id == teamID {
			return nil
		}
	}
	sess.d.ManualEligibility[stage] = append(sess.d.ManualEligibility[stage], teamID)

	if err := s.store.Save(ctx, sess.d); err != nil {
		return fmt.Errorf("failed to persist deliberation: %w", err)
	}
	s.broadcast(sess.d)
	return nil
}

// Eligible returns the teams that may be considered at the
// deliberation's current stage. Category deliberations consider every
// registered team.
func (s *DeliberationService) Eligible(ctx context.Context, deliberationID string) ([]domain.TeamID, error) {
	sess, err := s.session(ctx, deliberationID)
	if err != nil {
		return nil, err
	}
	state, err := s.DivisionState(ctx)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.d.Kind == domain.KindCategory {
		return registeredTeams(state), nil
	}
	return EligibleTeams(sess.d.Stage, state, sess.d, s.cfg), nil
}

// Picklists returns a deep copy of the deliberation's current lists.
func (s *DeliberationService) Picklists(ctx context.Context, deliberationID string) (map[domain.AwardName][]domain.TeamID, error) {
	sess, err := s.session(ctx, deliberationID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.d.Picklists.Lists(), nil
}

// register caches a freshly created aggregate as a live session.
func (s *DeliberationService) register(d *domain.Deliberation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[d.ID] = &session{d: d}
}

// session returns the live session for the id, loading the aggregate
// from the store on first touch after a restart.
func (s *DeliberationService) session(ctx context.Context, deliberationID string) (*session, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[deliberationID]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	d, err := s.store.Load(ctx, deliberationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deliberation %s: %w", deliberationID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[deliberationID]; ok {
		return sess, nil
	}
	sess := &session{d: d}
	s.sessions[deliberationID] = sess
	return sess, nil
}

// broadcast fans the post-mutation snapshot out to every observer.
// Delivery is asynchronous and rate limited so a burst of edits or a
// slow observer cannot block the operator.
func (s *DeliberationService) broadcast(d *domain.Deliberation) {
	s.obsMu.RLock()
	observers := make([]ports.Observer, len(s.observers))
	copy(observers, s.observers)
	s.obsMu.RUnlock()
	if len(observers) == 0 {
		return
	}

	id, lists, status, stage := d.ID, d.Picklists.Lists(), d.Status, d.Stage
	go func() {
		_ = s.limiter.Wait(context.Background())
		var g errgroup.Group
		for _, obs := range observers {
			obs := obs
			g.Go(func() error {
				obs.DeliberationUpdated(id, lists, status, stage)
				return nil
			})
		}
		_ = g.Wait()
	}()
}

// affectedAwards lists the real picklists a move request touched.
func affectedAwards(req domain.MoveRequest) []domain.AwardName {
	var out []domain.AwardName
	if req.Source != domain.PoolContainer && req.Source != domain.TrashContainer {
		out = append(out, domain.AwardName(req.Source))
	}
	if req.Destination != domain.PoolContainer && req.Destination != domain.TrashContainer && req.Destination != req.Source {
		out = append(out, domain.AwardName(req.Destination))
	}
	return out
}

// noopMetrics drops every metric; the default when no collector is
// wired.
type noopMetrics struct{}

func (noopMetrics) RecordLatency(string, time.Duration, map[string]string) {}
func (noopMetrics) RecordCounter(string, float64, map[string]string)      {}
func (noopMetrics) RecordGauge(string, float64, map[string]string)        {}
func (noopMetrics) RecordHistogram(string, float64, map[string]string)    {}

var _ ports.MetricsCollector = (*noopMetrics)(nil)
