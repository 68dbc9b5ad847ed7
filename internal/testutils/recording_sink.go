package testutils

import (
	"context"
	"sync"

	"github.com/FIRSTIsrael/lems-core/internal/domain"
	"github.com/FIRSTIsrael/lems-core/internal/ports"
)

// SinkCall records one invocation of a RecordingSink method.
type SinkCall struct {
	// Operation is the sink method name.
	Operation string

	// DeliberationID is the affected deliberation, when the method
	// carries one.
	DeliberationID string

	// Stage is set for EndStage calls.
	Stage domain.DeliberationStage

	// Award and Teams are set for UpdatePicklist calls.
	Award domain.AwardName
	Teams []domain.TeamID

	// Winners is set for EndStage and SetAwardWinners calls.
	Winners map[domain.AwardName][]domain.TeamID
}

// RecordingSink is a ResultSink fake that records every call and can
// inject a failure for a named operation, for exercising the engine's
// transactional stage-close behavior.
type RecordingSink struct {
	mu    sync.Mutex
	calls []SinkCall
	fail  map[string]error
}

var _ ports.ResultSink = (*RecordingSink)(nil)

// NewRecordingSink creates an empty recording sink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{fail: make(map[string]error)}
}

// FailOn makes the named operation return err until cleared.
func (r *RecordingSink) FailOn(operation string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[operation] = err
}

// ClearFailures removes all injected failures.
func (r *RecordingSink) ClearFailures() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = make(map[string]error)
}

// Calls returns a copy of the recorded calls in order.
func (r *RecordingSink) Calls() []SinkCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SinkCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsTo returns the recorded calls for one operation.
func (r *RecordingSink) CallsTo(operation string) []SinkCall {
	var out []SinkCall
	for _, c := range r.Calls() {
		if c.Operation == operation {
			out = append(out, c)
		}
	}
	return out
}

func (r *RecordingSink) record(call SinkCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail[call.Operation]; err != nil {
		return err
	}
	r.calls = append(r.calls, call)
	return nil
}

func (r *RecordingSink) StartDeliberation(_ context.Context, deliberationID string) error {
	return r.record(SinkCall{Operation: "StartDeliberation", DeliberationID: deliberationID})
}

func (r *RecordingSink) UpdatePicklist(_ context.Context, deliberationID string, award domain.AwardName, teams []domain.TeamID) error {
	cp := make([]domain.TeamID, len(teams))
	copy(cp, teams)
	return r.record(SinkCall{Operation: "UpdatePicklist", DeliberationID: deliberationID, Award: award, Teams: cp})
}

func (r *RecordingSink) EndStage(_ context.Context, deliberationID string, stage domain.DeliberationStage, winners map[domain.AwardName][]domain.TeamID) error {
	return r.record(SinkCall{Operation: "EndStage", DeliberationID: deliberationID, Stage: stage, Winners: copyWinners(winners)})
}

func (r *RecordingSink) CompleteDeliberation(_ context.Context, deliberationID string) error {
	return r.record(SinkCall{Operation: "CompleteDeliberation", DeliberationID: deliberationID})
}

func (r *RecordingSink) AdvanceTeams(_ context.Context, teamIDs []domain.TeamID) error {
	cp := make([]domain.TeamID, len(teamIDs))
	copy(cp, teamIDs)
	return r.record(SinkCall{Operation: "AdvanceTeams", Teams: cp})
}

func (r *RecordingSink) SetAwardWinners(_ context.Context, winners map[domain.AwardName][]domain.TeamID) error {
	return r.record(SinkCall{Operation: "SetAwardWinners", Winners: copyWinners(winners)})
}

func (r *RecordingSink) EnableAwardsPresentation(_ context.Context) error {
	return r.record(SinkCall{Operation: "EnableAwardsPresentation"})
}

func copyWinners(winners map[domain.AwardName][]domain.TeamID) map[domain.AwardName][]domain.TeamID {
	out := make(map[domain.AwardName][]domain.TeamID, len(winners))
	for award, teams := range winners {
		cp := make([]domain.TeamID, len(teams))
		copy(cp, teams)
		out[award] = cp
	}
	return out
}
