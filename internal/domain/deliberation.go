package domain

import "time"

// DeliberationKind distinguishes the per-category committee sessions
// from the division-wide final session.
type DeliberationKind string

const (
	// KindCategory is a single-category deliberation producing one
	// committed picklist.
	KindCategory DeliberationKind = "category-deliberation"

	// KindFinal is the multi-stage final deliberation that commits
	// award winners.
	KindFinal DeliberationKind = "final-deliberation"
)

// DeliberationStatus is the lifecycle status of a deliberation.
// Final deliberations cycle not-started → in-progress once per stage;
// completed is terminal.
type DeliberationStatus string

const (
	StatusNotStarted DeliberationStatus = "not-started"
	StatusInProgress DeliberationStatus = "in-progress"
	StatusCompleted  DeliberationStatus = "completed"
)

// DeliberationStage is one of the four sequential phases of a final
// deliberation. The stage advances monotonically.
type DeliberationStage string

const (
	StageChampions      DeliberationStage = "champions"
	StageCoreAwards     DeliberationStage = "core-awards"
	StageOptionalAwards DeliberationStage = "optional-awards"
	StageReview         DeliberationStage = "review"
)

// Stages lists the final deliberation stages in progression order.
var Stages = []DeliberationStage{
	StageChampions,
	StageCoreAwards,
	StageOptionalAwards,
	StageReview,
}

// NextStage returns the stage following s. The second return is false
// when s is the last stage (review) or unknown.
func NextStage(s DeliberationStage) (DeliberationStage, bool) {
	for i, stage := range Stages {
		if stage == s && i+1 < len(Stages) {
			return Stages[i+1], true
		}
	}
	return "", false
}

// Deliberation is the aggregate root edited by the judging committee.
// It wraps one PicklistSet together with lifecycle status and, for
// final deliberations, the current stage.
type Deliberation struct {
	// ID uniquely identifies the deliberation.
	ID string

	// Kind is category-deliberation or final-deliberation.
	Kind DeliberationKind

	// Category is the judged category for category deliberations;
	// empty for final deliberations.
	Category JudgingCategory

	// Status is the lifecycle status.
	Status DeliberationStatus

	// Stage is the current final deliberation stage; empty for
	// category deliberations.
	Stage DeliberationStage

	// Picklists holds the award candidate lists under edit.
	Picklists *PicklistSet

	// Disqualified teams are excluded from champions eligibility.
	Disqualified map[TeamID]bool

	// ManualEligibility holds per-stage judge-granted eligibility
	// overrides.
	ManualEligibility map[DeliberationStage][]TeamID

	// StartTime is stamped when the deliberation first moves to
	// in-progress for the current stage.
	StartTime time.Time
}

// NewCategoryDeliberation creates a not-started category deliberation
// whose single picklist is capped at capacity.
func NewCategoryDeliberation(id string, category JudgingCategory, capacity int) *Deliberation {
	return &Deliberation{
		ID:       id,
		Kind:     KindCategory,
		Category: category,
		Status:   StatusNotStarted,
		Picklists: NewPicklistSet(map[AwardName]int{
			AwardName(category): capacity,
		}),
		Disqualified: make(map[TeamID]bool),
	}
}

// NewFinalDeliberation creates a not-started final deliberation at the
// champions stage with one picklist per configured award.
func NewFinalDeliberation(id string, capacities map[AwardName]int) *Deliberation {
	return &Deliberation{
		ID:                id,
		Kind:              KindFinal,
		Status:            StatusNotStarted,
		Stage:             StageChampions,
		Picklists:         NewPicklistSet(capacities),
		Disqualified:      make(map[TeamID]bool),
		ManualEligibility: make(map[DeliberationStage][]TeamID),
	}
}

// Start moves the deliberation from not-started to in-progress and
// stamps the start time.
func (d *Deliberation) Start(now time.Time) error {
	if d.Status != StatusNotStarted {
		return ErrAlreadyStarted
	}
	d.Status = StatusInProgress
	d.StartTime = now
	return nil
}

// Editable reports whether picklist edits are currently accepted.
func (d *Deliberation) Editable() bool { return d.Status == StatusInProgress }

// AdvanceStage moves an in-progress final deliberation to the next
// stage, resetting status to not-started, or to completed after the
// review stage. Callers perform stage resolution first; this method
// only mutates lifecycle state.
func (d *Deliberation) AdvanceStage() error {
	if d.Kind != KindFinal {
		return ErrNotFinal
	}
	if d.Status != StatusInProgress {
		return ErrNotInProgress
	}
	next, ok := NextStage(d.Stage)
	if !ok {
		d.Status = StatusCompleted
		return nil
	}
	d.Stage = next
	d.Status = StatusNotStarted
	return nil
}

// SkipStage advances past the current stage without resolution; used
// when the optional-awards stage has nothing to deliberate.
func (d *Deliberation) SkipStage() error {
	return d.AdvanceStage()
}

// Complete finishes a category deliberation, committing its picklist.
func (d *Deliberation) Complete() error {
	if d.Kind != KindCategory {
		return ErrNotCategory
	}
	if d.Status != StatusInProgress {
		return ErrNotInProgress
	}
	d.Status = StatusCompleted
	return nil
}

// Apply dispatches a picklist move request, rejecting it unless the
// deliberation is in progress. It reports whether state changed.
func (d *Deliberation) Apply(req MoveRequest) bool {
	if !d.Editable() {
		return false
	}
	return d.Picklists.Apply(req)
}

// CommittedPicklist returns the category deliberation's picklist; only
// meaningful once the deliberation is completed.
func (d *Deliberation) CommittedPicklist() []TeamID {
	if d.Kind != KindCategory {
		return nil
	}
	return d.Picklists.List(AwardName(d.Category))
}

// ManualOverrides returns the manual eligibility override set for a
// stage.
func (d *Deliberation) ManualOverrides(stage DeliberationStage) map[TeamID]bool {
	out := make(map[TeamID]bool)
	for _, id := range d.ManualEligibility[stage] {
		out[id] = true
	}
	return out
}
