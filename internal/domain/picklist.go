package domain

// PoolContainer and TrashContainer are the two pseudo-containers a
// move request can reference besides named picklists. The pool is the
// implicit set of teams not placed in any list; the trash sends a
// placed team back to the pool.
const (
	PoolContainer  = "pool"
	TrashContainer = "trash"
)

// MoveRequest is the generic edit gesture produced by any front end:
// move a team from one container to a position in another. The
// picklist set dispatches it to the matching primitive operation.
type MoveRequest struct {
	// Source names the container the team is dragged from: an award
	// name, PoolContainer, or TrashContainer.
	Source string

	// Destination names the container the team is dropped into.
	Destination string

	// TeamID is the team being moved.
	TeamID TeamID

	// DestIndex is the 0-based insertion position in the destination.
	DestIndex int
}

// PicklistSet is a named collection of bounded ordered team lists, one
// per award. It is the unit of user edits during a deliberation.
//
// Two invariants hold after every operation: a team appears in at most
// one list across the whole set, and no list exceeds its award's
// configured capacity. Operations are total — illegal input is
// silently rejected and the set is left unchanged, mirroring the
// "can't drop here" behavior of the editing UI. Re-applying an
// operation is a no-op the second time, so at-least-once delivery of
// user gestures cannot duplicate effects.
//
// PicklistSet is not safe for concurrent mutation; the owning service
// serializes writers (see the application layer).
type PicklistSet struct {
	lists      map[AwardName][]TeamID
	capacities map[AwardName]int
}

// NewPicklistSet creates an empty set whose list capacities are given
// per award name. Awards absent from the map cannot hold any teams.
func NewPicklistSet(capacities map[AwardName]int) *PicklistSet {
	caps := make(map[AwardName]int, len(capacities))
	for name, c := range capacities {
		caps[name] = c
	}
	return &PicklistSet{
		lists:      make(map[AwardName][]TeamID),
		capacities: caps,
	}
}

// Capacity returns the configured capacity of the named list.
func (p *PicklistSet) Capacity(name AwardName) int { return p.capacities[name] }

// List returns a copy of the named list in order.
func (p *PicklistSet) List(name AwardName) []TeamID {
	list := p.lists[name]
	out := make([]TeamID, len(list))
	copy(out, list)
	return out
}

// Lists returns a deep copy of every non-empty list keyed by award.
func (p *PicklistSet) Lists() map[AwardName][]TeamID {
	out := make(map[AwardName][]TeamID, len(p.lists))
	for name, list := range p.lists {
		if len(list) == 0 {
			continue
		}
		cp := make([]TeamID, len(list))
		copy(cp, list)
		out[name] = cp
	}
	return out
}

// Contains reports whether the team is placed in any list, and if so
// which one.
func (p *PicklistSet) Contains(id TeamID) (AwardName, bool) {
	for name, list := range p.lists {
		for _, t := range list {
			if t == id {
				return name, true
			}
		}
	}
	return "", false
}

// Insert splices the team into the named list at index.
// Rejected when the award is unknown, the team is already placed
// anywhere in the set, or the list is at capacity. Returns whether the
// set changed.
func (p *PicklistSet) Insert(name AwardName, id TeamID, index int) bool {
	capacity, ok := p.capacities[name]
	if !ok {
		return false
	}
	if _, placed := p.Contains(id); placed {
		return false
	}
	list := p.lists[name]
	if len(list) >= capacity {
		return false
	}
	index = clampIndex(index, len(list))
	list = append(list, "")
	copy(list[index+1:], list[index:])
	list[index] = id
	p.lists[name] = list
	return true
}

// Remove deletes the team from the named list; no-op when absent.
// Returns whether the set changed.
func (p *PicklistSet) Remove(name AwardName, id TeamID) bool {
	list := p.lists[name]
	for i, t := range list {
		if t == id {
			p.lists[name] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Reorder moves the entry at from to position to within one list.
// Out-of-range indices are rejected. Returns whether the set changed.
func (p *PicklistSet) Reorder(name AwardName, from, to int) bool {
	list := p.lists[name]
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) || from == to {
		return false
	}
	id := list[from]
	list = append(list[:from], list[from+1:]...)
	list = append(list, "")
	copy(list[to+1:], list[to:])
	list[to] = id
	p.lists[name] = list
	return true
}

// Transfer moves the team from one list into another at destIndex.
// Rejected when the destination is unknown, at capacity, or already
// holds the team, or when the team is not in the source list. Returns
// whether the set changed.
func (p *PicklistSet) Transfer(source, dest AwardName, id TeamID, destIndex int) bool {
	capacity, ok := p.capacities[dest]
	if !ok {
		return false
	}
	destList := p.lists[dest]
	if len(destList) >= capacity {
		return false
	}
	for _, t := range destList {
		if t == id {
			return false
		}
	}
	if !p.Remove(source, id) {
		return false
	}
	destIndex = clampIndex(destIndex, len(destList))
	destList = append(destList, "")
	copy(destList[destIndex+1:], destList[destIndex:])
	destList[destIndex] = id
	p.lists[dest] = destList
	return true
}

// MoveToPool returns a placed team to the unplaced pool; identical to
// Remove. A team already in the pool cannot be un-placed further, so
// that case is a no-op.
func (p *PicklistSet) MoveToPool(name AwardName, id TeamID) bool {
	return p.Remove(name, id)
}

// Replace swaps the named list's contents wholesale, preserving the
// set invariants: entries already placed in another list or past
// capacity are dropped, duplicates collapse to their first position.
// Returns whether the set changed.
func (p *PicklistSet) Replace(name AwardName, list []TeamID) bool {
	capacity, ok := p.capacities[name]
	if !ok {
		return false
	}
	next := make([]TeamID, 0, len(list))
	seen := make(map[TeamID]bool, len(list))
	for _, id := range list {
		if seen[id] || len(next) >= capacity {
			continue
		}
		if holder, placed := p.Contains(id); placed && holder != name {
			continue
		}
		seen[id] = true
		next = append(next, id)
	}
	if equalLists(p.lists[name], next) {
		return false
	}
	p.lists[name] = next
	return true
}

// Apply dispatches a generic move request to the matching primitive:
// a trash or pool destination un-places the team, identical source and
// destination reorder one list, a pool source inserts, and anything
// else transfers between lists. Unknown gestures are rejected.
func (p *PicklistSet) Apply(req MoveRequest) bool {
	switch {
	case req.Destination == TrashContainer, req.Destination == PoolContainer:
		if req.Source == PoolContainer || req.Source == TrashContainer {
			// A pool team cannot be un-placed further.
			return false
		}
		return p.MoveToPool(AwardName(req.Source), req.TeamID)

	case req.Source == req.Destination:
		name := AwardName(req.Source)
		from := indexOf(p.lists[name], req.TeamID)
		if from < 0 {
			return false
		}
		return p.Reorder(name, from, req.DestIndex)

	case req.Source == PoolContainer:
		return p.Insert(AwardName(req.Destination), req.TeamID, req.DestIndex)

	default:
		return p.Transfer(AwardName(req.Source), AwardName(req.Destination), req.TeamID, req.DestIndex)
	}
}

// Pool returns the ids from the given roster order that are not placed
// in any list.
func (p *PicklistSet) Pool(roster []TeamID) []TeamID {
	out := make([]TeamID, 0, len(roster))
	for _, id := range roster {
		if _, placed := p.Contains(id); !placed {
			out = append(out, id)
		}
	}
	return out
}

// Clone returns an independent deep copy of the set.
func (p *PicklistSet) Clone() *PicklistSet {
	clone := NewPicklistSet(p.capacities)
	for name, list := range p.lists {
		cp := make([]TeamID, len(list))
		copy(cp, list)
		clone.lists[name] = cp
	}
	return clone
}

func clampIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}

func indexOf(list []TeamID, id TeamID) int {
	for i, t := range list {
		if t == id {
			return i
		}
	}
	return -1
}

func equalLists(a, b []TeamID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
