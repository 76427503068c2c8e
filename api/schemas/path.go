package schemas

import "sort"

// Path is an ordered sequence of state IDs from a start state to the
// target, inclusive. Score is the sum of the constituent transition scores.
type Path struct {
	StateIDs []StateID
	Score    int
}

// Contains reports whether the path passes through id.
func (p *Path) Contains(id StateID) bool {
	for _, s := range p.StateIDs {
		if s == id {
			return true
		}
	}
	return false
}

// Copy returns a deep copy of the path.
func (p *Path) Copy() *Path {
	ids := make([]StateID, len(p.StateIDs))
	copy(ids, p.StateIDs)
	return &Path{StateIDs: ids, Score: p.Score}
}

// Equals reports whether two paths visit the same states in the same order.
func (p *Path) Equals(other *Path) bool {
	if len(p.StateIDs) != len(other.StateIDs) {
		return false
	}
	for i := range p.StateIDs {
		if p.StateIDs[i] != other.StateIDs[i] {
			return false
		}
	}
	return true
}

// Paths is an ordered collection of candidate paths, cheapest first once
// Sort has been called.
type Paths struct {
	Paths []*Path
}

// NewPaths wraps a slice of paths.
func NewPaths(paths ...*Path) *Paths {
	return &Paths{Paths: paths}
}

// IsEmpty reports whether there are no candidate paths. An empty Paths is
// the legitimate "no route" terminal condition, not an error.
func (ps *Paths) IsEmpty() bool { return len(ps.Paths) == 0 }

// Sort orders the paths by ascending score. The sort is stable so equal
// scores keep discovery order.
func (ps *Paths) Sort() {
	sort.SliceStable(ps.Paths, func(i, j int) bool {
		return ps.Paths[i].Score < ps.Paths[j].Score
	})
}

// Best returns the cheapest path. Call Sort first. Returns nil when empty.
func (ps *Paths) Best() *Path {
	if ps.IsEmpty() {
		return nil
	}
	return ps.Paths[0]
}
