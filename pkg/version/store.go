// Package version implements the multiversion store keyed by (site, variable):
// an append-only list of timestamped values per (site, variable) pair.
package version

import (
	"sort"

	"github.com/pkg/errors"
)

// Version is a single (timestamp, value) entry in a variable's history at a site.
type Version struct {
	Ts    int
	Value int
}

// Store holds store[site][variable] = [...versions], each list sorted by
// strictly increasing Ts. The zero value is not usable; use NewStore.
type Store struct {
	sites map[int]map[int][]Version
}

// NewStore returns an empty version store.
func NewStore() *Store {
	return &Store{sites: make(map[int]map[int][]Version)}
}

// InitSite allocates site s and seeds each variable in vars with a version
// at timestamp 0, using seed(variable) for the initial value.
func (s *Store) InitSite(site int, vars []int, seed func(variable int) int) {
	vs, ok := s.sites[site]
	if !ok {
		vs = make(map[int][]Version)
		s.sites[site] = vs
	}
	for _, v := range vars {
		vs[v] = []Version{{Ts: 0, Value: seed(v)}}
	}
}

// AddVersion appends a new version for (site, variable). ts must be strictly
// greater than the previous version's timestamp; violating that, or naming a
// site/variable the store does not know about, is a programmer error and
// returns a wrapped error rather than silently corrupting history.
func (s *Store) AddVersion(site, variable, ts, value int) error {
	vs, ok := s.sites[site]
	if !ok {
		return errors.Errorf("version store: unknown site %d", site)
	}
	history, ok := vs[variable]
	if !ok {
		return errors.Errorf("version store: site %d has no variable x%d", site, variable)
	}
	if len(history) > 0 && ts <= history[len(history)-1].Ts {
		return errors.Errorf("version store: invalid version for site %d x%d: ts %d <= previous ts %d", site, variable, ts, history[len(history)-1].Ts)
	}
	s.sites[site][variable] = append(history, Version{Ts: ts, Value: value})
	return nil
}

// GetVersion returns the version with the maximal timestamp <= ts, or false
// if no such version exists (including if the site or variable is unknown).
func (s *Store) GetVersion(site, variable, ts int) (Version, bool) {
	history := s.history(site, variable)
	var best Version
	found := false
	for _, v := range history {
		if v.Ts <= ts && (!found || v.Ts > best.Ts) {
			best = v
			found = true
		}
	}
	return best, found
}

// GetLatest returns the most recent version of (site, variable), or false if
// the site or variable is unknown.
func (s *Store) GetLatest(site, variable int) (Version, bool) {
	history := s.history(site, variable)
	if len(history) == 0 {
		return Version{}, false
	}
	return history[len(history)-1], true
}

// HasVariable reports whether site physically holds variable.
func (s *Store) HasVariable(site, variable int) bool {
	vs, ok := s.sites[site]
	if !ok {
		return false
	}
	_, ok = vs[variable]
	return ok
}

// AllVariables returns every variable site holds, in ascending order.
func (s *Store) AllVariables(site int) []int {
	vs, ok := s.sites[site]
	if !ok {
		return nil
	}
	out := make([]int, 0, len(vs))
	for v := range vs {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func (s *Store) history(site, variable int) []Version {
	vs, ok := s.sites[site]
	if !ok {
		return nil
	}
	return vs[variable]
}
