// Package site implements the per-site availability state machine, uptime
// interval bookkeeping, and the static replica-placement rules.
package site

import (
	"sort"

	"go.uber.org/zap"
)

// State is a site's availability state machine.
type State int

const (
	Up State = iota
	Failed
	Recovering
)

func (s State) String() string {
	switch s {
	case Up:
		return "Up"
	case Failed:
		return "Failed"
	case Recovering:
		return "Recovering"
	default:
		return "Unknown"
	}
}

// Interval is a closed-or-open uptime window. End is nil while the interval
// is still open (the site has not failed since Start).
type Interval struct {
	Start int
	End   *int
}

// Site is one site's mutable state.
type Site struct {
	ID          int
	State       State
	Intervals   []Interval
	readEnabled map[int]bool // replicated variable -> read-enabled, for variables this site holds
}

// Manager owns every site's state plus the placement rules (§3, §4.2).
type Manager struct {
	nSites int
	nVars  int
	sites  map[int]*Site
	log    *zap.SugaredLogger
}

// NewManager builds nSites sites, all Up with an open interval starting at
// time 0, and computes which variables (1..nVars) each site holds per the
// even-replicated / odd-home-site placement rule. log is tagged by the
// caller (component=site) and used for every state-transition trace.
func NewManager(nSites, nVars int, log *zap.SugaredLogger) *Manager {
	m := &Manager{nSites: nSites, nVars: nVars, sites: make(map[int]*Site, nSites), log: log}
	for s := 1; s <= nSites; s++ {
		site := &Site{
			ID:          s,
			State:       Up,
			Intervals:   []Interval{{Start: 0}},
			readEnabled: make(map[int]bool),
		}
		for _, v := range m.HeldVariables(s) {
			if m.IsReplicated(v) {
				site.readEnabled[v] = true
			}
		}
		m.sites[s] = site
	}
	return m
}

// IsReplicated reports whether variable i is replicated (even index).
func (m *Manager) IsReplicated(i int) bool {
	return i%2 == 0
}

// HomeSite returns the single site holding non-replicated variable i.
func (m *Manager) HomeSite(i int) int {
	return 1 + ((i - 1) % m.nSites)
}

// HeldVariables returns every variable (ascending) that site s physically holds.
func (m *Manager) HeldVariables(s int) []int {
	var out []int
	for v := 1; v <= m.nVars; v++ {
		if m.IsReplicated(v) || m.HomeSite(v) == s {
			out = append(out, v)
		}
	}
	return out
}

func (m *Manager) get(s int) *Site {
	return m.sites[s]
}

// Fail transitions s to Failed, closing its trailing open interval at now.
// No-op if s is already Failed.
func (m *Manager) Fail(s, now int) {
	site := m.get(s)
	if site == nil || site.State == Failed {
		return
	}
	site.State = Failed
	last := &site.Intervals[len(site.Intervals)-1]
	end := now
	last.End = &end
	m.log.Debugw("site failed", "site", s, "now", now)
}

// Recover transitions s to Recovering, opens a fresh uptime interval at now,
// and disables read access to every replicated variable s holds. No-op if s
// is not currently Failed.
func (m *Manager) Recover(s, now int) {
	site := m.get(s)
	if site == nil || site.State != Failed {
		return
	}
	site.State = Recovering
	site.Intervals = append(site.Intervals, Interval{Start: now})
	for _, v := range m.HeldVariables(s) {
		if m.IsReplicated(v) {
			site.readEnabled[v] = false
		}
	}
	m.log.Debugw("site recovering", "site", s, "now", now)
}

// EnableReplicatedRead marks replicated variable i readable again at s
// (called after a commit installs a fresh version of i at s while s is
// Recovering). Once every replicated variable s holds is enabled, s
// transitions Recovering -> Up.
func (m *Manager) EnableReplicatedRead(s, i int) {
	site := m.get(s)
	if site == nil || site.State != Recovering || !m.IsReplicated(i) {
		return
	}
	site.readEnabled[i] = true
	for _, v := range m.HeldVariables(s) {
		if m.IsReplicated(v) && !site.readEnabled[v] {
			return
		}
	}
	site.State = Up
	m.log.Debugw("site recovered", "site", s)
}

// IsAvailable reports whether s is not Failed.
func (m *Manager) IsAvailable(s int) bool {
	site := m.get(s)
	return site != nil && site.State != Failed
}

// CanRead reports whether s can currently serve a read of variable i.
func (m *Manager) CanRead(s, i int) bool {
	site := m.get(s)
	if site == nil || site.State == Failed || !m.holds(s, i) {
		return false
	}
	if !m.IsReplicated(i) {
		return true
	}
	if site.State == Up {
		return true
	}
	return site.State == Recovering && site.readEnabled[i]
}

func (m *Manager) holds(s, i int) bool {
	if m.IsReplicated(i) {
		return true
	}
	return m.HomeSite(i) == s
}

// WasContinuouslyUp reports whether s stayed up for the entire closed window
// [a, b]: some uptime interval starts at or before a and ends at or after b
// (or is still open).
func (m *Manager) WasContinuouslyUp(s, a, b int) bool {
	site := m.get(s)
	if site == nil {
		return false
	}
	for _, iv := range site.Intervals {
		if iv.Start > a {
			continue
		}
		if iv.End == nil || *iv.End >= b {
			return true
		}
	}
	return false
}

// State returns the current state of site s.
func (m *Manager) State(s int) State {
	site := m.get(s)
	if site == nil {
		return Failed
	}
	return site.State
}

// AvailableSites returns every available site ID in ascending order.
func (m *Manager) AvailableSites() []int {
	var out []int
	for s := 1; s <= m.nSites; s++ {
		if m.IsAvailable(s) {
			out = append(out, s)
		}
	}
	sort.Ints(out)
	return out
}

// AllSites returns every site ID in ascending order.
func (m *Manager) AllSites() []int {
	out := make([]int, m.nSites)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// NumSites returns the configured number of sites.
func (m *Manager) NumSites() int { return m.nSites }

// NumVars returns the configured number of variables.
func (m *Manager) NumVars() int { return m.nVars }
