// Package router implements the available-copies-with-continuity routing
// rule that picks which site(s) serve a read or a write of a variable.
package router

import (
	"go.uber.org/zap"

	"recrec/pkg/site"
	"recrec/pkg/version"
)

// Router borrows read-only access to the site manager and version store; it
// owns neither (they are owned by the simulator, per the single-owner design
// note in the spec).
type Router struct {
	sites *site.Manager
	store *version.Store
	log   *zap.SugaredLogger
}

// New builds a Router over the given site manager and version store. log is
// tagged by the caller (component=router) and used for every selection
// decision.
func New(sites *site.Manager, store *version.Store, log *zap.SugaredLogger) *Router {
	return &Router{sites: sites, store: store, log: log}
}

// Read is the result of a successful SelectReadSite call.
type Read struct {
	Site int
	Ts   int
}

// SelectReadSite implements the available-copies rule with the continuity
// constraint for a read of variable i as of beginTs. Iteration over
// candidate sites is ascending, so the result is deterministic.
func (r *Router) SelectReadSite(i, beginTs int) (Read, bool) {
	candidates := []int{r.sites.HomeSite(i)}
	if r.sites.IsReplicated(i) {
		candidates = r.sites.AvailableSites()
	}
	for _, s := range candidates {
		if !r.sites.CanRead(s, i) {
			continue
		}
		v, ok := r.store.GetVersion(s, i, beginTs)
		if !ok {
			continue
		}
		if !r.sites.WasContinuouslyUp(s, v.Ts, beginTs) {
			continue
		}
		r.log.Debugw("selected read site", "variable", i, "begin_ts", beginTs, "site", s, "version_ts", v.Ts)
		return Read{Site: s, Ts: v.Ts}, true
	}
	r.log.Debugw("no eligible read site", "variable", i, "begin_ts", beginTs)
	return Read{}, false
}

// SelectWriteSites snapshots where a write of variable i would land right
// now: every currently available site holding i, for a replicated variable,
// or the home site alone (if available) for a non-replicated one.
func (r *Router) SelectWriteSites(i int) []int {
	if !r.sites.IsReplicated(i) {
		home := r.sites.HomeSite(i)
		if r.sites.IsAvailable(home) {
			return []int{home}
		}
		return nil
	}
	var out []int
	for _, s := range r.sites.AvailableSites() {
		if r.store.HasVariable(s, i) {
			out = append(out, s)
		}
	}
	return out
}

// SitesForVariable returns every site that physically holds variable i.
func (r *Router) SitesForVariable(i int) []int {
	if !r.sites.IsReplicated(i) {
		return []int{r.sites.HomeSite(i)}
	}
	var out []int
	for _, s := range r.sites.AllSites() {
		if r.store.HasVariable(s, i) {
			out = append(out, s)
		}
	}
	return out
}
