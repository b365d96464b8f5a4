package sim

import (
	"fmt"
	"io"
	"strings"
)

// DumpAll implements dump(): one line per variable whose current value
// differs from its initial value 10*i, plus a terminal summary line.
func (s *Simulator) DumpAll(w io.Writer) {
	changed := 0
	for i := 1; i <= s.cfg.NVars; i++ {
		value, siteID, ok := s.representativeValue(i)
		if !ok || value == 10*i {
			continue
		}
		changed++
		if s.sites.IsReplicated(i) {
			fmt.Fprintf(w, "x%d: %d at all sites\n", i, value)
		} else {
			fmt.Fprintf(w, "x%d: %d at site %d\n", i, value, siteID)
		}
	}
	if changed > 0 {
		fmt.Fprintln(w, "All other variables have their initial values.")
	} else {
		fmt.Fprintln(w, "All variables have their initial values.")
	}
}

// DumpVariable implements dump(xN): every site's current value of variable i.
func (s *Simulator) DumpVariable(w io.Writer, i int) {
	sites := s.router.SitesForVariable(i)
	if !s.sites.IsReplicated(i) {
		if len(sites) == 0 {
			return
		}
		v, _ := s.store.GetLatest(sites[0], i)
		fmt.Fprintf(w, "x%d: %d at site %d\n", i, v.Value, sites[0])
		return
	}

	parts := make([]string, 0, len(sites))
	for _, siteID := range sites {
		v, ok := s.store.GetLatest(siteID, i)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d at site %d", v.Value, siteID))
	}
	fmt.Fprintf(w, "x%d: %s\n", i, strings.Join(parts, ", "))
}

// DumpSite implements dump(S): every variable site holds, ascending.
func (s *Simulator) DumpSite(w io.Writer, site int) {
	for _, i := range s.store.AllVariables(site) {
		v, ok := s.store.GetLatest(site, i)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "x%d: %d\n", i, v.Value)
	}
}

// representativeValue returns the value to show for variable i in dump(),
// taken from the first site (ascending) that still holds a version of it,
// along with that site's ID (meaningful only for non-replicated variables).
func (s *Simulator) representativeValue(i int) (value, siteID int, ok bool) {
	for _, site := range s.router.SitesForVariable(i) {
		if v, has := s.store.GetLatest(site, i); has {
			return v.Value, site, true
		}
	}
	return 0, 0, false
}
