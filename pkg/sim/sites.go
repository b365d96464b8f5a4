package sim

import (
	"fmt"
	"io"

	"recrec/pkg/txn"
)

// Fail transitions site s to Failed and synchronously aborts every Active
// transaction that has touched it, per §4.4 handle_site_failure. Aborts are
// reported in ascending transaction-ID order for determinism.
func (s *Simulator) Fail(w io.Writer, site int) {
	s.sites.Fail(site, s.now)
	for _, id := range s.sortedTxnIDs() {
		t := s.txns[id]
		if t.Status != txn.Active {
			continue
		}
		if t.TouchedSites.Contains(site) {
			s.abort(w, t, fmt.Sprintf("site %d failed", site))
		}
	}
	s.now++
}

// Recover transitions site s out of Failed, per §4.2.
func (s *Simulator) Recover(w io.Writer, site int) {
	s.sites.Recover(site, s.now)
	s.now++
}
