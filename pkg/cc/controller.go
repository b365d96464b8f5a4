// Package cc implements the concurrency controller: first-committer-wins
// validation and a serialization graph (WR/WW/RW edges) with cycle
// detection, per §4.5.
package cc

import (
	"fmt"

	"github.com/tidwall/btree"
	"go.uber.org/zap"

	"recrec/pkg/txn"
)

type lastWrite struct {
	txID     string
	commitTs int
}

// Controller owns the last-writer table, per-transaction write history, the
// reverse reader index, and the serialization graph.
type Controller struct {
	lastWriter      map[int]lastWrite            // variable -> last committer
	writeHistory    map[string]map[int]int       // tx -> variable -> commitTs
	committedWriter map[int]map[int]string       // variable -> commitTs -> tx
	readersOf       map[int]*btree.Set[string]    // variable -> still-live readers
	graph           map[string]*btree.Set[string] // tx -> outgoing edges
	log             *zap.SugaredLogger
}

// New returns an empty concurrency controller. log is tagged by the caller
// (component=cc) and used for every FCW/cycle decision.
func New(log *zap.SugaredLogger) *Controller {
	return &Controller{
		lastWriter:      make(map[int]lastWrite),
		writeHistory:    make(map[string]map[int]int),
		committedWriter: make(map[int]map[int]string),
		readersOf:       make(map[int]*btree.Set[string]),
		graph:           make(map[string]*btree.Set[string]),
		log:             log,
	}
}

// RegisterTransaction ensures a serialization-graph node exists for t.
func (c *Controller) RegisterTransaction(id string) {
	c.ensureNode(id)
	if _, ok := c.writeHistory[id]; !ok {
		c.writeHistory[id] = make(map[int]int)
	}
}

func (c *Controller) ensureNode(id string) *btree.Set[string] {
	n, ok := c.graph[id]
	if !ok {
		n = &btree.Set[string]{}
		c.graph[id] = n
	}
	return n
}

func (c *Controller) addEdge(from, to string) {
	c.ensureNode(from).Insert(to)
	c.ensureNode(to)
}

// RecordRead notes that transaction t read variable i at versionTs, adding a
// WR edge from the version's writer to t if that writer is a different,
// still-live transaction.
func (c *Controller) RecordRead(t *txn.Transaction, i, versionTs int) {
	readers, ok := c.readersOf[i]
	if !ok {
		readers = &btree.Set[string]{}
		c.readersOf[i] = readers
	}
	readers.Insert(t.ID)

	if byVar, ok := c.committedWriter[i]; ok {
		if writer, ok := byVar[versionTs]; ok && writer != t.ID {
			c.addEdge(writer, t.ID)
		}
	}
}

// CheckFCW enforces first-committer-wins: for every variable t intends to
// write, if a transaction already committed a write to it after t began, t
// must abort. Variables are checked in ascending order for a deterministic
// reason string.
func (c *Controller) CheckFCW(t *txn.Transaction) (ok bool, reason string) {
	ok = true
	t.WriteSet.Scan(func(i int, _ txn.WriteEntry) bool {
		lw, exists := c.lastWriter[i]
		if exists && lw.commitTs > t.BeginTs {
			ok = false
			reason = fmt.Sprintf("First-committer-wins conflict on x%d with %s", i, lw.txID)
			return false
		}
		return true
	})
	if !ok {
		c.log.Debugw("FCW rejected", "txn", t.ID, "reason", reason)
	}
	return ok, reason
}

// CheckSerializable adds WW edges (prior committer -> t) and RW edges (prior
// reader -> t) for every variable t writes, then runs cycle detection
// rooted at t — any new cycle must pass through the node whose edges just
// changed.
func (c *Controller) CheckSerializable(t *txn.Transaction) (ok bool, reason string) {
	t.WriteSet.Scan(func(i int, _ txn.WriteEntry) bool {
		if lw, exists := c.lastWriter[i]; exists && lw.txID != t.ID {
			c.addEdge(lw.txID, t.ID)
		}
		if readers, exists := c.readersOf[i]; exists {
			readers.Scan(func(reader string) bool {
				if reader != t.ID {
					c.addEdge(reader, t.ID)
				}
				return true
			})
		}
		return true
	})

	if c.hasCycleFrom(t.ID) {
		c.log.Debugw("serialization cycle detected", "txn", t.ID)
		return false, "Serialization cycle detected"
	}
	return true, ""
}

func (c *Controller) hasCycleFrom(start string) bool {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var visit func(node string) bool
	visit = func(node string) bool {
		visited[node] = true
		onStack[node] = true
		found := false
		if edges, ok := c.graph[node]; ok {
			edges.Scan(func(next string) bool {
				if onStack[next] {
					found = true
					return false
				}
				if !visited[next] && visit(next) {
					found = true
					return false
				}
				return true
			})
		}
		onStack[node] = false
		return found
	}
	return visit(start)
}

// Commit records t's commit: last-writer and write-history entries are
// updated for every variable t wrote.
func (c *Controller) Commit(t *txn.Transaction, commitTs int) {
	t.WriteSet.Scan(func(i int, _ txn.WriteEntry) bool {
		c.lastWriter[i] = lastWrite{txID: t.ID, commitTs: commitTs}
		c.writeHistory[t.ID][i] = commitTs
		byVar, ok := c.committedWriter[i]
		if !ok {
			byVar = make(map[int]string)
			c.committedWriter[i] = byVar
		}
		byVar[commitTs] = t.ID
		return true
	})
	c.log.Debugw("commit recorded", "txn", t.ID, "commit_ts", commitTs)
}

// Abort purges t's node (and inbound edges to it) from the graph and drops
// its read/write history, so it can never poison a future cycle check.
func (c *Controller) Abort(t *txn.Transaction) {
	delete(c.graph, t.ID)
	for _, edges := range c.graph {
		edges.Delete(t.ID)
	}
	delete(c.writeHistory, t.ID)
	t.ReadSet.Scan(func(i int, _ txn.ReadEntry) bool {
		if readers, ok := c.readersOf[i]; ok {
			readers.Delete(t.ID)
		}
		return true
	})
	c.log.Debugw("node purged", "txn", t.ID)
}
