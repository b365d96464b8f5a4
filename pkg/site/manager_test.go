package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(nSites, nVars int) *Manager {
	return NewManager(nSites, nVars, zap.NewNop().Sugar())
}

func TestPlacementRule(t *testing.T) {
	m := newTestManager(10, 20)
	assert.True(t, m.IsReplicated(2))
	assert.False(t, m.IsReplicated(1))
	assert.Equal(t, 1, m.HomeSite(1))  // 1 + ((1-1) % 10)
	assert.Equal(t, 1, m.HomeSite(11)) // 1 + ((11-1) % 10)
}

func TestHeldVariablesIncludesReplicatedAndHome(t *testing.T) {
	m := newTestManager(10, 20)
	held := m.HeldVariables(1)
	assert.Contains(t, held, 1) // home site of x1
	for _, v := range held {
		if !m.IsReplicated(v) {
			assert.Equal(t, 1, m.HomeSite(v))
		}
	}
}

func TestFailAndRecoverLifecycle(t *testing.T) {
	m := newTestManager(10, 20)
	require.True(t, m.IsAvailable(1))

	m.Fail(1, 5)
	assert.Equal(t, Failed, m.State(1))
	assert.False(t, m.IsAvailable(1))

	m.Recover(1, 10)
	assert.Equal(t, Recovering, m.State(1))
	assert.True(t, m.IsAvailable(1), "Recovering sites are available, just read-restricted")

	// replicated variable reads are disabled until a fresh version lands
	for _, v := range m.HeldVariables(1) {
		if m.IsReplicated(v) {
			assert.False(t, m.CanRead(1, v))
		}
	}
}

func TestEnableReplicatedReadTransitionsRecoveringToUp(t *testing.T) {
	m := newTestManager(1, 2) // site 1 holds both x1 (home) and x2 (replicated)
	m.Fail(1, 1)
	m.Recover(1, 2)
	require.Equal(t, Recovering, m.State(1))

	m.EnableReplicatedRead(1, 2)
	assert.Equal(t, Up, m.State(1))
}

func TestCanReadNonReplicatedDuringRecovering(t *testing.T) {
	m := newTestManager(10, 20)
	m.Fail(1, 1)
	m.Recover(1, 2)
	// x1's home site is site 1 (non-replicated); recovering sites can still
	// serve reads of their non-replicated variables immediately.
	assert.True(t, m.CanRead(1, 1))
}

func TestWasContinuouslyUp(t *testing.T) {
	m := newTestManager(1, 2)
	assert.True(t, m.WasContinuouslyUp(1, 0, 10))

	m.Fail(1, 5)
	assert.False(t, m.WasContinuouslyUp(1, 0, 10))
	assert.True(t, m.WasContinuouslyUp(1, 0, 4))
}

func TestAvailableSitesExcludesFailed(t *testing.T) {
	m := newTestManager(3, 2)
	m.Fail(2, 1)
	assert.Equal(t, []int{1, 3}, m.AvailableSites())
}
