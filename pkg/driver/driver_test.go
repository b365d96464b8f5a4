package driver

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recrec/pkg/config"
)

func run(t *testing.T, input string) string {
	t.Helper()
	cfg := &config.Config{NSites: 10, NVars: 20, LogLevel: "info"}
	var out bytes.Buffer
	_, err := Run(strings.NewReader(input), &out, cfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	return out.String()
}

func TestImplicitDumpAtEndOfSegment(t *testing.T) {
	out := run(t, "begin(T1)\nend(T1)\n")
	assert.Contains(t, out, "All variables have their initial values.")
}

func TestExplicitDumpSuppressesImplicitOne(t *testing.T) {
	out := run(t, "dump()\n")
	assert.Equal(t, 1, strings.Count(out, "initial values"))
}

func TestUnparseableLineEmitsWarning(t *testing.T) {
	out := run(t, "this is nonsense\n")
	assert.Contains(t, out, "Warning: Could not parse line: this is nonsense")
}

func TestTestMarkersSegmentIntoIndependentRuns(t *testing.T) {
	input := "// Test 1\n" +
		"begin(T1)\n" +
		"W(T1,x1,500)\n" +
		"end(T1)\n" +
		"// Test 2\n" +
		"dump(x1)\n"
	out := run(t, input)

	assert.Contains(t, out, "TEST 1")
	assert.Contains(t, out, "TEST 2")
	// the second segment runs against a fresh simulator, so x1 is back at
	// its initial value of 10.
	idx := strings.Index(out, "TEST 2")
	require.GreaterOrEqual(t, idx, 0)
	assert.Contains(t, out[idx:], "x1: 10")
}

func TestUnlabeledInputHasNoBanner(t *testing.T) {
	out := run(t, "dump()\n")
	assert.NotContains(t, out, "TEST")
}
