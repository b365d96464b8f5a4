package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineSingleDirectives(t *testing.T) {
	cases := []struct {
		line string
		want Directive
	}{
		{"begin(T1)", Directive{Kind: Begin, Txn: "T1"}},
		{"end(T1)", Directive{Kind: End, Txn: "T1"}},
		{"R(T1,x3)", Directive{Kind: Read, Txn: "T1", Var: 3}},
		{"W(T1,x3,15)", Directive{Kind: Write, Txn: "T1", Var: 3, Value: 15}},
		{"W(T1,x3,-15)", Directive{Kind: Write, Txn: "T1", Var: 3, Value: -15}},
		{"fail(2)", Directive{Kind: Fail, Site: 2}},
		{"recover(2)", Directive{Kind: Recover, Site: 2}},
		{"dump()", Directive{Kind: DumpAll}},
		{"dump(x3)", Directive{Kind: DumpVariable, Var: 3}},
		{"dump(2)", Directive{Kind: DumpSite, Site: 2}},
		{"reset()", Directive{Kind: Reset}},
		{"status(T1)", Directive{Kind: Status, Txn: "T1"}},
	}
	for _, c := range cases {
		ds, ok := ParseLine(c.line)
		require.True(t, ok, c.line)
		require.Len(t, ds, 1, c.line)
		assert.Equal(t, c.want, ds[0], c.line)
	}
}

func TestParseLineMultipleDirectivesOnOneLine(t *testing.T) {
	ds, ok := ParseLine("begin(T1) R(T1,x1) W(T1,x1,5)")
	require.True(t, ok)
	require.Len(t, ds, 3)
	assert.Equal(t, Begin, ds[0].Kind)
	assert.Equal(t, Read, ds[1].Kind)
	assert.Equal(t, Write, ds[2].Kind)
}

func TestParseLineStripsComments(t *testing.T) {
	ds, ok := ParseLine("begin(T1) // starts T1")
	require.True(t, ok)
	require.Len(t, ds, 1)
	assert.Equal(t, Begin, ds[0].Kind)
}

func TestParseLineBlankOrCommentOnly(t *testing.T) {
	ds, ok := ParseLine("   ")
	assert.True(t, ok)
	assert.Empty(t, ds)

	ds, ok = ParseLine("// just a comment")
	assert.True(t, ok)
	assert.Empty(t, ds)
}

func TestParseLineRejectsGarbage(t *testing.T) {
	_, ok := ParseLine("this is not a directive")
	assert.False(t, ok)

	_, ok = ParseLine("begin(T1) garbage")
	assert.False(t, ok)
}
