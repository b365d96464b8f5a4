// Package directive defines the typed directive stream the driver consumes,
// and the parser that turns directive-grammar lines into it (§6).
package directive

// Kind identifies which directive a Directive carries.
type Kind int

const (
	Begin Kind = iota
	End
	Read
	Write
	Fail
	Recover
	DumpAll
	DumpVariable
	DumpSite
	Reset
	Status
)

// Directive is one parsed line of the scripted transcript. Only the fields
// relevant to Kind are meaningful.
type Directive struct {
	Kind  Kind
	Txn   string
	Site  int
	Var   int
	Value int
}
