package ipp

// ArgType is the lexical type tag an Argument carries from XML
// (spec.md §3). symb is a parse-time-only convenience and never
// appears once an Argument resolves to a literal or a var reference;
// the builder in internal/xmlir assigns one of the others directly
// since the XML itself never spells "symb".
type ArgType uint8

const (
	ArgVar ArgType = iota
	ArgLabel
	ArgTypeName // "type"-typed literal, e.g. TYPE's second operand spelling a type name
	ArgInt
	ArgString
	ArgBool
	ArgNil
)

// Argument is one operand captured verbatim from the XML, before any
// frame lookup (spec.md §3).
type Argument struct {
	Type  ArgType
	Text  string
	Order int
}

// Instruction is one ordered, opcode-tagged triple of Arguments
// (spec.md §3). NArgs is how many of Args[0:3] are populated; the
// loader guarantees NArgs == Opcode.ArgCount() before handing this to
// the engine.
type Instruction struct {
	Opcode Opcode
	Order  int
	Args   [3]Argument
	NArgs  int
}

// Program is the fully loaded, sorted, label-checked instruction
// sequence ready for execution.
type Program struct {
	Instructions []Instruction
	Labels       map[string]int
}
