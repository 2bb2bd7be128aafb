// Package xmlir is the XML Loader and Instruction Builder (spec.md
// §4.1/§4.3, SPEC_FULL.md §4.10): it decodes an IPPcode23 program from
// XML into a sorted, validated []ipp.Instruction plus its resolved
// label table, ready for internal/ipp to execute. Grounded on the
// teacher VM's compile pipeline (vm/compile.go: a dedicated
// build-then-validate stage feeding the engine a ready-to-run
// program) but built on encoding/xml instead of a line-based
// assembler, since the source format here is XML, not text assembly.
package xmlir

import (
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"ipp23/internal/ipp"
	"ipp23/internal/ippcode/errs"
)

type xmlProgram struct {
	XMLName      xml.Name
	Language     string           `xml:"language,attr"`
	Name         string           `xml:"name,attr"`
	Description  string           `xml:"description,attr"`
	Instructions []xmlInstruction `xml:"instruction"`
}

type xmlInstruction struct {
	Order  string   `xml:"order,attr"`
	Opcode string   `xml:"opcode,attr"`
	Args   []xmlArg `xml:",any"`
}

type xmlArg struct {
	XMLName xml.Name
	Type    string `xml:"type,attr"`
	Text    string `xml:",chardata"`
}

// Load decodes and validates an IPPcode23 program, returning its
// instructions in execution order and the resolved label table. r's
// contents are read to completion before anything is validated.
func Load(r io.Reader) (ipp.Program, error) {
	var doc xmlProgram
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return ipp.Program{}, errs.XMLNotWellFormed.Wrap(errors.Wrap(err, "decoding program XML"))
	}

	if doc.XMLName.Local != "program" {
		return ipp.Program{}, errs.XMLStructure.Wrapf("root element is %q, want <program>", doc.XMLName.Local)
	}
	if doc.Language != "IPPcode23" {
		return ipp.Program{}, errs.XMLStructure.Wrapf("language attribute is %q, want IPPcode23", doc.Language)
	}

	instrs := make([]ipp.Instruction, 0, len(doc.Instructions))
	seenOrder := make(map[int]bool, len(doc.Instructions))

	for _, xi := range doc.Instructions {
		order, err := strconv.Atoi(xi.Order)
		if err != nil || order < 1 {
			return ipp.Program{}, errs.XMLStructure.Wrapf("instruction has invalid order %q", xi.Order)
		}
		if seenOrder[order] {
			return ipp.Program{}, errs.XMLStructure.Wrapf("duplicate instruction order %d", order)
		}
		seenOrder[order] = true

		op, ok := ipp.LookupOpcode(xi.Opcode, strings.ToUpper)
		if !ok {
			return ipp.Program{}, errs.XMLStructure.Wrapf("unknown opcode %q", xi.Opcode)
		}

		args, err := buildArgs(op, xi.Args)
		if err != nil {
			return ipp.Program{}, err
		}

		in := ipp.Instruction{Opcode: op, Order: order, NArgs: len(args)}
		copy(in.Args[:], args)
		instrs = append(instrs, in)
	}

	sort.Slice(instrs, func(i, j int) bool { return instrs[i].Order < instrs[j].Order })

	decodeEscapes(instrs)

	labels, err := ipp.BuildLabelTable(instrs)
	if err != nil {
		return ipp.Program{}, err
	}

	return ipp.Program{Instructions: instrs, Labels: labels}, nil
}

// buildArgs validates that an instruction's argument tags are exactly
// arg1..argN with no gaps or repeats, in any document order (spec.md §4.1: "every
// grandchild must be tagged arg1, arg2, or arg3"), and that the count
// matches the opcode's required arity.
func buildArgs(op ipp.Opcode, raw []xmlArg) ([]ipp.Argument, error) {
	want := op.ArgCount()
	if want < 0 {
		return nil, errs.XMLStructure.Wrapf("opcode %v has no known arity", op)
	}
	if len(raw) != want {
		return nil, errs.XMLStructure.Wrapf("opcode %v expects %d argument(s), got %d", op, want, len(raw))
	}

	out := make([]ipp.Argument, want)
	seen := make([]bool, want)
	for _, ra := range raw {
		slot, err := argSlot(ra.XMLName.Local, want)
		if err != nil {
			return nil, err
		}
		if seen[slot] {
			return nil, errs.XMLStructure.Wrapf("duplicate argument tag %q", ra.XMLName.Local)
		}
		seen[slot] = true
		typ, err := argType(ra.Type)
		if err != nil {
			return nil, err
		}
		out[slot] = ipp.Argument{Type: typ, Text: ra.Text, Order: slot + 1}
	}
	return out, nil
}

func argSlot(tag string, want int) (int, error) {
	switch tag {
	case "arg1":
		return 0, nil
	case "arg2":
		if want < 2 {
			return 0, errs.XMLStructure.Wrapf("unexpected arg2 on a %d-argument instruction", want)
		}
		return 1, nil
	case "arg3":
		if want < 3 {
			return 0, errs.XMLStructure.Wrapf("unexpected arg3 on a %d-argument instruction", want)
		}
		return 2, nil
	default:
		return 0, errs.XMLStructure.Wrapf("unexpected argument tag %q", tag)
	}
}

func argType(t string) (ipp.ArgType, error) {
	switch t {
	case "var":
		return ipp.ArgVar, nil
	case "label":
		return ipp.ArgLabel, nil
	case "type":
		return ipp.ArgTypeName, nil
	case "int":
		return ipp.ArgInt, nil
	case "string":
		return ipp.ArgString, nil
	case "bool":
		return ipp.ArgBool, nil
	case "nil":
		return ipp.ArgNil, nil
	default:
		return 0, errs.XMLStructure.Wrapf("unknown argument type %q", t)
	}
}
