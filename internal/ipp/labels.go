package ipp

import "ipp23/internal/ippcode/errs"

// BuildLabelTable implements the Label Table Builder (spec.md §4.3):
// a single forward pass records each LABEL's name against its
// instruction index, rejecting a redefinition; a second pass confirms
// every label-typed argument used elsewhere resolves against the
// table.
func BuildLabelTable(instrs []Instruction) (map[string]int, error) {
	labels := make(map[string]int)
	for i, in := range instrs {
		if in.Opcode != OpLabel {
			continue
		}
		name := in.Args[0].Text
		if _, dup := labels[name]; dup {
			return nil, errs.Semantics.Wrapf("label %s redefined at instruction %d", name, i)
		}
		labels[name] = i
	}

	for i, in := range instrs {
		if in.Opcode == OpLabel {
			continue
		}
		for a := 0; a < in.NArgs; a++ {
			if in.Args[a].Type != ArgLabel {
				continue
			}
			if _, ok := labels[in.Args[a].Text]; !ok {
				return nil, errs.Semantics.Wrapf("undefined label %q referenced at instruction %d", in.Args[a].Text, i)
			}
		}
	}

	return labels, nil
}
