package ipp

import (
	"strings"

	"ipp23/internal/ippcode/errs"
)

// parseVarRef splits "FRAME@name" into its tag and bare name (spec.md
// §6: "Variable reference syntax: FRAME@name where FRAME ∈ {GF, LF,
// TF}"). The name's character class is not checked, neither here nor
// in internal/xmlir; apart from containing no '@' it is trusted
// verbatim. Both failure modes are
// reachable from malformed-but-well-typed input, not interpreter bugs,
// so they are classified rather than treated as internal errors --
// mirroring variable_check_and_return in the original reference
// (split into other than 2 parts -> wrong operand type; unrecognized
// frame tag -> semantic error).
func parseVarRef(ref string) (FrameTag, string, error) {
	idx := strings.IndexByte(ref, '@')
	if idx < 0 || strings.IndexByte(ref[idx+1:], '@') >= 0 {
		return 0, "", errs.OperandType.Wrapf("malformed variable reference %q", ref)
	}
	name := ref[idx+1:]
	switch ref[:idx] {
	case "GF":
		return FrameGlobal, name, nil
	case "TF":
		return FrameTemporary, name, nil
	case "LF":
		return FrameLocal, name, nil
	default:
		return 0, "", errs.Semantics.Wrapf("unknown frame tag in %q", ref)
	}
}
