package ipp

import (
	"strconv"
	"strings"

	"ipp23/internal/ippcode/errs"
)

// exec2 implements the "var symb" shape shared by MOVE/NOT/INT2CHAR/
// STRLEN: resolve the source symbol, resolve the destination variable,
// then let fn apply the opcode-specific type check and assignment.
// Symbol resolution happens before the destination lookup so a
// missing-value on the source is reported even if the destination
// itself is also malformed -- matching the teacher's left-to-right
// operand evaluation order.
func (vm *VM) exec2(in Instruction, fn func(dst *Variable, v Value) error) error {
	v, err := vm.resolveSymbol(in.Args[1])
	if err != nil {
		return err
	}
	dst, err := vm.resolveVar(in.Args[0])
	if err != nil {
		return err
	}
	return fn(dst, v)
}

// exec3 is exec2's three-argument sibling for "var symb symb" opcodes.
func (vm *VM) exec3(in Instruction, fn func(dst *Variable, a, b Value) error) error {
	a, err := vm.resolveSymbol(in.Args[1])
	if err != nil {
		return err
	}
	b, err := vm.resolveSymbol(in.Args[2])
	if err != nil {
		return err
	}
	dst, err := vm.resolveVar(in.Args[0])
	if err != nil {
		return err
	}
	return fn(dst, a, b)
}

// execType implements TYPE var symb (spec.md §4.6): never raises
// missing-value, since an unset source yields "" rather than an error.
func (vm *VM) execType(in Instruction) error {
	dst, err := vm.resolveVar(in.Args[0])
	if err != nil {
		return err
	}

	arg := in.Args[1]
	var name string
	if arg.Type == ArgVar {
		src, err := vm.resolveVar(arg)
		if err != nil {
			return err
		}
		name = src.Val.TypeName()
	} else {
		v, err := vm.resolveSymbol(arg)
		if err != nil {
			return err
		}
		name = v.TypeName()
	}
	dst.Val = StringValue(name)
	return nil
}

// execRead implements READ var type (spec.md §4.6).
func (vm *VM) execRead(in Instruction) error {
	dst, err := vm.resolveVar(in.Args[0])
	if err != nil {
		return err
	}
	wantType := in.Args[1].Text

	line, ok := vm.in.ReadLine()
	if !ok {
		dst.Val = NilValue()
		return nil
	}

	switch wantType {
	case "int":
		n, perr := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
		if perr != nil {
			dst.Val = NilValue()
		} else {
			dst.Val = IntValue(n)
		}
	case "bool":
		dst.Val = BoolValue(strings.EqualFold(strings.TrimSpace(line), "true"))
	case "string":
		dst.Val = StringValue(line)
	default:
		return errs.Internal.Wrapf("READ: unknown requested type %q", wantType)
	}
	return nil
}

// execArith implements ADD/SUB/MUL/IDIV (spec.md §4.6).
func (vm *VM) execArith(in Instruction) error {
	return vm.exec3(in, func(dst *Variable, a, b Value) error {
		if a.Kind != KindInt || b.Kind != KindInt {
			return errs.OperandType.Wrapf("%s: operands not int", in.Opcode)
		}
		switch in.Opcode {
		case OpAdd:
			dst.Val = IntValue(a.Int + b.Int)
		case OpSub:
			dst.Val = IntValue(a.Int - b.Int)
		case OpMul:
			dst.Val = IntValue(a.Int * b.Int)
		case OpIdiv:
			if b.Int == 0 {
				return errs.OperandValue.Wrapf("IDIV: division by zero")
			}
			dst.Val = IntValue(a.Int / b.Int) // Go's / truncates toward zero for ints
		}
		return nil
	})
}

// execOrder implements LT/GT (spec.md §4.6): same type required, nil
// disallowed on either side.
func (vm *VM) execOrder(in Instruction) error {
	return vm.exec3(in, func(dst *Variable, a, b Value) error {
		if a.Kind != b.Kind {
			return errs.OperandType.Wrapf("%s: operand types differ", in.Opcode)
		}
		if a.Kind == KindNil {
			return errs.OperandType.Wrapf("%s: nil operand not allowed", in.Opcode)
		}
		if in.Opcode == OpLt {
			dst.Val = BoolValue(a.Less(b))
		} else {
			dst.Val = BoolValue(b.Less(a))
		}
		return nil
	})
}

// execEq implements EQ (spec.md §4.6): nil is permitted on either or
// both sides.
func (vm *VM) execEq(in Instruction) error {
	return vm.exec3(in, func(dst *Variable, a, b Value) error {
		if a.Kind != KindNil && b.Kind != KindNil && a.Kind != b.Kind {
			return errs.OperandType.Wrapf("EQ: operand types differ")
		}
		dst.Val = BoolValue(a.Equal(b))
		return nil
	})
}

// execBoolOp implements AND/OR (spec.md §4.6).
func (vm *VM) execBoolOp(in Instruction) error {
	return vm.exec3(in, func(dst *Variable, a, b Value) error {
		if a.Kind != KindBool || b.Kind != KindBool {
			return errs.OperandType.Wrapf("%s: operands not bool", in.Opcode)
		}
		if in.Opcode == OpAnd {
			dst.Val = BoolValue(a.Bool && b.Bool)
		} else {
			dst.Val = BoolValue(a.Bool || b.Bool)
		}
		return nil
	})
}

// execStri2int implements STRI2INT var symb symb (spec.md §4.6).
func (vm *VM) execStri2int(in Instruction) error {
	return vm.exec3(in, func(dst *Variable, s, idx Value) error {
		if s.Kind != KindString || idx.Kind != KindInt {
			return errs.OperandType.Wrapf("STRI2INT: operand types wrong")
		}
		runes := []rune(s.Str)
		if idx.Int < 0 || idx.Int >= int64(len(runes)) {
			return errs.StringOp.Wrapf("STRI2INT: index %d out of range", idx.Int)
		}
		dst.Val = IntValue(int64(runes[idx.Int]))
		return nil
	})
}

// execGetchar implements GETCHAR var symb symb (spec.md §4.6).
func (vm *VM) execGetchar(in Instruction) error {
	return vm.exec3(in, func(dst *Variable, s, idx Value) error {
		if s.Kind != KindString || idx.Kind != KindInt {
			return errs.OperandType.Wrapf("GETCHAR: operand types wrong")
		}
		runes := []rune(s.Str)
		if idx.Int < 0 || idx.Int >= int64(len(runes)) {
			return errs.StringOp.Wrapf("GETCHAR: index %d out of range", idx.Int)
		}
		dst.Val = StringValue(string(runes[idx.Int]))
		return nil
	})
}

// execSetchar implements SETCHAR var symb symb (spec.md §4.6): the
// destination is read as well as written, so after resolving it as a
// *Variable its value must also be assigned (else missing-value).
func (vm *VM) execSetchar(in Instruction) error {
	idx, err := vm.resolveSymbol(in.Args[1])
	if err != nil {
		return err
	}
	repl, err := vm.resolveSymbol(in.Args[2])
	if err != nil {
		return err
	}
	dst, err := vm.resolveVar(in.Args[0])
	if err != nil {
		return err
	}
	if !dst.Val.IsAssigned() {
		return errs.MissingValue.Wrapf("SETCHAR: destination has no value")
	}
	if dst.Val.Kind != KindString || idx.Kind != KindInt || repl.Kind != KindString {
		return errs.OperandType.Wrapf("SETCHAR: operand types wrong")
	}
	runes := []rune(dst.Val.Str)
	if idx.Int < 0 || idx.Int >= int64(len(runes)) {
		return errs.StringOp.Wrapf("SETCHAR: index %d out of range", idx.Int)
	}
	replRunes := []rune(repl.Str)
	if len(replRunes) == 0 {
		return errs.StringOp.Wrapf("SETCHAR: replacement string is empty")
	}
	runes[idx.Int] = replRunes[0]
	dst.Val = StringValue(string(runes))
	return nil
}

// execJumpCmp implements JUMPIFEQ/JUMPIFNEQ's comparison half (spec.md
// §4.6); the caller resolves the jump itself.
func (vm *VM) execJumpCmp(in Instruction) (bool, error) {
	a, err := vm.resolveSymbol(in.Args[1])
	if err != nil {
		return false, err
	}
	b, err := vm.resolveSymbol(in.Args[2])
	if err != nil {
		return false, err
	}
	if a.Kind != KindNil && b.Kind != KindNil && a.Kind != b.Kind {
		return false, errs.OperandType.Wrapf("%s: operand types differ", in.Opcode)
	}
	eq := a.Equal(b)
	if in.Opcode == OpJumpifeq {
		return eq, nil
	}
	return !eq, nil
}
