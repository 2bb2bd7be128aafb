package ipp

import (
	"fmt"
	"strconv"

	"ipp23/internal/ioadapt"
	"ipp23/internal/ippcode/errs"
)

// VM is the execution engine: frames, the two stacks, the label
// table, the loaded program, the program counter, and the external
// collaborators it reads from / writes to. Grounded on the teacher
// VM's struct (register file + stack + pc + stdin/stdout) in
// vm/vm.go, with the register file replaced by Memory and the raw
// byte stack replaced by a typed Value stack.
type VM struct {
	mem   *Memory
	data  []Value
	calls []int

	prog Program
	pc   int

	executed int

	in  ioadapt.LineSource
	out ioadapt.Sink
	err ioadapt.Sink

	debug      bool
	breakpoint map[int]bool
}

// NewVM wires a loaded Program to its external collaborators. in, out
// and errOut are all used as given; errOut is the caller-supplied
// stderr sink that BREAK and DPRINT write to (spec.md §6).
func NewVM(prog Program, in ioadapt.LineSource, out, errOut ioadapt.Sink) *VM {
	return &VM{
		mem:        newMemory(),
		prog:       prog,
		in:         in,
		out:        out,
		err:        errOut,
		breakpoint: make(map[int]bool),
	}
}

// SetBreakpoints marks instruction indices (0-based, in execution
// order) at which RunDebug should stop even without an explicit BREAK
// instruction. Ambient debug-mode tooling, not part of the binding
// contract (SPEC_FULL.md §4.7).
func (vm *VM) SetBreakpoints(idx ...int) {
	for _, i := range idx {
		vm.breakpoint[i] = true
	}
}

// Run executes the program to completion (natural end of instruction
// list, EXIT, or an error). It returns nil on a clean EXIT 0 / falloff,
// or a *errs.CodedError otherwise.
func (vm *VM) Run() error {
	for vm.pc < len(vm.prog.Instructions) {
		in := vm.prog.Instructions[vm.pc]
		halt, err := vm.step(in)
		if err != nil {
			return err
		}
		if halt {
			return nil
		}
	}
	return nil
}

// step executes a single instruction and advances vm.pc unless the
// instruction redirected control flow itself (CALL/JUMP/RETURN/
// JUMPIFEQ/JUMPIFNEQ). halt reports whether EXIT 0 was hit; a non-zero
// EXIT comes back as a *errs.CodedError carrying its exit code.
func (vm *VM) step(in Instruction) (halt bool, err error) {
	next := vm.pc + 1
	vm.executed++

	switch in.Opcode {
	case OpLabel:
		// no-op at execution time (spec.md §4.6)

	case OpCreateframe:
		vm.mem.CreateFrame()

	case OpPushframe:
		err = vm.mem.PushFrame()

	case OpPopframe:
		err = vm.mem.PopFrame()

	case OpReturn:
		if len(vm.calls) == 0 {
			err = errs.MissingValue.Wrapf("RETURN: call stack is empty")
			break
		}
		next = vm.calls[len(vm.calls)-1]
		vm.calls = vm.calls[:len(vm.calls)-1]

	case OpBreak:
		vm.reportBreak()

	case OpDefvar:
		tag, name, perr := parseVarRef(in.Args[0].Text)
		if perr != nil {
			err = perr
			break
		}
		err = vm.mem.DefVar(tag, name)

	case OpPushs:
		var v Value
		v, err = vm.resolveSymbol(in.Args[0])
		if err == nil {
			vm.data = append(vm.data, v)
		}

	case OpPops:
		if len(vm.data) == 0 {
			err = errs.MissingValue.Wrapf("POPS: data stack is empty")
			break
		}
		v := vm.data[len(vm.data)-1]
		vm.data = vm.data[:len(vm.data)-1]
		var target *Variable
		target, err = vm.resolveVar(in.Args[0])
		if err == nil {
			target.Val = v
		}

	case OpCall:
		label := in.Args[0].Text
		target, ok := vm.prog.Labels[label]
		if !ok {
			err = errs.Semantics.Wrapf("CALL: undefined label %q", label)
			break
		}
		vm.calls = append(vm.calls, next)
		next = target

	case OpJump:
		label := in.Args[0].Text
		target, ok := vm.prog.Labels[label]
		if !ok {
			err = errs.Semantics.Wrapf("JUMP: undefined label %q", label)
			break
		}
		next = target

	case OpWrite:
		var v Value
		v, err = vm.resolveSymbol(in.Args[0])
		if err == nil {
			fmt.Fprint(vm.out, v.Render())
		}

	case OpDprint:
		var v Value
		v, err = vm.resolveSymbol(in.Args[0])
		if err == nil {
			fmt.Fprint(vm.err, v.Render())
		}

	case OpExit:
		var v Value
		v, err = vm.resolveSymbol(in.Args[0])
		if err != nil {
			break
		}
		if v.Kind != KindInt {
			err = errs.OperandType.Wrapf("EXIT: operand is not int")
			break
		}
		if v.Int < 0 || v.Int > 49 {
			err = errs.OperandValue.Wrapf("EXIT: %d out of range [0,49]", v.Int)
			break
		}
		if v.Int != 0 {
			err = errs.New(int(v.Int), fmt.Sprintf("program exited with code %d", v.Int))
			break
		}
		halt = true

	case OpMove:
		err = vm.exec2(in, func(dst *Variable, v Value) error {
			dst.Val = v
			return nil
		})

	case OpNot:
		err = vm.exec2(in, func(dst *Variable, v Value) error {
			if v.Kind != KindBool {
				return errs.OperandType.Wrapf("NOT: operand not bool")
			}
			dst.Val = BoolValue(!v.Bool)
			return nil
		})

	case OpInt2char:
		err = vm.exec2(in, func(dst *Variable, v Value) error {
			if v.Kind != KindInt {
				return errs.OperandType.Wrapf("INT2CHAR: operand not int")
			}
			if v.Int < 0 || v.Int > 0x10FFFF {
				return errs.StringOp.Wrapf("INT2CHAR: %d is not a valid code point", v.Int)
			}
			dst.Val = StringValue(string(rune(v.Int)))
			return nil
		})

	case OpStrlen:
		err = vm.exec2(in, func(dst *Variable, v Value) error {
			if v.Kind != KindString {
				return errs.OperandType.Wrapf("STRLEN: operand not string")
			}
			dst.Val = IntValue(int64(len([]rune(v.Str))))
			return nil
		})

	case OpType:
		err = vm.execType(in)

	case OpRead:
		err = vm.execRead(in)

	case OpAdd, OpSub, OpMul, OpIdiv:
		err = vm.execArith(in)

	case OpLt, OpGt:
		err = vm.execOrder(in)

	case OpEq:
		err = vm.execEq(in)

	case OpAnd, OpOr:
		err = vm.execBoolOp(in)

	case OpStri2int:
		err = vm.execStri2int(in)

	case OpConcat:
		err = vm.exec3(in, func(dst *Variable, a, b Value) error {
			if a.Kind != KindString || b.Kind != KindString {
				return errs.OperandType.Wrapf("CONCAT: operands not string")
			}
			dst.Val = StringValue(a.Str + b.Str)
			return nil
		})

	case OpGetchar:
		err = vm.execGetchar(in)

	case OpSetchar:
		err = vm.execSetchar(in)

	case OpJumpifeq, OpJumpifneq:
		var jump bool
		jump, err = vm.execJumpCmp(in)
		if err == nil && jump {
			label := in.Args[0].Text
			target, ok := vm.prog.Labels[label]
			if !ok {
				err = errs.Semantics.Wrapf("%s: undefined label %q", in.Opcode, label)
			} else {
				next = target
			}
		}

	default:
		err = errs.Internal.Wrapf("unimplemented opcode %v", in.Opcode)
	}

	if err != nil {
		return false, err
	}
	vm.pc = next
	return halt, nil
}

func (vm *VM) reportBreak() {
	fmt.Fprintf(vm.err, "BREAK at instruction %d (pc=%d): executed=%d, data-stack=%d, call-stack=%d\n",
		vm.prog.Instructions[vm.pc].Order, vm.pc, vm.executed, len(vm.data), len(vm.calls))
}

// resolveVar resolves a var-typed Argument to its *Variable, applying
// the frame-then-name precedence from spec.md §4.4.
func (vm *VM) resolveVar(arg Argument) (*Variable, error) {
	tag, name, err := parseVarRef(arg.Text)
	if err != nil {
		return nil, err
	}
	return vm.mem.Resolve(tag, name)
}

// resolveSymbol implements resolve_symbol (spec.md §4.4): a var
// argument must already be assigned; any other argument type is
// parsed as a literal.
func (vm *VM) resolveSymbol(arg Argument) (Value, error) {
	if arg.Type == ArgVar {
		v, err := vm.resolveVar(arg)
		if err != nil {
			return Value{}, err
		}
		if !v.Val.IsAssigned() {
			return Value{}, errs.MissingValue.Wrapf("variable %s has no value", arg.Text)
		}
		return v.Val, nil
	}

	switch arg.Type {
	case ArgInt:
		n, err := strconv.ParseInt(arg.Text, 10, 64)
		if err != nil {
			return Value{}, errs.OperandType.Wrapf("invalid int literal %q", arg.Text)
		}
		return IntValue(n), nil
	case ArgBool:
		switch arg.Text {
		case "true":
			return BoolValue(true), nil
		case "false":
			return BoolValue(false), nil
		default:
			return Value{}, errs.OperandType.Wrapf("invalid bool literal %q", arg.Text)
		}
	case ArgNil:
		if arg.Text != "nil" {
			return Value{}, errs.OperandType.Wrapf("invalid nil literal %q", arg.Text)
		}
		return NilValue(), nil
	case ArgString:
		return StringValue(arg.Text), nil
	default:
		return Value{}, errs.Internal.Wrapf("cannot resolve argument of type %v as a symbol", arg.Type)
	}
}
