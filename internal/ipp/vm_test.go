package ipp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipp23/internal/ippcode/errs"
)

// fakeLineSource feeds a fixed slice of lines, then reports EOF.
type fakeLineSource struct {
	lines []string
	pos   int
}

func (f *fakeLineSource) ReadLine() (string, bool) {
	if f.pos >= len(f.lines) {
		return "", false
	}
	l := f.lines[f.pos]
	f.pos++
	return l, true
}

func varArg(ref string) Argument    { return Argument{Type: ArgVar, Text: ref} }
func labelArg(l string) Argument    { return Argument{Type: ArgLabel, Text: l} }
func intArg(text string) Argument   { return Argument{Type: ArgInt, Text: text} }
func strArg(text string) Argument   { return Argument{Type: ArgString, Text: text} }
func boolArg(text string) Argument  { return Argument{Type: ArgBool, Text: text} }
func nilArg() Argument              { return Argument{Type: ArgNil, Text: "nil"} }

func ins(op Opcode, order int, args ...Argument) Instruction {
	in := Instruction{Opcode: op, Order: order, NArgs: len(args)}
	copy(in.Args[:], args)
	return in
}

func newTestVM(t *testing.T, instrs []Instruction, in []string) (*VM, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	labels, err := BuildLabelTable(instrs)
	require.NoError(t, err)
	prog := Program{Instructions: instrs, Labels: labels}

	var out, errOut bytes.Buffer
	vm := NewVM(prog, &fakeLineSource{lines: in}, &out, &errOut)
	return vm, &out, &errOut
}

func TestHelloWorldScenario(t *testing.T) {
	instrs := []Instruction{
		ins(OpDefvar, 1, varArg("GF@s")),
		ins(OpMove, 2, varArg("GF@s"), strArg("Hello world")),
		ins(OpWrite, 3, varArg("GF@s")),
	}
	vm, out, _ := newTestVM(t, instrs, nil)
	require.NoError(t, vm.Run())
	assert.Equal(t, "Hello world", out.String())
}

func TestArithmeticScenario(t *testing.T) {
	instrs := []Instruction{
		ins(OpDefvar, 1, varArg("GF@a")),
		ins(OpMove, 2, varArg("GF@a"), intArg("7")),
		ins(OpDefvar, 3, varArg("GF@b")),
		ins(OpMove, 4, varArg("GF@b"), intArg("3")),
		ins(OpDefvar, 5, varArg("GF@c")),
		ins(OpIdiv, 6, varArg("GF@c"), varArg("GF@a"), varArg("GF@b")),
		ins(OpWrite, 7, varArg("GF@c")),
	}
	vm, out, _ := newTestVM(t, instrs, nil)
	require.NoError(t, vm.Run())
	assert.Equal(t, "2", out.String())
}

func TestIdivByZero(t *testing.T) {
	instrs := []Instruction{
		ins(OpDefvar, 1, varArg("GF@z")),
		ins(OpMove, 2, varArg("GF@z"), intArg("0")),
		ins(OpDefvar, 3, varArg("GF@r")),
		ins(OpIdiv, 4, varArg("GF@r"), intArg("1"), varArg("GF@z")),
	}
	vm, _, _ := newTestVM(t, instrs, nil)
	err := vm.Run()
	assert.Equal(t, errs.OperandValue.Code(), errs.ExitCode(err))
}

func TestIdivTruncatesTowardZero(t *testing.T) {
	instrs := []Instruction{
		ins(OpDefvar, 1, varArg("GF@r")),
		ins(OpIdiv, 2, varArg("GF@r"), intArg("-7"), intArg("2")),
		ins(OpWrite, 3, varArg("GF@r")),
	}
	vm, out, _ := newTestVM(t, instrs, nil)
	require.NoError(t, vm.Run())
	assert.Equal(t, "-3", out.String())
}

func TestExitOutOfRange(t *testing.T) {
	instrs := []Instruction{ins(OpExit, 1, intArg("50"))}
	vm, _, _ := newTestVM(t, instrs, nil)
	err := vm.Run()
	assert.Equal(t, errs.OperandValue.Code(), errs.ExitCode(err))

	instrs = []Instruction{ins(OpExit, 1, intArg("-1"))}
	vm, _, _ = newTestVM(t, instrs, nil)
	err = vm.Run()
	assert.Equal(t, errs.OperandValue.Code(), errs.ExitCode(err))
}

func TestExitZeroHalts(t *testing.T) {
	instrs := []Instruction{
		ins(OpExit, 1, intArg("0")),
		ins(OpDefvar, 2, varArg("GF@never")), // unreachable
	}
	vm, _, _ := newTestVM(t, instrs, nil)
	assert.NoError(t, vm.Run())
}

func TestWriteOfUnsetVarIsMissingValue(t *testing.T) {
	instrs := []Instruction{
		ins(OpDefvar, 1, varArg("GF@x")),
		ins(OpWrite, 2, varArg("GF@x")),
	}
	vm, _, _ := newTestVM(t, instrs, nil)
	err := vm.Run()
	assert.Equal(t, errs.MissingValue.Code(), errs.ExitCode(err))
}

func TestTypeNeverFailsOnUnset(t *testing.T) {
	instrs := []Instruction{
		ins(OpDefvar, 1, varArg("GF@x")),
		ins(OpDefvar, 2, varArg("GF@t")),
		ins(OpType, 3, varArg("GF@t"), varArg("GF@x")),
		ins(OpWrite, 4, varArg("GF@t")),
	}
	vm, out, _ := newTestVM(t, instrs, nil)
	require.NoError(t, vm.Run())
	assert.Equal(t, "", out.String())
}

func TestPushsPopsRoundTrip(t *testing.T) {
	instrs := []Instruction{
		ins(OpDefvar, 1, varArg("GF@y")),
		ins(OpPushs, 2, intArg("99")),
		ins(OpPops, 3, varArg("GF@y")),
		ins(OpWrite, 4, varArg("GF@y")),
	}
	vm, out, _ := newTestVM(t, instrs, nil)
	require.NoError(t, vm.Run())
	assert.Equal(t, "99", out.String())
	assert.Empty(t, vm.data)
}

func TestPopsOnEmptyStackIsMissingValue(t *testing.T) {
	instrs := []Instruction{
		ins(OpDefvar, 1, varArg("GF@y")),
		ins(OpPops, 2, varArg("GF@y")),
	}
	vm, _, _ := newTestVM(t, instrs, nil)
	err := vm.Run()
	assert.Equal(t, errs.MissingValue.Code(), errs.ExitCode(err))
}

func TestCreateFramePushPopRestoresTemporaryFrame(t *testing.T) {
	instrs := []Instruction{
		ins(OpCreateframe, 1),
		ins(OpDefvar, 2, varArg("TF@a")),
		ins(OpPushframe, 3),
		ins(OpPopframe, 4),
		ins(OpDefvar, 5, varArg("TF@b")),
	}
	vm, _, _ := newTestVM(t, instrs, nil)
	assert.NoError(t, vm.Run())
}

func TestCallReturn(t *testing.T) {
	instrs := []Instruction{
		ins(OpDefvar, 1, varArg("GF@r")),
		ins(OpMove, 2, varArg("GF@r"), strArg("before")),
		ins(OpCall, 3, labelArg("sub")),
		ins(OpWrite, 4, varArg("GF@r")),
		ins(OpExit, 5, intArg("0")),
		ins(OpLabel, 6, labelArg("sub")),
		ins(OpMove, 7, varArg("GF@r"), strArg("after")),
		ins(OpReturn, 8),
	}
	vm, out, _ := newTestVM(t, instrs, nil)
	require.NoError(t, vm.Run())
	assert.Equal(t, "after", out.String())
}

func TestReturnWithEmptyCallStackIsMissingValue(t *testing.T) {
	instrs := []Instruction{ins(OpReturn, 1)}
	vm, _, _ := newTestVM(t, instrs, nil)
	err := vm.Run()
	assert.Equal(t, errs.MissingValue.Code(), errs.ExitCode(err))
}

func TestGetcharAndStri2intOutOfRange(t *testing.T) {
	instrs := []Instruction{
		ins(OpDefvar, 1, varArg("GF@r")),
		ins(OpGetchar, 2, varArg("GF@r"), strArg(""), intArg("0")),
	}
	vm, _, _ := newTestVM(t, instrs, nil)
	err := vm.Run()
	assert.Equal(t, errs.StringOp.Code(), errs.ExitCode(err))

	instrs = []Instruction{
		ins(OpDefvar, 1, varArg("GF@r")),
		ins(OpStri2int, 2, varArg("GF@r"), strArg("abc"), intArg("3")),
	}
	vm, _, _ = newTestVM(t, instrs, nil)
	err = vm.Run()
	assert.Equal(t, errs.StringOp.Code(), errs.ExitCode(err))
}

func TestSetchar(t *testing.T) {
	instrs := []Instruction{
		ins(OpDefvar, 1, varArg("GF@s")),
		ins(OpMove, 2, varArg("GF@s"), strArg("cat")),
		ins(OpSetchar, 3, varArg("GF@s"), intArg("0"), strArg("b")),
		ins(OpWrite, 4, varArg("GF@s")),
	}
	vm, out, _ := newTestVM(t, instrs, nil)
	require.NoError(t, vm.Run())
	assert.Equal(t, "bat", out.String())
}

func TestReadIntAndEOFYieldsNil(t *testing.T) {
	instrs := []Instruction{
		ins(OpDefvar, 1, varArg("GF@a")),
		ins(OpRead, 2, varArg("GF@a"), Argument{Type: ArgTypeName, Text: "int"}),
		ins(OpWrite, 3, varArg("GF@a")),
		ins(OpDefvar, 4, varArg("GF@b")),
		ins(OpRead, 5, varArg("GF@b"), Argument{Type: ArgTypeName, Text: "int"}),
		ins(OpType, 6, varArg("GF@b"), varArg("GF@b")),
		ins(OpWrite, 7, varArg("GF@b")),
	}
	vm, out, _ := newTestVM(t, instrs, []string{"42"})
	require.NoError(t, vm.Run())
	assert.Equal(t, "42nil", out.String())
}

func TestJumpifeqAndJumpifneq(t *testing.T) {
	instrs := []Instruction{
		ins(OpDefvar, 1, varArg("GF@r")),
		ins(OpMove, 2, varArg("GF@r"), strArg("start")),
		ins(OpJumpifeq, 3, labelArg("eq"), intArg("1"), intArg("1")),
		ins(OpMove, 4, varArg("GF@r"), strArg("skipped")),
		ins(OpLabel, 5, labelArg("eq")),
		ins(OpJumpifneq, 6, labelArg("end"), nilArg(), intArg("1")),
		ins(OpMove, 7, varArg("GF@r"), strArg("never")),
		ins(OpLabel, 8, labelArg("end")),
		ins(OpWrite, 9, varArg("GF@r")),
	}
	vm, out, _ := newTestVM(t, instrs, nil)
	require.NoError(t, vm.Run())
	assert.Equal(t, "start", out.String())
}

func TestUndefinedLabelIsSemanticsError(t *testing.T) {
	instrs := []Instruction{ins(OpJump, 1, labelArg("nowhere"))}
	_, err := BuildLabelTable(instrs)
	assert.Equal(t, errs.Semantics.Code(), errs.ExitCode(err))
}

func TestDuplicateLabelIsSemanticsError(t *testing.T) {
	instrs := []Instruction{
		ins(OpLabel, 1, labelArg("l")),
		ins(OpLabel, 2, labelArg("l")),
	}
	_, err := BuildLabelTable(instrs)
	assert.Equal(t, errs.Semantics.Code(), errs.ExitCode(err))
}
