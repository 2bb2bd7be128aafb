package ipp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ipp23/internal/ippcode/errs"
)

func TestDefVarAndResolve(t *testing.T) {
	m := newMemory()
	assert.NoError(t, m.DefVar(FrameGlobal, "x"))

	v, err := m.Resolve(FrameGlobal, "x")
	assert.NoError(t, err)
	assert.False(t, v.Val.IsAssigned())

	v.Val = IntValue(10)
	v2, err := m.Resolve(FrameGlobal, "x")
	assert.NoError(t, err)
	assert.Equal(t, int64(10), v2.Val.Int)
}

func TestDefVarRedefinitionIsSemanticError(t *testing.T) {
	m := newMemory()
	assert.NoError(t, m.DefVar(FrameGlobal, "x"))
	err := m.DefVar(FrameGlobal, "x")
	assert.Error(t, err)
	assert.Equal(t, errs.Semantics.Code(), errs.ExitCode(err))
}

func TestResolveUndefinedVariable(t *testing.T) {
	m := newMemory()
	_, err := m.Resolve(FrameGlobal, "missing")
	assert.Equal(t, errs.UndefinedVar.Code(), errs.ExitCode(err))
}

func TestFrameLifecycle(t *testing.T) {
	m := newMemory()

	// PUSHFRAME with no TF is an error.
	err := m.PushFrame()
	assert.Equal(t, errs.FrameNotExists.Code(), errs.ExitCode(err))

	// POPFRAME on an empty local stack is an error.
	err = m.PopFrame()
	assert.Equal(t, errs.FrameNotExists.Code(), errs.ExitCode(err))

	m.CreateFrame()
	assert.NoError(t, m.DefVar(FrameTemporary, "t"))

	assert.NoError(t, m.PushFrame())
	// TF is absent again.
	_, err = m.frameFor(FrameTemporary)
	assert.Equal(t, errs.FrameNotExists.Code(), errs.ExitCode(err))

	assert.NoError(t, m.PopFrame())
	v, err := m.Resolve(FrameTemporary, "t")
	assert.NoError(t, err)
	assert.False(t, v.Val.IsAssigned())
}

func TestFrameNotExistsPrecedesVariableNotExists(t *testing.T) {
	m := newMemory()
	// LF is not present at all: must fail frame-not-exists, not
	// variable-not-defined, per the error precedence rule.
	_, err := m.Resolve(FrameLocal, "whatever")
	assert.Equal(t, errs.FrameNotExists.Code(), errs.ExitCode(err))
}
