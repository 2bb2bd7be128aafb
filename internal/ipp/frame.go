package ipp

import (
	"ipp23/internal/ippcode/errs"
)

// FrameTag identifies which of the three memories a variable name
// belongs to (spec.md §3: GF, TF, LF).
type FrameTag uint8

const (
	FrameGlobal FrameTag = iota
	FrameTemporary
	FrameLocal
)

func (t FrameTag) String() string {
	switch t {
	case FrameGlobal:
		return "GF"
	case FrameTemporary:
		return "TF"
	case FrameLocal:
		return "LF"
	default:
		return "?F"
	}
}

// Frame is a flat namespace of declared variables. A nil *Frame means
// "does not exist" for TF/LF, distinct from an allocated-but-empty
// frame.
type Frame struct {
	vars map[string]*Variable
}

func newFrame() *Frame {
	return &Frame{vars: make(map[string]*Variable)}
}

// Memory is the three-tiered frame stack (spec.md §3): one permanent
// global frame, an optional current temporary frame, and a stack of
// pushed local frames.
type Memory struct {
	global *Frame
	temp   *Frame // nil when no frame is open
	locals []*Frame
}

func newMemory() *Memory {
	return &Memory{global: newFrame()}
}

// CreateFrame implements CREATEFRAME: replaces TF with a fresh, empty
// frame, discarding whatever was there (spec.md §4.6).
func (m *Memory) CreateFrame() {
	m.temp = newFrame()
}

// PushFrame implements PUSHFRAME: TF must exist; it becomes the new
// top of the local-frame stack and TF becomes undefined.
func (m *Memory) PushFrame() error {
	if m.temp == nil {
		return errs.FrameNotExists.Wrapf("PUSHFRAME: no temporary frame")
	}
	m.locals = append(m.locals, m.temp)
	m.temp = nil
	return nil
}

// PopFrame implements POPFRAME: the local-frame stack must be
// non-empty; its top becomes the new TF.
func (m *Memory) PopFrame() error {
	if len(m.locals) == 0 {
		return errs.FrameNotExists.Wrapf("POPFRAME: local frame stack is empty")
	}
	top := m.locals[len(m.locals)-1]
	m.locals = m.locals[:len(m.locals)-1]
	m.temp = top
	return nil
}

func (m *Memory) frameFor(tag FrameTag) (*Frame, error) {
	switch tag {
	case FrameGlobal:
		return m.global, nil
	case FrameTemporary:
		if m.temp == nil {
			return nil, errs.FrameNotExists.Wrapf("TF does not exist")
		}
		return m.temp, nil
	case FrameLocal:
		if len(m.locals) == 0 {
			return nil, errs.FrameNotExists.Wrapf("LF does not exist")
		}
		return m.locals[len(m.locals)-1], nil
	default:
		return nil, errs.Internal.Wrapf("unknown frame tag %v", tag)
	}
}

// DefVar implements DEFVAR: declares name as unset in the given frame.
// Redefining an existing name is a semantic error (spec.md §4.6).
func (m *Memory) DefVar(tag FrameTag, name string) error {
	f, err := m.frameFor(tag)
	if err != nil {
		return err
	}
	if _, exists := f.vars[name]; exists {
		return errs.Semantics.Wrapf("variable %s@%s already defined", tag, name)
	}
	f.vars[name] = &Variable{Name: name}
	f.vars[name].Val = UnsetValue()
	return nil
}

// Resolve looks up an already-declared variable for read or write.
// Error precedence follows spec.md §7: frame existence is checked
// before variable existence, both ahead of anything involving the
// variable's value.
func (m *Memory) Resolve(tag FrameTag, name string) (*Variable, error) {
	f, err := m.frameFor(tag)
	if err != nil {
		return nil, err
	}
	v, ok := f.vars[name]
	if !ok {
		return nil, errs.UndefinedVar.Wrapf("variable %s@%s not defined", tag, name)
	}
	return v, nil
}
