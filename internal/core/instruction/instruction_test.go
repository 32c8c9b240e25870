package instruction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeInstruction struct{ typ Type }

func (f *fakeInstruction) InstrType() Type { return f.typ }

func (f *fakeInstruction) Validate() error { return nil }

func (f *fakeInstruction) Apply(*ApplyContext) Result { return ResSUCCESS }

func TestRegistryNew(t *testing.T) {
	const typ = Type(60_000)
	Register(typ, func() Instruction { return &fakeInstruction{typ: typ} })

	instr := New(typ)
	require.NotNil(t, instr)
	require.Equal(t, typ, instr.InstrType())

	require.Nil(t, New(Type(60_001)), "unregistered type yields nil")
}

func TestRegisterDuplicatePanics(t *testing.T) {
	const typ = Type(60_002)
	factory := func() Instruction { return &fakeInstruction{typ: typ} }
	Register(typ, factory)
	require.Panics(t, func() { Register(typ, factory) })
}
