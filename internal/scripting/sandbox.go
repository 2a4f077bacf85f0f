// Package scripting runs homebrew trait scripts in a sandboxed GopherLua
// environment. It has no dependency on game domain packages; a script reaches
// the character only through the Grants it is handed.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit caps the opcodes of one trait script run when the
// configured limit is zero.
const DefaultInstructionLimit = 100_000

// blockedGlobals are removed after the base library is opened. A trait script
// may only compute values and call grant.
var blockedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require", "module"}

// opcodeBudget is a context that GopherLua polls once per opcode through Done.
// Once the budget is spent the context cancels and the VM stops with an error.
type opcodeBudget struct {
	context.Context
	left   atomic.Int64
	cancel context.CancelFunc
}

func (b *opcodeBudget) Done() <-chan struct{} {
	if b.left.Add(-1) < 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// Sandbox is one Lua state restricted to the base, table, string and math
// libraries and to a fixed opcode budget.
type Sandbox struct {
	L      *lua.LState
	budget *opcodeBudget
}

// NewSandbox creates a sandbox allowed to execute limit opcodes.
//
// Precondition: limit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller must Close the sandbox.
func NewSandbox(limit int) *Sandbox {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &opcodeBudget{Context: ctx, cancel: cancel}
	b.left.Store(int64(limit))
	L.SetContext(b)
	return &Sandbox{L: L, budget: b}
}

// Remaining returns how many opcodes the sandbox may still execute.
func (s *Sandbox) Remaining() int64 {
	if n := s.budget.left.Load(); n > 0 {
		return n
	}
	return 0
}

// Close releases the Lua state.
func (s *Sandbox) Close() {
	s.budget.cancel()
	s.L.Close()
}
