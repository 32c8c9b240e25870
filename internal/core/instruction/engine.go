package instruction

import (
	"go.uber.org/zap"

	"github.com/solkeen/marinade-anchor/internal/core/ledger"
	"github.com/solkeen/marinade-anchor/internal/core/state"
)

// Engine applies instructions against a base ledger view. Each call runs as
// one serialized state transition: the instruction works on a sandbox plus an
// in-memory copy of the protocol state, and only a fully successful call is
// committed. The host is expected to linearize calls against the same pool;
// the engine itself performs no locking.
type Engine struct {
	base ledger.View
	log  *zap.Logger
}

// NewEngine creates an engine over the given base view.
func NewEngine(base ledger.View, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{base: base, log: log}
}

// Apply validates and applies one instruction. On success the sandbox change
// set, including the updated protocol state, is committed to the base view as
// one unit; on any failure the base is left untouched and the failing stage's
// result code is returned.
func (e *Engine) Apply(instr Instruction) (Result, *Metadata) {
	log := e.log.With(zap.Stringer("instruction", instr.InstrType()))

	if err := instr.Validate(); err != nil {
		log.Debug("instruction rejected", zap.Error(err))
		return ResMALFORMED, nil
	}

	sb := ledger.NewSandbox(e.base)
	st, err := state.Load(sb)
	if err != nil {
		log.Error("cannot load protocol state", zap.Error(err))
		return ResINTERNAL, nil
	}

	ctx := &ApplyContext{
		View:     sb,
		State:    st,
		Logger:   log,
		Metadata: &Metadata{},
	}
	if res := instr.Apply(ctx); !res.IsSuccess() {
		log.Debug("instruction failed", zap.Stringer("result", res))
		return res, nil
	}

	if err := state.Save(sb, st); err != nil {
		log.Error("cannot persist protocol state", zap.Error(err))
		return ResINTERNAL, nil
	}
	if err := e.commit(sb.Changes()); err != nil {
		log.Error("cannot commit change set", zap.Error(err))
		return ResINTERNAL, nil
	}
	return ResSUCCESS, ctx.Metadata
}

func (e *Engine) commit(changes []ledger.Change) error {
	if c, ok := e.base.(ledger.Committer); ok {
		return c.Commit(changes)
	}
	return ledger.ApplyChanges(e.base, changes)
}
