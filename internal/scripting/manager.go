package scripting

import (
	"fmt"

	"go.uber.org/zap"
)

// Runner executes trait scripts. Every run gets a fresh sandbox, so scripts
// cannot share state and the instruction limit applies per run.
//
// Runner is safe for concurrent use.
type Runner struct {
	instLimit int
	logger    *zap.Logger
}

// NewRunner creates a Runner.
//
// Precondition: logger must be non-nil; instLimit <= 0 uses DefaultInstructionLimit.
// Postcondition: Returns a non-nil Runner.
func NewRunner(instLimit int, logger *zap.Logger) *Runner {
	return &Runner{instLimit: instLimit, logger: logger}
}

// Run executes src for traitID with the grant table bound to g. Lua errors,
// including exceeding the instruction limit, are logged at Warn level and
// returned.
//
// Precondition: g must be non-nil.
// Postcondition: Returns nil when the script ran to completion.
func (r *Runner) Run(traitID, src string, g Grants) error {
	sb := NewSandbox(r.instLimit)
	defer sb.Close()

	RegisterGrants(sb.L, g)
	if err := sb.L.DoString(src); err != nil {
		r.logger.Warn("scripting: trait script failed",
			zap.String("trait", traitID),
			zap.Error(err),
		)
		return fmt.Errorf("scripting: trait %q: %w", traitID, err)
	}
	r.logger.Debug("scripting: trait script applied",
		zap.String("trait", traitID),
		zap.Int64("opcodes_left", sb.Remaining()),
	)
	return nil
}

// Check compiles src without running it.
//
// Postcondition: Returns nil when src is syntactically valid Lua.
func (r *Runner) Check(traitID, src string) error {
	sb := NewSandbox(r.instLimit)
	defer sb.Close()

	if _, err := sb.L.LoadString(src); err != nil {
		return fmt.Errorf("scripting: trait %q: %w", traitID, err)
	}
	return nil
}

// RunTraitScript executes src with the default instruction limit and no logging.
//
// Postcondition: Returns nil when the script ran to completion.
func RunTraitScript(src string, g Grants) error {
	return NewRunner(0, zap.NewNop()).Run("", src, g)
}
