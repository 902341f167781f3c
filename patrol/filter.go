package patrol

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/vimy/vimy-patrol/model"
)

// compileFilter turns the squad filter source into bytecode once per config
// so eligibility checks in the hot loop are a single vm.Run.
func compileFilter(src string) (*vm.Program, error) {
	prog, err := expr.Compile(src, expr.Env(model.Squad{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile squad filter %q: %w", src, err)
	}
	return prog, nil
}

func (e *Engine) eligible(sq model.Squad) (bool, error) {
	result, err := vm.Run(e.filter, sq)
	if err != nil {
		return false, fmt.Errorf("squad filter: %w", err)
	}
	ok, _ := result.(bool)
	return ok, nil
}
