// Package evaluate applies a CheckDescriptor's declared condition to a
// measured value. It is pure: no I/O, no state.
package evaluate

import (
	"fmt"

	"github.com/weiser-ai/weiser-go/internal/check"
)

// Result is the outcome of evaluating one condition against one value.
type Result struct {
	Success bool
	Fail    bool
}

// passed builds the exclusive success/fail pair for a boolean verdict.
func passed(ok bool) Result {
	return Result{Success: ok, Fail: !ok}
}

// Evaluate applies cond to value using threshold, returning pass or fail.
// It is total over the defined condition set; an unrecognized condition is
// a programmer error surfaced as a CompileError by the caller, not handled
// here.
func Evaluate(cond check.Condition, value float64, threshold check.Threshold) (Result, error) {
	switch cond {
	case check.ConditionBetween:
		if threshold.Pair == nil {
			return Result{}, fmt.Errorf("evaluate: between condition requires a threshold pair")
		}
		lo, hi := threshold.Pair[0], threshold.Pair[1]
		return passed(value >= lo && value <= hi), nil
	case check.ConditionGt, check.ConditionGe, check.ConditionLt, check.ConditionLe, check.ConditionEq, check.ConditionNeq:
		if threshold.Scalar == nil {
			return Result{}, fmt.Errorf("evaluate: %s condition requires a scalar threshold", cond)
		}
		t := *threshold.Scalar
		switch cond {
		case check.ConditionGt:
			return passed(value > t), nil
		case check.ConditionGe:
			return passed(value >= t), nil
		case check.ConditionLt:
			return passed(value < t), nil
		case check.ConditionLe:
			return passed(value <= t), nil
		case check.ConditionEq:
			return passed(value == t), nil
		case check.ConditionNeq:
			return passed(value != t), nil
		}
	}
	return Result{}, fmt.Errorf("evaluate: unknown condition %q", cond)
}
