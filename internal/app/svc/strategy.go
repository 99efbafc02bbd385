package svc

import (
	"fmt"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/errtype"
)

// DefaultStepSize is the linear increment used when neither the request nor the group defines one.
const DefaultStepSize = 10

// DefaultCanarySteps are the increments of a canary deployment without explicit steps.
var DefaultCanarySteps = []int{10, 30, 30, 30, 100}

// UnknownStrategyError is returned for a strategy type without a planner.
type UnknownStrategyError struct {
	Name string
}

func (e UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown strategy %q", e.Name)
}

// Unwrap makes the error match errtype.ErrBadInput.
func (e UnknownStrategyError) Unwrap() error {
	return errtype.ErrBadInput
}

type planFunc func(s app.Strategy, stepSize int) ([]int, error)

var planFuncs = map[string]planFunc{
	app.StrategyAllAtOnce: planAllAtOnce,
	app.StrategyLinear:    planLinear,
	app.StrategyCanary:    planCanary,
}

// PlanSteps returns the idle pool weight reached after each step.
// The weights grow strictly and the last one is always 100.
func PlanSteps(s app.Strategy, stepSize int) ([]int, error) {
	f, ok := planFuncs[s.Type]
	if !ok {
		return nil, UnknownStrategyError{Name: s.Type}
	}
	return f(s, stepSize)
}

func planAllAtOnce(app.Strategy, int) ([]int, error) {
	return []int{100}, nil
}

func planLinear(s app.Strategy, stepSize int) ([]int, error) {
	if len(s.Steps) > 0 {
		return fromIncrements(s.Steps)
	}
	step := s.StepPercent
	if step == 0 {
		step = stepSize
	}
	if step == 0 {
		step = DefaultStepSize
	}
	if step < 1 || step > 100 {
		return nil, fmt.Errorf("%w: step %d%% is out of range", errtype.ErrBadInput, step)
	}
	res := make([]int, 0, (100+step-1)/step)
	for i := 1; ; i++ {
		w := min(100, i*step)
		res = append(res, w)
		if w == 100 {
			return res, nil
		}
	}
}

func planCanary(s app.Strategy, stepSize int) ([]int, error) {
	if len(s.Steps) > 0 {
		return fromIncrements(s.Steps)
	}
	if s.StepPercent > 0 {
		return planLinear(s, stepSize)
	}
	return fromIncrements(DefaultCanarySteps)
}

func fromIncrements(inc []int) ([]int, error) {
	res := make([]int, 0, len(inc)+1)
	var total int
	for _, v := range inc {
		if v < 1 || v > 100 {
			return nil, fmt.Errorf("%w: step %d%% is out of range", errtype.ErrBadInput, v)
		}
		total = min(100, total+v)
		if len(res) == 0 || res[len(res)-1] != total {
			res = append(res, total)
		}
	}
	if len(res) == 0 || res[len(res)-1] != 100 {
		res = append(res, 100)
	}
	return res, nil
}
