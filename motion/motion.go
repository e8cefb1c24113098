// Package motion executes joint trajectories on a planning group.
package motion

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/pourdemo/solution"
)

// ErrExecutionFailed is matched by every error an Executor returns for a trajectory it could not complete.
var ErrExecutionFailed = errors.New("trajectory execution failed")

// OOBErrString is contained in errors about joint positions outside of their limits.
const OOBErrString = "input out of bounds"

// Executor executes a single joint trajectory, blocking until it is done.
type Executor interface {
	Execute(ctx context.Context, trajectory *solution.JointTrajectory) error
}

// ExecutorFunc adapts a function to an Executor.
type ExecutorFunc func(ctx context.Context, trajectory *solution.JointTrajectory) error

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, trajectory *solution.JointTrajectory) error {
	return f(ctx, trajectory)
}

// JointController moves a set of joints, in planning group order.
type JointController interface {
	JointPositions(ctx context.Context) ([]float64, error)
	MoveToJointPositions(ctx context.Context, positions []float64) error
	Stop(ctx context.Context) error
}

// Limit is the allowed range of a joint, in radians or meters.
type Limit struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains returns whether v is within the limit.
func (l Limit) Contains(v float64) bool {
	return v >= l.Min && v <= l.Max
}

// PlanningGroup is a named, ordered set of joints that move together.
type PlanningGroup struct {
	Name   string   `json:"name"`
	Joints []string `json:"joints"`
	// Limits is empty or has one entry per joint.
	Limits []Limit `json:"limits,omitempty"`
}

// Validate checks the group for usability.
func (g *PlanningGroup) Validate(path string) error {
	if g.Name == "" {
		return errors.Errorf("%s: planning group must have a name", path)
	}
	if len(g.Joints) == 0 {
		return errors.Errorf("%s: planning group %q has no joints", path, g.Name)
	}
	if dups := lo.FindDuplicates(g.Joints); len(dups) > 0 {
		return errors.Errorf("%s: planning group %q lists joints more than once: %v", path, g.Name, dups)
	}
	if len(g.Limits) != 0 && len(g.Limits) != len(g.Joints) {
		return errors.Errorf("%s: planning group %q has %d limits for %d joints", path, g.Name, len(g.Limits), len(g.Joints))
	}
	for i, l := range g.Limits {
		if l.Min > l.Max {
			return errors.Errorf("%s: joint %q has min %.3f above max %.3f", path, g.Joints[i], l.Min, l.Max)
		}
	}
	return nil
}

// CheckLimits returns an out of bounds error for the first position outside the group limits.
func (g *PlanningGroup) CheckLimits(positions []float64) error {
	if len(positions) != len(g.Joints) {
		return errors.Errorf("got %d positions for %d joints", len(positions), len(g.Joints))
	}
	for i, l := range g.Limits {
		if !l.Contains(positions[i]) {
			return errors.Errorf("%s: joint %q position %.4f not in [%.4f, %.4f]",
				OOBErrString, g.Joints[i], positions[i], l.Min, l.Max)
		}
	}
	return nil
}

// ExecutionError reports which trajectory point could not be reached.
type ExecutionError struct {
	Point int
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s at point %d: %v", ErrExecutionFailed, e.Point, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Is makes every ExecutionError match ErrExecutionFailed.
func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecutionFailed //nolint:errorlint
}
