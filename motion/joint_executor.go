package motion

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/pourdemo/logging"
	"go.viam.com/pourdemo/solution"
)

const defaultGoalTolerance = 1e-3

// Option configures a JointExecutor.
type Option func(*JointExecutor)

// WithClock sets the clock used to wait for each point's time from start.
func WithClock(c clock.Clock) Option {
	return func(e *JointExecutor) {
		e.clock = c
	}
}

// WithGoalTolerance sets how far the final joint positions may be from the last point. Zero
// disables the check.
func WithGoalTolerance(tol float64) Option {
	return func(e *JointExecutor) {
		e.goalTolerance = tol
	}
}

// JointExecutor plays a joint trajectory back through a JointController, commanding every
// point at its time from start.
type JointExecutor struct {
	group         PlanningGroup
	controller    JointController
	clock         clock.Clock
	goalTolerance float64
	logger        logging.Logger
}

// NewJointExecutor returns an executor for group driving controller.
func NewJointExecutor(group PlanningGroup, controller JointController, logger logging.Logger, opts ...Option) (*JointExecutor, error) {
	if err := group.Validate("planning_group"); err != nil {
		return nil, err
	}
	e := &JointExecutor{
		group:         group,
		controller:    controller,
		clock:         clock.New(),
		goalTolerance: defaultGoalTolerance,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Execute blocks until every point has been commanded. An empty trajectory does nothing. On
// any failure the controller is stopped and an *ExecutionError is returned.
func (e *JointExecutor) Execute(ctx context.Context, trajectory *solution.JointTrajectory) error {
	if trajectory.IsEmpty() {
		return nil
	}
	if err := trajectory.Validate(); err != nil {
		return &ExecutionError{Point: -1, Err: err}
	}
	if unknown, _ := lo.Difference(trajectory.JointNames, e.group.Joints); len(unknown) > 0 {
		return &ExecutionError{Point: -1, Err: errors.Errorf("joints %v are not in planning group %q", unknown, e.group.Name)}
	}

	// joints of the group the trajectory does not name hold their current position
	current, err := e.controller.JointPositions(ctx)
	if err != nil {
		return e.fail(ctx, -1, errors.Wrap(err, "reading joint positions"))
	}
	if len(current) != len(e.group.Joints) {
		return e.fail(ctx, -1, errors.Errorf("controller reports %d joints for group of %d", len(current), len(e.group.Joints)))
	}
	index := lo.Map(e.group.Joints, func(name string, _ int) int { return lo.IndexOf(trajectory.JointNames, name) })

	e.logger.CDebugw(ctx, "executing trajectory", "group", e.group.Name,
		"points", len(trajectory.Points), "duration", trajectory.Duration().String())
	start := e.clock.Now()
	positions := append([]float64(nil), current...)
	for i, point := range trajectory.Points {
		if err := e.waitUntil(ctx, start.Add(point.TimeFromStart)); err != nil {
			return e.fail(ctx, i, err)
		}
		for g, t := range index {
			if t >= 0 {
				positions[g] = point.Positions[t]
			}
		}
		if err := e.group.CheckLimits(positions); err != nil {
			return e.fail(ctx, i, err)
		}
		if err := e.controller.MoveToJointPositions(ctx, positions); err != nil {
			return e.fail(ctx, i, err)
		}
	}

	if e.goalTolerance > 0 {
		reached, err := e.controller.JointPositions(ctx)
		if err != nil {
			return e.fail(ctx, len(trajectory.Points)-1, errors.Wrap(err, "reading final joint positions"))
		}
		for g := range positions {
			if math.Abs(reached[g]-positions[g]) > e.goalTolerance {
				return e.fail(ctx, len(trajectory.Points)-1, errors.Errorf(
					"joint %q ended at %.4f instead of %.4f", e.group.Joints[g], reached[g], positions[g]))
			}
		}
	}
	return nil
}

func (e *JointExecutor) waitUntil(ctx context.Context, deadline time.Time) error {
	wait := deadline.Sub(e.clock.Now())
	if wait <= 0 {
		return ctx.Err()
	}
	timer := e.clock.Timer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *JointExecutor) fail(ctx context.Context, point int, err error) error {
	// stop with a fresh context, ctx may be the reason for failing
	stopErr := e.controller.Stop(context.WithoutCancel(ctx))
	e.logger.CDebugw(ctx, "trajectory execution stopped", "point", point, "error", err)
	return &ExecutionError{Point: point, Err: multierr.Combine(err, stopErr)}
}
