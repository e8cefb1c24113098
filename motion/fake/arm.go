// Package fake implements a simulated arm that satisfies motion.JointController.
package fake

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/pourdemo/logging"
	"go.viam.com/pourdemo/motion"
)

// Arm is a fake arm that can simply read and set joint positions. Moves outside the group
// limits fail like they would on hardware.
type Arm struct {
	group  motion.PlanningGroup
	logger logging.Logger

	mu        sync.RWMutex
	joints    []float64
	history   [][]float64
	stopCount int
}

// NewArm returns a fake arm for the group with every joint at zero, or at the middle of its
// limits when zero is outside of them.
func NewArm(group motion.PlanningGroup, logger logging.Logger) (*Arm, error) {
	if err := group.Validate("fake arm"); err != nil {
		return nil, err
	}
	joints := make([]float64, len(group.Joints))
	for i, l := range group.Limits {
		if !l.Contains(0) {
			joints[i] = (l.Min + l.Max) / 2
		}
	}
	return &Arm{group: group, logger: logger, joints: joints}, nil
}

// JointPositions returns a copy of the joints.
func (a *Arm) JointPositions(ctx context.Context) ([]float64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]float64(nil), a.joints...), nil
}

// MoveToJointPositions sets the joints.
func (a *Arm) MoveToJointPositions(ctx context.Context, positions []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.group.CheckLimits(positions); err != nil {
		return errors.Wrap(err, "cannot move arm")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	copy(a.joints, positions)
	a.history = append(a.history, append([]float64(nil), positions...))
	a.logger.CDebugw(ctx, "fake arm moved", "group", a.group.Name, "joints", positions)
	return nil
}

// Stop records that a stop was requested.
func (a *Arm) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopCount++
	return nil
}

// History returns every commanded position in order.
func (a *Arm) History() [][]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([][]float64, len(a.history))
	copy(out, a.history)
	return out
}

// StopCount returns how many times Stop was called.
func (a *Arm) StopCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCount
}
