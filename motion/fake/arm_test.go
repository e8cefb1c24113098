package fake

import (
	"context"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.viam.com/pourdemo/logging"
	"go.viam.com/pourdemo/motion"
)

func TestFakeArm(t *testing.T) {
	ctx := context.Background()
	group := motion.PlanningGroup{
		Name:   "panda_arm",
		Joints: []string{"j1", "j2"},
		Limits: []motion.Limit{{Min: -1, Max: 1}, {Min: 0.5, Max: 2}},
	}
	arm, err := NewArm(group, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	joints, err := arm.JointPositions(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, joints, test.ShouldResemble, []float64{0, 1.25})

	test.That(t, arm.MoveToJointPositions(ctx, []float64{0.5, 1}), test.ShouldBeNil)
	err = arm.MoveToJointPositions(ctx, []float64{1.5, 1})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, strings.Contains(err.Error(), motion.OOBErrString), test.ShouldBeTrue)
	test.That(t, arm.History(), test.ShouldResemble, [][]float64{{0.5, 1}})

	test.That(t, arm.Stop(ctx), test.ShouldBeNil)
	test.That(t, arm.StopCount(), test.ShouldEqual, 1)

	_, err = NewArm(motion.PlanningGroup{Name: "empty"}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}
