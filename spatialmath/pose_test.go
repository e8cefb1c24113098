package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestCompose(t *testing.T) {
	a := NewPose(r3.Vector{X: 1}, &R4AA{Theta: math.Pi / 2, RZ: 1})
	b := NewPoseFromPoint(r3.Vector{X: 1})
	c := Compose(a, b)
	test.That(t, c.Point().X, test.ShouldAlmostEqual, 1)
	test.That(t, c.Point().Y, test.ShouldAlmostEqual, 1)
	test.That(t, OrientationAlmostEqual(c.Orientation(), a.Orientation()), test.ShouldBeTrue)

	between := PoseBetween(a, c)
	test.That(t, PoseAlmostEqual(between, b), test.ShouldBeTrue)
}

func TestPoseProtobufUsesMillimeters(t *testing.T) {
	p := NewPose(r3.Vector{X: 0.1, Y: -0.25, Z: 1}, &OrientationVectorDegrees{Theta: 30, OZ: 1})
	pb := PoseToProtobuf(p)
	test.That(t, pb.X, test.ShouldAlmostEqual, 100)
	test.That(t, pb.Y, test.ShouldAlmostEqual, -250)
	test.That(t, pb.Z, test.ShouldAlmostEqual, 1000)
	test.That(t, pb.OZ, test.ShouldAlmostEqual, 1)
	test.That(t, pb.Theta, test.ShouldAlmostEqual, 30, 1e-6)

	back := NewPoseFromProtobuf(pb)
	test.That(t, PoseAlmostEqualEps(back, p, 1e-9), test.ShouldBeTrue)
	test.That(t, PoseAlmostEqual(NewPoseFromProtobuf(nil), NewZeroPose()), test.ShouldBeTrue)
}

func TestNilOrientationIsIdentity(t *testing.T) {
	p := NewPose(r3.Vector{Z: 2}, nil)
	test.That(t, OrientationAlmostEqual(p.Orientation(), NewZeroOrientation()), test.ShouldBeTrue)
}
