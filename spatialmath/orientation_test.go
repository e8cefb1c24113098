package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestZeroOrientation(t *testing.T) {
	zero := NewZeroOrientation()
	ovd := zero.OrientationVectorDegrees()
	test.That(t, ovd.OZ, test.ShouldAlmostEqual, 1)
	test.That(t, ovd.OX, test.ShouldAlmostEqual, 0)
	test.That(t, ovd.OY, test.ShouldAlmostEqual, 0)
	test.That(t, ovd.Theta, test.ShouldAlmostEqual, 0)
	test.That(t, zero.AxisAngles().Theta, test.ShouldAlmostEqual, 0)
}

func TestOrientationVectorRoundTrip(t *testing.T) {
	for _, ovd := range []*OrientationVectorDegrees{
		{Theta: 0, OX: 0, OY: 0, OZ: 1},
		{Theta: 90, OX: 0, OY: 0, OZ: 1},
		{Theta: 45, OX: 1, OY: 0, OZ: 0},
		{Theta: -30, OX: 0, OY: 1, OZ: 0},
		{Theta: 120, OX: 0.5, OY: -0.5, OZ: 0.7071067811865476},
		{Theta: 10, OX: 0, OY: 0, OZ: -1},
	} {
		back := QuatToOVD(ovd.Quaternion())
		n := r3.Vector{X: ovd.OX, Y: ovd.OY, Z: ovd.OZ}.Normalize()
		test.That(t, back.OX, test.ShouldAlmostEqual, n.X, 1e-6)
		test.That(t, back.OY, test.ShouldAlmostEqual, n.Y, 1e-6)
		test.That(t, back.OZ, test.ShouldAlmostEqual, n.Z, 1e-6)
		test.That(t, back.Theta, test.ShouldAlmostEqual, ovd.Theta, 1e-4)
	}
}

func TestRotatePoint(t *testing.T) {
	aboutZ := &R4AA{Theta: math.Pi / 2, RZ: 1}
	pt := RotatePoint(aboutZ, r3.Vector{X: 1})
	test.That(t, pt.X, test.ShouldAlmostEqual, 0)
	test.That(t, pt.Y, test.ShouldAlmostEqual, 1)
	test.That(t, pt.Z, test.ShouldAlmostEqual, 0)
}

func TestQuaternionAlmostEqual(t *testing.T) {
	q := (&R4AA{Theta: 1, RX: 1}).ToQuat()
	neg := q
	neg.Real, neg.Imag, neg.Jmag, neg.Kmag = -q.Real, -q.Imag, -q.Jmag, -q.Kmag
	test.That(t, QuaternionAlmostEqual(q, neg, 1e-9), test.ShouldBeTrue)
	test.That(t, QuaternionAlmostEqual(q, NewZeroOrientation().Quaternion(), 1e-3), test.ShouldBeFalse)

	o := NewQuaternion(2, 0, 0, 0)
	test.That(t, OrientationAlmostEqual(o, NewZeroOrientation()), test.ShouldBeTrue)
	test.That(t, OrientationAlmostEqual(NewQuaternion(0, 0, 0, 0), NewZeroOrientation()), test.ShouldBeTrue)
}
