package utils

import (
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestSafeJoinDir(t *testing.T) {
	parent := t.TempDir()

	joined, err := SafeJoinDir(parent, "meshes/bottle.stl")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, joined, test.ShouldEqual, filepath.Join(parent, "meshes", "bottle.stl"))

	_, err = SafeJoinDir(parent, "../outside.stl")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unsafe path join")
}

func TestFloat64AlmostEqual(t *testing.T) {
	test.That(t, Float64AlmostEqual(0.1+0.2, 0.3, 1e-9), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(0.1, 0.2, 1e-9), test.ShouldBeFalse)
	test.That(t, RadToDeg(DegToRad(90)), test.ShouldAlmostEqual, 90)
	test.That(t, MetersToMM(0.102), test.ShouldAlmostEqual, 102)
}
