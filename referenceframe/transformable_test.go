package referenceframe

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/pourdemo/spatialmath"
)

func TestPoseInFrame(t *testing.T) {
	pif := NewPoseInFrame("", spatialmath.NewPoseFromPoint(r3.Vector{Z: 1}))
	test.That(t, pif.Parent(), test.ShouldEqual, World)

	moved := pif.Transform(NewPoseInFrame("base", spatialmath.NewPoseFromPoint(r3.Vector{X: 1})))
	expected := NewPoseInFrame("base", spatialmath.NewPoseFromPoint(r3.Vector{X: 1, Z: 1}))
	test.That(t, moved.AlmostEqual(expected), test.ShouldBeTrue)

	back := ProtobufToPoseInFrame(PoseInFrameToProtobuf(expected))
	test.That(t, back.AlmostEqual(expected), test.ShouldBeTrue)
}

func TestWorldStateProtobuf(t *testing.T) {
	box, err := spatialmath.NewBox(spatialmath.NewZeroPose(), r3.Vector{X: 1, Y: 1, Z: 1}, "table")
	test.That(t, err, test.ShouldBeNil)
	ws, err := NewWorldState([]*GeometriesInFrame{NewGeometriesInFrame(World, []spatialmath.Geometry{box})})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ws.String(), test.ShouldEqual, "1 geometries in 1 frames")

	pb := WorldStateToProtobuf(ws)
	test.That(t, len(pb.GetObstacles()), test.ShouldEqual, 1)
	test.That(t, pb.GetObstacles()[0].GetReferenceFrame(), test.ShouldEqual, World)

	back, err := WorldStateFromProtobuf(pb)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.Obstacles[0].AlmostEqual(ws.Obstacles[0]), test.ShouldBeTrue)

	_, err = NewWorldState([]*GeometriesInFrame{
		NewGeometriesInFrame(World, []spatialmath.Geometry{box}),
		NewGeometriesInFrame("other", []spatialmath.Geometry{box}),
	})
	test.That(t, err, test.ShouldNotBeNil)
}
