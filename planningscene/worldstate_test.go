package planningscene

import (
	"context"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/pourdemo/logging"
	"go.viam.com/pourdemo/referenceframe"
	"go.viam.com/pourdemo/spatialmath"
)

func TestToWorldState(t *testing.T) {
	ctx := context.Background()
	store := NewStore(logging.NewTestLogger(t))
	defer store.Close(ctx)

	tri := spatialmath.NewTriangle(r3.Vector{}, r3.Vector{X: 0.1}, r3.Vector{Y: 0.1})
	mesh := spatialmath.NewMesh(nil, []*spatialmath.Triangle{tri}, "")
	glass := CollisionObject{
		ID:        "glass",
		Meshes:    []*spatialmath.Mesh{mesh},
		MeshPoses: []spatialmath.Pose{spatialmath.NewPoseFromPoint(r3.Vector{Z: 0.1})},
		Operation: Add,
	}
	test.That(t, store.ApplyCollisionObjects(ctx, []CollisionObject{boxObject("table", 0.8), glass}), test.ShouldBeNil)

	two := boxObject("bottle", 0)
	two.Primitives = append(two.Primitives, SolidPrimitive{Type: PrimitiveCylinder, Dimensions: []float64{0.2, 0.03}})
	two.PrimitivePoses = append(two.PrimitivePoses, spatialmath.NewZeroPose())
	test.That(t, store.ApplyAttachedCollisionObject(ctx, AttachedCollisionObject{LinkName: "hand", Object: two}), test.ShouldBeNil)

	ws, err := ToWorldState(ctx, store)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(ws.Obstacles), test.ShouldEqual, 2)
	test.That(t, ws.Obstacles[0].Parent(), test.ShouldEqual, "hand")
	test.That(t, len(ws.Obstacles[0].Geometries()), test.ShouldEqual, 2)
	test.That(t, ws.Obstacles[0].Geometries()[0].Label(), test.ShouldEqual, "bottle:0")
	test.That(t, ws.Obstacles[1].Parent(), test.ShouldEqual, referenceframe.World)

	world := ws.Obstacles[1].Geometries()
	test.That(t, world[0].Label(), test.ShouldEqual, "glass")
	test.That(t, world[0].Pose().Point().Z, test.ShouldAlmostEqual, 0.1)
	test.That(t, world[1].Label(), test.ShouldEqual, "table")

	pb := referenceframe.WorldStateToProtobuf(ws)
	test.That(t, pb.GetObstacles()[1].GetGeometries()[1].GetCenter().GetZ(), test.ShouldAlmostEqual, 800)
}

func TestPrimitiveGeometry(t *testing.T) {
	g, err := SolidPrimitive{Type: PrimitiveSphere, Dimensions: []float64{0.05}}.Geometry(spatialmath.NewZeroPose(), "s")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.ToProtobuf().GetSphere().GetRadiusMm(), test.ShouldAlmostEqual, 50)

	_, err = SolidPrimitive{Type: PrimitiveBox, Dimensions: []float64{1}}.Geometry(spatialmath.NewZeroPose(), "b")
	test.That(t, err, test.ShouldNotBeNil)

	obj := CollisionObject{ID: "x", Primitives: []SolidPrimitive{NewBoxPrimitive(1, 1, 1)}}
	test.That(t, obj.Validate(), test.ShouldNotBeNil)
	test.That(t, (&CollisionObject{Operation: Add}).Validate(), test.ShouldNotBeNil)
	test.That(t, (&CollisionObject{Operation: Remove}).Validate(), test.ShouldBeNil)
}
