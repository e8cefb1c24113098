package demo

import (
	"context"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/pourdemo/logging"
	"go.viam.com/pourdemo/meshes"
	"go.viam.com/pourdemo/planningscene"
	"go.viam.com/pourdemo/referenceframe"
	"go.viam.com/pourdemo/spatialmath"
)

// columnMesh is a mesh spanning z in [-height/2, height/2].
func columnMesh(height float64, label string) *spatialmath.Mesh {
	return spatialmath.NewMesh(nil, []*spatialmath.Triangle{
		spatialmath.NewTriangle(r3.Vector{Z: -height / 2}, r3.Vector{X: 0.03, Z: -height / 2}, r3.Vector{Z: height / 2}),
		spatialmath.NewTriangle(r3.Vector{Z: -height / 2}, r3.Vector{Y: 0.03, Z: -height / 2}, r3.Vector{Z: height / 2}),
	}, label)
}

func fakeLoader(t *testing.T, loaded *[]string) meshes.Loader {
	t.Helper()
	return meshes.LoaderFunc(func(ctx context.Context, locator string) (*spatialmath.Mesh, error) {
		*loaded = append(*loaded, locator)
		switch locator {
		case DefaultBottleMesh:
			return columnMesh(0.2, "bottle.stl"), nil
		case DefaultGlassMesh, "file:///meshes/glass.stl":
			return columnMesh(0.08, "glass.stl"), nil
		default:
			return nil, errors.Wrapf(meshes.ErrUnresolvable, "%q", locator)
		}
	})
}

func TestComputeMeshHeight(t *testing.T) {
	a := r3.Vector{}
	b := r3.Vector{X: 0.1}
	c := r3.Vector{Y: 0.1}
	d := r3.Vector{Z: 0.08}
	tetra := spatialmath.NewMesh(nil, []*spatialmath.Triangle{
		spatialmath.NewTriangle(a, c, b),
		spatialmath.NewTriangle(a, b, d),
		spatialmath.NewTriangle(a, d, c),
		spatialmath.NewTriangle(b, c, d),
	}, "tetra")
	test.That(t, ComputeMeshHeight(tetra), test.ShouldAlmostEqual, 0.08)
	test.That(t, ComputeMeshHeight(columnMesh(0.2, "")), test.ShouldAlmostEqual, 0.2)
}

func TestSetupTable(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore(t)
	defer store.Close(ctx)
	scene := NewSceneInitializer(store, nil, logging.NewTestLogger(t))

	tilted := spatialmath.NewPose(r3.Vector{X: 0.4, Y: -0.1, Z: 1.0}, &spatialmath.OrientationVectorDegrees{Theta: 30, OZ: 1})
	test.That(t, scene.SetupTable(ctx, referenceframe.NewPoseInFrame("base_link", tilted)), test.ShouldBeNil)

	objs, err := store.Objects(ctx, TableID)
	test.That(t, err, test.ShouldBeNil)
	table := objs[TableID]
	test.That(t, table.Frame, test.ShouldEqual, "base_link")
	test.That(t, table.Operation, test.ShouldEqual, planningscene.Add)
	test.That(t, table.Primitives, test.ShouldResemble, []planningscene.SolidPrimitive{planningscene.NewBoxPrimitive(0.5, 1.0, 0.1)})

	pose := table.PrimitivePoses[0]
	test.That(t, pose.Point().X, test.ShouldAlmostEqual, 0.4)
	test.That(t, pose.Point().Y, test.ShouldAlmostEqual, -0.1)
	test.That(t, pose.Point().Z, test.ShouldAlmostEqual, 0.8)
	test.That(t, spatialmath.OrientationAlmostEqual(pose.Orientation(), spatialmath.NewZeroOrientation()), test.ShouldBeTrue)

	// a second setup replaces the table
	test.That(t, scene.SetupTable(ctx, referenceframe.NewPoseInFrame("", spatialmath.NewZeroPose())), test.ShouldBeNil)
	ids, err := store.ObjectIDs(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ids, test.ShouldResemble, []string{TableID})
}

func TestSetupObjects(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore(t)
	defer store.Close(ctx)
	var loaded []string
	scene := NewSceneInitializer(store, fakeLoader(t, &loaded), logging.NewTestLogger(t))

	// a bottle left in the gripper by an earlier run
	held := planningscene.CollisionObject{
		ID:             BottleID,
		Primitives:     []planningscene.SolidPrimitive{{Type: planningscene.PrimitiveCylinder, Dimensions: []float64{0.2, 0.03}}},
		PrimitivePoses: []spatialmath.Pose{spatialmath.NewZeroPose()},
		Operation:      planningscene.Add,
	}
	test.That(t, store.ApplyAttachedCollisionObject(ctx, planningscene.AttachedCollisionObject{LinkName: "hand", Object: held}),
		test.ShouldBeNil)

	bottle := referenceframe.NewPoseInFrame("world", spatialmath.NewPoseFromPoint(r3.Vector{X: 0.5, Y: 0.1}))
	glass := referenceframe.NewPoseInFrame("table_top", spatialmath.NewPoseFromPoint(r3.Vector{X: 0.5, Y: -0.1, Z: 0.5}))
	test.That(t, scene.SetupObjects(ctx, bottle, glass, "", "file:///meshes/glass.stl"), test.ShouldBeNil)
	test.That(t, loaded, test.ShouldResemble, []string{DefaultBottleMesh, "file:///meshes/glass.stl"})

	attached, err := store.AttachedObjects(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, attached, test.ShouldBeEmpty)

	test.That(t, len(store.batches), test.ShouldEqual, 1)
	batch := store.batches[0]
	test.That(t, len(batch), test.ShouldEqual, 2)

	test.That(t, batch[0].ID, test.ShouldEqual, BottleID)
	test.That(t, batch[0].Frame, test.ShouldEqual, "world")
	test.That(t, batch[0].Operation, test.ShouldEqual, planningscene.Add)
	test.That(t, batch[0].MeshPoses[0].Point().X, test.ShouldAlmostEqual, 0.5)
	test.That(t, batch[0].MeshPoses[0].Point().Z, test.ShouldAlmostEqual, 0.102)

	test.That(t, batch[1].ID, test.ShouldEqual, GlassID)
	test.That(t, batch[1].Frame, test.ShouldEqual, "table_top")
	test.That(t, batch[1].MeshPoses[0].Point().Z, test.ShouldAlmostEqual, 0.542)

	// the detached cylinder was replaced by the mesh
	objs, err := store.Objects(ctx, BottleID)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, objs[BottleID].Primitives, test.ShouldBeEmpty)
	test.That(t, len(objs[BottleID].Meshes), test.ShouldEqual, 1)
}

func TestSetupObjectsLoaderError(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore(t)
	defer store.Close(ctx)
	var loaded []string
	scene := NewSceneInitializer(store, fakeLoader(t, &loaded), logging.NewTestLogger(t))

	origin := referenceframe.NewPoseInFrame("world", spatialmath.NewZeroPose())
	err := scene.SetupObjects(ctx, origin, origin, "package://missing/bottle.stl", "")
	test.That(t, errors.Is(err, meshes.ErrUnresolvable), test.ShouldBeTrue)
	test.That(t, store.batches, test.ShouldBeEmpty)
}

func TestCollisionObjectFromResource(t *testing.T) {
	var loaded []string
	obj, err := CollisionObjectFromResource(context.Background(), fakeLoader(t, &loaded), "glass", DefaultGlassMesh)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, obj.ID, test.ShouldEqual, "glass")
	test.That(t, obj.Operation, test.ShouldEqual, planningscene.Add)
	test.That(t, len(obj.Meshes), test.ShouldEqual, 1)
	test.That(t, spatialmath.PoseAlmostEqual(obj.MeshPoses[0], spatialmath.NewZeroPose()), test.ShouldBeTrue)
	test.That(t, obj.Validate(), test.ShouldBeNil)
}
