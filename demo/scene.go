package demo

import (
	"context"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/pourdemo/logging"
	"go.viam.com/pourdemo/meshes"
	"go.viam.com/pourdemo/planningscene"
	"go.viam.com/pourdemo/referenceframe"
	"go.viam.com/pourdemo/spatialmath"
)

// Object ids and default mesh resources of the pour scene.
const (
	TableID  = "table"
	BottleID = "bottle"
	GlassID  = "glass"

	DefaultBottleMesh = "package://mtc_pour/meshes/bottle.stl"
	DefaultGlassMesh  = "package://mtc_pour/meshes/glass.stl"
)

const (
	// the table box center sits this far below the tabletop pose
	tableDrop = .15 + .05
	// gap left between an object and the surface it stands on
	placementClearance = .002
)

// TableDims are the box dimensions of the table.
var TableDims = r3.Vector{X: .5, Y: 1.0, Z: .1}

// SceneInitializer puts the table, bottle and glass into a planning scene.
type SceneInitializer struct {
	store  planningscene.Store
	loader meshes.Loader
	logger logging.Logger
}

// NewSceneInitializer returns a SceneInitializer writing to store and loading meshes with loader.
func NewSceneInitializer(store planningscene.Store, loader meshes.Loader, logger logging.Logger) *SceneInitializer {
	return &SceneInitializer{store: store, loader: loader, logger: logger}
}

// SetupTable adds the table box below the given tabletop pose. The table is always level.
func (s *SceneInitializer) SetupTable(ctx context.Context, tabletop *referenceframe.PoseInFrame) error {
	pt := tabletop.Pose().Point()
	pt.Z -= tableDrop
	table := planningscene.CollisionObject{
		ID:             TableID,
		Frame:          tabletop.Parent(),
		Primitives:     []planningscene.SolidPrimitive{planningscene.NewBoxPrimitive(TableDims.X, TableDims.Y, TableDims.Z)},
		PrimitivePoses: []spatialmath.Pose{spatialmath.NewPoseFromPoint(pt)},
		Operation:      planningscene.Add,
	}
	if err := s.store.ApplyCollisionObject(ctx, table); err != nil {
		return errors.Wrap(err, "adding table")
	}
	s.logger.CDebugw(ctx, "table added", "frame", table.Frame, "pose", table.PrimitivePoses[0])
	return nil
}

// SetupObjects places the bottle and glass meshes standing on the given poses. A bottle still
// attached to the robot is detached first. Empty mesh resources use the default meshes.
func (s *SceneInitializer) SetupObjects(
	ctx context.Context,
	bottle, glass *referenceframe.PoseInFrame,
	bottleMesh, glassMesh string,
) error {
	if bottleMesh == "" {
		bottleMesh = DefaultBottleMesh
	}
	if glassMesh == "" {
		glassMesh = DefaultGlassMesh
	}

	attached, err := s.store.AttachedObjects(ctx, BottleID)
	if err != nil {
		return err
	}
	if prev, ok := attached[BottleID]; ok {
		prev.Object.Operation = planningscene.Remove
		if err := s.store.ApplyAttachedCollisionObject(ctx, prev); err != nil {
			return errors.Wrap(err, "detaching bottle")
		}
		s.logger.CDebugw(ctx, "detached bottle", "link", prev.LinkName)
	}

	objects := make([]planningscene.CollisionObject, 0, 2)
	for _, item := range []struct {
		id       string
		resource string
		pose     *referenceframe.PoseInFrame
	}{
		{BottleID, bottleMesh, bottle},
		{GlassID, glassMesh, glass},
	} {
		obj, err := CollisionObjectFromResource(ctx, s.loader, item.id, item.resource)
		if err != nil {
			return err
		}
		obj.Frame = item.pose.Parent()
		// the input pose is a point on the table, the mesh origin is its center
		pt := item.pose.Pose().Point()
		pt.Z += ComputeMeshHeight(obj.Meshes[0])/2 + placementClearance
		obj.MeshPoses[0] = spatialmath.NewPose(pt, item.pose.Pose().Orientation())
		objects = append(objects, obj)
	}

	if err := s.store.ApplyCollisionObjects(ctx, objects); err != nil {
		return errors.Wrap(err, "adding bottle and glass")
	}
	return nil
}

// CollisionObjectFromResource loads a mesh resource into a collision object with the given id
// holding that one mesh at the identity pose, to be added to the scene.
func CollisionObjectFromResource(ctx context.Context, loader meshes.Loader, id, resource string) (planningscene.CollisionObject, error) {
	mesh, err := loader.Load(ctx, resource)
	if err != nil {
		return planningscene.CollisionObject{}, errors.Wrapf(err, "loading mesh for %q", id)
	}
	return planningscene.CollisionObject{
		ID:        id,
		Meshes:    []*spatialmath.Mesh{mesh},
		MeshPoses: []spatialmath.Pose{spatialmath.NewZeroPose()},
		Operation: planningscene.Add,
	}, nil
}

// ComputeMeshHeight returns the z extent of the mesh.
func ComputeMeshHeight(mesh *spatialmath.Mesh) float64 {
	return mesh.Extents().Z
}
