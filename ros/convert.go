package ros

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/pourdemo/planningscene"
	"go.viam.com/pourdemo/solution"
	"go.viam.com/pourdemo/spatialmath"
)

// ToPose converts a geometry_msgs/Pose, whose position is in meters.
func (p Pose) ToPose() spatialmath.Pose {
	q := p.Orientation
	return spatialmath.NewPose(
		r3.Vector{X: p.Position.X, Y: p.Position.Y, Z: p.Position.Z},
		spatialmath.NewQuaternion(q.W, q.X, q.Y, q.Z),
	)
}

// NewPoseMsg converts a pose into a geometry_msgs/Pose.
func NewPoseMsg(p spatialmath.Pose) Pose {
	pt := p.Point()
	q := p.Orientation().Quaternion()
	return Pose{
		Position:    Point{X: pt.X, Y: pt.Y, Z: pt.Z},
		Orientation: Quaternion{X: q.Imag, Y: q.Jmag, Z: q.Kmag, W: q.Real},
	}
}

// ToMesh converts a shape_msgs/Mesh.
func (m Mesh) ToMesh(label string) (*spatialmath.Mesh, error) {
	vertices := lo.Map(m.Vertices, func(p Point, _ int) r3.Vector { return r3.Vector{X: p.X, Y: p.Y, Z: p.Z} })
	triangles := make([]*spatialmath.Triangle, 0, len(m.Triangles))
	for i, t := range m.Triangles {
		for _, idx := range t.VertexIndices {
			if int(idx) >= len(vertices) {
				return nil, errors.Errorf("triangle %d references vertex %d of %d", i, idx, len(vertices))
			}
		}
		v := t.VertexIndices
		triangles = append(triangles, spatialmath.NewTriangle(vertices[v[0]], vertices[v[1]], vertices[v[2]]))
	}
	return spatialmath.NewMesh(spatialmath.NewZeroPose(), triangles, label), nil
}

// ToCollisionObject converts a moveit_msgs/CollisionObject.
func (c CollisionObject) ToCollisionObject() (planningscene.CollisionObject, error) {
	if c.Operation > uint8(planningscene.Move) {
		return planningscene.CollisionObject{}, errors.Errorf("collision object %q has unknown operation %d", c.ID, c.Operation)
	}
	obj := planningscene.CollisionObject{
		ID:        c.ID,
		Frame:     c.Header.FrameID,
		Pose:      c.Pose.ToPose(),
		Operation: planningscene.Operation(c.Operation),
	}
	for _, p := range c.Primitives {
		obj.Primitives = append(obj.Primitives, planningscene.SolidPrimitive{
			Type:       planningscene.PrimitiveType(p.Type),
			Dimensions: append([]float64(nil), p.Dimensions...),
		})
	}
	obj.PrimitivePoses = lo.Map(c.PrimitivePoses, func(p Pose, _ int) spatialmath.Pose { return p.ToPose() })
	for i, m := range c.Meshes {
		mesh, err := m.ToMesh(c.ID)
		if err != nil {
			return planningscene.CollisionObject{}, errors.Wrapf(err, "collision object %q mesh %d", c.ID, i)
		}
		obj.Meshes = append(obj.Meshes, mesh)
	}
	obj.MeshPoses = lo.Map(c.MeshPoses, func(p Pose, _ int) spatialmath.Pose { return p.ToPose() })
	return obj, nil
}

// ToDiff converts a moveit_msgs/PlanningScene. A message with no name, no objects and no
// attached objects is the empty diff, not an empty full scene.
func (ps PlanningScene) ToDiff() (planningscene.Diff, error) {
	diff := planningscene.Diff{Name: ps.Name, IsDiff: ps.IsDiff}
	if ps.Name == "" && len(ps.World.CollisionObjects) == 0 && len(ps.RobotState.AttachedCollisionObjects) == 0 {
		diff.IsDiff = true
		return diff, nil
	}
	for _, c := range ps.World.CollisionObjects {
		obj, err := c.ToCollisionObject()
		if err != nil {
			return planningscene.Diff{}, err
		}
		diff.World = append(diff.World, obj)
	}
	for _, a := range ps.RobotState.AttachedCollisionObjects {
		obj, err := a.Object.ToCollisionObject()
		if err != nil {
			return planningscene.Diff{}, err
		}
		diff.Attached = append(diff.Attached, planningscene.AttachedCollisionObject{
			LinkName:   a.LinkName,
			Object:     obj,
			TouchLinks: append([]string(nil), a.TouchLinks...),
		})
	}
	return diff, nil
}

// ToJointTrajectory converts a trajectory_msgs/JointTrajectory.
func (jt JointTrajectory) ToJointTrajectory() solution.JointTrajectory {
	out := solution.JointTrajectory{
		Frame:      jt.Header.FrameID,
		JointNames: append([]string(nil), jt.JointNames...),
	}
	for _, p := range jt.Points {
		out.Points = append(out.Points, solution.JointTrajectoryPoint{
			Positions:     p.Positions,
			Velocities:    p.Velocities,
			Accelerations: p.Accelerations,
			Effort:        p.Effort,
			TimeFromStart: p.TimeFromStart.Duration(),
		})
	}
	return out
}

// ToSolution converts a moveit_task_constructor_msgs/Solution.
func (s Solution) ToSolution() (*solution.Solution, error) {
	out := &solution.Solution{TaskID: s.TaskID}
	for i, st := range s.SubTrajectory {
		diff, err := st.SceneDiff.ToDiff()
		if err != nil {
			return nil, errors.Wrapf(err, "subtrajectory %d scene diff", i)
		}
		out.SubTrajectories = append(out.SubTrajectories, solution.SubTrajectory{
			ID:         st.Info.ID,
			StageID:    st.Info.StageID,
			Cost:       st.Info.Cost,
			Comment:    st.Info.Comment,
			Trajectory: st.Trajectory.JointTrajectory.ToJointTrajectory(),
			SceneDiff:  diff,
		})
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
