// Package planningscene models the collision objects a motion planner plans around and the
// store that holds them.
package planningscene

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/pourdemo/referenceframe"
	"go.viam.com/pourdemo/spatialmath"
)

// Operation is what applying a collision object does to the scene.
type Operation byte

// The operations use the wire values of moveit_msgs/CollisionObject.
const (
	// Add inserts the object, replacing any object with the same id.
	Add Operation = iota
	// Remove deletes the object; on an attached object it detaches it back into the world.
	Remove
	// Append adds the shapes of the object to an existing one, or adds it if absent.
	Append
	// Move changes the pose of an existing object, keeping its shapes.
	Move
)

func (o Operation) String() string {
	switch o {
	case Add:
		return "ADD"
	case Remove:
		return "REMOVE"
	case Append:
		return "APPEND"
	case Move:
		return "MOVE"
	default:
		return fmt.Sprintf("Operation(%d)", byte(o))
	}
}

// PrimitiveType enumerates solid primitive shapes, numbered like shape_msgs/SolidPrimitive.
type PrimitiveType byte

// Primitive shapes.
const (
	PrimitiveBox PrimitiveType = iota + 1
	PrimitiveSphere
	PrimitiveCylinder
	PrimitiveCone
)

func (p PrimitiveType) String() string {
	switch p {
	case PrimitiveBox:
		return "box"
	case PrimitiveSphere:
		return "sphere"
	case PrimitiveCylinder:
		return "cylinder"
	case PrimitiveCone:
		return "cone"
	default:
		return fmt.Sprintf("PrimitiveType(%d)", byte(p))
	}
}

// SolidPrimitive is a basic shape. Dimensions are in meters and ordered like shape_msgs:
// box [x, y, z], sphere [radius], cylinder and cone [height, radius].
type SolidPrimitive struct {
	Type       PrimitiveType
	Dimensions []float64
}

// NewBoxPrimitive returns a box primitive with the given side lengths.
func NewBoxPrimitive(x, y, z float64) SolidPrimitive {
	return SolidPrimitive{Type: PrimitiveBox, Dimensions: []float64{x, y, z}}
}

func (sp SolidPrimitive) validate() error {
	want := map[PrimitiveType]int{PrimitiveBox: 3, PrimitiveSphere: 1, PrimitiveCylinder: 2, PrimitiveCone: 2}
	n, ok := want[sp.Type]
	if !ok {
		return errors.Errorf("unknown primitive type %d", byte(sp.Type))
	}
	if len(sp.Dimensions) != n {
		return errors.Errorf("%s primitive needs %d dimensions, got %d", sp.Type, n, len(sp.Dimensions))
	}
	return nil
}

// Geometry converts the primitive into a geometry at pose. Cylinders and cones are represented
// by their enclosing capsule.
func (sp SolidPrimitive) Geometry(pose spatialmath.Pose, label string) (spatialmath.Geometry, error) {
	if err := sp.validate(); err != nil {
		return nil, err
	}
	switch sp.Type {
	case PrimitiveBox:
		return spatialmath.NewBox(pose, r3.Vector{X: sp.Dimensions[0], Y: sp.Dimensions[1], Z: sp.Dimensions[2]}, label)
	case PrimitiveSphere:
		return spatialmath.NewSphere(pose, sp.Dimensions[0], label)
	default:
		height, radius := sp.Dimensions[0], sp.Dimensions[1]
		return spatialmath.NewCapsule(pose, radius, math.Max(height+2*radius, 2*radius), label)
	}
}

// CollisionObject is a named set of shapes in a frame. Shape poses are relative to Pose, which
// is relative to Frame.
type CollisionObject struct {
	ID             string
	Frame          string
	Pose           spatialmath.Pose
	Primitives     []SolidPrimitive
	PrimitivePoses []spatialmath.Pose
	Meshes         []*spatialmath.Mesh
	MeshPoses      []spatialmath.Pose
	Operation      Operation
}

// Validate checks that the object has an id and that every shape has a pose.
func (o *CollisionObject) Validate() error {
	if o.ID == "" && o.Operation != Remove {
		return errors.Errorf("collision object with operation %s must have an id", o.Operation)
	}
	if len(o.Primitives) != len(o.PrimitivePoses) {
		return errors.Errorf("collision object %q has %d primitives but %d primitive poses",
			o.ID, len(o.Primitives), len(o.PrimitivePoses))
	}
	if len(o.Meshes) != len(o.MeshPoses) {
		return errors.Errorf("collision object %q has %d meshes but %d mesh poses", o.ID, len(o.Meshes), len(o.MeshPoses))
	}
	for i, p := range o.Primitives {
		if err := p.validate(); err != nil {
			return errors.Wrapf(err, "collision object %q primitive %d", o.ID, i)
		}
	}
	return nil
}

// ShapeCount returns the number of primitives and meshes.
func (o *CollisionObject) ShapeCount() int {
	return len(o.Primitives) + len(o.Meshes)
}

// ParentFrame returns the frame of the object, defaulting to the world frame.
func (o *CollisionObject) ParentFrame() string {
	if o.Frame == "" {
		return referenceframe.World
	}
	return o.Frame
}

// Geometries returns every shape of the object placed in its parent frame. A single shape is
// labeled with the object id, several with "<id>:<index>".
func (o *CollisionObject) Geometries() ([]spatialmath.Geometry, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	objectPose := o.Pose
	if objectPose == nil {
		objectPose = spatialmath.NewZeroPose()
	}
	label := func(i int) string {
		if o.ShapeCount() == 1 {
			return o.ID
		}
		return fmt.Sprintf("%s:%d", o.ID, i)
	}
	geometries := make([]spatialmath.Geometry, 0, o.ShapeCount())
	for i, p := range o.Primitives {
		g, err := p.Geometry(spatialmath.Compose(objectPose, poseOrZero(o.PrimitivePoses[i])), label(i))
		if err != nil {
			return nil, errors.Wrapf(err, "collision object %q primitive %d", o.ID, i)
		}
		geometries = append(geometries, g)
	}
	for i, m := range o.Meshes {
		idx := len(o.Primitives) + i
		placed := m.WithPose(spatialmath.Compose(objectPose, poseOrZero(o.MeshPoses[i])))
		placed.SetLabel(label(idx))
		geometries = append(geometries, placed)
	}
	return geometries, nil
}

// Clone returns a copy of the object whose slices can be modified independently.
func (o CollisionObject) Clone() CollisionObject {
	o.Primitives = append([]SolidPrimitive(nil), o.Primitives...)
	o.PrimitivePoses = append([]spatialmath.Pose(nil), o.PrimitivePoses...)
	o.Meshes = append([]*spatialmath.Mesh(nil), o.Meshes...)
	o.MeshPoses = append([]spatialmath.Pose(nil), o.MeshPoses...)
	return o
}

func poseOrZero(p spatialmath.Pose) spatialmath.Pose {
	if p == nil {
		return spatialmath.NewZeroPose()
	}
	return p
}

// AttachedCollisionObject is a collision object rigidly attached to a robot link.
type AttachedCollisionObject struct {
	LinkName   string
	Object     CollisionObject
	TouchLinks []string
}

// Clone returns a copy of the attached object whose slices can be modified independently.
func (a AttachedCollisionObject) Clone() AttachedCollisionObject {
	a.Object = a.Object.Clone()
	a.TouchLinks = append([]string(nil), a.TouchLinks...)
	return a
}

// Diff is a change to a planning scene. When IsDiff is false the diff describes the full scene
// and replaces whatever the store holds.
type Diff struct {
	Name     string
	IsDiff   bool
	World    []CollisionObject
	Attached []AttachedCollisionObject
}

// IsEmpty returns whether applying the diff can change the scene.
func (d *Diff) IsEmpty() bool {
	return d.IsDiff && len(d.World) == 0 && len(d.Attached) == 0
}
