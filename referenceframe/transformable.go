// Package referenceframe packages poses and geometries with the name of the frame they are expressed in.
package referenceframe

import (
	commonpb "go.viam.com/api/common/v1"

	"go.viam.com/pourdemo/spatialmath"
)

// World is the name of the root frame of a scene.
const World = "world"

// Transformable is something that can be moved into another frame.
type Transformable interface {
	Transform(*PoseInFrame) Transformable
	Parent() string
	AlmostEqual(Transformable) bool
}

// PoseInFrame is a data structure that packages a pose with the name of the
// frame in which it was observed.
type PoseInFrame struct {
	parent string
	pose   spatialmath.Pose
}

// NewPoseInFrame generates a new PoseInFrame. An empty parent means the world frame.
func NewPoseInFrame(parent string, pose spatialmath.Pose) *PoseInFrame {
	if parent == "" {
		parent = World
	}
	if pose == nil {
		pose = spatialmath.NewZeroPose()
	}
	return &PoseInFrame{
		parent: parent,
		pose:   pose,
	}
}

// Parent returns the name of the frame in which the pose was observed.
func (pF *PoseInFrame) Parent() string {
	return pF.parent
}

// Pose returns the pose that was observed.
func (pF *PoseInFrame) Pose() spatialmath.Pose {
	return pF.pose
}

// SetParent sets the name of the frame in which the pose was observed.
func (pF *PoseInFrame) SetParent(parent string) {
	pF.parent = parent
}

// Transform changes the PoseInFrame pf into the reference frame specified by the tf argument.
func (pF *PoseInFrame) Transform(tf *PoseInFrame) Transformable {
	return NewPoseInFrame(tf.parent, spatialmath.Compose(tf.pose, pF.pose))
}

// AlmostEqual checks if the PoseInFrame is equal to another Transformable.
func (pF *PoseInFrame) AlmostEqual(other Transformable) bool {
	if pF2, ok := other.(*PoseInFrame); ok {
		return pF.parent == pF2.parent && spatialmath.PoseAlmostEqual(pF.pose, pF2.pose)
	}
	return false
}

// PoseInFrameToProtobuf converts a PoseInFrame struct to a
// PoseInFrame message as specified in common.proto.
func PoseInFrameToProtobuf(framedPose *PoseInFrame) *commonpb.PoseInFrame {
	return &commonpb.PoseInFrame{
		ReferenceFrame: framedPose.parent,
		Pose:           spatialmath.PoseToProtobuf(framedPose.pose),
	}
}

// ProtobufToPoseInFrame converts a PoseInFrame message as specified in
// common.proto to a PoseInFrame struct.
func ProtobufToPoseInFrame(proto *commonpb.PoseInFrame) *PoseInFrame {
	return NewPoseInFrame(proto.GetReferenceFrame(), spatialmath.NewPoseFromProtobuf(proto.GetPose()))
}

// GeometriesInFrame is a data structure that packages geometries with the name of the frame in which it was observed.
type GeometriesInFrame struct {
	parent     string
	geometries []spatialmath.Geometry
}

// NewGeometriesInFrame generates a new GeometriesInFrame.
func NewGeometriesInFrame(parent string, geometries []spatialmath.Geometry) *GeometriesInFrame {
	if parent == "" {
		parent = World
	}
	return &GeometriesInFrame{
		parent:     parent,
		geometries: geometries,
	}
}

// Parent returns the name of the frame in which the geometries were observed.
func (gF *GeometriesInFrame) Parent() string {
	return gF.parent
}

// Geometries returns the geometries observed.
func (gF *GeometriesInFrame) Geometries() []spatialmath.Geometry {
	return gF.geometries
}

// Transform moves every geometry into the frame of tf.
func (gF *GeometriesInFrame) Transform(tf *PoseInFrame) Transformable {
	geometries := make([]spatialmath.Geometry, 0, len(gF.geometries))
	for _, geometry := range gF.geometries {
		geometries = append(geometries, geometry.Transform(tf.pose))
	}
	return NewGeometriesInFrame(tf.parent, geometries)
}

// AlmostEqual compares frames and geometries pairwise.
func (gF *GeometriesInFrame) AlmostEqual(other Transformable) bool {
	gF2, ok := other.(*GeometriesInFrame)
	if !ok || gF.parent != gF2.parent || len(gF.geometries) != len(gF2.geometries) {
		return false
	}
	for i := range gF.geometries {
		if !gF.geometries[i].AlmostEqual(gF2.geometries[i]) {
			return false
		}
	}
	return true
}

// GeometriesInFrameToProtobuf converts a GeometriesInFrame struct to a GeometriesInFrame message as specified in common.proto.
func GeometriesInFrameToProtobuf(framedGeometries *GeometriesInFrame) *commonpb.GeometriesInFrame {
	geometries := make([]*commonpb.Geometry, 0, len(framedGeometries.geometries))
	for _, geometry := range framedGeometries.geometries {
		geometries = append(geometries, geometry.ToProtobuf())
	}
	return &commonpb.GeometriesInFrame{
		ReferenceFrame: framedGeometries.parent,
		Geometries:     geometries,
	}
}

// ProtobufToGeometriesInFrame converts a GeometriesInFrame message as specified in common.proto to a GeometriesInFrame struct.
func ProtobufToGeometriesInFrame(proto *commonpb.GeometriesInFrame) (*GeometriesInFrame, error) {
	geometries := make([]spatialmath.Geometry, 0, len(proto.GetGeometries()))
	for _, geometry := range proto.GetGeometries() {
		g, err := spatialmath.NewGeometryFromProto(geometry)
		if err != nil {
			return nil, err
		}
		geometries = append(geometries, g)
	}
	return NewGeometriesInFrame(proto.GetReferenceFrame(), geometries), nil
}
