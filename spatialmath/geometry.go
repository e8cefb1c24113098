package spatialmath

import (
	"fmt"

	"github.com/pkg/errors"
	commonpb "go.viam.com/api/common/v1"
)

// Geometry is an entry point with which to access all types of collision geometries.
type Geometry interface {
	Pose() Pose
	Transform(Pose) Geometry
	ToProtobuf() *commonpb.Geometry
	Label() string
	SetLabel(string)
	AlmostEqual(Geometry) bool
	fmt.Stringer
}

// ErrBadGeometryDimensions is returned when a geometry is constructed with invalid dimensions.
var ErrBadGeometryDimensions = errors.New("invalid dimension(s) for geometry")

func newBadGeometryDimensionsError(kind string) error {
	return errors.Wrapf(ErrBadGeometryDimensions, "%s", kind)
}

// NewGeometryFromProto instantiates a new Geometry from a protobuf Geometry message.
func NewGeometryFromProto(geometry *commonpb.Geometry) (Geometry, error) {
	pose := NewPoseFromProtobuf(geometry.GetCenter())
	label := geometry.GetLabel()
	if b := geometry.GetBox().GetDimsMm(); b != nil {
		return NewBox(pose, mmVector(b), label)
	}
	if s := geometry.GetSphere(); s != nil {
		return NewSphere(pose, s.GetRadiusMm()/1000, label)
	}
	if c := geometry.GetCapsule(); c != nil {
		return NewCapsule(pose, c.GetRadiusMm()/1000, c.GetLengthMm()/1000, label)
	}
	if m := geometry.GetMesh(); m != nil {
		if m.GetContentType() != plyContentType {
			return nil, errors.Errorf("unsupported mesh content type %q", m.GetContentType())
		}
		return NewMeshFromPLYBytes(pose, m.GetMesh(), label)
	}
	return nil, errors.New("cannot have nil geometry type")
}
