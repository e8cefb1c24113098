package spatialmath

import (
	"fmt"

	commonpb "go.viam.com/api/common/v1"

	"go.viam.com/pourdemo/utils"
)

type sphere struct {
	pose   Pose
	radius float64
	label  string
}

// NewSphere instantiates a new sphere Geometry. radius is in meters.
func NewSphere(offset Pose, radius float64, label string) (Geometry, error) {
	if radius < 0 {
		return nil, newBadGeometryDimensionsError("sphere")
	}
	return &sphere{pose: offset, radius: radius, label: label}, nil
}

func (s *sphere) String() string {
	pt := s.pose.Point()
	return fmt.Sprintf("Type: Sphere | Position: X:%.3f, Y:%.3f, Z:%.3f | Radius: %.3f", pt.X, pt.Y, pt.Z, s.radius)
}

func (s *sphere) Label() string {
	return s.label
}

func (s *sphere) SetLabel(label string) {
	s.label = label
}

func (s *sphere) Pose() Pose {
	return s.pose
}

// Radius returns the radius of the sphere in meters.
func (s *sphere) Radius() float64 {
	return s.radius
}

func (s *sphere) AlmostEqual(g Geometry) bool {
	other, ok := g.(*sphere)
	if !ok {
		return false
	}
	return PoseAlmostEqualEps(s.pose, other.pose, 1e-6) && utils.Float64AlmostEqual(s.radius, other.radius, 1e-8)
}

func (s *sphere) Transform(toPremultiply Pose) Geometry {
	return &sphere{pose: Compose(toPremultiply, s.pose), radius: s.radius, label: s.label}
}

func (s *sphere) ToProtobuf() *commonpb.Geometry {
	return &commonpb.Geometry{
		Center:       PoseToProtobuf(s.pose),
		GeometryType: &commonpb.Geometry_Sphere{Sphere: &commonpb.Sphere{RadiusMm: utils.MetersToMM(s.radius)}},
		Label:        s.label,
	}
}
