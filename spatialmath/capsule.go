package spatialmath

import (
	"fmt"

	"github.com/pkg/errors"
	commonpb "go.viam.com/api/common/v1"

	"go.viam.com/pourdemo/utils"
)

// capsule is a cylinder with hemispherical end caps, oriented along its local Z axis.
type capsule struct {
	pose   Pose
	radius float64
	length float64
	label  string
}

// NewCapsule instantiates a new capsule Geometry. length is the full tip-to-tip length in meters.
func NewCapsule(offset Pose, radius, length float64, label string) (Geometry, error) {
	if radius <= 0 || length <= 0 {
		return nil, newBadGeometryDimensionsError("capsule")
	}
	if length < radius*2 {
		return nil, errors.Errorf("capsule length %.3f must be at least twice the radius %.3f", length, radius)
	}
	if length == radius*2 {
		return NewSphere(offset, radius, label)
	}
	return &capsule{pose: offset, radius: radius, length: length, label: label}, nil
}

func (c *capsule) String() string {
	pt := c.pose.Point()
	return fmt.Sprintf("Type: Capsule | Position: X:%.3f, Y:%.3f, Z:%.3f | Radius: %.3f | Length: %.3f",
		pt.X, pt.Y, pt.Z, c.radius, c.length)
}

func (c *capsule) Label() string {
	return c.label
}

func (c *capsule) SetLabel(label string) {
	c.label = label
}

func (c *capsule) Pose() Pose {
	return c.pose
}

func (c *capsule) AlmostEqual(g Geometry) bool {
	other, ok := g.(*capsule)
	if !ok {
		return false
	}
	return PoseAlmostEqualEps(c.pose, other.pose, 1e-6) &&
		utils.Float64AlmostEqual(c.radius, other.radius, 1e-8) &&
		utils.Float64AlmostEqual(c.length, other.length, 1e-8)
}

func (c *capsule) Transform(toPremultiply Pose) Geometry {
	return &capsule{pose: Compose(toPremultiply, c.pose), radius: c.radius, length: c.length, label: c.label}
}

// ToProtobuf converts the capsule to a Geometry proto message.
func (c *capsule) ToProtobuf() *commonpb.Geometry {
	return &commonpb.Geometry{
		Center: PoseToProtobuf(c.pose),
		GeometryType: &commonpb.Geometry_Capsule{
			Capsule: &commonpb.Capsule{
				RadiusMm: utils.MetersToMM(c.radius),
				LengthMm: utils.MetersToMM(c.length),
			},
		},
		Label: c.label,
	}
}
