package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	commonpb "go.viam.com/api/common/v1"

	"go.viam.com/pourdemo/utils"
)

// box is a collision geometry that represents a 3D rectangular prism, it has a pose and half size that fully define it.
type box struct {
	center   Pose
	halfSize r3.Vector
	label    string
}

// NewBox instantiates a new box Geometry. dims are full side lengths in meters.
func NewBox(pose Pose, dims r3.Vector, label string) (Geometry, error) {
	// Zero dimensions are allowed for bounding boxes.
	if dims.X < 0 || dims.Y < 0 || dims.Z < 0 {
		return nil, newBadGeometryDimensionsError("box")
	}
	return &box{center: pose, halfSize: dims.Mul(0.5), label: label}, nil
}

// String returns a human readable string that represents the box.
func (b *box) String() string {
	pt := b.center.Point()
	return fmt.Sprintf("Type: Box | Position: X:%.3f, Y:%.3f, Z:%.3f | Dims: X:%.3f, Y:%.3f, Z:%.3f",
		pt.X, pt.Y, pt.Z, 2*b.halfSize.X, 2*b.halfSize.Y, 2*b.halfSize.Z)
}

// SetLabel sets the label of this box.
func (b *box) SetLabel(label string) {
	b.label = label
}

// Label returns the label of this box.
func (b *box) Label() string {
	return b.label
}

// Pose returns the pose of the box.
func (b *box) Pose() Pose {
	return b.center
}

// Dims returns the full side lengths of the box.
func (b *box) Dims() r3.Vector {
	return b.halfSize.Mul(2)
}

// AlmostEqual compares the box with another geometry and checks if they are equivalent.
func (b *box) AlmostEqual(g Geometry) bool {
	other, ok := g.(*box)
	if !ok {
		return false
	}
	return utils.Float64AlmostEqual(b.halfSize.X, other.halfSize.X, 1e-8) &&
		utils.Float64AlmostEqual(b.halfSize.Y, other.halfSize.Y, 1e-8) &&
		utils.Float64AlmostEqual(b.halfSize.Z, other.halfSize.Z, 1e-8) &&
		PoseAlmostEqualEps(b.center, other.center, 1e-6)
}

// Transform premultiplies the box pose with a transform, allowing the box to be moved in space.
func (b *box) Transform(toPremultiply Pose) Geometry {
	return &box{center: Compose(toPremultiply, b.center), halfSize: b.halfSize, label: b.label}
}

// ToProtobuf converts the box to a Geometry proto message.
func (b *box) ToProtobuf() *commonpb.Geometry {
	return &commonpb.Geometry{
		Center: PoseToProtobuf(b.center),
		GeometryType: &commonpb.Geometry_Box{
			Box: &commonpb.RectangularPrism{DimsMm: &commonpb.Vector3{
				X: utils.MetersToMM(2 * b.halfSize.X),
				Y: utils.MetersToMM(2 * b.halfSize.Y),
				Z: utils.MetersToMM(2 * b.halfSize.Z),
			}},
		},
		Label: b.label,
	}
}

func mmVector(v *commonpb.Vector3) r3.Vector {
	return r3.Vector{X: utils.MMToMeters(v.GetX()), Y: utils.MMToMeters(v.GetY()), Z: utils.MMToMeters(v.GetZ())}
}
