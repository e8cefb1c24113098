package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	commonpb "go.viam.com/api/common/v1"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/pourdemo/utils"
)

// Pose represents a 6dof pose, position and orientation, with respect to the origin.
// The point is in meters.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

type pose struct {
	point       r3.Vector
	orientation quat.Number
}

// NewZeroPose returns a pose at (0,0,0) with the same orientation as whatever frame it is placed in.
func NewZeroPose() Pose {
	return &pose{orientation: quat.Number{Real: 1}}
}

// NewPose takes in a position and orientation and returns a Pose. A nil orientation is the identity.
func NewPose(p r3.Vector, o Orientation) Pose {
	if o == nil {
		return NewPoseFromPoint(p)
	}
	return &pose{point: p, orientation: o.Quaternion()}
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and stores it as a vector with no rotation.
func NewPoseFromPoint(p r3.Vector) Pose {
	return &pose{point: p, orientation: quat.Number{Real: 1}}
}

func (p *pose) Point() r3.Vector {
	return p.point
}

func (p *pose) Orientation() Orientation {
	q := p.orientation
	return (*quaternion)(&q)
}

func (p *pose) String() string {
	ovd := p.Orientation().OrientationVectorDegrees()
	return fmt.Sprintf("{X:%.4f Y:%.4f Z:%.4f OX:%.3f OY:%.3f OZ:%.3f Theta:%.2f°}",
		p.point.X, p.point.Y, p.point.Z, ovd.OX, ovd.OY, ovd.OZ, ovd.Theta)
}

// Compose treats Poses as functions A(x) and B(x), and produces a new function C(x) = A(B(x)).
func Compose(a, b Pose) Pose {
	pt := a.Point().Add(RotatePoint(a.Orientation(), b.Point()))
	return &pose{point: pt, orientation: quat.Mul(a.Orientation().Quaternion(), b.Orientation().Quaternion())}
}

// PoseBetween returns the difference between two poses, i.e. the pose that when composed with a gives b.
func PoseBetween(a, b Pose) Pose {
	inv := quat.Conj(a.Orientation().Quaternion())
	invO := (*quaternion)(&inv)
	return &pose{
		point:       RotatePoint(invO, b.Point().Sub(a.Point())),
		orientation: quat.Mul(inv, b.Orientation().Quaternion()),
	}
}

// PoseAlmostEqual checks whether two poses are almost equal, with points compared to within 1e-8 meters.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-8)
}

// PoseAlmostEqualEps checks whether two poses are almost equal, with points compared to within eps meters.
func PoseAlmostEqualEps(a, b Pose, eps float64) bool {
	return PoseAlmostCoincidentEps(a, b, eps) && OrientationAlmostEqual(a.Orientation(), b.Orientation())
}

// PoseAlmostCoincidentEps returns whether the two poses have points within eps of each other.
func PoseAlmostCoincidentEps(a, b Pose, eps float64) bool {
	return a.Point().Sub(b.Point()).Norm() <= eps
}

// PoseToProtobuf converts a pose to the pose format protobuf expects, in millimeters and an orientation
// vector in degrees.
func PoseToProtobuf(p Pose) *commonpb.Pose {
	final := &commonpb.Pose{}
	pt := p.Point()
	final.X = utils.MetersToMM(pt.X)
	final.Y = utils.MetersToMM(pt.Y)
	final.Z = utils.MetersToMM(pt.Z)
	poseOV := p.Orientation().OrientationVectorDegrees()
	final.Theta = poseOV.Theta
	final.OX = poseOV.OX
	final.OY = poseOV.OY
	final.OZ = poseOV.OZ
	return final
}

// NewPoseFromProtobuf creates a new pose from a protobuf pose.
func NewPoseFromProtobuf(pos *commonpb.Pose) Pose {
	if pos == nil {
		return NewZeroPose()
	}
	ovd := &OrientationVectorDegrees{Theta: pos.GetTheta(), OX: pos.GetOX(), OY: pos.GetOY(), OZ: pos.GetOZ()}
	return NewPose(
		r3.Vector{X: utils.MMToMeters(pos.GetX()), Y: utils.MMToMeters(pos.GetY()), Z: utils.MMToMeters(pos.GetZ())},
		ovd,
	)
}
