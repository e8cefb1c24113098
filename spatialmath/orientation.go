// Package spatialmath defines spatial mathematical operations.
// Positions are expressed in meters; conversions to the protobuf api happen in millimeters.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/pourdemo/utils"
)

// angleEpsilon is the radian tolerance used when deciding whether a vector points along the Z pole.
const angleEpsilon = 0.0001

// Orientation is an interface used to express the different parameterizations of the orientation
// of a rigid object or a frame of reference in 3D Euclidean space.
type Orientation interface {
	OrientationVectorDegrees() *OrientationVectorDegrees
	AxisAngles() *R4AA
	Quaternion() quat.Number
}

// NewZeroOrientation returns an orientatation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return &quaternion{1, 0, 0, 0}
}

// NewQuaternion returns an Orientation from the given quaternion components. The quaternion is
// normalized; an all-zero quaternion is treated as the identity.
func NewQuaternion(real, imag, jmag, kmag float64) Orientation {
	q := quat.Number{Real: real, Imag: imag, Jmag: jmag, Kmag: kmag}
	n := quat.Abs(q)
	if n == 0 {
		return NewZeroOrientation()
	}
	q = quat.Scale(1/n, q)
	return (*quaternion)(&q)
}

// OrientationAlmostEqual will return a bool describing whether 2 poses have approximately the same orientation.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return QuaternionAlmostEqual(o1.Quaternion(), o2.Quaternion(), 1e-5)
}

// QuaternionAlmostEqual is an equality test for two quaternions, treating q and -q as the same rotation.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	same := utils.Float64AlmostEqual(a.Real, b.Real, tol) &&
		utils.Float64AlmostEqual(a.Imag, b.Imag, tol) &&
		utils.Float64AlmostEqual(a.Jmag, b.Jmag, tol) &&
		utils.Float64AlmostEqual(a.Kmag, b.Kmag, tol)
	if same {
		return true
	}
	return utils.Float64AlmostEqual(a.Real, -b.Real, tol) &&
		utils.Float64AlmostEqual(a.Imag, -b.Imag, tol) &&
		utils.Float64AlmostEqual(a.Jmag, -b.Jmag, tol) &&
		utils.Float64AlmostEqual(a.Kmag, -b.Kmag, tol)
}

// RotatePoint rotates v by the given orientation.
func RotatePoint(o Orientation, v r3.Vector) r3.Vector {
	q := o.Quaternion()
	rotated := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}
}

type quaternion quat.Number

func (q *quaternion) Quaternion() quat.Number {
	return quat.Number(*q)
}

func (q *quaternion) AxisAngles() *R4AA {
	return QuatToR4AA(q.Quaternion())
}

func (q *quaternion) OrientationVectorDegrees() *OrientationVectorDegrees {
	return QuatToOVD(q.Quaternion())
}

// R4AA represents an R4 axis angle.
type R4AA struct {
	Theta float64 `json:"th"`
	RX    float64 `json:"x"`
	RY    float64 `json:"y"`
	RZ    float64 `json:"z"`
}

// ToQuat converts an R4 axis angle to a unit quaternion.
func (r4 *R4AA) ToQuat() quat.Number {
	axis := r3.Vector{X: r4.RX, Y: r4.RY, Z: r4.RZ}
	n := axis.Norm()
	if n == 0 || r4.Theta == 0 {
		return quat.Number{Real: 1}
	}
	axis = axis.Mul(1 / n)
	s := math.Sin(r4.Theta / 2)
	return quat.Number{Real: math.Cos(r4.Theta / 2), Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}

// Quaternion returns the orientation as a quaternion.
func (r4 *R4AA) Quaternion() quat.Number {
	return r4.ToQuat()
}

// AxisAngles returns the orientation in axis angle representation.
func (r4 *R4AA) AxisAngles() *R4AA {
	return r4
}

// OrientationVectorDegrees returns the orientation as an orientation vector in degrees.
func (r4 *R4AA) OrientationVectorDegrees() *OrientationVectorDegrees {
	return QuatToOVD(r4.ToQuat())
}

// QuatToR4AA converts a quat to an R4 axis angle in the same way the C++ Eigen library does.
// https://eigen.tuxfamily.org/dox/AngleAxis_8h_source.html
func QuatToR4AA(q quat.Number) *R4AA {
	denom := math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	angle := 2 * math.Atan2(denom, math.Abs(q.Real))
	if q.Real < 0 {
		denom *= -1
	}
	if denom < 1e-6 {
		return &R4AA{Theta: 0, RX: 0, RY: 0, RZ: 1}
	}
	return &R4AA{Theta: angle, RX: q.Imag / denom, RY: q.Jmag / denom, RZ: q.Kmag / denom}
}

// OrientationVectorDegrees is the orientation vector between two objects, with theta in degrees.
// The vector (OX, OY, OZ) is where the local +Z axis points and Theta is the rotation about it.
type OrientationVectorDegrees struct {
	Theta float64 `json:"th"`
	OX    float64 `json:"x"`
	OY    float64 `json:"y"`
	OZ    float64 `json:"z"`
}

// NewOrientationVectorDegrees returns an orientation vector pointing along +Z with no rotation.
func NewOrientationVectorDegrees() *OrientationVectorDegrees {
	return &OrientationVectorDegrees{OZ: 1}
}

// OrientationVectorDegrees returns itself.
func (ovd *OrientationVectorDegrees) OrientationVectorDegrees() *OrientationVectorDegrees {
	return ovd
}

// AxisAngles returns the orientation in axis angle representation.
func (ovd *OrientationVectorDegrees) AxisAngles() *R4AA {
	return QuatToR4AA(ovd.Quaternion())
}

// Quaternion returns the orientation as a quaternion.
// The vector is reached by rotating about Z by its longitude, then Y by its latitude, then Z by theta.
func (ovd *OrientationVectorDegrees) Quaternion() quat.Number {
	v := r3.Vector{X: ovd.OX, Y: ovd.OY, Z: ovd.OZ}
	if v.Norm() == 0 {
		v = r3.Vector{Z: 1}
	}
	v = v.Normalize()
	lat := math.Acos(math.Max(-1, math.Min(1, v.Z)))
	lon := 0.
	if 1-math.Abs(v.Z) > angleEpsilon {
		lon = math.Atan2(v.Y, v.X)
	}
	qLon := (&R4AA{Theta: lon, RZ: 1}).ToQuat()
	qLat := (&R4AA{Theta: lat, RY: 1}).ToQuat()
	qTheta := (&R4AA{Theta: utils.DegToRad(ovd.Theta), RZ: 1}).ToQuat()
	return quat.Mul(quat.Mul(qLon, qLat), qTheta)
}

// QuatToOVD converts a quaternion to an orientation vector in degrees.
func QuatToOVD(q quat.Number) *OrientationVectorDegrees {
	xAxis := r3.Vector{X: -1}
	zAxis := r3.Vector{Z: 1}
	o := (*quaternion)(&q)
	newX := RotatePoint(o, xAxis)
	newZ := RotatePoint(o, zAxis)
	ovd := &OrientationVectorDegrees{OX: newZ.X, OY: newZ.Y, OZ: newZ.Z}

	var theta float64
	if 1-math.Abs(newZ.Z) < angleEpsilon {
		// pointing along the pole, theta is the heading of local x
		theta = -math.Atan2(newX.Y, -newX.X)
		if newZ.Z < 0 {
			theta = -math.Atan2(newX.Y, newX.X)
		}
	} else {
		norm1 := newZ.Cross(newX)
		norm2 := newZ.Cross(zAxis)
		cosTheta := math.Max(-1, math.Min(1, norm1.Dot(norm2)/(norm1.Norm()*norm2.Norm())))
		theta = math.Acos(cosTheta)
		if theta > angleEpsilon {
			// acos loses the sign; rotate global z by -theta about the new z and see if it lands on the local plane
			testQ := (&R4AA{Theta: -theta, RX: newZ.X, RY: newZ.Y, RZ: newZ.Z}).ToQuat()
			testZ := RotatePoint((*quaternion)(&testQ), zAxis)
			norm3 := newZ.Cross(testZ)
			cosTest := norm1.Dot(norm3) / (norm1.Norm() * norm3.Norm())
			if 1-cosTest < angleEpsilon*angleEpsilon {
				theta = -theta
			}
		} else {
			theta = 0
		}
	}
	ovd.Theta = utils.RadToDeg(theta)
	return ovd
}
