package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Triangle is three points in space; its normal follows the right hand rule over p0, p1, p2.
type Triangle struct {
	p0 r3.Vector
	p1 r3.Vector
	p2 r3.Vector

	normal r3.Vector
}

// NewTriangle creates a triangle from three points.
func NewTriangle(p0, p1, p2 r3.Vector) *Triangle {
	return &Triangle{
		p0:     p0,
		p1:     p1,
		p2:     p2,
		normal: PlaneNormal(p0, p1, p2),
	}
}

// Points returns the vertices of the triangle.
func (t *Triangle) Points() []r3.Vector {
	return []r3.Vector{t.p0, t.p1, t.p2}
}

// Normal returns the unit normal of the triangle.
func (t *Triangle) Normal() r3.Vector {
	return t.normal
}

// Area returns the area of the triangle.
func (t *Triangle) Area() float64 {
	return t.p1.Sub(t.p0).Cross(t.p2.Sub(t.p0)).Norm() / 2
}

// Transform returns the triangle with every vertex moved by the pose.
func (t *Triangle) Transform(p Pose) *Triangle {
	move := func(v r3.Vector) r3.Vector {
		return Compose(p, NewPoseFromPoint(v)).Point()
	}
	return NewTriangle(move(t.p0), move(t.p1), move(t.p2))
}

// PlaneNormal returns the plane normal of the triangle defined by the three given points.
// Degenerate triangles have a zero normal.
func PlaneNormal(p0, p1, p2 r3.Vector) r3.Vector {
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	if n.Norm() == 0 {
		return n
	}
	return n.Normalize()
}
