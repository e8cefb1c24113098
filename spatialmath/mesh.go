package spatialmath

import (
	"bytes"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	commonpb "go.viam.com/api/common/v1"

	"go.viam.com/pourdemo/utils"
)

const plyContentType = "ply"

// Mesh is a collision geometry made of triangles. Triangle points are in the frame of the mesh,
// like the corners of a box, and the pose places that frame in its parent.
type Mesh struct {
	pose      Pose
	triangles []*Triangle
	label     string
}

// NewMesh creates a mesh from the given triangles placed at pose.
func NewMesh(pose Pose, triangles []*Triangle, label string) *Mesh {
	if pose == nil {
		pose = NewZeroPose()
	}
	return &Mesh{
		pose:      pose,
		triangles: triangles,
		label:     label,
	}
}

// Pose returns the pose of the mesh.
func (m *Mesh) Pose() Pose {
	return m.pose
}

// Triangles returns the triangles of the mesh in the mesh frame.
func (m *Mesh) Triangles() []*Triangle {
	return m.triangles
}

// Label returns the label of the mesh.
func (m *Mesh) Label() string {
	return m.label
}

// SetLabel sets the label of the mesh.
func (m *Mesh) SetLabel(label string) {
	m.label = label
}

func (m *Mesh) String() string {
	pt := m.pose.Point()
	return fmt.Sprintf("Type: Mesh | Position: X:%.3f, Y:%.3f, Z:%.3f | Triangles: %d", pt.X, pt.Y, pt.Z, len(m.triangles))
}

// Transform premultiplies the mesh pose with a transform.
func (m *Mesh) Transform(pose Pose) Geometry {
	return &Mesh{
		pose:      Compose(pose, m.pose),
		triangles: m.triangles,
		label:     m.label,
	}
}

// WithPose returns a copy of the mesh placed at the given pose.
func (m *Mesh) WithPose(pose Pose) *Mesh {
	return &Mesh{pose: pose, triangles: m.triangles, label: m.label}
}

// AlmostEqual compares two meshes by pose and triangle vertices.
func (m *Mesh) AlmostEqual(g Geometry) bool {
	other, ok := g.(*Mesh)
	if !ok || len(m.triangles) != len(other.triangles) {
		return false
	}
	if !PoseAlmostEqualEps(m.pose, other.pose, 1e-6) {
		return false
	}
	for i, t := range m.triangles {
		p, q := t.Points(), other.triangles[i].Points()
		for j := range p {
			if p[j].Sub(q[j]).Norm() > 1e-8 {
				return false
			}
		}
	}
	return true
}

// BoundingBox returns the axis aligned min and max corners of the mesh in the mesh frame.
// An empty mesh has zero corners.
func (m *Mesh) BoundingBox() (r3.Vector, r3.Vector) {
	if len(m.triangles) == 0 {
		return r3.Vector{}, r3.Vector{}
	}
	minPt := r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	maxPt := r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, t := range m.triangles {
		for _, p := range t.Points() {
			minPt = r3.Vector{X: math.Min(minPt.X, p.X), Y: math.Min(minPt.Y, p.Y), Z: math.Min(minPt.Z, p.Z)}
			maxPt = r3.Vector{X: math.Max(maxPt.X, p.X), Y: math.Max(maxPt.Y, p.Y), Z: math.Max(maxPt.Z, p.Z)}
		}
	}
	return minPt, maxPt
}

// Extents returns the side lengths of the mesh bounding box.
func (m *Mesh) Extents() r3.Vector {
	minPt, maxPt := m.BoundingBox()
	return maxPt.Sub(minPt)
}

// ToProtobuf converts a Mesh to its protobuf representation, an ascii PLY in millimeters.
func (m *Mesh) ToProtobuf() *commonpb.Geometry {
	return &commonpb.Geometry{
		Center: PoseToProtobuf(m.pose),
		GeometryType: &commonpb.Geometry_Mesh{
			Mesh: &commonpb.Mesh{
				ContentType: plyContentType,
				Mesh:        m.TrianglesToPLYBytes(1000),
			},
		},
		Label: m.label,
	}
}

// TrianglesToPLYBytes encodes the triangles of the mesh as an ascii PLY, multiplying every
// coordinate by scale. Vertices are not deduplicated.
func (m *Mesh) TrianglesToPLYBytes(scale float64) []byte {
	var buf bytes.Buffer
	buf.WriteString("ply\n")
	buf.WriteString("format ascii 1.0\n")
	fmt.Fprintf(&buf, "element vertex %d\n", len(m.triangles)*3)
	buf.WriteString("property double x\n")
	buf.WriteString("property double y\n")
	buf.WriteString("property double z\n")
	fmt.Fprintf(&buf, "element face %d\n", len(m.triangles))
	buf.WriteString("property list uchar int vertex_indices\n")
	buf.WriteString("end_header\n")
	for _, t := range m.triangles {
		for _, p := range t.Points() {
			fmt.Fprintf(&buf, "%s %s %s\n", formatCoord(p.X*scale), formatCoord(p.Y*scale), formatCoord(p.Z*scale))
		}
	}
	for i := range m.triangles {
		fmt.Fprintf(&buf, "3 %d %d %d\n", 3*i, 3*i+1, 3*i+2)
	}
	return buf.Bytes()
}

func formatCoord(f float64) string {
	if utils.Float64AlmostEqual(f, 0, 1e-12) {
		return "0"
	}
	return fmt.Sprintf("%g", f)
}
