package spatialmath

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chenzhekl/goply"
	"github.com/golang/geo/r3"
	"github.com/hschendel/stl"
	"github.com/pkg/errors"
)

// ErrUnsupportedMeshFormat is returned when a mesh file extension is neither STL nor PLY.
var ErrUnsupportedMeshFormat = errors.New("unsupported mesh format")

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

// NewMeshFromFile reads an STL or PLY file, chosen by extension, into a mesh at the origin.
// Coordinates are taken as meters.
func NewMeshFromFile(path, label string) (*Mesh, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading mesh file %q", path)
	}
	var m *Mesh
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".stl":
		m, err = NewMeshFromSTL(bytes.NewReader(data), label)
	case ".ply":
		m, err = NewMeshFromPLY(bytes.NewReader(data), 1, label)
	default:
		return nil, errors.Wrapf(ErrUnsupportedMeshFormat, "%q", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing mesh file %q", path)
	}
	return m, nil
}

// NewMeshFromPLYBytes decodes the PLY payload of a protobuf mesh, which is in millimeters.
func NewMeshFromPLYBytes(pose Pose, data []byte, label string) (*Mesh, error) {
	m, err := NewMeshFromPLY(bytes.NewReader(data), 0.001, label)
	if err != nil {
		return nil, err
	}
	return m.WithPose(pose), nil
}

// NewMeshFromPLY reads an ascii PLY with x, y, z vertex properties and a vertex_indices face list.
// Polygonal faces are fanned into triangles. Every coordinate is multiplied by scale.
func NewMeshFromPLY(r io.Reader, scale float64, label string) (m *Mesh, err error) {
	// the ply parser reports malformed input by panicking
	defer func() {
		if rec := recover(); rec != nil {
			m = nil
			err = errors.Errorf("invalid ply: %v", rec)
		}
	}()
	ply := goply.New(r)

	vertexElems := ply.Elements("vertex")
	vertices := make([]r3.Vector, 0, len(vertexElems))
	for i, v := range vertexElems {
		var coords [3]float64
		for j, name := range []string{"x", "y", "z"} {
			f, ok := plyNumber(v.Property(name))
			if !ok {
				return nil, errors.Errorf("vertex %d is missing property %q", i, name)
			}
			coords[j] = f * scale
		}
		vertices = append(vertices, r3.Vector{X: coords[0], Y: coords[1], Z: coords[2]})
	}

	var triangles []*Triangle
	for i, f := range ply.Elements("face") {
		raw := f.Property("vertex_indices")
		if raw == nil {
			raw = f.Property("vertex_index")
		}
		list, ok := raw.([]interface{})
		if !ok || len(list) < 3 {
			return nil, errors.Errorf("face %d has no usable vertex index list", i)
		}
		idx := make([]int, 0, len(list))
		for _, el := range list {
			n, ok := plyNumber(el)
			if !ok || n < 0 || int(n) >= len(vertices) {
				return nil, errors.Errorf("face %d references invalid vertex %v", i, el)
			}
			idx = append(idx, int(n))
		}
		for k := 1; k+1 < len(idx); k++ {
			triangles = append(triangles, NewTriangle(vertices[idx[0]], vertices[idx[k]], vertices[idx[k+1]]))
		}
	}
	return NewMesh(NewZeroPose(), triangles, label), nil
}

func plyNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int8:
		return float64(n), true
	case uint8:
		return float64(n), true
	case int16:
		return float64(n), true
	case uint16:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint32:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// NewMeshFromSTL reads a binary or ascii STL.
func NewMeshFromSTL(r io.Reader, label string) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte("solid")) && isBinarySTL(data) {
		// binary files whose header starts with "solid" would be parsed as ascii
		data = append([]byte(nil), data...)
		copy(data, make([]byte, stlHeaderSize))
	}
	solid, err := stl.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "reading stl")
	}
	triangles := make([]*Triangle, 0, len(solid.Triangles))
	for _, t := range solid.Triangles {
		// the stored normal is recomputed from the winding
		triangles = append(triangles, NewTriangle(fromSTLVec(t.Vertices[0]), fromSTLVec(t.Vertices[1]), fromSTLVec(t.Vertices[2])))
	}
	return NewMesh(NewZeroPose(), triangles, label), nil
}

// isBinarySTL checks the triangle count against the payload size.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return uint64(len(data)) == uint64(stlHeaderSize+4)+uint64(count)*stlTriangleSize
}

func fromSTLVec(v stl.Vec3) r3.Vector {
	return r3.Vector{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

func toSTLVec(v r3.Vector) stl.Vec3 {
	return stl.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// WriteASCIISTL writes the triangles of the mesh, in the mesh frame, as an ascii STL.
func (m *Mesh) WriteASCIISTL(w io.Writer) error {
	name := m.label
	if name == "" {
		name = "mesh"
	}
	solid := &stl.Solid{Name: name, IsAscii: true, Triangles: make([]stl.Triangle, 0, len(m.triangles))}
	for _, t := range m.triangles {
		pts := t.Points()
		solid.Triangles = append(solid.Triangles, stl.Triangle{
			Normal:   toSTLVec(t.Normal()),
			Vertices: [3]stl.Vec3{toSTLVec(pts[0]), toSTLVec(pts[1]), toSTLVec(pts[2])},
		})
	}
	return solid.WriteAll(w)
}
