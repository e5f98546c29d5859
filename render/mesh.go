package render

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/smasonuk/lsystree"
)

// Mesh is a tessellated geometry: shared points, convex faces indexing them
// and line segments.
type Mesh struct {
	Points []mgl64.Vec3
	Faces  [][]int
	Lines  [][2]int

	pointIndex map[mgl64.Vec3]int
}

func NewMesh() *Mesh {
	return &Mesh{pointIndex: make(map[mgl64.Vec3]int)}
}

// AddPoint returns the index of p, adding it if the mesh does not hold it yet.
func (m *Mesh) AddPoint(p mgl64.Vec3) int {
	if i, ok := m.pointIndex[p]; ok {
		return i
	}
	m.Points = append(m.Points, p)
	i := len(m.Points) - 1
	m.pointIndex[p] = i
	return i
}

// AddFace adds a polygon through the given points. Repeated neighbours are
// merged, so faces touching a collapsed ring become triangles; anything left
// with fewer than three corners is dropped.
func (m *Mesh) AddFace(pts ...mgl64.Vec3) {
	idx := make([]int, 0, len(pts))
	for _, p := range pts {
		i := m.AddPoint(p)
		if len(idx) > 0 && idx[len(idx)-1] == i {
			continue
		}
		idx = append(idx, i)
	}
	for len(idx) > 1 && idx[0] == idx[len(idx)-1] {
		idx = idx[:len(idx)-1]
	}
	if len(idx) < 3 {
		return
	}
	m.Faces = append(m.Faces, idx)
}

func (m *Mesh) AddLine(a, b mgl64.Vec3) {
	m.Lines = append(m.Lines, [2]int{m.AddPoint(a), m.AddPoint(b)})
}

// Tessellate meshes a geometry descriptor.
func Tessellate(g lsystree.Geometry) (*Mesh, error) {
	switch g := g.(type) {
	case lsystree.CylinderGeometry:
		return cylinder(g), nil
	case lsystree.SphereGeometry:
		return sphere(g), nil
	case lsystree.BladeGeometry:
		return blade(g), nil
	case lsystree.LineGeometry:
		m := NewMesh()
		m.AddLine(g.From, g.To)
		return m, nil
	}
	return nil, fmt.Errorf("tessellate: unsupported geometry %T", g)
}

func ring(radius, y float64, segments int) []mgl64.Vec3 {
	pts := make([]mgl64.Vec3, segments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = mgl64.Vec3{radius * math.Sin(a), y, radius * math.Cos(a)}
	}
	return pts
}

func cylinder(g lsystree.CylinderGeometry) *Mesh {
	m := NewMesh()
	n := max(g.RadialSegments, 3)
	bottom := ring(g.RadiusBottom, -g.Height/2, n)
	top := ring(g.RadiusTop, g.Height/2, n)

	for i := range n {
		j := (i + 1) % n
		m.AddFace(bottom[i], bottom[j], top[j], top[i])
	}
	m.AddFace(top...)
	rev := make([]mgl64.Vec3, n)
	for i, p := range bottom {
		rev[n-1-i] = p
	}
	m.AddFace(rev...)
	return m
}

func sphere(g lsystree.SphereGeometry) *Mesh {
	m := NewMesh()
	w := max(g.WidthSegments, 3)
	h := max(g.HeightSegments, 2)

	rows := make([][]mgl64.Vec3, h+1)
	for r := range rows {
		theta := math.Pi * float64(r) / float64(h)
		radius := g.Radius * math.Sin(theta)
		if r == 0 || r == h {
			radius = 0
		}
		rows[r] = ring(radius, g.Radius*math.Cos(theta), w)
	}
	for r := range h {
		for i := range w {
			j := (i + 1) % w
			m.AddFace(rows[r][i], rows[r][j], rows[r+1][j], rows[r+1][i])
		}
	}
	return m
}

func blade(g lsystree.BladeGeometry) *Mesh {
	m := NewMesh()
	pts := g.Points()
	for _, f := range g.Faces() {
		m.AddFace(pts[f[0]], pts[f[1]], pts[f[2]])
	}
	return m
}

// MeshCache keeps one mesh per geometry value. Geometry descriptors are
// comparable, so parts that only changed scale or color reuse their meshes.
// Meshes not fetched between two sweeps are dropped.
type MeshCache struct {
	meshes map[lsystree.Geometry]*Mesh
	used   map[lsystree.Geometry]bool
}

func NewMeshCache() *MeshCache {
	return &MeshCache{
		meshes: make(map[lsystree.Geometry]*Mesh),
		used:   make(map[lsystree.Geometry]bool),
	}
}

func (c *MeshCache) Get(g lsystree.Geometry) (*Mesh, error) {
	if m, ok := c.meshes[g]; ok {
		c.used[g] = true
		return m, nil
	}
	m, err := Tessellate(g)
	if err != nil {
		return nil, err
	}
	c.meshes[g] = m
	c.used[g] = true
	lsystree.Logger().Debug("tessellated", "geometry", fmt.Sprintf("%T", g), "points", len(m.Points), "faces", len(m.Faces))
	return m, nil
}

// Sweep drops every mesh not fetched since the previous sweep and returns
// how many were dropped.
func (c *MeshCache) Sweep() int {
	dropped := 0
	for g := range c.meshes {
		if !c.used[g] {
			delete(c.meshes, g)
			dropped++
		}
	}
	clear(c.used)
	return dropped
}

func (c *MeshCache) Len() int {
	return len(c.meshes)
}

// Clear drops every cached mesh.
func (c *MeshCache) Clear() {
	clear(c.meshes)
	clear(c.used)
}
