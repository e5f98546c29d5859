package render

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/smasonuk/lsystree"
)

// Polygon is one screen-space face ready to paint. Line polygons have two
// points and are stroked rather than filled.
type Polygon struct {
	Xs, Ys []float32
	Color  color.RGBA
	// Depth is the distance from the camera to the face centre.
	Depth float64
	Line  bool
}

// Renderer projects fragments through a camera onto a Width x Height screen.
type Renderer struct {
	Camera *Camera
	Width  int
	Height int

	cache *MeshCache
	polys []Polygon
}

func NewRenderer(cam *Camera, width, height int) *Renderer {
	return &Renderer{
		Camera: cam,
		Width:  width,
		Height: height,
		cache:  NewMeshCache(),
	}
}

func (r *Renderer) Cache() *MeshCache {
	return r.cache
}

// Render returns the visible polygons of frag ordered far to near, so painting
// them in order hides the back ones. The slice is reused by the next call.
// Cached meshes frag no longer uses are dropped.
func (r *Renderer) Render(frag *lsystree.Fragment) ([]Polygon, error) {
	r.polys = r.polys[:0]
	if frag == nil {
		return r.polys, nil
	}

	view := r.Camera.View()
	for _, n := range frag.Nodes() {
		toCamera := view.Mul4(n.Part.Transform())
		for _, prim := range n.Part.Primitives() {
			mesh, err := r.cache.Get(prim.Geometry)
			if err != nil {
				return nil, fmt.Errorf("render %s at %s: %w", prim.Name, n.Key, err)
			}
			r.addMesh(mesh, toCamera.Mul4(prim.Local()), prim)
		}
	}

	if n := r.cache.Sweep(); n > 0 {
		lsystree.Logger().Debug("dropped meshes", "count", n, "cached", r.cache.Len())
	}

	sort.SliceStable(r.polys, func(i, j int) bool {
		return r.polys[i].Depth > r.polys[j].Depth
	})
	return r.polys, nil
}

func (r *Renderer) addMesh(mesh *Mesh, m mgl64.Mat4, prim *lsystree.Primitive) {
	pts := make([]mgl64.Vec3, len(mesh.Points))
	for i, p := range mesh.Points {
		pts[i] = m.Mul4x1(p.Vec4(1)).Vec3()
	}
	centre := m.Col(3).Vec3()

	for _, f := range mesh.Faces {
		poly := make([]mgl64.Vec3, len(f))
		for i, idx := range f {
			poly[i] = pts[idx]
		}
		r.addFace(poly, centre, prim)
	}

	for _, l := range mesh.Lines {
		a, b, ok := clipSegmentNear(pts[l[0]], pts[l[1]], r.Camera.Near)
		if !ok {
			continue
		}
		x0, y0 := r.project(a)
		x1, y1 := r.project(b)
		r.polys = append(r.polys, Polygon{
			Xs:    []float32{x0, x1},
			Ys:    []float32{y0, y1},
			Color: prim.Color,
			Depth: a.Add(b).Mul(0.5).Len(),
			Line:  true,
		})
	}
}

func (r *Renderer) addFace(poly []mgl64.Vec3, centre mgl64.Vec3, prim *lsystree.Primitive) {
	n := poly[1].Sub(poly[0]).Cross(poly[2].Sub(poly[0]))
	if n.Len() == 0 {
		return
	}
	n = n.Normalize()

	mid := centroid(poly)
	if n.Dot(mid.Sub(centre)) < 0 {
		n = n.Mul(-1)
	}
	// The camera sits at the origin; a face is seen from the front when its
	// normal points back towards it.
	if n.Dot(poly[0]) >= 0 {
		if !prim.DoubleSided {
			return
		}
		n = n.Mul(-1)
	}

	clipped := clipNear(poly, r.Camera.Near)
	if len(clipped) < 3 {
		return
	}
	screen := make([]Point, len(clipped))
	for i, p := range clipped {
		screen[i].X, screen[i].Y = r.project(p)
	}
	screen = clipPolygon(screen, float32(r.Width), float32(r.Height))
	if len(screen) < 3 {
		return
	}

	out := Polygon{
		Xs:    make([]float32, len(screen)),
		Ys:    make([]float32, len(screen)),
		Color: shade(prim.Color, centroid(clipped), n),
		Depth: mid.Len(),
	}
	for i, p := range screen {
		out.Xs[i], out.Ys[i] = p.X, p.Y
	}
	r.polys = append(r.polys, out)
}

func (r *Renderer) project(p mgl64.Vec3) (float32, float32) {
	return r.Camera.Project(p, float64(r.Width)/2, float64(r.Height)/2)
}

func centroid(pts []mgl64.Vec3) mgl64.Vec3 {
	var c mgl64.Vec3
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(pts)))
}
