package render

import "github.com/go-gl/mathgl/mgl64"

// Point is a screen-space vertex.
type Point struct {
	X, Y float32
}

// clipNear clips a camera-space polygon to z >= near (Sutherland–Hodgman).
// Points on the plane are kept.
func clipNear(poly []mgl64.Vec3, near float64) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, 0, len(poly)+1)
	if len(poly) == 0 {
		return out
	}
	prev := poly[len(poly)-1]
	prevIn := prev[2] >= near
	for _, cur := range poly {
		curIn := cur[2] >= near
		switch {
		case prevIn && curIn:
			out = append(out, cur)
		case prevIn && !curIn:
			out = append(out, intersectNear(prev, cur, near))
		case !prevIn && curIn:
			out = append(out, intersectNear(prev, cur, near), cur)
		}
		prev, prevIn = cur, curIn
	}
	return out
}

// intersectNear returns where segment p1→p2 crosses z = near. A segment
// parallel to the plane returns p1.
func intersectNear(p1, p2 mgl64.Vec3, near float64) mgl64.Vec3 {
	dz := p2[2] - p1[2]
	if dz == 0 {
		return p1
	}
	t := (near - p1[2]) / dz
	return p1.Add(p2.Sub(p1).Mul(t))
}

// clipSegmentNear clips a line to z >= near. ok is false when nothing is left.
func clipSegmentNear(a, b mgl64.Vec3, near float64) (mgl64.Vec3, mgl64.Vec3, bool) {
	aIn, bIn := a[2] >= near, b[2] >= near
	switch {
	case aIn && bIn:
		return a, b, true
	case aIn:
		return a, intersectNear(a, b, near), true
	case bIn:
		return intersectNear(a, b, near), b, true
	}
	return a, b, false
}

type edge struct {
	inside    func(p Point) bool
	intersect func(a, b Point) Point
}

// clipPolygon clips a screen polygon to the rectangle [0, w+1] x [0, h+1].
func clipPolygon(poly []Point, w, h float32) []Point {
	right, bottom := w+1, h+1
	edges := [4]edge{
		{func(p Point) bool { return p.X >= 0 }, func(a, b Point) Point { return atX(a, b, 0) }},
		{func(p Point) bool { return p.X <= right }, func(a, b Point) Point { return atX(a, b, right) }},
		{func(p Point) bool { return p.Y >= 0 }, func(a, b Point) Point { return atY(a, b, 0) }},
		{func(p Point) bool { return p.Y <= bottom }, func(a, b Point) Point { return atY(a, b, bottom) }},
	}

	out := poly
	for _, e := range edges {
		if len(out) == 0 {
			break
		}
		in := out
		out = make([]Point, 0, len(in)+2)
		prev := in[len(in)-1]
		for _, cur := range in {
			switch {
			case e.inside(prev) && e.inside(cur):
				out = append(out, cur)
			case e.inside(prev):
				out = append(out, e.intersect(prev, cur))
			case e.inside(cur):
				out = append(out, e.intersect(prev, cur), cur)
			}
			prev = cur
		}
	}
	if out == nil {
		out = []Point{}
	}
	return out
}

func atX(a, b Point, x float32) Point {
	t := (x - a.X) / (b.X - a.X)
	return Point{X: x, Y: a.Y + t*(b.Y-a.Y)}
}

func atY(a, b Point, y float32) Point {
	t := (y - a.Y) / (b.Y - a.Y)
	return Point{X: a.X + t*(b.X-a.X), Y: y}
}
