package viewer

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/smasonuk/lsystree/render"
)

var (
	whiteImage = ebiten.NewImage(3, 3)
	whiteSub   *ebiten.Image
)

func init() {
	whiteImage.Fill(color.White)
	whiteSub = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

const (
	lineWidth    = 1.5
	outlineWidth = 1.0
)

// outlineColor is a faint edge drawn over every filled face.
var outlineColor = color.RGBA{R: 100, G: 100, B: 100, A: 20}

type stroke struct {
	width  float32
	color  color.RGBA
	closed bool
}

// strokeFor is the stroke drawn for p: the segment itself for a line, a
// closed outline for a face.
func strokeFor(p render.Polygon) stroke {
	if p.Line {
		return stroke{width: lineWidth, color: p.Color}
	}
	return stroke{width: outlineWidth, color: outlineColor, closed: true}
}

func drawPolygons(screen *ebiten.Image, polys []render.Polygon) {
	for _, p := range polys {
		if !p.Line {
			fillConvexPolygon(screen, p.Xs, p.Ys, p.Color)
		}
		s := strokeFor(p)
		strokePath(screen, p.Xs, p.Ys, s.width, s.color, s.closed)
	}
}

func colorVertex(v *ebiten.Vertex, clr color.RGBA) {
	v.SrcX, v.SrcY = 1, 1
	v.ColorR = float32(clr.R) / 255
	v.ColorG = float32(clr.G) / 255
	v.ColorB = float32(clr.B) / 255
	v.ColorA = float32(clr.A) / 255
}

// fillConvexPolygon fans the polygon into triangles from its first vertex.
func fillConvexPolygon(screen *ebiten.Image, xp, yp []float32, clr color.RGBA) {
	if len(xp) < 3 {
		return
	}

	indices := make([]uint16, 0, (len(xp)-2)*3)
	for i := 2; i < len(xp); i++ {
		indices = append(indices, 0, uint16(i-1), uint16(i))
	}

	vertices := make([]ebiten.Vertex, len(xp))
	for i := range xp {
		vertices[i].DstX, vertices[i].DstY = xp[i], yp[i]
		colorVertex(&vertices[i], clr)
	}

	screen.DrawTriangles(vertices, indices, whiteSub, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

// strokePath strokes the polyline through the points, closing it back to the
// first point when closed is set.
func strokePath(screen *ebiten.Image, xp, yp []float32, width float32, clr color.RGBA, closed bool) {
	if len(xp) < 2 {
		return
	}

	var path vector.Path
	path.MoveTo(xp[0], yp[0])
	for i := 1; i < len(xp); i++ {
		path.LineTo(xp[i], yp[i])
	}
	if closed {
		path.Close()
	}

	vertices, indices := path.AppendVerticesAndIndicesForStroke(nil, nil, &vector.StrokeOptions{Width: width})
	for i := range vertices {
		colorVertex(&vertices[i], clr)
	}
	screen.DrawTriangles(vertices, indices, whiteSub, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}
