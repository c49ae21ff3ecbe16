package orchard

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Renderer accepts solid-color draw requests. Points are in screen space.
type Renderer interface {
	Clear(c Color)
	FillPolygon(points []Vec2, c Color)
}

// ScreenRenderer draws onto an ebiten image using fan-triangulated meshes
// sourced from a white pixel.
type ScreenRenderer struct {
	target *ebiten.Image
	verts  []ebiten.Vertex
	inds   []uint16
	opts   ebiten.DrawTrianglesOptions
}

// NewScreenRenderer returns a renderer targeting img.
func NewScreenRenderer(img *ebiten.Image) *ScreenRenderer {
	r := &ScreenRenderer{target: img}
	r.opts.AntiAlias = true
	return r
}

// SetTarget switches the image subsequent draws go to, keeping buffers.
func (r *ScreenRenderer) SetTarget(img *ebiten.Image) {
	r.target = img
}

// Clear fills the whole target with c.
func (r *ScreenRenderer) Clear(c Color) {
	r.target.Fill(c.RGBA())
}

// FillPolygon fills a convex polygon. Polygons with fewer than three points
// are ignored.
func (r *ScreenRenderer) FillPolygon(points []Vec2, c Color) {
	r.verts, r.inds = buildPolygonFan(r.verts[:0], r.inds[:0], points, c)
	if len(r.inds) == 0 {
		return
	}
	r.target.DrawTriangles(r.verts, r.inds, ensureWhitePixel(), &r.opts)
}

// buildPolygonFan appends vertices and indices for a fan-triangulated
// polygon to verts and inds. N points yield N vertices and 3*(N-2) indices.
func buildPolygonFan(verts []ebiten.Vertex, inds []uint16, points []Vec2, c Color) ([]ebiten.Vertex, []uint16) {
	n := len(points)
	if n < 3 {
		return verts, inds
	}
	base := uint16(len(verts))
	cr, cg, cb := float32(c.R), float32(c.G), float32(c.B)
	for _, p := range points {
		verts = append(verts, ebiten.Vertex{
			DstX:   float32(p.X),
			DstY:   float32(p.Y),
			SrcX:   1,
			SrcY:   1,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: 1,
		})
	}
	// Vertex 0 is the hub.
	for i := 0; i < n-2; i++ {
		inds = append(inds, base, base+uint16(i+1), base+uint16(i+2))
	}
	return verts, inds
}

// --- White pixel singleton (no sync.Once, the game loop is single-threaded) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized white source image. The
// centre of a 3x3 image is used so sampling never bleeds past its edge.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whitePixelImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whitePixelImage
}
