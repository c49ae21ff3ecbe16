package orchard

import "math"

// Branch is one tapered segment of a tree. Branches are immutable once
// generated.
type Branch struct {
	Start       Vec2
	Angle       float64 // radians, 0 points right, pi/2 points down
	Length      float64
	BottomWidth float64
	TopWidth    float64
}

// End returns the far endpoint of the branch.
func (b Branch) End() Vec2 {
	return Vec2{
		X: b.Start.X + b.Length*math.Cos(b.Angle),
		Y: b.Start.Y + b.Length*math.Sin(b.Angle),
	}
}

// Outline returns the branch as a trapezoid: bottom-left, top-left,
// top-right, bottom-right, where "left" is offset along the normal
// (-sin, cos).
func (b Branch) Outline() [4]Vec2 {
	end := b.End()
	nx := -math.Sin(b.Angle)
	ny := math.Cos(b.Angle)
	hb := b.BottomWidth / 2
	ht := b.TopWidth / 2
	return [4]Vec2{
		{b.Start.X + nx*hb, b.Start.Y + ny*hb},
		{end.X + nx*ht, end.Y + ny*ht},
		{end.X - nx*ht, end.Y - ny*ht},
		{b.Start.X - nx*hb, b.Start.Y - ny*hb},
	}
}
