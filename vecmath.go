package portalcast

import "math"

// Vec2 is a 2-D point or direction in world units.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Dot returns the scalar (inner) product of v and o.
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Cross returns the 2-D cross product (z-component of the 3-D cross product).
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }

// Length returns the Euclidean length of v.
func (v Vec2) Length() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y) }

// LengthSq returns the squared Euclidean length of v, avoiding a sqrt.
func (v Vec2) LengthSq() float64 { return v.X*v.X + v.Y*v.Y }

// DistanceSq returns the squared distance between v and o.
func (v Vec2) DistanceSq(o Vec2) float64 { return v.Sub(o).LengthSq() }

// Normalize returns a unit vector in the direction of v. Returns the zero
// vector if v is the zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Perpendicular returns v rotated 90 degrees counter-clockwise (same
// orientation as Rotate): (x, y) -> (-y, x).
func (v Vec2) Perpendicular() Vec2 { return Vec2{-v.Y, v.X} }

// Rotate returns v rotated by angle radians (counter-clockwise in standard
// math orientation).
func (v Vec2) Rotate(angle float64) Vec2 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Reflect returns v reflected about the line whose unit normal is n.
func (v Vec2) Reflect(n Vec2) Vec2 {
	d := 2 * v.Dot(n)
	return Vec2{v.X - d*n.X, v.Y - d*n.Y}
}

// segmentIntersect solves the two-line parametric intersection used by the
// ray tracer: a ray from origin `o` in direction `d` against the segment
// from `p0` to `p1`. Returns rayT (distance along d, in units of |d|) and
// lineT (fraction along p0->p1), and ok=false if the lines are parallel.
//
// rayT > 0 means the hit is ahead of the ray origin; lineT in [0,1] means
// the hit lands within the segment.
func segmentIntersect(o, d, p0, p1 Vec2) (rayT, lineT float64, ok bool) {
	e := p1.Sub(p0)
	denom := d.Cross(e)
	if denom == 0 {
		return 0, 0, false
	}
	diff := p0.Sub(o)
	rayT = diff.Cross(e) / denom
	lineT = diff.Cross(d) / denom
	return rayT, lineT, true
}

// reflectPointAboutLine mirrors point p across the infinite line through
// a and b.
func reflectPointAboutLine(p, a, b Vec2) Vec2 {
	ab := b.Sub(a)
	abLenSq := ab.LengthSq()
	if abLenSq == 0 {
		return p
	}
	ap := p.Sub(a)
	t := ap.Dot(ab) / abLenSq
	proj := a.Add(ab.Scale(t))
	return proj.Scale(2).Sub(p)
}
