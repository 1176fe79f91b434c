package model

import "math"

// Point is an integer 2D coordinate in micrometers.
type Point struct {
	x, y Micrometer
}

// NewPoint builds a Point from raw micrometer coordinates.
func NewPoint(x, y Micrometer) Point {
	return Point{x: x, y: y}
}

func (p Point) X() Micrometer { return p.x }
func (p Point) Y() Micrometer { return p.y }

func (p *Point) SetX(x Micrometer) { p.x = x }
func (p *Point) SetY(y Micrometer) { p.y = y }

// Add returns p + o.
func (p Point) Add(o Point) Point {
	return Point{p.x + o.x, p.y + o.y}
}

// Sub returns p - o.
func (p Point) Sub(o Point) Point {
	return Point{p.x - o.x, p.y - o.y}
}

// Mul scales both coordinates by f.
func (p Point) Mul(f float64) Point {
	return Point{Micrometer(float64(p.x) * f), Micrometer(float64(p.y) * f)}
}

// Size returns the euclidean length of p treated as a vector.
func (p Point) Size() Micrometer {
	return Micrometer(math.Sqrt(float64(p.x)*float64(p.x) + float64(p.y)*float64(p.y)))
}

// Size2 returns the squared length, avoiding the sqrt when only comparisons are needed.
func (p Point) Size2() int64 {
	return int64(p.x)*int64(p.x) + int64(p.y)*int64(p.y)
}

// ShorterThan reports whether |p| < d.
func (p Point) ShorterThan(d Micrometer) bool {
	return p.Size2() < int64(d)*int64(d)
}

// ShorterThanOrEqual reports whether |p| <= d.
func (p Point) ShorterThanOrEqual(d Micrometer) bool {
	return p.Size2() <= int64(d)*int64(d)
}

// Dist returns the distance between p and o.
func (p Point) Dist(o Point) Micrometer {
	return p.Sub(o).Size()
}

// Dist2 returns the squared distance between p and o.
func (p Point) Dist2(o Point) int64 {
	return p.Sub(o).Size2()
}

// Dot returns the dot product of p and o treated as vectors.
func (p Point) Dot(o Point) int64 {
	return int64(p.x)*int64(o.x) + int64(p.y)*int64(o.y)
}

// Cross returns the 2D cross product (z component) of p and o.
func (p Point) Cross(o Point) int64 {
	return int64(p.x)*int64(o.y) - int64(p.y)*int64(o.x)
}

// Normal returns p scaled to length len (0,0 stays 0,0).
func (p Point) Normal(len Micrometer) Point {
	l := p.Size()
	if l == 0 {
		return p
	}
	return p.Mul(float64(len) / float64(l))
}

// Rotated returns p rotated by angle (radians) around the origin.
func (p Point) Rotated(angle float64) Point {
	s, c := math.Sin(angle), math.Cos(angle)
	return Point{
		Micrometer(float64(p.x)*c - float64(p.y)*s),
		Micrometer(float64(p.x)*s + float64(p.y)*c),
	}
}

// Eq reports exact coordinate equality.
func (p Point) Eq(o Point) bool {
	return p.x == o.x && p.y == o.y
}

// Lerp returns the point t of the way from p to o (t in [0,1]).
func Lerp(p, o Point, t float64) Point {
	return Point{
		p.x + Micrometer(float64(o.x-p.x)*t),
		p.y + Micrometer(float64(o.y-p.y)*t),
	}
}
