package main

import "math"

// Point is a position on the sea, y grows downward
type Point struct {
	X, Y float64
}

// Distance returns the distance between two points
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// TriangleArea returns the area of the triangle with side lengths base, left
// and right, where base is the hull segment and left/right are the distances
// from the tested point to each end of that segment.
//
// The result is +Inf when the angle at either end of the base is obtuse (the
// point lies beyond the hull ends) or when any side is zero or not finite.
func TriangleArea(base, left, right float64) float64 {
	if !(base > 0 && left > 0 && right > 0) || math.IsInf(base+left+right, 0) {
		return math.Inf(1)
	}

	// law of cosines for the angles at both ends of the base
	cosLeft := (base*base + left*left - right*right) / (2 * base * left)
	cosRight := (base*base + right*right - left*left) / (2 * base * right)
	if cosLeft < 0 || cosRight < 0 {
		return math.Inf(1)
	}
	cosLeft = math.Min(cosLeft, 1)

	sinLeft := math.Sqrt(1 - cosLeft*cosLeft)
	return base * left * sinLeft / 2
}

// MinTriangleArea is the area below which a point counts as touching a hull
// segment of length base, i.e. the point is closer than height to the segment.
func MinTriangleArea(base, height float64) float64 {
	return base * height / 2
}
