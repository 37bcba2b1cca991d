package geometry

// DefaultTolerance absorbs floating-point drift from repeated addition of
// item extents and clearance allowances. Comparisons in this package accept
// an explicit tolerance; the convenience wrappers use this value.
const DefaultTolerance = 1e-6

// Vec is a point or an extent along the container axes X, Y, Z.
type Vec struct {
	X float64
	Y float64
	Z float64
}

// Volume returns the product of the three components.
func (v Vec) Volume() float64 {
	return v.X * v.Y * v.Z
}

// MaxComponent returns the largest of the three components.
func (v Vec) MaxComponent() float64 {
	m := v.X
	if v.Y > m {
		m = v.Y
	}
	if v.Z > m {
		m = v.Z
	}
	return m
}

// MinComponent returns the smallest of the three components.
func (v Vec) MinComponent() float64 {
	m := v.X
	if v.Y < m {
		m = v.Y
	}
	if v.Z < m {
		m = v.Z
	}
	return m
}

// Footprint returns the product of the two largest components, the area the
// extent projects onto its widest face.
func (v Vec) Footprint() float64 {
	return v.Volume() / v.MinComponent()
}

// Add returns the component-wise sum.
func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Positive reports whether all three components are strictly greater than zero.
func (v Vec) Positive() bool {
	return v.X > 0 && v.Y > 0 && v.Z > 0
}

// Box is an axis-aligned box anchored at its minimum corner.
type Box struct {
	Origin Vec
	Size   Vec
}

// Max returns the maximum corner of the box.
func (b Box) Max() Vec {
	return b.Origin.Add(b.Size)
}

// Rotations returns the distinct axis-aligned orientations of a dimension
// triple. All six permutations are permitted; duplicates collapse when two or
// more dimensions are equal, so the result holds between one and six entries.
func Rotations(d Vec) []Vec {
	all := [6]Vec{
		{d.X, d.Y, d.Z},
		{d.X, d.Z, d.Y},
		{d.Y, d.X, d.Z},
		{d.Y, d.Z, d.X},
		{d.Z, d.X, d.Y},
		{d.Z, d.Y, d.X},
	}

	out := make([]Vec, 0, 6)
	for _, r := range all {
		dup := false
		for _, seen := range out {
			if seen == r {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}

// Intersects reports whether the two boxes overlap using DefaultTolerance.
func Intersects(a, b Box) bool {
	return IntersectsTol(a, b, DefaultTolerance)
}

// IntersectsTol reports whether two boxes overlap with positive volume.
// Boxes that merely touch on a face, edge, or corner (within tol) do not
// intersect. Axis-aligned boxes overlap iff they overlap on all three axes.
func IntersectsTol(a, b Box, tol float64) bool {
	amax, bmax := a.Max(), b.Max()
	return a.Origin.X < bmax.X-tol && b.Origin.X < amax.X-tol &&
		a.Origin.Y < bmax.Y-tol && b.Origin.Y < amax.Y-tol &&
		a.Origin.Z < bmax.Z-tol && b.Origin.Z < amax.Z-tol
}

// FitsWithin reports whether the box lies inside [0, dims] using DefaultTolerance.
func FitsWithin(b Box, dims Vec) bool {
	return FitsWithinTol(b, dims, DefaultTolerance)
}

// FitsWithinTol reports whether the box's extent lies within
// [0, dims.X] x [0, dims.Y] x [0, dims.Z], allowing tol of overhang.
func FitsWithinTol(b Box, dims Vec, tol float64) bool {
	if b.Origin.X < -tol || b.Origin.Y < -tol || b.Origin.Z < -tol {
		return false
	}
	max := b.Max()
	return max.X <= dims.X+tol && max.Y <= dims.Y+tol && max.Z <= dims.Z+tol
}

// FitsAnyRotation reports whether at least one rotation of d fits inside an
// empty container of the given dimensions.
func FitsAnyRotation(d, dims Vec) bool {
	for _, r := range Rotations(d) {
		if FitsWithin(Box{Size: r}, dims) {
			return true
		}
	}
	return false
}
