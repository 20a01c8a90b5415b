package plane

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// degenerateAxisTol is the smallest nonzero axis norm accepted for
// normalization. Norms below it (but above exactly zero) would blow up
// into near-infinite scaling, so they are rejected instead.
const degenerateAxisTol = 1e-12

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

// Scale returns s*v.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{s * v[0], s * v[1], s * v[2]}
}

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2]
}

// Cross returns the cross product of v and w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}

// Normalize returns v scaled to unit length. A zero vector is returned
// unchanged; it marks a degenerate axis the caller handles explicitly.
func Normalize(v Vec3) Vec3 {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// Frame is the plane-local coordinate frame of a stack of sampling
// planes: an origin, two in-plane axes, a stacking normal, and one scalar
// offset per plane along the normal.
type Frame struct {
	Origin  Vec3
	Offsets []float64

	// Unit axes. n3 is the zero vector for a single unstacked plane.
	n1, n2, n3 Vec3

	// basis has rows n1, n2, n3. It is exactly the axes as supplied
	// (normalized), with no orthogonalization applied.
	basis *mat.Dense
}

// NewFrame validates the axes and builds the frame. axis1 and axis2 must
// be normalizable; axis3 may be exactly zero for a single-plane dataset,
// but a nonzero near-zero axis3 is rejected as degenerate.
func NewFrame(origin, axis1, axis2, axis3 Vec3, offsets []float64) (*Frame, error) {
	if len(offsets) == 0 {
		return nil, configErrorf("frame requires at least one plane offset")
	}
	for name, ax := range map[string]Vec3{"axis1": axis1, "axis2": axis2} {
		if n := ax.Norm(); n < degenerateAxisTol {
			return nil, &DegenerateAxisError{Axis: name, Norm: n}
		}
	}
	n3 := axis3
	if n := axis3.Norm(); n != 0 {
		if n < degenerateAxisTol {
			return nil, &DegenerateAxisError{Axis: "axis3", Norm: n}
		}
		n3 = axis3.Scale(1 / n)
	} else if len(offsets) != 1 {
		return nil, configErrorf("zero axis3 with %d offsets; a single unstacked plane is required", len(offsets))
	}
	f := &Frame{
		Origin:  origin,
		Offsets: append([]float64(nil), offsets...),
		n1:      Normalize(axis1),
		n2:      Normalize(axis2),
		n3:      n3,
	}
	f.basis = RotationBasis(f.n1, f.n2, f.n3)
	return f, nil
}

// RotationBasis returns the 3x3 matrix whose rows are the given unit
// axes. The rows are used exactly as supplied; non-orthogonal axes give a
// non-orthonormal basis.
func RotationBasis(n1, n2, n3 Vec3) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		n1[0], n1[1], n1[2],
		n2[0], n2[1], n2[2],
		n3[0], n3[1], n3[2],
	})
}

// NPlanes returns the number of stacked planes in the frame.
func (f *Frame) NPlanes() int { return len(f.Offsets) }

// PlaneOrigin returns origin + n3*offset for the given plane.
func (f *Frame) PlaneOrigin(iplane int) (Vec3, error) {
	if iplane < 0 || iplane >= len(f.Offsets) {
		return Vec3{}, configErrorf("plane index %d out of range (have %d planes)", iplane, len(f.Offsets))
	}
	return f.Origin.Add(f.n3.Scale(f.Offsets[iplane])), nil
}

// ToNative converts global points to plane-local (a1, a2) coordinates.
// Each point carries its own plane index, so one batch may span planes.
// The axis3 component is discarded; callers are expected to hand in
// points on (or projected onto) their plane.
func (f *Frame) ToNative(pts []Vec3, planes []int) ([]Native, error) {
	if len(planes) != len(pts) {
		return nil, configErrorf("got %d plane indices for %d points", len(planes), len(pts))
	}
	out := make([]Native, len(pts))
	buf := make([]float64, 3)
	dv := mat.NewVecDense(3, buf)
	var av mat.VecDense
	for i, pt := range pts {
		porigin, err := f.PlaneOrigin(planes[i])
		if err != nil {
			return nil, err
		}
		d := pt.Sub(porigin)
		buf[0], buf[1], buf[2] = d[0], d[1], d[2]
		av.MulVec(f.basis, dv)
		out[i] = Native{A1: av.AtVec(0), A2: av.AtVec(1)}
	}
	return out, nil
}

// ToGlobal converts plane-local points on a single plane back to global
// coordinates: planeOrigin + a1*n1 + a2*n2.
func (f *Frame) ToGlobal(pts []Native, iplane int) ([]Vec3, error) {
	porigin, err := f.PlaneOrigin(iplane)
	if err != nil {
		return nil, err
	}
	out := make([]Vec3, len(pts))
	for i, pt := range pts {
		out[i] = porigin.Add(f.n1.Scale(pt.A1)).Add(f.n2.Scale(pt.A2))
	}
	return out, nil
}

// ProjectToPlane projects a global point onto the given plane along the
// plane normal (the cross product of the in-plane unit axes).
func (f *Frame) ProjectToPlane(pt Vec3, iplane int) (Vec3, error) {
	porigin, err := f.PlaneOrigin(iplane)
	if err != nil {
		return Vec3{}, err
	}
	normal := f.n1.Cross(f.n2)
	dv := pt.Sub(porigin)
	return pt.Sub(normal.Scale(dv.Dot(normal))), nil
}

// Frame builds the coordinate frame described by the dataset geometry.
func (ds *Dataset) Frame() (*Frame, error) {
	return NewFrame(ds.Origin, ds.Axis1, ds.Axis2, ds.Axis3, ds.Offsets)
}
