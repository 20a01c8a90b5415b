// Package plane holds the numeric core for sampling-plane postprocessing:
// the plane-local coordinate frame, grid interpolation of plane fields,
// and circumferential averaging into radial profiles.
package plane

import (
	"sync"
)

// Vec3 is a point or direction in global coordinates.
type Vec3 [3]float64

// Native is a point in plane-local (axis1, axis2) coordinates.
type Native struct {
	A1, A2 float64
}

// Array is a sample-plane array indexed [plane][row][col]. Rows run along
// axis2, columns along axis1, planes along axis3.
type Array [][][]float64

// NewArray allocates an Array of the given dimensions, filled by fill
// (which may be nil for a zero array).
func NewArray(nPlanes, nRows, nCols int, fill func(p, r, c int) float64) Array {
	a := make(Array, nPlanes)
	for p := range a {
		a[p] = make([][]float64, nRows)
		for r := range a[p] {
			a[p][r] = make([]float64, nCols)
			if fill != nil {
				for c := range a[p][r] {
					a[p][r][c] = fill(p, r, c)
				}
			}
		}
	}
	return a
}

// Dims returns (nPlanes, nRows, nCols). A nil array has zero dims.
func (a Array) Dims() (nPlanes, nRows, nCols int) {
	if len(a) == 0 {
		return 0, 0, 0
	}
	if len(a[0]) == 0 {
		return len(a), 0, 0
	}
	return len(a), len(a[0]), len(a[0][0])
}

// Field is one named quantity on the sampling planes: either a single
// time-invariant array, or one array per timestep.
type Field struct {
	Static Array   // set for time-invariant fields
	Frames []Array // set for time-resolved fields, parallel to Dataset.Times
}

// TimeResolved reports whether the field carries one frame per timestep.
func (f *Field) TimeResolved() bool { return len(f.Frames) > 0 }

// Dataset is the resolved sample-plane data handed in by a loader.
// The core treats everything except the cached native coordinates as
// read-only.
type Dataset struct {
	// Global coordinates of every sample node, [plane][row][col].
	X, Y, Z Array

	// Named field quantities.
	Fields map[string]*Field

	// Simulation times and timestep numbers, parallel slices.
	Times     []float64
	Timesteps []int

	// Frame geometry: in-plane axes, stacking normal, per-plane offsets.
	Origin  Vec3
	Axis1   Vec3
	Axis2   Vec3
	Axis3   Vec3
	Offsets []float64

	// Native in-plane coordinates of every node, computed lazily by
	// ComputeNativeCoords and cached. Same shape as X.
	A1, A2 Array

	nativeOnce sync.Once
	nativeErr  error
}

// NPlanes returns the number of stacked sampling planes.
func (ds *Dataset) NPlanes() int { return len(ds.X) }

// Validate checks the structural invariants of the dataset: coordinate
// arrays share one shape, offsets match the plane count, and every field
// frame matches the coordinate shape.
func (ds *Dataset) Validate() error {
	np, nr, nc := ds.X.Dims()
	if np == 0 || nr == 0 || nc == 0 {
		return configErrorf("empty coordinate arrays (%dx%dx%d)", np, nr, nc)
	}
	for name, arr := range map[string]Array{"y": ds.Y, "z": ds.Z} {
		p, r, c := arr.Dims()
		if p != np || r != nr || c != nc {
			return configErrorf("coordinate %s shape %dx%dx%d does not match x shape %dx%dx%d",
				name, p, r, c, np, nr, nc)
		}
	}
	if len(ds.Offsets) != np {
		return configErrorf("got %d offsets for %d planes", len(ds.Offsets), np)
	}
	if len(ds.Times) != len(ds.Timesteps) {
		return configErrorf("times (%d) and timesteps (%d) are not parallel",
			len(ds.Times), len(ds.Timesteps))
	}
	for name, f := range ds.Fields {
		if f == nil {
			return configErrorf("field %q is nil", name)
		}
		if f.TimeResolved() {
			if len(f.Frames) != len(ds.Times) {
				return configErrorf("field %q has %d frames for %d times",
					name, len(f.Frames), len(ds.Times))
			}
			for i, fr := range f.Frames {
				if p, r, c := fr.Dims(); p != np || r != nr || c != nc {
					return configErrorf("field %q frame %d shape %dx%dx%d does not match grid %dx%dx%d",
						name, i, p, r, c, np, nr, nc)
				}
			}
		} else {
			if p, r, c := f.Static.Dims(); p != np || r != nr || c != nc {
				return configErrorf("field %q shape %dx%dx%d does not match grid %dx%dx%d",
					name, p, r, c, np, nr, nc)
			}
		}
	}
	return nil
}

// FieldFrame resolves the array for a variable at a timestep index, or
// the static array when tindex is negative.
func (ds *Dataset) FieldFrame(name string, tindex int) (Array, error) {
	f, ok := ds.Fields[name]
	if !ok {
		return nil, configErrorf("unknown variable %q", name)
	}
	if tindex < 0 {
		if f.TimeResolved() {
			return nil, configErrorf("variable %q is time-resolved; a timestep index is required", name)
		}
		return f.Static, nil
	}
	if !f.TimeResolved() {
		return nil, configErrorf("variable %q is time-invariant; timestep indices do not apply", name)
	}
	if tindex >= len(f.Frames) {
		return nil, &DomainError{Variable: name, Reason: "timestep index out of range"}
	}
	return f.Frames[tindex], nil
}

// ComputeNativeCoords fills the cached A1/A2 arrays by projecting every
// sample node into its plane's local frame. The computation runs once per
// dataset; repeated calls are cheap and return the first result.
func (ds *Dataset) ComputeNativeCoords() error {
	ds.nativeOnce.Do(func() {
		ds.nativeErr = ds.computeNativeCoords()
	})
	return ds.nativeErr
}

func (ds *Dataset) computeNativeCoords() error {
	// A loader may hand in a dataset with the native grid already
	// populated; trust it rather than recompute.
	if ds.A1 != nil && ds.A2 != nil {
		return nil
	}
	if err := ds.Validate(); err != nil {
		return err
	}
	frame, err := NewFrame(ds.Origin, ds.Axis1, ds.Axis2, ds.Axis3, ds.Offsets)
	if err != nil {
		return err
	}
	np, nr, nc := ds.X.Dims()
	pts := make([]Vec3, 0, np*nr*nc)
	planes := make([]int, 0, np*nr*nc)
	for p := 0; p < np; p++ {
		for r := 0; r < nr; r++ {
			for c := 0; c < nc; c++ {
				pts = append(pts, Vec3{ds.X[p][r][c], ds.Y[p][r][c], ds.Z[p][r][c]})
				planes = append(planes, p)
			}
		}
	}
	nat, err := frame.ToNative(pts, planes)
	if err != nil {
		return err
	}
	a1 := NewArray(np, nr, nc, nil)
	a2 := NewArray(np, nr, nc, nil)
	i := 0
	for p := 0; p < np; p++ {
		for r := 0; r < nr; r++ {
			for c := 0; c < nc; c++ {
				a1[p][r][c] = nat[i].A1
				a2[p][r][c] = nat[i].A2
				i++
			}
		}
	}
	ds.A1, ds.A2 = a1, a2
	return nil
}
