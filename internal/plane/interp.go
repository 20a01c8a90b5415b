package plane

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/interp"

	"github.com/windfield-data/planebox/internal/table"
)

// Method selects how grid values are interpolated at query points.
type Method string

const (
	MethodLinear  Method = "linear"
	MethodNearest Method = "nearest"
	MethodCubic   Method = "cubic"
)

// ParseMethod validates a method tag from configuration.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodLinear, MethodNearest, MethodCubic:
		return Method(s), nil
	case "":
		return MethodLinear, nil
	}
	return "", configErrorf("unknown interpolation method %q (want linear, nearest or cubic)", s)
}

// CoordSystem tags how query points are expressed.
type CoordSystem string

const (
	CoordGlobal CoordSystem = "xyz"
	CoordNative CoordSystem = "a1a2"
)

// ParseCoordSystem validates a coordinate-system tag from configuration.
func ParseCoordSystem(s string) (CoordSystem, error) {
	switch CoordSystem(s) {
	case CoordGlobal, CoordNative:
		return CoordSystem(s), nil
	}
	return "", configErrorf("unknown coordinate system %q (want xyz or a1a2)", s)
}

// Interpolant interpolates values on a regular 2-D grid. The row and
// column coordinate vectors must be strictly monotonic; descending axes
// are reversed internally. Query points outside the grid extent are a
// DomainError, never extrapolated.
type Interpolant struct {
	rows, cols []float64
	vals       [][]float64 // [row][col]
	method     Method

	// Per-row splines along the column axis, built once for cubic.
	rowSplines []interp.NaturalCubic
}

// NewInterpolant builds an interpolant over vals[row][col] with the
// given row and column coordinates.
func NewInterpolant(rows, cols []float64, vals [][]float64, method Method) (*Interpolant, error) {
	if len(rows) < 2 || len(cols) < 2 {
		return nil, configErrorf("interpolation grid needs at least 2x2 nodes, got %dx%d", len(rows), len(cols))
	}
	if len(vals) != len(rows) {
		return nil, configErrorf("grid has %d value rows for %d row coordinates", len(vals), len(rows))
	}
	for i := range vals {
		if len(vals[i]) != len(cols) {
			return nil, configErrorf("grid row %d has %d values for %d column coordinates", i, len(vals[i]), len(cols))
		}
	}
	rows, cols = append([]float64(nil), rows...), append([]float64(nil), cols...)
	v := make([][]float64, len(vals))
	for i := range vals {
		v[i] = append([]float64(nil), vals[i]...)
	}
	if descending(rows) {
		reverse(rows)
		reverseRows(v)
	}
	if descending(cols) {
		reverse(cols)
		for i := range v {
			reverse(v[i])
		}
	}
	if !ascending(rows) || !ascending(cols) {
		return nil, configErrorf("grid coordinates are not strictly monotonic")
	}
	ip := &Interpolant{rows: rows, cols: cols, vals: v, method: method}
	if method == MethodCubic {
		ip.rowSplines = make([]interp.NaturalCubic, len(rows))
		for i := range rows {
			if err := ip.rowSplines[i].Fit(cols, v[i]); err != nil {
				return nil, configErrorf("cubic fit on grid row %d: %v", i, err)
			}
		}
	}
	return ip, nil
}

// At evaluates the interpolant at row coordinate r, column coordinate c.
func (ip *Interpolant) At(r, c float64) (float64, error) {
	if r < ip.rows[0] || r > ip.rows[len(ip.rows)-1] ||
		c < ip.cols[0] || c > ip.cols[len(ip.cols)-1] {
		return 0, &DomainError{A1: c, A2: r, Reason: "is outside the grid extent"}
	}
	switch ip.method {
	case MethodNearest:
		return ip.vals[nearestIndex(ip.rows, r)][nearestIndex(ip.cols, c)], nil
	case MethodCubic:
		tmp := make([]float64, len(ip.rows))
		for i := range ip.rows {
			tmp[i] = ip.rowSplines[i].Predict(c)
		}
		var s interp.NaturalCubic
		if err := s.Fit(ip.rows, tmp); err != nil {
			return 0, configErrorf("cubic fit along rows: %v", err)
		}
		return s.Predict(r), nil
	default: // MethodLinear
		ri, rt := interval(ip.rows, r)
		ci, ct := interval(ip.cols, c)
		v00 := ip.vals[ri][ci]
		v01 := ip.vals[ri][ci+1]
		v10 := ip.vals[ri+1][ci]
		v11 := ip.vals[ri+1][ci+1]
		return (1-rt)*((1-ct)*v00+ct*v01) + rt*((1-ct)*v10+ct*v11), nil
	}
}

func ascending(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return false
		}
	}
	return true
}

func descending(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] >= xs[i-1] {
			return false
		}
	}
	return true
}

func reverse(xs []float64) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}

func reverseRows(v [][]float64) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}

// interval returns the index i with xs[i] <= x <= xs[i+1] and the
// fractional position of x in that interval. Bounds are checked by the
// caller.
func interval(xs []float64, x float64) (int, float64) {
	i := sort.SearchFloat64s(xs, x)
	if i > 0 {
		i--
	}
	if i > len(xs)-2 {
		i = len(xs) - 2
	}
	den := xs[i+1] - xs[i]
	return i, (x - xs[i]) / den
}

func nearestIndex(xs []float64, x float64) int {
	i, t := interval(xs, x)
	if t > 0.5 {
		return i + 1
	}
	return i
}

// Query is one interpolation request against a dataset.
type Query struct {
	// Points in global coordinates (Coords == CoordGlobal) or
	// NativePoints in plane-local coordinates (Coords == CoordNative).
	Points       []Vec3
	NativePoints []Native
	Coords       CoordSystem

	Planes    []int
	Variables []string

	// Timestep indices into Dataset.Times. Nil queries time-invariant
	// fields and omits the time column.
	Timesteps []int

	Method Method
}

func (q *Query) nPoints() int {
	if q.Coords == CoordNative {
		return len(q.NativePoints)
	}
	return len(q.Points)
}

// Interpolate evaluates the query and returns a table with columns
// a1, a2, x, y, z, optional time, then one column per variable. Rows are
// grouped by plane, then timestep, then query-point order.
func Interpolate(ds *Dataset, q Query) (*table.Table, error) {
	if len(q.Variables) == 0 {
		return nil, configErrorf("interpolation query has no variables")
	}
	if len(q.Planes) == 0 {
		return nil, configErrorf("interpolation query has no planes")
	}
	if q.nPoints() == 0 {
		return nil, configErrorf("interpolation query has no points")
	}
	method := q.Method
	if method == "" {
		method = MethodLinear
	}
	if err := ds.ComputeNativeCoords(); err != nil {
		return nil, err
	}
	frame, err := ds.Frame()
	if err != nil {
		return nil, err
	}

	cols := []string{"a1", "a2", "x", "y", "z"}
	if q.Timesteps != nil {
		cols = append(cols, "time")
	}
	cols = append(cols, q.Variables...)
	out := table.New(cols...)

	tindices := q.Timesteps
	if tindices == nil {
		tindices = []int{-1}
	}

	for _, iplane := range q.Planes {
		if iplane < 0 || iplane >= ds.NPlanes() {
			return nil, configErrorf("plane index %d out of range (have %d planes)", iplane, ds.NPlanes())
		}
		var nat []Native
		var glb []Vec3
		if q.Coords == CoordNative {
			nat = q.NativePoints
			glb, err = frame.ToGlobal(nat, iplane)
			if err != nil {
				return nil, err
			}
		} else {
			glb = q.Points
			planes := make([]int, len(glb))
			for i := range planes {
				planes[i] = iplane
			}
			nat, err = frame.ToNative(glb, planes)
			if err != nil {
				return nil, err
			}
		}

		// The native grid is separable by construction of the sampling
		// planes: a1 is constant along columns, a2 along rows, so one
		// representative row and column carry the full axes.
		a1vec := ds.A1[iplane][0]
		a2vec := make([]float64, len(ds.A2[iplane]))
		for r := range a2vec {
			a2vec[r] = ds.A2[iplane][r][0]
		}

		for _, tindex := range tindices {
			if tindex >= len(ds.Times) || (q.Timesteps != nil && tindex < 0) {
				return nil, &DomainError{Plane: iplane, Reason: "timestep index out of range"}
			}
			// One column of interpolated values per variable.
			varvals := make([][]float64, len(q.Variables))
			for vi, name := range q.Variables {
				fr, err := ds.FieldFrame(name, tindex)
				if err != nil {
					return nil, err
				}
				ip, err := NewInterpolant(a2vec, a1vec, fr[iplane], method)
				if err != nil {
					return nil, err
				}
				varvals[vi] = make([]float64, len(nat))
				for pi, pt := range nat {
					v, err := ip.At(pt.A2, pt.A1)
					if err != nil {
						var de *DomainError
						if errors.As(err, &de) {
							de.Plane = iplane
							de.Variable = name
						}
						return nil, err
					}
					varvals[vi][pi] = v
				}
			}
			for pi := range nat {
				row := []float64{nat[pi].A1, nat[pi].A2, glb[pi][0], glb[pi][1], glb[pi][2]}
				if q.Timesteps != nil {
					row = append(row, ds.Times[tindex])
				}
				for vi := range q.Variables {
					row = append(row, varvals[vi][pi])
				}
				if err := out.AppendRow(row...); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}
