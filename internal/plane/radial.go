package plane

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/windfield-data/planebox/internal/table"
)

// RadialConfig describes a circumferential-averaging request: concentric
// circles of sample points around a center, averaged per radius.
type RadialConfig struct {
	// Center in global coordinates (CenterCoords == CoordGlobal) or
	// CenterNative in plane-local coordinates (CoordNative). The center
	// is converted once per plane.
	Center       Vec3
	CenterNative Native
	CenterCoords CoordSystem

	RInner, ROuter float64
	NRadial        int

	// Angular sweep. The end angle is excluded so a closed circle is not
	// double-sampled. Zero values mean the full [0, 2pi) default.
	ThetaStart, ThetaEnd float64
	NTheta               int

	Variables []string
	Planes    []int
}

// RadialProfile is the averaged profile on one plane: mean variable
// values per radius, ordered by increasing radius.
type RadialProfile struct {
	R    []float64
	Mean map[string][]float64

	variables []string // column order
}

// Variables returns the variable names in request order.
func (p *RadialProfile) Variables() []string {
	return append([]string(nil), p.variables...)
}

// Table renders the profile as a table with columns r, then the
// variables in request order.
func (p *RadialProfile) Table() *table.Table {
	cols := append([]string{"r"}, p.variables...)
	t := table.New(cols...)
	for i, r := range p.R {
		row := make([]float64, 0, len(cols))
		row = append(row, r)
		for _, v := range p.variables {
			row = append(row, p.Mean[v][i])
		}
		t.AppendRow(row...)
	}
	return t
}

// RadialProfiles samples nTheta points on each of nRadial circles and
// averages every variable over the circle. All interpolation is
// delegated to Interpolate with the linear method; this is a pure
// reduction over its output. Results are keyed by plane index.
func RadialProfiles(ds *Dataset, cfg RadialConfig) (map[int]*RadialProfile, error) {
	if cfg.NRadial < 1 {
		return nil, configErrorf("radial profile needs at least one radius, got %d", cfg.NRadial)
	}
	if cfg.NTheta < 1 {
		return nil, configErrorf("radial profile needs at least one theta sample, got %d", cfg.NTheta)
	}
	if len(cfg.Variables) == 0 {
		return nil, configErrorf("radial profile has no variables")
	}
	if len(cfg.Planes) == 0 {
		return nil, configErrorf("radial profile has no planes")
	}
	if err := ds.ComputeNativeCoords(); err != nil {
		return nil, err
	}
	frame, err := ds.Frame()
	if err != nil {
		return nil, err
	}

	thetaStart, thetaEnd := cfg.ThetaStart, cfg.ThetaEnd
	if thetaStart == 0 && thetaEnd == 0 {
		thetaEnd = 2 * math.Pi
	}

	radii := []float64{cfg.RInner}
	if cfg.NRadial > 1 {
		radii = floats.Span(make([]float64, cfg.NRadial), cfg.RInner, cfg.ROuter)
	}
	thetas := make([]float64, cfg.NTheta)
	dtheta := (thetaEnd - thetaStart) / float64(cfg.NTheta)
	for i := range thetas {
		thetas[i] = thetaStart + float64(i)*dtheta
	}

	out := make(map[int]*RadialProfile, len(cfg.Planes))
	for _, iplane := range cfg.Planes {
		center := cfg.CenterNative
		if cfg.CenterCoords == CoordGlobal {
			nat, err := frame.ToNative([]Vec3{cfg.Center}, []int{iplane})
			if err != nil {
				return nil, err
			}
			center = nat[0]
		}

		prof := &RadialProfile{
			R:         append([]float64(nil), radii...),
			Mean:      make(map[string][]float64, len(cfg.Variables)),
			variables: append([]string(nil), cfg.Variables...),
		}
		for _, v := range cfg.Variables {
			prof.Mean[v] = make([]float64, len(radii))
		}

		ring := make([]Native, len(thetas))
		for ri, r := range radii {
			for ti, theta := range thetas {
				ring[ti] = Native{
					A1: center.A1 + r*math.Cos(theta),
					A2: center.A2 + r*math.Sin(theta),
				}
			}
			tbl, err := Interpolate(ds, Query{
				NativePoints: ring,
				Coords:       CoordNative,
				Planes:       []int{iplane},
				Variables:    cfg.Variables,
				Method:       MethodLinear,
			})
			if err != nil {
				return nil, err
			}
			for _, v := range cfg.Variables {
				prof.Mean[v][ri] = stat.Mean(tbl.Column(v), nil)
			}
		}
		out[iplane] = prof
	}
	return out, nil
}
