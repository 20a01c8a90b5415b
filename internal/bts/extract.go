package bts

import (
	"fmt"
	"log"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/windfield-data/planebox/internal/plane"
)

// ExtractConfig selects the dataset slice that becomes a turbulence box:
// one streamwise index, the full lateral/vertical extent, all times.
type ExtractConfig struct {
	// PlaneIndex is the streamwise station to extract.
	PlaneIndex int

	// Hub location in lateral/vertical coordinates. ZHub is stored as
	// the reference height; the streamwise velocity interpolated at
	// (YHub, ZHub) and averaged over time becomes the reference velocity.
	YHub, ZHub float64

	// ID is the format variant (IDPeriodic when zero).
	ID int16

	// Components names the three velocity variables, in streamwise,
	// lateral, vertical order. Empty means velocityx/velocityy/velocityz.
	Components [3]string

	// Info is the free-text description; empty gets a generation stamp.
	Info string
}

// axisDims resolves which array dimension of the dataset runs along the
// global streamwise (x), lateral (y) and vertical (z) directions. Array
// dimensions are [plane][row][col] = [axis3][axis2][axis1]. Any
// ambiguity is fatal rather than guessed.
func axisDims(axis1, axis2, axis3 plane.Vec3) (stream, lateral, vertical int, err error) {
	axes := [3]plane.Vec3{axis1, axis2, axis3}

	// comp[i] is the global component axis(i+1) points along, -1 if the
	// axis is the zero vector.
	var comp [3]int
	for i, ax := range axes {
		comp[i] = -1
		for c, v := range ax {
			if v != 0 {
				if comp[i] != -1 {
					return 0, 0, 0, configErrorf(
						"axis%d %v is not grid-aligned: cannot resolve streamwise/lateral/vertical directions", i+1, ax)
				}
				comp[i] = c
			}
		}
	}

	// At most one zero axis can be filled in by elimination.
	missing := -1
	sum := 0
	for i, c := range comp {
		if c == -1 {
			if missing != -1 {
				return 0, 0, 0, configErrorf("axis%d and axis%d are both zero: ambiguous axis assignment", missing+1, i+1)
			}
			missing = i
		} else {
			sum += c
		}
	}
	if missing != -1 {
		comp[missing] = 3 - sum
	}

	// dims[c] is the array dimension running along global component c.
	// axis(i+1) is array dimension 2-i.
	dims := [3]int{-1, -1, -1}
	for i, c := range comp {
		if c < 0 || c > 2 || dims[c] != -1 {
			return 0, 0, 0, configErrorf("ambiguous axis assignment: components %v", comp)
		}
		dims[c] = 2 - i
	}
	return dims[0], dims[1], dims[2], nil
}

// lineAlong extracts the coordinate vector along one array dimension,
// holding the other two dimensions at index zero.
func lineAlong(arr plane.Array, dim int) []float64 {
	np, nr, nc := arr.Dims()
	sizes := [3]int{np, nr, nc}
	out := make([]float64, sizes[dim])
	var idx [3]int
	for i := range out {
		idx = [3]int{0, 0, 0}
		idx[dim] = i
		out[i] = arr[idx[0]][idx[1]][idx[2]]
	}
	return out
}

// FromDataset builds a turbulence box from one streamwise station of the
// dataset. All validation happens here; a returned Box always writes.
func FromDataset(ds *plane.Dataset, cfg ExtractConfig) (*Box, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	streamDim, latDim, vertDim, err := axisDims(ds.Axis1, ds.Axis2, ds.Axis3)
	if err != nil {
		return nil, err
	}

	x := lineAlong(ds.X, streamDim)
	y := lineAlong(ds.Y, latDim)
	z := lineAlong(ds.Z, vertDim)

	if cfg.PlaneIndex < 0 || cfg.PlaneIndex >= len(x) {
		return nil, configErrorf("streamwise index %d out of range (have %d stations)", cfg.PlaneIndex, len(x))
	}
	nt := len(ds.Times)
	if nt == 0 {
		return nil, configErrorf("dataset has zero timesteps")
	}
	ny, nz := len(y), len(z)
	if ny == 0 || nz == 0 {
		return nil, configErrorf("empty grid extent (%dx%d)", ny, nz)
	}

	components := cfg.Components
	if components == [3]string{} {
		components = [3]string{"velocityx", "velocityy", "velocityz"}
	}

	b := &Box{
		ID:   cfg.ID,
		ZRef: cfg.ZHub,
		Info: cfg.Info,
	}
	if b.ID == 0 {
		b.ID = IDPeriodic
	}
	if b.Info == "" {
		b.Info = fmt.Sprintf("Generated by planebox on %s.", time.Now().Format("02-Jan-2006 at 15:04:05"))
	}

	b.T = make([]float64, nt)
	for it, t := range ds.Times {
		b.T[it] = round7(t)
	}

	for k, name := range components {
		b.U[k] = make([][][]float64, nt)
		for it := 0; it < nt; it++ {
			frame, err := ds.FieldFrame(name, it)
			if err != nil {
				return nil, err
			}
			grid := make([][]float64, ny)
			var idx [3]int
			for iy := 0; iy < ny; iy++ {
				grid[iy] = make([]float64, nz)
				for iz := 0; iz < nz; iz++ {
					idx[streamDim] = cfg.PlaneIndex
					idx[latDim] = iy
					idx[vertDim] = iz
					grid[iy][iz] = frame[idx[0]][idx[1]][idx[2]]
				}
			}
			b.U[k][it] = grid
		}
	}

	// Reference velocity: streamwise component interpolated at the hub
	// location every timestep, averaged over time. Interpolation runs on
	// the uncentered lateral coordinates.
	uRef := make([]float64, nt)
	for it := 0; it < nt; it++ {
		ip, err := plane.NewInterpolant(y, z, b.U[0][it], plane.MethodLinear)
		if err != nil {
			return nil, err
		}
		uRef[it], err = ip.At(cfg.YHub, cfg.ZHub)
		if err != nil {
			return nil, fmt.Errorf("hub location (y=%g, z=%g): %w", cfg.YHub, cfg.ZHub, err)
		}
	}
	b.URef = stat.Mean(uRef, nil)
	log.Printf("bts: reference velocity %g at hub (y=%g, z=%g)", b.URef, cfg.YHub, cfg.ZHub)

	// Lateral coordinates are stored centered on zero.
	yMean := stat.Mean(y, nil)
	b.Y = make([]float64, ny)
	for i, v := range y {
		b.Y[i] = v - yMean
	}
	b.Z = append([]float64(nil), z...)

	return b, nil
}
