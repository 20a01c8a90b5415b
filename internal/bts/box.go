// Package bts stages a three-component velocity time series on a fixed
// y-z grid and reads/writes the quantized binary turbulence-box format
// consumed by aeroelastic solvers.
package bts

import (
	"fmt"
	"math"
)

// Format ID variants understood by downstream readers.
const (
	IDNonPeriodic int16 = 7
	IDPeriodic    int16 = 8
)

// ConfigError reports a box or extraction request that cannot produce a
// valid file: empty grid, zero timesteps, unresolvable axes.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "bts: invalid configuration: " + e.Reason
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// Box is the in-memory staging form of a turbulence box. It is built
// once per conversion, handed to Write, and discarded.
type Box struct {
	ID int16

	// U holds the three velocity components over [time][iy][iz].
	U [3][][][]float64

	// UTower holds optional tower points per component over
	// [time][itower]. All components nil means no tower.
	UTower [3][][]float64

	// Grid coordinates. Y is recentered to zero mean by the extraction
	// step; Z and T are stored as given.
	Y, Z, T []float64

	// Reference height and velocity recorded in the header.
	ZRef, URef float64

	// Free-text description written into the file.
	Info string
}

// Dims returns (nt, ny, nz, nTower).
func (b *Box) Dims() (nt, ny, nz, nTower int) {
	nt = len(b.U[0])
	ny = len(b.Y)
	nz = len(b.Z)
	if len(b.UTower[0]) > 0 {
		nTower = len(b.UTower[0][0])
	}
	return nt, ny, nz, nTower
}

// Validate checks that the box describes a writable file. All checks run
// before any output file is touched.
func (b *Box) Validate() error {
	nt, ny, nz, nTower := b.Dims()
	if nt == 0 {
		return configErrorf("zero timesteps")
	}
	if ny == 0 || nz == 0 {
		return configErrorf("empty grid extent (%dx%d)", ny, nz)
	}
	if len(b.T) != nt {
		return configErrorf("time vector length %d for %d timesteps", len(b.T), nt)
	}
	for k := 0; k < 3; k++ {
		if len(b.U[k]) != nt {
			return configErrorf("component %d has %d timesteps, want %d", k, len(b.U[k]), nt)
		}
		for it := 0; it < nt; it++ {
			if len(b.U[k][it]) != ny {
				return configErrorf("component %d timestep %d has %d rows, want %d", k, it, len(b.U[k][it]), ny)
			}
			for iy := 0; iy < ny; iy++ {
				if len(b.U[k][it][iy]) != nz {
					return configErrorf("component %d timestep %d row %d has %d values, want %d",
						k, it, iy, len(b.U[k][it][iy]), nz)
				}
			}
		}
		if len(b.UTower[k]) != 0 {
			if len(b.UTower[k]) != nt {
				return configErrorf("tower component %d has %d timesteps, want %d", k, len(b.UTower[k]), nt)
			}
			for it := 0; it < nt; it++ {
				if len(b.UTower[k][it]) != nTower {
					return configErrorf("tower component %d timestep %d has %d points, want %d",
						k, it, len(b.UTower[k][it]), nTower)
				}
			}
		}
	}
	return nil
}

// quantization holds the per-component scale and offset mapping observed
// float ranges onto int16.
type quantization struct {
	scale  [3]float32
	offset [3]float32
}

const (
	intMin   = -32768
	intRange = 65535
)

// quantize computes scale and offset per component, pooling the main
// grid and the tower. A constant component gets scale 1.
func (b *Box) quantize() quantization {
	var q quantization
	for k := 0; k < 3; k++ {
		min, max := math.Inf(1), math.Inf(-1)
		for _, grid := range b.U[k] {
			for _, row := range grid {
				for _, v := range row {
					min = math.Min(min, v)
					max = math.Max(max, v)
				}
			}
		}
		for _, twr := range b.UTower[k] {
			for _, v := range twr {
				min = math.Min(min, v)
				max = math.Max(max, v)
			}
		}
		if min == max {
			q.scale[k] = 1
		} else {
			q.scale[k] = float32(intRange / (max - min))
		}
		q.offset[k] = float32(intMin - float64(q.scale[k])*min)
	}
	return q
}

// quantizeValue maps one sample through scale/offset to int16, clamping
// the float32 rounding slop at the extremes.
func quantizeValue(v float64, scale, offset float32) int16 {
	q := math.Round(v*float64(scale) + float64(offset))
	if q < -32768 {
		q = -32768
	}
	if q > 32767 {
		q = 32767
	}
	return int16(q)
}

// round7 rounds to 7 decimal places to suppress floating-point jitter in
// stored times.
func round7(v float64) float64 {
	return math.Round(v*1e7) / 1e7
}
