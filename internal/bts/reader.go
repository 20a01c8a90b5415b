package bts

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/stat"
)

// Read parses a turbulence-box file back into a Box with dequantized
// velocity grids. The y vector is reconstructed centered on zero and the
// time vector from dt, since the format stores only spacings.
func Read(path string) (*Box, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bts: open %s: %w", path, err)
	}
	defer f.Close()
	b, err := decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("bts: read %s: %w", path, err)
	}
	return b, nil
}

func decode(r io.Reader) (*Box, error) {
	var hdr header
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	var infoLen int32
	if err := binary.Read(r, binary.LittleEndian, &infoLen); err != nil {
		return nil, err
	}
	if infoLen < 0 {
		return nil, fmt.Errorf("negative info length %d", infoLen)
	}
	info := make([]byte, infoLen)
	if _, err := io.ReadFull(r, info); err != nil {
		return nil, err
	}

	nt, ny, nz, nTower := int(hdr.NT), int(hdr.NY), int(hdr.NZ), int(hdr.NTower)
	if nt <= 0 || ny <= 0 || nz <= 0 || nTower < 0 {
		return nil, fmt.Errorf("invalid dimensions nt=%d ny=%d nz=%d nTower=%d", nt, ny, nz, nTower)
	}

	b := &Box{
		ID:   hdr.ID,
		ZRef: float64(hdr.ZRef),
		URef: float64(hdr.URef),
		Info: string(info),
	}
	scale := [3]float32{hdr.Scale0, hdr.Scale1, hdr.Scale2}
	offset := [3]float32{hdr.Offset0, hdr.Offset1, hdr.Offset2}

	b.T = make([]float64, nt)
	for it := range b.T {
		b.T[it] = round7(float64(it) * float64(hdr.DT))
	}
	b.Z = make([]float64, nz)
	for iz := range b.Z {
		b.Z[iz] = float64(hdr.Z0) + float64(iz)*float64(hdr.DZ)
	}
	y := make([]float64, ny)
	for iy := range y {
		y[iy] = float64(iy) * float64(hdr.DY)
	}
	yMean := stat.Mean(y, nil)
	b.Y = y
	for iy := range b.Y {
		b.Y[iy] -= yMean
	}

	for k := 0; k < 3; k++ {
		b.U[k] = make([][][]float64, nt)
		if nTower > 0 {
			b.UTower[k] = make([][]float64, nt)
		}
	}
	grid := make([]int16, 3*ny*nz)
	tower := make([]int16, 3*nTower)
	for it := 0; it < nt; it++ {
		if err := binary.Read(r, binary.LittleEndian, grid); err != nil {
			return nil, fmt.Errorf("timestep %d grid: %w", it, err)
		}
		for k := 0; k < 3; k++ {
			g := make([][]float64, ny)
			for iy := range g {
				g[iy] = make([]float64, nz)
			}
			b.U[k][it] = g
		}
		i := 0
		for iz := 0; iz < nz; iz++ {
			for iy := 0; iy < ny; iy++ {
				for k := 0; k < 3; k++ {
					b.U[k][it][iy][iz] = dequantize(grid[i], scale[k], offset[k])
					i++
				}
			}
		}
		if nTower > 0 {
			if err := binary.Read(r, binary.LittleEndian, tower); err != nil {
				return nil, fmt.Errorf("timestep %d tower: %w", it, err)
			}
			for k := 0; k < 3; k++ {
				b.UTower[k][it] = make([]float64, nTower)
			}
			i = 0
			for itwr := 0; itwr < nTower; itwr++ {
				for k := 0; k < 3; k++ {
					b.UTower[k][it][itwr] = dequantize(tower[i], scale[k], offset[k])
					i++
				}
			}
		}
	}
	return b, nil
}

func dequantize(q int16, scale, offset float32) float64 {
	return (float64(q) - float64(offset)) / float64(scale)
}
