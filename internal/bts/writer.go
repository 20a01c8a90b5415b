package bts

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// header is the fixed little-endian file header. Field order is the wire
// layout; do not reorder.
type header struct {
	ID                      int16
	NZ, NY, NTower, NT      int32
	DZ, DY, DT, URef, ZRef  float32
	Z0                      float32
	Scale0, Offset0         float32
	Scale1, Offset1         float32
	Scale2, Offset2         float32
}

// Write validates, quantizes and serializes the box to path. No file is
// created until validation passes, and a partially written file is
// removed on any error.
func Write(path string, b *Box) error {
	if err := b.Validate(); err != nil {
		return err
	}
	q := b.quantize()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bts: create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := b.encode(bw, q); err == nil {
		err = bw.Flush()
	} else {
		bw.Flush()
	}
	if err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("bts: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("bts: close %s: %w", path, err)
	}
	return nil
}

func (b *Box) encode(w io.Writer, q quantization) error {
	nt, ny, nz, nTower := b.Dims()

	spacing := func(xs []float64) float32 {
		if len(xs) < 2 {
			return 0
		}
		return float32(xs[1] - xs[0])
	}

	hdr := header{
		ID:     b.ID,
		NZ:     int32(nz),
		NY:     int32(ny),
		NTower: int32(nTower),
		NT:     int32(nt),
		DZ:     spacing(b.Z),
		DY:     spacing(b.Y),
		DT:     spacing(b.T),
		URef:   float32(b.URef),
		ZRef:   float32(b.ZRef),
		Z0:     float32(b.Z[0]),
		Scale0: q.scale[0], Offset0: q.offset[0],
		Scale1: q.scale[1], Offset1: q.offset[1],
		Scale2: q.scale[2], Offset2: q.offset[2],
	}
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	info := []byte(b.Info)
	if err := binary.Write(w, binary.LittleEndian, int32(len(info))); err != nil {
		return err
	}
	if _, err := w.Write(info); err != nil {
		return err
	}

	// Payload: per timestep, the main grid then the tower, each in
	// column-major order over (component, y, z) so the component index
	// varies fastest. This matches the reader side exactly.
	grid := make([]int16, 0, 3*ny*nz)
	tower := make([]int16, 0, 3*nTower)
	for it := 0; it < nt; it++ {
		grid = grid[:0]
		for iz := 0; iz < nz; iz++ {
			for iy := 0; iy < ny; iy++ {
				for k := 0; k < 3; k++ {
					grid = append(grid, quantizeValue(b.U[k][it][iy][iz], q.scale[k], q.offset[k]))
				}
			}
		}
		if err := binary.Write(w, binary.LittleEndian, grid); err != nil {
			return err
		}
		if nTower > 0 {
			tower = tower[:0]
			for itwr := 0; itwr < nTower; itwr++ {
				for k := 0; k < 3; k++ {
					tower = append(tower, quantizeValue(b.UTower[k][it][itwr], q.scale[k], q.offset[k]))
				}
			}
			if err := binary.Write(w, binary.LittleEndian, tower); err != nil {
				return err
			}
		}
	}
	return nil
}
