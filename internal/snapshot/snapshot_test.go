package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windfield-data/planebox/internal/plane"
)

func sampleDataset(t *testing.T) *plane.Dataset {
	t.Helper()
	yv := []float64{-1, 0, 1}
	zv := []float64{0, 1, 2}
	np, nr, nc := 2, len(zv), len(yv)
	offsets := []float64{0, 10}
	ds := &plane.Dataset{
		X: plane.NewArray(np, nr, nc, func(p, r, c int) float64 { return offsets[p] }),
		Y: plane.NewArray(np, nr, nc, func(p, r, c int) float64 { return yv[c] }),
		Z: plane.NewArray(np, nr, nc, func(p, r, c int) float64 { return zv[r] }),
		Fields: map[string]*plane.Field{
			"velocityx": {
				Frames: []plane.Array{
					plane.NewArray(np, nr, nc, func(p, r, c int) float64 { return yv[c] + zv[r] }),
					plane.NewArray(np, nr, nc, func(p, r, c int) float64 { return 2 * (yv[c] + zv[r]) }),
				},
			},
		},
		Times:     []float64{0, 0.1},
		Timesteps: []int{0, 1},
		Axis1:     plane.Vec3{0, 1, 0},
		Axis2:     plane.Vec3{0, 0, 1},
		Axis3:     plane.Vec3{1, 0, 0},
		Offsets:   offsets,
	}
	require.NoError(t, ds.Validate())
	return ds
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	ds := sampleDataset(t)
	path := filepath.Join(t.TempDir(), "dataset.gob.gz")
	require.NoError(t, Save(path, ds))

	got, err := Load(path)
	require.NoError(t, err)

	if diff := cmp.Diff(ds, got, cmpopts.IgnoreUnexported(plane.Dataset{})); diff != "" {
		t.Errorf("dataset mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveInvalidDataset(t *testing.T) {
	t.Parallel()

	ds := sampleDataset(t)
	ds.Offsets = []float64{0} // shape mismatch

	path := filepath.Join(t.TempDir(), "bad.gob.gz")
	require.Error(t, Save(path, ds))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "invalid dataset creates no file")
}

func TestLoadRejectsPlainFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a snapshot"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "not gzipped gob")
}
