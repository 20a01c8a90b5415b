package plane

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDataset builds stacked y-z sampling planes: axis1=(0,1,0),
// axis2=(0,0,1), axis3=(1,0,0). Columns run along y, rows along z.
// The velocity field is linear in the native coordinates so bilinear
// interpolation reproduces it exactly.
func testDataset(t *testing.T, offsets []float64, yv, zv []float64) *Dataset {
	t.Helper()
	np, nr, nc := len(offsets), len(zv), len(yv)
	ds := &Dataset{
		X: NewArray(np, nr, nc, func(p, r, c int) float64 { return offsets[p] }),
		Y: NewArray(np, nr, nc, func(p, r, c int) float64 { return yv[c] }),
		Z: NewArray(np, nr, nc, func(p, r, c int) float64 { return zv[r] }),
		Fields: map[string]*Field{
			"velocityx": {
				Static: NewArray(np, nr, nc, func(p, r, c int) float64 {
					return 2*yv[c] + 3*zv[r] + float64(p)
				}),
			},
		},
		Times:     []float64{0},
		Timesteps: []int{0},
		Origin:    Vec3{0, 0, 0},
		Axis1:     Vec3{0, 1, 0},
		Axis2:     Vec3{0, 0, 1},
		Axis3:     Vec3{1, 0, 0},
		Offsets:   offsets,
	}
	// The only time-invariant field above pairs with a single dummy
	// time entry so Validate passes.
	require.NoError(t, ds.Validate())
	return ds
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Vec3{0, 0, 0}, Normalize(Vec3{0, 0, 0}), "zero vector passes through unchanged")
	assert.Equal(t, Vec3{1, 0, 0}, Normalize(Vec3{5, 0, 0}))

	n := Normalize(Vec3{1, 1, 1})
	assert.InDelta(t, 1.0, n.Norm(), 1e-15)
}

func TestNewFrameDegenerateAxes(t *testing.T) {
	t.Parallel()

	_, err := NewFrame(Vec3{}, Vec3{0, 0, 0}, Vec3{0, 0, 1}, Vec3{1, 0, 0}, []float64{0})
	var degen *DegenerateAxisError
	require.ErrorAs(t, err, &degen)
	assert.Equal(t, "axis1", degen.Axis)

	// A nonzero but near-zero axis3 would scale offsets to near
	// infinity; it is rejected rather than normalized.
	_, err = NewFrame(Vec3{}, Vec3{0, 1, 0}, Vec3{0, 0, 1}, Vec3{1e-14, 0, 0}, []float64{0})
	require.ErrorAs(t, err, &degen)
	assert.Equal(t, "axis3", degen.Axis)

	// An exactly zero axis3 is the legal single-plane case.
	f, err := NewFrame(Vec3{}, Vec3{0, 1, 0}, Vec3{0, 0, 1}, Vec3{0, 0, 0}, []float64{0})
	require.NoError(t, err)
	porigin, err := f.PlaneOrigin(0)
	require.NoError(t, err)
	assert.Equal(t, Vec3{0, 0, 0}, porigin)

	// But it cannot stack multiple planes.
	_, err = NewFrame(Vec3{}, Vec3{0, 1, 0}, Vec3{0, 0, 1}, Vec3{0, 0, 0}, []float64{0, 10})
	var cfg *ConfigError
	assert.ErrorAs(t, err, &cfg)
}

func TestPlaneOriginStacking(t *testing.T) {
	t.Parallel()

	// axis3 need not be unit length as stored.
	f, err := NewFrame(Vec3{1, 2, 3}, Vec3{0, 1, 0}, Vec3{0, 0, 1}, Vec3{2, 0, 0}, []float64{0, 10})
	require.NoError(t, err)

	p0, err := f.PlaneOrigin(0)
	require.NoError(t, err)
	assert.Equal(t, Vec3{1, 2, 3}, p0)

	p1, err := f.PlaneOrigin(1)
	require.NoError(t, err)
	assert.Equal(t, Vec3{11, 2, 3}, p1)

	_, err = f.PlaneOrigin(2)
	assert.Error(t, err)
}

func TestStackedPlaneNativeCoords(t *testing.T) {
	t.Parallel()

	f, err := NewFrame(Vec3{0, 0, 0}, Vec3{0, 1, 0}, Vec3{0, 0, 1}, Vec3{1, 0, 0}, []float64{0, 10})
	require.NoError(t, err)

	// The same in-plane location on either plane yields the same
	// native coordinates.
	nat, err := f.ToNative([]Vec3{{0, 2, 3}, {10, 2, 3}}, []int{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, nat[0].A1, 1e-12)
	assert.InDelta(t, 3.0, nat[0].A2, 1e-12)
	assert.InDelta(t, 2.0, nat[1].A1, 1e-12)
	assert.InDelta(t, 3.0, nat[1].A2, 1e-12)
}

func TestToGlobalToNativeRoundTrip(t *testing.T) {
	t.Parallel()

	f, err := NewFrame(Vec3{5, -1, 2}, Vec3{0, 2, 0}, Vec3{0, 0, 7}, Vec3{3, 0, 0}, []float64{0, 4, 10})
	require.NoError(t, err)

	pts := []Native{{A1: 0, A2: 0}, {A1: 1.5, A2: -2.25}, {A1: -7, A2: 3}}
	for iplane := 0; iplane < f.NPlanes(); iplane++ {
		glb, err := f.ToGlobal(pts, iplane)
		require.NoError(t, err)
		planes := []int{iplane, iplane, iplane}
		back, err := f.ToNative(glb, planes)
		require.NoError(t, err)
		for i := range pts {
			assert.InDelta(t, pts[i].A1, back[i].A1, 1e-12, "plane %d point %d", iplane, i)
			assert.InDelta(t, pts[i].A2, back[i].A2, 1e-12, "plane %d point %d", iplane, i)
		}
	}
}

func TestProjectToPlane(t *testing.T) {
	t.Parallel()

	f, err := NewFrame(Vec3{0, 0, 0}, Vec3{0, 1, 0}, Vec3{0, 0, 1}, Vec3{1, 0, 0}, []float64{0, 10})
	require.NoError(t, err)

	// A point 3 units off plane 1 along its normal lands on the plane.
	proj, err := f.ProjectToPlane(Vec3{13, 4, 5}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, proj[0], 1e-12)
	assert.InDelta(t, 4.0, proj[1], 1e-12)
	assert.InDelta(t, 5.0, proj[2], 1e-12)
}

func TestComputeNativeCoords(t *testing.T) {
	t.Parallel()

	yv := []float64{-1, 0, 1, 2}
	zv := []float64{0, 1, 2, 3}
	ds := testDataset(t, []float64{0, 10}, yv, zv)

	require.NoError(t, ds.ComputeNativeCoords())
	for p := 0; p < 2; p++ {
		for r := range zv {
			for c := range yv {
				assert.InDelta(t, yv[c], ds.A1[p][r][c], 1e-12)
				assert.InDelta(t, zv[r], ds.A2[p][r][c], 1e-12)
			}
		}
	}

	// Recomputation is idempotent and cheap.
	a1 := ds.A1
	require.NoError(t, ds.ComputeNativeCoords())
	assert.Same(t, &a1[0][0][0], &ds.A1[0][0][0], "cached arrays are reused")
}

func TestValidateShapeMismatch(t *testing.T) {
	t.Parallel()

	ds := testDataset(t, []float64{0}, []float64{0, 1}, []float64{0, 1})
	ds.Offsets = []float64{0, 1}
	var cfg *ConfigError
	assert.ErrorAs(t, ds.Validate(), &cfg)
}
