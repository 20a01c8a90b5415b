package task

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windfield-data/planebox/internal/bts"
	"github.com/windfield-data/planebox/internal/plane"
)

// taskDataset builds two stacked y-z planes with all three velocity
// components time-resolved over two timesteps.
func taskDataset(t *testing.T) *plane.Dataset {
	t.Helper()
	span := []float64{-4, -2, 0, 2, 4}
	offsets := []float64{0, 10}
	np, nr, nc := len(offsets), len(span), len(span)
	times := []float64{0, 0.1}
	ds := &plane.Dataset{
		X:         plane.NewArray(np, nr, nc, func(p, r, c int) float64 { return offsets[p] }),
		Y:         plane.NewArray(np, nr, nc, func(p, r, c int) float64 { return span[c] }),
		Z:         plane.NewArray(np, nr, nc, func(p, r, c int) float64 { return span[r] }),
		Fields:    map[string]*plane.Field{},
		Times:     times,
		Timesteps: []int{0, 1},
		Axis1:     plane.Vec3{0, 1, 0},
		Axis2:     plane.Vec3{0, 0, 1},
		Axis3:     plane.Vec3{1, 0, 0},
		Offsets:   offsets,
	}
	for comp, name := range []string{"velocityx", "velocityy", "velocityz"} {
		frames := make([]plane.Array, len(times))
		for ti := range times {
			comp, ti := comp, ti
			frames[ti] = plane.NewArray(np, nr, nc, func(p, r, c int) float64 {
				return 7.5 + float64(comp) + 0.1*float64(ti)
			})
		}
		ds.Fields[name] = &plane.Field{Frames: frames}
	}
	// Time-averaged field, the kind circumferential averaging runs on.
	ds.Fields["velocityx_avg"] = &plane.Field{
		Static: plane.NewArray(np, nr, nc, func(p, r, c int) float64 { return 7.55 }),
	}
	require.NoError(t, ds.Validate())
	return ds
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"bts", "circavg", "interpolate"}, Names())

	_, err := New("interpolate")
	assert.NoError(t, err)
	_, err = New("nosuchtask")
	assert.ErrorContains(t, err, "unknown capability")
}

func TestRunInterpolate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "points.csv")
	doc := fmt.Sprintf(`
interpolate:
  points:
    - [0.0, 1.0]
    - [1.0, 2.0]
  pointcoordsystem: a1a2
  varnames: [velocityx]
  method: linear
  iplane: [0, 1]
  timesteps: [0, 1]
  savefile: %s
`, out)

	require.NoError(t, Run([]byte(doc), taskDataset(t)))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "a1,a2,x,y,z,time,velocityx", lines[0])
	// 2 planes x 2 timesteps x 2 points.
	assert.Len(t, lines, 9)
}

func TestRunCircavgPerPlane(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := fmt.Sprintf(`
circavg:
  centerpoint: [0.0, 0.0]
  pointcoordsystem: a1a2
  r1: 0.5
  r2: 2.0
  nr: 3
  ntheta: 12
  varnames: [velocityx_avg]
  iplane: [0, 1]
  savefile: %s
  dbfile: %s
`, filepath.Join(dir, "profile_{iplane}.csv"), filepath.Join(dir, "results.db"))

	require.NoError(t, Run([]byte(doc), taskDataset(t)))

	for _, iplane := range []int{0, 1} {
		data, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf("profile_%d.csv", iplane)))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		assert.Equal(t, "r,velocityx_avg", lines[0])
		assert.Len(t, lines, 4, "header plus three radii")
	}

	info, err := os.Stat(filepath.Join(dir, "results.db"))
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestRunBTS(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "wind.bts")
	doc := fmt.Sprintf(`
bts:
  iplane: 0
  yhh: 0.0
  zhh: 0.0
  btsfile: %s
`, out)

	require.NoError(t, Run([]byte(doc), taskDataset(t)))

	box, err := bts.Read(out)
	require.NoError(t, err)
	nt, ny, nz, nTower := box.Dims()
	assert.Equal(t, 2, nt)
	assert.Equal(t, 5, ny)
	assert.Equal(t, 5, nz)
	assert.Equal(t, 0, nTower)
	// Constant-in-space streamwise velocity averaged over both steps.
	assert.InDelta(t, (7.5+7.6)/2, box.URef, 1e-4)
}

func TestRunExecuteOrder(t *testing.T) {
	t.Parallel()

	doc := `
globalattributes:
  executeorder: [interpolate, missing]
interpolate:
  points: [[0.0, 1.0]]
  pointcoordsystem: a1a2
  varnames: [velocityx]
`
	err := Run([]byte(doc), taskDataset(t))
	assert.ErrorContains(t, err, "no such section")
}

func TestRunConfiguresBeforeExecuting(t *testing.T) {
	t.Parallel()

	// The second section is misconfigured, so the first must not have
	// produced its output file.
	dir := t.TempDir()
	out := filepath.Join(dir, "points.csv")
	doc := fmt.Sprintf(`
interpolate:
  points: [[0.0, 1.0]]
  pointcoordsystem: a1a2
  varnames: [velocityx]
  savefile: %s
circavg:
  centerpoint: [0.0, 0.0]
  pointcoordsystem: a1a2
  varnames: [velocityx]
  savefile: unused.csv
`, out)

	err := Run([]byte(doc), taskDataset(t))
	assert.ErrorContains(t, err, "required key")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output before all sections configure")
}

func TestConfigureRequiredKeys(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "interpolate missing points",
			doc: `
interpolate:
  pointcoordsystem: a1a2
  varnames: [velocityx]
`,
			want: "required key points not present",
		},
		{
			name: "circavg missing r1",
			doc: `
circavg:
  centerpoint: [0.0, 0.0]
  pointcoordsystem: a1a2
  r2: 2.0
  nr: 3
  varnames: [velocityx]
  savefile: out.csv
`,
			want: "required key r1 not present",
		},
		{
			name: "bts missing hub height",
			doc: `
bts:
  iplane: 0
  yhh: 0.0
  btsfile: out.bts
`,
			want: "required key zhh not present",
		},
		{
			name: "bts bad id",
			doc: `
bts:
  iplane: 0
  yhh: 0.0
  zhh: 0.0
  btsfile: out.bts
  id: 9
`,
			want: "id must be",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := Run([]byte(tc.doc), taskDataset(t))
			assert.ErrorContains(t, err, tc.want)
		})
	}
}
