package task

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/windfield-data/planebox/internal/plane"
	"github.com/windfield-data/planebox/internal/report"
	"github.com/windfield-data/planebox/internal/store"
)

// circavgTask averages variables over circles of query points and saves
// the resulting radial profiles.
type circavgTask struct {
	cfg    circavgConfig
	radial plane.RadialConfig
}

type circavgConfig struct {
	CenterPoint      []float64 `yaml:"centerpoint"`
	PointCoordSystem string    `yaml:"pointcoordsystem"`
	R1               *float64  `yaml:"r1"`
	R2               *float64  `yaml:"r2"`
	NR               *int      `yaml:"nr"`
	Theta1           float64   `yaml:"theta1"`
	Theta2           *float64  `yaml:"theta2"`
	NTheta           int       `yaml:"ntheta"`
	VarNames         []string  `yaml:"varnames"`
	IPlane           intList   `yaml:"iplane"`
	SaveFile         string    `yaml:"savefile"`
	PlotFile         string    `yaml:"plotfile"`
	HTMLFile         string    `yaml:"htmlfile"`
	DBFile           string    `yaml:"dbfile"`
}

func (t *circavgTask) Configure(node *yaml.Node) error {
	if err := node.Decode(&t.cfg); err != nil {
		return err
	}
	for key, missing := range map[string]bool{
		"centerpoint":      len(t.cfg.CenterPoint) == 0,
		"pointcoordsystem": t.cfg.PointCoordSystem == "",
		"r1":               t.cfg.R1 == nil,
		"r2":               t.cfg.R2 == nil,
		"nr":               t.cfg.NR == nil,
		"varnames":         len(t.cfg.VarNames) == 0,
		"savefile":         t.cfg.SaveFile == "",
	} {
		if missing {
			return fmt.Errorf("required key %s not present", key)
		}
	}
	coords, err := plane.ParseCoordSystem(t.cfg.PointCoordSystem)
	if err != nil {
		return err
	}
	if len(t.cfg.IPlane) == 0 {
		t.cfg.IPlane = intList{0}
	}
	theta2 := 2 * math.Pi
	if t.cfg.Theta2 != nil {
		theta2 = *t.cfg.Theta2
	}
	nTheta := t.cfg.NTheta
	if nTheta == 0 {
		nTheta = 180
	}

	t.radial = plane.RadialConfig{
		CenterCoords: coords,
		RInner:       *t.cfg.R1,
		ROuter:       *t.cfg.R2,
		NRadial:      *t.cfg.NR,
		ThetaStart:   t.cfg.Theta1,
		ThetaEnd:     theta2,
		NTheta:       nTheta,
		Variables:    t.cfg.VarNames,
		Planes:       t.cfg.IPlane,
	}
	switch coords {
	case plane.CoordGlobal:
		if len(t.cfg.CenterPoint) != 3 {
			return fmt.Errorf("xyz centerpoint needs 3 components, got %d", len(t.cfg.CenterPoint))
		}
		t.radial.Center = plane.Vec3{t.cfg.CenterPoint[0], t.cfg.CenterPoint[1], t.cfg.CenterPoint[2]}
	case plane.CoordNative:
		if len(t.cfg.CenterPoint) != 2 {
			return fmt.Errorf("a1a2 centerpoint needs 2 components, got %d", len(t.cfg.CenterPoint))
		}
		t.radial.CenterNative = plane.Native{A1: t.cfg.CenterPoint[0], A2: t.cfg.CenterPoint[1]}
	}
	return nil
}

// perPlanePath substitutes the {iplane} placeholder in output paths.
func perPlanePath(pattern string, iplane int) string {
	return strings.ReplaceAll(pattern, "{iplane}", strconv.Itoa(iplane))
}

func (t *circavgTask) Execute(ds *plane.Dataset) error {
	profiles, err := plane.RadialProfiles(ds, t.radial)
	if err != nil {
		return err
	}

	var db *store.Store
	var runID string
	if t.cfg.DBFile != "" {
		db, err = store.Open(t.cfg.DBFile)
		if err != nil {
			return err
		}
		defer db.Close()
		runID, err = db.RecordRun("circavg")
		if err != nil {
			return err
		}
	}

	for _, iplane := range t.cfg.IPlane {
		prof := profiles[iplane]
		path := perPlanePath(t.cfg.SaveFile, iplane)
		if err := prof.Table().SaveCSV(path); err != nil {
			return err
		}
		log.Printf("circavg: plane %d: wrote %d radii to %s", iplane, len(prof.R), path)

		title := fmt.Sprintf("Radial profile (plane %d)", iplane)
		if t.cfg.PlotFile != "" {
			if err := report.SaveProfilePNG(perPlanePath(t.cfg.PlotFile, iplane), title, prof); err != nil {
				return err
			}
		}
		if t.cfg.HTMLFile != "" {
			if err := report.SaveProfileHTML(perPlanePath(t.cfg.HTMLFile, iplane), title, prof); err != nil {
				return err
			}
		}
		if db != nil {
			if err := db.RecordProfile(runID, iplane, prof); err != nil {
				return err
			}
		}
	}
	return nil
}
