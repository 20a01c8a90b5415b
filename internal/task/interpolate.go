package task

import (
	"fmt"
	"log"

	"gopkg.in/yaml.v3"

	"github.com/windfield-data/planebox/internal/plane"
)

// interpolateTask extracts variables at an arbitrary set of points.
type interpolateTask struct {
	cfg interpolateConfig

	coords plane.CoordSystem
	method plane.Method
	points []plane.Vec3
	native []plane.Native
}

type interpolateConfig struct {
	Points           [][]float64 `yaml:"points"`
	PointCoordSystem string      `yaml:"pointcoordsystem"`
	VarNames         []string    `yaml:"varnames"`
	Method           string      `yaml:"method"`
	IPlane           intList     `yaml:"iplane"`
	Timesteps        []int       `yaml:"timesteps"`
	SaveFile         string      `yaml:"savefile"`
}

func (t *interpolateTask) Configure(node *yaml.Node) error {
	if err := node.Decode(&t.cfg); err != nil {
		return err
	}
	if len(t.cfg.Points) == 0 {
		return fmt.Errorf("required key points not present")
	}
	if t.cfg.PointCoordSystem == "" {
		return fmt.Errorf("required key pointcoordsystem not present")
	}
	if len(t.cfg.VarNames) == 0 {
		return fmt.Errorf("required key varnames not present")
	}
	var err error
	t.coords, err = plane.ParseCoordSystem(t.cfg.PointCoordSystem)
	if err != nil {
		return err
	}
	t.method, err = plane.ParseMethod(t.cfg.Method)
	if err != nil {
		return err
	}
	if len(t.cfg.IPlane) == 0 {
		t.cfg.IPlane = intList{0}
	}
	for i, pt := range t.cfg.Points {
		switch t.coords {
		case plane.CoordGlobal:
			if len(pt) != 3 {
				return fmt.Errorf("point %d has %d components, xyz points need 3", i, len(pt))
			}
			t.points = append(t.points, plane.Vec3{pt[0], pt[1], pt[2]})
		case plane.CoordNative:
			if len(pt) != 2 {
				return fmt.Errorf("point %d has %d components, a1a2 points need 2", i, len(pt))
			}
			t.native = append(t.native, plane.Native{A1: pt[0], A2: pt[1]})
		}
	}
	return nil
}

func (t *interpolateTask) Execute(ds *plane.Dataset) error {
	tbl, err := plane.Interpolate(ds, plane.Query{
		Points:       t.points,
		NativePoints: t.native,
		Coords:       t.coords,
		Planes:       t.cfg.IPlane,
		Variables:    t.cfg.VarNames,
		Timesteps:    t.cfg.Timesteps,
		Method:       t.method,
	})
	if err != nil {
		return err
	}
	if t.cfg.SaveFile != "" {
		if err := tbl.SaveCSV(t.cfg.SaveFile); err != nil {
			return err
		}
		log.Printf("interpolate: wrote %d rows to %s", tbl.Len(), t.cfg.SaveFile)
	}
	return nil
}
