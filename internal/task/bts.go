package task

import (
	"fmt"
	"log"

	"gopkg.in/yaml.v3"

	"github.com/windfield-data/planebox/internal/bts"
	"github.com/windfield-data/planebox/internal/plane"
)

// btsTask converts one streamwise station of the dataset into a binary
// turbulence-box file.
type btsTask struct {
	cfg btsConfig
}

type btsConfig struct {
	IPlane  *int     `yaml:"iplane"`
	YHub    *float64 `yaml:"yhh"`
	ZHub    *float64 `yaml:"zhh"`
	BTSFile string   `yaml:"btsfile"`
	ID      int16    `yaml:"id"`
	Info    string   `yaml:"info"`
}

func (t *btsTask) Configure(node *yaml.Node) error {
	if err := node.Decode(&t.cfg); err != nil {
		return err
	}
	for key, missing := range map[string]bool{
		"iplane":  t.cfg.IPlane == nil,
		"yhh":     t.cfg.YHub == nil,
		"zhh":     t.cfg.ZHub == nil,
		"btsfile": t.cfg.BTSFile == "",
	} {
		if missing {
			return fmt.Errorf("required key %s not present", key)
		}
	}
	switch t.cfg.ID {
	case 0, bts.IDNonPeriodic, bts.IDPeriodic:
	default:
		return fmt.Errorf("id must be %d (non-periodic) or %d (periodic), got %d",
			bts.IDNonPeriodic, bts.IDPeriodic, t.cfg.ID)
	}
	return nil
}

func (t *btsTask) Execute(ds *plane.Dataset) error {
	box, err := bts.FromDataset(ds, bts.ExtractConfig{
		PlaneIndex: *t.cfg.IPlane,
		YHub:       *t.cfg.YHub,
		ZHub:       *t.cfg.ZHub,
		ID:         t.cfg.ID,
		Info:       t.cfg.Info,
	})
	if err != nil {
		return err
	}
	if err := bts.Write(t.cfg.BTSFile, box); err != nil {
		return err
	}
	nt, ny, nz, _ := box.Dims()
	log.Printf("bts: wrote %s (%d timesteps, %dx%d grid)", t.cfg.BTSFile, nt, ny, nz)
	return nil
}
