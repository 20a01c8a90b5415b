// Command planebox runs postprocessing task files against a resolved
// sampling-plane dataset snapshot.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/windfield-data/planebox/internal/bts"
	"github.com/windfield-data/planebox/internal/snapshot"
	"github.com/windfield-data/planebox/internal/task"
	"github.com/windfield-data/planebox/internal/version"
)

var (
	dataFile    = flag.String("data", "", "Dataset snapshot (gzipped gob) to process")
	tasksFile   = flag.String("tasks", "", "YAML task file to execute")
	listTasks   = flag.Bool("list", false, "List registered capabilities and exit")
	inspect     = flag.String("inspect", "", "Print the header of a turbulence-box file and exit")
	showVersion = flag.Bool("version", false, "Print build information and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *listTasks {
		for _, name := range task.Names() {
			fmt.Println(name)
		}
		return
	}

	if *inspect != "" {
		box, err := bts.Read(*inspect)
		if err != nil {
			log.Fatalf("%v", err)
		}
		nt, ny, nz, nTower := box.Dims()
		fmt.Printf("id:      %d\n", box.ID)
		fmt.Printf("grid:    %d x %d (tower %d), %d timesteps\n", ny, nz, nTower, nt)
		fmt.Printf("uref:    %g\n", box.URef)
		fmt.Printf("zref:    %g\n", box.ZRef)
		fmt.Printf("info:    %s\n", box.Info)
		return
	}

	if *dataFile == "" || *tasksFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	ds, err := snapshot.Load(*dataFile)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("loaded dataset: %d planes, %d timesteps", ds.NPlanes(), len(ds.Times))

	if err := task.RunFile(*tasksFile, ds); err != nil {
		log.Fatalf("%v", err)
	}
}
