package task

import (
	"fmt"
	"log"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/windfield-data/planebox/internal/plane"
)

// globalAttributes is the optional top-level section steering the run.
type globalAttributes struct {
	Verbose      bool     `yaml:"verbose"`
	ExecuteOrder []string `yaml:"executeorder"`
}

// RunFile parses and executes a YAML task file against the dataset.
func RunFile(path string, ds *plane.Dataset) error {
	doc, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("task: read %s: %w", path, err)
	}
	return Run(doc, ds)
}

// Run executes every task section in the document. All sections are
// configured before any task executes, so a misconfigured file fails
// without side effects. With an executeorder attribute the named tasks
// run in that order; otherwise all present tasks run in sorted name
// order.
func Run(doc []byte, ds *plane.Dataset) error {
	var root map[string]yaml.Node
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return fmt.Errorf("task: parse task file: %w", err)
	}

	var global globalAttributes
	if node, ok := root["globalattributes"]; ok {
		if err := node.Decode(&global); err != nil {
			return fmt.Errorf("task: globalattributes: %w", err)
		}
		delete(root, "globalattributes")
	}

	var order []string
	if len(global.ExecuteOrder) > 0 {
		order = global.ExecuteOrder
	} else {
		for name := range root {
			order = append(order, name)
		}
		sort.Strings(order)
	}

	tasks := make([]Task, 0, len(order))
	for _, name := range order {
		node, ok := root[name]
		if !ok {
			return fmt.Errorf("task: executeorder names %q but the task file has no such section", name)
		}
		t, err := New(name)
		if err != nil {
			return err
		}
		if err := t.Configure(&node); err != nil {
			return fmt.Errorf("task: %s: %w", name, err)
		}
		tasks = append(tasks, t)
	}
	for i, t := range tasks {
		if global.Verbose {
			log.Printf("task: running %s", order[i])
		}
		if err := t.Execute(ds); err != nil {
			return fmt.Errorf("task: %s: %w", order[i], err)
		}
	}
	return nil
}
