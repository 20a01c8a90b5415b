// Package task maps capability names to postprocessing tasks and drives
// them from a YAML task file. The registry is a static table populated
// at process start; there is no runtime discovery.
package task

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/windfield-data/planebox/internal/plane"
)

// Task is one configurable postprocessing capability. Configure is
// called exactly once with the task's YAML section before Execute.
type Task interface {
	Configure(node *yaml.Node) error
	Execute(ds *plane.Dataset) error
}

// Factory produces a fresh, unconfigured task.
type Factory func() Task

var registry = map[string]Factory{
	"interpolate": func() Task { return &interpolateTask{} },
	"circavg":     func() Task { return &circavgTask{} },
	"bts":         func() Task { return &btsTask{} },
}

// New returns an unconfigured task for the named capability.
func New(name string) (Task, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("task: unknown capability %q (have %v)", name, Names())
	}
	return f(), nil
}

// Names returns the registered capability names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// intList decodes a YAML scalar or sequence of integers; task files may
// give a single plane index or a list.
type intList []int

func (l *intList) UnmarshalYAML(node *yaml.Node) error {
	var single int
	if err := node.Decode(&single); err == nil {
		*l = intList{single}
		return nil
	}
	var many []int
	if err := node.Decode(&many); err != nil {
		return fmt.Errorf("want an integer or a list of integers: %w", err)
	}
	*l = intList(many)
	return nil
}
