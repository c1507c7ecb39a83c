// Package depmap loads the static dependency map and answers whether a
// work item's prerequisites are satisfied.
package depmap

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Iron-Ham/foreman/internal/registry"
)

// Map relates a task id to the ordered set of task ids that must be done
// before it may be claimed. Tasks without an entry have no prerequisites.
type Map map[string][]string

// Load reads the dependency map from the given path. A missing file is
// not an error: it loads as an empty map, making every task eligible on
// the dependency axis.
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Map{}, nil
		}
		return nil, fmt.Errorf("read dependency map: %w", err)
	}

	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse dependency map %s: %w", path, err)
	}
	if m == nil {
		m = Map{}
	}
	return m, nil
}

// Prereqs returns the prerequisite ids for the given task, or nil if the
// task has no entry.
func (m Map) Prereqs(taskID string) []string {
	return m[taskID]
}

// Satisfied reports whether every prerequisite of the given task is done
// in the supplied status set. The statuses must come from the same
// registry snapshot the caller is deciding against, taken before any
// mutation in the current pass; a prerequisite id missing from the set
// counts as not done.
func (m Map) Satisfied(taskID string, statuses map[string]registry.Status) bool {
	for _, dep := range m[taskID] {
		if statuses[dep] != registry.StatusDone {
			return false
		}
	}
	return true
}
