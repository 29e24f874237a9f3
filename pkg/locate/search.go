// SPDX-License-Identifier: MPL-2.0

package locate

import (
	"fmt"
	"os"
	"path/filepath"
)

// matchFunc reports whether a file name is a hit.
type matchFunc func(name string) bool

func named(fileName string) matchFunc {
	return func(name string) bool { return name == fileName }
}

// breadthFirst walks root level by level, visiting directories in lexical
// order without following symlinks. It returns every matching regular file
// when multiple is set, otherwise at most the first one.
func breadthFirst(root string, match matchFunc, multiple bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	var found []string
	queue := []string{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(current)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", current, err)
		}

		// Files of the current directory are checked before descending.
		for _, e := range entries {
			if !e.Type().IsRegular() || !match(e.Name()) {
				continue
			}
			found = append(found, filepath.Join(current, e.Name()))
			if !multiple {
				return found, nil
			}
		}
		for _, e := range entries {
			if e.IsDir() && e.Type()&os.ModeSymlink == 0 {
				queue = append(queue, filepath.Join(current, e.Name()))
			}
		}
	}
	return found, nil
}
