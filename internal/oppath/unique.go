// internal/oppath/unique.go
package oppath

import "fmt"

// UniqueID returns the first unoccupied path for baseName inside container.
//
// If `container/baseName` is free it is returned directly. Otherwise the
// suffixes `baseName-1`, `baseName-2`, ... are probed in order and the
// *lowest* currently-unoccupied suffix wins, so a freed slot is reused
// rather than the counter always incrementing.
func UniqueID(baseName string, container Path, occupied func(Path) bool) Path {
	candidate := container.Join(baseName)
	if !occupied(candidate) {
		return candidate
	}
	for i := 1; ; i++ {
		candidate = container.Join(fmt.Sprintf("%s-%d", baseName, i))
		if !occupied(candidate) {
			return candidate
		}
	}
}
