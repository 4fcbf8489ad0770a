// Package testutils provides fakes, fixtures and deterministic generators for bofh shell tests.
package testutils

import (
	"fmt"
	"sync"
)

// SequentialIDs returns a generator of deterministic correlation ids in UUID v4 format:
// 00000001-0000-4000-8000-000000000001, 00000002-0000-4000-8000-000000000002, ...
func SequentialIDs() func() string {
	var (
		mu      sync.Mutex
		counter uint64
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()

		counter++
		return fmt.Sprintf("%08x-0000-4000-8000-%012x", counter, counter)
	}
}
