// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"runtime"
	"strconv"
	"sync"
)

// ContainerParallelEnv overrides the number of concurrent container tests.
const ContainerParallelEnv = "PASTESETTINGS_TEST_CONTAINER_PARALLEL"

// ContainerSemaphore returns a process-wide buffered channel that limits
// concurrent test database containers. Acquire a slot by sending, release by
// receiving:
//
//	sem := testutil.ContainerSemaphore()
//	sem <- struct{}{}
//	defer func() { <-sem }()
//
// The capacity is ContainerParallelEnv when set, else min(GOMAXPROCS, 2).
var ContainerSemaphore = sync.OnceValue(func() chan struct{} {
	return make(chan struct{}, containerParallelism(os.Getenv))
})

func containerParallelism(getenv func(string) string) int {
	if v := getenv(ContainerParallelEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return min(runtime.GOMAXPROCS(0), 2)
}
