// SPDX-License-Identifier: MPL-2.0

package testdb

import "github.com/testcontainers/testcontainers-go"

// checkTestcontainersAvailable reports whether a container provider can be
// reached. Provider detection panics on some hosts without a daemon.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}
