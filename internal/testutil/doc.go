// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate.
//
// Helpers cover environment variables (MustSetenv, MustUnsetenv), fixture
// files (MustWriteFile, MustMkdirAll), resource cleanup (DeferClose) and a
// semaphore bounding concurrent container tests (ContainerSemaphore).
package testutil
