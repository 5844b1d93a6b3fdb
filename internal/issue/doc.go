// SPDX-License-Identifier: MPL-2.0

// Package issue holds the catalog of problems users run into with deployment
// descriptors, settings modules and test databases, each explained in
// Markdown and rendered with glamour. ActionableError carries the operation,
// the resource and what to try next for a single failure.
package issue
