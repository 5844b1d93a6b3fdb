// SPDX-License-Identifier: MPL-2.0

// Package cueutil compiles CUE documents for the tool configuration and for
// settings modules stored on disk.
//
// Schema-backed documents go through ParseAndDecode:
//
//  1. compile the embedded schema
//  2. compile the user data and unify it with the schema definition
//  3. validate and decode into a Go struct
//
// Schema-less documents, such as settings modules, go through ExportJSON,
// which compiles the data, requires it to be a concrete struct and returns it
// as JSON so callers decode it with their own number handling.
//
//	//go:embed config_schema.cue
//	var configSchema []byte
//
//	result, err := cueutil.ParseAndDecode[Config](configSchema, data, "#Config",
//	    cueutil.WithFilename("config.cue"))
package cueutil
