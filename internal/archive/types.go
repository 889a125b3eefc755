// Package archive stores LDIF exports of the directory tree in a pluggable
// object store and restores them on demand. It re-exports the backend
// abstractions so other packages depend on this facade only.
package archive

import "dircore/internal/archive/core"

type (
	// Driver identifies an archive backend driver.
	Driver = core.Driver
	// PutOptions configures an archive write.
	PutOptions = core.PutOptions
	// Info describes stored object metadata.
	Info = core.Info
	// Store is the interface for archive storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

// ErrNotFound indicates a key no backend holds.
var ErrNotFound = core.ErrNotFound
