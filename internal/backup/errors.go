// Package backup implements the library's portable formats: the JSON
// snapshot used by import/export and the zip archive used for full backups.
package backup

import "errors"

var (
	// ErrInvalidFormat means a document is neither a story array nor a single
	// story object with title and chapters.
	ErrInvalidFormat = errors.New("invalid snapshot format")

	// ErrInvalidManifest indicates the manifest is missing or malformed.
	ErrInvalidManifest = errors.New("invalid or missing manifest")

	// ErrVersionMismatch indicates the backup version is not supported.
	ErrVersionMismatch = errors.New("backup version not supported")

	// ErrCorruptedBackup indicates the backup failed integrity checks.
	ErrCorruptedBackup = errors.New("backup integrity check failed")
)
