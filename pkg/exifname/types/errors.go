package types

import "errors"

// Error taxonomy shared by the walker, resolver and metadata reader.
var (
	// ErrMetadataUnavailable indicates a file has no readable capture timestamp
	// (corrupt file, missing tag, unsupported encoding).
	ErrMetadataUnavailable = errors.New("capture timestamp unavailable")

	// ErrRenameConflict indicates the rename target was occupied at the moment
	// of the rename call, which only happens when something outside this
	// process mutates the directory.
	ErrRenameConflict = errors.New("rename target already exists")

	// ErrFileSystem wraps permission and I/O failures from the filesystem.
	ErrFileSystem = errors.New("filesystem error")
)
