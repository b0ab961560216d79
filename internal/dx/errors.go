package dx

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is returned when magic or structural checks fail on open.
	ErrFormat = errors.New("archive corrupt or unrecognized format")
	// ErrUnsupportedVersion is matched by every *VersionError.
	ErrUnsupportedVersion = errors.New("unsupported archive version")
	// ErrIO wraps underlying read and write failures.
	ErrIO = errors.New("archive i/o error")
	// ErrNotFound is returned when a path or index does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrInvalidIndex is returned for indices outside the file header table.
	ErrInvalidIndex = errors.New("invalid file index")
	// ErrCorruptData is returned when a payload cannot be decoded to its
	// declared size.
	ErrCorruptData = errors.New("corrupt file data")
	// ErrClosed is returned by operations on a closed archive.
	ErrClosed = errors.New("archive is closed")
)

// VersionError reports an archive whose version field is out of range.
type VersionError struct {
	Version uint16
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s: version %d (max %d)", ErrUnsupportedVersion, e.Version, MaxVersion)
}

func (e *VersionError) Is(target error) bool {
	return target == ErrUnsupportedVersion
}
