package archive

import (
	"bytes"
	"fmt"

	"github.com/ossyrian/dxarc/internal/dx"
)

// payload returns the stored bytes of a file header, bounds-checked against
// the buffer.
func (a *Archive) payload(fh *dx.FileHeader) ([]byte, int, error) {
	start := int(a.header.DataOffset) + int(fh.DataOffset)
	end := start + int(fh.StoredSize())
	if end > int(a.header.FilenameTableOffset) {
		return nil, 0, fmt.Errorf("%w: payload [%d, %d) overlaps the tables at %d",
			dx.ErrCorruptData, start, end, a.header.FilenameTableOffset)
	}
	return a.buf.Bytes()[start:end], start, nil
}

// Read returns the decompressed contents of the entry at index. The result
// is a copy and stays valid across repacks.
func (a *Archive) Read(index int) ([]byte, error) {
	if err := a.checkOpen(); err != nil {
		return nil, err
	}
	fh, err := a.fileHeader(index)
	if err != nil {
		return nil, err
	}
	if fh.DataSize == 0 {
		return []byte{}, nil
	}

	src, _, err := a.payload(fh)
	if err != nil {
		return nil, fmt.Errorf("failed to read index %d: %w", index, err)
	}

	if !fh.Compressed() {
		return bytes.Clone(src[:fh.DataSize]), nil
	}

	out := make([]byte, fh.DataSize)
	if n := dx.Decompress(out, src); n != int(fh.DataSize) {
		return nil, fmt.Errorf("%w: index %d decompressed to %d bytes, want %d",
			dx.ErrCorruptData, index, n, fh.DataSize)
	}

	a.logger.Debug("decompressed file",
		"index", index,
		"compressed_size", fh.CompressedSize,
		"size", fh.DataSize,
	)
	return out, nil
}

// ReadPath is Read after IndexOf.
func (a *Archive) ReadPath(path string) ([]byte, error) {
	index, err := a.IndexOf(path)
	if err != nil {
		return nil, err
	}
	return a.Read(index)
}
