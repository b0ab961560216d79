package archive

import (
	"fmt"
	"math"

	"github.com/ossyrian/dxarc/internal/dx"
)

// Repack replaces the contents of the entry at index with data, stored
// uncompressed.
//
// Everything after the old payload moves by the size difference. The only
// absolute offset behind the data region is the header's filename table
// offset; the file and directory tables are addressed relative to it and
// follow without patching. File headers whose payload sits after the
// replaced one get their data offsets shifted by the same difference. A
// non-empty payload sharing the old offset can only follow an empty one,
// so it moves too.
// Directory headers only hold table-relative positions and child counts and
// are never touched.
//
// data is copied; callers keep ownership of it.
func (a *Archive) Repack(index int, data []byte) error {
	if err := a.checkOpen(); err != nil {
		return err
	}
	hdrOff, err := a.fileHeaderOffset(index)
	if err != nil {
		return err
	}
	if int64(len(data)) >= math.MaxUint32 {
		return fmt.Errorf("replacement for index %d is too large: %d bytes", index, len(data))
	}

	fh, err := a.fileHeader(index)
	if err != nil {
		return err
	}
	_, start, err := a.payload(fh)
	if err != nil {
		return fmt.Errorf("failed to repack index %d: %w", index, err)
	}

	origLen := int(fh.StoredSize())
	diff := len(data) - origLen
	if int64(a.header.FilenameTableOffset)+int64(diff) > math.MaxUint32 {
		return fmt.Errorf("replacement for index %d would grow the archive past 4GiB", index)
	}

	buf := a.buf.Bytes()
	dx.PutUint32(buf, hdrOff+dx.FileDataSizeField, uint32(len(data)))
	dx.PutUint32(buf, hdrOff+dx.FileCompressedSizeField, dx.NoCompression)

	reallocated := a.buf.splice(start, origLen, data)

	buf = a.buf.Bytes()
	a.header.FilenameTableOffset = uint32(int64(a.header.FilenameTableOffset) + int64(diff))
	dx.PutUint32(buf, dx.HeaderFilenameTableField, a.header.FilenameTableOffset)

	patched := 0
	for i := 0; i < a.numFiles(); i++ {
		off := a.header.FileTableStart() + i*dx.FileHeaderSize
		if i == index || !storedAfter(buf[off:off+dx.FileHeaderSize], fh.DataOffset) {
			continue
		}
		field := off + dx.FileDataOffsetField
		dx.PutUint32(buf, field, uint32(int64(dx.Uint32(buf, field))+int64(diff)))
		patched++
	}

	a.logger.Debug("repacked file",
		"index", index,
		"old_size", origLen,
		"new_size", len(data),
		"diff", diff,
		"patched_headers", patched,
		"reallocated", reallocated,
		"capacity", cap(buf),
	)
	return nil
}

// RepackPath is Repack after IndexOf.
func (a *Archive) RepackPath(path string, data []byte) error {
	index, err := a.IndexOf(path)
	if err != nil {
		return err
	}
	return a.Repack(index, data)
}

// storedAfter reports whether the payload of the raw file header fh must
// move when the payload at offset grows or shrinks. Empty entries sharing
// offset, directories included, stay put.
func storedAfter(fh []byte, offset uint32) bool {
	dataOff := dx.Uint32(fh, dx.FileDataOffsetField)
	if dataOff != offset {
		return dataOff > offset
	}
	size := dx.Uint32(fh, dx.FileCompressedSizeField)
	if size == dx.NoCompression {
		size = dx.Uint32(fh, dx.FileDataSizeField)
	}
	return size > 0
}
