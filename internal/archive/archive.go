// Package archive reads and repacks encrypted DX archives.
//
// An Archive owns the whole decrypted file in memory. Lookups walk the
// on-disk tables directly; there is no separate index.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/ossyrian/dxarc/internal/dx"
)

// Archive is an opened, decrypted archive.
//
// Reads are safe for concurrent use as long as no repack runs at the same
// time. Repack may reallocate the backing buffer; callers must serialize it.
type Archive struct {
	fs     afero.Fs
	logger *slog.Logger

	header  *dx.Header
	variant dx.Variant
	buf     *buffer
}

// Option configures an Archive.
type Option func(*Archive)

// WithFs sets the filesystem used by Open and Save.
func WithFs(fs afero.Fs) Option {
	return func(a *Archive) {
		a.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

func newArchive(opts []Option) *Archive {
	a := &Archive{
		fs:     afero.NewOsFs(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Open loads and decrypts the archive at path.
func Open(path string, opts ...Option) (*Archive, error) {
	a := newArchive(opts)
	a.logger = a.logger.With("archive", path)

	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w: %w", dx.ErrIO, err)
	}

	if err := a.load(data); err != nil {
		return nil, err
	}
	return a, nil
}

// OpenBytes decrypts and validates an archive held in memory. The archive
// takes ownership of data and decrypts it in place.
func OpenBytes(data []byte, opts ...Option) (*Archive, error) {
	a := newArchive(opts)
	if err := a.load(data); err != nil {
		return nil, err
	}
	return a, nil
}

// load decrypts data and installs it only once every check has passed.
func (a *Archive) load(data []byte) error {
	h, variant, err := dx.Decrypt(data)
	if err != nil {
		return err
	}

	if err := validateHeader(h, len(data)); err != nil {
		return err
	}

	a.header = h
	a.variant = variant
	a.buf = newBuffer(data)

	a.logger.Info("archive is valid",
		"variant", variant,
		"version", h.Version,
		"size", len(data),
		"files", a.numFiles(),
		"dirs", a.numDirs(),
	)
	return nil
}

func validateHeader(h *dx.Header, size int) error {
	if h.Magic != dx.Magic {
		return fmt.Errorf("%w: bad magic 0x%04X", dx.ErrFormat, h.Magic)
	}
	if int(h.DataOffset) < dx.HeaderSize || h.DataOffset > h.FilenameTableOffset {
		return fmt.Errorf("%w: data offset %d outside header/tables", dx.ErrFormat, h.DataOffset)
	}
	if h.FileTableOffset > h.DirTableOffset {
		return fmt.Errorf("%w: file table (%d) after dir table (%d)",
			dx.ErrFormat, h.FileTableOffset, h.DirTableOffset)
	}
	if h.DirTableStart() > size {
		return fmt.Errorf("%w: dir table at %d past end of file (%d bytes)",
			dx.ErrFormat, h.DirTableStart(), size)
	}
	return nil
}

// Save encrypts a copy of the archive and writes it to path. The in-memory
// archive stays decrypted and usable. Save does not replace path atomically;
// callers that need that write to a staging path and rename.
func (a *Archive) Save(path string) error {
	out, err := a.encrypted()
	if err != nil {
		return err
	}

	if err := afero.WriteFile(a.fs, path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write archive: %w: %w", dx.ErrIO, err)
	}

	a.logger.Info("saved archive", "path", path, "size", len(out))
	return nil
}

// WriteTo writes the encrypted archive to w.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	out, err := a.encrypted()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(out)
	if err != nil {
		return int64(n), fmt.Errorf("failed to write archive: %w: %w", dx.ErrIO, err)
	}
	return int64(n), nil
}

// encrypted returns an encrypted copy of the buffer.
func (a *Archive) encrypted() ([]byte, error) {
	if err := a.checkOpen(); err != nil {
		return nil, err
	}
	out := bytes.Clone(a.buf.Bytes())
	dx.Transform(out, a.variant)
	return out, nil
}

// Close releases the buffer. Further calls return dx.ErrClosed.
func (a *Archive) Close() error {
	if a.buf != nil {
		a.buf.release()
	}
	a.buf = nil
	a.header = nil
	return nil
}

// Variant returns the edition detected on open.
func (a *Archive) Variant() dx.Variant {
	return a.variant
}

// Header returns a copy of the current header.
func (a *Archive) Header() dx.Header {
	if a.header == nil {
		return dx.Header{}
	}
	return *a.header
}

// Len returns the size in bytes of the decrypted archive.
func (a *Archive) Len() int {
	if a.buf == nil {
		return 0
	}
	return a.buf.Len()
}

// NumFiles returns the number of file headers, directories included.
func (a *Archive) NumFiles() int {
	if a.buf == nil {
		return 0
	}
	return a.numFiles()
}

// NumDirs returns the number of directory headers.
func (a *Archive) NumDirs() int {
	if a.buf == nil {
		return 0
	}
	return a.numDirs()
}

func (a *Archive) checkOpen() error {
	if a.buf == nil {
		return dx.ErrClosed
	}
	return nil
}

func (a *Archive) numFiles() int {
	return (a.header.DirTableStart() - a.header.FileTableStart()) / dx.FileHeaderSize
}

func (a *Archive) numDirs() int {
	return (a.buf.Len() - a.header.DirTableStart()) / dx.DirHeaderSize
}

// fileHeaderOffset converts an index to the absolute offset of its header.
func (a *Archive) fileHeaderOffset(index int) (int, error) {
	if index < 0 || index >= a.numFiles() {
		return 0, fmt.Errorf("%w: %d (archive has %d)", dx.ErrInvalidIndex, index, a.numFiles())
	}
	return a.header.FileTableStart() + index*dx.FileHeaderSize, nil
}

func (a *Archive) fileHeader(index int) (*dx.FileHeader, error) {
	off, err := a.fileHeaderOffset(index)
	if err != nil {
		return nil, err
	}
	fh := &dx.FileHeader{}
	fh.DecodeFrom(a.buf.Bytes()[off : off+dx.FileHeaderSize])
	return fh, nil
}

// dirHeader decodes the directory header in table slot i.
func (a *Archive) dirHeader(i int) dx.DirHeader {
	off := a.header.DirTableStart() + i*dx.DirHeaderSize
	var dh dx.DirHeader
	dh.DecodeFrom(a.buf.Bytes()[off : off+dx.DirHeaderSize])
	return dh
}

// name returns the uppercase or display name a file header points at. An
// entry with a zero-length name, or one pointing outside the buffer, has
// no name.
func (a *Archive) name(fh *dx.FileHeader, upper bool) string {
	data := a.buf.Bytes()
	off := int(a.header.FilenameTableOffset) + int(fh.FilenameOffset)
	if off+dx.FilenameHeaderSize > len(data) {
		return ""
	}

	var nh dx.FilenameHeader
	nh.DecodeFrom(data[off:])
	if nh.Length == 0 {
		return ""
	}

	str := off + dx.FilenameHeaderSize
	if !upper {
		str += nh.StringSize()
	}
	return dx.CString(data, str, nh.StringSize())
}
