// Package backup keeps zstd-compressed copies of archives before they are
// overwritten.
package backup

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
)

// Ext is the extension of snapshot files.
const Ext = ".zst"

// Snapshot compresses the file at src into dir and returns the snapshot's
// path, named <base>.<timestamp>.zst.
func Snapshot(fs afero.Fs, src, dir string, now time.Time) (string, error) {
	in, err := fs.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for backup: %w", src, err)
	}
	defer in.Close()

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("%s.%s%s", filepath.Base(src), now.Format("20060102_150405"), Ext)
	dst := filepath.Join(dir, name)

	out, err := fs.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}

	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		out.Close()
		return "", fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	n, err := io.Copy(enc, in)
	if err != nil {
		enc.Close()
		out.Close()
		return "", fmt.Errorf("failed to compress %s: %w", src, err)
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to finish backup: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close backup file: %w", err)
	}

	slog.Info("backed up archive", "src", src, "backup", dst, "size", n)
	return dst, nil
}

// Restore decompresses a snapshot to dst, replacing it.
func Restore(fs afero.Fs, snapshot, dst string) error {
	in, err := fs.Open(snapshot)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer in.Close()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	out, err := fs.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	n, err := io.Copy(out, dec)
	if err != nil {
		out.Close()
		return fmt.Errorf("failed to decompress backup: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}

	slog.Info("restored archive", "backup", snapshot, "dst", dst, "size", n)
	return nil
}
