package dx

import "encoding/binary"

// Uint16 reads a little-endian uint16 at off.
func Uint16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off:])
}

// Uint32 reads a little-endian uint32 at off.
func Uint32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off:])
}

// Uint64 reads a little-endian uint64 at off.
func Uint64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off:])
}

// PutUint16 writes v little-endian at off.
func PutUint16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:], v)
}

// PutUint32 writes v little-endian at off.
func PutUint32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:], v)
}

// PutUint64 writes v little-endian at off.
func PutUint64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:], v)
}

// CString returns the NUL-terminated string starting at off, reading at most
// max bytes. A string without a terminator inside the window is cut at max
// (or at the end of b).
func CString(b []byte, off, max int) string {
	if off < 0 || off >= len(b) {
		return ""
	}
	end := off + max
	if end > len(b) || max < 0 {
		end = len(b)
	}
	for i := off; i < end; i++ {
		if b[i] == 0 {
			return string(b[off:i])
		}
	}
	return string(b[off:end])
}
