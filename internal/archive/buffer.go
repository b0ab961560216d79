package archive

// growthFactor is the slack added when a repack outgrows the buffer, so a
// series of growing repacks does not reallocate on every call.
const growthFactor = 1.15

// buffer is the owned backing store of a decrypted archive. len(data) is the
// number of bytes in use, cap(data) the allocated capacity.
type buffer struct {
	data []byte
}

func newBuffer(data []byte) *buffer {
	return &buffer{data: data}
}

func (b *buffer) Len() int {
	return len(b.data)
}

// Bytes returns the bytes in use. The slice is invalidated by the next splice.
func (b *buffer) Bytes() []byte {
	return b.data
}

// capacityFor returns the capacity allocated when n bytes no longer fit.
func capacityFor(n int) int {
	return int(float64(n) * growthFactor)
}

// splice replaces the oldLen bytes at start with repl, shifting everything
// after them, and reports whether the buffer was reallocated. repl must not
// alias the buffer.
func (b *buffer) splice(start, oldLen int, repl []byte) bool {
	oldUsed := len(b.data)
	newUsed := oldUsed - oldLen + len(repl)
	tail := start + oldLen

	if newUsed > cap(b.data) {
		grown := make([]byte, newUsed, capacityFor(newUsed))
		copy(grown, b.data[:start])
		copy(grown[start:], repl)
		copy(grown[start+len(repl):], b.data[tail:oldUsed])
		b.data = grown
		return true
	}

	full := b.data[:max(oldUsed, newUsed)]
	copy(full[start+len(repl):], full[tail:oldUsed])
	copy(full[start:], repl)
	b.data = full[:newUsed]
	return false
}

func (b *buffer) release() {
	b.data = nil
}
