package dx_test

import (
	"bytes"
	"testing"

	"github.com/ossyrian/dxarc/internal/dx"
)

// stream wraps a token body in the compression prologue.
func stream(outSize int, key byte, body ...byte) []byte {
	buf := make([]byte, dx.CompressionPrologueSize, dx.CompressionPrologueSize+len(body))
	dx.PutUint32(buf, 0, uint32(outSize))
	dx.PutUint32(buf, 4, uint32(dx.CompressionPrologueSize+len(body)))
	buf[8] = key
	return append(buf, body...)
}

// backref encodes a back-reference token for the given escape key.
func backref(key byte, length, dist int) []byte {
	length -= 4
	dist--

	var width int
	switch {
	case dist < 1<<8:
		width = 0
	case dist < 1<<16:
		width = 1
	default:
		width = 2
	}

	val := (length&0x1F)<<3 | width
	ext := length >> 5
	if ext > 0 {
		val |= 4
	}
	if val >= int(key) {
		val++
	}

	tok := []byte{key, byte(val)}
	if ext > 0 {
		tok = append(tok, byte(ext))
	}
	for i := 0; i <= width; i++ {
		tok = append(tok, byte(dist>>(8*i)))
	}
	return tok
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestDecompress(t *testing.T) {
	abcde := []byte("ABCDE")
	long := bytes.Repeat([]byte("xyz"), 100)

	tests := []struct {
		name  string
		input []byte
		size  int
		want  []byte
	}{
		{
			name:  "literals only",
			input: stream(5, 0xFF, abcde...),
			size:  5,
			want:  abcde,
		},
		{
			name:  "escaped key byte",
			input: stream(3, 0x41, 'x', 0x41, 0x41, 'y'),
			size:  3,
			want:  []byte{'x', 0x41, 'y'},
		},
		{
			name:  "doubling back-reference",
			input: stream(17, 0xFF, concat(abcde, backref(0xFF, 12, 5))...),
			size:  17,
			want:  []byte("ABCDEABCDEABCDEAB"),
		},
		{
			name:  "copy from inside the window",
			input: stream(12, 0xFF, concat([]byte("ABCDEFGH"), backref(0xFF, 4, 6))...),
			size:  12,
			want:  []byte("ABCDEFGHCDEF"),
		},
		{
			name:  "control byte above the key is decremented",
			input: stream(17, 0x10, concat(abcde, backref(0x10, 12, 5))...),
			size:  17,
			want:  []byte("ABCDEABCDEABCDEAB"),
		},
		{
			name:  "extended length and two byte distance",
			input: stream(300+300, 0xFF, concat(long, backref(0xFF, 300, 300))...),
			size:  600,
			want:  bytes.Repeat([]byte("xyz"), 200),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, tt.size)
			n := dx.Decompress(dst, tt.input)
			if n != len(tt.want) {
				t.Fatalf("Decompress() = %d bytes, want %d", n, len(tt.want))
			}
			if !bytes.Equal(dst[:n], tt.want) {
				t.Errorf("Decompress() = %q, want %q", dst[:n], tt.want)
			}
		})
	}
}

func TestDecompressThreeByteDistance(t *testing.T) {
	lit := make([]byte, 70000)
	for i := range lit {
		lit[i] = byte(i % 251)
	}
	in := stream(len(lit)+10, 0xFF, concat(lit, backref(0xFF, 10, len(lit)))...)

	dst := make([]byte, len(lit)+10)
	n := dx.Decompress(dst, in)
	if n != len(dst) {
		t.Fatalf("Decompress() = %d bytes, want %d", n, len(dst))
	}
	if !bytes.Equal(dst[len(lit):], lit[:10]) {
		t.Errorf("tail = %v, want %v", dst[len(lit):], lit[:10])
	}
}

func TestDecompressTruncates(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		dst   int
		want  int
	}{
		{
			name:  "back-reference past declared size",
			input: stream(10, 0xFF, concat([]byte("ABCDE"), backref(0xFF, 12, 5))...),
			dst:   10,
			want:  10,
		},
		{
			name:  "destination smaller than declared size",
			input: stream(17, 0xFF, concat([]byte("ABCDE"), backref(0xFF, 12, 5))...),
			dst:   8,
			want:  5,
		},
		{
			name:  "distance reaches before output start",
			input: stream(20, 0xFF, concat([]byte("AB"), backref(0xFF, 4, 3))...),
			dst:   20,
			want:  2,
		},
		{
			name:  "stream ends inside a token",
			input: stream(20, 0xFF, 'A', 'B', 0xFF),
			dst:   20,
			want:  2,
		},
		{
			name:  "literal run longer than output",
			input: stream(3, 0xFF, 'a', 'b', 'c', 'd', 'e'),
			dst:   3,
			want:  3,
		},
		{
			name:  "missing prologue",
			input: []byte{1, 2, 3},
			dst:   3,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, tt.dst)
			if n := dx.Decompress(dst, tt.input); n != tt.want {
				t.Errorf("Decompress() = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestDecompressDeterministic(t *testing.T) {
	in := stream(40, 0xFF, concat([]byte("ABCDEFGH"), backref(0xFF, 32, 8))...)
	first := make([]byte, 40)
	second := make([]byte, 40)

	if n := dx.Decompress(first, in); n != 40 {
		t.Fatalf("first pass = %d bytes", n)
	}
	if n := dx.Decompress(second, in); n != 40 {
		t.Fatalf("second pass = %d bytes", n)
	}
	if !bytes.Equal(first, second) {
		t.Error("repeated decompression differs")
	}
}

func TestDecompressedSize(t *testing.T) {
	got, err := dx.DecompressedSize(stream(1234, 0xFF))
	if err != nil {
		t.Fatalf("DecompressedSize() failed: %v", err)
	}
	if got != 1234 {
		t.Errorf("DecompressedSize() = %d, want 1234", got)
	}

	if _, err := dx.DecompressedSize([]byte{1}); err == nil {
		t.Error("DecompressedSize() succeeded on a short stream")
	}
}

func BenchmarkDecompress(b *testing.B) {
	lit := []byte("0123456789abcdef")
	in := stream(len(lit)+8000, 0xFF, concat(lit, backref(0xFF, 8000, len(lit)))...)
	dst := make([]byte, len(lit)+8000)

	b.SetBytes(int64(len(dst)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dx.Decompress(dst, in)
	}
}
