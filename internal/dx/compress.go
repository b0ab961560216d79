package dx

import "fmt"

// backrefBias is added to every decoded back-reference length; shorter
// matches are never encoded.
const backrefBias = 4

// DecompressedSize returns the output size declared in the prologue of a
// compressed payload.
func DecompressedSize(src []byte) (uint32, error) {
	if len(src) < CompressionPrologueSize {
		return 0, fmt.Errorf("%w: compressed stream is %d bytes, prologue needs %d",
			ErrCorruptData, len(src), CompressionPrologueSize)
	}
	return Uint32(src, 0), nil
}

// Decompress expands a compressed payload into dst and returns the number of
// bytes produced.
//
// Stream layout:
//
//	[output size (u32)][input size (u32)][escape key (u8)][tokens...]
//
// The input size counts the whole stream, prologue included. Tokens are:
//   - any byte other than the key: a literal.
//   - key, key: a literal key byte.
//   - key, val [, ext], dist(1-3 bytes): a back-reference. val is decremented
//     when above the key. Bits 0-1 of val select the distance width
//     (1, 2 or 3 bytes), bits 3-7 hold the length and bit 2 says that ext
//     carries length bits 5-12. Length is biased by 4, distance by 1.
//
// Output is bounded by both len(dst) and the declared output size. A stream
// that would overrun that bound, or that ends in the middle of a token, stops
// decoding and returns what was produced so far; callers treat a short count
// as corruption.
func Decompress(dst, src []byte) int {
	if len(src) < CompressionPrologueSize {
		return 0
	}

	limit := int(Uint32(src, 0))
	if limit > len(dst) {
		limit = len(dst)
	}
	end := int(Uint32(src, 4))
	if end > len(src) {
		end = len(src)
	}
	key := src[8]

	in := CompressionPrologueSize
	out := 0

	for in < end {
		if out >= limit {
			return out
		}

		if src[in] != key {
			dst[out] = src[in]
			in++
			out++
			continue
		}

		if in+1 >= end {
			return out
		}

		if src[in+1] == key {
			dst[out] = key
			in += 2
			out++
			continue
		}

		val := int(src[in+1])
		if val > int(key) {
			val--
		}
		in += 2

		offsetLen := val & 3
		length := val >> 3

		if val&4 != 0 {
			if in >= end {
				return out
			}
			length |= int(src[in]) << 5
			in++
		}
		length += backrefBias

		width := offsetLen + 1
		if width > 3 {
			width = 3
		}
		if in+width > end {
			return out
		}
		offset := 0
		for i := 0; i < width; i++ {
			offset |= int(src[in+i]) << (8 * i)
		}
		in += width
		offset++

		if offset > out {
			return out
		}

		// Source and destination overlap when length exceeds offset. Each
		// pass doubles the window that has already been repeated.
		for length > offset {
			if out+offset > limit {
				return out
			}
			copy(dst[out:out+offset], dst[out-offset:out])
			out += offset
			length -= offset
			offset += offset
		}

		if length > 0 {
			if out+length > limit {
				return out
			}
			copy(dst[out:out+length], dst[out-offset:out-offset+length])
			out += length
		}
	}

	return out
}
