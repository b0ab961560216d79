package dx

import (
	"encoding/binary"
	"fmt"
)

// Variant identifies which game edition an archive belongs to. The two
// editions encrypt their archives with different keys and use slightly
// different record layouts further downstream.
type Variant int

const (
	VariantBase Variant = iota
	VariantYNK
)

func (v Variant) String() string {
	switch v {
	case VariantBase:
		return "base"
	case VariantYNK:
		return "ynk"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// KeySize is the length of both cipher keys.
const KeySize = 12

// The two keys share their first four bytes, which cover the magic and
// version fields. Only the third word tells them apart.
var (
	KeyBase = [KeySize]byte{0x9B, 0x16, 0xFE, 0x3A, 0xB9, 0xE0, 0xA3, 0x17, 0x9A, 0x23, 0x20, 0xAE}
	KeyYNK  = [KeySize]byte{0x9B, 0x16, 0xFE, 0x3A, 0x98, 0xC2, 0xA0, 0x73, 0x0B, 0x0B, 0xB5, 0x90}
)

// KeyFor returns the cipher key of a variant.
func KeyFor(v Variant) [KeySize]byte {
	if v == VariantYNK {
		return KeyYNK
	}
	return KeyBase
}

// Detect inspects an encrypted archive and returns the variant whose key
// decodes its header. buf is not modified.
//
// Detection steps:
//  1. The buffer must hold at least a full header.
//  2. The first two bytes, decoded with the base key, must be Magic.
//  3. The next two bytes, decoded the same way, are the version and must
//     not exceed MaxVersion.
//  4. The word at offset 8 is decoded with each key in turn; the key that
//     yields HeaderSize (the data offset always follows the header) wins.
func Detect(buf []byte) (Variant, error) {
	if len(buf) < HeaderSize {
		return 0, fmt.Errorf("%w: file is %d bytes, header needs %d", ErrFormat, len(buf), HeaderSize)
	}

	magic := Uint16(buf, 0) ^ binary.LittleEndian.Uint16(KeyBase[0:])
	if magic != Magic {
		return 0, fmt.Errorf("%w: bad magic 0x%04X", ErrFormat, magic)
	}

	version := Uint16(buf, 2) ^ binary.LittleEndian.Uint16(KeyBase[2:])
	if version > MaxVersion {
		return 0, &VersionError{Version: version}
	}

	check := Uint32(buf, keyCheckField)
	for _, v := range []Variant{VariantBase, VariantYNK} {
		key := KeyFor(v)
		if check^binary.LittleEndian.Uint32(key[keyCheckField:]) == keyCheckValue {
			return v, nil
		}
	}

	return 0, fmt.Errorf("%w: no known key matches the header", ErrFormat)
}

// Transform applies the archive's repeating-key XOR to buf in place.
// The cipher is symmetric, so the same call both encrypts and decrypts.
func Transform(buf []byte, v Variant) {
	key := KeyFor(v)
	k1 := binary.LittleEndian.Uint32(key[0:])
	k2 := binary.LittleEndian.Uint32(key[4:])
	k3 := binary.LittleEndian.Uint32(key[8:])

	pos := 0
	for ; len(buf)-pos >= KeySize; pos += KeySize {
		chunk := buf[pos : pos+KeySize]
		binary.LittleEndian.PutUint32(chunk[0:], binary.LittleEndian.Uint32(chunk[0:])^k1)
		binary.LittleEndian.PutUint32(chunk[4:], binary.LittleEndian.Uint32(chunk[4:])^k2)
		binary.LittleEndian.PutUint32(chunk[8:], binary.LittleEndian.Uint32(chunk[8:])^k3)
	}

	for ; pos < len(buf); pos++ {
		buf[pos] ^= key[pos%KeySize]
	}
}

// Decrypt detects the variant of an encrypted archive, decrypts buf in place
// and returns the parsed header. On error buf is left untouched.
func Decrypt(buf []byte) (*Header, Variant, error) {
	v, err := Detect(buf)
	if err != nil {
		return nil, 0, err
	}

	Transform(buf, v)

	h := &Header{}
	h.DecodeFrom(buf)
	return h, v, nil
}
