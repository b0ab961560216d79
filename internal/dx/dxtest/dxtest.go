// Package dxtest builds synthetic archives for tests.
package dxtest

import (
	"strings"

	"github.com/ossyrian/dxarc/internal/dx"
)

// Node is a file or directory in a synthetic archive.
type Node struct {
	name     string
	data     []byte // decompressed contents
	stored   []byte // compressed payload; nil stores data as-is
	children []*Node
	dir      bool
}

// File is a file stored uncompressed.
func File(name string, data []byte) *Node {
	return &Node{name: name, data: data}
}

// CompressedFile is a file whose payload is the compressed stream stored,
// expanding to data.
func CompressedFile(name string, data, stored []byte) *Node {
	return &Node{name: name, data: data, stored: stored}
}

// Dir is a directory holding children in order.
func Dir(name string, children ...*Node) *Node {
	return &Node{name: name, dir: true, children: children}
}

// BuildPlain lays out an unencrypted archive the way the game tools do:
// the unnamed root at index 0, each directory's children in one contiguous
// run, runs assigned breadth-first, payloads in index order.
func BuildPlain(children ...*Node) []byte {
	root := Dir("", children...)

	type dirInfo struct {
		n          *Node
		index      int
		parentSlot int
		begin      int
	}

	entries := []*Node{root}
	dirs := []*dirInfo{{n: root, index: 0, parentSlot: -1}}
	for slot := 0; slot < len(dirs); slot++ {
		d := dirs[slot]
		d.begin = len(entries)
		for _, c := range d.n.children {
			entries = append(entries, c)
			if c.dir {
				dirs = append(dirs, &dirInfo{n: c, index: len(entries) - 1, parentSlot: slot})
			}
		}
	}

	// data region
	var data []byte
	dataOffsets := make([]int, len(entries))
	for i, e := range entries {
		if e.dir {
			continue
		}
		dataOffsets[i] = len(data)
		if e.stored != nil {
			data = append(data, e.stored...)
		} else {
			data = append(data, e.data...)
		}
	}

	// filename table
	var names []byte
	nameOffsets := make([]int, len(entries))
	for i, e := range entries {
		nameOffsets[i] = len(names)
		quads := 0
		if e.name != "" {
			quads = len(e.name)/4 + 1
		}
		hdr := make([]byte, dx.FilenameHeaderSize)
		nh := dx.FilenameHeader{Length: uint16(quads), Checksum: uint16(i)}
		nh.EncodeTo(hdr)
		names = append(names, hdr...)
		for _, s := range []string{strings.ToUpper(e.name), e.name} {
			if quads == 0 {
				break
			}
			padded := make([]byte, quads*4)
			copy(padded, s)
			names = append(names, padded...)
		}
	}

	fileTable := make([]byte, len(entries)*dx.FileHeaderSize)
	for i, e := range entries {
		fh := dx.FileHeader{
			FilenameOffset: uint32(nameOffsets[i]),
			Created:        uint64(1000 + i),
			DataOffset:     uint32(dataOffsets[i]),
			DataSize:       uint32(len(e.data)),
			CompressedSize: dx.NoCompression,
		}
		if e.dir {
			fh.Attributes = 0x10
		}
		if e.stored != nil {
			fh.CompressedSize = uint32(len(e.stored))
		}
		fh.EncodeTo(fileTable[i*dx.FileHeaderSize:])
	}

	dirTable := make([]byte, len(dirs)*dx.DirHeaderSize)
	for slot, d := range dirs {
		parent := uint32(dx.NoParent)
		if d.parentSlot >= 0 {
			parent = uint32(d.parentSlot * dx.DirHeaderSize)
		}
		dh := dx.DirHeader{
			DirOffset:        uint32(d.index * dx.FileHeaderSize),
			ParentOffset:     parent,
			NumFiles:         uint32(len(d.n.children)),
			FileHeaderOffset: uint32(d.begin * dx.FileHeaderSize),
		}
		dh.EncodeTo(dirTable[slot*dx.DirHeaderSize:])
	}

	filenameTable := dx.HeaderSize + len(data)
	tables := len(names) + len(fileTable) + len(dirTable)
	h := dx.Header{
		Magic:               dx.Magic,
		Version:             4,
		Size:                uint32(tables),
		DataOffset:          dx.HeaderSize,
		FilenameTableOffset: uint32(filenameTable),
		FileTableOffset:     uint32(len(names)),
		DirTableOffset:      uint32(len(names) + len(fileTable)),
	}

	out := make([]byte, dx.HeaderSize, filenameTable+tables)
	h.EncodeTo(out)
	out = append(out, data...)
	out = append(out, names...)
	out = append(out, fileTable...)
	out = append(out, dirTable...)
	return out
}

// Build returns an archive encrypted for v.
func Build(v dx.Variant, children ...*Node) []byte {
	out := BuildPlain(children...)
	dx.Transform(out, v)
	return out
}

// CompressedRun is the 20-byte stream expanding to "ABCDEFGH" x5: eight
// literals followed by a 32-byte back-reference at distance 8.
var CompressedRun = []byte{
	40, 0, 0, 0, // output size
	20, 0, 0, 0, // input size, prologue included
	0xFF, // escape key
	'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H',
	0xFF, 0xE0, 0x07,
}

// Run40 is the expansion of CompressedRun.
var Run40 = []byte(strings.Repeat("ABCDEFGH", 5))
