package dx

// Header is the fixed-size prefix of a decrypted archive.
//
// FileTableOffset and DirTableOffset are stored relative to
// FilenameTableOffset. Growing the data region therefore only moves
// FilenameTableOffset; every table address derived from it follows along.
type Header struct {
	Magic               uint16 // Magic ("DX")
	Version             uint16
	Size                uint32 // size of the tables, from FilenameTableOffset to EOF
	DataOffset          uint32 // where file payloads begin
	FilenameTableOffset uint32
	FileTableOffset     uint32 // relative to FilenameTableOffset
	DirTableOffset      uint32 // relative to FilenameTableOffset
	Unknown             uint32
}

// DecodeFrom reads the header from the first HeaderSize bytes of data.
// Does not validate.
func (h *Header) DecodeFrom(data []byte) {
	h.Magic = Uint16(data, 0)
	h.Version = Uint16(data, 2)
	h.Size = Uint32(data, 4)
	h.DataOffset = Uint32(data, 8)
	h.FilenameTableOffset = Uint32(data, 12)
	h.FileTableOffset = Uint32(data, 16)
	h.DirTableOffset = Uint32(data, 20)
	h.Unknown = Uint32(data, 24)
}

// EncodeTo writes the header to the first HeaderSize bytes of buf.
func (h *Header) EncodeTo(buf []byte) {
	PutUint16(buf, 0, h.Magic)
	PutUint16(buf, 2, h.Version)
	PutUint32(buf, 4, h.Size)
	PutUint32(buf, 8, h.DataOffset)
	PutUint32(buf, 12, h.FilenameTableOffset)
	PutUint32(buf, 16, h.FileTableOffset)
	PutUint32(buf, 20, h.DirTableOffset)
	PutUint32(buf, 24, h.Unknown)
}

// FileTableStart returns the absolute offset of the file header table.
func (h *Header) FileTableStart() int {
	return int(h.FilenameTableOffset) + int(h.FileTableOffset)
}

// DirTableStart returns the absolute offset of the directory header table.
func (h *Header) DirTableStart() int {
	return int(h.FilenameTableOffset) + int(h.DirTableOffset)
}

// FilenameHeader prefixes every filename entry. It is followed by two
// NUL-padded strings of Length*4 bytes each: the uppercased name used for
// matching, then the name as it should be displayed.
type FilenameHeader struct {
	Length   uint16 // in 4-byte units, 0 for an unnamed entry
	Checksum uint16
}

func (h *FilenameHeader) DecodeFrom(data []byte) {
	h.Length = Uint16(data, 0)
	h.Checksum = Uint16(data, 2)
}

func (h *FilenameHeader) EncodeTo(buf []byte) {
	PutUint16(buf, 0, h.Length)
	PutUint16(buf, 2, h.Checksum)
}

// StringSize is the padded size of each of the two name strings.
func (h *FilenameHeader) StringSize() int {
	return int(h.Length) * 4
}

// FileHeader describes one stored file or directory.
type FileHeader struct {
	FilenameOffset uint32 // relative to Header.FilenameTableOffset
	Attributes     uint32
	Created        uint64
	Accessed       uint64
	Modified       uint64
	DataOffset     uint32 // relative to Header.DataOffset
	DataSize       uint32 // decompressed size
	CompressedSize uint32 // NoCompression when stored as-is
}

func (h *FileHeader) DecodeFrom(data []byte) {
	h.FilenameOffset = Uint32(data, 0)
	h.Attributes = Uint32(data, 4)
	h.Created = Uint64(data, 8)
	h.Accessed = Uint64(data, 16)
	h.Modified = Uint64(data, 24)
	h.DataOffset = Uint32(data, FileDataOffsetField)
	h.DataSize = Uint32(data, FileDataSizeField)
	h.CompressedSize = Uint32(data, FileCompressedSizeField)
}

func (h *FileHeader) EncodeTo(buf []byte) {
	PutUint32(buf, 0, h.FilenameOffset)
	PutUint32(buf, 4, h.Attributes)
	PutUint64(buf, 8, h.Created)
	PutUint64(buf, 16, h.Accessed)
	PutUint64(buf, 24, h.Modified)
	PutUint32(buf, FileDataOffsetField, h.DataOffset)
	PutUint32(buf, FileDataSizeField, h.DataSize)
	PutUint32(buf, FileCompressedSizeField, h.CompressedSize)
}

// Compressed reports whether the payload must go through Decompress.
func (h *FileHeader) Compressed() bool {
	return h.CompressedSize != NoCompression
}

// StoredSize is the number of payload bytes the file occupies on disk.
func (h *FileHeader) StoredSize() uint32 {
	if h.Compressed() {
		return h.CompressedSize
	}
	return h.DataSize
}

// DirHeader describes one directory. A directory also owns a FileHeader
// (at DirOffset) which carries its name.
type DirHeader struct {
	DirOffset        uint32 // own file header, relative to the file table
	ParentOffset     uint32 // relative to the dir table, NoParent for the root
	NumFiles         uint32
	FileHeaderOffset uint32 // first child file header, relative to the file table
}

func (h *DirHeader) DecodeFrom(data []byte) {
	h.DirOffset = Uint32(data, 0)
	h.ParentOffset = Uint32(data, 4)
	h.NumFiles = Uint32(data, 8)
	h.FileHeaderOffset = Uint32(data, 12)
}

func (h *DirHeader) EncodeTo(buf []byte) {
	PutUint32(buf, 0, h.DirOffset)
	PutUint32(buf, 4, h.ParentOffset)
	PutUint32(buf, 8, h.NumFiles)
	PutUint32(buf, 12, h.FileHeaderOffset)
}

func (h *DirHeader) IsRoot() bool {
	return h.ParentOffset == NoParent
}

// Index returns the file index of the directory's own entry.
func (h *DirHeader) Index() int {
	return int(h.DirOffset / FileHeaderSize)
}

// Begin returns the index of the first child.
func (h *DirHeader) Begin() int {
	return int(h.FileHeaderOffset / FileHeaderSize)
}

// End returns one past the index of the last child.
func (h *DirHeader) End() int {
	return h.Begin() + int(h.NumFiles)
}
