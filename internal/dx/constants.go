package dx

// Magic is the magic number identifying valid archives ("DX"), as read after
// the cipher has been removed.
const Magic = 0x5844

// MaxVersion is the newest archive format version this package understands.
const MaxVersion = 5

// Record sizes in bytes.
const (
	HeaderSize         = 28
	FilenameHeaderSize = 4
	FileHeaderSize     = 44
	DirHeaderSize      = 16
)

// Sentinel field values.
const (
	// NoCompression in FileHeader.CompressedSize marks a payload stored as-is.
	NoCompression = 0xFFFFFFFF
	// NoParent in DirHeader.ParentOffset marks the root directory.
	NoParent = 0xFFFFFFFF
)

// Byte positions of fields that the repack engine patches in place.
const (
	HeaderFilenameTableField = 12

	FileDataOffsetField     = 32
	FileDataSizeField       = 36
	FileCompressedSizeField = 40
)

// keyCheckField is the header field used to tell the two editions apart.
// Once decoded with the right key it holds the data offset, which always
// directly follows the header.
const (
	keyCheckField = 8
	keyCheckValue = HeaderSize
)

// CompressionPrologueSize is the size of the size/size/escape-key prologue
// in front of every compressed payload.
const CompressionPrologueSize = 9
