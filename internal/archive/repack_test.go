package archive_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ossyrian/dxarc/internal/archive"
	"github.com/ossyrian/dxarc/internal/dx"
	"github.com/ossyrian/dxarc/internal/dx/dxtest"
)

func copyContents() map[string][]byte {
	out := make(map[string][]byte, len(sampleContents))
	for k, v := range sampleContents {
		out[k] = v
	}
	return out
}

func TestRepack(t *testing.T) {
	tests := []struct {
		name string
		path string
		data []byte
	}{
		{name: "grow first file", path: "A.TXT", data: bytes.Repeat([]byte("x"), 200)},
		{name: "shrink first file", path: "A.TXT", data: []byte("hi")},
		{name: "same size", path: "Map/Field.mad", data: []byte("MAP-DATA")},
		{name: "empty", path: "Doll/DollData.dbs", data: []byte{}},
		{name: "replace compressed", path: "B.TXT", data: []byte("now stored as-is")},
		{name: "grow last file", path: "Doll/Skill/A.TXT", data: bytes.Repeat([]byte("y"), 1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := openSample(t, dx.VariantBase)
			before := a.Len()
			origSize := len(sampleContents[tt.path])
			if tt.path == "B.TXT" {
				origSize = len(dxtest.CompressedRun)
			}

			if err := a.RepackPath(tt.path, tt.data); err != nil {
				t.Fatalf("RepackPath() failed: %v", err)
			}

			want := copyContents()
			want[tt.path] = tt.data
			checkContents(t, a, want)

			if got, wantLen := a.Len(), before+len(tt.data)-origSize; got != wantLen {
				t.Errorf("Len() = %d, want %d", got, wantLen)
			}

			index, _ := a.IndexOf(tt.path)
			st, err := a.Stat(index)
			if err != nil {
				t.Fatal(err)
			}
			if st.Compressed || int(st.Size) != len(tt.data) {
				t.Errorf("Stat() = %+v after repack", st)
			}
		})
	}
}

func TestRepackInPlace(t *testing.T) {
	encrypted := dxtest.Build(dx.VariantBase, sampleTree()...)
	roomy := make([]byte, len(encrypted), len(encrypted)+4096)
	copy(roomy, encrypted)

	a, err := archive.OpenBytes(roomy, discard)
	if err != nil {
		t.Fatal(err)
	}

	want := copyContents()
	steps := []struct {
		path string
		data []byte
	}{
		{"Doll/DollData.dbs", bytes.Repeat([]byte("g"), 300)},
		{"A.TXT", bytes.Repeat([]byte("a"), 90)},
		{"Doll/DollData.dbs", []byte("s")},
		{"Map/Field.mad", bytes.Repeat([]byte("m"), 2000)},
	}
	for _, s := range steps {
		if err := a.RepackPath(s.path, s.data); err != nil {
			t.Fatalf("RepackPath(%q) failed: %v", s.path, err)
		}
		want[s.path] = s.data
		checkContents(t, a, want)
	}
}

func TestRepackGrowthBeyondCapacity(t *testing.T) {
	a := openSample(t, dx.VariantYNK)
	want := copyContents()

	// enough growing repacks to force several reallocations
	for i := 1; i <= 20; i++ {
		data := bytes.Repeat([]byte{byte(i)}, i*137)
		path := "Doll/Skill/SkillData.csv"
		if i%2 == 0 {
			path = "A.TXT"
		}
		if err := a.RepackPath(path, data); err != nil {
			t.Fatalf("repack %d failed: %v", i, err)
		}
		want[path] = data
	}
	checkContents(t, a, want)
}

func TestRepackCopiesInput(t *testing.T) {
	a := openSample(t, dx.VariantBase)

	data := []byte("replacement")
	if err := a.Repack(1, data); err != nil {
		t.Fatal(err)
	}
	data[0] = 'X'

	got, err := a.Read(1)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "replacement" {
		t.Errorf("Read() = %q, archive aliases the caller's slice", got)
	}
}

func TestRepackInvalidIndex(t *testing.T) {
	a := openSample(t, dx.VariantBase)

	for _, index := range []int{-1, a.NumFiles(), a.NumFiles() + 5} {
		if err := a.Repack(index, []byte("x")); !errors.Is(err, dx.ErrInvalidIndex) {
			t.Errorf("Repack(%d) error = %v, want ErrInvalidIndex", index, err)
		}
	}
	if err := a.RepackPath("Doll/none.bin", []byte("x")); !errors.Is(err, dx.ErrNotFound) {
		t.Errorf("RepackPath(missing) error = %v, want ErrNotFound", err)
	}
	checkContents(t, a, sampleContents)
}

// savedHeaders decodes the header and every file header of a saved archive.
func savedHeaders(t *testing.T, a *archive.Archive) (dx.Header, []dx.FileHeader) {
	t.Helper()
	var out bytes.Buffer
	if _, err := a.WriteTo(&out); err != nil {
		t.Fatal(err)
	}
	raw := out.Bytes()
	h, _, err := dx.Decrypt(raw)
	if err != nil {
		t.Fatal(err)
	}

	var files []dx.FileHeader
	for off := h.FileTableStart(); off < h.DirTableStart(); off += dx.FileHeaderSize {
		var fh dx.FileHeader
		fh.DecodeFrom(raw[off:])
		files = append(files, fh)
	}
	return *h, files
}

// Files stored before the first replaced payload keep their offsets; files
// after it move by exactly the accumulated size difference.
func TestRepackPatchesOnlyLaterOffsets(t *testing.T) {
	a := openSample(t, dx.VariantBase)
	h0, before := savedHeaders(t, a)

	if err := a.RepackPath("Doll/DollData.dbs", make([]byte, 50)); err != nil { // +20
		t.Fatal(err)
	}
	if err := a.RepackPath("Map/Field.mad", []byte("abc")); err != nil { // -5
		t.Fatal(err)
	}

	h1, after := savedHeaders(t, a)

	if got, want := h1.FilenameTableOffset, h0.FilenameTableOffset+15; got != want {
		t.Errorf("FilenameTableOffset = %d, want %d", got, want)
	}
	if h1.FileTableOffset != h0.FileTableOffset || h1.DirTableOffset != h0.DirTableOffset {
		t.Error("relative table offsets changed")
	}

	shift := map[int]int{
		7: 20, // Map/Field.mad
		8: 15, // Doll/Skill/SkillData.csv
		9: 15, // Doll/Skill/A.TXT
	}
	for i := range before {
		want := int(before[i].DataOffset) + shift[i]
		if int(after[i].DataOffset) != want {
			t.Errorf("index %d data offset = %d, want %d", i, after[i].DataOffset, want)
		}
		if after[i].FilenameOffset != before[i].FilenameOffset {
			t.Errorf("index %d filename offset changed", i)
		}
	}

	want := copyContents()
	want["Doll/DollData.dbs"] = make([]byte, 50)
	want["Map/Field.mad"] = []byte("abc")
	checkContents(t, a, want)
}

// An empty file shares its data offset with the payload stored after it.
// Growing it must move that payload but leave empty entries in place.
func TestRepackEmptyFileBeforeData(t *testing.T) {
	a, err := archive.OpenBytes(dxtest.Build(dx.VariantBase,
		dxtest.File("EMPTY.BIN", nil),
		dxtest.File("NEXT.BIN", []byte("next-data")),
		dxtest.Dir("D", dxtest.File("LAST.BIN", []byte("last"))),
	), discard)
	if err != nil {
		t.Fatal(err)
	}
	_, before := savedHeaders(t, a)

	if err := a.RepackPath("EMPTY.BIN", []byte("XXXX")); err != nil {
		t.Fatalf("RepackPath() failed: %v", err)
	}

	checkContents(t, a, map[string][]byte{
		"EMPTY.BIN":  []byte("XXXX"),
		"NEXT.BIN":   []byte("next-data"),
		"D/LAST.BIN": []byte("last"),
	})

	_, after := savedHeaders(t, a)
	shift := map[int]int{
		2: 4, // NEXT.BIN
		4: 4, // D/LAST.BIN
	}
	for i := range before {
		want := int(before[i].DataOffset) + shift[i]
		if int(after[i].DataOffset) != want {
			t.Errorf("index %d data offset = %d, want %d", i, after[i].DataOffset, want)
		}
	}
}
