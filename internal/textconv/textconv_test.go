package textconv_test

import (
	"testing"

	"github.com/ossyrian/dxarc/internal/textconv"
)

func TestShiftJISRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		utf8 string
		sjis string
	}{
		{name: "ascii", utf8: "doll/dolldata.dbs", sjis: "doll/dolldata.dbs"},
		{name: "katakana", utf8: "ドール", sjis: "\x83\x68\x81\x5b\x83\x8b"},
		{name: "empty", utf8: "", sjis: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := textconv.ToShiftJIS(tt.utf8)
			if err != nil {
				t.Fatalf("ToShiftJIS() failed: %v", err)
			}
			if enc != tt.sjis {
				t.Errorf("ToShiftJIS(%q) = %x, want %x", tt.utf8, enc, tt.sjis)
			}

			dec, err := textconv.FromShiftJIS(enc)
			if err != nil {
				t.Fatalf("FromShiftJIS() failed: %v", err)
			}
			if dec != tt.utf8 {
				t.Errorf("FromShiftJIS(%x) = %q, want %q", enc, dec, tt.utf8)
			}
		})
	}
}

func TestToShiftJISUnencodable(t *testing.T) {
	if _, err := textconv.ToShiftJIS("emoji 🎎"); err == nil {
		t.Error("ToShiftJIS() succeeded on a rune Shift-JIS cannot hold")
	}
}

func TestDisplay(t *testing.T) {
	if got := textconv.Display("\x83\x68\x81\x5b\x83\x8b"); got != "ドール" {
		t.Errorf("Display() = %q", got)
	}
	if got := textconv.Display("plain.csv"); got != "plain.csv" {
		t.Errorf("Display() = %q", got)
	}
}
