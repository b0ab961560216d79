// Package textconv converts archive names between Shift-JIS and UTF-8.
package textconv

import (
	"fmt"

	"golang.org/x/text/encoding/japanese"
)

// FromShiftJIS decodes a Shift-JIS name as stored in an archive.
func FromShiftJIS(s string) (string, error) {
	out, err := japanese.ShiftJIS.NewDecoder().String(s)
	if err != nil {
		return "", fmt.Errorf("failed to decode shift-jis %q: %w", s, err)
	}
	return out, nil
}

// ToShiftJIS encodes a UTF-8 name for lookup in an archive.
func ToShiftJIS(s string) (string, error) {
	out, err := japanese.ShiftJIS.NewEncoder().String(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode %q as shift-jis: %w", s, err)
	}
	return out, nil
}

// Display returns s decoded from Shift-JIS, or s unchanged when it does not
// decode.
func Display(s string) string {
	if out, err := FromShiftJIS(s); err == nil {
		return out
	}
	return s
}
