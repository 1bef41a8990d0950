// Package decoding turns uploaded bytes into text using the Windows-1252 code page.
package decoding

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DecodeError is returned when the input contains a byte that Windows-1252 leaves unassigned.
type DecodeError struct {
	Position int  // Position is the byte offset of the offending byte.
	Byte     byte // Byte is the offending byte value.
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cp1252 codec can't decode byte 0x%02x in position %d: character maps to <undefined>",
		e.Byte, e.Position)
}

// Decode interprets raw as Windows-1252 text and returns it as a UTF-8 string.
// No other encoding is attempted.
func Decode(raw []byte) (string, error) {
	for idx, b := range raw {
		if !assigned(b) {
			return "", &DecodeError{Position: idx, Byte: b}
		}
	}

	text, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode cp1252 content: %w", err)
	}

	return string(text), nil
}

// assigned reports whether b has a character in Windows-1252.
// The x/text table maps the five holes in 0x80-0x9F to U+FFFD.
func assigned(b byte) bool {
	return charmap.Windows1252.DecodeByte(b) != utf8.RuneError
}
