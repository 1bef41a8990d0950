package table

import (
	"strconv"
	"strings"
)

// Kind classifies a cell.
type Kind int

const (
	// KindMissing marks an empty or NA cell.
	KindMissing Kind = iota
	// KindNumber marks a cell of a numeric column.
	KindNumber
	// KindText marks a cell of a text column.
	KindText
)

// Value is a single table cell.
type Value struct {
	Kind Kind    // Kind of the cell.
	Num  float64 // Num holds the parsed number for KindNumber.
	Text string  // Text holds the raw field text for KindNumber and KindText.
}

// Missing returns the missing value.
func Missing() Value {
	return Value{Kind: KindMissing}
}

// Number returns a numeric value.
func Number(n float64) Value {
	return Value{Kind: KindNumber, Num: n, Text: strconv.FormatFloat(n, 'f', -1, 64)}
}

// Text returns a text value.
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// IsMissing reports whether v is missing.
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}

// String returns the display form of the value. Numbers use their shortest
// decimal form so that "1.0" and "1" display the same, missing values are empty.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return v.Text
	default:
		return ""
	}
}

// naTokens are the field contents read as missing.
var naTokens = map[string]struct{}{
	"":          {},
	"#N/A":      {},
	"#N/A N/A":  {},
	"#NA":       {},
	"-1.#IND":   {},
	"-1.#QNAN":  {},
	"-NaN":      {},
	"-nan":      {},
	"1.#IND":    {},
	"1.#QNAN":   {},
	"<NA>":      {},
	"N/A":       {},
	"NA":        {},
	"NULL":      {},
	"NaN":       {},
	"None":      {},
	"n/a":       {},
	"nan":       {},
	"null":      {},
}

func isNA(field string) bool {
	_, ok := naTokens[field]
	return ok
}

// parseNumber reads a decimal number. Hex floats and digit separators are
// accepted by strconv but not by CSV readers, so they stay text.
func parseNumber(field string) (float64, bool) {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" || strings.ContainsAny(trimmed, "xX_pP") {
		return 0, false
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}
