package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// ErrNoColumns is returned when the input has no header row.
var ErrNoColumns = errors.New("no columns to parse from file")

// ParseError reports malformed CSV input.
type ParseError struct {
	Line int   // Line is the 1-based input line, 0 when unknown.
	Err  error // Err is the underlying cause.
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("failed to parse CSV: %v", e.Err)
	}

	return fmt.Sprintf("failed to parse CSV at line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads comma-separated text whose first record is the header.
// Blank lines are skipped and short rows are padded with missing values.
// Column names are trimmed of surrounding whitespace. A bare quote inside an
// unquoted field (5" screen) is kept as text; a broken quoted field is a ParseError.
func Parse(text string) (*Table, error) {
	tbl, err := parse(text, false)
	if errors.Is(err, csv.ErrBareQuote) {
		return parse(text, true)
	}

	return tbl, err
}

func parse(text string, lazyQuotes bool) (*Table, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = lazyQuotes

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Err: ErrNoColumns}
	}
	if err != nil {
		return nil, wrapCSVError(err)
	}

	var records [][]string
	for {
		record, errRead := reader.Read()
		if errors.Is(errRead, io.EOF) {
			break
		}
		if errRead != nil {
			return nil, wrapCSVError(errRead)
		}

		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, &ParseError{
				Line: line,
				Err:  fmt.Errorf("expected %d fields, saw %d", len(header), len(record)),
			}
		}
		records = append(records, record)
	}

	return build(header, records), nil
}

// FromRecords builds a table from an already split header and rows.
// It applies the same name normalisation and type inference as Parse.
func FromRecords(header []string, records [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, &ParseError{Err: ErrNoColumns}
	}
	const firstDataLine = 2
	for idx, record := range records {
		if len(record) > len(header) {
			return nil, &ParseError{
				Line: idx + firstDataLine,
				Err:  fmt.Errorf("expected %d fields, saw %d", len(header), len(record)),
			}
		}
	}

	return build(header, records), nil
}

func wrapCSVError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Line: csvErr.Line, Err: csvErr.Err}
	}

	return &ParseError{Err: err}
}

func build(header []string, records [][]string) *Table {
	names := normalizeNames(header)
	columns := make([]Column, len(names))
	rows := make([][]Value, len(records))
	for row := range records {
		rows[row] = make([]Value, len(names))
	}

	for col, name := range names {
		numeric := true
		for _, record := range records {
			field, ok := fieldAt(record, col)
			if !ok {
				continue
			}
			if _, isNum := parseNumber(field); !isNum {
				numeric = false
				break
			}
		}

		kind := KindText
		if numeric {
			kind = KindNumber
		}
		columns[col] = Column{Name: name, Kind: kind}

		for row, record := range records {
			field, ok := fieldAt(record, col)
			switch {
			case !ok:
				rows[row][col] = Missing()
			case numeric:
				rows[row][col] = numberValue(field)
			default:
				rows[row][col] = Text(field)
			}
		}
	}

	return newTable(columns, rows)
}

// numberValue reads a field of a numeric column. A spelling of NaN that is not
// an NA token ("NAN", "Nan") still reads as missing.
func numberValue(field string) Value {
	n, _ := parseNumber(field)
	if math.IsNaN(n) {
		return Missing()
	}

	return Value{Kind: KindNumber, Num: n, Text: field}
}

// fieldAt returns the field at col, or false when the row is short or the field is NA.
func fieldAt(record []string, col int) (string, bool) {
	if col >= len(record) || isNA(record[col]) {
		return "", false
	}

	return record[col], true
}

// normalizeNames trims header names, names blank ones by position and
// suffixes duplicates with ".1", ".2", ... so every name is unique.
func normalizeNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for idx, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", idx)
		}

		candidate := name
		for suffix := 1; used[candidate]; suffix++ {
			candidate = fmt.Sprintf("%s.%d", name, suffix)
		}
		used[candidate] = true
		names[idx] = candidate
	}

	return names
}
