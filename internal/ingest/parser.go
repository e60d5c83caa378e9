package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DetectDelimiter picks the field delimiter from a header line: pipe when
// one is present anywhere in the line, comma otherwise.
func DetectDelimiter(header string) rune {
	if strings.ContainsRune(header, '|') {
		return '|'
	}
	return ','
}

// Row is one parsed data row, keyed by the source file's header columns.
type Row struct {
	// Line is the 1-based physical line the record starts on, counting the
	// header. A quoted field spanning several lines advances subsequent
	// records past the lines it consumed.
	Line   int
	fields map[string]string
}

// Get returns the raw value for a column and whether the column was present
// in this row. Values are not trimmed; the source is taken as-is.
func (r *Row) Get(col string) (string, bool) {
	v, ok := r.fields[col]
	return v, ok
}

// Reader reads delimited claim source files row by row. The delimiter is
// detected once from the header line. Field semantics are not validated
// here; rows shorter than the header simply lack the trailing columns.
type Reader struct {
	cr     *csv.Reader
	header []string
	line   int
}

// NewReader consumes the whole source (import files fit in memory) and
// prepares row iteration. An empty source yields a Reader that is
// immediately exhausted.
func NewReader(r io.Reader) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	firstLine := string(data)
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = string(data[:i])
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = DetectDelimiter(firstLine)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return &Reader{cr: cr, line: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	return &Reader{cr: cr, header: header, line: 1}, nil
}

// Header returns the trimmed column names, nil for an empty source.
func (r *Reader) Header() []string {
	return r.header
}

// Next returns the next data row, io.EOF when the source is exhausted, or a
// parse error for an unreadable record. Callers treat per-record errors as
// row-level failures and keep iterating.
func (r *Reader) Next() (*Row, error) {
	if r.header == nil {
		return nil, io.EOF
	}

	record, err := r.cr.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			r.line = parseErr.StartLine
		} else {
			r.line++
		}
		return nil, fmt.Errorf("line %d: %w", r.line, err)
	}
	r.line, _ = r.cr.FieldPos(0)

	fields := make(map[string]string, len(r.header))
	for i, col := range r.header {
		if i < len(record) {
			fields[col] = record[i]
		}
	}

	return &Row{Line: r.line, fields: fields}, nil
}
