// Package common provides the CSV plumbing shared by the file-backed stores.
package common

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// UTF8BOM is written at the start of store files when requested so that
// spreadsheet tools detect the encoding.
var UTF8BOM = []byte{0xEF, 0xBB, 0xBF}

// HeaderPatch may rewrite the header row before it is matched against the
// struct tags.
type HeaderPatch func(header []string)

// headerPatchingReader applies a HeaderPatch to the first row read.
type headerPatchingReader struct {
	*csv.Reader
	patch   HeaderPatch
	patched bool
}

func (r *headerPatchingReader) Read() ([]string, error) {
	row, err := r.Reader.Read()
	if err == nil && !r.patched {
		r.patched = true
		if r.patch != nil {
			r.patch(row)
		}
	}
	return row, err
}

func (r *headerPatchingReader) ReadAll() ([][]string, error) {
	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

func newCSVReader(in io.Reader, delimiter rune) *csv.Reader {
	reader := csv.NewReader(in)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

// ReadCSV decodes data into a slice of TCSVRow using the struct's csv tags.
// A leading UTF-8 byte order mark is ignored and empty input yields no rows.
func ReadCSV[TCSVRow any](data []byte, delimiter rune, patch HeaderPatch) ([]TCSVRow, error) {
	data = bytes.TrimPrefix(data, UTF8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	reader := &headerPatchingReader{
		Reader: newCSVReader(bytes.NewReader(data), delimiter),
		patch:  patch,
	}

	var rows []TCSVRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("error parsing CSV data: %w", err)
	}
	return rows, nil
}

// WriteCSV encodes rows, header first, using the struct's csv tags.
func WriteCSV[TCSVRow any](out io.Writer, rows []TCSVRow, delimiter rune, bom bool) error {
	if bom {
		if _, err := out.Write(UTF8BOM); err != nil {
			return fmt.Errorf("error writing byte order mark: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	writer.Comma = delimiter
	if rows == nil {
		rows = []TCSVRow{}
	}
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}
