// Package export writes document lists as CSV or XLSX.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"docrepo/internal/browse"
)

// BOM is the UTF-8 byte order mark, written first so Excel on Windows
// detects the encoding.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the header row.
var columns = []string{
	"ID",
	"Title",
	"Description",
	"Tags",
	"Latest Version",
	"Size",
	"Updated At",
}

// Writer wraps csv.Writer for exporting document rows.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRows writes one CSV record per row.
func (w *Writer) WriteRows(rows []browse.Row) error {
	for i := range rows {
		if err := w.csv.Write(rowToRecord(&rows[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes BOM, header and rows, then flushes.
func WriteCSV(out io.Writer, rows []browse.Row) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteRows(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// rowToRecord converts a row to a string slice matching columns. An unknown
// size is left empty.
func rowToRecord(r *browse.Row) []string {
	rec := make([]string, len(columns))
	rec[0] = strconv.FormatInt(r.Doc.ID, 10)
	rec[1] = r.Doc.Title
	rec[2] = r.Doc.Description
	rec[3] = strings.Join(r.Doc.Tags, ", ")
	rec[4] = "v" + strconv.Itoa(r.Doc.CurrentVersionNumber)
	if r.Size != nil {
		rec[5] = strconv.FormatInt(*r.Size, 10)
	}
	if r.Doc.UpdatedAt != nil {
		rec[6] = r.Doc.UpdatedAt.Format(time.RFC3339)
	}
	return rec
}
