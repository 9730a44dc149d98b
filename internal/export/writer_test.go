package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"docrepo/internal/browse"
	"docrepo/internal/domain"
)

func sampleRows() []browse.Row {
	size := int64(2048)
	updated := &domain.Timestamp{Time: time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)}
	return []browse.Row{
		{
			Doc: domain.DocSummary{
				ID: 1, Title: "Budget", Description: "FY plan",
				Tags: []string{"finance", "2025"}, CurrentVersionNumber: 3, UpdatedAt: updated,
			},
			Size: &size,
		},
		{
			Doc: domain.DocSummary{ID: 2, Title: "Notes, draft", CurrentVersionNumber: 1},
		},
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	row, err := csv.NewReader(&buf).Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Title", "Description", "Tags", "Latest Version", "Size", "Updated At"}, row)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows()))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, BOM))

	records, err := csv.NewReader(bytes.NewReader(data[len(BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"1", "Budget", "FY plan", "finance, 2025", "v3", "2048", "2025-01-15T10:30:00Z"}, records[1])
	assert.Equal(t, []string{"2", "Notes, draft", "", "", "v1", "", ""}, records[2])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleRows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Latest Version", rows[0][4])
	assert.Equal(t, "Budget", rows[1][1])
	assert.Equal(t, "2048", rows[1][5])
	assert.Equal(t, "Notes, draft", rows[2][1])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "My Documents", "My_Documents"},
		{"special chars", "FY 2024-25 / Q3 (Oct–Dec)", "FY_2024-25_Q3_Oct_Dec"},
		{"hyphens and underscores preserved", "my-docs_2025", "my-docs_2025"},
		{"consecutive underscores collapsed", "test___list", "test_list"},
		{"leading/trailing cleaned", "  hello  ", "hello"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, "My_Documents_"+today+".csv", BuildFilename("My Documents", "csv"))
	assert.Equal(t, "documents_"+today+".xlsx", BuildFilename("***", ".xlsx"))
}

func TestSafeDownloadName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"report v2.pdf", "report v2.pdf"},
		{"../../etc/passwd", "passwd"},
		{`..\..\boot.ini`, "boot.ini"},
		{"résumé.pdf", "r_sum_.pdf"},
		{"..", "download"},
		{"", "download"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeDownloadName(tt.input))
		})
	}
}
