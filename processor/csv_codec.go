package processor

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/LilVoxy/fii_analytics/ETL/models"
)

// WriteCSV writes a table as comma separated UTF-8 text with a header row.
// Nulls become empty fields and numbers keep their ".0" when integral.
func WriteCSV(w io.Writer, t models.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = models.FormatCell(row[i])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadCSV reads a table written by WriteCSV, inferring column kinds
func ReadCSV(r io.Reader, name string) (models.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.NewTable(name, []string{}, nil), nil
		}
		return models.Table{}, fmt.Errorf("read header: %w", err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return models.Table{}, fmt.Errorf("read records: %w", err)
	}

	return models.FromRecords(name, header, records), nil
}
