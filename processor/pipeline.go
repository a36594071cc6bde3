package processor

import (
	"bytes"

	"github.com/LilVoxy/fii_analytics/ETL/models"
)

// PackTable serializes a table to CSV and compresses it
func PackTable(t models.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return nil, err
	}
	return CompressPayload(buf.Bytes()), nil
}

// UnpackTable reverses PackTable
func UnpackTable(payload []byte, name string) (models.Table, error) {
	data, err := DecompressPayload(payload)
	if err != nil {
		return models.Table{}, err
	}
	return ReadCSV(bytes.NewReader(data), name)
}
