package extractors

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/LilVoxy/fii_analytics/ETL/models"
	"github.com/LilVoxy/fii_analytics/ETL/utils"
)

// Raw CVM tables are semicolon separated and ISO-8859-1 encoded
const rawDelimiter = ';'

// TableExtractor reads the raw per-topic tables of a year from the source directory
type TableExtractor struct {
	sourceDir string
	logger    *utils.ETLLogger
}

// NewTableExtractor creates a new TableExtractor
func NewTableExtractor(sourceDir string, logger *utils.ETLLogger) *TableExtractor {
	return &TableExtractor{
		sourceDir: sourceDir,
		logger:    logger,
	}
}

// ExtractYear loads every CSV file whose name contains "_<year>".
// Tables are keyed by file name without the ".csv" extension and the year marker.
// A directory without matching files yields an empty set.
func (e *TableExtractor) ExtractYear(year int) (models.TableSet, error) {
	entries, err := os.ReadDir(e.sourceDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.TableSet{}, nil
		}
		return nil, fmt.Errorf("error listing source directory %s: %w", e.sourceDir, err)
	}

	marker := fmt.Sprintf("_%d", year)
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".csv") || !strings.Contains(name, marker) {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)

	tables := make(models.TableSet, len(files))
	for _, name := range files {
		tableName := TableNameFromFile(name, year)
		table, err := ReadRawTable(filepath.Join(e.sourceDir, name), tableName)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", name, err)
		}
		e.logger.Debug("Loaded %s: %d rows, %d columns", tableName, table.NumRows(), len(table.Columns))
		tables[tableName] = table
	}

	return tables, nil
}

// TableNameFromFile strips the extension and the year marker from a raw file name:
// "inf_trimestral_fii_geral_2019.csv" becomes "inf_trimestral_fii_geral".
func TableNameFromFile(fileName string, year int) string {
	base := fileName[:len(fileName)-len(filepath.Ext(fileName))]
	marker := fmt.Sprintf("_%d", year)
	if strings.HasSuffix(base, marker) {
		return strings.TrimSuffix(base, marker)
	}
	return strings.Replace(base, marker, "", 1)
}

// ReadRawTable reads one raw CVM file
func ReadRawTable(path, tableName string) (models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Table{}, err
	}
	defer f.Close()

	return DecodeRawTable(f, tableName)
}

// DecodeRawTable decodes a semicolon separated ISO-8859-1 stream
func DecodeRawTable(r io.Reader, tableName string) (models.Table, error) {
	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	reader.Comma = rawDelimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.NewTable(tableName, nil, nil), nil
		}
		return models.Table{}, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return models.Table{}, fmt.Errorf("read records: %w", err)
	}

	return models.FromRecords(tableName, header, records), nil
}
