package extractors

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/fii_analytics/ETL/utils"
)

func discardLogger() *utils.ETLLogger {
	return utils.NewWriterLogger(io.Discard, false)
}

func TestTableNameFromFile(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"inf_trimestral_fii_geral_2019.csv", "inf_trimestral_fii_geral"},
		{"inf_trimestral_fii_ativo_2019.CSV", "inf_trimestral_fii_ativo"},
		{"inf_2019_extra.csv", "inf_extra"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TableNameFromFile(tt.file, 2019))
	}
}

func TestDecodeRawTableReadsLatin1Semicolons(t *testing.T) {
	raw := "CNPJ_Fundo; Nome_Imovel ;Area\n" +
		"11.111.111/0001-11;Galp\xe3o Im\xf3vel;1500.5\n" +
		"22.222.222/0001-22;\"Loja; centro\";\n"

	table, err := DecodeRawTable(strings.NewReader(raw), "imovel")
	require.NoError(t, err)

	assert.Equal(t, "imovel", table.Name)
	assert.Equal(t, []string{"CNPJ_Fundo", "Nome_Imovel", "Area"}, table.Columns)
	assert.Equal(t, [][]any{
		{"11.111.111/0001-11", "Galpão Imóvel", 1500.5},
		{"22.222.222/0001-22", "Loja; centro", nil},
	}, table.Rows)
}

func TestDecodeRawTableEmptyInput(t *testing.T) {
	table, err := DecodeRawTable(strings.NewReader(""), "vazio")
	require.NoError(t, err)
	assert.Empty(t, table.Columns)
	assert.Equal(t, 0, table.NumRows())
}

func TestExtractYear(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("inf_trimestral_fii_geral_2019.csv", "CNPJ_Fundo;Nome_Fundo\n1;Fundo A\n")
	write("inf_trimestral_fii_ativo_2019.csv", "CNPJ_Fundo;Valor\n1;10\n")
	write("inf_trimestral_fii_geral_2020.csv", "CNPJ_Fundo\n2\n")
	write("inf_trimestral_fii_2019.zip", "not a csv")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested_2019.csv"), 0o755))

	extractor := NewTableExtractor(dir, discardLogger())

	tables, err := extractor.ExtractYear(2019)
	require.NoError(t, err)
	assert.Equal(t, []string{"inf_trimestral_fii_ativo", "inf_trimestral_fii_geral"}, tables.Names())
	assert.Equal(t, [][]any{{1.0, 10.0}}, tables["inf_trimestral_fii_ativo"].Rows)

	tables, err = extractor.ExtractYear(2016)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestExtractYearMissingDirectory(t *testing.T) {
	extractor := NewTableExtractor(filepath.Join(t.TempDir(), "absent"), discardLogger())

	tables, err := extractor.ExtractYear(2019)
	require.NoError(t, err)
	assert.Empty(t, tables)
}
