package transform

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/LilVoxy/fii_analytics/ETL/extractors"
	"github.com/LilVoxy/fii_analytics/ETL/models"
)

type TransformerSuite struct {
	suite.Suite
	transformer *Transformer
}

func TestTransformerSuite(t *testing.T) {
	suite.Run(t, new(TransformerSuite))
}

func (s *TransformerSuite) SetupTest() {
	s.transformer = NewTransformer(discardLogger())
}

func (s *TransformerSuite) transform(withCustos bool) models.TableSet {
	analyses, err := s.transformer.Transform(2023, yearFixture(withCustos))
	s.Require().NoError(err)
	return analyses
}

func (s *TransformerSuite) TestProducesNineAnalysesWithoutExpenses() {
	analyses := s.transform(false)

	s.Len(analyses, 9)
	_, ok := analyses.Get(AnalysisCustos)
	s.False(ok)
}

func (s *TransformerSuite) TestProducesCustosWhenExpensesArePresent() {
	analyses := s.transform(true)

	s.Len(analyses, 10)
	custos := analyses[AnalysisCustos]
	s.Equal([]string{ColNomeFundo, ColDespesasExercicio}, custos.Columns)
	s.Equal([][]any{{"Fundo A", 12.34}}, custos.Rows)
}

func (s *TransformerSuite) TestRentabilidadeMedia() {
	t := s.transform(false)[AnalysisRentabilidadeMedia]

	s.Equal(AnalysisRentabilidadeMedia, t.Name)
	s.Equal([]string{ColNomeFundo, ColRentabilidadeMes}, t.Columns)
	s.Equal([][]any{{"Fundo A", 2.0}}, t.Rows)
}

func (s *TransformerSuite) TestVacancia() {
	t := s.transform(false)[AnalysisVacancia]

	s.Equal([]string{ColNomeImovel, ColVacancia, ColInadimplencia}, t.Columns)
	s.Equal([][]any{
		{"Galpão X", 0.1, 0.0},
		{"Torre Y", nil, nil},
	}, t.Rows)
}

func (s *TransformerSuite) TestDistribuicaoVsLucroDropsZeroProfit() {
	t := s.transform(false)[AnalysisDistribuicaoVsLucro]

	s.Equal([]string{ColCNPJ, ColNomeFundo, ColLucroContabil, ColRendimentosDeclarados, ColDistribuido}, t.Columns)
	s.Equal([][]any{{cnpjA, "Fundo A", 100.0, 95.0, 95.0}}, t.Rows)
}

func (s *TransformerSuite) TestAtivosTipo() {
	t := s.transform(false)[AnalysisAtivosTipo]

	s.Equal([]string{ColNomeFundo, ColTipo, ColValor}, t.Columns)
	s.Equal([][]any{
		{"Fundo A", "CRI", 150.0},
		{"Fundo A", "LCI", 25.12},
	}, t.Rows)
}

func (s *TransformerSuite) TestLiquidez() {
	t := s.transform(false)[AnalysisLiquidez]

	s.Equal([]string{ColNomeFundo, ColLiquidezDisponivel}, t.Columns)
	s.Equal([][]any{{"Fundo A", 1234.57}}, t.Rows)
}

func (s *TransformerSuite) TestDireitosValor() {
	t := s.transform(false)[AnalysisDireitosValor]

	s.Equal([]string{ColNomeFundo, ColNomeAtivo, ColValor}, t.Columns)
	s.Equal([][]any{{"Fundo A", "Direito 1", 10.0}}, t.Rows)
}

func (s *TransformerSuite) TestMovimentacaoImoveisExcludesPlaceholderDate() {
	t := s.transform(false)[AnalysisMovimentacaoImoveis]

	s.Require().Equal(1, t.NumRows())
	s.Equal("Torre Y", t.Value(0, ColNomeImovel))
	s.Equal("2023-05-01", t.Value(0, ColDataAlienacao))
}

func (s *TransformerSuite) TestImoveisParaVendaNormalizesClasse() {
	t := s.transform(false)[AnalysisImoveisParaVenda]

	s.Require().Equal(1, t.NumRows())
	s.Equal("Torre Y", t.Value(0, ColNomeImovel))
	s.Equal("imóveis para venda - acabados", t.Value(0, ColClasse))
}

func (s *TransformerSuite) TestInformacoesQualitativas() {
	t := s.transform(false)[AnalysisInformacoesQualitativas]

	s.Equal([]string{ColNomeFundo, ColPublicoAlvo, ColMercado}, t.Columns)
	s.Equal([][]any{
		{"Fundo A", "Investidores em geral", "Bolsa"},
		{"Fundo B", "Investidores qualificados", "Balcão"},
	}, t.Rows)
}

func (s *TransformerSuite) TestMissingTableFailsTheYear() {
	raw := yearFixture(false)
	delete(raw, TableDireito)

	analyses, err := s.transformer.Transform(2019, raw)

	s.Nil(analyses)
	var missing *MissingTableError
	s.Require().True(errors.As(err, &missing))
	s.Equal(2019, missing.Year)
	s.Equal(ViewDireitos, missing.Recipe)
	s.Equal(TableDireito, missing.Table)
}

// decodeCSV reads a raw CVM table from semicolon separated lines
func (s *TransformerSuite) decodeCSV(name string, lines ...string) models.Table {
	table, err := extractors.DecodeRawTable(strings.NewReader(strings.Join(lines, "\n")+"\n"), name)
	s.Require().NoError(err)
	return table
}

func (s *TransformerSuite) TestUnparseableNumbersOnlyDropTheirRows() {
	raw := yearFixture(false)
	raw[TableResultadoContabilFinanceiro] = s.decodeCSV(TableResultadoContabilFinanceiro,
		"CNPJ_Fundo;Data_Referencia;Versao;Lucro_Contabil;Rendimentos_Declarados",
		cnpjA+";"+refQ1+";1;100;95",
		cnpjB+";"+refQ1+";1;n/d;10",
	)
	raw[TableRentabilidadeEfetiva] = s.decodeCSV(TableRentabilidadeEfetiva,
		"CNPJ_Fundo;Data_Referencia;Versao;Percentual_Rentabilidade_Efetiva_Mes",
		cnpjA+";"+refQ1+";1;1",
		cnpjA+";"+refQ1+";1;3",
		cnpjA+";"+refQ1+";1;n/d",
	)

	analyses, err := s.transformer.Transform(2023, raw)
	s.Require().NoError(err)
	s.Len(analyses, 9)

	s.Equal([][]any{{cnpjA, "Fundo A", 100.0, 95.0, 95.0}}, analyses[AnalysisDistribuicaoVsLucro].Rows)
	s.Equal([][]any{{"Fundo A", 2.0}}, analyses[AnalysisRentabilidadeMedia].Rows)
}

func (s *TransformerSuite) TestMissingResultadoProducesNoExpenseAnalyses() {
	raw := yearFixture(true)
	delete(raw, TableResultadoContabilFinanceiro)

	analyses, err := s.transformer.Transform(2021, raw)

	s.Nil(analyses)
	var missing *MissingTableError
	s.Require().True(errors.As(err, &missing))
	s.Equal(ViewResultado, missing.Recipe)
	s.Equal(TableResultadoContabilFinanceiro, missing.Table)
	_, ok := analyses.Get(AnalysisCustos)
	s.False(ok)
	_, ok = analyses.Get(AnalysisDistribuicaoVsLucro)
	s.False(ok)
}

func TestAnalysisNamesListsTheCatalog(t *testing.T) {
	names := NewTransformer(discardLogger()).AnalysisNames()

	require.Len(t, names, 10)
	assert.Equal(t, AnalysisRentabilidadeMedia, names[0])
	assert.Contains(t, names, AnalysisCustos)
}

func TestDisposalDate(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{"1899-12-31", nil},
		{"2023-05-01", "2023-05-01"},
		{" 2023-05-01 ", "2023-05-01"},
		{"2023-05-01 00:00:00", "2023-05-01"},
		{"2023-05-01T10:30:00", "2023-05-01"},
		{"01/05/2023", nil},
		{nil, nil},
		{44000.0, nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, disposalDate(tt.in), "%v", tt.in)
	}
}

func TestAddDistributedRatio(t *testing.T) {
	table := models.NewTable("r", []string{ColLucroContabil, ColRendimentosDeclarados}, [][]any{
		{200.0, 50.0},
		{0.0, 10.0},
		{nil, 10.0},
		{100.0, nil},
		{"40", "10"},
		{"n/d", 10.0},
		{" 50 ", "abc"},
	})

	out, err := addDistributedRatio(table)
	require.NoError(t, err)

	ratios := make([]any, out.NumRows())
	for i := range ratios {
		ratios[i] = out.Value(i, ColDistribuido)
	}
	assert.Equal(t, []any{25.0, nil, nil, nil, 25.0, nil, nil}, ratios)
	assert.Equal(t, 40.0, out.Value(4, ColLucroContabil))
	assert.Nil(t, out.Value(5, ColLucroContabil))

	_, err = addDistributedRatio(out)
	var dup *DuplicateColumnError
	assert.True(t, errors.As(err, &dup))
}

func TestDeriveRequiresEveryView(t *testing.T) {
	deriver := NewAnalysisDeriver(discardLogger())

	_, err := deriver.Derive(2020, models.TableSet{})

	var missing *MissingTableError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, ViewRentab, missing.Table)
}

func TestInformacoesQualitativasWithoutColumns(t *testing.T) {
	views := models.TableSet{
		ViewComplemento: models.NewTable(ViewComplemento, []string{ColCNPJ}, [][]any{{cnpjA}}),
	}

	out, ok, err := deriveInformacoesQualitativas(views)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, out.Columns)
	assert.Equal(t, 0, out.NumRows())
}
