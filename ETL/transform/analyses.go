package transform

import (
	"fmt"
	"strings"
	"time"

	"github.com/LilVoxy/fii_analytics/ETL/models"
	"github.com/LilVoxy/fii_analytics/ETL/utils"
)

// Analysis names, as used in exported file names
const (
	AnalysisRentabilidadeMedia      = "rentabilidade_media"
	AnalysisVacancia                = "vacancia"
	AnalysisDistribuicaoVsLucro     = "distribuicao_vs_lucro"
	AnalysisAtivosTipo              = "ativos_tipo"
	AnalysisLiquidez                = "liquidez"
	AnalysisDireitosValor           = "direitos_valor"
	AnalysisMovimentacaoImoveis     = "movimentacao_imoveis"
	AnalysisImoveisParaVenda        = "imoveis_para_venda"
	AnalysisInformacoesQualitativas = "informacoes_qualitativas"
	AnalysisCustos                  = "custos"
)

// Source columns read by the analyses
const (
	ColNomeFundo             = "Nome_Fundo"
	ColRentabilidadeMes      = "Percentual_Rentabilidade_Efetiva_Mes"
	ColVacancia              = "Percentual_Vacancia"
	ColInadimplencia         = "Percentual_Inadimplencia"
	ColLucroContabil         = "Lucro_Contabil"
	ColRendimentosDeclarados = "Rendimentos_Declarados"
	ColDistribuido           = "%Distribuido"
	ColTipo                  = "Tipo"
	ColValor                 = "Valor"
	ColLiquidezDisponivel    = "Ativo_Liquidez_Valor_Disponibilidades"
	ColDataAlienacao         = "Data_Alienacao"
	ColClasse                = "Classe"
	ColPublicoAlvo           = "Publico_Alvo"
	ColMercado               = "Mercado"
	ColDespesasExercicio     = "Despesas_Exercicio"
)

const (
	// placeholder written by CVM when a property was never sold
	noDisposalDate     = "1899-12-31"
	propertiesForSale  = "imóveis para venda"
	exportedDateLayout = "2006-01-02"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Projections of the analyses that select columns
var (
	distribuicaoProjection = Projection{
		Required: []string{ColCNPJ, ColNomeFundo, ColLucroContabil, ColRendimentosDeclarados, ColDistribuido},
	}
	liquidezProjection = Projection{
		Required: []string{ColNomeFundo, ColLiquidezDisponivel},
	}
	direitosProjection = Projection{
		Required: []string{ColNomeFundo, ColNomeAtivo, ColValor},
	}
	qualitativasProjection = Projection{
		Optional: []string{ColNomeFundo, ColPublicoAlvo, ColMercado},
	}
	custosProjection = Projection{
		Required: []string{ColNomeFundo, ColDespesasExercicio},
	}
)

// deriveFunc builds one analysis from the merged views.
// ok is false when the analysis does not apply to the year.
type deriveFunc func(views models.TableSet) (table models.Table, ok bool, err error)

type analysisDef struct {
	name   string
	view   string
	derive deriveFunc
}

// AnalysisDeriver derives the analysis tables of a year
type AnalysisDeriver struct {
	logger  *utils.ETLLogger
	catalog []analysisDef
}

// NewAnalysisDeriver creates a new AnalysisDeriver
func NewAnalysisDeriver(logger *utils.ETLLogger) *AnalysisDeriver {
	return &AnalysisDeriver{
		logger: logger,
		catalog: []analysisDef{
			{AnalysisRentabilidadeMedia, ViewRentab, deriveRentabilidadeMedia},
			{AnalysisVacancia, ViewImovel, deriveVacancia},
			{AnalysisDistribuicaoVsLucro, ViewResultado, deriveDistribuicaoVsLucro},
			{AnalysisAtivosTipo, ViewAtivos, deriveAtivosTipo},
			{AnalysisLiquidez, ViewComplemento, deriveLiquidez},
			{AnalysisDireitosValor, ViewDireitos, deriveDireitosValor},
			{AnalysisMovimentacaoImoveis, ViewImoveisHistorico, deriveMovimentacaoImoveis},
			{AnalysisImoveisParaVenda, ViewImoveisHistorico, deriveImoveisParaVenda},
			{AnalysisCustos, ViewResultado, deriveCustos},
			{AnalysisInformacoesQualitativas, ViewComplemento, deriveInformacoesQualitativas},
		},
	}
}

// AnalysisNames returns the names of every analysis the deriver can produce
func (d *AnalysisDeriver) AnalysisNames() []string {
	names := make([]string, len(d.catalog))
	for i, def := range d.catalog {
		names[i] = def.name
	}
	return names
}

// Derive builds every analysis. Any failure fails the whole year, so nothing
// is returned for it.
func (d *AnalysisDeriver) Derive(year int, views models.TableSet) (models.TableSet, error) {
	startTime := time.Now()
	analyses := make(models.TableSet, len(d.catalog))

	for _, def := range d.catalog {
		if _, ok := views.Get(def.view); !ok {
			return nil, &MissingTableError{Year: year, Recipe: def.name, Table: def.view}
		}

		table, ok, err := def.derive(views)
		if err != nil {
			return nil, fmt.Errorf("analysis %s: %w", def.name, err)
		}
		if !ok {
			d.logger.Debug("Analysis %s does not apply to %d", def.name, year)
			continue
		}

		analyses[def.name] = table.Renamed(def.name)
		d.logger.Debug("Analysis %s: %d rows", def.name, table.NumRows())
	}

	d.logger.Debug("Derived %d analyses for %d in %v", len(analyses), year, time.Since(startTime))
	return analyses, nil
}

func deriveRentabilidadeMedia(views models.TableSet) (models.Table, bool, error) {
	grouped, err := GroupBy(views[ViewRentab], []string{ColNomeFundo}, Aggregate{ColRentabilidadeMes, Mean})
	if err != nil {
		return models.Table{}, false, err
	}
	return RoundNumeric(grouped), true, nil
}

func deriveVacancia(views models.TableSet) (models.Table, bool, error) {
	grouped, err := GroupBy(views[ViewImovel], []string{ColNomeImovel},
		Aggregate{ColVacancia, Mean},
		Aggregate{ColInadimplencia, Mean},
	)
	if err != nil {
		return models.Table{}, false, err
	}
	return RoundNumeric(grouped), true, nil
}

func deriveDistribuicaoVsLucro(views models.TableSet) (models.Table, bool, error) {
	view := views[ViewResultado]
	withRatio, err := addDistributedRatio(view)
	if err != nil {
		return models.Table{}, false, err
	}

	projected, err := distribuicaoProjection.Apply(withRatio)
	if err != nil {
		return models.Table{}, false, err
	}

	cleaned, err := Clean(projected, ColDistribuido, ColLucroContabil)
	return cleaned, err == nil, err
}

// addDistributedRatio appends %Distribuido = 100 * Rendimentos_Declarados / Lucro_Contabil.
// Both inputs are coerced to numbers first. A null or zero profit yields null.
func addDistributedRatio(t models.Table) (models.Table, error) {
	if t.HasColumn(ColDistribuido) {
		return models.Table{}, &DuplicateColumnError{Table: t.Name, Column: ColDistribuido}
	}
	t, err := CoerceNumeric(t, ColLucroContabil, ColRendimentosDeclarados)
	if err != nil {
		return models.Table{}, err
	}
	profitIdx := t.ColumnIndex(ColLucroContabil)
	yieldIdx := t.ColumnIndex(ColRendimentosDeclarados)

	columns := append(append([]string{}, t.Columns...), ColDistribuido)
	rows := make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]any, len(row), len(row)+1)
		copy(out, row)

		var ratio any
		profit, okProfit := models.Float(row[profitIdx])
		yield, okYield := models.Float(row[yieldIdx])
		if okProfit && okYield && profit != 0 {
			ratio = 100 * yield / profit
		}
		rows[r] = append(out, ratio)
	}

	return models.NewTable(t.Name, columns, rows), nil
}

func deriveAtivosTipo(views models.TableSet) (models.Table, bool, error) {
	grouped, err := GroupBy(views[ViewAtivos], []string{ColNomeFundo, ColTipo}, Aggregate{ColValor, Sum})
	if err != nil {
		return models.Table{}, false, err
	}
	cleaned, err := Clean(grouped, ColValor)
	return cleaned, err == nil, err
}

func deriveLiquidez(views models.TableSet) (models.Table, bool, error) {
	projected, err := liquidezProjection.Apply(views[ViewComplemento])
	if err != nil {
		return models.Table{}, false, err
	}
	projected, err = CoerceNumeric(projected, ColLiquidezDisponivel)
	if err != nil {
		return models.Table{}, false, err
	}
	cleaned, err := Clean(DropAnyNulls(projected), ColLiquidezDisponivel)
	return cleaned, err == nil, err
}

func deriveDireitosValor(views models.TableSet) (models.Table, bool, error) {
	coerced, err := CoerceNumeric(views[ViewDireitos], ColValor)
	if err != nil {
		return models.Table{}, false, err
	}
	withValue, err := DropNulls(coerced, ColValor)
	if err != nil {
		return models.Table{}, false, err
	}
	projected, err := direitosProjection.Apply(withValue)
	if err != nil {
		return models.Table{}, false, err
	}
	return RoundNumeric(projected), true, nil
}

func deriveMovimentacaoImoveis(views models.TableSet) (models.Table, bool, error) {
	parsed, err := MapColumn(views[ViewImoveisHistorico], ColDataAlienacao, disposalDate)
	if err != nil {
		return models.Table{}, false, err
	}
	disposed, err := DropNulls(parsed, ColDataAlienacao)
	if err != nil {
		return models.Table{}, false, err
	}
	return RoundNumeric(disposed), true, nil
}

// disposalDate maps the "no disposal" placeholder and unparseable values to null
// and normalizes valid dates to YYYY-MM-DD
func disposalDate(v any) any {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == noDisposalDate {
		return nil
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format(exportedDateLayout)
		}
	}
	return nil
}

func deriveImoveisParaVenda(views models.TableSet) (models.Table, bool, error) {
	normalized, err := MapColumn(views[ViewImoveisHistorico], ColClasse, func(v any) any {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		return strings.ToLower(strings.TrimSpace(s))
	})
	if err != nil {
		return models.Table{}, false, err
	}

	idx := normalized.ColumnIndex(ColClasse)
	forSale := Filter(normalized, func(row []any) bool {
		s, ok := row[idx].(string)
		return ok && strings.Contains(s, propertiesForSale)
	})

	cleaned, err := Clean(forSale, ColClasse)
	return cleaned, err == nil, err
}

func deriveInformacoesQualitativas(views models.TableSet) (models.Table, bool, error) {
	projected, err := qualitativasProjection.Apply(views[ViewComplemento])
	if err != nil {
		return models.Table{}, false, err
	}
	if len(projected.Columns) == 0 {
		return models.NewTable(projected.Name, projected.Columns, nil), true, nil
	}
	return RoundNumeric(DropDuplicates(projected)), true, nil
}

func deriveCustos(views models.TableSet) (models.Table, bool, error) {
	view := views[ViewResultado]
	if !view.HasColumn(ColDespesasExercicio) {
		return models.Table{}, false, nil
	}
	projected, err := custosProjection.Apply(view)
	if err != nil {
		return models.Table{}, false, err
	}
	projected, err = CoerceNumeric(projected, ColDespesasExercicio)
	if err != nil {
		return models.Table{}, false, err
	}
	cleaned, err := Clean(projected, ColDespesasExercicio)
	return cleaned, err == nil, err
}
