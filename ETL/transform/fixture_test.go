package transform

import (
	"github.com/LilVoxy/fii_analytics/ETL/models"
)

const (
	cnpjA = "11.111.111/0001-11"
	cnpjB = "22.222.222/0001-22"
	refQ1 = "2023-03-31"
)

// yearFixture returns a small but complete set of raw tables for one year.
// Fundo A has data in every table, Fundo B only in a few of them.
func yearFixture(withCustos bool) models.TableSet {
	resultadoCols := []string{ColCNPJ, ColDataReferencia, ColVersao, ColLucroContabil, ColRendimentosDeclarados}
	resultadoRows := [][]any{
		{cnpjA, refQ1, 1.0, 100.0, 95.0},
		{cnpjB, refQ1, 1.0, 0.0, 10.0},
	}
	if withCustos {
		resultadoCols = append(resultadoCols, ColDespesasExercicio)
		resultadoRows[0] = append(resultadoRows[0], 12.345)
		resultadoRows[1] = append(resultadoRows[1], nil)
	}

	tables := []models.Table{
		// geral carries the alias layout used by newer files
		models.NewTable(TableGeral,
			[]string{"CNPJ_Fundo_Classe", ColDataReferencia, ColVersao, ColNomeFundo},
			[][]any{
				{cnpjA, refQ1, 1.0, "Fundo A"},
				{cnpjB, refQ1, 1.0, "Fundo B"},
			}),
		models.NewTable(TableComplemento,
			[]string{ColCNPJ, ColDataReferencia, ColVersao, ColLiquidezDisponivel, ColPublicoAlvo, ColMercado},
			[][]any{
				{cnpjA, refQ1, 1.0, 1234.567, "Investidores em geral", "Bolsa"},
				{cnpjB, refQ1, 1.0, nil, "Investidores qualificados", "Balcão"},
			}),
		models.NewTable(TableRentabilidadeEfetiva,
			[]string{ColCNPJ, ColDataReferencia, ColVersao, ColRentabilidadeMes},
			[][]any{
				{cnpjA, refQ1, 1.0, 1.0},
				{cnpjA, refQ1, 1.0, 3.0},
			}),
		models.NewTable(TableResultadoContabilFinanceiro, resultadoCols, resultadoRows),
		models.NewTable(TableImovel,
			[]string{ColCNPJ, ColDataReferencia, ColVersao, ColNomeImovel, ColClasse},
			[][]any{
				{cnpjA, refQ1, 1.0, "Galpão X", "Imóveis para renda acabados"},
				{cnpjA, refQ1, 1.0, "Torre Y", " Imóveis para Venda - acabados "},
			}),
		models.NewTable(TableImovelDesempenho,
			[]string{ColCNPJ, ColDataReferencia, ColVersao, ColClasse, ColVacancia, ColInadimplencia},
			[][]any{
				{cnpjA, refQ1, 1.0, "Imóveis para renda acabados", 0.105, 0.0},
			}),
		models.NewTable(TableImovelRendaInquilino,
			[]string{ColCNPJ, ColDataReferencia, ColVersao, ColNomeImovel, "Percentual_Receitas_Inquilino"},
			[][]any{
				{cnpjA, refQ1, 1.0, "Galpão X", 0.5},
			}),
		models.NewTable(TableImovelRendaContrato,
			[]string{ColCNPJ, "Nome_Endereco_Imovel", "Percentual_Receita_Contrato"},
			[][]any{
				{cnpjA, "Galpão X", 0.25},
			}),
		models.NewTable(TableAquisicaoImovel,
			[]string{ColCNPJ, ColNomeImovel, "Data_Aquisicao"},
			[][]any{
				{cnpjA, "Galpão X", "2019-01-10"},
				{cnpjA, "Torre Y", "2020-06-30"},
			}),
		models.NewTable(TableAlienacaoImovel,
			[]string{ColCNPJ, ColNomeImovel, ColDataAlienacao},
			[][]any{
				{cnpjA, "Galpão X", "1899-12-31"},
				{cnpjA, "Torre Y", "2023-05-01"},
			}),
		models.NewTable(TableTerreno,
			[]string{ColCNPJ, ColEndereco},
			[][]any{{cnpjB, "Rua A, 1"}}),
		models.NewTable(TableAquisicaoTerreno,
			[]string{ColCNPJ, ColEndereco, "Area"},
			[][]any{{cnpjB, "Rua A, 1", 500.0}}),
		models.NewTable(TableAlienacaoTerreno,
			[]string{ColCNPJ, ColEndereco, "Valor_Venda"},
			[][]any{}),
		models.NewTable(TableAtivo,
			[]string{ColCNPJ, ColDataReferencia, ColVersao, ColNomeAtivo, ColTipo, ColValor},
			[][]any{
				{cnpjA, refQ1, 1.0, "CRI 1", "CRI", 100.0},
				{cnpjA, refQ1, 1.0, "CRI 2", "CRI", 50.0},
				{cnpjA, refQ1, 1.0, "LCI 1", "LCI", 25.125},
			}),
		models.NewTable(TableAtivoGarantiaRentabilidade,
			[]string{ColCNPJ, ColDataReferencia, ColVersao, ColNomeAtivo, "Percentual_Garantido"},
			[][]any{}),
		models.NewTable(TableDireito,
			[]string{ColCNPJ, ColDataReferencia, ColVersao, ColNomeAtivo, ColValor},
			[][]any{
				{cnpjA, refQ1, 1.0, "Direito 1", 10.004},
			}),
	}

	set := make(models.TableSet, len(tables))
	for _, t := range tables {
		set[t.Name] = t
	}
	return set
}
