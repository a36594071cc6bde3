package transform

// Raw CVM table names, without the year marker
const (
	TableGeral                       = "inf_trimestral_fii_geral"
	TableComplemento                 = "inf_trimestral_fii_complemento"
	TableRentabilidadeEfetiva        = "inf_trimestral_fii_rentabilidade_efetiva"
	TableResultadoContabilFinanceiro = "inf_trimestral_fii_resultado_contabil_financeiro"
	TableImovel                      = "inf_trimestral_fii_imovel"
	TableImovelDesempenho            = "inf_trimestral_fii_imovel_desempenho"
	TableImovelRendaInquilino        = "inf_trimestral_fii_imovel_renda_acabado_inquilino"
	TableImovelRendaContrato         = "inf_trimestral_fii_imovel_renda_acabado_contrato"
	TableAquisicaoImovel             = "inf_trimestral_fii_aquisicao_imovel"
	TableAlienacaoImovel             = "inf_trimestral_fii_alienacao_imovel"
	TableTerreno                     = "inf_trimestral_fii_terreno"
	TableAquisicaoTerreno            = "inf_trimestral_fii_aquisicao_terreno"
	TableAlienacaoTerreno            = "inf_trimestral_fii_alienacao_terreno"
	TableAtivo                       = "inf_trimestral_fii_ativo"
	TableAtivoGarantiaRentabilidade  = "inf_trimestral_fii_ativo_garantia_rentabilidade"
	TableDireito                     = "inf_trimestral_fii_direito"
)

// Merged view names
const (
	ViewRentab            = "rentab_merge"
	ViewImovel            = "imovel_merge"
	ViewResultado         = "resultado_merge"
	ViewAtivos            = "ativos_merge"
	ViewComplemento       = "complemento_merge"
	ViewImoveisHistorico  = "imoveis_historico"
	ViewTerrenosHistorico = "terrenos_historico"
	ViewDireitos          = "direitos_merge"
	ViewContratos         = "contratos_merge"
)

// Canonical key columns
const (
	ColCNPJ           = "CNPJ_Fundo"
	ColDataReferencia = "Data_Referencia"
	ColVersao         = "Versao"
	ColNomeAtivo      = "Nome_Ativo"
	ColNomeImovel     = "Nome_Imovel"
	ColEndereco       = "Endereco"
)

var disclosureKey = []string{ColCNPJ, ColDataReferencia, ColVersao}

func withKey(extra ...string) []string {
	keys := make([]string, 0, len(disclosureKey)+len(extra))
	keys = append(keys, disclosureKey...)
	return append(keys, extra...)
}

// DefaultRecipes returns the merge recipes of the quarterly report
func DefaultRecipes() []Recipe {
	return []Recipe{
		{
			Name:  ViewRentab,
			Left:  TableRentabilidadeEfetiva,
			Steps: []JoinStep{On(TableGeral, disclosureKey...)},
		},
		{
			Name: ViewImovel,
			Left: TableImovel,
			Steps: []JoinStep{
				On(TableImovelDesempenho, withKey("Classe")...),
				On(TableImovelRendaInquilino, withKey(ColNomeImovel)...),
			},
		},
		{
			Name:  ViewResultado,
			Left:  TableResultadoContabilFinanceiro,
			Steps: []JoinStep{On(TableGeral, disclosureKey...)},
		},
		{
			Name: ViewAtivos,
			Left: TableAtivo,
			Steps: []JoinStep{
				On(TableAtivoGarantiaRentabilidade, withKey(ColNomeAtivo)...),
				On(TableGeral, disclosureKey...),
			},
		},
		{
			Name:  ViewComplemento,
			Left:  TableGeral,
			Steps: []JoinStep{On(TableComplemento, disclosureKey...)},
		},
		{
			Name: ViewImoveisHistorico,
			Left: TableImovel,
			Steps: []JoinStep{
				On(TableAquisicaoImovel, ColCNPJ, ColNomeImovel),
				On(TableAlienacaoImovel, ColCNPJ, ColNomeImovel),
			},
		},
		{
			Name: ViewTerrenosHistorico,
			Left: TableTerreno,
			Steps: []JoinStep{
				On(TableAquisicaoTerreno, ColCNPJ, ColEndereco),
				On(TableAlienacaoTerreno, ColCNPJ, ColEndereco),
			},
		},
		{
			Name:  ViewDireitos,
			Left:  TableGeral,
			Steps: []JoinStep{On(TableDireito, disclosureKey...)},
		},
		{
			Name: ViewContratos,
			Left: TableImovel,
			Steps: []JoinStep{{
				Right:     TableImovelRendaContrato,
				LeftKeys:  []string{ColCNPJ, ColNomeImovel},
				RightKeys: []string{ColCNPJ, "Nome_Endereco_Imovel"},
			}},
		},
	}
}
