// routes/catalog.go
package routes

import (
	"fmt"
)

// AnalysisTab is one dashboard tab
type AnalysisTab struct {
	Title  string `json:"title"`
	Prefix string `json:"prefix"`
	Name   string `json:"name"`
}

// CatalogResponse lists the dashboard tabs and selectable years
type CatalogResponse struct {
	Analyses []AnalysisTab `json:"analyses"`
	Years    []int         `json:"years"`
}

const filePrefix = "analise_"

// DefaultTabs are the dashboard tabs in display order
var DefaultTabs = []AnalysisTab{
	tab("Ativos por Tipo", "ativos_tipo"),
	tab("Direitos por Valor", "direitos_valor"),
	tab("Distribuição vs Lucro", "distribuicao_vs_lucro"),
	tab("Imóveis para Venda", "imoveis_para_venda"),
	tab("Informações Qualitativas", "informacoes_qualitativas"),
	tab("Liquidez", "liquidez"),
	tab("Movimentação de Imóveis", "movimentacao_imoveis"),
	tab("Rentabilidade Média", "rentabilidade_media"),
	tab("Vacância", "vacancia"),
}

func tab(title, name string) AnalysisTab {
	return AnalysisTab{Title: title, Prefix: filePrefix + name, Name: name}
}

// NotFoundMessage is shown when an analysis file does not exist
func NotFoundMessage(name string, year int) string {
	return fmt.Sprintf("Arquivo `%s%s_%d.csv` não encontrado.", filePrefix, name, year)
}

// chartTitle labels the bar chart of y grouped by x
func chartTitle(x, y string) string {
	return fmt.Sprintf("%s por %s", y, x)
}
