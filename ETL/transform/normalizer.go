package transform

import (
	"github.com/LilVoxy/fii_analytics/ETL/models"
)

// columnAliases maps the column names used by some CVM file layouts to the
// canonical names used by the merge recipes
var columnAliases = map[string]string{
	"CNPJ_Fundo_Classe":      "CNPJ_Fundo",
	"Data_Referencia_Classe": "Data_Referencia",
	"Versao_Classe":          "Versao",
	"CNPJ_Classe":            "CNPJ_Fundo",
	"CNPJ":                   "CNPJ_Fundo",
	"Data":                   "Data_Referencia",
	"Nome_Fundo_Classe":      "Nome_Fundo",
}

// canonicalColumn returns the canonical name of an alias column
func canonicalColumn(column string) (string, bool) {
	canonical, ok := columnAliases[column]
	return canonical, ok
}

// SkippedRename records an alias column that was left as is because its
// canonical name is already taken in the same table
type SkippedRename struct {
	Table     string
	Alias     string
	Canonical string
}

// NormalizeColumns returns a new set where the alias columns of every table
// carry their canonical names. Columns are visited left to right; an alias is
// not renamed when its canonical name already exists or was produced by an
// earlier alias of the same table.
func NormalizeColumns(tables models.TableSet) (models.TableSet, []SkippedRename) {
	out := make(models.TableSet, len(tables))
	var skipped []SkippedRename

	for _, name := range tables.Names() {
		table := tables[name]

		taken := make(map[string]bool, len(table.Columns))
		for _, c := range table.Columns {
			taken[c] = true
		}

		columns := make([]string, len(table.Columns))
		renamed := false
		for i, c := range table.Columns {
			columns[i] = c
			canonical, ok := canonicalColumn(c)
			if !ok {
				continue
			}
			if taken[canonical] {
				skipped = append(skipped, SkippedRename{Table: name, Alias: c, Canonical: canonical})
				continue
			}
			columns[i] = canonical
			taken[canonical] = true
			renamed = true
		}

		if !renamed {
			out[name] = table
			continue
		}
		out[name] = models.NewTable(table.Name, columns, table.Rows)
	}

	return out, skipped
}
