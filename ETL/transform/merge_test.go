package transform

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LilVoxy/fii_analytics/ETL/models"
	"github.com/LilVoxy/fii_analytics/ETL/utils"
)

func discardLogger() *utils.ETLLogger {
	return utils.NewWriterLogger(io.Discard, false)
}

func TestLeftJoinSuffixesOverlappingColumns(t *testing.T) {
	left := models.NewTable("l", []string{"k", "v"}, [][]any{{1.0, "a"}, {2.0, "b"}})
	right := models.NewTable("r", []string{"k", "v"}, [][]any{{1.0, "x"}})

	joined, err := LeftJoin(left, right, []string{"k"}, []string{"k"})
	require.NoError(t, err)

	assert.Equal(t, []string{"k", "v_x", "v_y"}, joined.Columns)
	assert.Equal(t, [][]any{{1.0, "a", "x"}, {2.0, "b", nil}}, joined.Rows)
}

func TestLeftJoinKeepsDifferentlyNamedRightKeys(t *testing.T) {
	left := models.NewTable("l", []string{"cnpj", "nome"}, [][]any{{"1", "Galpão"}})
	right := models.NewTable("r", []string{"cnpj", "endereco", "receita"}, [][]any{
		{"1", "Galpão", 10.0},
		{"1", "Loja", 20.0},
	})

	joined, err := LeftJoin(left, right, []string{"cnpj", "nome"}, []string{"cnpj", "endereco"})
	require.NoError(t, err)

	assert.Equal(t, []string{"cnpj", "nome", "endereco", "receita"}, joined.Columns)
	assert.Equal(t, [][]any{{"1", "Galpão", "Galpão", 10.0}}, joined.Rows)
}

func TestLeftJoinEmitsOneRowPerMatch(t *testing.T) {
	left := models.NewTable("l", []string{"k"}, [][]any{{"a"}, {"b"}})
	right := models.NewTable("r", []string{"k", "n"}, [][]any{
		{"a", 1.0},
		{"c", 9.0},
		{"a", 2.0},
	})

	joined, err := LeftJoin(left, right, []string{"k"}, []string{"k"})
	require.NoError(t, err)

	assert.Equal(t, [][]any{{"a", 1.0}, {"a", 2.0}, {"b", nil}}, joined.Rows)
	assert.GreaterOrEqual(t, joined.NumRows(), left.NumRows())
}

func TestLeftJoinNullKeysNeverMatch(t *testing.T) {
	left := models.NewTable("l", []string{"k", "d"}, [][]any{{nil, "2023"}, {"a", nil}})
	right := models.NewTable("r", []string{"k", "d", "n"}, [][]any{
		{nil, "2023", 1.0},
		{"a", nil, 2.0},
	})

	joined, err := LeftJoin(left, right, []string{"k", "d"}, []string{"k", "d"})
	require.NoError(t, err)

	assert.Equal(t, [][]any{{nil, "2023", nil}, {"a", nil, nil}}, joined.Rows)
}

func TestLeftJoinMatchesNumericAndTextKeys(t *testing.T) {
	left := models.NewTable("l", []string{"versao"}, [][]any{{1.0}})
	right := models.NewTable("r", []string{"versao", "n"}, [][]any{{"1", "ok"}})

	joined, err := LeftJoin(left, right, []string{"versao"}, []string{"versao"})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{1.0, "ok"}}, joined.Rows)
}

func TestLeftJoinErrors(t *testing.T) {
	t.Run("missing key column", func(t *testing.T) {
		left := models.NewTable("l", []string{"k"}, nil)
		right := models.NewTable("r", []string{"other"}, nil)

		_, err := LeftJoin(left, right, []string{"k"}, []string{"k"})
		var missing *MissingColumnError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "r", missing.Table)
		assert.Equal(t, "k", missing.Column)
	})

	t.Run("suffix collides with existing column", func(t *testing.T) {
		left := models.NewTable("l", []string{"k", "v", "v_x"}, nil)
		right := models.NewTable("r", []string{"k", "v"}, nil)

		_, err := LeftJoin(left, right, []string{"k"}, []string{"k"})
		var dup *DuplicateColumnError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "v_x", dup.Column)
	})

	t.Run("mismatched key lists", func(t *testing.T) {
		left := models.NewTable("l", []string{"k"}, nil)
		_, err := LeftJoin(left, left, []string{"k"}, nil)
		assert.Error(t, err)
	})
}

func TestBuildViewChainsSteps(t *testing.T) {
	tables := models.TableSet{
		"a": models.NewTable("a", []string{"k", "x"}, [][]any{{"1", 1.0}}),
		"b": models.NewTable("b", []string{"k", "y"}, [][]any{{"1", 2.0}}),
		"c": models.NewTable("c", []string{"k", "z"}, [][]any{{"1", 3.0}}),
	}
	recipe := Recipe{Name: "abc", Left: "a", Steps: []JoinStep{On("b", "k"), On("c", "k")}}

	view, err := BuildView(2023, recipe, tables)
	require.NoError(t, err)

	assert.Equal(t, "abc", view.Name)
	assert.Equal(t, []string{"k", "x", "y", "z"}, view.Columns)
	assert.Equal(t, [][]any{{"1", 1.0, 2.0, 3.0}}, view.Rows)
}

func TestBuildViewMissingTable(t *testing.T) {
	tables := models.TableSet{"a": models.NewTable("a", []string{"k"}, nil)}
	recipe := Recipe{Name: "ab", Left: "a", Steps: []JoinStep{On("b", "k")}}

	_, err := BuildView(2019, recipe, tables)

	var missing *MissingTableError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 2019, missing.Year)
	assert.Equal(t, "ab", missing.Recipe)
	assert.Equal(t, "b", missing.Table)
}

func TestMergeBuildsEveryDefaultView(t *testing.T) {
	engine := NewMergeEngine(DefaultRecipes(), discardLogger())
	normalized, _ := NormalizeColumns(yearFixture(false))

	views, err := engine.Merge(2023, normalized)
	require.NoError(t, err)

	assert.Equal(t, []string{
		ViewAtivos, ViewComplemento, ViewContratos, ViewDireitos, ViewImovel,
		ViewImoveisHistorico, ViewRentab, ViewResultado, ViewTerrenosHistorico,
	}, views.Names())

	contratos := views[ViewContratos]
	assert.True(t, contratos.HasColumn("Nome_Endereco_Imovel"))
	assert.Equal(t, 2, contratos.NumRows())

	terrenos := views[ViewTerrenosHistorico]
	assert.Equal(t, []string{ColCNPJ, ColEndereco, "Area", "Valor_Venda"}, terrenos.Columns)
}
