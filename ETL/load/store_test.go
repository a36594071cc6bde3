package load

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	_ "modernc.org/sqlite"

	"github.com/LilVoxy/fii_analytics/ETL/metrics"
	"github.com/LilVoxy/fii_analytics/ETL/models"
	"github.com/LilVoxy/fii_analytics/ETL/utils"
)

func rentabilidade() models.Table {
	return models.NewTable("rentabilidade_media",
		[]string{"Nome_Fundo", "Percentual_Rentabilidade_Efetiva_Mes"},
		[][]any{{"Fundo A", 2.0}, {"Fundo B", 0.75}})
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "analise_rentabilidade_media_2023.csv", FileName("rentabilidade_media", 2023))
}

func TestNotFoundErrorMatchesSentinel(t *testing.T) {
	var err error = &NotFoundError{Name: "vacancia", Year: 2017}

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "analise_vacancia_2017.csv")
}

func TestCSVStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "analises")
	store := NewCSVStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "rentabilidade_media", 2023, rentabilidade()))

	raw, err := os.ReadFile(filepath.Join(dir, "analise_rentabilidade_media_2023.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Nome_Fundo,Percentual_Rentabilidade_Efetiva_Mes\nFundo A,2.0\nFundo B,0.75\n", string(raw))

	table, err := store.Load(ctx, "rentabilidade_media", 2023)
	require.NoError(t, err)
	assert.Equal(t, rentabilidade(), table)

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCSVStoreOverwrites(t *testing.T) {
	store := NewCSVStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "liquidez", 2020, rentabilidade()))
	smaller := models.NewTable("liquidez", []string{"x"}, [][]any{{1.0}})
	require.NoError(t, store.Save(ctx, "liquidez", 2020, smaller))

	table, err := store.Load(ctx, "liquidez", 2020)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{1.0}}, table.Rows)
}

func TestCSVStoreReinfersColumnKinds(t *testing.T) {
	store := NewCSVStore(t.TempDir())
	ctx := context.Background()

	codes := models.NewTable("direitos_valor", []string{"Codigo", "Nome"}, [][]any{{"123", "A"}, {"", "B"}})
	require.NoError(t, store.Save(ctx, "direitos_valor", 2022, codes))

	table, err := store.Load(ctx, "direitos_valor", 2022)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{123.0, "A"}, {nil, "B"}}, table.Rows)
}

func TestCSVStoreMissingAnalysis(t *testing.T) {
	store := NewCSVStore(t.TempDir())

	_, err := store.Load(context.Background(), "vacancia", 2017)

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "vacancia", notFound.Name)
	assert.Equal(t, 2017, notFound.Year)
}

type SQLStoreSuite struct {
	suite.Suite
	db    *sql.DB
	store *SQLStore
}

func TestSQLStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLStoreSuite))
}

func (s *SQLStoreSuite) SetupTest() {
	db, err := sql.Open("sqlite", filepath.Join(s.T().TempDir(), "mirror.db"))
	s.Require().NoError(err)
	db.SetMaxOpenConns(1)

	s.db = db
	s.store = NewSQLStore(db, "sqlite")
	s.Require().NoError(s.store.CreateSnapshotTable(context.Background()))
}

func (s *SQLStoreSuite) TearDownTest() {
	s.db.Close()
}

func (s *SQLStoreSuite) TestSaveReplacesSnapshot() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, "rentabilidade_media", 2023, rentabilidade()))
	s.Require().NoError(s.store.Save(ctx, "rentabilidade_media", 2023, rentabilidade()))

	var count, rows int
	s.Require().NoError(s.db.QueryRow(
		`SELECT COUNT(*), MAX(row_count) FROM analysis_snapshot WHERE name = ? AND year = ?`,
		"rentabilidade_media", 2023,
	).Scan(&count, &rows))
	s.Equal(1, count)
	s.Equal(2, rows)

	table, err := s.store.Load(ctx, "rentabilidade_media", 2023)
	s.Require().NoError(err)
	s.Equal(rentabilidade(), table)
}

func (s *SQLStoreSuite) TestLoadMissingSnapshot() {
	_, err := s.store.Load(context.Background(), "custos", 2016)
	s.True(errors.Is(err, ErrNotFound))
}

func (s *SQLStoreSuite) TestUnsupportedDriver() {
	err := NewSQLStore(s.db, "oracle").CreateSnapshotTable(context.Background())
	s.Error(err)
}

type failingStore struct {
	saves int
}

func (f *failingStore) Save(context.Context, string, int, models.Table) error {
	f.saves++
	return errors.New("mirror down")
}

func (f *failingStore) Load(ctx context.Context, name string, year int) (models.Table, error) {
	return models.Table{}, &NotFoundError{Name: name, Year: year}
}

func TestLoadManagerIgnoresMirrorFailures(t *testing.T) {
	dir := t.TempDir()
	mirror := &failingStore{}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	manager := NewLoadManager(NewCSVStore(dir), mirror, utils.NewWriterLogger(io.Discard, false), m)

	analyses := models.TableSet{
		"rentabilidade_media": rentabilidade(),
		"liquidez":            models.NewTable("liquidez", []string{"x"}, nil),
	}

	written, err := manager.Load(context.Background(), 2023, analyses)
	require.NoError(t, err)

	assert.Equal(t, 2, written)
	assert.Equal(t, 2, mirror.saves)
	assert.FileExists(t, filepath.Join(dir, "analise_liquidez_2023.csv"))
	assert.FileExists(t, filepath.Join(dir, "analise_rentabilidade_media_2023.csv"))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnalysisRows.WithLabelValues("rentabilidade_media", "2023")))
}

func TestLoadManagerStopsOnPrimaryFailure(t *testing.T) {
	primary := &failingStore{}
	manager := NewLoadManager(primary, nil, utils.NewWriterLogger(io.Discard, false), nil)

	written, err := manager.Load(context.Background(), 2023, models.TableSet{
		"a": models.NewTable("a", nil, nil),
		"b": models.NewTable("b", nil, nil),
	})

	assert.Error(t, err)
	assert.Equal(t, 0, written)
	assert.Equal(t, 1, primary.saves)
}
