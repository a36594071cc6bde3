// routes/analysis_handlers.go
package routes

import (
	"errors"
	"log"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/LilVoxy/fii_analytics/ETL/load"
	"github.com/LilVoxy/fii_analytics/ETL/models"
)

var reAnalysisName = regexp.MustCompile(`^[a-z0-9_]+$`)

// Chart describes the bar chart drawn under a table
type Chart struct {
	X     string `json:"x"`
	Y     string `json:"y"`
	Title string `json:"title"`
}

// AnalysisResponse is the API representation of one analysis table
type AnalysisResponse struct {
	Name    string   `json:"name"`
	Year    int      `json:"year"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Chart   *Chart   `json:"chart,omitempty"`
}

// ChartFor picks the first text column as x and the first numeric column as y.
// It returns nil unless the table has at least one of each.
func ChartFor(t models.Table) *Chart {
	numeric := t.NumericColumns()
	text := t.TextColumns()
	if len(numeric) == 0 || len(text) == 0 {
		return nil
	}
	return &Chart{X: text[0], Y: numeric[0], Title: chartTitle(text[0], numeric[0])}
}

// GetCatalogHandler returns the dashboard tabs and years
func GetCatalogHandler(years []int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, CatalogResponse{Analyses: DefaultTabs, Years: years})
	}
}

// GetAnalysisHandler returns one analysis table for a year
func GetAnalysisHandler(store load.AnalysisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		name := vars["name"]

		year, err := strconv.Atoi(vars["year"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year: "+vars["year"])
			return
		}
		if !reAnalysisName.MatchString(name) {
			writeError(w, http.StatusBadRequest, "invalid analysis name: "+name)
			return
		}

		table, err := store.Load(r.Context(), name, year)
		if err != nil {
			if errors.Is(err, load.ErrNotFound) {
				writeError(w, http.StatusNotFound, NotFoundMessage(name, year))
				return
			}
			log.Printf("Error loading analysis %s/%d: %v", name, year, err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, AnalysisResponse{
			Name:    name,
			Year:    year,
			Columns: table.Columns,
			Rows:    table.Rows,
			Chart:   ChartFor(table),
		})
	}
}
