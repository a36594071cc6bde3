// routes/run_handlers.go
package routes

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/LilVoxy/fii_analytics/ETL/models"
)

// GetLastRunHandler returns the latest run log entry of a year
func GetLastRunHandler(repo models.ETLLogRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		yearStr := mux.Vars(r)["year"]
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year: "+yearStr)
			return
		}

		entry, err := repo.GetLastRun(year)
		if err != nil {
			log.Printf("Error reading run log for %d: %v", year, err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if entry == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no run recorded for %d", year))
			return
		}

		writeJSON(w, http.StatusOK, entry)
	}
}

// GetRunHandler returns every year entry of one run
func GetRunHandler(repo models.ETLLogRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := mux.Vars(r)["runID"]

		entries, err := repo.GetRunStats(runID)
		if err != nil {
			log.Printf("Error reading run %s: %v", runID, err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if len(entries) == 0 {
			writeError(w, http.StatusNotFound, fmt.Sprintf("run %s not found", runID))
			return
		}

		writeJSON(w, http.StatusOK, entries)
	}
}
