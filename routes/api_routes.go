// routes/api_routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/LilVoxy/fii_analytics/ETL/load"
	"github.com/LilVoxy/fii_analytics/ETL/models"
	"github.com/LilVoxy/fii_analytics/websocket"
)

// Dependencies are the services the routes read from
type Dependencies struct {
	Store     load.AnalysisStore
	LogRepo   models.ETLLogRepository
	Years     []int
	WSManager *websocket.Manager
	Metrics   http.Handler
	PublicDir string
}

// SetupRoutes registers the API, websocket, metrics and static routes
func SetupRoutes(router *mux.Router, deps Dependencies) {
	router.Use(CORSMiddleware)

	// Live run events
	if deps.WSManager != nil {
		router.HandleFunc("/ws/runs", deps.WSManager.HandleConnections)
	}

	// Analyses
	router.HandleFunc("/api/analyses", GetCatalogHandler(deps.Years)).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/analyses/{name}/{year}", GetAnalysisHandler(deps.Store)).Methods("GET", "OPTIONS")

	// Run log
	logRepo := deps.LogRepo
	if logRepo == nil {
		logRepo = models.NoopETLLogRepository{}
	}
	router.HandleFunc("/api/runs/id/{runID}", GetRunHandler(logRepo)).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/runs/{year}", GetLastRunHandler(logRepo)).Methods("GET", "OPTIONS")

	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics).Methods("GET")
	}

	// Static dashboard
	if deps.PublicDir != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(deps.PublicDir)))
	}
}
