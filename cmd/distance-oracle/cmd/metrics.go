package cmd

import (
	"errors"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paw-chain/distance/oracle"
)

// StartMonitoringServer serves /metrics and the health routes in the
// background. Errors after startup are logged, not fatal.
func StartMonitoringServer(addr string, checker *oracle.HealthChecker, logger log.Logger) *http.Server {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	checker.RegisterRoutes(router)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("monitoring server error", "error", err)
		}
	}()
	return server
}
