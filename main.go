package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"go.uber.org/zap"
)

// The host binary serves the WebAssembly client and forwards /api/* to the
// backend so the browser only ever talks same-origin.
func main() {
	configPath := "config.json"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	loadConfig(configPath)

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	proxy, err := newAPIProxy(cfg.APIBase, logger)
	if err != nil {
		logger.Fatal("bad api_base", zap.String("api_base", cfg.APIBase), zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", proxy)
	mux.Handle("/", &app.Handler{
		Name:        "Family Tree",
		ShortName:   "FamilyTree",
		Description: "Family tree management",
		Styles:      []string{"/web/app.css"},
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("host running",
		zap.String("addr", addr),
		zap.String("api_base", cfg.APIBase),
	)
	if err := http.ListenAndServe(addr, requestLog(logger, mux)); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
