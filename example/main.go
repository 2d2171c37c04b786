// Package main demonstrates usage of the scg-respond package.
package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/next-trace/scg-respond/async"
	"github.com/next-trace/scg-respond/config"
	apiError "github.com/next-trace/scg-respond/error"
	"github.com/next-trace/scg-respond/respond"
	"github.com/next-trace/scg-respond/translate"
)

var errNoRows = errors.New("sql: no rows in result set")

type customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func findCustomer(id string) (any, error) {
	switch id {
	case "42":
		return customer{ID: "42", Name: "Ada"}, nil
	case "":
		return nil, apiError.Validation("id is required", apiError.WithPayload(map[string]any{"field": "id"}))
	case "gone":
		return nil, errNoRows
	case "panic":
		panic("customer cache corrupted")
	default:
		return nil, nil
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	settings, err := config.LoadFromEnv(".env")
	if err != nil {
		logger.Error("load settings", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cfg := respond.Config{
		Logger:      logger,
		Translators: []translate.Translator{translate.Is(errNoRows, apiError.NotFoundKind, "customer not found")},
	}
	settings.Apply(&cfg)

	r := respond.New(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /customers/{id}", func(w http.ResponseWriter, req *http.Request) {
		fn, _ := respond.FromContext(req.Context())
		id := req.PathValue("id")
		_ = fn(async.Go(func() (any, error) { return findCustomer(id) }))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           r.Middleware(mux),
		ReadHeaderTimeout: 2 * time.Second,
	}

	logger.Info("listening", slog.String("addr", srv.Addr), slog.String("settings", settings.String()))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("serve", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
