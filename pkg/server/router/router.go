package router

import (
	"net/http"
	"time"

	"github.com/Avi18971911/Herald/pkg/agent"
	"github.com/Avi18971911/Herald/pkg/eventlog"
	"github.com/Avi18971911/Herald/pkg/server/handler"
	"github.com/Avi18971911/Herald/pkg/server/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Delays struct {
	Api    time.Duration
	Render time.Duration
}

func CreateRouter(
	el eventlog.EventLogger,
	starter agent.TransactionStarter,
	gatherer prometheus.Gatherer,
	delays Delays,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")

	app := r.NewRoute().Subrouter()
	app.Use(middleware.Transaction(starter, logger))
	app.Handle("/", handler.HomeHandler(el, delays.Render, logger)).Methods("GET")
	app.Handle("/api/test", handler.ApiTestGetHandler(el, delays.Api, logger)).Methods("GET")
	app.Handle("/api/test", handler.ApiTestPostHandler(el, logger)).Methods("POST")

	return r
}
