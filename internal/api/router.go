// Package api exposes the dashboard views and persisted filter state over a
// small JSON HTTP API.
package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pable/rlstats/internal/dashboard"
	"github.com/pable/rlstats/internal/prefs"
)

// Server serves views built from src with state kept in store.
type Server struct {
	src   dashboard.Source
	store prefs.Store
	log   logrus.FieldLogger
}

// NewServer wires the API dependencies.
func NewServer(src dashboard.Source, store prefs.Store, log logrus.FieldLogger) *Server {
	return &Server{src: src, store: store, log: log}
}

// NewRouter returns the API routes.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.healthHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/views", s.listViews).Methods("GET")
	api.HandleFunc("/views/{view}", s.getView).Methods("GET")
	api.HandleFunc("/state/{view}", s.getState).Methods("GET")
	api.HandleFunc("/state/{view}", s.putState).Methods("PUT")

	return r
}

// Handler returns the routes wrapped with panic recovery and CORS.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.NewRouter()
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "PUT", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	return handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.log}))(h)
}

type recoveryLogger struct {
	log logrus.FieldLogger
}

func (l recoveryLogger) Println(v ...interface{}) { l.log.Error(v...) }
