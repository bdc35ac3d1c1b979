package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pable/rlstats/internal/dashboard"
	"github.com/pable/rlstats/internal/filter"
	"github.com/pable/rlstats/internal/prefs"
)

// expandParam names the buckets to drill into. It is not part of the
// persisted state.
const expandParam = "expand"

type viewInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Query string `json:"default_query"`
}

type stateResponse struct {
	View  string       `json:"view"`
	Query string       `json:"query"`
	Keys  filter.Query `json:"keys"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listViews(w http.ResponseWriter, r *http.Request) {
	out := make([]viewInfo, 0, len(dashboard.Views))
	for _, v := range dashboard.Views {
		out = append(out, viewInfo{Name: v.Name, Title: v.Title, Query: v.Codec.Encode(v.Codec.Default()).String()})
	}
	respondJSON(w, http.StatusOK, out)
}

// getView builds a view. Unless the request carries at least one state key
// the persisted state is used.
func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}

	vals := r.URL.Query()
	expanded := dashboard.Expanded{}
	for _, raw := range vals[expandParam] {
		k, err := v.ExpandKey(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid expand key", err)
			return
		}
		expanded[k] = true
	}
	vals.Del(expandParam)

	q := filter.FromValues(vals)
	var state filter.State
	if !filter.HasStateKeys(q) {
		st, err := prefs.Restore(r.Context(), s.store, v)
		if err != nil {
			s.log.WithError(err).WithField("view", v.Name).Warn("restore state, using defaults")
		}
		state = st
	} else {
		state = v.Codec.Decode(q)
	}

	games, err := s.src.Games(r.Context(), state.Request())
	if err != nil {
		s.log.WithError(err).WithField("view", v.Name).Error("load games")
		respondError(w, http.StatusBadGateway, "failed to load games", err)
		return
	}
	tbl := v.Build(games, state, expanded)
	s.log.WithFields(logrus.Fields{"view": v.Name, "query": tbl.Query, "games": tbl.Total}).Debug("built view")
	respondJSON(w, http.StatusOK, tbl)
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}
	st, err := prefs.Restore(r.Context(), s.store, v)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load state", err)
		return
	}
	respondJSON(w, http.StatusOK, newStateResponse(v, st))
}

// putState accepts either a flat JSON object of query keys or
// {"query": "ts=3&sort=pbb"}. The stored form is always normalised.
func (s *Server) putState(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}

	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "body must be a JSON object of strings", err)
		return
	}
	q := filter.Query(body)
	if raw, ok := body["query"]; ok && len(body) == 1 {
		q = filter.ParseQuery(raw)
	}

	st := v.Codec.Decode(q)
	if err := prefs.Persist(r.Context(), s.store, v, st); err != nil {
		s.log.WithError(err).WithField("view", v.Name).Error("save state")
		respondError(w, http.StatusInternalServerError, "failed to save state", err)
		return
	}
	respondJSON(w, http.StatusOK, newStateResponse(v, st))
}

func (s *Server) lookupView(w http.ResponseWriter, r *http.Request) (dashboard.View, bool) {
	v, err := dashboard.Lookup(mux.Vars(r)["view"])
	if err != nil {
		respondError(w, http.StatusNotFound, "unknown view", err)
		return dashboard.View{}, false
	}
	return v, true
}

func newStateResponse(v dashboard.View, st filter.State) stateResponse {
	q := v.Codec.Encode(st)
	return stateResponse{View: v.Name, Query: q.String(), Keys: q}
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
