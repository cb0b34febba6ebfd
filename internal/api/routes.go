package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes builds the full router: the twelve /api endpoints, campaign delete,
// health and metrics.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.metricsMiddleware)

	r.HandleFunc("/health", s.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/campaigns", s.CreateCampaign).Methods("POST")
	api.HandleFunc("/campaigns", s.ListCampaigns).Methods("GET")
	api.HandleFunc("/campaigns/{id}", s.GetCampaign).Methods("GET")
	api.HandleFunc("/campaigns/{id}", s.DeleteCampaign).Methods("DELETE")
	api.HandleFunc("/campaigns/{id}/publish", s.PublishCampaign).Methods("POST")
	api.HandleFunc("/campaigns/{id}/pause", s.PauseCampaign).Methods("POST")

	api.HandleFunc("/campaigns/{id}/ad-groups", s.ListAdGroups).Methods("GET")
	api.HandleFunc("/campaigns/{id}/ad-groups", s.CreateAdGroup).Methods("POST")
	api.HandleFunc("/ad-groups/{id}", s.GetAdGroup).Methods("GET")
	api.HandleFunc("/ad-groups/{id}", s.UpdateAdGroup).Methods("PUT")
	api.HandleFunc("/ad-groups/{id}", s.DeleteAdGroup).Methods("DELETE")
	api.HandleFunc("/ad-groups/{id}/pause", s.PauseAdGroup).Methods("POST")
	api.HandleFunc("/ad-groups/{id}/enable", s.EnableAdGroup).Methods("POST")

	return r
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware records request count and latency per route template.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tmpl
			}
		}
		s.Metrics.IncrementRequests(endpoint, r.Method, strconv.Itoa(rec.status))
		s.Metrics.RecordRequestLatency(endpoint, r.Method, time.Since(start))
	})
}
