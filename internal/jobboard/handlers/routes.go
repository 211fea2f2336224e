package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gartstein/jobboard/internal/jobboard/auth"
	"github.com/gartstein/jobboard/internal/jobboard/metrics"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// route binds a method and path pattern to a handler. An empty role marks
// a public route.
type route struct {
	method  string
	pattern string
	role    models.Role
	handler runtime.HandlerFunc
}

func (h *JobHandler) routes() []route {
	return []route{
		{http.MethodGet, "/jobs", "", h.ListJobs},
		{http.MethodGet, "/jobs/company", models.RoleCompany, h.ListCompanyJobs},
		{http.MethodPost, "/jobs", models.RoleCompany, h.CreateJob},
		{http.MethodPut, "/jobs/{id}", models.RoleCompany, h.UpdateJob},
		{http.MethodDelete, "/jobs/{id}", models.RoleCompany, h.DeleteJob},
		{http.MethodGet, "/jobs/{id}/applications", models.RoleCompany, h.ListJobApplications},
		{http.MethodPost, "/applications/apply", models.RoleStudent, h.Apply},
		{http.MethodGet, "/applications/my", models.RoleStudent, h.ListMyApplications},
	}
}

// RegisterRoutes mounts the job board routes, /metrics and /healthz on the
// HTTP mux. Protected routes pass through the authenticator before the
// handler runs; every route is instrumented.
func (s *Server) RegisterRoutes(h *JobHandler, authenticator *auth.Authenticator, m *metrics.Metrics, db Pinger) error {
	for _, rt := range h.routes() {
		handler := rt.handler
		if rt.role != "" {
			handler = authenticator.Require(rt.role, handler)
		}
		if err := s.mux.HandlePath(rt.method, rt.pattern, instrument(m, rt.pattern, handler)); err != nil {
			return err
		}
	}

	if err := s.mux.HandlePath(http.MethodGet, "/metrics", fromHTTPHandler(m.Handler())); err != nil {
		return err
	}
	return s.mux.HandlePath(http.MethodGet, "/healthz", instrument(m, "/healthz", healthz(db, s.logger)))
}

func instrument(m *metrics.Metrics, name string, next runtime.HandlerFunc) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		m.Instrument(name, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next(w, r, pathParams)
		})).ServeHTTP(w, r)
	}
}

func fromHTTPHandler(h http.Handler) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		h.ServeHTTP(w, r)
	}
}

func healthz(db Pinger, logger *zap.Logger) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, messageResponse{Message: "database unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
	}
}
