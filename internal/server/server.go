package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/logging"
	"github.com/san-kum/motiontwin/internal/optim"
	"github.com/san-kum/motiontwin/internal/physics"
	"github.com/san-kum/motiontwin/internal/planner"
)

// Planner is the part of planner.MotionPlanner the HTTP surface needs.
type Planner interface {
	Plan(ctx context.Context, from, to dynamo.Vec3) (*planner.Result, error)
	PlanPathParallel(ctx context.Context, points []dynamo.Vec3, limit int) (*planner.PathResult, error)
	Model() physics.Model
	Constraints() optim.MotionConstraints
}

// DefaultPathLimit bounds concurrent segment planning per path request.
const DefaultPathLimit = 4

type Server struct {
	planner   Planner
	log       *slog.Logger
	gatherer  prometheus.Gatherer
	pathLimit int
}

type Option func(*Server)

func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithMetrics exposes the gatherer on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

func WithPathLimit(n int) Option {
	return func(s *Server) { s.pathLimit = n }
}

// NewHandler builds the router for a planner.
func NewHandler(p Planner, opts ...Option) http.Handler {
	s := &Server{planner: p, log: logging.NewNop(), pathLimit: DefaultPathLimit}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/model", s.GetModel)
		r.Post("/plan", s.Plan)
		r.Post("/path", s.Path)
	})
	return r
}

type PlanRequest struct {
	From *dynamo.Vec3 `json:"from"`
	To   *dynamo.Vec3 `json:"to"`
}

type PathRequest struct {
	Points []dynamo.Vec3 `json:"points"`
}

type ModelResponse struct {
	Model       physics.Model           `json:"model"`
	Constraints optim.MotionConstraints `json:"constraints"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Plan handles POST /api/plan. The trace is omitted unless ?trace=true.
func (s *Server) Plan(w http.ResponseWriter, r *http.Request) {
	var body PlanRequest
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if body.From == nil || body.To == nil {
		s.fail(w, r, fmt.Errorf("%w: from and to are required", dynamo.ErrInput))
		return
	}

	res, err := s.planner.Plan(r.Context(), *body.From, *body.To)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view(res, r.URL.Query().Get("trace") == "true"))
}

// Path handles POST /api/path.
func (s *Server) Path(w http.ResponseWriter, r *http.Request) {
	var body PathRequest
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	path, err := s.planner.PlanPathParallel(r.Context(), body.Points, s.pathLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	withTrace := r.URL.Query().Get("trace") == "true"
	out := *path
	out.Segments = make([]*planner.Result, len(path.Segments))
	for i, seg := range path.Segments {
		out.Segments[i] = view(seg, withTrace)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetModel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ModelResponse{
		Model:       s.planner.Model(),
		Constraints: s.planner.Constraints(),
	})
}

// view returns a shallow copy so cached results are never modified.
func view(res *planner.Result, withTrace bool) *planner.Result {
	if withTrace {
		return res
	}
	out := *res
	out.Trace = nil
	return &out
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", dynamo.ErrInput, err)
	}
	return nil
}

// StatusFor maps a planning error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, dynamo.ErrInput), errors.Is(err, dynamo.ErrConfig):
		return http.StatusBadRequest
	case errors.Is(err, dynamo.ErrDivergence):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
