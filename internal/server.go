package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"connectrpc.com/grpchealth"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/config"
	"github.com/kazz187/labelguild/internal/event"
	"github.com/kazz187/labelguild/internal/expiration"
	"github.com/kazz187/labelguild/internal/lifecycle"
	"github.com/kazz187/labelguild/internal/project"
	"github.com/kazz187/labelguild/internal/pushnotification"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/clog"
)

// Pinger is a backing service the readiness check depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	server                 *http.Server
	env                    *config.Env
	projects               project.Repository
	taskServer             *lifecycle.Server
	eventServer            *event.Server
	pushNotificationServer *pushnotification.Server
	pingers                []Pinger
}

func NewServer(
	env *config.Env,
	projects project.Repository,
	taskServer *lifecycle.Server,
	eventServer *event.Server,
	pushNotificationServer *pushnotification.Server,
	pingers ...Pinger,
) *Server {
	return &Server{
		env:                    env,
		projects:               projects,
		taskServer:             taskServer,
		eventServer:            eventServer,
		pushNotificationServer: pushNotificationServer,
		pingers:                pingers,
	}
}

// Handler builds the complete HTTP handler: connect services, the /api
// routes and health checks behind the API key check.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(
			clog.SlogChiMiddleware(),
			cerr.NewConvertConnectErrorChiMiddleware(),
		)
		r.Get("/projects", s.listProjects)
		r.Get("/projects/{projectID}", s.getProject)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
		})
	})

	mux := http.NewServeMux()

	mux.Handle("/health", &HealthChecker{pingers: s.pingers})
	mux.Handle("/api/", r)
	mux.Handle(grpchealth.NewHandler(grpchealth.NewStaticChecker(
		apiv1.TaskServiceName,
		apiv1.EventServiceName,
		apiv1.PushNotificationServiceName,
	)))

	handlerOpts := connect.WithInterceptors(s.interceptors()...)

	mux.Handle(apiv1.NewTaskServiceHandler(s.taskServer, handlerOpts))
	mux.Handle(apiv1.NewEventServiceHandler(s.eventServer, handlerOpts))
	mux.Handle(apiv1.NewPushNotificationServiceHandler(s.pushNotificationServer, handlerOpts))

	return h2c.NewHandler(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.apiKeyMiddleware(mux)), &http2.Server{})
}

// ListenAndServe starts the HTTP server. ctx becomes the base context of
// every request, so cancelling it also ends open event streams.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// HealthChecker answers 200 when every backing service responds.
type HealthChecker struct {
	pingers []Pinger
}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, p := range hc.pingers {
		if err := p.Ping(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) interceptors() []connect.Interceptor {
	return []connect.Interceptor{
		clog.NewSlogConnectInterceptor(clog.WithHeaderAttribute(apiv1.WorkerHeader, clog.WorkerIDAttributeKey)),
		cerr.NewConvertConnectErrorInterceptor(),
	}
}

func (s *Server) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip API key check for health endpoints.
		if r.URL.Path == "/health" || r.URL.Path == "/grpc.health.v1.Health/Check" {
			next.ServeHTTP(w, r)
			return
		}
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			apiKey = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if apiKey == "" || apiKey != s.env.APIKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type projectView struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	ReviewEnabled bool              `json:"review_enabled"`
	Limits        expiration.Limits `json:"limits"`
	ReviewLimits  expiration.Limits `json:"review_limits"`
	Warnings      []string          `json:"warnings,omitempty"`
}

func toProjectView(p *project.Project) *projectView {
	return &projectView{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		ReviewEnabled: p.ReviewEnabled,
		Limits:        p.AnnotatorLimits(),
		ReviewLimits:  p.ReviewerLimits(),
		Warnings:      p.Schema.Lint(),
	}
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.List(r.Context())
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	views := make([]*projectView, len(projects))
	for i, p := range projects {
		views[i] = toProjectView(p)
	}
	cerr.SetJSONResponse(r.Context(), map[string]any{"projects": views})
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), toProjectView(p))
}
