// Package http exposes the JSON API, the upload ingress, the byte-range
// streaming egress and the live progress stream.
package http

import (
	"net/http"
	"time"

	"github.com/pulsevideo/pulse/internal/adapter/http/middleware"
	"github.com/pulsevideo/pulse/internal/adapter/http/ratelimit"
	"github.com/pulsevideo/pulse/internal/infrastructure/metrics"
	"github.com/pulsevideo/pulse/internal/service"
)

type Server struct {
	mux          *http.ServeMux
	handlers     *Handlers
	adminHand    *AdminHandlers
	sseHandler   *SSEHandler
	authSvc      AuthService
	rateLimiter  *ratelimit.LoginRateLimiter
	clientOrigin string
}

func NewServer(authSvc AuthService, videoSvc VideoService, eventBus *service.EventBus, clientOrigin string, maxBytes int64) *Server {
	s := &Server{
		mux:          http.NewServeMux(),
		handlers:     NewHandlers(videoSvc, maxBytes),
		adminHand:    NewAdminHandlers(authSvc),
		sseHandler:   NewSSEHandler(eventBus, videoSvc),
		authSvc:      authSvc,
		rateLimiter:  ratelimit.NewLoginRateLimiter(5, 15*time.Minute, 30*time.Minute),
		clientOrigin: clientOrigin,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/auth/register", RegisterHandler(s.authSvc))
	s.mux.HandleFunc("POST /api/auth/login", LoginHandler(s.authSvc, s.rateLimiter))
	s.mux.HandleFunc("GET /api/auth/me", AuthMiddleware(s.authSvc, MeHandler()))

	s.mux.HandleFunc("GET /api/videos", AuthMiddleware(s.authSvc, s.handlers.List()))
	s.mux.HandleFunc("POST /api/videos", AuthMiddleware(s.authSvc, s.handlers.Upload()))
	s.mux.HandleFunc("GET /api/videos/{id}", AuthMiddleware(s.authSvc, s.handlers.Get()))
	s.mux.HandleFunc("DELETE /api/videos/{id}", AuthMiddleware(s.authSvc, s.handlers.Delete()))
	s.mux.HandleFunc("GET /api/videos/{id}/stream", AuthMiddleware(s.authSvc, s.handlers.Stream()))
	s.mux.HandleFunc("GET /api/videos/{id}/events", AuthMiddleware(s.authSvc, s.sseHandler.Events()))

	s.mux.HandleFunc("GET /api/admin/users", AuthMiddleware(s.authSvc, RequireAdmin(s.adminHand.ListUsers())))
	s.mux.HandleFunc("PATCH /api/admin/users/{id}", AuthMiddleware(s.authSvc, RequireAdmin(s.adminHand.ChangeRole())))
	s.mux.HandleFunc("DELETE /api/admin/users/{id}", AuthMiddleware(s.authSvc, RequireAdmin(s.adminHand.DeleteUser())))

	s.mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.mux.Handle("GET /metrics", metrics.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := middleware.SecurityHeaders(s.mux)
	handler = middleware.CORS(s.clientOrigin, handler)
	handler.ServeHTTP(w, r)
}
