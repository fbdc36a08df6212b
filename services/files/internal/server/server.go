package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"filesmanager/internal/util"
	"filesmanager/pkg/domain"
	"filesmanager/services/files/internal/app"
)

const (
	tokenHeader           = "X-Token"
	defaultMaxUploadBytes = 10 << 20
)

// Limiter gates login attempts per client key.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	LoginLimiter   Limiter
	TrustedProxies *util.TrustedProxies
	MaxUploadBytes int64
}

// Server exposes the files API over HTTP.
type Server struct {
	app            *app.App
	router         chi.Router
	loginLimiter   Limiter
	trustedProxies *util.TrustedProxies
	maxUploadBytes int64
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	s := &Server{
		app:            cfg.App,
		router:         chi.NewRouter(),
		loginLimiter:   cfg.LoginLimiter,
		trustedProxies: cfg.TrustedProxies,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
	s.routes()
	return s
}

// Router returns the configured handler wrapped in the shared middleware chain.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("files", util.WithSecurityHeaders(util.WithCORS(s.router))))
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.currentUser)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, app.ErrNotFound.Error())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/status", s.handleStatus)
	r.Get("/stats", s.handleStats)

	r.Post("/users", s.handleRegister)
	r.Get("/connect", s.handleConnect)

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/users/me", s.handleMe)
		r.Get("/disconnect", s.handleDisconnect)
		r.Post("/files", s.handleCreateFile)
		r.Get("/files", s.handleListFiles)
		r.Get("/files/{id}", s.handleGetFile)
		r.Put("/files/{id}/publish", s.handlePublish)
		r.Put("/files/{id}/unpublish", s.handleUnpublish)
	})

	// anonymous callers may read public content
	r.Get("/files/{id}/data", s.handleFileData)
}

type userContextKey struct{}

// currentUser resolves X-Token once per request. Requests without a valid
// session continue anonymously; requireUser decides whether that is enough.
func (s *Server) currentUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get(tokenHeader))
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.app.Authenticate(r.Context(), token)
		switch app.KindOf(err) {
		case app.KindNone:
			s.audit(r, "files.authenticate", "success", "user_id", user.ID)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey{}, user)))
		case app.KindUnauthorized:
			s.audit(r, "files.authenticate", "fail", "reason", "invalid_session")
			next.ServeHTTP(w, r)
		default:
			s.writeAppError(w, r, err)
		}
	})
}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := userFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, app.ErrUnauthorized.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(domain.User)
	return user, ok
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Status(r.Context()))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.app.Stats(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, err := s.app.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.audit(r, "files.register", "fail", "reason", err.Error())
		s.writeAppError(w, r, err)
		return
	}
	s.audit(r, "files.register", "success", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if s.loginLimiter != nil && !s.loginLimiter.Allow(r.Context(), "connect|"+s.clientIP(r)) {
		s.audit(r, "files.login", "rate_limited")
		writeError(w, http.StatusTooManyRequests, "too many login attempts")
		return
	}
	email, password, ok := r.BasicAuth()
	if !ok {
		s.audit(r, "files.login", "fail", "reason", "missing_credentials")
		writeError(w, http.StatusUnauthorized, app.ErrUnauthorized.Error())
		return
	}
	token, err := s.app.Login(r.Context(), email, password)
	if err != nil {
		s.audit(r, "files.login", "fail", "reason", err.Error())
		s.writeAppError(w, r, err)
		return
	}
	s.audit(r, "files.login", "success")
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	token := strings.TrimSpace(r.Header.Get(tokenHeader))
	if err := s.app.Logout(r.Context(), token); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.audit(r, "files.logout", "success", "user_id", user.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clientIP(r *http.Request) string {
	return util.ClientIP(r, s.trustedProxies)
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", s.clientIP(r),
	}
	logAttrs = append(logAttrs, attrs...)
	logger := util.LoggerFromContext(r.Context())
	if outcome == "success" {
		logger.Info("security_event", logAttrs...)
		return
	}
	logger.Warn("security_event", logAttrs...)
}

func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch app.KindOf(err) {
	case app.KindUnauthorized:
		writeError(w, http.StatusUnauthorized, app.ErrUnauthorized.Error())
	case app.KindNotFound:
		writeError(w, http.StatusNotFound, app.ErrNotFound.Error())
	case app.KindBadRequest, app.KindParentNotFound, app.KindParentNotAFolder, app.KindValidation:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		util.LoggerFromContext(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
