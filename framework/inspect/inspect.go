// Package inspect exposes a read-mostly HTTP view of a container: which
// services are registered, which are cached, and whether a set of
// dependencies can be satisfied.
//
//	GET    /services          local registrations and their state
//	GET    /services/{name}   one name, resolved through the parent chain
//	DELETE /cache             ClearCache
//	GET    /health?require=a,b VerifyDependenciesOrFail
package inspect

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/container"
	gohttp "github.com/km-arc/go-container/framework/http"
)

// ServiceView is the JSON shape of one service.
type ServiceView struct {
	Name   string `json:"name"`
	State  string `json:"state"`
	Exists bool   `json:"exists"`
}

// Handler returns the inspector routes for c. A nil logger disables request
// logging.
func Handler(c *container.Container, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{c: c}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/services", h.listServices)
	r.Get("/services/{name}", h.showService)
	r.Delete("/cache", h.clearCache)
	r.Get("/health", h.health)
	return r
}

type handler struct {
	c *container.Container
}

func (h *handler) view(name string) ServiceView {
	return ServiceView{
		Name:   name,
		State:  h.c.State(name).String(),
		Exists: h.c.ServiceExists(name),
	}
}

func (h *handler) listServices(w http.ResponseWriter, _ *http.Request) {
	names := h.c.Names()
	out := make([]ServiceView, 0, len(names))
	for _, n := range names {
		out = append(out, h.view(n))
	}
	gohttp.NewResponse(w).Success(out)
}

func (h *handler) showService(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	name := chi.URLParam(r, "name")
	if !h.c.ServiceExists(name) {
		res.NotFound("service " + name + " not found")
		return
	}
	res.Success(h.view(name))
}

func (h *handler) clearCache(w http.ResponseWriter, _ *http.Request) {
	h.c.ClearCache()
	gohttp.NewResponse(w).NoContent()
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)

	var required []string
	for _, n := range strings.Split(r.URL.Query().Get("require"), ",") {
		if n = strings.TrimSpace(n); n != "" {
			required = append(required, n)
		}
	}

	err := h.c.VerifyDependenciesOrFail(required...)
	var missing *container.MissingServiceError
	switch {
	case err == nil:
		res.Success(map[string]any{"status": "ok"})
	case errors.As(err, &missing):
		res.Unavailable(err.Error(), map[string]any{"status": "missing", "missing": missing.Names})
	default:
		res.Error(http.StatusInternalServerError, err.Error())
	}
}

// requestLogger logs one line per request at debug level.
func requestLogger(l *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			l.Debug("inspector request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)))
		})
	}
}
