package http

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/auth"
)

type Service interface {
	Create(ctx context.Context, obj quire.CreateRecord) (quire.Record, error)
	List(ctx context.Context, scope quire.Scope, t quire.FileType, page quire.Page) ([]quire.Record, quire.PageMeta, error)
	Rename(ctx context.Context, scope quire.Scope, id string, name string) (quire.Record, error)
	ReadContent(ctx context.Context, scope quire.Scope, id string, want quire.FileType) (quire.Content, error)
	WriteContent(ctx context.Context, scope quire.Scope, id string, want quire.FileType, content io.Reader, contentType string) (quire.SaveResult, error)
	Delete(ctx context.Context, scope quire.Scope, id string, want quire.FileType) error
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	Verifier auth.Verifier
	CORS     CORSConfig
	// Metrics, when set, instruments every route and serves the registry at MetricsPath.
	Metrics     *Metrics
	MetricsPath string
	// MaxContentBytes caps content uploads. Zero means DefaultMaxContentBytes.
	MaxContentBytes int64
}

// DefaultMaxContentBytes is the content upload cap when none is configured.
const DefaultMaxContentBytes = 10 << 20

// Handler serves the record API.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.MaxContentBytes <= 0 {
		cfg.MaxContentBytes = DefaultMaxContentBytes
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	return &Handler{config: cfg, service: service}
}

// Router returns an http.Handler with every route mounted. Everything except /health
// and the metrics endpoint requires a bearer token.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	if h.config.Metrics != nil {
		r.Use(h.config.Metrics.Middleware)
		r.Handle(h.config.MetricsPath, h.config.Metrics.Handler())
	}

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.config.Verifier))

		r.Route("/files", func(r chi.Router) {
			r.Post("/", h.handleCreatePersonal)
			r.Post("/notes", h.handleCreate(personal, quire.TypeNote))
			r.Get("/notes", h.handleList(personal, quire.TypeNote))
			r.Get("/notes/{id}/content", h.handleReadContent(personal, quire.TypeNote))
			r.Put("/notes/{id}/content", h.handleWriteContent(personal, quire.TypeNote))
			r.Delete("/notes/{id}", h.handleDelete(personal, quire.TypeNote))
		})

		r.Route("/workspace/{ws}", func(r chi.Router) {
			r.Post("/files", h.handleCreate(inWorkspace, ""))
			r.Post("/notes", h.handleCreate(inWorkspace, quire.TypeNote))
			r.Get("/files", h.handleList(inWorkspace, ""))
			r.Patch("/files/{id}", h.handleRename)
			r.Get("/files/{id}/content", h.handleReadContent(inWorkspace, ""))
			r.Put("/files/{id}/content", h.handleWriteContent(inWorkspace, ""))
			r.Get("/notes/{id}/content", h.handleReadContent(inWorkspace, quire.TypeNote))
			r.Put("/notes/{id}/content", h.handleWriteContent(inWorkspace, quire.TypeNote))
			r.Delete("/files/{id}", h.handleDelete(inWorkspace, ""))
			r.Delete("/notes/{id}", h.handleDelete(inWorkspace, quire.TypeNote))
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// scopeFunc builds the caller's scope for a request.
type scopeFunc func(r *http.Request) quire.Scope

// personal scopes to the owner's own workspace, whose id is the owner id.
func personal(r *http.Request) quire.Scope {
	owner := auth.OwnerFromContext(r.Context())
	return quire.Scope{WorkspaceID: owner, OwnerID: owner}
}

func inWorkspace(r *http.Request) quire.Scope {
	return quire.Scope{WorkspaceID: chi.URLParam(r, "ws"), OwnerID: auth.OwnerFromContext(r.Context())}
}
