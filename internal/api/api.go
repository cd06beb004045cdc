// Package api serves resolved art, extended metadata and cached assets over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"solana-art-lab/internal/assetcache"
	"solana-art-lab/internal/domain"
	"solana-art-lab/internal/observability"
)

// ArtResolver resolves Art by metadata address or mint.
type ArtResolver interface {
	ResolveID(ctx context.Context, id string) (domain.Art, error)
}

// ExtendedFetcher delivers the extended metadata for a record id.
type ExtendedFetcher interface {
	FetchExtended(ctx context.Context, id string) (*domain.ExtendedMetadata, bool, error)
}

// AssetCache resolves content URIs to held blobs.
type AssetCache interface {
	GetOrFetch(ctx context.Context, uri string) *assetcache.Request
	GetOrFetchMesh(ctx context.Context, uri string) *assetcache.Request
	Blob(handle string) ([]byte, bool)
	Mesh(uri string) ([]byte, bool)
}

// Response is the JSON envelope for every non-asset endpoint.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Options contains the server dependencies.
type Options struct {
	Addr     string
	Resolver ArtResolver
	Extended ExtendedFetcher
	Assets   AssetCache
	Metrics  *observability.Metrics
	Logger   *zap.Logger
}

// Server is the HTTP front end.
type Server struct {
	resolver ArtResolver
	extended ExtendedFetcher
	assets   AssetCache
	metrics  *observability.Metrics
	logger   *zap.Logger
	server   *http.Server
}

// New creates a Server. Call Start to listen.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		resolver: opts.Resolver,
		extended: opts.Extended,
		assets:   opts.Assets,
		metrics:  opts.Metrics,
		logger:   logger,
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	})

	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      corsHandler.Handler(s.Router()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/art/{id}", s.getArt).Methods(http.MethodGet)
	r.HandleFunc("/art/{id}/extended", s.getExtended).Methods(http.MethodGet)
	r.HandleFunc("/assets", s.getAsset).Methods(http.MethodGet).Queries("uri", "{uri}")
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	return r
}

// Start listens until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.sendResponse(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]string{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) getArt(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	art, err := s.resolver.ResolveID(r.Context(), id)
	if err != nil {
		s.logger.Error("resolve art", zap.String("id", id), zap.Error(err))
		s.sendError(w, "failed to resolve art", http.StatusInternalServerError)
		return
	}
	s.sendResponse(w, http.StatusOK, Response{Success: true, Data: art})
}

func (s *Server) getExtended(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	meta, ok, err := s.extended.FetchExtended(r.Context(), id)
	if err != nil {
		s.sendError(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}
	if !ok {
		s.sendError(w, "no extended metadata", http.StatusNotFound)
		return
	}
	s.sendResponse(w, http.StatusOK, Response{Success: true, Data: meta})
}

// getAsset serves the held blob for uri, or redirects to the raw uri when
// only a degraded handle is available. mesh=1 loads through mesh mode and
// serves the bytes kept under the source uri.
func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	mesh := r.URL.Query().Get("mesh") == "1"

	req := s.assets.GetOrFetch
	if mesh {
		req = s.assets.GetOrFetchMesh
	}
	handle, ok, err := req(r.Context(), uri).Wait(r.Context())
	if err != nil {
		s.sendError(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}
	if !ok {
		s.sendError(w, "asset unavailable", http.StatusBadGateway)
		return
	}
	if !assetcache.IsBlobHandle(handle) {
		http.Redirect(w, r, handle, http.StatusTemporaryRedirect)
		return
	}

	var body []byte
	if mesh {
		body, ok = s.assets.Mesh(uri)
	} else {
		body, ok = s.assets.Blob(handle)
	}
	if !ok {
		s.sendError(w, "asset unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(body))
	w.Header().Set("ETag", `"`+handle+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("write asset", zap.Error(err))
	}
}

func (s *Server) sendResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) sendError(w http.ResponseWriter, message string, status int) {
	s.sendResponse(w, status, Response{Success: false, Error: message})
}
