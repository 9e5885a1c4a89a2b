// Package server exposes the chart engine over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/astromirror/natalengine/internal/config"
	"github.com/astromirror/natalengine/internal/engine"
	"github.com/astromirror/natalengine/internal/log"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// Server is the REST front-end for the chart engine
type Server struct {
	engine    *engine.Engine
	formatter *Formatter
	logger    *zap.SugaredLogger
	Server    http.Server
}

// New builds a server bound to the configured listen address
func New(cfg config.HTTPConfig, e *engine.Engine, logger *zap.SugaredLogger) *Server {
	s := &Server{
		engine:    e,
		formatter: NewFormatter(),
		logger:    logger,
	}
	s.Server.Addr = fmt.Sprintf("%v:%v", cfg.ListenAddr, cfg.Port)
	s.Server.Handler = s.setupRouter()
	s.Server.ReadTimeout = 30 * time.Second
	s.Server.WriteTimeout = 30 * time.Second
	return s
}

// Start runs the listener until the context is cancelled
func (s *Server) Start(ctx context.Context, wg *sync.WaitGroup) {
	log.Infof("Starting REST server on %s...", s.Server.Addr)
	wg.Add(1)

	go func() {
		defer wg.Done()
		if err := s.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		log.Info("Shutting down the REST server...")
		s.Server.Shutdown(context.Background())
	}()
}

// setupRouter configures the HTTP router with all endpoints
func (s *Server) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.requestIDMiddleware)

	router.HandleFunc("/api/compute", s.handleCompute).Methods(http.MethodPost)
	router.HandleFunc("/api/lichun/{year:[0-9]+}", s.handleLiChun).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	return router
}

// requestIDMiddleware tags each request with a uuid, echoed in the
// X-Request-ID response header and the audit block.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
