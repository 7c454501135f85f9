// Package web serves the comparison over HTTP for the browser front end.
// All classification and hunk data comes from the core engine; the page
// renders it without re-deriving statuses.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pkg/browser"

	"diffscope/internal/core"
	"diffscope/internal/log"
	"diffscope/internal/textdiff"
)

//go:embed index.html
var indexHTML embed.FS

type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Server exposes one Comparer over HTTP. Handlers only read the immutable
// tree and the concurrency-safe pair cache, so no further locking is
// needed.
type Server struct {
	comparer *core.Comparer
	port     int
}

func NewServer(comparer *core.Comparer, port int) *Server {
	return &Server{comparer: comparer, port: port}
}

// Router builds the HTTP handler. Exposed separately for tests.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/tree", s.handleTree)
	mux.HandleFunc("GET /api/file", s.handleFile)
	return mux
}

// ListenAndServe runs the server until ctx is cancelled. When open is set
// the default browser is launched once the listener is accepting.
func (s *Server) ListenAndServe(ctx context.Context, open bool) error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	url := "http://" + addr
	log.Infof(log.CatWeb, "serving on %s", url)
	fmt.Printf("diffscope: serving on %s\n", url)

	if open {
		if err := browser.OpenURL(url); err != nil {
			log.Warnf(log.CatWeb, "browser launch failed: %v", err)
			fmt.Printf("open %s manually\n", url)
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := indexHTML.ReadFile("index.html")
	if err != nil {
		http.Error(w, "index unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.comparer.Tree(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, apiResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: tree})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	relPath := r.URL.Query().Get("path")
	if relPath == "" {
		writeJSON(w, http.StatusBadRequest, apiResponse{Error: "missing path parameter"})
		return
	}

	pair, err := s.comparer.FilePair(r.Context(), relPath)
	if err != nil {
		status := http.StatusOK
		if errors.Is(err, core.ErrUnknownPath) {
			status = http.StatusNotFound
		}
		if errors.Is(err, textdiff.ErrBinaryContent) || errors.Is(err, core.ErrKindConflict) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, apiResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: pair})
}

func writeJSON(w http.ResponseWriter, status int, body apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf(log.CatWeb, "encode response: %v", err)
	}
}
