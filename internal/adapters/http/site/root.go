// Package site serves the static front end from disk.
package site

import (
	"context"
	"net/http"
	"os"

	"github.com/gorilla/mux"
)

// Register serves the files under dir at the site root. It must be called
// after the API routes so they take precedence over the catch-all prefix.
// A missing dir is not fatal: the prefix then answers 404.
func Register(_ context.Context, router *mux.Router, dir string) {
	if router == nil {
		panic("router is nil")
	}
	router.PathPrefix("/").Handler(NewRootHandler(dir)).Methods(http.MethodGet, http.MethodHead)
}

// RootHandler handles requests for static assets.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a handler serving dir.
func NewRootHandler(dir string) *RootHandler {
	return &RootHandler{files: http.FileServer(http.Dir(dir))}
}

// Available reports whether dir exists and is a directory.
func Available(dir string) bool {
	fi, err := os.Stat(dir)
	return err == nil && fi.IsDir()
}

func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.files.ServeHTTP(w, r)
}
