// Package middleware implements the non-core HTTP collaborator described
// by spec §6: it recompiles X.styl in a source directory into X.css in a
// destination directory on demand, whenever the source's mtime is newer
// than the previously compiled output (or no output exists yet).
package middleware

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/matthewmueller/stylus/stylus"
)

// Config configures a Middleware.
type Config struct {
	// Src is the directory .styl sources are read from.
	Src string
	// Dst is the directory compiled .css files are written to.
	Dst string
	// Options is passed through to stylus.Compile for every recompile.
	Options stylus.Options
	// Log receives one Info call per recompile and one Error call per
	// failed compile; the zero value (logr.Discard()) is silent.
	Log logr.Logger
}

// Middleware serves compiled CSS, recompiling on demand.
type Middleware struct {
	cfg Config
}

// New returns a Middleware for cfg. A zero Config.Log discards all log
// output.
func New(cfg Config) *Middleware {
	if cfg.Log.GetSink() == nil {
		cfg.Log = logr.Discard()
	}
	return &Middleware{cfg: cfg}
}

// Handler wraps next, intercepting requests for *.css under cfg.Dst and
// recompiling their *.styl counterpart first when stale.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ".css") {
			next.ServeHTTP(w, r)
			return
		}

		rel := strings.TrimPrefix(r.URL.Path, "/")
		cssPath := filepath.Join(m.cfg.Dst, rel)
		stylPath := filepath.Join(m.cfg.Src, strings.TrimSuffix(rel, ".css")+".styl")

		if err := m.recompileIfStale(stylPath, cssPath); err != nil {
			if os.IsNotExist(err) {
				next.ServeHTTP(w, r)
				return
			}
			m.cfg.Log.Error(err, "stylus recompile failed", "source", stylPath)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		http.ServeFile(w, r, cssPath)
	})
}

// recompileIfStale compiles stylPath to cssPath when cssPath is missing or
// older than stylPath.
func (m *Middleware) recompileIfStale(stylPath, cssPath string) error {
	srcInfo, err := os.Stat(stylPath)
	if err != nil {
		return err
	}

	if dstInfo, err := os.Stat(cssPath); err == nil && !srcInfo.ModTime().After(dstInfo.ModTime()) {
		return nil
	}

	src, err := os.ReadFile(stylPath)
	if err != nil {
		return err
	}

	opts := m.cfg.Options
	opts.Filename = stylPath
	css, err := stylus.Compile(src, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cssPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(cssPath, []byte(css), 0o644); err != nil {
		return err
	}

	m.cfg.Log.Info("recompiled stylesheet", "source", stylPath, "dest", cssPath, "at", time.Now().Format(time.RFC3339))
	return nil
}
