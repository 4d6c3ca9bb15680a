package http

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// IndexPage is the data the form page renders.
type IndexPage struct {
	Cities         []string
	PredictionText string
}

// Renderer executes the page templates. In debug mode the templates come
// from disk and are re-parsed whenever a file in the directory changes.
type Renderer struct {
	mu      sync.RWMutex
	tmpl    *template.Template
	dir     string
	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

// NewRenderer uses the templates compiled into the binary.
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	tmpl, err := template.ParseFS(embeddedTemplates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl, logger: logger}, nil
}

// NewDevRenderer parses dir and watches it for changes until Close.
func NewDevRenderer(dir string, logger *zap.Logger) (*Renderer, error) {
	r := &Renderer{dir: dir, logger: logger}
	if err := r.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	r.watcher = watcher
	go r.watch()
	logger.Info("template reload enabled", zap.String("dir", dir))
	return r, nil
}

func (r *Renderer) reload() error {
	tmpl, err := template.ParseGlob(filepath.Join(r.dir, "*.html"))
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.tmpl = tmpl
	r.mu.Unlock()
	return nil
}

func (r *Renderer) watch() {
	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".html") {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := r.reload(); err != nil {
				r.logger.Warn("template reload failed, keeping previous templates", zap.Error(err))
				continue
			}
			r.logger.Debug("templates reloaded", zap.String("file", event.Name))
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("template watcher error", zap.Error(err))
		}
	}
}

// Render executes the named template into w.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	r.mu.RLock()
	tmpl := r.tmpl
	r.mu.RUnlock()
	return tmpl.ExecuteTemplate(w, name, data)
}

// Close stops watching for template changes.
func (r *Renderer) Close() error {
	if r.watcher == nil {
		return nil
	}
	return r.watcher.Close()
}
