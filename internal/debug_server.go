package internal

import (
	"chat-live/repositories"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

const (
	DefaultPrefix = "msg:"
	maxRows       = 500
)

type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []repositories.Entry
	Stats  map[string]any
}

// DebugServer renders the Badger keyspace and live statistics as an HTML page.
type DebugServer struct {
	log    *slog.Logger
	server *http.Server
}

func NewDebugServer(log *slog.Logger, db *badger.DB, port int, endpoint string, stats StatsProvider) *DebugServer {
	return &DebugServer{
		log: log,
		server: &http.Server{
			Addr:              fmt.Sprintf("0.0.0.0:%d", port),
			Handler:           InspectHandler(log, db, endpoint, stats),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// InspectHandler serves the inspector page on endpoint.
// ?prefix= selects the keys, ?limit= caps the rows.
func InspectHandler(log *slog.Logger, db *badger.DB, endpoint string, stats StatsProvider) http.Handler {
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))
	mux := http.NewServeMux()
	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = DefaultPrefix
		}
		limit := maxRows
		if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
			limit = n
		}

		data := PageData{Prefix: prefix, Stats: map[string]any{}}
		if stats != nil {
			data.Stats = stats()
		}
		items, err := repositories.ScanEntries(db, prefix, limit)
		if err != nil {
			log.Error("Inspect scan failed", "prefix", prefix, "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data.Items = items

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err = tmpl.Execute(w, data); err != nil {
			log.Warn("Inspect render failed", "error", err)
		}
	})
	return mux
}

// Start serves in the background. A listen failure is logged, the chat
// service keeps running without the inspector.
func (d *DebugServer) Start() {
	go func() {
		d.log.Info("Debug inspector listening", "address", d.server.Addr)
		if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.log.Error("Debug inspector stopped", "error", err)
		}
	}()
}

func (d *DebugServer) Shutdown(ctx context.Context) error {
	return d.server.Shutdown(ctx)
}
