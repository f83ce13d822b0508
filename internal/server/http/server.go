// Package httpserver serves the public share link pages and the operator HTTP API.
package httpserver

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/and161185/onboarding/internal/metrics"
	"github.com/and161185/onboarding/internal/model"
	"github.com/and161185/onboarding/internal/service"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var pages = template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))

// Clients is the client service plus the rate-limited public lookup.
type Clients interface {
	service.ClientService
	ResolveShareLink(ctx context.Context, tok, remoteIP string) (*model.Client, error)
}

// Options tune the router. Zero values pick the defaults.
type Options struct {
	// CORSOrigins lists allowed origins; empty allows any origin.
	CORSOrigins []string
	// RequestsPerMinute caps requests per client IP.
	RequestsPerMinute int
	// Timeout bounds every request.
	Timeout time.Duration
	// PublicURL is the base of share links returned by the API.
	PublicURL string
}

// Server holds the HTTP handlers.
type Server struct {
	clients Clients
	forms   service.FormService
	metrics *metrics.Metrics
	log     *zap.Logger
	opts    Options
	now     func() time.Time
}

// New constructs the HTTP server handlers. m may be nil.
func New(clients Clients, forms service.FormService, m *metrics.Metrics, log *zap.Logger, opts Options) *Server {
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 120
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{clients: clients, forms: forms, metrics: m, log: log, opts: opts, now: time.Now}
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(s.opts.Timeout))
	r.Use(httprate.LimitByIP(s.opts.RequestsPerMinute, time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: originsOrAny(s.opts.CORSOrigins),
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	if s.metrics != nil {
		r.Use(withMetrics(s.metrics))
	}
	r.Use(accessLog(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	// public, authenticated by the share token only
	r.Get("/kundeskjema/{token}", s.sharePage)
	r.Route("/api/share/{token}", func(r chi.Router) {
		r.Get("/", s.shareGet)
		r.Put("/form", s.sharePutForm)
	})

	// operator
	r.Route("/api/clients", func(r chi.Router) {
		r.Get("/", s.listClients)
		r.Post("/", s.createClient)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getClient)
			r.Delete("/", s.deleteClient)
			r.Get("/form", s.getForm)
			r.Put("/form", s.putForm)
			r.Post("/form/clear", s.clearForm)
		})
	})
	r.Get("/kunde/{id}/moteskjema/export", s.exportText)
	r.Get("/kunde/{id}/moteskjema/print", s.printPage)

	return r
}

func originsOrAny(in []string) []string {
	out := []string{}
	for _, o := range in {
		if s := strings.TrimSpace(o); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
