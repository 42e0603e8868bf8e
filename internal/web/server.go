package web

import (
	"context"
	"embed"
	"html/template"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/CAFxX/httpcompression"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"linkbox-cli/internal/logging"
	"linkbox-cli/internal/panel"
)

//go:embed templates/*.html static/*.js static/*.css
var assetsFS embed.FS

type ServerConfig struct {
	Addr  string
	Title string

	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Server is the browser manager: one page plus a websocket per tab. Every tab
// is a panel surface.
type Server struct {
	cfg    ServerConfig
	tmpl   *template.Template
	log    *zap.Logger
	panel  *panel.Panel
	events chan<- panel.Event
	seq    atomic.Uint64

	compress func(http.Handler) http.Handler
	bound    string
}

// NewServer wires the manager to p. When events is non-nil, intents are fed to
// the panel's Run loop; otherwise they are handled directly.
func NewServer(cfg ServerConfig, p *panel.Panel, events chan<- panel.Event) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if p == nil {
		return nil, errors.New("web: panel is nil")
	}
	if cfg.Title == "" {
		cfg.Title = "Link Toolbox"
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}
	tmpl, err := template.ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		return nil, errors.Wrap(err, "web: compression")
	}
	// Debug mode prints the route table to stdout, which is the JSON envelope.
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Server{cfg: cfg, tmpl: tmpl, log: log, panel: p, events: events, compress: compress}, nil
}

// Addr is the bound address once Listen succeeded, else the configured one.
func (s *Server) Addr() string {
	if s.bound != "" {
		return s.bound
	}
	return s.cfg.Addr
}

// URL is the address a browser should open.
func (s *Server) URL() string {
	addr := s.Addr()
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(recoveryWithLogger(s.log), accessLog(s.log))

	r.GET("/", s.handleManager)
	r.GET("/health", s.handleHealth)
	r.GET("/ws", s.handleWS)
	r.GET("/static/manager.js", s.handleStatic("static/manager.js", "text/javascript; charset=utf-8"))
	r.GET("/static/manager.css", s.handleStatic("static/manager.css", "text/css; charset=utf-8"))

	api := r.Group("/api")
	{
		api.GET("/links", s.handleLinks)
		api.GET("/scope", s.handleScope)
	}

	if s.cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	// The websocket upgrade needs the raw writer; everything else is compressed.
	compressed := s.compress(r)
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/ws" {
			r.ServeHTTP(w, req)
			return
		}
		compressed.ServeHTTP(w, req)
	})
}

// Listen binds the configured address. Callers report the manager as running
// only after this succeeds.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen on %s", s.cfg.Addr)
	}
	s.bound = ln.Addr().String()
	return ln, nil
}

// ListenAndServe blocks until ctx is done or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is done. ln is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()
	s.log.Info("manager listening", zap.String(logging.FieldAddr, ln.Addr().String()))

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "manager server")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("manager shutdown error", zap.Error(err))
		}
		return nil
	}
}

func (s *Server) handleStatic(path, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := assetsFS.ReadFile(path)
		if err != nil {
			c.String(http.StatusNotFound, "not found")
			return
		}
		c.Data(http.StatusOK, contentType, b)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

type managerVM struct {
	Title      string
	Key        string
	ScopeLabel string
}

func scopeLabel(scope panel.Scope) string {
	if scope.Folder == nil {
		return "Global links"
	}
	if p, ok := scope.Folder.FSPath(); ok {
		return p
	}
	return scope.Folder.URI
}

func (s *Server) handleManager(c *gin.Context) {
	scope := s.panel.Scope()
	vm := managerVM{Title: s.cfg.Title, Key: scope.Key, ScopeLabel: scopeLabel(scope)}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := s.tmpl.ExecuteTemplate(c.Writer, "manager.html", vm); err != nil {
		s.log.Error("render manager", zap.Error(err))
	}
}

func (s *Server) handleLinks(c *gin.Context) {
	links, err := s.panel.Links(c.Request.Context(), s.panel.Scope())
	if err != nil {
		s.log.Error("read links", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": links})
}

func (s *Server) handleScope(c *gin.Context) {
	scope := s.panel.Scope()
	data := gin.H{"key": scope.Key, "global": scope.IsGlobal()}
	if scope.Folder != nil {
		data["folder"] = scope.Folder.URI
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}
