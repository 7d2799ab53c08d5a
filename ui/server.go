package ui

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"goeda/app"
	"goeda/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html static
var embeddedFiles embed.FS

// Options configures the web server.
type Options struct {
	Addr           string
	GinMode        string
	MaxUploadBytes int64
	RecentUploads  int
}

// DefaultOptions serves on :8501 in release mode.
func DefaultOptions() Options {
	return Options{
		Addr:           ":8501",
		GinMode:        gin.ReleaseMode,
		MaxUploadBytes: 50 << 20,
		RecentUploads:  10,
	}
}

// Server is the dashboard web server.
type Server struct {
	router    *gin.Engine
	service   *app.AnalysisService
	templates *template.Template
	options   Options
	logger    zerolog.Logger
	http      *http.Server
}

// NewServer builds the router, parses the embedded templates and registers routes.
func NewServer(service *app.AnalysisService, options Options) (*Server, error) {
	if options.GinMode != "" {
		gin.SetMode(options.GinMode)
	}
	if options.MaxUploadBytes <= 0 {
		options.MaxUploadBytes = DefaultOptions().MaxUploadBytes
	}
	if options.RecentUploads <= 0 {
		options.RecentUploads = DefaultOptions().RecentUploads
	}

	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.New(),
		service:   service,
		templates: tmpl,
		options:   options,
		logger:    logging.WithComponent("ui"),
	}
	// multipart bodies beyond this spill to disk
	s.router.MaxMultipartMemory = 8 << 20

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()

	s.http = &http.Server{
		Addr:              options.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/upload", s.handleUpload)
	s.router.GET("/datasets/:id", s.handleDataset)
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/datasets", s.apiUpload)
		api.GET("/datasets", s.apiList)
		api.GET("/datasets/:id", s.apiGet)
		api.GET("/datasets/:id/overview", s.apiOverview)
		api.GET("/datasets/:id/statistics", s.apiStatistics)
		api.GET("/datasets/:id/value-counts", s.apiValueCounts)
		api.GET("/datasets/:id/visualizations", s.apiVisualizations)
		api.GET("/datasets/:id/charts", s.apiChart)
		api.GET("/datasets/:id/report", s.apiReport)
	}
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.options.Addr).Msg("dashboard listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
