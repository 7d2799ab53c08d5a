package ui

import (
	"io/fs"
	"net/http"

	"goeda/ui/middleware"

	"github.com/gin-gonic/gin"
)

func (s *Server) setupMiddleware() error {
	s.router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), middleware.Metrics())

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return err
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}
