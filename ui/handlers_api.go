package ui

import (
	"net/http"
	"strconv"

	"goeda/app"
	apperrors "goeda/internal/errors"

	"github.com/gin-gonic/gin"
)

func (s *Server) apiUpload(c *gin.Context) {
	up, err := s.readUpload(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	sess, err := s.service.Upload(c.Request.Context(), up)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": app.UploadSuccessMessage,
		"dataset": sess,
	})
}

func (s *Server) apiList(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.respondError(c, apperrors.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}
	records, err := s.service.List(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"datasets": records, "count": len(records)})
}

func (s *Server) apiGet(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	sess, err := s.service.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) apiOverview(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	overview, err := s.service.Overview(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (s *Server) apiStatistics(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	stats, err := s.service.Statistics(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) apiValueCounts(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	column := c.Query("column")
	if column == "" {
		s.respondError(c, apperrors.InvalidInput("column is required"))
		return
	}
	counts, err := s.service.ValueCounts(c.Request.Context(), id, column)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"column": column, "counts": counts})
}

func (s *Server) apiVisualizations(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	types, err := s.service.Visualizations(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visualizations": types})
}

// apiChart always answers 200 once the dataset exists; a chart that cannot
// be drawn carries a notice instead of a figure.
func (s *Server) apiChart(c *gin.Context) {
	id, err := datasetID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	req := chartRequest(c, "type")
	if req.Type == "" {
		s.respondError(c, apperrors.InvalidInput("type is required"))
		return
	}
	result, err := s.service.Chart(c.Request.Context(), id, req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) apiReport(c *gin.Context) {
	report, err := s.loadReport(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
