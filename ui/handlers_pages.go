package ui

import (
	"encoding/json"
	"net/http"

	"goeda/app"
	"goeda/domain/dataset"
	"goeda/internal/charts"
	apperrors "goeda/internal/errors"
	"goeda/internal/logging"
	"goeda/internal/profiling"

	"github.com/gin-gonic/gin"
)

const (
	pageTitle = "📊 Comprehensive Data Visualization and EDA App"

	intro = `
	Welcome to the EDA Web App! Upload your dataset (CSV or Excel) to get started.
	This app provides a wide range of analytical and visualization tools for deep data exploration.
	`

	awaitingUpload = "Awaiting file upload. Please upload a CSV or Excel file from the sidebar."
)

// Dashboard tabs.
const (
	tabOverview      = "overview"
	tabStatistics    = "statistics"
	tabVisualization = "visualization"
)

type tab struct {
	Key    string
	Label  string
	Active bool
}

// pageData feeds both the index and the dataset pages.
type pageData struct {
	Title   string
	Intro   string
	Recent  []*dataset.Record
	Sidebar []dataset.Notice
	Notices []dataset.Notice

	// dataset page only
	Report      *app.Report
	Tabs        []tab
	Tab         string
	DescribeRow []string
	ValueColumn string
	ValueCounts []profiling.ValueCount
	Viz         string
	Chart       *charts.Result
	FigureJSON  string
}

func (s *Server) newPage(c *gin.Context) *pageData {
	page := &pageData{Title: pageTitle, Intro: intro}
	recent, err := s.service.List(c.Request.Context(), s.options.RecentUploads)
	if err != nil {
		logger := logging.FromContext(c.Request.Context(), "ui")
		logger.Warn().Err(err).Msg("failed to list recent uploads")
	}
	page.Recent = recent
	return page
}

func (s *Server) handleIndex(c *gin.Context) {
	page := s.newPage(c)
	page.Notices = []dataset.Notice{{Level: dataset.NoticeInfo, Message: awaitingUpload}}
	s.renderTemplate(c, http.StatusOK, "index.html", page)
}

func (s *Server) handleUpload(c *gin.Context) {
	up, err := s.readUpload(c)
	if err == nil {
		var sess *app.Session
		sess, err = s.service.Upload(c.Request.Context(), up)
		if err == nil {
			c.Redirect(http.StatusSeeOther, "/datasets/"+sess.ID.String()+"?uploaded=1")
			return
		}
	}

	s.renderFailure(c, err, dataset.Notice{Level: dataset.NoticeInfo, Message: awaitingUpload})
}

// renderFailure re-renders the index page with err as an error notice.
func (s *Server) renderFailure(c *gin.Context, err error, extra ...dataset.Notice) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	page := s.newPage(c)
	page.Notices = append([]dataset.Notice{{Level: dataset.NoticeError, Message: publicMessage(err)}}, extra...)
	s.renderTemplate(c, status, "index.html", page)
}

func (s *Server) handleDataset(c *gin.Context) {
	ctx := c.Request.Context()
	report, err := s.loadReport(c)
	if err != nil {
		s.renderFailure(c, err)
		return
	}
	page := s.newPage(c)
	page.Report = report

	if c.Query("uploaded") != "" {
		page.Sidebar = append(page.Sidebar, dataset.Notice{Level: dataset.NoticeSuccess, Message: app.UploadSuccessMessage})
	}
	page.Sidebar = append(page.Sidebar, report.Notices...)

	page.Tab = c.DefaultQuery("tab", tabOverview)
	switch page.Tab {
	case tabOverview:
	case tabStatistics:
		page.DescribeRow = profiling.DescribeRows
		if len(report.Statistics.Categorical) > 0 {
			page.ValueColumn = c.DefaultQuery("column", report.Statistics.Categorical[0].Column)
			counts, err := s.service.ValueCounts(ctx, report.Dataset.ID, page.ValueColumn)
			if err != nil {
				page.Notices = append(page.Notices, dataset.Notice{Level: dataset.NoticeError, Message: publicMessage(err)})
			}
			page.ValueCounts = counts
		}
	case tabVisualization:
		if err := s.fillChart(c, page); err != nil {
			s.renderFailure(c, err)
			return
		}
	default:
		page.Tab = tabOverview
	}

	page.Tabs = []tab{
		{Key: tabOverview, Label: "📊 Data Overview", Active: page.Tab == tabOverview},
		{Key: tabStatistics, Label: "📈 Data Statistics", Active: page.Tab == tabStatistics},
		{Key: tabVisualization, Label: "🔬 Data Visualization", Active: page.Tab == tabVisualization},
	}
	s.renderTemplate(c, http.StatusOK, "dataset.html", page)
}

func (s *Server) loadReport(c *gin.Context) (*app.Report, error) {
	id, err := datasetID(c)
	if err != nil {
		return nil, err
	}
	return s.service.Report(c.Request.Context(), id)
}

// fillChart builds the selected visualization, defaulting to the first
// available type.
func (s *Server) fillChart(c *gin.Context, page *pageData) error {
	req := chartRequest(c, "viz")
	if req.Type == "" && len(page.Report.Visualizations) > 0 {
		req.Type = page.Report.Visualizations[0]
	}
	page.Viz = string(req.Type)

	result, err := s.service.Chart(c.Request.Context(), page.Report.Dataset.ID, req)
	if err != nil {
		return err
	}
	page.Chart = &result
	if result.Figure != nil {
		raw, err := json.Marshal(result.Figure)
		if err != nil {
			return apperrors.Wrap(err, "failed to encode figure")
		}
		page.FigureJSON = string(raw)
	}
	return nil
}
