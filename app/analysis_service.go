package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"goeda/adapters/datareadiness/coercer"
	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/internal/cache"
	"goeda/internal/charts"
	apperrors "goeda/internal/errors"
	"goeda/internal/logging"
	"goeda/internal/metrics"
	"goeda/internal/profiling"
	"goeda/ports"

	"golang.org/x/sync/errgroup"
)

// LoadErrorMessage prefixes every failure to read an uploaded file.
const LoadErrorMessage = "Error loading file. Please ensure it's a valid CSV or Excel format"

// UploadSuccessMessage is shown once a file has been loaded.
const UploadSuccessMessage = "File uploaded successfully!"

// Session is a loaded dataset ready for analysis.
type Session struct {
	ID      core.ID          `json:"id"`
	Record  *dataset.Record  `json:"dataset"`
	Frame   *dataset.Frame   `json:"-"`
	Notices []dataset.Notice `json:"notices"`
}

// Report bundles everything the three dashboard tabs show.
type Report struct {
	Dataset        *dataset.Record      `json:"dataset"`
	Notices        []dataset.Notice     `json:"notices"`
	Overview       profiling.Overview   `json:"overview"`
	Statistics     profiling.Statistics `json:"statistics"`
	Visualizations []charts.Type        `json:"visualizations"`
}

// ServiceConfig tunes the analysis service.
type ServiceConfig struct {
	MaxUploadBytes int64
	CacheTTL       time.Duration
	Coercion       coercer.CoercionConfig
}

// DefaultServiceConfig returns a 50 MB upload limit and a 30 minute cache.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxUploadBytes: 50 << 20,
		CacheTTL:       30 * time.Minute,
		Coercion:       coercer.DefaultCoercionConfig(),
	}
}

// AnalysisService loads uploaded spreadsheets and serves their analyses.
type AnalysisService struct {
	repo     ports.DatasetRepository
	files    ports.FileStorage
	reader   ports.SpreadsheetReader
	coercer  *coercer.TypeCoercer
	profiler *profiling.DataProfiler
	sessions *cache.Memory[*Session]
	reports  cache.Blob
	config   ServiceConfig
}

// NewAnalysisService wires the service. reports may be nil to disable report caching.
func NewAnalysisService(repo ports.DatasetRepository, files ports.FileStorage, reader ports.SpreadsheetReader, reports cache.Blob, config ServiceConfig) *AnalysisService {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = DefaultServiceConfig().MaxUploadBytes
	}
	cleanup := time.Minute
	if config.CacheTTL > 0 && config.CacheTTL < cleanup {
		cleanup = config.CacheTTL
	}
	return &AnalysisService{
		repo:     repo,
		files:    files,
		reader:   reader,
		coercer:  coercer.NewTypeCoercer(config.Coercion),
		profiler: profiling.NewDataProfiler(),
		sessions: cache.NewMemory[*Session](config.CacheTTL, cleanup),
		reports:  reports,
		config:   config,
	}
}

// Close stops background cache maintenance.
func (s *AnalysisService) Close() {
	s.sessions.Stop()
}

// Upload validates, stores and parses a file. Uploading bytes that were loaded
// before returns the existing session.
func (s *AnalysisService) Upload(ctx context.Context, up dataset.Upload) (*Session, error) {
	logger := logging.FromContext(ctx, "analysis")

	format, ok := dataset.FormatFromFilename(up.Filename)
	if !ok {
		metrics.RecordUpload("", "rejected")
		return nil, apperrors.InvalidInput("Unsupported file type. Please upload a CSV or Excel (.xlsx) file.")
	}
	if len(up.Content) == 0 {
		metrics.RecordUpload(string(format), "rejected")
		return nil, apperrors.InvalidInput("The uploaded file is empty.")
	}
	if int64(len(up.Content)) > s.config.MaxUploadBytes {
		metrics.RecordUpload(string(format), "rejected")
		return nil, apperrors.TooLarge(fmt.Sprintf("File is too large: %d bytes exceeds the %d MB limit.", len(up.Content), s.config.MaxUploadBytes>>20))
	}

	hash := core.NewHash(up.Content)
	existing, err := s.repo.GetByHash(ctx, hash)
	switch {
	case err == nil:
		if sess, hit := s.cachedSession(existing.ID); hit {
			metrics.RecordUpload(string(format), "cached")
			logger.Debug().Str("dataset_id", existing.ID.String()).Msg("upload served from cache")
			return sess, nil
		}
		sess, err := s.parse(ctx, existing, up.Content)
		if err != nil {
			metrics.RecordUpload(string(format), "error")
			return nil, err
		}
		metrics.RecordUpload(string(format), "cached")
		return sess, nil
	case !apperrors.HasCode(err, apperrors.CodeNotFound):
		metrics.RecordUpload(string(format), "error")
		return nil, apperrors.Wrap(err, "failed to look up dataset")
	}

	rec := dataset.NewRecord(up.Filename, hash, format, int64(len(up.Content)))
	sess, err := s.parse(ctx, rec, up.Content)
	if err != nil {
		metrics.RecordUpload(string(format), "error")
		return nil, err
	}

	path, err := s.files.Save(ctx, up.Filename, up.Content)
	if err != nil {
		metrics.RecordUpload(string(format), "error")
		return nil, apperrors.Wrap(err, "failed to store upload")
	}
	rec.FilePath = path

	if err := s.repo.Create(ctx, rec); err != nil {
		metrics.RecordUpload(string(format), "error")
		return nil, apperrors.Wrap(err, "failed to record dataset")
	}

	metrics.RecordUpload(string(format), "success")
	logger.Info().
		Str("dataset_id", rec.ID.String()).
		Str("file", rec.OriginalFilename).
		Int("rows", rec.RowCount).
		Int("columns", rec.ColumnCount).
		Msg("dataset uploaded")
	return sess, nil
}

// Get returns a loaded dataset, reloading it from storage after cache expiry.
func (s *AnalysisService) Get(ctx context.Context, id core.ID) (*Session, error) {
	if sess, hit := s.cachedSession(id); hit {
		return sess, nil
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rc, err := s.files.Open(ctx, rec.FilePath)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to open stored file for dataset %s", id)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to read stored file for dataset %s", id)
	}

	logger := logging.FromContext(ctx, "analysis")
	logger.Debug().Str("dataset_id", id.String()).Msg("reloading dataset")
	return s.parse(ctx, rec, content)
}

// List returns recent uploads, newest first.
func (s *AnalysisService) List(ctx context.Context, limit int) ([]*dataset.Record, error) {
	return s.repo.List(ctx, limit)
}

// Overview returns the preview, shape and dtypes of a dataset.
func (s *AnalysisService) Overview(ctx context.Context, id core.ID) (profiling.Overview, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return profiling.Overview{}, err
	}
	return s.profiler.Overview(sess.Frame), nil
}

// Statistics returns the statistical summary of a dataset.
func (s *AnalysisService) Statistics(ctx context.Context, id core.ID) (profiling.Statistics, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return profiling.Statistics{}, err
	}
	return s.profiler.Profile(sess.Frame), nil
}

// ValueCounts returns value frequencies of a categorical column.
func (s *AnalysisService) ValueCounts(ctx context.Context, id core.ID, column string) ([]profiling.ValueCount, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return profiling.ValueCounts(sess.Frame, column)
}

// Visualizations lists the chart types the dataset supports.
func (s *AnalysisService) Visualizations(ctx context.Context, id core.ID) ([]charts.Type, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return charts.Available(sess.Frame), nil
}

// Chart builds one visualization.
func (s *AnalysisService) Chart(ctx context.Context, id core.ID, req charts.Request) (charts.Result, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return charts.Result{}, err
	}
	result := charts.Build(sess.Frame, req)

	label := req.Type.Slug()
	if label == "" {
		label = "unknown"
	}
	metrics.RecordChart(label, result.Outcome())
	return result, nil
}

// Report computes the overview and statistics concurrently. Finished reports
// are kept in the report cache when one is configured.
func (s *AnalysisService) Report(ctx context.Context, id core.ID) (*Report, error) {
	key := "report:" + id.String()
	if s.reports != nil {
		if raw, ok := s.reports.Get(ctx, key); ok {
			var cached Report
			if err := json.Unmarshal(raw, &cached); err == nil {
				metrics.RecordCacheLookup("reports", true)
				return &cached, nil
			}
		}
		metrics.RecordCacheLookup("reports", false)
	}

	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	report := &Report{Dataset: sess.Record, Notices: sess.Notices}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.Overview = s.profiler.Overview(sess.Frame)
		return gctx.Err()
	})
	g.Go(func() error {
		report.Statistics = s.profiler.Profile(sess.Frame)
		return gctx.Err()
	})
	g.Go(func() error {
		report.Visualizations = charts.Available(sess.Frame)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(err, "failed to build report")
	}

	if s.reports != nil {
		if raw, err := json.Marshal(report); err == nil {
			s.reports.Set(ctx, key, raw, s.config.CacheTTL)
		} else {
			logger := logging.FromContext(ctx, "analysis")
			logger.Warn().Err(err).Msg("failed to encode report for cache")
		}
	}
	return report, nil
}

func (s *AnalysisService) cachedSession(id core.ID) (*Session, bool) {
	sess, hit := s.sessions.Get(id.String())
	metrics.RecordCacheLookup("sessions", hit)
	return sess, hit
}

// parse reads and types content, fills the record's shape and caches the session.
func (s *AnalysisService) parse(ctx context.Context, rec *dataset.Record, content []byte) (*Session, error) {
	start := time.Now()

	table, err := s.reader.Read(rec.OriginalFilename, bytes.NewReader(content))
	if err != nil {
		return nil, loadError(err)
	}
	frame, notices, err := s.coercer.BuildFrame(rec.OriginalFilename, table.Headers, table.Columns())
	if err != nil {
		return nil, loadError(err)
	}

	rows, cols := frame.Shape()
	rec.RowCount = rows
	rec.ColumnCount = cols
	rec.SkippedRows = table.SkippedRows
	metrics.ObserveParse(string(rec.Format), time.Since(start), rows)

	if table.SkippedRows > 0 {
		notices = append([]dataset.Notice{{
			Level:   dataset.NoticeWarning,
			Message: fmt.Sprintf("Skipped %d malformed line(s) while reading the file.", table.SkippedRows),
		}}, notices...)
	}

	sess := &Session{ID: rec.ID, Record: rec, Frame: frame, Notices: notices}
	s.sessions.Set(rec.ID.String(), sess)

	logger := logging.FromContext(ctx, "analysis")
	logger.Debug().
		Str("dataset_id", rec.ID.String()).
		Int("notices", len(notices)).
		Dur("elapsed", time.Since(start)).
		Msg("dataset parsed")
	return sess, nil
}

func loadError(err error) error {
	return &apperrors.AppError{
		Code:    apperrors.CodeInvalidInput,
		Message: LoadErrorMessage,
		Cause:   err,
	}
}
