package profiling

import (
	"time"

	"goeda/domain/dataset"
	"goeda/internal/logging"

	"github.com/rs/zerolog"
)

// Statistics is everything the statistics tab shows for a frame.
type Statistics struct {
	Describe     []NumericSummary     `json:"describe"`
	Missing      []MissingCount       `json:"missing"`
	Categorical  []CategoricalStat    `json:"categorical"`
	Distribution []ColumnDistribution `json:"distribution"`
	Correlation  CorrelationMatrix    `json:"correlation"`
}

// DataProfiler orchestrates statistical profiling of frames
type DataProfiler struct {
	distribution *DistributionAnalyzer
	logger       zerolog.Logger
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{
		distribution: NewDistributionAnalyzer(),
		logger:       logging.WithComponent("profiling"),
	}
}

// Profile computes every statistic for frame.
func (dp *DataProfiler) Profile(frame *dataset.Frame) Statistics {
	start := time.Now()
	s := Statistics{
		Describe:     Describe(frame),
		Missing:      MissingValues(frame),
		Categorical:  CategoricalSummary(frame),
		Distribution: dp.distribution.AnalyzeFrame(frame),
		Correlation:  Correlation(frame),
	}
	dp.logger.Debug().
		Str("frame", frame.Name).
		Int("numeric", len(s.Describe)).
		Int("categorical", len(s.Categorical)).
		Dur("elapsed", time.Since(start)).
		Msg("profiled frame")
	return s
}

// Overview returns the preview section for frame.
func (dp *DataProfiler) Overview(frame *dataset.Frame) Overview {
	return BuildOverview(frame)
}
