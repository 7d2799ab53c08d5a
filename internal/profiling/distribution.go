package profiling

import (
	"math"

	"goeda/domain/dataset"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ColumnDistribution describes the shape of a numeric column.
type ColumnDistribution struct {
	Column     string  `json:"column"`
	Count      int     `json:"count"`
	Skewness   float64 `json:"skewness"`
	Kurtosis   float64 `json:"kurtosis"`
	Outliers   int     `json:"outliers"`
	IsNormal   bool    `json:"is_normal"`
	NormalityP float64 `json:"normality_p"`
}

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// AnalyzeFrame analyses every numeric column of frame.
func (da *DistributionAnalyzer) AnalyzeFrame(frame *dataset.Frame) []ColumnDistribution {
	var out []ColumnDistribution
	for _, col := range frame.Columns {
		if col.Kind() != dataset.KindNumeric {
			continue
		}
		out = append(out, da.AnalyzeDistribution(col.Name, col.Floats()))
	}
	return out
}

// AnalyzeDistribution computes skewness, kurtosis, IQR outliers and a normality
// estimate. Columns too short or constant report zero shape and are not normal.
func (da *DistributionAnalyzer) AnalyzeDistribution(name string, data []float64) ColumnDistribution {
	result := ColumnDistribution{Column: name, Count: len(data), NormalityP: 1}
	if len(data) == 0 {
		return result
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return result
	}
	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return result
	}

	q25, err := stats.Percentile(data, 25)
	if err != nil {
		q25 = mean
	}
	q75, err := stats.Percentile(data, 75)
	if err != nil {
		q75 = mean
	}
	result.Outliers = detectOutliers(data, q25, q75)

	if stdDev == 0 {
		return result
	}
	result.Skewness = calculateSkewness(data, mean, stdDev)
	result.Kurtosis = calculateKurtosis(data, mean, stdDev)
	result.IsNormal, result.NormalityP = testNormality(len(data), result.Skewness, result.Kurtosis)
	return result
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	return skewness * math.Sqrt(n*(n-1)) / (n - 2)
}

// calculateKurtosis computes bias corrected sample kurtosis (normal = 3)
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 {
		return 0
	}

	n := float64(len(data))
	sumFourthDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumFourthDeviations += deviation * deviation * deviation * deviation
	}

	g2 := sumFourthDeviations/n - 3
	return (n-1)/((n-2)*(n-3))*((n+1)*g2+6) + 3
}

// testNormality runs a Jarque-Bera test: the statistic is chi-squared with
// two degrees of freedom under normality.
func testNormality(n int, skewness, kurtosis float64) (bool, float64) {
	if n < 3 {
		return false, 1.0
	}

	excess := kurtosis - 3
	jb := float64(n) / 6 * (skewness*skewness + excess*excess/4)
	chiDist := distuv.ChiSquared{K: 2}
	pValue := 1 - chiDist.CDF(jb)
	return pValue > 0.05, pValue
}

// detectOutliers counts values outside 1.5 IQR of the quartiles
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}
	return outlierCount
}
