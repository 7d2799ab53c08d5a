package coercer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"goeda/domain/dataset"
)

// TypeCoercer infers column dtypes from spreadsheet text and converts cells
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	LenientNumbers    bool    `json:"lenient_numbers" yaml:"lenient_numbers"`       // accept currency, thousands separators, (negatives)
	DatetimeThreshold float64 `json:"datetime_threshold" yaml:"datetime_threshold"` // share of rows that must parse before a text column becomes datetime
	NormalizeStrings  bool    `json:"normalize_strings" yaml:"normalize_strings"`   // trim/lower text values
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		LenientNumbers:    false,
		DatetimeThreshold: 0.5,
		NormalizeStrings:  false,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	if config.DatetimeThreshold <= 0 || config.DatetimeThreshold > 1 {
		config.DatetimeThreshold = 0.5
	}
	return &TypeCoercer{config: config}
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount     int     `json:"total_count"`
	ValidCount     int     `json:"valid_count"`
	IntegerCount   int     `json:"integer_count"`
	NumericCount   int     `json:"numeric_count"`
	BooleanCount   int     `json:"boolean_count"`
	TimestampCount int     `json:"timestamp_count"`
	NumericRatio   float64 `json:"numeric_ratio"`
	BooleanRatio   float64 `json:"boolean_ratio"`
	TimestampRatio float64 `json:"timestamp_ratio"`
}

// AnalyzeTypeDistribution counts how many non-empty cells parse as each type
func (c *TypeCoercer) AnalyzeTypeDistribution(cells []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(cells)}

	for _, cell := range cells {
		if cell == "" {
			continue
		}
		analysis.ValidCount++
		if _, isInt, ok := c.tryParseNumeric(cell); ok {
			analysis.NumericCount++
			if isInt {
				analysis.IntegerCount++
			}
		}
		if _, ok := c.tryParseBoolean(cell); ok {
			analysis.BooleanCount++
		}
		if _, ok := ParseTimestamp(cell); ok {
			analysis.TimestampCount++
		}
	}

	if analysis.ValidCount > 0 {
		valid := float64(analysis.ValidCount)
		analysis.NumericRatio = float64(analysis.NumericCount) / valid
		analysis.BooleanRatio = float64(analysis.BooleanCount) / valid
		analysis.TimestampRatio = float64(analysis.TimestampCount) / valid
	}
	return analysis
}

// InferDtype picks the dtype a column of cells would be read as. Empty cells are missing.
func (c *TypeCoercer) InferDtype(cells []string) dataset.Dtype {
	a := c.AnalyzeTypeDistribution(cells)
	missing := a.TotalCount - a.ValidCount

	switch {
	case a.ValidCount == 0:
		return dataset.DtypeFloat64
	case a.IntegerCount == a.ValidCount && missing == 0:
		return dataset.DtypeInt64
	case a.NumericCount == a.ValidCount:
		return dataset.DtypeFloat64
	case a.BooleanCount == a.ValidCount && missing == 0:
		return dataset.DtypeBool
	default:
		return dataset.DtypeObject
	}
}

// BuildColumn infers the dtype of cells and converts them.
func (c *TypeCoercer) BuildColumn(name string, cells []string) *dataset.Column {
	dtype := c.InferDtype(cells)
	col := &dataset.Column{Name: name, Dtype: dtype, Values: make([]dataset.Value, len(cells))}

	for i, cell := range cells {
		if cell == "" {
			col.Values[i] = dataset.Null()
			continue
		}
		switch dtype {
		case dataset.DtypeInt64:
			col.Values[i] = c.parseInteger(cell)
		case dataset.DtypeFloat64:
			f, _, _ := c.tryParseNumeric(cell)
			col.Values[i] = dataset.Number(f)
		case dataset.DtypeBool:
			b, _ := c.tryParseBoolean(cell)
			col.Values[i] = dataset.Boolean(b)
		default:
			if c.config.NormalizeStrings {
				cell = normalizeString(cell)
			}
			col.Values[i] = dataset.Text(cell)
		}
	}
	return col
}

// PromoteDatetime converts an object column to datetime when more than the
// configured share of its rows parse as timestamps. Cells that do not parse
// become missing. It reports whether the column was converted.
func (c *TypeCoercer) PromoteDatetime(col *dataset.Column) bool {
	if col.Dtype != dataset.DtypeObject || col.Len() == 0 {
		return false
	}

	parsed := make([]dataset.Value, col.Len())
	hits := 0
	for i, v := range col.Values {
		if v.Null {
			parsed[i] = dataset.Null()
			continue
		}
		if t, ok := ParseTimestamp(v.Str); ok {
			parsed[i] = dataset.Timestamp(t)
			hits++
		} else {
			parsed[i] = dataset.Null()
		}
	}

	if float64(hits) <= c.config.DatetimeThreshold*float64(col.Len()) {
		return false
	}
	col.Dtype = dataset.DtypeDatetime
	col.Values = parsed
	return true
}

// BuildFrame types every column and promotes date-like text columns.
func (c *TypeCoercer) BuildFrame(name string, headers []string, columns [][]string) (*dataset.Frame, []dataset.Notice, error) {
	if len(headers) != len(columns) {
		return nil, nil, fmt.Errorf("got %d headers for %d columns", len(headers), len(columns))
	}

	var notices []dataset.Notice
	cols := make([]*dataset.Column, len(headers))
	for j, header := range headers {
		col := c.BuildColumn(header, columns[j])
		if c.PromoteDatetime(col) {
			notices = append(notices, dataset.Notice{
				Level:   dataset.NoticeInfo,
				Message: fmt.Sprintf("Converted column '%s' to Datetime type.", header),
			})
		}
		cols[j] = col
	}

	frame, err := dataset.NewFrame(name, cols)
	if err != nil {
		return nil, nil, err
	}
	return frame, notices, nil
}

// tryParseNumeric parses a number. In lenient mode it handles international
// formats: parentheses for negatives, European decimals, currency symbols.
func (c *TypeCoercer) tryParseNumeric(strVal string) (float64, bool, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false, false
	}

	if !c.config.LenientNumbers {
		if i, err := strconv.ParseInt(cleanVal, 10, 64); err == nil {
			return float64(i), true, true
		}
		if val, err := strconv.ParseFloat(cleanVal, 64); err == nil && !math.IsNaN(val) {
			return val, false, true
		}
		return 0, false, false
	}

	// Handle parentheses for negative numbers: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY", "%"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		commaIdx := strings.LastIndex(cleanVal, ",")
		afterComma := cleanVal[commaIdx+1:]
		if len(afterComma) <= 2 && isDigits(afterComma) {
			// 1.234,56 or 1 234,56
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		}
	case hasComma:
		// 1,234 is a thousands separator, 1,5 is a decimal comma
		commaIdx := strings.LastIndex(cleanVal, ",")
		if len(cleanVal)-commaIdx-1 == 3 {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		}
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false, false
	}
	isInt := !strings.ContainsAny(cleanVal, ".eE") && val == math.Trunc(val) && math.Abs(val) < math.MaxInt64
	return val, isInt, true
}

// parseInteger keeps plain integer text exact; lenient spellings such as
// "1,234" go through the float path, which tryParseNumeric bounds to int64.
func (c *TypeCoercer) parseInteger(cell string) dataset.Value {
	if i, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64); err == nil {
		return dataset.Integer(i)
	}
	f, _, _ := c.tryParseNumeric(cell)
	return dataset.Integer(int64(f))
}

// tryParseBoolean accepts the literal spellings a dataframe reader recognises;
// lenient mode adds yes/no style answers.
func (c *TypeCoercer) tryParseBoolean(strVal string) (bool, bool) {
	switch strings.TrimSpace(strVal) {
	case "True", "true", "TRUE":
		return true, true
	case "False", "false", "FALSE":
		return false, true
	}
	if c.config.LenientNumbers {
		switch strings.ToLower(strings.TrimSpace(strVal)) {
		case "yes", "y", "on":
			return true, true
		case "no", "n", "off":
			return false, true
		}
	}
	return false, false
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"01/02/2006 15:04:05",
	"01-02-06",
	"1/2/06",
	"02-Jan-2006",
	"2-Jan-2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01",
}

// ParseTimestamp parses the date and datetime spellings commonly found in spreadsheets.
func ParseTimestamp(strVal string) (time.Time, bool) {
	s := strings.TrimSpace(strVal)
	if len(s) < 6 || !strings.ContainsAny(s, "0123456789") {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizeString applies deterministic string normalization
func normalizeString(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
