package excel

// ReaderConfig holds configuration for spreadsheet ingestion
type ReaderConfig struct {
	Sheet       string   `json:"sheet" yaml:"sheet"`               // xlsx worksheet; empty means the first one
	MaxRows     int      `json:"max_rows" yaml:"max_rows"`         // 0 means unlimited
	NullMarkers []string `json:"null_markers" yaml:"null_markers"` // cell texts read as missing
}

// DefaultNullMarkers are the cell texts treated as missing values.
var DefaultNullMarkers = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
}

// DefaultReaderConfig returns sensible defaults for spreadsheet processing
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		NullMarkers: DefaultNullMarkers,
	}
}
