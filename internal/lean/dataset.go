package lean

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/quiverfeeds/insider-data/internal/model"
)

// Data-folder namespace for this dataset.
const (
	Provider = "quiver"
	Dataset  = "insidertrading"
)

// Resolution is the engine's data resolution.
type Resolution string

const (
	ResolutionDaily Resolution = "daily"
)

// DefaultResolution is the resolution the dataset is added with when the
// algorithm does not specify one.
func DefaultResolution() Resolution { return ResolutionDaily }

// SupportedResolutions lists the resolutions this dataset can serve. Filings
// are daily; nothing finer exists upstream.
func SupportedResolutions() []Resolution { return []Resolution{ResolutionDaily} }

// DataTimeZone is the time zone the dataset's times are expressed in.
// Observation times are dates, so UTC.
func DataTimeZone() *time.Location { return time.UTC }

// IsSparseData reports that symbols can go long stretches without filings.
func IsSparseData() bool { return true }

// RequiresMapping reports that tickers must be mapped through the engine's
// symbol database before use.
func RequiresMapping() bool { return true }

// DatasetRoot returns the dataset directory under the engine's data root.
func DatasetRoot(root string) string {
	return filepath.Join(root, "alternative", Provider, Dataset)
}

// SymbolDataPath resolves the per-symbol point-in-time file for a ticker.
func SymbolDataPath(root, ticker string) string {
	return filepath.Join(DatasetRoot(root), strings.ToLower(ticker)+".csv")
}

// UniverseDataPath resolves the per-date universe file.
func UniverseDataPath(root string, date time.Time) string {
	return filepath.Join(DatasetRoot(root), "universe", date.Format(model.DateFormat)+".csv")
}
