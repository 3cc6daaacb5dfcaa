package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fortuna/gridiron/internal/league"
)

const (
	timestampLayout = "20060102_150405"
	maxCollisions   = 1000
)

// FileName is the export file name for week at time t, without a
// collision suffix.
func FileName(week int, clock Clock) string {
	return fmt.Sprintf("league_data_week_%d_%s.json", week, clockOrSystem(clock).Now().Format(timestampLayout))
}

// WriteExport writes the full document. See WriteExportVariant.
func WriteExport(doc *Document, baseDir string, week int, clock Clock) (string, error) {
	return WriteExportVariant(doc, VariantFull, baseDir, week, clock)
}

// WriteExportVariant writes doc's variant view under baseDir as
// league_data_week_{week}_{YYYYMMDD_HHMMSS}.json and returns the path.
// A file written in the same second gets a _1, _2, ... suffix; existing
// files are never overwritten.
func WriteExportVariant(doc *Document, variant Variant, baseDir string, week int, clock Clock) (string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", league.ErrIO, baseDir, err)
	}

	body, err := json.MarshalIndent(doc.View(variant), "", "    ")
	if err != nil {
		return "", fmt.Errorf("%w: encoding export: %v", league.ErrIO, err)
	}
	body = append(body, '\n')

	name := FileName(week, clock)
	stem := name[:len(name)-len(".json")]
	for i := 0; i < maxCollisions; i++ {
		path := filepath.Join(baseDir, name)
		if i > 0 {
			path = filepath.Join(baseDir, fmt.Sprintf("%s_%d.json", stem, i))
		}

		f, err := createExclusive(path)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: creating %s: %v", league.ErrIO, path, err)
		}

		if _, err := f.Write(body); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("%w: writing %s: %v", league.ErrIO, path, err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", fmt.Errorf("%w: closing %s: %v", league.ErrIO, path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("%w: too many exports named %s", league.ErrIO, name)
}

// createExclusive opens a new file, failing with fs.ErrExist if path is taken.
var createExclusive = func(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

// ReadExport parses a file written by WriteExport.
func ReadExport(path string) (*Document, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", league.ErrIO, path, err)
	}
	doc := newDocument()
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", league.ErrIO, path, err)
	}
	return doc, nil
}
