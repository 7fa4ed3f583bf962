package export

import (
	"encoding/json"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rotisserie/eris"
)

// ErrFileNotFound is returned by Summarize for a missing path.
var ErrFileNotFound = errors.New("file not found")

// FileSummary describes a written export file.
type FileSummary struct {
	Path         string    `json:"filepath"`
	Name         string    `json:"filename"`
	Size         int64     `json:"file_size"`
	SizeMB       float64   `json:"file_size_mb"`
	SizeHuman    string    `json:"file_size_human"`
	Created      time.Time `json:"created"`
	Age          string    `json:"age"`
	Companies    *int      `json:"companies_count,omitempty"`
	Jobs         *int      `json:"jobs_count,omitempty"`
	ContentError string    `json:"content_error,omitempty"`
}

// Summarize stats path and counts the records it holds. A file whose
// content cannot be parsed still yields a summary with ContentError set.
func Summarize(path string) (*FileSummary, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrapf(ErrFileNotFound, "export: summary %s", path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "export: stat %s", path)
	}

	s := &FileSummary{
		Path:      path,
		Name:      filepath.Base(path),
		Size:      info.Size(),
		SizeMB:    math.Round(float64(info.Size())/(1024*1024)*100) / 100,
		SizeHuman: humanize.Bytes(uint64(info.Size())),
		Created:   info.ModTime(),
		Age:       humanize.Time(info.ModTime()),
	}

	var countErr error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		s.Companies, s.Jobs, countErr = countJSON(path)
	case ".csv":
		s.Companies, s.Jobs, countErr = countCSV(path)
	case ".xlsx":
		s.Companies, s.Jobs, countErr = countXLSX(path)
	}
	if countErr != nil {
		s.ContentError = countErr.Error()
	}
	return s, nil
}

func countJSON(path string) (companies, jobs *int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "export: read json")
	}
	var doc struct {
		Companies []json.RawMessage `json:"companies"`
		Jobs      []json.RawMessage `json:"jobs"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, eris.Wrap(err, "export: parse json")
	}
	if doc.Companies != nil {
		companies = intPtr(len(doc.Companies))
	}
	if doc.Jobs != nil {
		jobs = intPtr(len(doc.Jobs))
	}
	return companies, jobs, nil
}

func countCSV(path string) (companies, jobs *int, err error) {
	rows, err := ReadCSV(path)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	c, j := classify(rows[0], len(rows)-1)
	return c, j, nil
}

func countXLSX(path string) (companies, jobs *int, err error) {
	sheets, err := ReadXLSX(path)
	if err != nil {
		return nil, nil, err
	}
	for _, rows := range sheets {
		if len(rows) == 0 {
			continue
		}
		c, j := classify(rows[0], len(rows)-1)
		if c != nil {
			companies = c
		}
		if j != nil {
			jobs = j
		}
	}
	return companies, jobs, nil
}

// classify attributes n data rows to companies or jobs by the header's
// leading column.
func classify(header []string, n int) (companies, jobs *int) {
	if len(header) == 0 {
		return nil, nil
	}
	switch header[0] {
	case CompanyColumns[0]:
		return intPtr(n), nil
	case JobColumns[0]:
		return nil, intPtr(n)
	}
	return nil, nil
}

func intPtr(n int) *int { return &n }
