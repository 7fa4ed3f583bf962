// Package export writes cleaned companies and jobs to JSON, CSV and XLSX
// files in an output directory.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobboard-cli/internal/model"
)

// Source is recorded in every JSON export.
const Source = "Y Combinator Job Board"

// Format is an output file format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for unknown formats and for combined
// exports in anything other than JSON.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat parses a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", eris.Wrapf(ErrUnsupportedFormat, "export: %q", s)
}

// Exporter writes files into a directory.
type Exporter struct {
	dir string
	now func() time.Time
}

// New creates the output directory if needed.
func New(dir string) (*Exporter, error) {
	if dir == "" {
		dir = "./output"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "export: create output dir %s", dir)
	}
	return &Exporter{dir: dir, now: time.Now}, nil
}

// Dir returns the output directory.
func (e *Exporter) Dir() string { return e.dir }

type exportInfo struct {
	Timestamp      string `json:"timestamp"`
	TotalCompanies *int   `json:"total_companies,omitempty"`
	TotalJobs      *int   `json:"total_jobs,omitempty"`
	Source         string `json:"source"`
}

type document struct {
	ExportInfo exportInfo       `json:"export_info"`
	Companies  *[]model.Company `json:"companies,omitempty"`
	Jobs       *[]model.Job     `json:"jobs,omitempty"`
}

// Companies writes companies in format. An empty name derives one from the
// current time.
func (e *Exporter) Companies(companies []model.Company, format Format, name string) (string, error) {
	name = e.filename(name, "yc_companies")
	switch format {
	case FormatJSON:
		return e.writeJSON(name, companies, nil)
	case FormatCSV:
		return e.writeCSV(name, CompanyColumns, len(companies), func(i int) []string { return CompanyRow(companies[i]) })
	case FormatXLSX:
		return e.writeXLSX(name, companies, nil)
	}
	return "", eris.Wrapf(ErrUnsupportedFormat, "export: companies as %q", format)
}

// Jobs writes jobs in format.
func (e *Exporter) Jobs(jobs []model.Job, format Format, name string) (string, error) {
	name = e.filename(name, "yc_jobs")
	switch format {
	case FormatJSON:
		return e.writeJSON(name, nil, jobs)
	case FormatCSV:
		return e.writeCSV(name, JobColumns, len(jobs), func(i int) []string { return JobRow(jobs[i]) })
	case FormatXLSX:
		return e.writeXLSX(name, nil, jobs)
	}
	return "", eris.Wrapf(ErrUnsupportedFormat, "export: jobs as %q", format)
}

// Combined writes companies and jobs into one JSON document. Other formats
// are rejected.
func (e *Exporter) Combined(companies []model.Company, jobs []model.Job, format Format, name string) (string, error) {
	if format != FormatJSON {
		return "", eris.Wrapf(ErrUnsupportedFormat, "export: combined export only supports json, got %q", format)
	}
	if companies == nil {
		companies = []model.Company{}
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	return e.writeJSON(e.filename(name, "yc_scrape_results"), companies, jobs)
}

func (e *Exporter) filename(name, prefix string) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("%s_%s", prefix, e.now().Format("20060102_150405"))
}

func (e *Exporter) writeJSON(name string, companies []model.Company, jobs []model.Job) (string, error) {
	doc := document{ExportInfo: exportInfo{
		Timestamp: e.now().Format(time.RFC3339),
		Source:    Source,
	}}
	if companies != nil {
		n := len(companies)
		doc.ExportInfo.TotalCompanies = &n
		doc.Companies = &companies
	}
	if jobs != nil {
		n := len(jobs)
		doc.ExportInfo.TotalJobs = &n
		doc.Jobs = &jobs
	}

	path := filepath.Join(e.dir, name+".json")
	err := writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(doc)
	})
	if err != nil {
		return "", err
	}

	zap.L().Info("export: wrote json",
		zap.String("path", path),
		zap.Int("companies", len(companies)),
		zap.Int("jobs", len(jobs)),
	)
	return path, nil
}

func (e *Exporter) writeCSV(name string, header []string, n int, row func(int) []string) (string, error) {
	path := filepath.Join(e.dir, name+".csv")
	err := writeFile(path, func(out io.Writer) error {
		w := csv.NewWriter(out)
		if err := w.Write(header); err != nil {
			return eris.Wrap(err, "write csv header")
		}
		for i := range n {
			if err := w.Write(row(i)); err != nil {
				return eris.Wrap(err, "write csv row")
			}
		}
		w.Flush()
		return w.Error()
	})
	if err != nil {
		return "", err
	}

	zap.L().Info("export: wrote csv", zap.String("path", path), zap.Int("rows", n))
	return path, nil
}

// writeFile writes through a temporary file in the same directory and
// renames it over path once write and Close succeed. On failure path is
// left untouched and the temporary file is removed.
func writeFile(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		_ = tmp.Close()
		return eris.Wrapf(err, "export: write %s", path)
	}
	if err = tmp.Close(); err != nil {
		return eris.Wrapf(err, "export: close %s", path)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return eris.Wrapf(err, "export: chmod %s", path)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "export: rename %s", path)
	}
	return nil
}
