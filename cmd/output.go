package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/sells-group/jobboard-cli/internal/export"
	"github.com/sells-group/jobboard-cli/internal/model"
	"github.com/sells-group/jobboard-cli/internal/pipeline"
)

// maxPreviewCompanies caps the company preview table.
const maxPreviewCompanies = 10

// renderResult renders the run summary, a company preview and the
// exported files as pterm tables.
func renderResult(res *pipeline.Result) (string, error) {
	summary := pterm.TableData{
		{"Metric", "Value"},
		{"Companies", strconv.Itoa(len(res.Companies))},
		{"Jobs", strconv.Itoa(len(res.Jobs))},
	}
	if res.Scrolls > 0 {
		summary = append(summary, []string{"Scrolls", strconv.Itoa(res.Scrolls)})
	}
	if res.StopReason != "" {
		summary = append(summary, []string{"Stop reason", res.StopReason})
	}
	if res.RunID != "" {
		summary = append(summary, []string{"Run", res.RunID})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(summary).Srender()
	if err != nil {
		return "", err
	}

	if len(res.Companies) > 0 {
		preview, err := pterm.DefaultTable.WithHasHeader().WithData(companyPreview(res.Companies)).Srender()
		if err != nil {
			return "", err
		}
		out += "\n\n" + preview
	}

	if len(res.Files) > 0 {
		files, err := pterm.DefaultTable.WithHasHeader().WithData(fileRows(res.Files)).Srender()
		if err != nil {
			return "", err
		}
		out += "\n\n" + files
	}
	return out, nil
}

func companyPreview(companies []model.Company) pterm.TableData {
	data := pterm.TableData{{"Company", "Batch", "Location", "Jobs"}}
	for i, c := range companies {
		if i == maxPreviewCompanies {
			data = append(data, []string{fmt.Sprintf("... %d more", len(companies)-i), "", "", ""})
			break
		}
		data = append(data, []string{c.Name, c.Batch, c.Location, strconv.Itoa(c.JobCount)})
	}
	return data
}

func fileRows(paths []string) pterm.TableData {
	data := pterm.TableData{{"File", "Size", "Records"}}
	for _, p := range paths {
		s, err := export.Summarize(p)
		if err != nil {
			zap.L().Warn("summarize export failed", zap.String("path", p), zap.Error(err))
			data = append(data, []string{p, "", ""})
			continue
		}
		data = append(data, []string{s.Path, s.SizeHuman + ", " + s.Age, records(s)})
	}
	return data
}

func records(s *export.FileSummary) string {
	switch {
	case s.Companies != nil && s.Jobs != nil:
		return fmt.Sprintf("%d companies, %d jobs", *s.Companies, *s.Jobs)
	case s.Companies != nil:
		return fmt.Sprintf("%d companies", *s.Companies)
	case s.Jobs != nil:
		return fmt.Sprintf("%d jobs", *s.Jobs)
	}
	return s.ContentError
}

// printResult writes the rendered summary to w.
func printResult(w io.Writer, res *pipeline.Result) {
	out, err := renderResult(res)
	if err != nil {
		zap.L().Warn("render summary failed", zap.Error(err))
		return
	}
	_, _ = fmt.Fprintln(w, out)
}
