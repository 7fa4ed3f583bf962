package export

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/jobboard-cli/internal/model"
)

// Sheet names used in XLSX exports.
const (
	CompaniesSheet = "Companies"
	JobsSheet      = "Jobs"
)

func (e *Exporter) writeXLSX(name string, companies []model.Company, jobs []model.Job) (string, error) {
	f := xlsx.NewFile()

	if companies != nil {
		rows := make([][]string, len(companies))
		for i, c := range companies {
			rows[i] = CompanyRow(c)
		}
		if err := addSheet(f, CompaniesSheet, CompanyColumns, rows); err != nil {
			return "", err
		}
	}
	if jobs != nil {
		rows := make([][]string, len(jobs))
		for i, j := range jobs {
			rows[i] = JobRow(j)
		}
		if err := addSheet(f, JobsSheet, JobColumns, rows); err != nil {
			return "", err
		}
	}

	path := filepath.Join(e.dir, name+".xlsx")
	if err := writeFile(path, f.Write); err != nil {
		return "", err
	}
	zap.L().Info("export: wrote xlsx",
		zap.String("path", path),
		zap.Int("companies", len(companies)),
		zap.Int("jobs", len(jobs)),
	)
	return path, nil
}

func addSheet(f *xlsx.File, name string, header []string, rows [][]string) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", name)
	}
	writeRow(sheet, header)
	for _, r := range rows {
		writeRow(sheet, r)
	}
	return nil
}

func writeRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
