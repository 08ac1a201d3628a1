package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"linkedin-job-tracker/internal/models"

	"github.com/xuri/excelize/v2"
)

type ExportFormat string

const (
	ExportCSVFormat   ExportFormat = "csv"
	ExportJSONFormat  ExportFormat = "json"
	ExportExcelFormat ExportFormat = "excel"

	excelSheet = "Applications"
)

func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ExportCSVFormat, ExportJSONFormat, ExportExcelFormat:
		return f, nil
	case "xlsx":
		return ExportExcelFormat, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// DefaultExportPath names an export after its format and the day it was made.
func DefaultExportPath(format ExportFormat, now time.Time) string {
	ext := string(format)
	if format == ExportExcelFormat {
		ext = "xlsx"
	}
	return fmt.Sprintf("job_applications_export_%s.%s", now.Format("20060102"), ext)
}

// Export writes index to path in format.
func Export(path string, format ExportFormat, index []models.IndexEntry) error {
	switch format {
	case ExportCSVFormat:
		return ExportCSV(path, index)
	case ExportJSONFormat:
		return ExportJSON(path, index)
	case ExportExcelFormat:
		return ExportExcel(path, index)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

func ExportCSV(path string, index []models.IndexEntry) error {
	var buf bytes.Buffer
	if err := CSV(&buf, index); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

func ExportJSON(path string, index []models.IndexEntry) error {
	if index == nil {
		index = []models.IndexEntry{}
	}

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// ExportExcel writes a single sheet with the CSV columns. Relevance is
// stored as a number so it can be sorted in the spreadsheet.
func ExportExcel(path string, index []models.IndexEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", excelSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(excelSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, e := range index {
		values := row(e)
		cells := make([]interface{}, len(values))
		for j, v := range values {
			cells[j] = v
		}
		cells[len(cells)-1] = e.Relevance

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(excelSheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %s: %w", e.JobID, err)
		}
	}

	if err := f.SetPanes(excelSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := mkdirFor(path); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := mkdirFor(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func mkdirFor(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return nil
}
