// Package exporter turns a lead collection into downloadable tabular
// artifacts: a single-sheet xlsx workbook or a delimited text file, with
// translated headers and timestamped filenames.
package exporter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/sells-group/lead-console/internal/i18n"
	"github.com/sells-group/lead-console/internal/model"
)

// Format selects the export serialization.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts the format names used on the wire and the CLI.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(s) {
	case "xlsx", "excel":
		return FormatXLSX, true
	case "csv":
		return FormatCSV, true
	}
	return "", false
}

// Result reports the outcome of an export.
type Result struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename,omitempty"`
	Message  string `json:"message,omitempty"`
}

const sheetName = "Leads"

// Column order is fixed: id, name, company, email, source, score, status.
var columnKeys = []string{
	"export.columns.id",
	"export.columns.name",
	"export.columns.company",
	"export.columns.email",
	"export.columns.source",
	"export.columns.score",
	"export.columns.status",
}

var columnWidths = []float64{8, 25, 30, 35, 15, 12, 15}

func headers(lang language.Tag) []string {
	out := make([]string, len(columnKeys))
	for i, key := range columnKeys {
		out[i] = i18n.T(lang, key)
	}
	return out
}

func leadRow(lead model.Lead) []string {
	return []string{
		fmt.Sprintf("%d", lead.ID),
		lead.Name,
		lead.Company,
		lead.Email,
		lead.Source,
		formatScore(lead.Score),
		string(lead.Status),
	}
}

func formatScore(score float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", score), "0"), ".")
}

// ToXLSX serializes the leads as a single-sheet workbook with fixed column
// widths.
func ToXLSX(leads []model.Lead, lang language.Tag) ([]byte, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return nil, eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range headers(lang) {
		header.AddCell().SetString(h)
	}

	for _, lead := range leads {
		row := sheet.AddRow()
		row.AddCell().SetInt64(lead.ID)
		row.AddCell().SetString(lead.Name)
		row.AddCell().SetString(lead.Company)
		row.AddCell().SetString(lead.Email)
		row.AddCell().SetString(lead.Source)
		row.AddCell().SetFloat(lead.Score)
		row.AddCell().SetString(string(lead.Status))
	}

	for i, width := range columnWidths {
		sheet.SetColWidth(i, i, width)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, eris.Wrap(err, "export: write workbook")
	}
	return buf.Bytes(), nil
}

// ToCSV serializes the leads as comma-joined text with a header row. A
// field is quoted only when it contains a comma or a double quote, with
// embedded quotes doubled; this matches the historical artifact format
// byte-for-byte, which encoding/csv's always-consistent quoting does not.
func ToCSV(leads []model.Lead, lang language.Tag) []byte {
	var b strings.Builder
	writeCSVRow(&b, headers(lang))
	for _, lead := range leads {
		b.WriteString("\n")
		writeCSVRow(&b, leadRow(lead))
	}
	return []byte(b.String())
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteString(",")
		}
		if strings.ContainsAny(field, ",\"") {
			b.WriteString(`"` + strings.ReplaceAll(field, `"`, `""`) + `"`)
		} else {
			b.WriteString(field)
		}
	}
}

// Export serializes the leads in the requested format and writes the
// timestamped artifact into dir.
func Export(leads []model.Lead, format Format, base string, lang language.Tag, dir string) Result {
	if base == "" {
		base = "leads"
	}

	var (
		data []byte
		err  error
		ext  string
	)
	switch format {
	case FormatXLSX:
		data, err = ToXLSX(leads, lang)
		ext = "xlsx"
	case FormatCSV:
		data = ToCSV(leads, lang)
		ext = "csv"
	default:
		return Result{Success: false, Message: "Unsupported export format"}
	}
	if err != nil {
		zap.L().Error("export failed", zap.String("format", string(format)), zap.Error(err))
		return Result{Success: false, Message: "Export error"}
	}

	name := TimestampedName(base, ext, time.Now())
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		zap.L().Error("export write failed", zap.String("filename", name), zap.Error(err))
		return Result{Success: false, Message: "Export error"}
	}

	return Result{Success: true, Filename: name}
}
