package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"tasklist/internal/render"
)

var ErrUnknownFormat = errors.New("unknown export format")

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

type record struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Priority string `json:"priority"`
	Done     bool   `json:"done"`
}

func records(view render.View) []record {
	out := make([]record, 0, len(view.Rows))
	for _, r := range view.Rows {
		out = append(out, record{
			ID:       r.ID,
			Title:    r.Title,
			Date:     r.Date,
			Priority: string(r.Priority),
			Done:     r.Done,
		})
	}
	return out
}

// Export encodes the rows of a view in the given format. Rows keep the
// view's order.
func Export(format string, view render.View) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return json.MarshalIndent(records(view), "", "  ")
	case FormatCSV:
		return exportCSV(view)
	case FormatPDF:
		return exportPDF(view)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func exportCSV(view render.View) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "title", "date", "priority", "done"}); err != nil {
		return nil, err
	}
	for _, r := range records(view) {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Title,
			r.Date,
			r.Priority,
			strconv.FormatBool(r.Done),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

var pdfColumns = []struct {
	title string
	width float64
}{
	{"Title", 90},
	{"Date", 30},
	{"Priority", 30},
	{"Status", 30},
}

func exportPDF(view render.View) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, fmt.Sprintf("Tasks (%s)", view.Filter))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 10)
	for _, c := range pdfColumns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	if view.Empty {
		pdf.CellFormat(180, 7, "No tasks", "1", 1, "C", false, 0, "")
	}
	for _, r := range view.Rows {
		status := "open"
		if r.Done {
			status = "done"
		}
		cells := []string{tr(r.Title), r.Date, r.PriorityLabel, status}
		for i, c := range pdfColumns {
			pdf.CellFormat(c.width, 7, cells[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
