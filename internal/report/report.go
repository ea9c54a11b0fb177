// Package report renders tabular datasets as CSV and PDF documents.
package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/domain"
)

// Dataset is a table: one header row and any number of value rows of the
// same width.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

var errNoHeaders = errors.New("dataset requires at least one header")

// TripHeaders is the column order of TripDataset.
var TripHeaders = []string{
	"Trip ID", "Requester", "Email", "Department", "Destination", "Start", "End",
	"Status", "Cost Estimate", "Risk", "Last Actor", "Comments", "Attachments",
}

// TripDataset lays out export rows in TripHeaders order.
func TripDataset(rows []domain.ExportRow) Dataset {
	ds := Dataset{Headers: TripHeaders, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		ds.Rows = append(ds.Rows, []string{
			r.TripID.String(),
			r.Requester,
			r.Email,
			r.Department,
			r.Destination,
			domain.FormatDate(r.StartDate),
			domain.FormatDate(r.EndDate),
			string(r.Status),
			strconv.FormatFloat(r.CostEstimate, 'f', 2, 64),
			string(r.RiskLevel),
			r.LastActor,
			strconv.Itoa(r.Comments),
			strconv.Itoa(r.Attachments),
		})
	}
	return ds
}

// RenderCSV produces CSV encoded bytes for the dataset.
func RenderCSV(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, errNoHeaders
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF creates a landscape A4 document with an optional title and the
// dataset as a bordered table.
func RenderPDF(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, errNoHeaders
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 8)
	colWidth := 277.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 7)
	for _, row := range data.Rows {
		for i := range data.Headers {
			var value string
			if i < len(row) {
				value = row[i]
			}
			pdf.CellFormat(colWidth, 7, tr(value), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
