// Package export renders invoices and customer statements as PDF documents.
// It is pure formatting over already-computed invoice fields; no amounts are
// recalculated here.
package export

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"github.com/m-zohaibk/AQUABILL/internal/models"
)

// statement table layout (mm)
var statementCols = []struct {
	title string
	width float64
}{
	{"Date", 24},
	{"Time", 30},
	{"Mins", 14},
	{"Rate", 20},
	{"Total", 26},
	{"Received", 28},
	{"Pending", 28},
}

func header(pdf *gofpdf.Fpdf, settings models.Settings, title string) {
	pdf.SetFont("Arial", "B", 16)
	name := settings.BusinessName
	if name == "" {
		name = "AquaBill"
	}
	pdf.CellFormat(0, 10, name, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	if settings.BusinessAddress != "" {
		pdf.CellFormat(0, 5, settings.BusinessAddress, "", 1, "C", false, 0, "")
	}
	if settings.BusinessContact != "" {
		pdf.CellFormat(0, 5, settings.BusinessContact, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
	pdf.Ln(2)
}

// pendingCell writes a pending amount, rendering overpayments distinctly.
func pendingCell(pdf *gofpdf.Fpdf, width float64, pending float64) {
	text := fmt.Sprintf("%.0f", pending)
	if pending < 0 {
		pdf.SetTextColor(200, 0, 0)
		text = fmt.Sprintf("%.0f (overpaid)", pending)
	}
	pdf.CellFormat(width, 7, text, "1", 0, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// StatementPDF tabulates a customer's invoices, newest date first, and
// returns the rendered document.
func StatementPDF(settings models.Settings, customer models.Customer, invoices []models.Invoice) ([]byte, error) {
	rows := make([]models.Invoice, len(invoices))
	copy(rows, invoices)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		return rows[i].StartTime > rows[j].StartTime
	})

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	header(pdf, settings, fmt.Sprintf("Statement for %s", customer.Name))

	pdf.SetFont("Arial", "B", 10)
	for _, col := range statementCols {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	var totalCost, totalReceived, totalPending float64
	for _, inv := range rows {
		pdf.CellFormat(statementCols[0].width, 7, inv.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(statementCols[1].width, 7, fmt.Sprintf("%s - %s", inv.StartTime, inv.EndTime), "1", 0, "C", false, 0, "")
		pdf.CellFormat(statementCols[2].width, 7, fmt.Sprintf("%d", inv.DurationMinutes), "1", 0, "R", false, 0, "")
		pdf.CellFormat(statementCols[3].width, 7, fmt.Sprintf("%.3f", inv.RatePerMinute), "1", 0, "R", false, 0, "")
		pdf.CellFormat(statementCols[4].width, 7, fmt.Sprintf("%.0f", inv.TotalCost), "1", 0, "R", false, 0, "")
		pdf.CellFormat(statementCols[5].width, 7, fmt.Sprintf("%.0f", inv.AmountReceived), "1", 0, "R", false, 0, "")
		pendingCell(pdf, statementCols[6].width, inv.AmountPending)
		pdf.Ln(-1)

		totalCost += inv.TotalCost
		totalReceived += inv.AmountReceived
		totalPending += inv.AmountPending
	}

	pdf.SetFont("Arial", "B", 10)
	sumLabelWidth := statementCols[0].width + statementCols[1].width + statementCols[2].width + statementCols[3].width
	pdf.CellFormat(sumLabelWidth, 7, "Totals", "1", 0, "R", false, 0, "")
	pdf.CellFormat(statementCols[4].width, 7, fmt.Sprintf("%.0f", totalCost), "1", 0, "R", false, 0, "")
	pdf.CellFormat(statementCols[5].width, 7, fmt.Sprintf("%.0f", totalReceived), "1", 0, "R", false, 0, "")
	pendingCell(pdf, statementCols[6].width, totalPending)
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render statement PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// InvoicePDF renders a single invoice as a standalone printable document
// with the business header from Settings.
func InvoicePDF(settings models.Settings, customer models.Customer, invoice models.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	header(pdf, settings, fmt.Sprintf("Invoice %s", invoice.ID.String()))

	row := func(label, value string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(60, 8, label, "1", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(110, 8, value, "1", 1, "L", false, 0, "")
	}

	row("Customer", customer.Name)
	if customer.Contact != "" {
		row("Contact", customer.Contact)
	}
	row("Date", invoice.Date)
	row("Time", fmt.Sprintf("%s - %s", invoice.StartTime, invoice.EndTime))
	row("Duration (minutes)", fmt.Sprintf("%d", invoice.DurationMinutes))
	row("Rate per minute", fmt.Sprintf("%.3f", invoice.RatePerMinute))
	row("Total", fmt.Sprintf("%.0f", invoice.TotalCost))
	row("Received", fmt.Sprintf("%.0f", invoice.AmountReceived))

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(60, 8, "Pending", "1", 0, "L", false, 0, "")
	pendingCell(pdf, 110, invoice.AmountPending)
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice PDF: %w", err)
	}
	return buf.Bytes(), nil
}
