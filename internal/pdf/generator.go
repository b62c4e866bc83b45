package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/williamsps/maintenance-portal/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders a one-page work order sheet for the field team.
func (g *Generator) Generate(doc model.WorkOrderDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	order := doc.Order

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, tr("Work Order "+order.JobNo), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Status: %s    Created: %s", order.Status, formatDate(order.CreatedAt))), "", 1, "C", false, 0, "")
	if order.IsUrgent {
		pdf.SetTextColor(200, 0, 0)
		pdf.SetFont(g.fontName, "B", 11)
		pdf.CellFormat(0, 6, "URGENT", "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	addBlock(pdf, tr, g.fontName, "Client", []string{
		safeValue(doc.ClientName),
		"PO number: " + safeValue(order.PONumber),
		"Quote: " + safeValue(doc.QuoteNumber),
	})
	addBlock(pdf, tr, g.fontName, "Property", []string{
		safeValue(order.PropertyName),
		"Address: " + safeValue(order.PropertyAddress),
		"Phone: " + safeValue(order.PropertyPhone),
		"Scheduled: " + formatDatePtr(order.ScheduleDate),
	})
	addBlock(pdf, tr, g.fontName, "Supplier", []string{
		order.SupplierName,
		"Phone: " + safeValue(order.SupplierPhone),
		"Email: " + safeValue(order.SupplierEmail),
	})
	addBlock(pdf, tr, g.fontName, "Authorized by", []string{
		safeValue(order.AuthorizedBy),
		"Contact: " + safeValue(order.AuthorizedContact),
		"Email: " + safeValue(order.AuthorizedEmail),
	})

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Description", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.MultiCell(0, 5, tr(safeValue(order.Description)), "1", "L", false)
	pdf.Ln(4)

	if order.CancellationReason != "" {
		pdf.SetFont(g.fontName, "B", 11)
		pdf.CellFormat(0, 6, "Cancellation reason", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 5, tr(order.CancellationReason), "", "L", false)
		pdf.Ln(2)
	}

	if len(order.Notes) > 0 {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Notes", "", 1, "L", false, 0, "")
		colWidths := []float64{35, 40, 105}
		drawTableRow(pdf, tr, g.fontName, []string{"Date", "Author", "Note"}, colWidths, true)
		for _, note := range order.Notes {
			drawTableRow(pdf, tr, g.fontName, []string{
				formatDate(note.CreatedAt),
				safeValue(note.AuthorName),
				truncate(note.Note, 70),
			}, colWidths, false)
		}
		pdf.Ln(4)
	}

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Sign-off", "", 1, "L", false, 0, "")
	signatureBlock(pdf, g.fontName, "Technician")
	signatureBlock(pdf, g.fontName, "Client representative")

	pdf.SetY(-20)
	pdf.SetFont(g.fontName, "", 8)
	pdf.CellFormat(0, 5, "Generated "+doc.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addBlock(pdf *gofpdf.Fpdf, tr func(string) string, fontName, title string, lines []string) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	for _, line := range lines {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
	pdf.Ln(2)
}

func drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 7, tr(col), "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName, label string) {
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("%s: ______________________   Date: ____________", label), "", 1, "L", false, 0, "")
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func truncate(value string, max int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}
