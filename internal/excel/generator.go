package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/williamsps/maintenance-portal/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes a workbook with a summary sheet, one sheet per quote status
// and a sheet of every itemized breakdown line.
func (g *Generator) Generate(register model.QuoteRegister) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	summarySheet := "Summary"
	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	groups := groupByStatus(register.Quotes)
	if err := g.writeSummary(file, summarySheet, register, groups); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, status := range model.QuoteStatuses {
		quotes := groups[status]
		if len(quotes) == 0 {
			continue
		}
		sheetName := buildSheetName(string(status), usedNames)
		usedNames[sheetName] = struct{}{}

		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		if err := g.writeQuotes(file, sheetName, quotes); err != nil {
			return nil, err
		}
	}

	linesSheet := buildSheetName("Breakdown lines", usedNames)
	if _, err := file.NewSheet(linesSheet); err != nil {
		return nil, err
	}
	if err := g.writeBreakdown(file, linesSheet, register.Quotes); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, register model.QuoteRegister, groups map[model.QuoteStatus][]model.Quote) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Quote register")
	set("B1", register.Scope)
	set("A2", "Generated")
	set("B2", formatDateTime(register.GeneratedAt))
	set("A3", "Quotes")
	set("B3", len(register.Quotes))
	set("A4", "Quoted value")
	set("B4", formatMoney(sumEstimated(register.Quotes)))

	tableRow := 6
	set(fmt.Sprintf("A%d", tableRow), "Status")
	set(fmt.Sprintf("B%d", tableRow), "Count")
	set(fmt.Sprintf("C%d", tableRow), "Estimated value")
	for i, status := range model.QuoteStatuses {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), string(status))
		set(fmt.Sprintf("B%d", row), len(groups[status]))
		set(fmt.Sprintf("C%d", row), formatMoney(sumEstimated(groups[status])))
	}

	_ = file.SetColWidth(sheet, "A", "A", 28)
	_ = file.SetColWidth(sheet, "B", "B", 24)
	_ = file.SetColWidth(sheet, "C", "C", 18)
	return nil
}

func (g *Generator) writeQuotes(file *excelize.File, sheet string, quotes []model.Quote) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Quote number",
		"Title",
		"Property",
		"Address",
		"Urgent",
		"Estimated cost",
		"Estimated hours",
		"Breakdown total",
		"Valid until",
		"Submitted",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, q := range quotes {
		row := i + 2
		set(fmt.Sprintf("A%d", row), formatString(q.QuoteNumber))
		set(fmt.Sprintf("B%d", row), q.Title)
		set(fmt.Sprintf("C%d", row), q.PropertyName)
		set(fmt.Sprintf("D%d", row), q.PropertyAddress)
		set(fmt.Sprintf("E%d", row), formatBool(q.IsUrgent))
		set(fmt.Sprintf("F%d", row), formatFloat(q.EstimatedCost))
		set(fmt.Sprintf("G%d", row), formatFloat(q.EstimatedHours))
		set(fmt.Sprintf("H%d", row), formatMoney(q.BreakdownTotal()))
		set(fmt.Sprintf("I%d", row), formatDatePtr(q.QuoteValidUntil))
		set(fmt.Sprintf("J%d", row), formatDatePtr(q.SubmittedAt))
	}

	_ = file.SetColWidth(sheet, "A", "A", 16)
	_ = file.SetColWidth(sheet, "B", "D", 32)
	_ = file.SetColWidth(sheet, "E", "J", 14)
	return nil
}

func (g *Generator) writeBreakdown(file *excelize.File, sheet string, quotes []model.Quote) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Quote number", "Line", "Category", "Description", "Cost"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	row := 2
	for _, q := range quotes {
		for i, line := range q.Breakdown() {
			set(fmt.Sprintf("A%d", row), formatString(q.QuoteNumber))
			set(fmt.Sprintf("B%d", row), i+1)
			set(fmt.Sprintf("C%d", row), string(line.Category))
			set(fmt.Sprintf("D%d", row), line.Description)
			set(fmt.Sprintf("E%d", row), formatMoney(line.Cost))
			row++
		}
	}

	_ = file.SetColWidth(sheet, "A", "A", 16)
	_ = file.SetColWidth(sheet, "C", "C", 16)
	_ = file.SetColWidth(sheet, "D", "D", 48)
	return nil
}

func groupByStatus(quotes []model.Quote) map[model.QuoteStatus][]model.Quote {
	groups := make(map[model.QuoteStatus][]model.Quote)
	for _, q := range quotes {
		groups[q.Status] = append(groups[q.Status], q)
	}
	return groups
}

func buildSheetName(name string, used map[string]struct{}) string {
	base := sanitizeSheetName(name)
	if len(base) > 31 {
		base = base[:31]
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		nameCandidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Sheet"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = strings.TrimSpace(replacer.Replace(value))
	if value == "" {
		return "Sheet"
	}
	return value
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatDatePtr(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *value)
}

func formatMoney(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func formatBool(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func sumEstimated(quotes []model.Quote) float64 {
	total := 0.0
	for _, q := range quotes {
		if q.EstimatedCost != nil {
			total += *q.EstimatedCost
		}
	}
	return total
}
