package model

import "time"

// QuoteRegister is the data behind the spreadsheet export of quotes.
type QuoteRegister struct {
	GeneratedAt time.Time
	Scope       string
	Quotes      []Quote
}

// WorkOrderDocument is the data behind the printable work order sheet.
type WorkOrderDocument struct {
	Order       WorkOrder
	ClientName  string
	QuoteNumber string
	GeneratedAt time.Time
}
