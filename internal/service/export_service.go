package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/repository"
)

type ExcelGenerator interface {
	Generate(register model.QuoteRegister) ([]byte, error)
}

type PDFGenerator interface {
	Generate(doc model.WorkOrderDocument) ([]byte, error)
}

type ExportService struct {
	repos      *repository.Repositories
	quotes     *QuoteService
	workOrders *WorkOrderService
	excel      ExcelGenerator
	pdf        PDFGenerator
	now        func() time.Time
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func NewExportService(repos *repository.Repositories, quotes *QuoteService, workOrders *WorkOrderService, excel ExcelGenerator, pdf PDFGenerator) *ExportService {
	return &ExportService{
		repos:      repos,
		quotes:     quotes,
		workOrders: workOrders,
		excel:      excel,
		pdf:        pdf,
		now:        time.Now,
	}
}

func (s *ExportService) QuoteRegister(ctx context.Context, principal model.Principal, input QuoteListInput) (*ExportResult, error) {
	quotes, err := s.quotes.Register(ctx, principal, input)
	if err != nil {
		return nil, err
	}

	scope := "All clients"
	if clientID := principal.ScopeClientID(); clientID != nil {
		client, err := s.repos.Clients.Get(ctx, *clientID)
		if err != nil {
			return nil, translate(err, "client")
		}
		scope = client.Name
	}

	now := s.now()
	content, err := s.excel.Generate(model.QuoteRegister{GeneratedAt: now, Scope: scope, Quotes: quotes})
	if err != nil {
		return nil, err
	}

	name := sanitizeFileName(scope)
	if name == "" {
		name = "quotes"
	}
	return &ExportResult{
		FileName: fmt.Sprintf("quotes-%s-%s.xlsx", strings.ToLower(name), now.Format("20060102")),
		Content:  content,
	}, nil
}

func (s *ExportService) WorkOrderPDF(ctx context.Context, principal model.Principal, id uuid.UUID) (*ExportResult, error) {
	order, err := s.workOrders.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	doc := model.WorkOrderDocument{Order: *order, GeneratedAt: s.now()}
	if client, err := s.repos.Clients.Get(ctx, order.ClientID); err == nil {
		doc.ClientName = client.Name
	}
	if order.QuoteID != nil {
		if quote, err := s.repos.Quotes.Get(ctx, *order.QuoteID); err == nil && quote.QuoteNumber != nil {
			doc.QuoteNumber = *quote.QuoteNumber
		}
	}

	content, err := s.pdf.Generate(doc)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("work-order-%s.pdf", sanitizeFileName(order.JobNo)),
		Content:  content,
	}, nil
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
