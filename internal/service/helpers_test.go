package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/williamsps/maintenance-portal/internal/auth"
	"github.com/williamsps/maintenance-portal/internal/excel"
	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/pdf"
	"github.com/williamsps/maintenance-portal/internal/repository"
	"github.com/williamsps/maintenance-portal/internal/testutil"
	"github.com/williamsps/maintenance-portal/internal/validation"
)

type testEnv struct {
	repos      *repository.Repositories
	fx         *testutil.Fixtures
	clock      *testutil.Clock
	quotes     *QuoteService
	workOrders *WorkOrderService
	clients    *ClientService
	users      *UserService
	alerts     *AlertService
	auth       *AuthService
	exports    *ExportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.SetupTestDB(t)
	fx := testutil.Seed(t, database)
	repos := repository.New(database)
	validate := validation.New()
	log := zerolog.Nop()
	clock := testutil.NewClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	alerts := NewAlertService(repos, log)
	alerts.now = clock.Now
	quotes := NewQuoteService(repos, validate, alerts, testutil.DefaultSupplier, log)
	quotes.SetClock(clock.Now)
	workOrders := NewWorkOrderService(repos, validate, alerts, testutil.DefaultSupplier)
	workOrders.now = clock.Now

	return &testEnv{
		repos:      repos,
		fx:         fx,
		clock:      clock,
		quotes:     quotes,
		workOrders: workOrders,
		clients:    NewClientService(repos, validate, []string{"VISIONWEST"}),
		users:      NewUserService(repos, validate),
		alerts:     alerts,
		auth:       NewAuthService(repos, testutil.TokenManager(), auth.NewMemoryRevocations()),
		exports:    NewExportService(repos, quotes, workOrders, excel.NewGenerator(), pdf.NewGenerator()),
	}
}

func str(s string) *string      { return &s }
func num(f float64) *float64    { return &f }
func flag(b bool) *bool         { return &b }
func at(t time.Time) *time.Time { return &t }

func completeFields() QuoteFields {
	return QuoteFields{
		Title:           str("Replace guttering"),
		PropertyName:    str("Harbour View"),
		PropertyAddress: str("1 Quay St, Auckland"),
		WorkType:        str("Plumbing"),
		Description:     str("Rusted guttering along the north face needs replacing."),
		ContactPerson:   str("Carla Manager"),
		ContactEmail:    str("carla@acme.test"),
		ContactPhone:    str("09 555 0101"),
	}
}

// draftQuote creates a complete draft owned by Acme.
func (e *testEnv) draftQuote(t *testing.T) *QuoteView {
	t.Helper()
	view, err := e.quotes.Create(t.Context(), testutil.Principal(e.fx.AcmeAdmin), CreateQuoteInput{Fields: completeFields()})
	require.NoError(t, err)
	return view
}

func (e *testEnv) submittedQuote(t *testing.T) *QuoteView {
	t.Helper()
	view := e.draftQuote(t)
	view, err := e.quotes.Submit(t.Context(), testutil.Principal(e.fx.AcmeAdmin), view.ID, nil)
	require.NoError(t, err)
	return view
}

func (e *testEnv) quotedQuote(t *testing.T, validUntil *time.Time) *QuoteView {
	t.Helper()
	view := e.submittedQuote(t)
	view, err := e.quotes.ProvideQuote(t.Context(), testutil.Principal(e.fx.Staff), view.ID, ProvideQuoteInput{
		EstimatedCost:   num(350.5),
		EstimatedHours:  num(6),
		QuoteValidUntil: validUntil,
		ItemizedBreakdown: []BreakdownLineInput{
			{Category: "materials", Description: "Guttering", Cost: num(100)},
			{Category: "labor", Description: "Install", Cost: num(250.5)},
		},
	})
	require.NoError(t, err)
	return view
}

func (e *testEnv) approvedQuote(t *testing.T) *QuoteView {
	t.Helper()
	view := e.quotedQuote(t, nil)
	view, err := e.quotes.Approve(t.Context(), testutil.Principal(e.fx.AcmeAdmin), view.ID, nil)
	require.NoError(t, err)
	return view
}

func (e *testEnv) reload(t *testing.T, id uuid.UUID) model.Quote {
	t.Helper()
	var q model.Quote
	require.NoError(t, e.repos.DB().First(&q, "id = ?", id).Error)
	return q
}
