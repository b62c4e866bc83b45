package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/williamsps/maintenance-portal/internal/auth"
	"github.com/williamsps/maintenance-portal/internal/excel"
	"github.com/williamsps/maintenance-portal/internal/http/middleware"
	"github.com/williamsps/maintenance-portal/internal/pdf"
	"github.com/williamsps/maintenance-portal/internal/repository"
	"github.com/williamsps/maintenance-portal/internal/service"
	"github.com/williamsps/maintenance-portal/internal/testutil"
	"github.com/williamsps/maintenance-portal/internal/validation"
)

type testServer struct {
	router http.Handler
	fx     *testutil.Fixtures
	clock  *testutil.Clock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	database := testutil.SetupTestDB(t)
	fx := testutil.Seed(t, database)
	repos := repository.New(database)
	validate := validation.New()
	log := zerolog.Nop()
	clock := testutil.NewClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	alerts := service.NewAlertService(repos, log)
	quotes := service.NewQuoteService(repos, validate, alerts, testutil.DefaultSupplier, log)
	quotes.SetClock(clock.Now)
	workOrders := service.NewWorkOrderService(repos, validate, alerts, testutil.DefaultSupplier)
	authService := service.NewAuthService(repos, testutil.TokenManager(), auth.NewMemoryRevocations())

	handler := NewHandler(Services{
		Auth:       authService,
		Clients:    service.NewClientService(repos, validate, []string{"VISIONWEST"}),
		Users:      service.NewUserService(repos, validate),
		Quotes:     quotes,
		WorkOrders: workOrders,
		Alerts:     alerts,
		Exports:    service.NewExportService(repos, quotes, workOrders, excel.NewGenerator(), pdf.NewGenerator()),
	}, log)

	return &testServer{
		router: NewRouter(handler, middleware.Auth(authService), "test", nil),
		fx:     fx,
		clock:  clock,
	}
}
