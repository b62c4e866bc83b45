package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/testutil"
	"github.com/williamsps/maintenance-portal/internal/validation"
)

func validWorkOrder(jobNo string) CreateWorkOrderInput {
	return CreateWorkOrderInput{
		JobNo:           jobNo,
		PropertyName:    "Harbour View",
		PropertyAddress: "1 Quay St, Auckland",
		PropertyPhone:   "09 555 0101",
		Description:     "Replace broken window latch",
	}
}

func (e *testEnv) workOrder(t *testing.T, jobNo string) *model.WorkOrder {
	t.Helper()
	order, err := e.workOrders.Create(t.Context(), testutil.AdminIn(e.fx.Admin, e.fx.Acme.ID), validWorkOrder(jobNo))
	require.NoError(t, err)
	return order
}

func TestCreateWorkOrderRequiredFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.workOrders.Create(t.Context(), testutil.Principal(env.fx.AcmeAdmin), CreateWorkOrderInput{JobNo: "  "})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)

	fields := map[string]bool{}
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	for _, name := range []string{"job_no", "property_name", "property_address", "property_phone", "description"} {
		assert.True(t, fields[name], "missing error for %s", name)
	}
}

func TestCreateWorkOrderForcesSupplierAndAuthorizer(t *testing.T) {
	env := newTestEnv(t)
	input := validWorkOrder("JOB-1")
	input.Supplier = model.Supplier{Name: "Cheap Fixers", Phone: "1", Email: "x@y.z"}

	order, err := env.workOrders.Create(t.Context(), testutil.Principal(env.fx.AcmeAdmin), input)
	require.NoError(t, err)
	assert.Equal(t, testutil.DefaultSupplier, order.Supplier())
	assert.Equal(t, model.WorkOrderPending, order.Status)
	assert.Equal(t, env.fx.Acme.ID, order.ClientID)
	assert.Equal(t, env.fx.AcmeAdmin.Name, order.AuthorizedBy)
	assert.Equal(t, env.fx.AcmeAdmin.Email, order.AuthorizedEmail)

	count, err := env.alerts.UnreadCount(t.Context(), testutil.Principal(env.fx.Staff))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCreateWorkOrderDuplicateJobNo(t *testing.T) {
	env := newTestEnv(t)
	env.workOrder(t, "JOB-7")

	_, err := env.workOrders.Create(t.Context(), testutil.Principal(env.fx.AcmeAdmin), validWorkOrder("JOB-7"))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateWorkOrderForOtherClientDenied(t *testing.T) {
	env := newTestEnv(t)
	input := validWorkOrder("JOB-8")
	input.ClientID = &env.fx.Globex.ID

	_, err := env.workOrders.Create(t.Context(), testutil.Principal(env.fx.AcmeAdmin), input)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestUpdateWorkOrderKeepsSupplier(t *testing.T) {
	env := newTestEnv(t)
	order := env.workOrder(t, "JOB-2")
	staff := testutil.Principal(env.fx.Staff)

	updated, err := env.workOrders.Update(t.Context(), staff, order.ID, UpdateWorkOrderInput{
		PONumber: str(" PO-1 "),
		IsUrgent: flag(true),
		Version:  &order.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, "PO-1", updated.PONumber)
	assert.True(t, updated.IsUrgent)
	assert.Equal(t, testutil.DefaultSupplier, updated.Supplier())

	_, err = env.workOrders.Update(t.Context(), staff, order.ID, UpdateWorkOrderInput{PONumber: str("PO-2"), Version: &order.Version})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.workOrders.Update(t.Context(), staff, order.ID, UpdateWorkOrderInput{PropertyName: str(" ")})
	var verr *validation.Error
	assert.ErrorAs(t, err, &verr)
}

func TestWorkOrderStatusMachine(t *testing.T) {
	env := newTestEnv(t)
	staff := testutil.Principal(env.fx.Staff)
	order := env.workOrder(t, "JOB-3")

	_, err := env.workOrders.ChangeStatus(t.Context(), staff, order.ID, ChangeStatusInput{Status: model.WorkOrderCompleted})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.workOrders.ChangeStatus(t.Context(), testutil.Principal(env.fx.AcmeAdmin), order.ID, ChangeStatusInput{Status: model.WorkOrderInProgress})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.workOrders.ChangeStatus(t.Context(), staff, order.ID, ChangeStatusInput{Status: "paused"})
	var verr *validation.Error
	assert.ErrorAs(t, err, &verr)

	order, err = env.workOrders.ChangeStatus(t.Context(), staff, order.ID, ChangeStatusInput{Status: model.WorkOrderInProgress})
	require.NoError(t, err)
	assert.Equal(t, model.WorkOrderInProgress, order.Status)

	env.clock.Advance(time.Hour)
	order, err = env.workOrders.ChangeStatus(t.Context(), staff, order.ID, ChangeStatusInput{Status: model.WorkOrderCompleted, Note: "All done"})
	require.NoError(t, err)
	assert.Equal(t, model.WorkOrderCompleted, order.Status)
	require.Len(t, order.Notes, 2)
	assert.Equal(t, "Status changed from in-progress to completed: All done", order.Notes[1].Note)

	_, err = env.workOrders.ChangeStatus(t.Context(), staff, order.ID, ChangeStatusInput{Status: model.WorkOrderInProgress})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.workOrders.Update(t.Context(), staff, order.ID, UpdateWorkOrderInput{PONumber: str("late")})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelWorkOrder(t *testing.T) {
	env := newTestEnv(t)
	order := env.workOrder(t, "JOB-4")

	_, err := env.workOrders.ChangeStatus(t.Context(), testutil.Principal(env.fx.Staff), order.ID, ChangeStatusInput{Status: model.WorkOrderCancelled, Note: "dup"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	manager := testutil.Principal(env.fx.AcmeAdmin)
	_, err = env.workOrders.ChangeStatus(t.Context(), manager, order.ID, ChangeStatusInput{Status: model.WorkOrderCancelled})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "note", verr.Fields[0].Field)

	cancelled, err := env.workOrders.ChangeStatus(t.Context(), manager, order.ID, ChangeStatusInput{Status: model.WorkOrderCancelled, Note: "Tenant fixed it"})
	require.NoError(t, err)
	assert.Equal(t, model.WorkOrderCancelled, cancelled.Status)
	assert.Equal(t, "Tenant fixed it", cancelled.CancellationReason)
}

func TestWorkOrderTenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	order := env.workOrder(t, "JOB-5")

	_, err := env.workOrders.Get(t.Context(), testutil.Principal(env.fx.GlobexAdmin), order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	orders, page, err := env.workOrders.List(t.Context(), testutil.Principal(env.fx.AcmeUser), WorkOrderListInput{Page: model.NewPage(1, 10)})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(1), page.Total)

	orders, _, err = env.workOrders.List(t.Context(), testutil.Principal(env.fx.GlobexAdmin), WorkOrderListInput{Page: model.NewPage(1, 10)})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestWorkOrderNotesAndPhotos(t *testing.T) {
	env := newTestEnv(t)
	order := env.workOrder(t, "JOB-6")
	user := testutil.Principal(env.fx.AcmeUser)

	_, err := env.workOrders.AddNote(t.Context(), user, order.ID, "   ")
	var verr *validation.Error
	assert.ErrorAs(t, err, &verr)

	note, err := env.workOrders.AddNote(t.Context(), user, order.ID, "Gate code is 1234")
	require.NoError(t, err)
	assert.Equal(t, model.RoleClient, note.AuthorRole)

	photo, err := env.workOrders.AddPhoto(t.Context(), user, order.ID, PhotoInput{Filename: "latch.jpg", Size: 10, URL: "https://files.example/latch.jpg"})
	require.NoError(t, err)

	_, err = env.workOrders.AddPhoto(t.Context(), user, order.ID, PhotoInput{Filename: "x.jpg", URL: "not a url"})
	assert.ErrorAs(t, err, &verr)

	err = env.workOrders.DeletePhoto(t.Context(), testutil.Principal(env.fx.AcmeAdmin), photo.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, env.workOrders.DeletePhoto(t.Context(), testutil.Principal(env.fx.Staff), photo.ID))
	fetched, err := env.workOrders.Get(t.Context(), user, order.ID)
	require.NoError(t, err)
	assert.Len(t, fetched.Notes, 1)
	assert.Empty(t, fetched.Photos)
}

func TestWorkOrderSummary(t *testing.T) {
	env := newTestEnv(t)
	env.workOrder(t, "JOB-10")
	urgent := validWorkOrder("JOB-11")
	urgent.IsUrgent = true
	_, err := env.workOrders.Create(t.Context(), testutil.Principal(env.fx.AcmeAdmin), urgent)
	require.NoError(t, err)

	summary, err := env.workOrders.Summary(t.Context(), testutil.Principal(env.fx.AcmeAdmin))
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Total)
	assert.Equal(t, int64(2), summary.ByStatus[model.WorkOrderPending])
	assert.Equal(t, int64(0), summary.ByStatus[model.WorkOrderCancelled])
	assert.Equal(t, int64(1), summary.Urgent)
}
