package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamsps/maintenance-portal/internal/model"
	"github.com/williamsps/maintenance-portal/internal/testutil"
	"github.com/williamsps/maintenance-portal/internal/validation"
	"github.com/williamsps/maintenance-portal/internal/workflow"
)

func TestCreateDraft(t *testing.T) {
	env := newTestEnv(t)
	view := env.draftQuote(t)

	assert.Equal(t, model.QuoteStatusDraft, view.Status)
	assert.Nil(t, view.QuoteNumber)
	assert.Equal(t, env.fx.Acme.ID, view.ClientID)
	assert.Equal(t, []workflow.Action{workflow.ActionSaveDraft, workflow.ActionSubmit}, view.AvailableActions)

	messages, err := env.quotes.Messages(t.Context(), testutil.Principal(env.fx.AcmeAdmin), view.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestCreateRequiresClientAdminOrAdmin(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.quotes.Create(t.Context(), testutil.Principal(env.fx.AcmeUser), CreateQuoteInput{Fields: completeFields()})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.quotes.Create(t.Context(), testutil.Principal(env.fx.Staff), CreateQuoteInput{Fields: completeFields()})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = env.quotes.Create(t.Context(), testutil.Principal(env.fx.Admin), CreateQuoteInput{Fields: completeFields()})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "client_id", verr.Fields[0].Field)

	view, err := env.quotes.Create(t.Context(), testutil.AdminIn(env.fx.Admin, env.fx.Globex.ID), CreateQuoteInput{Fields: completeFields()})
	require.NoError(t, err)
	assert.Equal(t, env.fx.Globex.ID, view.ClientID)
}

func TestSaveDraftLeavesNoMessage(t *testing.T) {
	env := newTestEnv(t)
	view := env.draftQuote(t)
	manager := testutil.Principal(env.fx.AcmeAdmin)

	updated, err := env.quotes.Update(t.Context(), manager, view.ID, UpdateQuoteInput{
		Fields:  QuoteFields{Title: str("  New title  "), IsUrgent: flag(true)},
		Version: &view.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.True(t, updated.IsUrgent)
	assert.Equal(t, view.Version+1, updated.Version)

	messages, err := env.quotes.Messages(t.Context(), manager, view.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestUpdateRejectsStaleVersion(t *testing.T) {
	env := newTestEnv(t)
	view := env.draftQuote(t)
	manager := testutil.Principal(env.fx.AcmeAdmin)
	stale := view.Version

	_, err := env.quotes.Update(t.Context(), manager, view.ID, UpdateQuoteInput{Fields: QuoteFields{Title: str("First")}, Version: &stale})
	require.NoError(t, err)

	_, err = env.quotes.Update(t.Context(), manager, view.ID, UpdateQuoteInput{Fields: QuoteFields{Title: str("Second")}, Version: &stale})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "First", env.reload(t, view.ID).Title)
}

func TestSubmitValidatesRequiredFields(t *testing.T) {
	env := newTestEnv(t)
	manager := testutil.Principal(env.fx.AcmeAdmin)
	view, err := env.quotes.Create(t.Context(), manager, CreateQuoteInput{Fields: QuoteFields{
		Title:        str("Leaky tap"),
		Description:  str("too short"),
		ContactEmail: str("carla@acme.test"),
	}})
	require.NoError(t, err)

	_, err = env.quotes.Submit(t.Context(), manager, view.ID, nil)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)

	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, "property name is required", fields["property_name"])
	assert.Equal(t, "contact person is required", fields["contact_person"])
	assert.Contains(t, fields["description"], "at least 20 characters")
	assert.NotContains(t, fields, "title")

	stored := env.reload(t, view.ID)
	assert.Equal(t, model.QuoteStatusDraft, stored.Status)
	assert.Nil(t, stored.QuoteNumber)
}

func TestSubmitAssignsSequentialQuoteNumbers(t *testing.T) {
	env := newTestEnv(t)

	first := env.submittedQuote(t)
	second := env.submittedQuote(t)

	require.NotNil(t, first.QuoteNumber)
	assert.Equal(t, "QTE-2026-001", *first.QuoteNumber)
	assert.Equal(t, "QTE-2026-002", *second.QuoteNumber)
	assert.Equal(t, model.QuoteStatusSubmitted, first.Status)
	assert.NotNil(t, first.SubmittedAt)

	messages, err := env.quotes.Messages(t.Context(), testutil.Principal(env.fx.Staff), first.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, model.MessageStatusChange, messages[0].Type)

	env.clock.Advance(365 * 24 * time.Hour)
	next := env.submittedQuote(t)
	assert.Equal(t, "QTE-2027-001", *next.QuoteNumber)
}

func TestSubmitNotifiesStaff(t *testing.T) {
	env := newTestEnv(t)
	env.submittedQuote(t)

	count, err := env.alerts.UnreadCount(t.Context(), testutil.Principal(env.fx.Staff))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = env.alerts.UnreadCount(t.Context(), testutil.Principal(env.fx.AcmeAdmin))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRequestInfoThenProvide(t *testing.T) {
	env := newTestEnv(t)
	staff := testutil.Principal(env.fx.Staff)
	view := env.submittedQuote(t)

	_, err := env.quotes.RequestInfo(t.Context(), staff, view.ID, RequestInfoInput{Message: "   "})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)

	view, err = env.quotes.RequestInfo(t.Context(), staff, view.ID, RequestInfoInput{Message: "Which side of the house?"})
	require.NoError(t, err)
	assert.Equal(t, model.QuoteStatusInformationRequested, view.Status)

	env.clock.Advance(time.Minute)
	manager := testutil.Principal(env.fx.AcmeAdmin)
	_, err = env.quotes.Update(t.Context(), manager, view.ID, UpdateQuoteInput{Fields: QuoteFields{Title: str("Edited")}})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	reply, err := env.quotes.PostMessage(t.Context(), manager, view.ID, PostMessageInput{Type: model.MessageResponse, Message: "The north side."})
	require.NoError(t, err)
	assert.Equal(t, model.MessageResponse, reply.Type)
	assert.Equal(t, model.QuoteStatusInformationRequested, env.reload(t, view.ID).Status)

	env.clock.Advance(time.Minute)
	view, err = env.quotes.ProvideQuote(t.Context(), staff, view.ID, ProvideQuoteInput{EstimatedCost: num(120), EstimatedHours: num(2)})
	require.NoError(t, err)
	assert.Equal(t, model.QuoteStatusQuoted, view.Status)

	messages, err := env.quotes.Messages(t.Context(), staff, view.ID)
	require.NoError(t, err)
	types := make([]model.MessageType, len(messages))
	for i, m := range messages {
		types[i] = m.Type
	}
	assert.Equal(t, []model.MessageType{model.MessageStatusChange, model.MessageInfoRequested, model.MessageResponse, model.MessageQuoteProvided}, types)
	assert.Equal(t, "Which side of the house?", messages[1].Message)
}

func TestProvideQuoteValidation(t *testing.T) {
	env := newTestEnv(t)
	staff := testutil.Principal(env.fx.Staff)
	view := env.submittedQuote(t)
	today := env.clock.Now()

	cases := []struct {
		name  string
		input ProvideQuoteInput
		field string
	}{
		{"zero cost", ProvideQuoteInput{EstimatedCost: num(0), EstimatedHours: num(1)}, "estimated_cost"},
		{"missing hours", ProvideQuoteInput{EstimatedCost: num(10)}, "estimated_hours"},
		{"valid until today", ProvideQuoteInput{EstimatedCost: num(10), EstimatedHours: num(1), QuoteValidUntil: at(today)}, "quote_valid_until"},
		{"blank line description", ProvideQuoteInput{
			EstimatedCost: num(10), EstimatedHours: num(1),
			ItemizedBreakdown: []BreakdownLineInput{{Description: " ", Cost: num(5)}},
		}, "itemized_breakdown[0].description"},
		{"negative line cost", ProvideQuoteInput{
			EstimatedCost: num(10), EstimatedHours: num(1),
			ItemizedBreakdown: []BreakdownLineInput{{Description: "Nails", Cost: num(-1)}},
		}, "itemized_breakdown[0].cost"},
		{"unknown category", ProvideQuoteInput{
			EstimatedCost: num(10), EstimatedHours: num(1),
			ItemizedBreakdown: []BreakdownLineInput{{Category: "snacks", Description: "Pies", Cost: num(5)}},
		}, "itemized_breakdown[0].category"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.quotes.ProvideQuote(t.Context(), staff, view.ID, tc.input)
			var verr *validation.Error
			require.ErrorAs(t, err, &verr)
			found := false
			for _, f := range verr.Fields {
				if f.Field == tc.field {
					found = true
				}
			}
			assert.True(t, found, "expected error on %s, got %+v", tc.field, verr.Fields)
			assert.Equal(t, model.QuoteStatusSubmitted, env.reload(t, view.ID).Status)
		})
	}
}

func TestProvideQuoteRecordsBreakdownAndAudit(t *testing.T) {
	env := newTestEnv(t)
	validUntil := env.clock.Now().AddDate(0, 0, 30)
	view := env.quotedQuote(t, &validUntil)

	assert.Equal(t, 350.50, view.BreakdownTotal)
	require.Len(t, view.ItemizedBreakdown, 2)
	assert.Equal(t, model.CategoryLabor, view.ItemizedBreakdown[1].Category)
	require.NotNil(t, view.QuoteValidUntil)
	assert.Equal(t, "2026-04-09", view.QuoteValidUntil.Format("2006-01-02"))

	stored := env.reload(t, view.ID)
	require.Len(t, stored.ItemizedBreakdown, 2)
	assert.Equal(t, 250.5, stored.ItemizedBreakdown[1].Cost)
	assert.Equal(t, 350.50, stored.BreakdownTotal())

	messages, err := env.quotes.Messages(t.Context(), testutil.Principal(env.fx.AcmeAdmin), view.ID)
	require.NoError(t, err)
	last := messages[len(messages)-1]
	assert.Equal(t, model.MessageQuoteProvided, last.Type)
	assert.Nil(t, last.PreviousCost)
	require.NotNil(t, last.NewCost)
	assert.Equal(t, 350.5, *last.NewCost)

	count, err := env.alerts.UnreadCount(t.Context(), testutil.Principal(env.fx.AcmeAdmin))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestApproveGuard(t *testing.T) {
	t.Run("no expiry", func(t *testing.T) {
		env := newTestEnv(t)
		view := env.quotedQuote(t, nil)
		approved, err := env.quotes.Approve(t.Context(), testutil.Principal(env.fx.AcmeAdmin), view.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, model.QuoteStatusApproved, approved.Status)
	})

	t.Run("future expiry", func(t *testing.T) {
		env := newTestEnv(t)
		validUntil := env.clock.Now().AddDate(0, 0, 7)
		view := env.quotedQuote(t, &validUntil)
		approved, err := env.quotes.Approve(t.Context(), testutil.Principal(env.fx.AcmeAdmin), view.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, model.QuoteStatusApproved, approved.Status)
	})

	t.Run("past expiry", func(t *testing.T) {
		env := newTestEnv(t)
		validUntil := env.clock.Now().AddDate(0, 0, 7)
		view := env.quotedQuote(t, &validUntil)
		env.clock.Advance(8 * 24 * time.Hour)

		_, err := env.quotes.Approve(t.Context(), testutil.Principal(env.fx.AcmeAdmin), view.ID, nil)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		stored := env.reload(t, view.ID)
		assert.Equal(t, model.QuoteStatusExpired, stored.Status)
		messages, err := env.quotes.Messages(t.Context(), testutil.Principal(env.fx.Staff), view.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MessageExpired, messages[len(messages)-1].Type)
		assert.Nil(t, messages[len(messages)-1].AuthorID)
	})
}

func TestDeclineMessageDependsOnRole(t *testing.T) {
	env := newTestEnv(t)

	view := env.quotedQuote(t, nil)
	declined, err := env.quotes.Decline(t.Context(), testutil.Principal(env.fx.AcmeAdmin), view.ID, DeclineInput{Reason: "Too expensive"})
	require.NoError(t, err)
	assert.Equal(t, model.QuoteStatusDeclined, declined.Status)
	assert.Equal(t, "Too expensive", declined.DeclineReason)
	assert.Empty(t, declined.AvailableActions)

	messages, err := env.quotes.Messages(t.Context(), testutil.Principal(env.fx.Staff), view.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MessageDeclinedByClient, messages[len(messages)-1].Type)

	other := env.quotedQuote(t, nil)
	_, err = env.quotes.Decline(t.Context(), testutil.Principal(env.fx.Admin), other.ID, DeclineInput{})
	require.NoError(t, err)
	messages, err = env.quotes.Messages(t.Context(), testutil.Principal(env.fx.Staff), other.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MessageDeclinedByStaff, messages[len(messages)-1].Type)
}

func TestConvertCreatesWorkOrderWithDefaultSupplier(t *testing.T) {
	env := newTestEnv(t)
	view := env.approvedQuote(t)
	staff := testutil.Principal(env.fx.Staff)

	order, err := env.quotes.Convert(t.Context(), staff, view.ID, ConvertInput{PONumber: " PO-77 "})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, "WO-2026-001", order.JobNo)
	assert.Equal(t, testutil.DefaultSupplier, order.Supplier())
	assert.Equal(t, "PO-77", order.PONumber)
	assert.Equal(t, view.PropertyName, order.PropertyName)
	assert.Equal(t, view.PropertyAddress, order.PropertyAddress)
	require.NotNil(t, order.QuoteID)
	assert.Equal(t, view.ID, *order.QuoteID)
	require.NotNil(t, order.ScheduleDate)
	assert.Equal(t, "2026-03-10", order.ScheduleDate.Format("2006-01-02"))

	stored := env.reload(t, view.ID)
	assert.Equal(t, model.QuoteStatusConverted, stored.Status)
	require.NotNil(t, stored.ConvertedWorkOrderID)
	assert.Equal(t, order.ID, *stored.ConvertedWorkOrderID)

	fetched, err := env.workOrders.Get(t.Context(), staff, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.JobNo, fetched.JobNo)

	_, err = env.quotes.Convert(t.Context(), staff, view.ID, ConvertInput{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConvertRollsBackOnDuplicateJobNo(t *testing.T) {
	env := newTestEnv(t)
	view := env.approvedQuote(t)
	staff := testutil.Principal(env.fx.Staff)

	_, err := env.workOrders.Create(t.Context(), testutil.AdminIn(env.fx.Admin, env.fx.Acme.ID), CreateWorkOrderInput{
		JobNo:           "WO-2026-001",
		PropertyName:    "Elsewhere",
		PropertyAddress: "2 Other Rd",
		PropertyPhone:   "555",
		Description:     "Manual job",
	})
	require.NoError(t, err)

	_, err = env.quotes.Convert(t.Context(), staff, view.ID, ConvertInput{})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, model.QuoteStatusApproved, env.reload(t, view.ID).Status)
}

// Every (status, action, role) outside the rule table is rejected and leaves
// the stored quote untouched.
func TestTransitionClosure(t *testing.T) {
	env := newTestEnv(t)
	staff := testutil.Principal(env.fx.Staff)
	manager := testutil.Principal(env.fx.AcmeAdmin)

	byStatus := map[model.QuoteStatus]uuid.UUID{
		model.QuoteStatusDraft:     env.draftQuote(t).ID,
		model.QuoteStatusSubmitted: env.submittedQuote(t).ID,
		model.QuoteStatusQuoted:    env.quotedQuote(t, nil).ID,
		model.QuoteStatusApproved:  env.approvedQuote(t).ID,
	}

	info := env.submittedQuote(t)
	_, err := env.quotes.RequestInfo(t.Context(), staff, info.ID, RequestInfoInput{Message: "?"})
	require.NoError(t, err)
	byStatus[model.QuoteStatusInformationRequested] = info.ID

	declined := env.quotedQuote(t, nil)
	_, err = env.quotes.Decline(t.Context(), manager, declined.ID, DeclineInput{})
	require.NoError(t, err)
	byStatus[model.QuoteStatusDeclined] = declined.ID

	converted := env.approvedQuote(t)
	_, err = env.quotes.Convert(t.Context(), staff, converted.ID, ConvertInput{})
	require.NoError(t, err)
	byStatus[model.QuoteStatusConverted] = converted.ID

	actors := map[model.Role]model.Principal{
		model.RoleAdmin:       testutil.AdminIn(env.fx.Admin, env.fx.Acme.ID),
		model.RoleStaff:       staff,
		model.RoleClientAdmin: manager,
		model.RoleClient:      testutil.Principal(env.fx.AcmeUser),
	}

	run := func(action workflow.Action, actor model.Principal, id uuid.UUID) error {
		ctx := t.Context()
		var err error
		switch action {
		case workflow.ActionSaveDraft:
			_, err = env.quotes.Update(ctx, actor, id, UpdateQuoteInput{Fields: QuoteFields{Title: str("x")}})
		case workflow.ActionSubmit:
			_, err = env.quotes.Submit(ctx, actor, id, nil)
		case workflow.ActionRequestInfo:
			_, err = env.quotes.RequestInfo(ctx, actor, id, RequestInfoInput{Message: "details please"})
		case workflow.ActionProvideQuote:
			_, err = env.quotes.ProvideQuote(ctx, actor, id, ProvideQuoteInput{EstimatedCost: num(1), EstimatedHours: num(1)})
		case workflow.ActionApprove:
			_, err = env.quotes.Approve(ctx, actor, id, nil)
		case workflow.ActionDecline:
			_, err = env.quotes.Decline(ctx, actor, id, DeclineInput{})
		case workflow.ActionConvert:
			_, err = env.quotes.Convert(ctx, actor, id, ConvertInput{})
		}
		return err
	}

	actions := []workflow.Action{
		workflow.ActionSaveDraft, workflow.ActionSubmit, workflow.ActionRequestInfo,
		workflow.ActionProvideQuote, workflow.ActionApprove, workflow.ActionDecline, workflow.ActionConvert,
	}
	for status, id := range byStatus {
		for _, action := range actions {
			for role, actor := range actors {
				if _, err := workflow.Authorize(status, action, role); err == nil {
					continue
				}
				before := env.reload(t, id)
				err := run(action, actor, id)
				assert.Error(t, err, "%s %s by %s", status, action, role)
				assert.True(t, errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrPermissionDenied),
					"%s %s by %s: %v", status, action, role, err)
				after := env.reload(t, id)
				assert.Equal(t, before.Status, after.Status)
				assert.Equal(t, before.Version, after.Version)
			}
		}
		assert.Equal(t, status, env.reload(t, id).Status)
	}
}

func TestTerminalQuoteLocksMessagesAndAttachments(t *testing.T) {
	env := newTestEnv(t)
	manager := testutil.Principal(env.fx.AcmeAdmin)
	view := env.quotedQuote(t, nil)

	attachment, err := env.quotes.AddAttachment(t.Context(), manager, view.ID, AttachmentInput{
		Filename: "photo.jpg", Size: 1024, URL: "https://files.example/photo.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, model.SideClient, attachment.UploadedBySide)

	_, err = env.quotes.Decline(t.Context(), manager, view.ID, DeclineInput{})
	require.NoError(t, err)

	_, err = env.quotes.PostMessage(t.Context(), manager, view.ID, PostMessageInput{Message: "hello?"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.quotes.AddAttachment(t.Context(), manager, view.ID, AttachmentInput{
		Filename: "more.jpg", Size: 1, URL: "https://files.example/more.jpg",
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = env.quotes.DeleteAttachment(t.Context(), manager, attachment.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.quotes.Approve(t.Context(), manager, view.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMessagesAndAttachmentSides(t *testing.T) {
	env := newTestEnv(t)
	manager := testutil.Principal(env.fx.AcmeAdmin)
	staff := testutil.Principal(env.fx.Staff)
	view := env.submittedQuote(t)

	msg, err := env.quotes.PostMessage(t.Context(), staff, view.ID, PostMessageInput{Type: model.MessageQuestion, Message: " Is there roof access? "})
	require.NoError(t, err)
	assert.Equal(t, "Is there roof access?", msg.Message)
	assert.Equal(t, model.RoleStaff, msg.AuthorRole)

	_, err = env.quotes.PostMessage(t.Context(), manager, view.ID, PostMessageInput{Type: model.MessageApproved, Message: "sneaky"})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)

	attachment, err := env.quotes.AddAttachment(t.Context(), staff, view.ID, AttachmentInput{
		Filename: "plan.pdf", Size: 2048, URL: "https://files.example/plan.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, model.SideProvider, attachment.UploadedBySide)

	err = env.quotes.DeleteAttachment(t.Context(), manager, attachment.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, env.quotes.DeleteAttachment(t.Context(), staff, attachment.ID))
	attachments, err := env.quotes.Attachments(t.Context(), manager, view.ID)
	require.NoError(t, err)
	assert.Empty(t, attachments)
}

func TestTenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	view := env.draftQuote(t)

	_, err := env.quotes.Get(t.Context(), testutil.Principal(env.fx.GlobexAdmin), view.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.quotes.Get(t.Context(), testutil.AdminIn(env.fx.Admin, env.fx.Globex.ID), view.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.quotes.Get(t.Context(), testutil.Principal(env.fx.Admin), view.ID)
	assert.NoError(t, err)

	list, page, err := env.quotes.List(t.Context(), testutil.Principal(env.fx.GlobexAdmin), QuoteListInput{Page: model.NewPage(1, 20)})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int64(0), page.Total)
}

func TestExpireDue(t *testing.T) {
	env := newTestEnv(t)
	soon := env.clock.Now().AddDate(0, 0, 2)
	later := env.clock.Now().AddDate(0, 0, 20)
	a := env.quotedQuote(t, &soon)
	b := env.quotedQuote(t, &later)

	count, err := env.quotes.ExpireDue(t.Context())
	require.NoError(t, err)
	assert.Zero(t, count)

	env.clock.Advance(3 * 24 * time.Hour)
	count, err = env.quotes.ExpireDue(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, model.QuoteStatusExpired, env.reload(t, a.ID).Status)
	assert.Equal(t, model.QuoteStatusQuoted, env.reload(t, b.ID).Status)

	count, err = env.quotes.ExpireDue(t.Context())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListFiltersAndSummary(t *testing.T) {
	env := newTestEnv(t)
	manager := testutil.Principal(env.fx.AcmeAdmin)
	env.draftQuote(t)
	env.submittedQuote(t)
	quoted := env.quotedQuote(t, nil)
	_, err := env.quotes.Update(t.Context(), manager, env.draftQuote(t).ID, UpdateQuoteInput{Fields: QuoteFields{Title: str("Fence painting"), IsUrgent: flag(true)}})
	require.NoError(t, err)

	list, page, err := env.quotes.List(t.Context(), manager, QuoteListInput{Status: model.QuoteStatusQuoted, Page: model.NewPage(1, 20)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, quoted.ID, list[0].ID)
	assert.Equal(t, 350.5, list[0].BreakdownTotal)
	assert.Equal(t, int64(1), page.Total)

	list, _, err = env.quotes.List(t.Context(), manager, QuoteListInput{Search: "FENCE", Page: model.NewPage(1, 20)})
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, _, err = env.quotes.List(t.Context(), manager, QuoteListInput{Status: "Bogus"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	summary, err := env.quotes.Summary(t.Context(), manager)
	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.Total)
	assert.Equal(t, int64(2), summary.ByStatus[model.QuoteStatusDraft])
	assert.Equal(t, int64(1), summary.Urgent)
	assert.Equal(t, int64(1), summary.AwaitingAction)

	staffSummary, err := env.quotes.Summary(t.Context(), testutil.Principal(env.fx.Staff))
	require.NoError(t, err)
	assert.Equal(t, int64(1), staffSummary.AwaitingAction)
}
