package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamsps/maintenance-portal/internal/model"
)

type move struct {
	from   model.QuoteStatus
	action Action
	role   model.Role
}

var allowedMoves = map[move]model.QuoteStatus{
	{model.QuoteStatusDraft, ActionSaveDraft, model.RoleClientAdmin}:                 model.QuoteStatusDraft,
	{model.QuoteStatusDraft, ActionSaveDraft, model.RoleAdmin}:                       model.QuoteStatusDraft,
	{model.QuoteStatusDraft, ActionSubmit, model.RoleClientAdmin}:                    model.QuoteStatusSubmitted,
	{model.QuoteStatusDraft, ActionSubmit, model.RoleAdmin}:                          model.QuoteStatusSubmitted,
	{model.QuoteStatusSubmitted, ActionRequestInfo, model.RoleStaff}:                 model.QuoteStatusInformationRequested,
	{model.QuoteStatusSubmitted, ActionRequestInfo, model.RoleAdmin}:                 model.QuoteStatusInformationRequested,
	{model.QuoteStatusSubmitted, ActionProvideQuote, model.RoleStaff}:                model.QuoteStatusQuoted,
	{model.QuoteStatusSubmitted, ActionProvideQuote, model.RoleAdmin}:                model.QuoteStatusQuoted,
	{model.QuoteStatusInformationRequested, ActionProvideQuote, model.RoleStaff}:     model.QuoteStatusQuoted,
	{model.QuoteStatusInformationRequested, ActionProvideQuote, model.RoleAdmin}:     model.QuoteStatusQuoted,
	{model.QuoteStatusQuoted, ActionApprove, model.RoleClientAdmin}:                  model.QuoteStatusApproved,
	{model.QuoteStatusQuoted, ActionApprove, model.RoleAdmin}:                        model.QuoteStatusApproved,
	{model.QuoteStatusQuoted, ActionDecline, model.RoleClientAdmin}:                  model.QuoteStatusDeclined,
	{model.QuoteStatusQuoted, ActionDecline, model.RoleAdmin}:                        model.QuoteStatusDeclined,
	{model.QuoteStatusApproved, ActionConvert, model.RoleStaff}:                      model.QuoteStatusConverted,
	{model.QuoteStatusApproved, ActionConvert, model.RoleAdmin}:                      model.QuoteStatusConverted,
}

var userActions = []Action{
	ActionSaveDraft, ActionSubmit, ActionRequestInfo, ActionProvideQuote,
	ActionApprove, ActionDecline, ActionConvert,
}

var userRoles = []model.Role{model.RoleAdmin, model.RoleStaff, model.RoleClientAdmin, model.RoleClient}

func TestAuthorizeClosure(t *testing.T) {
	for _, from := range model.QuoteStatuses {
		for _, action := range userActions {
			for _, role := range userRoles {
				rule, err := Authorize(from, action, role)
				want, ok := allowedMoves[move{from, action, role}]
				if ok {
					require.NoError(t, err, "%s %s by %s", from, action, role)
					assert.Equal(t, want, rule.To)
					continue
				}
				require.Error(t, err, "%s %s by %s should be rejected", from, action, role)
			}
		}
	}
}

func TestAuthorizeErrorKinds(t *testing.T) {
	_, err := Authorize(model.QuoteStatusQuoted, ActionApprove, model.RoleStaff)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	_, err = Authorize(model.QuoteStatusDraft, ActionApprove, model.RoleClientAdmin)
	assert.ErrorIs(t, err, ErrTransitionNotAllowed)

	for _, status := range []model.QuoteStatus{model.QuoteStatusDeclined, model.QuoteStatusExpired, model.QuoteStatusConverted} {
		_, err = Authorize(status, ActionSaveDraft, model.RoleAdmin)
		assert.ErrorIs(t, err, ErrTerminal)
		_, err = Authorize(status, ActionExpire, model.RoleSystem)
		assert.ErrorIs(t, err, ErrTerminal)
	}
}

func TestExpireOnlyBySystem(t *testing.T) {
	for _, from := range model.QuoteStatuses {
		if IsTerminal(from) {
			continue
		}
		rule, err := Authorize(from, ActionExpire, model.RoleSystem)
		require.NoError(t, err)
		assert.Equal(t, model.QuoteStatusExpired, rule.To)

		for _, role := range userRoles {
			_, err := Authorize(from, ActionExpire, role)
			assert.ErrorIs(t, err, ErrRoleNotAllowed)
		}
	}
}

func TestAvailableActions(t *testing.T) {
	assert.ElementsMatch(t, []Action{ActionSaveDraft, ActionSubmit}, AvailableActions(model.QuoteStatusDraft, model.RoleClientAdmin))
	assert.Empty(t, AvailableActions(model.QuoteStatusDraft, model.RoleStaff))
	assert.ElementsMatch(t, []Action{ActionRequestInfo, ActionProvideQuote}, AvailableActions(model.QuoteStatusSubmitted, model.RoleStaff))
	assert.ElementsMatch(t, []Action{ActionApprove, ActionDecline}, AvailableActions(model.QuoteStatusQuoted, model.RoleAdmin))
	assert.Empty(t, AvailableActions(model.QuoteStatusQuoted, model.RoleClient))
	assert.Empty(t, AvailableActions(model.QuoteStatusConverted, model.RoleAdmin))
}

func TestExpiryDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, ExpiryDue(model.QuoteStatusQuoted, &past, now))
	assert.False(t, ExpiryDue(model.QuoteStatusQuoted, &future, now))
	assert.False(t, ExpiryDue(model.QuoteStatusQuoted, nil, now))
	assert.False(t, ExpiryDue(model.QuoteStatusDeclined, &past, now))
	assert.False(t, ExpiryDue(model.QuoteStatusQuoted, &now, now))
}

func TestMessageType(t *testing.T) {
	typ, ok := MessageType(ActionDecline, model.RoleClientAdmin)
	require.True(t, ok)
	assert.Equal(t, model.MessageDeclinedByClient, typ)

	typ, ok = MessageType(ActionDecline, model.RoleAdmin)
	require.True(t, ok)
	assert.Equal(t, model.MessageDeclinedByStaff, typ)

	typ, ok = MessageType(ActionApprove, model.RoleAdmin)
	require.True(t, ok)
	assert.Equal(t, model.MessageApproved, typ)

	_, ok = MessageType(ActionSaveDraft, model.RoleAdmin)
	assert.False(t, ok)
}
