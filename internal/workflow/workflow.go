// Package workflow holds the quote lifecycle: which action moves a quote from
// one status to the next and which roles may trigger it. Anything not listed in
// the rule table is rejected.
package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/williamsps/maintenance-portal/internal/model"
)

type Action string

const (
	ActionSaveDraft    Action = "save_draft"
	ActionSubmit       Action = "submit"
	ActionRequestInfo  Action = "request_info"
	ActionProvideQuote Action = "provide_quote"
	ActionApprove      Action = "approve"
	ActionDecline      Action = "decline"
	ActionConvert      Action = "convert"
	ActionExpire       Action = "expire"
)

var (
	ErrTransitionNotAllowed = errors.New("transition not allowed")
	ErrRoleNotAllowed       = errors.New("role not allowed")
	ErrTerminal             = errors.New("quote is closed")
)

type Rule struct {
	From   model.QuoteStatus
	Action Action
	To     model.QuoteStatus
	Roles  []model.Role
}

var (
	clientSide   = []model.Role{model.RoleClientAdmin, model.RoleAdmin}
	providerSide = []model.Role{model.RoleStaff, model.RoleAdmin}
)

var rules = []Rule{
	{From: model.QuoteStatusDraft, Action: ActionSaveDraft, To: model.QuoteStatusDraft, Roles: clientSide},
	{From: model.QuoteStatusDraft, Action: ActionSubmit, To: model.QuoteStatusSubmitted, Roles: clientSide},
	{From: model.QuoteStatusSubmitted, Action: ActionRequestInfo, To: model.QuoteStatusInformationRequested, Roles: providerSide},
	{From: model.QuoteStatusSubmitted, Action: ActionProvideQuote, To: model.QuoteStatusQuoted, Roles: providerSide},
	{From: model.QuoteStatusInformationRequested, Action: ActionProvideQuote, To: model.QuoteStatusQuoted, Roles: providerSide},
	{From: model.QuoteStatusQuoted, Action: ActionApprove, To: model.QuoteStatusApproved, Roles: clientSide},
	{From: model.QuoteStatusQuoted, Action: ActionDecline, To: model.QuoteStatusDeclined, Roles: clientSide},
	{From: model.QuoteStatusApproved, Action: ActionConvert, To: model.QuoteStatusConverted, Roles: providerSide},
}

func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

func IsTerminal(status model.QuoteStatus) bool {
	switch status {
	case model.QuoteStatusDeclined, model.QuoteStatusExpired, model.QuoteStatusConverted:
		return true
	}
	return false
}

// Authorize returns the rule for (from, action) when role may apply it.
func Authorize(from model.QuoteStatus, action Action, role model.Role) (Rule, error) {
	if IsTerminal(from) {
		return Rule{}, fmt.Errorf("%w: status %q", ErrTerminal, from)
	}
	if action == ActionExpire {
		if role != model.RoleSystem {
			return Rule{}, fmt.Errorf("%w: %s cannot expire quotes", ErrRoleNotAllowed, role)
		}
		return Rule{From: from, Action: ActionExpire, To: model.QuoteStatusExpired, Roles: []model.Role{model.RoleSystem}}, nil
	}
	for _, rule := range rules {
		if rule.From != from || rule.Action != action {
			continue
		}
		for _, allowed := range rule.Roles {
			if allowed == role {
				return rule, nil
			}
		}
		return Rule{}, fmt.Errorf("%w: %s cannot %s a %s quote", ErrRoleNotAllowed, role, action, from)
	}
	return Rule{}, fmt.Errorf("%w: cannot %s a %s quote", ErrTransitionNotAllowed, action, from)
}

// AvailableActions lists what role may do next on a quote in status.
func AvailableActions(status model.QuoteStatus, role model.Role) []Action {
	if IsTerminal(status) {
		return []Action{}
	}
	actions := []Action{}
	for _, rule := range rules {
		if rule.From != status {
			continue
		}
		for _, allowed := range rule.Roles {
			if allowed == role {
				actions = append(actions, rule.Action)
				break
			}
		}
	}
	return actions
}

// ExpiryDue reports whether a quote has outlived its validity date.
func ExpiryDue(status model.QuoteStatus, validUntil *time.Time, now time.Time) bool {
	if IsTerminal(status) || validUntil == nil {
		return false
	}
	return validUntil.Before(now)
}

// MessageType is the audit entry written when action is applied by role.
// Save-draft edits write none.
func MessageType(action Action, role model.Role) (model.MessageType, bool) {
	switch action {
	case ActionSubmit:
		return model.MessageStatusChange, true
	case ActionRequestInfo:
		return model.MessageInfoRequested, true
	case ActionProvideQuote:
		return model.MessageQuoteProvided, true
	case ActionApprove:
		return model.MessageApproved, true
	case ActionDecline:
		if role.ProviderSide() {
			return model.MessageDeclinedByStaff, true
		}
		return model.MessageDeclinedByClient, true
	case ActionExpire:
		return model.MessageExpired, true
	case ActionConvert:
		return model.MessageConverted, true
	}
	return "", false
}
