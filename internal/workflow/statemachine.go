package workflow

import (
	"strings"

	"github.com/civictrack/backend/internal/models"
)

// TransitionRule is one legal edge in the complaint lifecycle: which action
// moves a complaint from one status to another, who may perform it, and
// whether a justification is mandatory.
type TransitionRule struct {
	From            models.ComplaintStatus
	To              models.ComplaintStatus
	Action          models.ComplaintAction
	Roles           []models.Role
	RemarksRequired bool
}

// transitionTable is the sole authority on status movement. It doubles as
// the concurrency-control mechanism: an apply whose From no longer matches
// the stored status fails as ErrInvalidTransition.
var transitionTable = []TransitionRule{
	{From: models.StatusSubmitted, To: models.StatusAssigned, Action: models.ActionAssign,
		Roles: []models.Role{models.RoleSystem, models.RoleWardOfficer, models.RoleAdmin}},
	{From: models.StatusAssigned, To: models.StatusInProgress, Action: models.ActionStartWork,
		Roles: []models.Role{models.RoleDepartmentOfficer, models.RoleAdmin}},
	{From: models.StatusInProgress, To: models.StatusResolved, Action: models.ActionResolve,
		Roles: []models.Role{models.RoleDepartmentOfficer, models.RoleAdmin}},
	{From: models.StatusResolved, To: models.StatusApproved, Action: models.ActionApprove,
		Roles: []models.Role{models.RoleWardOfficer, models.RoleAdmin}, RemarksRequired: true},
	{From: models.StatusResolved, To: models.StatusClosed, Action: models.ActionClose,
		Roles: []models.Role{models.RoleWardOfficer, models.RoleAdmin}, RemarksRequired: true},
	{From: models.StatusResolved, To: models.StatusInProgress, Action: models.ActionReject,
		Roles: []models.Role{models.RoleWardOfficer, models.RoleAdmin}, RemarksRequired: true},
	{From: models.StatusApproved, To: models.StatusClosed, Action: models.ActionClose,
		Roles: []models.Role{models.RoleAdmin}},
	{From: models.StatusApproved, To: models.StatusReopened, Action: models.ActionReopen,
		Roles: []models.Role{models.RoleCitizen, models.RoleAdmin}},
	{From: models.StatusClosed, To: models.StatusReopened, Action: models.ActionReopen,
		Roles: []models.Role{models.RoleCitizen, models.RoleAdmin}},
	{From: models.StatusReopened, To: models.StatusAssigned, Action: models.ActionAssign,
		Roles: []models.Role{models.RoleSystem, models.RoleWardOfficer, models.RoleAdmin}},
}

// InitialStatus is the status of every newly created complaint.
const InitialStatus = models.StatusSubmitted

func (r TransitionRule) allows(role models.Role) bool {
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// ValidateTransition checks a raw (from, to) pair against the table,
// regardless of actor. Used to reject stale or replayed requests: a
// re-dispatch of an already-applied transition fails here because the
// stored status has moved on.
func ValidateTransition(from, to models.ComplaintStatus) error {
	for _, rule := range transitionTable {
		if rule.From == from && rule.To == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

// ResolveAction finds the rule that the given actor role may execute for the
// given action from the given status. Authorization and state legality are
// distinct failures: ErrForbidden when the role never has the action at all,
// ErrInvalidState when it does but not from this status.
func ResolveAction(action models.ComplaintAction, role models.Role, from models.ComplaintStatus) (*TransitionRule, error) {
	roleHasAction := false
	for i := range transitionTable {
		rule := &transitionTable[i]
		if rule.Action != action || !rule.allows(role) {
			continue
		}
		roleHasAction = true
		if rule.From == from {
			return rule, nil
		}
	}
	if !roleHasAction {
		return nil, ErrForbidden
	}
	return nil, ErrInvalidState
}

// CheckRemarks enforces the rule's justification requirement. Whitespace
// does not count as a justification.
func CheckRemarks(rule *TransitionRule, remarks string) error {
	if rule.RemarksRequired && strings.TrimSpace(remarks) == "" {
		return ErrMissingJustification
	}
	return nil
}

// AllowedActions lists every action the role could execute from the given
// status. The dispatcher and the presentation layer both consult this, so
// they can never disagree about what is permitted.
func AllowedActions(role models.Role, from models.ComplaintStatus) []models.ComplaintAction {
	var actions []models.ComplaintAction
	seen := make(map[models.ComplaintAction]bool)
	for _, rule := range transitionTable {
		if rule.From != from || !rule.allows(role) || seen[rule.Action] {
			continue
		}
		seen[rule.Action] = true
		actions = append(actions, rule.Action)
	}
	return actions
}
