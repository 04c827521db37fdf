package workflow

import (
	"testing"

	"github.com/civictrack/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAction(t *testing.T) {
	tests := []struct {
		name    string
		action  models.ComplaintAction
		role    models.Role
		from    models.ComplaintStatus
		wantTo  models.ComplaintStatus
		wantErr error
	}{
		{
			name:   "ward officer assigns submitted complaint",
			action: models.ActionAssign,
			role:   models.RoleWardOfficer,
			from:   models.StatusSubmitted,
			wantTo: models.StatusAssigned,
		},
		{
			name:   "system assigns after reopen",
			action: models.ActionAssign,
			role:   models.RoleSystem,
			from:   models.StatusReopened,
			wantTo: models.StatusAssigned,
		},
		{
			name:   "department officer starts work",
			action: models.ActionStartWork,
			role:   models.RoleDepartmentOfficer,
			from:   models.StatusAssigned,
			wantTo: models.StatusInProgress,
		},
		{
			name:   "department officer resolves",
			action: models.ActionResolve,
			role:   models.RoleDepartmentOfficer,
			from:   models.StatusInProgress,
			wantTo: models.StatusResolved,
		},
		{
			name:   "ward officer approves resolution",
			action: models.ActionApprove,
			role:   models.RoleWardOfficer,
			from:   models.StatusResolved,
			wantTo: models.StatusApproved,
		},
		{
			name:   "ward officer rejects back to in progress",
			action: models.ActionReject,
			role:   models.RoleWardOfficer,
			from:   models.StatusResolved,
			wantTo: models.StatusInProgress,
		},
		{
			name:   "citizen reopens closed complaint",
			action: models.ActionReopen,
			role:   models.RoleCitizen,
			from:   models.StatusClosed,
			wantTo: models.StatusReopened,
		},
		{
			name:   "citizen reopens approved complaint",
			action: models.ActionReopen,
			role:   models.RoleCitizen,
			from:   models.StatusApproved,
			wantTo: models.StatusReopened,
		},
		{
			name:   "admin closes approved complaint",
			action: models.ActionClose,
			role:   models.RoleAdmin,
			from:   models.StatusApproved,
			wantTo: models.StatusClosed,
		},
		{
			name:    "citizen can never resolve",
			action:  models.ActionResolve,
			role:    models.RoleCitizen,
			from:    models.StatusInProgress,
			wantErr: ErrForbidden,
		},
		{
			name:    "citizen can never assign",
			action:  models.ActionAssign,
			role:    models.RoleCitizen,
			from:    models.StatusSubmitted,
			wantErr: ErrForbidden,
		},
		{
			name:    "department officer cannot approve",
			action:  models.ActionApprove,
			role:    models.RoleDepartmentOfficer,
			from:    models.StatusResolved,
			wantErr: ErrForbidden,
		},
		{
			name:    "resolve from wrong status is invalid state",
			action:  models.ActionResolve,
			role:    models.RoleDepartmentOfficer,
			from:    models.StatusSubmitted,
			wantErr: ErrInvalidState,
		},
		{
			name:    "reopen while in progress is invalid state",
			action:  models.ActionReopen,
			role:    models.RoleCitizen,
			from:    models.StatusInProgress,
			wantErr: ErrInvalidState,
		},
		{
			name:    "ward officer close from approved is invalid state",
			action:  models.ActionClose,
			role:    models.RoleWardOfficer,
			from:    models.StatusApproved,
			wantErr: ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := ResolveAction(tt.action, tt.role, tt.from)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, rule)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.from, rule.From)
			assert.Equal(t, tt.wantTo, rule.To)
		})
	}
}

func TestValidateTransition(t *testing.T) {
	assert.NoError(t, ValidateTransition(models.StatusSubmitted, models.StatusAssigned))
	assert.NoError(t, ValidateTransition(models.StatusResolved, models.StatusInProgress))
	assert.NoError(t, ValidateTransition(models.StatusClosed, models.StatusReopened))

	// No skipping stages.
	assert.ErrorIs(t, ValidateTransition(models.StatusSubmitted, models.StatusResolved), ErrInvalidTransition)
	assert.ErrorIs(t, ValidateTransition(models.StatusSubmitted, models.StatusClosed), ErrInvalidTransition)
	// No backward jumps outside the reject/reopen branches.
	assert.ErrorIs(t, ValidateTransition(models.StatusInProgress, models.StatusSubmitted), ErrInvalidTransition)
	assert.ErrorIs(t, ValidateTransition(models.StatusClosed, models.StatusInProgress), ErrInvalidTransition)
	// Self-transition is never legal.
	assert.ErrorIs(t, ValidateTransition(models.StatusResolved, models.StatusResolved), ErrInvalidTransition)
}

func TestCheckRemarks(t *testing.T) {
	approve, err := ResolveAction(models.ActionApprove, models.RoleWardOfficer, models.StatusResolved)
	require.NoError(t, err)
	assert.ErrorIs(t, CheckRemarks(approve, ""), ErrMissingJustification)
	assert.ErrorIs(t, CheckRemarks(approve, "   "), ErrMissingJustification)
	assert.ErrorIs(t, CheckRemarks(approve, "\t\n"), ErrMissingJustification)
	assert.NoError(t, CheckRemarks(approve, "verified on site"))

	assign, err := ResolveAction(models.ActionAssign, models.RoleWardOfficer, models.StatusSubmitted)
	require.NoError(t, err)
	assert.NoError(t, CheckRemarks(assign, ""))
}

func TestAllowedActions(t *testing.T) {
	tests := []struct {
		name string
		role models.Role
		from models.ComplaintStatus
		want []models.ComplaintAction
	}{
		{
			name: "ward officer reviewing a resolution",
			role: models.RoleWardOfficer,
			from: models.StatusResolved,
			want: []models.ComplaintAction{models.ActionApprove, models.ActionClose, models.ActionReject},
		},
		{
			name: "citizen on closed complaint",
			role: models.RoleCitizen,
			from: models.StatusClosed,
			want: []models.ComplaintAction{models.ActionReopen},
		},
		{
			name: "citizen mid-flight has nothing",
			role: models.RoleCitizen,
			from: models.StatusInProgress,
			want: nil,
		},
		{
			name: "department officer on assigned complaint",
			role: models.RoleDepartmentOfficer,
			from: models.StatusAssigned,
			want: []models.ComplaintAction{models.ActionStartWork},
		},
		{
			name: "ward officer cannot touch in-progress work",
			role: models.RoleWardOfficer,
			from: models.StatusInProgress,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllowedActions(tt.role, tt.from))
		})
	}
}

// Dispatcher gating and response snapshots both read the same table, so an
// action a role may execute is always one it is shown, and vice versa.
func TestAllowedActionsMatchResolveAction(t *testing.T) {
	roles := []models.Role{
		models.RoleCitizen,
		models.RoleDepartmentOfficer,
		models.RoleWardOfficer,
		models.RoleAdmin,
		models.RoleSystem,
	}
	statuses := []models.ComplaintStatus{
		models.StatusSubmitted,
		models.StatusAssigned,
		models.StatusInProgress,
		models.StatusResolved,
		models.StatusApproved,
		models.StatusClosed,
		models.StatusReopened,
	}

	for _, role := range roles {
		for _, status := range statuses {
			for _, action := range AllowedActions(role, status) {
				rule, err := ResolveAction(action, role, status)
				require.NoError(t, err, "role %s action %s from %s", role, action, status)
				assert.Equal(t, status, rule.From)
			}
		}
	}
}
