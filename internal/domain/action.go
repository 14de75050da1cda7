package domain

// Action is the closed vocabulary of audited state changes. Free-form
// strings are mapped at the boundary via ParseAction; anything outside the
// vocabulary is ActionUnknown and rejected by the recorder.
type Action string

const (
	ActionCreated       Action = "created"
	ActionUpdated       Action = "updated"
	ActionDeleted       Action = "deleted"
	ActionStatusChanged Action = "status_changed"
	ActionSuspended     Action = "suspended"
	ActionReactivated   Action = "reactivated"
	ActionPlanChanged   Action = "plan_changed"
	ActionRoleAssigned  Action = "role_assigned"
	ActionMFAEnabled    Action = "mfa_enabled"
	ActionMFADisabled   Action = "mfa_disabled"
	ActionTrialExtended Action = "trial_extended"
	ActionDomainAdded   Action = "domain_added"
	ActionRefunded      Action = "refunded"
	ActionCancelled     Action = "cancelled"
	ActionKeyRotated    Action = "key_rotated"
	ActionUnknown       Action = "unknown"
)

var actionLabels = map[Action]string{
	ActionCreated:       "created",
	ActionUpdated:       "updated",
	ActionDeleted:       "deleted",
	ActionStatusChanged: "status changed",
	ActionSuspended:     "suspended",
	ActionReactivated:   "reactivated",
	ActionPlanChanged:   "plan changed",
	ActionRoleAssigned:  "role assigned",
	ActionMFAEnabled:    "MFA enabled",
	ActionMFADisabled:   "MFA disabled",
	ActionTrialExtended: "trial extended",
	ActionDomainAdded:   "domain added",
	ActionRefunded:      "refunded",
	ActionCancelled:     "cancelled",
	ActionKeyRotated:    "key rotated",
}

// ParseAction maps a raw string onto the closed vocabulary. Unrecognized
// input yields (ActionUnknown, false) so callers can reject it explicitly.
func ParseAction(s string) (Action, bool) {
	a := Action(s)
	if _, ok := actionLabels[a]; ok {
		return a, true
	}
	return ActionUnknown, false
}

func (a Action) Valid() bool {
	_, ok := actionLabels[a]
	return ok
}

// Label returns the human-readable form used in log messages,
// e.g. ActionPlanChanged -> "plan changed".
func (a Action) Label() string {
	if l, ok := actionLabels[a]; ok {
		return l
	}
	return string(a)
}
