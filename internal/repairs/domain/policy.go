package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role names as stored on the user account.
const (
	RoleCustomer = "customer"
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

// Action is an operation an actor can attempt on a repair request.
type Action string

const (
	ActionCreate            Action = "create"
	ActionViewAll           Action = "viewAll"
	ActionViewOne           Action = "viewOne"
	ActionViewMine          Action = "viewMine"
	ActionUpdateStaffFields Action = "updateStaffFields"
	ActionEditOwnFields     Action = "editOwnFields"
	ActionCancelOwn         Action = "cancelOwn"
	ActionDeleteOwn         Action = "deleteOwn"
	ActionDeleteAny         Action = "deleteAny"
	ActionSendInvoice       Action = "sendInvoice"
	ActionRecordPayment     Action = "recordPayment"
)

// Actor is the authenticated principal attempting an action.
type Actor struct {
	ID    uuid.UUID
	Roles []string
}

func (a Actor) hasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.hasRole(RoleAdmin) }

// IsStaff reports whether the actor holds an employee or admin role.
func (a Actor) IsStaff() bool { return a.hasRole(RoleEmployee) || a.hasRole(RoleAdmin) }

// IsCustomer reports whether the actor holds the customer role.
func (a Actor) IsCustomer() bool { return a.hasRole(RoleCustomer) }

// DenialKind classifies why an action was denied. Callers map it to a
// transport response; the policy never talks HTTP.
type DenialKind string

const (
	DenyNone             DenialKind = ""
	DenyNotOwner         DenialKind = "NotOwner"
	DenyRoleNotPermitted DenialKind = "RoleNotPermitted"
	DenyWindowExpired    DenialKind = "WindowExpired"
)

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Kind    DenialKind
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(kind DenialKind, reason string) Decision {
	return Decision{Kind: kind, Reason: reason}
}

// CanPerform decides whether the actor may perform the action on the
// request. It is total over the action set and pure: the clock is an
// explicit input. req may be nil only for ActionCreate, ActionViewAll and
// ActionViewMine.
func CanPerform(actor Actor, req *RepairRequest, action Action, now time.Time) Decision {
	switch action {
	case ActionCreate:
		if !actor.IsCustomer() {
			return deny(DenyRoleNotPermitted, "only customers can book repairs")
		}
		return allow()

	case ActionViewAll:
		if !actor.IsStaff() {
			return deny(DenyRoleNotPermitted, "staff access required")
		}
		return allow()

	case ActionViewMine:
		if !actor.IsCustomer() {
			return deny(DenyRoleNotPermitted, "customer access required")
		}
		return allow()

	case ActionViewOne:
		if actor.IsStaff() {
			return allow()
		}
		if req.IsOwnedBy(actor.ID) || req.IsAssignedTo(actor.ID) {
			return allow()
		}
		return deny(DenyNotOwner, "not authorized to view this repair request")

	case ActionUpdateStaffFields, ActionSendInvoice, ActionRecordPayment:
		if !actor.IsStaff() {
			return deny(DenyRoleNotPermitted, "staff access required")
		}
		return allow()

	case ActionEditOwnFields:
		if actor.IsStaff() && !actor.IsCustomer() {
			return deny(DenyRoleNotPermitted, "customer access required")
		}
		if !req.IsOwnedBy(actor.ID) {
			return deny(DenyNotOwner, "not authorized to edit this repair request")
		}
		if !WithinEditWindow(req.ScheduledAt, now) {
			return deny(DenyWindowExpired, "the edit window for this repair request has closed")
		}
		return allow()

	case ActionCancelOwn, ActionDeleteOwn:
		if actor.IsStaff() && !actor.IsCustomer() {
			return deny(DenyRoleNotPermitted, "customer access required")
		}
		if !req.IsOwnedBy(actor.ID) {
			return deny(DenyNotOwner, "not authorized to cancel this repair request")
		}
		if !WithinCancellationWindow(req.ScheduledAt, now) {
			return deny(DenyWindowExpired, "cancellation is no longer possible within 72 hours of the appointment")
		}
		return allow()

	case ActionDeleteAny:
		if !actor.IsAdmin() {
			return deny(DenyRoleNotPermitted, "admin access required")
		}
		return allow()
	}

	return deny(DenyRoleNotPermitted, "unknown action")
}
