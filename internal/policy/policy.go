// Package policy is the access-control decision engine. Decide is a pure
// function over the principal, the requested operation and the resolved
// ownership of the target entity; it touches no storage and is safe for
// concurrent use. The absence of an explicit allow is a deny.
package policy

import (
	"github.com/epic-events/crm-api/internal/domain"
	"github.com/google/uuid"
)

// Operation is the requested action on an entity.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationRead   Operation = "read"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Reason is a machine-readable code attached to every verdict. Deny reasons
// are surfaced verbatim in the API error body.
type Reason string

const (
	// Allow reasons
	ReasonManagerBypass Reason = "manager_bypass"
	ReasonOwner         Reason = "owner"
	ReasonSelf          Reason = "self"
	ReasonReadAll       Reason = "read_unrestricted"

	// Deny reasons
	ReasonManagerOnly           Reason = "manager_only"
	ReasonSupportNoWrite        Reason = "support_has_no_write_access"
	ReasonNotClientOwner        Reason = "not_client_sales_contact"
	ReasonNotContractOwner      Reason = "not_contract_sales_contact"
	ReasonNotEventSupport       Reason = "not_event_support_contact"
	ReasonEventAlreadyOccurred  Reason = "event_already_occurred"
	ReasonNotOwnUserRecord      Reason = "not_own_user_record"
	ReasonRoleChangeDenied      Reason = "role_change_requires_manager"
	ReasonOwnerMustBeSelf       Reason = "sales_contact_must_be_self"
	ReasonUnknownRole           Reason = "unknown_role"
	ReasonUnknownOperation      Reason = "unknown_operation"
	ReasonUnknownEntityKind     Reason = "unknown_entity_kind"
	ReasonSupportCannotDelete   Reason = "support_cannot_delete"
	ReasonManagerOnlyUserDelete Reason = "user_delete_requires_manager"
)

// Verdict is the outcome of a policy decision.
type Verdict struct {
	Allow  bool
	Reason Reason
}

func allow(reason Reason) Verdict { return Verdict{Allow: true, Reason: reason} }
func deny(reason Reason) Verdict  { return Verdict{Allow: false, Reason: reason} }

// Principal is the authenticated actor a decision is made for.
type Principal struct {
	ID   uuid.UUID
	Role domain.Role
}

// Target carries the resolved state of the entity a decision concerns.
// For list operations the target is nil.
type Target struct {
	// Ownership of the target, or of the referenced parent on create
	// (the contract a new event is attached to).
	Ownership Ownership
	// EventOccurred is the target event's derived status at decision time.
	EventOccurred bool
	// UserID is set when the target is a user record.
	UserID uuid.UUID
	// RoleChanged is set when a user update payload carries a role
	// different from the stored one.
	RoleChanged bool
}

// Evaluator decides allow/deny for every (role, operation, kind)
// combination. It holds no state; the zero value is ready to use.
type Evaluator struct{}

// NewEvaluator creates a policy evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Decide returns the verdict for principal performing op on an entity of the
// given kind. target is the resolved pre-image of the entity (nil for list
// operations and for creates of root entities); payloadOwner is the sales
// contact declared in a create payload.
func (e *Evaluator) Decide(p Principal, op Operation, kind domain.EntityKind, target *Target, payloadOwner *uuid.UUID) Verdict {
	// Manager bypass comes first: managers are allowed every operation on
	// every entity kind.
	if p.Role == domain.RoleManager {
		return allow(ReasonManagerBypass)
	}
	if p.Role != domain.RoleSales && p.Role != domain.RoleSupport {
		return deny(ReasonUnknownRole)
	}

	switch op {
	case OperationRead:
		return e.decideRead(p, kind, target)
	case OperationCreate:
		return e.decideCreate(p, kind, target, payloadOwner)
	case OperationUpdate:
		return e.decideUpdate(p, kind, target)
	case OperationDelete:
		return e.decideDelete(p, kind, target)
	}
	return deny(ReasonUnknownOperation)
}

// decideRead: clients, contracts and events are readable by every
// authenticated principal; user records only by their owner.
func (e *Evaluator) decideRead(p Principal, kind domain.EntityKind, target *Target) Verdict {
	switch kind {
	case domain.KindClient, domain.KindContract, domain.KindEvent:
		return allow(ReasonReadAll)
	case domain.KindUser:
		if target != nil && target.UserID == p.ID {
			return allow(ReasonSelf)
		}
		if target == nil {
			// Listing all users is a manager operation.
			return deny(ReasonManagerOnly)
		}
		return deny(ReasonNotOwnUserRecord)
	}
	return deny(ReasonUnknownEntityKind)
}

func (e *Evaluator) decideCreate(p Principal, kind domain.EntityKind, target *Target, payloadOwner *uuid.UUID) Verdict {
	if kind == domain.KindUser {
		return deny(ReasonManagerOnly)
	}
	if p.Role == domain.RoleSupport {
		return deny(ReasonSupportNoWrite)
	}

	// Sales from here on.
	switch kind {
	case domain.KindClient:
		if matches(payloadOwner, p.ID) {
			return allow(ReasonOwner)
		}
		return deny(ReasonOwnerMustBeSelf)
	case domain.KindContract:
		// The declared sales contact must be the acting salesman, and the
		// referenced client must already be theirs.
		if !matches(payloadOwner, p.ID) {
			return deny(ReasonOwnerMustBeSelf)
		}
		if target != nil && matches(target.Ownership.ClientSales, p.ID) {
			return allow(ReasonOwner)
		}
		return deny(ReasonNotClientOwner)
	case domain.KindEvent:
		// Salesmen may attach events only to their own contracts.
		if target != nil && matches(target.Ownership.Sales, p.ID) {
			return allow(ReasonOwner)
		}
		return deny(ReasonNotContractOwner)
	}
	return deny(ReasonUnknownEntityKind)
}

func (e *Evaluator) decideUpdate(p Principal, kind domain.EntityKind, target *Target) Verdict {
	if kind == domain.KindUser {
		if target == nil || target.UserID != p.ID {
			return deny(ReasonNotOwnUserRecord)
		}
		if target.RoleChanged {
			return deny(ReasonRoleChangeDenied)
		}
		return allow(ReasonSelf)
	}
	if target == nil {
		return deny(ReasonUnknownOperation)
	}

	switch p.Role {
	case domain.RoleSales:
		switch kind {
		case domain.KindClient:
			if matches(target.Ownership.Sales, p.ID) {
				return allow(ReasonOwner)
			}
			return deny(ReasonNotClientOwner)
		case domain.KindContract:
			// Contract edit eligibility follows the client's sales contact;
			// the contract's own contact may have been null-cascaded away.
			if matches(target.Ownership.ClientSales, p.ID) {
				return allow(ReasonOwner)
			}
			return deny(ReasonNotClientOwner)
		case domain.KindEvent:
			if matches(target.Ownership.Sales, p.ID) {
				return allow(ReasonOwner)
			}
			return deny(ReasonNotContractOwner)
		}
	case domain.RoleSupport:
		if kind != domain.KindEvent {
			return deny(ReasonSupportNoWrite)
		}
		if !matches(target.Ownership.Support, p.ID) {
			return deny(ReasonNotEventSupport)
		}
		if target.EventOccurred {
			return deny(ReasonEventAlreadyOccurred)
		}
		return allow(ReasonOwner)
	}
	return deny(ReasonUnknownEntityKind)
}

// decideDelete mirrors decideUpdate for sales; support may delete nothing.
func (e *Evaluator) decideDelete(p Principal, kind domain.EntityKind, target *Target) Verdict {
	if kind == domain.KindUser {
		return deny(ReasonManagerOnlyUserDelete)
	}
	if p.Role == domain.RoleSupport {
		return deny(ReasonSupportCannotDelete)
	}
	if target == nil {
		return deny(ReasonUnknownOperation)
	}

	switch kind {
	case domain.KindClient:
		if matches(target.Ownership.Sales, p.ID) {
			return allow(ReasonOwner)
		}
		return deny(ReasonNotClientOwner)
	case domain.KindContract:
		if matches(target.Ownership.ClientSales, p.ID) {
			return allow(ReasonOwner)
		}
		return deny(ReasonNotClientOwner)
	case domain.KindEvent:
		if matches(target.Ownership.Sales, p.ID) {
			return allow(ReasonOwner)
		}
		return deny(ReasonNotContractOwner)
	}
	return deny(ReasonUnknownEntityKind)
}

// matches reports whether owner is set and identifies the principal.
// A nil owner (SET NULL cascade after a user deletion) matches nobody.
func matches(owner *uuid.UUID, principal uuid.UUID) bool {
	return owner != nil && *owner == principal
}
