package policy

import (
	"github.com/epic-events/crm-api/internal/domain"
	"github.com/google/uuid"
)

// Ownership is the set of principals accountable for an entity, resolved by
// walking its foreign keys. Any field may be nil: a deleted user leaves the
// reference null, and a null owner matches no principal.
type Ownership struct {
	// Sales is the owning sales contact. For events this is the contact of
	// the contract one hop up.
	Sales *uuid.UUID
	// Support is the assigned support contact (events only).
	Support *uuid.UUID
	// ClientSales is the sales contact of the client a contract belongs to,
	// used for contract edit eligibility.
	ClientSales *uuid.UUID
}

// ForClient resolves ownership of a client.
func ForClient(c *domain.Client) Ownership {
	if c == nil {
		return Ownership{}
	}
	return Ownership{Sales: c.SalesContactID}
}

// ForContract resolves ownership of a contract. The client association must
// be loaded by the caller; a missing client simply yields no client-level
// owner.
func ForContract(ct *domain.Contract) Ownership {
	if ct == nil {
		return Ownership{}
	}
	o := Ownership{Sales: ct.SalesContactID}
	if ct.Client != nil {
		o.ClientSales = ct.Client.SalesContactID
	}
	return o
}

// ForEvent resolves ownership of an event: the support contact directly, and
// the sales contact one hop through the contract.
func ForEvent(ev *domain.Event) Ownership {
	if ev == nil {
		return Ownership{}
	}
	o := Ownership{Support: ev.SupportContactID}
	if ev.Contract != nil {
		o.Sales = ev.Contract.SalesContactID
	}
	return o
}
