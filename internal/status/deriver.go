// Package status recomputes the derived status fields: an event's occurred
// flag, which is a pure function of its date and the wall clock, and the
// client lifecycle stage, which reacts to event saves and only ever moves
// forward.
package status

import (
	"errors"
	"fmt"
	"time"

	"github.com/epic-events/crm-api/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Deriver applies derived-state rules after entity saves. The clock is
// injected so derivation is testable.
type Deriver struct {
	now    func() time.Time
	logger *zap.Logger
}

// NewDeriver creates a status deriver using the given clock.
func NewDeriver(now func() time.Time, logger *zap.Logger) *Deriver {
	if now == nil {
		now = time.Now
	}
	return &Deriver{now: now, logger: logger}
}

// Now returns the deriver's current clock reading.
func (d *Deriver) Now() time.Time {
	return d.now()
}

// EventOccurred reports whether the event's date has passed.
func (d *Deriver) EventOccurred(eventDate time.Time) bool {
	return eventDate.Before(d.now())
}

// ApplyEventStatus recomputes the event's derived status field. Called
// unconditionally before every event save: status is derived, never caller
// input.
func (d *Deriver) ApplyEventStatus(ev *domain.Event) {
	ev.Status = d.EventOccurred(ev.EventDate)
}

// NextClientStatus returns the client stage after an event with the given
// occurred flag has been saved. PastEvent is absorbing. A potential client
// whose first recorded event has already occurred moves straight to
// PastEvent: one past event is enough regardless of path.
func NextClientStatus(current domain.ClientStatus, occurred bool) domain.ClientStatus {
	switch current {
	case domain.ClientStatusPastEvent:
		return domain.ClientStatusPastEvent
	case domain.ClientStatusUpcomingEvent:
		if occurred {
			return domain.ClientStatusPastEvent
		}
		return domain.ClientStatusUpcomingEvent
	case domain.ClientStatusPotential:
		if occurred {
			return domain.ClientStatusPastEvent
		}
		return domain.ClientStatusUpcomingEvent
	}
	return current
}

// OnEntitySaved reacts to a persisted entity change. Only event saves have a
// side effect: the owning client's lifecycle stage is recomputed and written
// within the same transaction, so the cascade is all-or-nothing with the
// triggering save. Callers must invoke it with the transaction the save ran
// in.
func (d *Deriver) OnEntitySaved(tx *gorm.DB, kind domain.EntityKind, entity interface{}) error {
	if kind != domain.KindEvent {
		return nil
	}
	ev, ok := entity.(*domain.Event)
	if !ok {
		return fmt.Errorf("status deriver: entity kind %s with unexpected type %T", kind, entity)
	}
	return d.deriveClientStatus(tx, ev)
}

func (d *Deriver) deriveClientStatus(tx *gorm.DB, ev *domain.Event) error {
	clientID, err := resolveClientID(tx, ev)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Orphaned event: no client to update.
			d.logger.Warn("event has no resolvable client, skipping status derivation",
				zap.String("event_id", ev.ID.String()))
			return nil
		}
		return fmt.Errorf("failed to resolve client for event: %w", err)
	}

	// Concurrent event saves for the same client must serialize their
	// status updates so the stage never regresses. Postgres gives us a row
	// lock; sqlite (tests) serializes writers on its own.
	query := tx.Model(&domain.Client{})
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var client domain.Client
	if err := query.Where("id = ?", clientID).First(&client).Error; err != nil {
		return fmt.Errorf("failed to load client for status derivation: %w", err)
	}

	next := NextClientStatus(client.Status, ev.Status)
	if next == client.Status {
		return nil
	}

	if err := tx.Model(&domain.Client{}).Where("id = ?", client.ID).
		Update("status", next).Error; err != nil {
		return fmt.Errorf("failed to update client status: %w", err)
	}

	d.logger.Info("client status derived from event save",
		zap.String("client_id", client.ID.String()),
		zap.String("event_id", ev.ID.String()),
		zap.String("from", client.Status.String()),
		zap.String("to", next.String()),
	)
	return nil
}

func resolveClientID(tx *gorm.DB, ev *domain.Event) (uuid.UUID, error) {
	if ev.Contract != nil {
		return ev.Contract.ClientID, nil
	}
	var contract domain.Contract
	if err := tx.Select("client_id").Where("id = ?", ev.ContractID).First(&contract).Error; err != nil {
		return uuid.Nil, err
	}
	return contract.ClientID, nil
}
