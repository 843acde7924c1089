package partner

import (
	"github.com/google/uuid"

	"github.com/vastra-erp/backend/internal/domain/shared"
)

// PartyRegisteredEvent is raised when a new trading partner is registered
type PartyRegisteredEvent struct {
	shared.BaseDomainEvent
	PartyID uuid.UUID `json:"party_id"`
	Name    string    `json:"name"`
	Kind    PartyKind `json:"kind"`
}

// EventType returns the event type name
func (e *PartyRegisteredEvent) EventType() string {
	return "PartyRegistered"
}

// NewPartyRegisteredEvent creates a new PartyRegisteredEvent
func NewPartyRegisteredEvent(p *Party) *PartyRegisteredEvent {
	return &PartyRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PartyRegistered", "Party", p.ID, p.CompanyID),
		PartyID:         p.ID,
		Name:            p.Name,
		Kind:            p.Kind,
	}
}
