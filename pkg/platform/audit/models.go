package audit

import (
	"context"
	"time"

	id "redhope/pkg/domain"
)

// EventCategory groups audit events by the bounded context that emitted them.
// Kafka consumers route on it.
type EventCategory string

const (
	CategoryInventory EventCategory = "inventory"
	CategoryRecords   EventCategory = "records"
	CategoryCamp      EventCategory = "camp"
	CategoryIdentity  EventCategory = "identity"
)

// Event is emitted from domain logic after a successful mutation. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Timestamp time.Time
	Action    string
	BankID    id.BankID
	UserID    id.UserID
	// Subject is the id of the affected record or camp, when there is one.
	Subject string
	// Detail carries small, non-sensitive facts (blood group, units, status).
	Detail    map[string]string
	RequestID string
}

// Category derives the event category from its action.
func (e Event) Category() EventCategory {
	return AuditEvent(e.Action).Category()
}

// PartitionKey keeps every event of one bank on a single Kafka partition.
func (e Event) PartitionKey() string {
	if !e.BankID.IsNil() {
		return e.BankID.String()
	}
	if !e.UserID.IsNil() {
		return e.UserID.String()
	}
	return e.ID
}

type AuditEvent string

const (
	EventStockIncreased      AuditEvent = "stock.increased"
	EventStockDecreased      AuditEvent = "stock.decreased"
	EventRecordCreated       AuditEvent = "record.created"
	EventRecordStatusUpdated AuditEvent = "record.status_updated"
	EventCampCreated         AuditEvent = "camp.created"
	EventCampDonorEnrolled   AuditEvent = "camp.donor_enrolled"
	EventCampDonorFulfilled  AuditEvent = "camp.donor_fulfilled"
	EventUserRegistered      AuditEvent = "identity.user_registered"
	EventBankRegistered      AuditEvent = "identity.bank_registered"
	EventLoggedOut           AuditEvent = "identity.logged_out"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventStockIncreased:      CategoryInventory,
	EventStockDecreased:      CategoryInventory,
	EventRecordCreated:       CategoryRecords,
	EventRecordStatusUpdated: CategoryRecords,
	EventCampCreated:         CategoryCamp,
	EventCampDonorEnrolled:   CategoryCamp,
	EventCampDonorFulfilled:  CategoryCamp,
	EventUserRegistered:      CategoryIdentity,
	EventBankRegistered:      CategoryIdentity,
	EventLoggedOut:           CategoryIdentity,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryIdentity.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryIdentity
}

// Store persists audit events. Implementations: in-memory, Postgres outbox, Kafka.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is what services depend on. Emit never blocks the caller on a slow
// sink for longer than the context allows.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
