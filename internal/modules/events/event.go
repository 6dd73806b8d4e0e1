package events

import (
	"time"

	"gearvault/internal/domain"
)

type Type string

const (
	TypeEquipmentCreated   Type = "equipment.created"
	TypeEquipmentUpdated   Type = "equipment.updated"
	TypeEquipmentDeleted   Type = "equipment.deleted"
	TypeStatusChanged      Type = "equipment.status_changed"
	TypeMaintenanceOpened  Type = "maintenance.opened"
	TypeMaintenanceClosed  Type = "maintenance.closed"
	TypeMaintenanceOverdue Type = "maintenance.overdue"
)

// Event is a committed change delivered to the owner's live connections.
type Event struct {
	Type        Type                   `json:"type"`
	OwnerID     int64                  `json:"-"`
	EquipmentID int64                  `json:"equipment_id"`
	RecordID    int64                  `json:"record_id,omitempty"`
	From        domain.EquipmentStatus `json:"from,omitempty"`
	To          domain.EquipmentStatus `json:"to,omitempty"`
	At          time.Time              `json:"at"`
}

// Publisher fans committed changes out. Publish must not block the caller
// on slow consumers.
type Publisher interface {
	Publish(e Event)
}

type Nop struct{}

func (Nop) Publish(Event) {}

// Recorder keeps published events in memory; used by tests.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(e Event) { r.Events = append(r.Events, e) }

func (r *Recorder) Types() []Type {
	out := make([]Type, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}
