package domain

import "time"

type MaintenanceRecord struct {
	ID          int64      `json:"id"`
	EquipmentID int64      `json:"equipment_id"`
	Description string     `json:"description"`
	OpenedAt    time.Time  `json:"opened_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	Cost        *int64     `json:"cost,omitempty"`
}

func (r *MaintenanceRecord) IsOpen() bool {
	return r.ClosedAt == nil
}
