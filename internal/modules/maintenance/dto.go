package maintenance

import (
	"time"

	"gearvault/internal/domain"
)

type OpenRequest struct {
	Description string `json:"description" validate:"required,max=5000"`
	Cost        *int64 `json:"cost" validate:"omitempty,gte=0"`
}

type CloseRequest struct {
	Cost *int64 `json:"cost" validate:"omitempty,gte=0"`
}

// Reminder is the next-due view of one item. Due is false, and NextDueAt
// nil, for LOST and SOLD items and while a record is open.
type Reminder struct {
	EquipmentID   int64                  `json:"equipment_id"`
	Status        domain.EquipmentStatus `json:"status"`
	LastServiceAt *time.Time             `json:"last_service_at,omitempty"`
	NextDueAt     *time.Time             `json:"next_due_at,omitempty"`
	Due           bool                   `json:"due"`
	Overdue       bool                   `json:"overdue"`
}

// ComputeReminder derives next-due from the last closing time, falling back
// to the purchase date and then the creation time.
func ComputeReminder(eq *domain.Equipment, lastClosed *time.Time, hasOpen bool, interval time.Duration, now time.Time) Reminder {
	r := Reminder{EquipmentID: eq.ID, Status: eq.Status, LastServiceAt: lastClosed}
	if hasOpen || eq.Status == domain.StatusLost || eq.Status == domain.StatusSold || interval <= 0 {
		return r
	}

	base := eq.CreatedAt
	switch {
	case lastClosed != nil:
		base = *lastClosed
	case eq.PurchaseDate != nil:
		base = *eq.PurchaseDate
	}

	next := base.Add(interval).UTC()
	r.NextDueAt = &next
	r.Due = true
	r.Overdue = !now.Before(next)
	return r
}
