package domain

import "time"

type EquipmentStatus string

const (
	StatusActive      EquipmentStatus = "ACTIVE"
	StatusMaintenance EquipmentStatus = "MAINTENANCE"
	StatusLost        EquipmentStatus = "LOST"
	StatusSold        EquipmentStatus = "SOLD"
)

func (s EquipmentStatus) Valid() bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusLost, StatusSold:
		return true
	}
	return false
}

// Equipment amounts (PurchasePrice, CurrentValue) are integer minor units.
type Equipment struct {
	ID            int64           `json:"id"`
	OwnerID       int64           `json:"owner_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	SerialNumber  string          `json:"serial_number,omitempty"`
	Manufacturer  string          `json:"manufacturer,omitempty"`
	Model         string          `json:"model,omitempty"`
	CategoryID    *int64          `json:"category_id,omitempty"`
	LocationID    *int64          `json:"location_id,omitempty"`
	Status        EquipmentStatus `json:"status"`
	PurchaseDate  *time.Time      `json:"purchase_date,omitempty"`
	PurchasePrice *int64          `json:"purchase_price,omitempty"`
	CurrentValue  *int64          `json:"current_value,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// relations, loaded on demand
	Category *Category `json:"category,omitempty"`
	Location *Location `json:"location,omitempty"`
	Images   []Image   `json:"images,omitempty"`
}
