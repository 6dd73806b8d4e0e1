package equipment

import "time"

type CreateEquipmentRequest struct {
	Name          string     `json:"name" validate:"required,max=255"`
	Description   string     `json:"description" validate:"max=5000"`
	SerialNumber  string     `json:"serial_number" validate:"max=255"`
	Manufacturer  string     `json:"manufacturer" validate:"max=255"`
	Model         string     `json:"model" validate:"max=255"`
	CategoryID    *int64     `json:"category_id" validate:"omitempty,gt=0"`
	LocationID    *int64     `json:"location_id" validate:"omitempty,gt=0"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	PurchasePrice *int64     `json:"purchase_price" validate:"omitempty,gte=0"`
	CurrentValue  *int64     `json:"current_value" validate:"omitempty,gte=0"`

	// Ignored: new equipment always starts ACTIVE.
	Status string `json:"status,omitempty"`
}

// UpdateEquipmentRequest is a partial update; nil leaves a field unchanged.
// An empty string clears an optional text field and 0 detaches a category
// or location. Clear names the purchase and value fields to reset to null.
type UpdateEquipmentRequest struct {
	Name          *string    `json:"name" validate:"omitempty,max=255"`
	Description   *string    `json:"description" validate:"omitempty,max=5000"`
	SerialNumber  *string    `json:"serial_number" validate:"omitempty,max=255"`
	Manufacturer  *string    `json:"manufacturer" validate:"omitempty,max=255"`
	Model         *string    `json:"model" validate:"omitempty,max=255"`
	CategoryID    *int64     `json:"category_id" validate:"omitempty,gte=0"`
	LocationID    *int64     `json:"location_id" validate:"omitempty,gte=0"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	PurchasePrice *int64     `json:"purchase_price" validate:"omitempty,gte=0"`
	CurrentValue  *int64     `json:"current_value" validate:"omitempty,gte=0"`
	Clear         []string   `json:"clear" validate:"omitempty,dive,oneof=purchase_date purchase_price current_value"`

	// Status is rejected here; status moves through ChangeStatus.
	Status *string `json:"status,omitempty"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE MAINTENANCE LOST SOLD"`
}

type ListQuery struct {
	Status     string
	CategoryID *int64
	LocationID *int64
	Query      string
	Limit      int
	Offset     int
}

type ListResult struct {
	Items  []View `json:"items"`
	Total  int64  `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type AddImageRequest struct {
	ImageURL  string `json:"image_url" validate:"required,max=2048"`
	IsPrimary bool   `json:"is_primary"`
}
