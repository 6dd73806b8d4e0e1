package domain

import "time"

type Image struct {
	ID          int64     `json:"id"`
	EquipmentID int64     `json:"equipment_id"`
	ImageURL    string    `json:"image_url"`
	IsPrimary   bool      `json:"is_primary"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}
