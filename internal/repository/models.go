package repository

import (
	"strings"
	"time"

	"gearvault/internal/domain"
)

type userModel struct {
	ID              int64      `gorm:"column:id;primaryKey"`
	Email           string     `gorm:"column:email;size:255;not null;uniqueIndex:idx_users_email"`
	PasswordHash    string     `gorm:"column:password_hash;not null"`
	Roles           string     `gorm:"column:roles;size:255;not null;default:user"`
	Name            string     `gorm:"column:name;size:255"`
	ProfileImageURL *string    `gorm:"column:profile_image_url"`
	Active          bool       `gorm:"column:active;not null;default:true"`
	DeactivatedAt   *time.Time `gorm:"column:deactivated_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type categoryModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	OwnerID   int64     `gorm:"column:owner_id;not null;uniqueIndex:idx_categories_owner_name,priority:1"`
	Name      string    `gorm:"column:name;size:120;not null;uniqueIndex:idx_categories_owner_name,priority:2"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (categoryModel) TableName() string { return "categories" }

type locationModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	OwnerID     int64     `gorm:"column:owner_id;not null;uniqueIndex:idx_locations_owner_name,priority:1"`
	Name        string    `gorm:"column:name;size:120;not null;uniqueIndex:idx_locations_owner_name,priority:2"`
	Description *string   `gorm:"column:description;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (locationModel) TableName() string { return "locations" }

type equipmentModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	OwnerID       int64      `gorm:"column:owner_id;not null;index"`
	Name          string     `gorm:"column:name;size:255;not null"`
	Description   *string    `gorm:"column:description;type:text"`
	SerialNumber  *string    `gorm:"column:serial_number;size:255"`
	Manufacturer  *string    `gorm:"column:manufacturer;size:255"`
	Model         *string    `gorm:"column:model;size:255"`
	CategoryID    *int64     `gorm:"column:category_id;index"`
	LocationID    *int64     `gorm:"column:location_id;index"`
	Status        string     `gorm:"column:status;size:16;not null;default:ACTIVE;index"`
	PurchaseDate  *time.Time `gorm:"column:purchase_date"`
	PurchasePrice *int64     `gorm:"column:purchase_price"`
	CurrentValue  *int64     `gorm:"column:current_value"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`

	Category *categoryModel `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Location *locationModel `gorm:"foreignKey:LocationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (equipmentModel) TableName() string { return "equipment" }

// maintenanceRecordModel also carries the partial unique index
// ux_maintenance_open_per_equipment, created by database.Migrate.
type maintenanceRecordModel struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	EquipmentID int64      `gorm:"column:equipment_id;not null;index"`
	Description string     `gorm:"column:description;type:text;not null"`
	OpenedAt    time.Time  `gorm:"column:opened_at;not null"`
	ClosedAt    *time.Time `gorm:"column:closed_at"`
	Cost        *int64     `gorm:"column:cost"`

	Equipment *equipmentModel `gorm:"foreignKey:EquipmentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (maintenanceRecordModel) TableName() string { return "maintenance_records" }

type imageModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	EquipmentID int64     `gorm:"column:equipment_id;not null;index"`
	ImageURL    string    `gorm:"column:image_url;type:text;not null"`
	IsPrimary   bool      `gorm:"column:is_primary;not null;default:false"`
	Position    int       `gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at"`

	Equipment *equipmentModel `gorm:"foreignKey:EquipmentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (imageModel) TableName() string { return "equipment_images" }

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&userModel{},
		&categoryModel{},
		&locationModel{},
		&equipmentModel{},
		&maintenanceRecordModel{},
		&imageModel{},
	}
}

func toDomainUser(m userModel) *domain.User {
	var roles []domain.Role
	for _, r := range strings.Split(m.Roles, ",") {
		r = strings.TrimSpace(r)
		if r != "" {
			roles = append(roles, domain.Role(r))
		}
	}

	return &domain.User{
		ID:              m.ID,
		Email:           m.Email,
		PasswordHash:    m.PasswordHash,
		Roles:           roles,
		Name:            m.Name,
		ProfileImageURL: deref(m.ProfileImageURL),
		Active:          m.Active,
		DeactivatedAt:   m.DeactivatedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r))
	}
	if len(roles) == 0 {
		roles = append(roles, string(domain.RoleUser))
	}

	return userModel{
		ID:              u.ID,
		Email:           strings.TrimSpace(strings.ToLower(u.Email)),
		PasswordHash:    u.PasswordHash,
		Roles:           strings.Join(roles, ","),
		Name:            u.Name,
		ProfileImageURL: nullable(u.ProfileImageURL),
		Active:          u.Active,
		DeactivatedAt:   u.DeactivatedAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func toDomainCategory(m categoryModel) *domain.Category {
	return &domain.Category{ID: m.ID, OwnerID: m.OwnerID, Name: m.Name, CreatedAt: m.CreatedAt}
}

func toDomainLocation(m locationModel) *domain.Location {
	return &domain.Location{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Description: deref(m.Description),
		CreatedAt:   m.CreatedAt,
	}
}

func toDomainEquipment(m equipmentModel) *domain.Equipment {
	return &domain.Equipment{
		ID:            m.ID,
		OwnerID:       m.OwnerID,
		Name:          m.Name,
		Description:   deref(m.Description),
		SerialNumber:  deref(m.SerialNumber),
		Manufacturer:  deref(m.Manufacturer),
		Model:         deref(m.Model),
		CategoryID:    m.CategoryID,
		LocationID:    m.LocationID,
		Status:        domain.EquipmentStatus(m.Status),
		PurchaseDate:  m.PurchaseDate,
		PurchasePrice: m.PurchasePrice,
		CurrentValue:  m.CurrentValue,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toEquipmentModel(e *domain.Equipment) equipmentModel {
	return equipmentModel{
		ID:            e.ID,
		OwnerID:       e.OwnerID,
		Name:          e.Name,
		Description:   nullable(e.Description),
		SerialNumber:  nullable(e.SerialNumber),
		Manufacturer:  nullable(e.Manufacturer),
		Model:         nullable(e.Model),
		CategoryID:    e.CategoryID,
		LocationID:    e.LocationID,
		Status:        string(e.Status),
		PurchaseDate:  e.PurchaseDate,
		PurchasePrice: e.PurchasePrice,
		CurrentValue:  e.CurrentValue,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toDomainMaintenance(m maintenanceRecordModel) *domain.MaintenanceRecord {
	return &domain.MaintenanceRecord{
		ID:          m.ID,
		EquipmentID: m.EquipmentID,
		Description: m.Description,
		OpenedAt:    m.OpenedAt,
		ClosedAt:    m.ClosedAt,
		Cost:        m.Cost,
	}
}

func toDomainImage(m imageModel) domain.Image {
	return domain.Image{
		ID:          m.ID,
		EquipmentID: m.EquipmentID,
		ImageURL:    m.ImageURL,
		IsPrimary:   m.IsPrimary,
		Position:    m.Position,
		CreatedAt:   m.CreatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}
